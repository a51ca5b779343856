package logging

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// New builds the application logger: a colorized handler for local
// development, JSON everywhere else.
func New(appEnv string, level slog.Level) *slog.Logger {
	if appEnv == "dev" {
		h := tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
		return slog.New(h).With("app", "weather-insights")
	}

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(h).With("app", "weather-insights", "env", appEnv)
}
