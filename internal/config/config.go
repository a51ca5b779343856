package config

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/pwstats/weather-insights/internal/weather"
)

// AppConfig carries everything the core consumes from the environment. The
// API key, host, and station identifier are opaque strings: the core does not
// validate them, a wrong key surfaces as an HTTP error from the provider.
type AppConfig struct {
	DailyAPIKey  string
	DailyAPIHost string
	PWSAPIKey    string
	PWSStationID string
	Units        weather.Units

	// Geographic point and trailing window for the daily-history endpoint.
	DailyLat        float64
	DailyLon        float64
	DailyWindowDays int

	// RefreshInterval controls the recurring current-conditions refresh.
	RefreshInterval time.Duration

	HTTPTimeout time.Duration
	Port        string
	AppEnv      string
	LogLevel    slog.Level
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.DailyAPIKey = os.Getenv("DAILY_API_KEY")
	cfg.DailyAPIHost = getenvDefault("DAILY_API_HOST", "meteostat.p.rapidapi.com")
	cfg.PWSAPIKey = os.Getenv("PWS_API_KEY")
	cfg.PWSStationID = os.Getenv("PWS_STATION_ID")

	units, err := parseUnits(getenvDefault("UNITS", "metric"))
	if err != nil {
		return nil, err
	}
	cfg.Units = units

	lat, err := getenvFloat("DAILY_LAT", 52.2)
	if err != nil {
		return nil, err
	}
	cfg.DailyLat = lat

	lon, err := getenvFloat("DAILY_LON", 8.3)
	if err != nil {
		return nil, err
	}
	cfg.DailyLon = lon

	cfg.DailyWindowDays = getenvInt("DAILY_WINDOW_DAYS", 30)

	// Refresh interval: default 60 seconds.
	intervalStr := getenvDefault("REFRESH_INTERVAL", "60s")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}
	cfg.RefreshInterval = interval

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "15s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.AppEnv = getenvDefault("APP_ENV", "dev")

	level, err := parseLogLevel(getenvDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	return cfg, nil
}

func parseUnits(s string) (weather.Units, error) {
	switch weather.Units(strings.ToLower(strings.TrimSpace(s))) {
	case weather.UnitsMetric:
		return weather.UnitsMetric, nil
	case weather.UnitsImperial:
		return weather.UnitsImperial, nil
	default:
		return "", fmt.Errorf("invalid UNITS %q (allowed: metric, imperial)", s)
	}
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
