package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/pwstats/weather-insights/internal/api/http"
	"github.com/pwstats/weather-insights/internal/config"
	"github.com/pwstats/weather-insights/internal/logging"
	"github.com/pwstats/weather-insights/internal/scheduler"
	"github.com/pwstats/weather-insights/internal/weather"
	"github.com/pwstats/weather-insights/internal/weather/providers"
)

func main() {
	// Load configuration (reads .env when present).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	slogger := logging.New(cfg.AppEnv, cfg.LogLevel)

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	dailyProvider := providers.NewDailyHistory(httpClient, slogger, providers.DailyHistoryConfig{
		APIKey:    cfg.DailyAPIKey,
		APIHost:   cfg.DailyAPIHost,
		Latitude:  cfg.DailyLat,
		Longitude: cfg.DailyLon,
	})
	currentProvider := providers.NewCurrentConditions(httpClient, slogger, providers.PWSConfig{
		APIKey:    cfg.PWSAPIKey,
		StationID: cfg.PWSStationID,
		Units:     cfg.Units,
	})
	historyProvider := providers.NewRecentHistory(httpClient, slogger, providers.PWSConfig{
		APIKey:    cfg.PWSAPIKey,
		StationID: cfg.PWSStationID,
		Units:     cfg.Units,
	})

	// One state machine per endpoint. The daily source defaults to a
	// trailing window ending today.
	windowDays := cfg.DailyWindowDays
	dailySource := weather.NewSource("daily", slogger, func(ctx context.Context) ([]weather.DailyRecord, error) {
		end := time.Now().UTC()
		start := end.AddDate(0, 0, -windowDays)
		return dailyProvider.Fetch(ctx, start, end)
	})
	currentSource := weather.NewSource("current", slogger, currentProvider.Fetch)
	historySource := weather.NewSource("history", slogger, historyProvider.Fetch)
	defer dailySource.Close()
	defer currentSource.Close()
	defer historySource.Close()

	// Surface state transitions of the periodically refreshed source.
	currentSource.Subscribe(func(st weather.State[*weather.Observation]) {
		switch {
		case st.Loading:
			slogger.Debug("current conditions refreshing")
		case st.LastErr != nil:
			slogger.Warn("current conditions stale", "err", st.LastErr, "hasValue", st.HasValue)
		default:
			slogger.Info("current conditions updated", "observedAt", st.Value.ObsTimeUTC)
		}
	})

	// Recurring refresh of the current source; daily and history stay
	// on-demand.
	sched := scheduler.New(cfg.RefreshInterval, slogger, currentSource.Trigger)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Prime all three sources once at startup.
	currentSource.Trigger(context.Background())
	historySource.Trigger(context.Background())
	dailySource.Trigger(context.Background())

	app := fiber.New(fiber.Config{
		AppName:               "weather-insights",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-insights",
		})
	})

	httpapi.RegisterRoutes(app, &httpapi.Sources{
		Daily:   dailySource,
		Current: currentSource,
		History: historySource,
		DailyFetch: func(start, end time.Time) weather.FetchFunc[[]weather.DailyRecord] {
			return func(ctx context.Context) ([]weather.DailyRecord, error) {
				return dailyProvider.Fetch(ctx, start, end)
			}
		},
		Units: cfg.Units,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			slogger.Error("fiber server stopped", "err", err)
		}
	}()

	// Wait for termination signal.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slogger.Error("error during shutdown", "err", err)
	}
}
