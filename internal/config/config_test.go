package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/pwstats/weather-insights/internal/weather"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DAILY_API_KEY", "DAILY_API_HOST", "PWS_API_KEY", "PWS_STATION_ID",
		"UNITS", "DAILY_LAT", "DAILY_LON", "DAILY_WINDOW_DAYS",
		"REFRESH_INTERVAL", "HTTP_TIMEOUT", "PORT", "APP_ENV", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Units != weather.UnitsMetric {
		t.Errorf("Units = %q; want metric", cfg.Units)
	}
	if cfg.RefreshInterval != 60*time.Second {
		t.Errorf("RefreshInterval = %v; want 60s", cfg.RefreshInterval)
	}
	if cfg.HTTPTimeout != 15*time.Second {
		t.Errorf("HTTPTimeout = %v; want 15s", cfg.HTTPTimeout)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q; want 8080", cfg.Port)
	}
	if cfg.DailyWindowDays != 30 {
		t.Errorf("DailyWindowDays = %d; want 30", cfg.DailyWindowDays)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v; want info", cfg.LogLevel)
	}
	// Missing keys stay empty; the core does not validate them.
	if cfg.DailyAPIKey != "" || cfg.PWSAPIKey != "" || cfg.PWSStationID != "" {
		t.Error("expected empty credentials by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("UNITS", "imperial")
	t.Setenv("REFRESH_INTERVAL", "5m")
	t.Setenv("DAILY_LAT", "40.7")
	t.Setenv("DAILY_LON", "-74.0")
	t.Setenv("PWS_STATION_ID", "KNYNEWYO123")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Units != weather.UnitsImperial {
		t.Errorf("Units = %q; want imperial", cfg.Units)
	}
	if cfg.RefreshInterval != 5*time.Minute {
		t.Errorf("RefreshInterval = %v; want 5m", cfg.RefreshInterval)
	}
	if cfg.DailyLat != 40.7 || cfg.DailyLon != -74.0 {
		t.Errorf("point = %v,%v", cfg.DailyLat, cfg.DailyLon)
	}
	if cfg.PWSStationID != "KNYNEWYO123" {
		t.Errorf("PWSStationID = %q", cfg.PWSStationID)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v; want debug", cfg.LogLevel)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"bad units", "UNITS", "kelvin"},
		{"bad interval", "REFRESH_INTERVAL", "soon"},
		{"bad latitude", "DAILY_LAT", "north"},
		{"bad log level", "LOG_LEVEL", "loud"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)

			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%q", tc.key, tc.value)
			}
		})
	}
}
