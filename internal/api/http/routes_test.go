package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pwstats/weather-insights/internal/weather"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func f(v float64) *float64 { return &v }

func testSources() (*Sources, func()) {
	daily := weather.NewSource("daily", testLogger(), func(ctx context.Context) ([]weather.DailyRecord, error) {
		return []weather.DailyRecord{{Date: "2024-01-01", TempAvg: f(2.0)}}, nil
	})
	current := weather.NewSource("current", testLogger(), func(ctx context.Context) (*weather.Observation, error) {
		return &weather.Observation{ObsTimeUTC: "2024-06-02T10:00:00Z"}, nil
	})
	epoch := time.Date(2024, 6, 2, 10, 0, 0, 0, time.UTC).Unix()
	history := weather.NewSource("history", testLogger(), func(ctx context.Context) ([]weather.HistoricalObservation, error) {
		return []weather.HistoricalObservation{{
			ObsTimeUTC: "2024-06-02T10:00:00Z",
			Epoch:      &epoch,
			Metric:     &weather.AggregateUnitGroup{TempAvg: f(21.0)},
		}}, nil
	})

	s := &Sources{
		Daily:   daily,
		Current: current,
		History: history,
		DailyFetch: func(start, end time.Time) weather.FetchFunc[[]weather.DailyRecord] {
			return func(ctx context.Context) ([]weather.DailyRecord, error) {
				return nil, nil
			}
		},
		Units: weather.UnitsMetric,
	}
	cleanup := func() {
		daily.Close()
		current.Close()
		history.Close()
	}
	return s, cleanup
}

func testApp(s *Sources) *fiber.App {
	app := fiber.New()
	RegisterRoutes(app, s)
	return app
}

func getJSON(t *testing.T, app *fiber.App, path string, out any) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("invalid JSON response: %v", err)
		}
	}
	return resp.StatusCode
}

func TestSnapshotEndpointBeforeAnyFetch(t *testing.T) {
	s, cleanup := testSources()
	defer cleanup()
	app := testApp(s)

	var body map[string]any
	status := getJSON(t, app, "/api/v1/sources/daily", &body)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if body["loading"] != false {
		t.Errorf("loading = %v; want false", body["loading"])
	}
	if _, ok := body["data"]; ok {
		t.Error("expected no data before any fetch")
	}
	if _, ok := body["error"]; ok {
		t.Error("expected no error before any fetch")
	}
}

func TestRefreshThenSnapshot(t *testing.T) {
	s, cleanup := testSources()
	defer cleanup()
	app := testApp(s)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sources/current/refresh", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("refresh status = %d; want %d", resp.StatusCode, http.StatusAccepted)
	}

	// The fetch completes asynchronously.
	deadline := time.Now().Add(2 * time.Second)
	for {
		var body map[string]any
		getJSON(t, app, "/api/v1/sources/current", &body)
		if data, ok := body["data"].(map[string]any); ok {
			if data["obsTimeUtc"] != "2024-06-02T10:00:00Z" {
				t.Errorf("obsTimeUtc = %v", data["obsTimeUtc"])
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("snapshot never carried data")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHistorySnapshotIncludesHourlySeries(t *testing.T) {
	s, cleanup := testSources()
	defer cleanup()
	app := testApp(s)

	s.History.Trigger(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for {
		var body struct {
			Hourly []weather.HourlyTemperature `json:"hourly"`
		}
		getJSON(t, app, "/api/v1/sources/history", &body)
		if len(body.Hourly) == 1 {
			if body.Hourly[0].TempAvg != 21.0 {
				t.Errorf("hourly TempAvg = %v; want 21.0", body.Hourly[0].TempAvg)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("history snapshot never carried hourly series")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSummaryJoinsAllSources(t *testing.T) {
	s, cleanup := testSources()
	defer cleanup()
	app := testApp(s)

	var body map[string]map[string]any
	status := getJSON(t, app, "/api/v1/summary", &body)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	for _, name := range []string{"daily", "current", "history"} {
		if body[name] == nil {
			t.Errorf("summary missing %q", name)
		}
	}
}

func TestDailyRefreshWindowValidation(t *testing.T) {
	s, cleanup := testSources()
	defer cleanup()
	app := testApp(s)

	cases := []struct {
		name string
		path string
	}{
		{"start without end", "/api/v1/sources/daily/refresh?start=2024-01-01"},
		{"invalid date", "/api/v1/sources/daily/refresh?start=2024-13-99&end=2024-12-31"},
		{"end before start", "/api/v1/sources/daily/refresh?start=2024-01-02&end=2024-01-01"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tc.path, nil)
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d; want %d", resp.StatusCode, http.StatusBadRequest)
			}
		})
	}
}

func TestDailyRefreshExplicitWindow(t *testing.T) {
	s, cleanup := testSources()
	defer cleanup()

	var mu sync.Mutex
	var gotStart, gotEnd time.Time
	s.DailyFetch = func(start, end time.Time) weather.FetchFunc[[]weather.DailyRecord] {
		mu.Lock()
		gotStart, gotEnd = start, end
		mu.Unlock()
		return func(ctx context.Context) ([]weather.DailyRecord, error) {
			return []weather.DailyRecord{{Date: "2024-01-01"}}, nil
		}
	}
	app := testApp(s)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sources/daily/refresh?start=2024-01-01&end=2024-01-31", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d; want %d", resp.StatusCode, http.StatusAccepted)
	}

	mu.Lock()
	defer mu.Unlock()
	if !gotStart.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", gotStart)
	}
	if !gotEnd.Equal(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %v", gotEnd)
	}
}

func TestDailyRefreshDefaultWindow(t *testing.T) {
	s, cleanup := testSources()
	defer cleanup()
	app := testApp(s)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sources/daily/refresh", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d; want %d", resp.StatusCode, http.StatusAccepted)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		var body map[string]any
		getJSON(t, app, "/api/v1/sources/daily", &body)
		if _, ok := body["data"]; ok {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("default-window refresh never produced data")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSnapshotCarriesErrorWithStaleData(t *testing.T) {
	var fail bool
	var mu sync.Mutex
	current := weather.NewSource("current", testLogger(), func(ctx context.Context) (*weather.Observation, error) {
		mu.Lock()
		defer mu.Unlock()
		if fail {
			return nil, &weather.HTTPError{StatusCode: 403, Body: "Invalid API Key"}
		}
		return &weather.Observation{ObsTimeUTC: "2024-06-02T11:00:00Z"}, nil
	})
	defer current.Close()

	s, cleanup := testSources()
	defer cleanup()
	s.Current = current
	app := testApp(s)

	current.Trigger(context.Background())
	waitSnapshot(t, app, "/api/v1/sources/current", func(body map[string]any) bool {
		_, ok := body["data"]
		return ok
	})

	mu.Lock()
	fail = true
	mu.Unlock()
	current.Trigger(context.Background())

	waitSnapshot(t, app, "/api/v1/sources/current", func(body map[string]any) bool {
		errText, ok := body["error"].(string)
		return ok && errText != ""
	})

	var body map[string]any
	getJSON(t, app, "/api/v1/sources/current", &body)
	if _, ok := body["data"]; !ok {
		t.Error("stale data should still be present alongside the error")
	}
}

func waitSnapshot(t *testing.T, app *fiber.App, path string, cond func(map[string]any) bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		var body map[string]any
		getJSON(t, app, path, &body)
		if cond(body) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("snapshot at %s never matched", path)
}
