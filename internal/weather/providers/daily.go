package providers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/pwstats/weather-insights/internal/weather"
)

// DailyHistoryConfig configures the daily-history endpoint for a fixed
// geographic point. Key and host are passed through as-is; a bad key simply
// surfaces as an HTTP error from the provider.
type DailyHistoryConfig struct {
	APIKey    string
	APIHost   string
	Latitude  float64
	Longitude float64

	// BaseURL overrides the endpoint, used by tests. Empty means
	// https://{APIHost}/point/daily.
	BaseURL string
}

// DailyHistory fetches aggregated per-day weather history for a date window.
type DailyHistory struct {
	client  *Client
	log     *slog.Logger
	cfg     DailyHistoryConfig
	baseURL string
}

func NewDailyHistory(httpClient *http.Client, log *slog.Logger, cfg DailyHistoryConfig) *DailyHistory {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s/point/daily", cfg.APIHost)
	}
	return &DailyHistory{
		client:  newClient(httpClient, "daily-history"),
		log:     log,
		cfg:     cfg,
		baseURL: baseURL,
	}
}

// Fetch retrieves, decodes, and sorts the daily series for [start, end].
func (p *DailyHistory) Fetch(ctx context.Context, start, end time.Time) ([]weather.DailyRecord, error) {
	values := url.Values{}
	values.Set("lat", fmt.Sprintf("%f", p.cfg.Latitude))
	values.Set("lon", fmt.Sprintf("%f", p.cfg.Longitude))
	values.Set("start", start.Format("2006-01-02"))
	values.Set("end", end.Format("2006-01-02"))

	u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, &weather.NetworkError{Op: "build request", Cause: err}
	}
	req.Header.Set("X-RapidAPI-Key", p.cfg.APIKey)
	req.Header.Set("X-RapidAPI-Host", p.cfg.APIHost)

	body, err := p.client.fetchBody(ctx, req)
	if err != nil {
		return nil, err
	}

	records, err := weather.DecodeDailyHistory(body)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &weather.EmptyResultError{Message: "no daily history for period"}
	}

	return weather.SortDailyRecords(records), nil
}
