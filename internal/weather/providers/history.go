package providers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/pwstats/weather-insights/internal/weather"
)

const defaultHistoryURL = "https://api.weather.com/v2/pws/observations/all/1day"

// RecentHistory fetches the 24-hour recent-history series of one station.
type RecentHistory struct {
	client  *Client
	log     *slog.Logger
	cfg     PWSConfig
	baseURL string
}

func NewRecentHistory(httpClient *http.Client, log *slog.Logger, cfg PWSConfig) *RecentHistory {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultHistoryURL
	}
	return &RecentHistory{
		client:  newClient(httpClient, "pws-history"),
		log:     log,
		cfg:     cfg,
		baseURL: baseURL,
	}
}

// Fetch retrieves, decodes, and chronologically sorts the recent-history
// series. Points without a usable timestamp are excluded from the ordered
// series and logged; they cannot be charted.
func (p *RecentHistory) Fetch(ctx context.Context) ([]weather.HistoricalObservation, error) {
	values := url.Values{}
	values.Set("stationId", p.cfg.StationID)
	values.Set("format", "json")
	values.Set("units", p.cfg.Units.QueryCode())
	values.Set("apiKey", p.cfg.APIKey)

	u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, &weather.NetworkError{Op: "build request", Cause: err}
	}

	body, err := p.client.fetchBody(ctx, req)
	if err != nil {
		return nil, err
	}

	points, err := weather.DecodeHistoricalObservations(body)
	if err != nil {
		return nil, err
	}

	ordered, unorderable := weather.SortObservations(points)
	if len(unorderable) > 0 {
		p.log.Warn("excluding observations without a usable timestamp",
			"source", "pws-history", "count", len(unorderable))
	}
	if len(ordered) == 0 {
		return nil, &weather.EmptyResultError{Message: "no recent observations"}
	}

	return ordered, nil
}
