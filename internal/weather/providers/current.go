package providers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/pwstats/weather-insights/internal/weather"
)

const defaultCurrentURL = "https://api.weather.com/v2/pws/observations/current"

// PWSConfig configures the personal-weather-station endpoints. Key and
// station identifier are opaque strings; the provider rejects bad ones with
// an HTTP error.
type PWSConfig struct {
	APIKey    string
	StationID string
	Units     weather.Units

	// BaseURL overrides the endpoint, used by tests.
	BaseURL string
}

// CurrentConditions fetches the single most recent observation of one station.
type CurrentConditions struct {
	client  *Client
	log     *slog.Logger
	cfg     PWSConfig
	baseURL string
}

func NewCurrentConditions(httpClient *http.Client, log *slog.Logger, cfg PWSConfig) *CurrentConditions {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultCurrentURL
	}
	return &CurrentConditions{
		client:  newClient(httpClient, "pws-current"),
		log:     log,
		cfg:     cfg,
		baseURL: baseURL,
	}
}

// Fetch retrieves the latest observation. An empty observations array is the
// provider's "station has no data" answer and is reported as an empty result,
// not a failure.
func (p *CurrentConditions) Fetch(ctx context.Context) (*weather.Observation, error) {
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

	observations, err := weather.DecodeCurrentObservations(body)
	if err != nil {
		return nil, err
	}
	if len(observations) == 0 {
		return nil, &weather.EmptyResultError{Message: "no current observations"}
	}

	return &observations[0], nil
}
