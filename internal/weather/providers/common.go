package providers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/pwstats/weather-insights/internal/weather"
)

// Client bundles the shared HTTP client with a per-provider circuit breaker.
// Each trigger makes exactly one attempt; there is no retry loop, the next
// scheduled refresh covers a failed cycle.
type Client struct {
	http    *http.Client
	circuit *gobreaker.CircuitBreaker
}

func newClient(httpClient *http.Client, name string) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
	return &Client{http: httpClient, circuit: cb}
}

var errServerStatus = errors.New("server error status")

// do executes one attempt. Transport failures and 5xx responses count against
// the breaker; an open breaker fails fast without issuing a request and
// surfaces as a transport-level error.
func (c *Client) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)

	result, err := c.circuit.Execute(func() (interface{}, error) {
		resp, execErr := c.http.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		if resp.StatusCode >= 500 {
			// Counted as a breaker failure, but the response is still
			// returned so the caller can surface status and body.
			return resp, errServerStatus
		}
		return resp, nil
	})

	if err != nil {
		if resp, ok := result.(*http.Response); ok {
			return resp, nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &weather.NetworkError{Op: "circuit check", Cause: err}
		}
		return nil, &weather.NetworkError{Op: "request", Cause: err}
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, &weather.NetworkError{Op: "request", Cause: errors.New("unexpected circuit breaker result type")}
	}
	return resp, nil
}

// maxErrorBody caps how much of a failed response is carried into an HTTPError.
const maxErrorBody = 4 << 10

// fetchBody performs the request, validates the HTTP status, and returns the
// body. Non-2xx responses yield an HTTPError carrying status and body text.
func (c *Client) fetchBody(ctx context.Context, req *http.Request) ([]byte, error) {
	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &weather.HTTPError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &weather.NetworkError{Op: "read response", Cause: err}
	}
	return body, nil
}
