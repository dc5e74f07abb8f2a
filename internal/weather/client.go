package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
)

// StatusError is a non-2xx reply from the forecast provider.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API Error %d", e.Code)
}

// ErrMalformedResponse marks a 2xx reply that is missing the expected
// hourly.time / hourly.temperature_2m arrays.
var ErrMalformedResponse = errors.New("no hourly data available in response")

// DateRange bounds a forecast query to whole days (YYYY-MM-DD). The zero
// value leaves the provider's own default window in effect.
type DateRange struct {
	Start string
	End   string
}

// Client fetches hourly temperature series from the Open-Meteo forecast API.
// It never retries; upstream failures are surfaced to the caller as data.
// A circuit breaker stops hammering the provider while it is failing hard.
type Client struct {
	baseURL    string
	httpClient *http.Client
	circuit    *gobreaker.CircuitBreaker
}

// NewClient creates a forecast client on top of a shared http.Client. The
// http.Client's timeout bounds each individual upstream call.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openmeteo",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			// Only rate limiting, server errors and transport failures
			// count toward opening the circuit. Plain client errors still
			// fail the call but say nothing about the provider's health.
			var statusErr *StatusError
			if errors.As(err, &statusErr) {
				return statusErr.Code != http.StatusTooManyRequests && statusErr.Code < 500
			}
			return false
		},
	})

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		circuit:    cb,
	}
}

// Forecast performs one GET for the given coordinates and returns the raw
// hourly series. Timestamps come back in Asia/Dhaka local time so the 14:00
// slot means mid-afternoon at the location.
func (c *Client) Forecast(ctx context.Context, lat, lon float64, dates DateRange) (HourlySeries, error) {
	values := url.Values{}
	values.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	values.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	values.Set("hourly", "temperature_2m")
	values.Set("timezone", "Asia/Dhaka")
	if dates.Start != "" {
		values.Set("start_date", dates.Start)
	}
	if dates.End != "" {
		values.Set("end_date", dates.End)
	}

	u := fmt.Sprintf("%s?%s", c.baseURL, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return HourlySeries{}, err
	}

	result, err := c.circuit.Execute(func() (interface{}, error) {
		resp, execErr := c.httpClient.Do(req)
		if execErr != nil {
			return nil, fmt.Errorf("forecast request failed: %w", execErr)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			return nil, &StatusError{Code: resp.StatusCode}
		}
		return resp, nil
	})
	if err != nil {
		return HourlySeries{}, err
	}

	resp := result.(*http.Response)
	defer resp.Body.Close()

	var payload struct {
		Hourly struct {
			Time          []string  `json:"time"`
			Temperature2M []float64 `json:"temperature_2m"`
		} `json:"hourly"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return HourlySeries{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if payload.Hourly.Time == nil || payload.Hourly.Temperature2M == nil {
		return HourlySeries{}, ErrMalformedResponse
	}

	return HourlySeries{
		Time:         payload.Hourly.Time,
		TemperatureC: payload.Hourly.Temperature2M,
	}, nil
}
