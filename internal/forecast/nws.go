package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"weatherbot-api/internal/config"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// nwsClient implements Provider against the National Weather Service API.
// Two calls per fetch: points lookup for the forecast URL, then the forecast
// itself, reduced to a one-line summary of the first period.
type nwsClient struct {
	config     config.ForecastConfig
	logger     *zap.Logger
	httpClient *http.Client
}

type pointsResponse struct {
	Properties struct {
		Forecast string `json:"forecast"`
	} `json:"properties"`
}

type forecastResponse struct {
	Properties struct {
		Periods []forecastPeriod `json:"periods"`
	} `json:"properties"`
}

type forecastPeriod struct {
	Name            string `json:"name"`
	Temperature     int    `json:"temperature"`
	TemperatureUnit string `json:"temperatureUnit"`
	ShortForecast   string `json:"shortForecast"`
}

// NewNWSClient creates a new NWS forecast client
func NewNWSClient(cfg config.ForecastConfig, logger *zap.Logger) Provider {
	return &nwsClient{
		config: cfg,
		logger: logger,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

// Fetch returns a one-liner like "Tonight: 54F. Partly Cloudy"
func (c *nwsClient) Fetch(ctx context.Context, lat, lon float64) (string, error) {
	pointsURL := fmt.Sprintf("%s/%.4f,%.4f", c.config.PointsURL, lat, lon)

	var points pointsResponse
	if err := c.getJSON(ctx, pointsURL, &points); err != nil {
		return "", NewProviderError("points lookup", "request failed", err)
	}
	if points.Properties.Forecast == "" {
		return "", NewProviderError("points lookup", "response missing properties.forecast", nil)
	}

	var fc forecastResponse
	if err := c.getJSON(ctx, points.Properties.Forecast, &fc); err != nil {
		return "", NewProviderError("forecast fetch", "request failed", err)
	}
	if len(fc.Properties.Periods) == 0 {
		return "", NewProviderError("forecast fetch", "response missing periods", nil)
	}

	first := fc.Properties.Periods[0]
	name := first.Name
	if name == "" {
		name = "Forecast"
	}

	line := fmt.Sprintf("%s: %d%s. %s", name, first.Temperature, first.TemperatureUnit, first.ShortForecast)
	return strings.TrimSpace(line), nil
}

// getJSON performs a GET with the configured User-Agent and retry on
// transient failures. NWS rejects requests without a User-Agent.
func (c *nwsClient) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", c.config.UserAgent)
		req.Header.Set("Accept", "application/geo+json, application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("unexpected status %d", resp.StatusCode)
			if resp.StatusCode >= http.StatusInternalServerError ||
				resp.StatusCode == http.StatusTooManyRequests {
				return err
			}
			return backoff.Permanent(err)
		}
		if err := json.Unmarshal(body, out); err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}

	strategy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(c.config.MaxRetries)), ctx)
	return backoff.Retry(operation, strategy)
}
