package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"weatherbot-api/internal/config"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// client implements Resolver against the Open-Meteo geocoding API with the
// Census one-line-address geocoder as a fallback for street addresses.
type client struct {
	config     config.GeocodeConfig
	logger     *zap.Logger
	httpClient *http.Client
}

// searchResponse is the Open-Meteo geocoding payload
type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	Name        string  `json:"name"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Admin1Code  string  `json:"admin1_code"`
	CountryCode string  `json:"country_code"`
}

// censusResponse is the Census one-line-address geocoder payload
type censusResponse struct {
	Result struct {
		AddressMatches []struct {
			Coordinates struct {
				X float64 `json:"x"`
				Y float64 `json:"y"`
			} `json:"coordinates"`
		} `json:"addressMatches"`
	} `json:"result"`
}

// NewClient creates a new geocoding client
func NewClient(cfg config.GeocodeConfig, logger *zap.Logger) Resolver {
	return &client{
		config: cfg,
		logger: logger,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

// Resolve tries Open-Meteo (best for "City, ST"), then Open-Meteo without a
// country restriction, then the Census geocoder (best for full addresses).
func (c *client) Resolve(ctx context.Context, text string) (*Location, error) {
	text = NormalizeText(text)
	if text == "" {
		return nil, NewResolveError(text, "empty location", nil)
	}

	loc, err := c.searchOpenMeteo(ctx, text, c.config.CountryCode)
	if err == nil {
		return loc, nil
	}
	c.logger.Debug("Open-Meteo lookup with country restriction failed",
		zap.String("query", text), zap.Error(err))

	if !strings.ContainsAny(text, "0123456789") {
		if loc, err := c.searchOpenMeteo(ctx, text, ""); err == nil {
			return loc, nil
		}
	}

	loc, err = c.censusFallback(ctx, text)
	if err == nil {
		return loc, nil
	}
	c.logger.Debug("Census fallback failed", zap.String("query", text), zap.Error(err))

	return nil, NewResolveError(text, `no geocode match; try "City, State" like "Davis, CA"`, err)
}

func (c *client) searchOpenMeteo(ctx context.Context, text, countryCode string) (*Location, error) {
	city, state := ParseCityState(text)

	params := url.Values{}
	params.Set("name", city)
	params.Set("count", "20")
	params.Set("format", "json")
	if countryCode != "" {
		params.Set("country_code", countryCode)
	}

	var payload searchResponse
	if err := c.getJSON(ctx, c.config.SearchURL+"?"+params.Encode(), &payload); err != nil {
		return nil, err
	}
	if len(payload.Results) == 0 {
		return nil, fmt.Errorf("no results for %q", text)
	}

	best := pickBest(payload.Results, city, state, countryCode)

	descriptor := best.Name
	admin1 := best.Admin1Code
	switch {
	case len(admin1) == 2:
		descriptor = fmt.Sprintf("%s, %s", best.Name, strings.ToUpper(admin1))
	case state != "":
		descriptor = fmt.Sprintf("%s, %s", best.Name, state)
	}

	return &Location{
		Descriptor: descriptor,
		Lat:        best.Latitude,
		Lon:        best.Longitude,
	}, nil
}

// pickBest prefers an exact city-name match, then a state match, then a
// country match.
func pickBest(results []searchResult, city, state, countryCode string) searchResult {
	score := func(r searchResult) int {
		s := 0
		if strings.EqualFold(r.Name, city) {
			s += 4
		}
		if state != "" && strings.EqualFold(r.Admin1Code, state) {
			s += 2
		}
		if countryCode != "" && strings.EqualFold(r.CountryCode, countryCode) {
			s++
		}
		return s
	}

	best := results[0]
	bestScore := score(best)
	for _, r := range results[1:] {
		if sc := score(r); sc > bestScore {
			best, bestScore = r, sc
		}
	}
	return best
}

func (c *client) censusFallback(ctx context.Context, text string) (*Location, error) {
	candidates := []string{text}
	lower := strings.ToLower(text)
	if !strings.Contains(lower, "usa") && !strings.Contains(lower, "united states") {
		candidates = append(candidates, text+", USA")
	}

	for _, addr := range candidates {
		params := url.Values{}
		params.Set("address", addr)
		params.Set("benchmark", "Public_AR_Current")
		params.Set("format", "json")

		var payload censusResponse
		if err := c.getJSON(ctx, c.config.FallbackURL+"?"+params.Encode(), &payload); err != nil {
			return nil, err
		}
		if len(payload.Result.AddressMatches) == 0 {
			continue
		}

		coords := payload.Result.AddressMatches[0].Coordinates
		descriptor := text
		parts := strings.Split(text, ",")
		if len(parts) >= 2 {
			st := strings.ToUpper(strings.TrimSpace(parts[len(parts)-1]))
			if len(st) == 2 {
				descriptor = fmt.Sprintf("%s, %s", strings.TrimSpace(parts[len(parts)-2]), st)
			}
		}

		return &Location{Descriptor: descriptor, Lat: coords.Y, Lon: coords.X}, nil
	}

	return nil, fmt.Errorf("no census match for %q", text)
}

// getJSON performs a GET with retry on transient failures
func (c *client) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")

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
