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

	"go.uber.org/zap"
)

// metarClient implements MetarProvider. One station per request; the report
// is compressed into a single pilot-shorthand line.
type metarClient struct {
	config     config.ForecastConfig
	logger     *zap.Logger
	httpClient *http.Client
}

// metarEntry is one station's decoded METAR
type metarEntry struct {
	StationID      string   `json:"station_id"`
	FlightCategory string   `json:"flight_category"`
	AltimInHg      *float64 `json:"altim_in_hg"`
	TempC          *float64 `json:"temp_c"`
	DewpointC      *float64 `json:"dewpoint_c"`
	WindDirDegrees *int     `json:"wind_dir_degrees"`
	WindSpeedKt    *int     `json:"wind_speed_kt"`
	WindGustKt     *int     `json:"wind_gust_kt"`
	VisibilityMi   *float64 `json:"visibility_statute_mi"`
	SkyCover       string   `json:"sky_cover"`
	SkyCover2      string   `json:"sky_cover2"`
	SkyCover3      string   `json:"sky_cover3"`
	CloudBaseFt    *int     `json:"cloud_base_ft_agl"`
	CloudBaseFt2   *int     `json:"cloud_base_ft_agl2"`
	CloudBaseFt3   *int     `json:"cloud_base_ft_agl3"`
}

// NewMetarClient creates a new METAR client
func NewMetarClient(cfg config.ForecastConfig, logger *zap.Logger) MetarProvider {
	return &metarClient{
		config: cfg,
		logger: logger,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

// FetchMetar returns a formatted METAR line for the station
func (c *metarClient) FetchMetar(ctx context.Context, station string) (string, error) {
	station = strings.ToLower(strings.TrimSpace(station))
	if station == "" {
		return "", NewProviderError("metar fetch", "empty station", nil)
	}

	rawURL := fmt.Sprintf("%s/%s", strings.TrimRight(c.config.MetarURL, "/"), station)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", NewProviderError("metar fetch", "bad request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", NewProviderError("metar fetch", "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", NewProviderError("metar fetch", fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", NewProviderError("metar fetch", "read failed", err)
	}

	entries, err := decodeMetarPayload(body)
	if err != nil || len(entries) == 0 {
		return "", NewProviderError("metar fetch", "no report for station "+strings.ToUpper(station), err)
	}

	return FormatMetarEntry(entries[0]), nil
}

// decodeMetarPayload accepts either a bare entry or a list of entries
func decodeMetarPayload(body []byte) ([]metarEntry, error) {
	var list []metarEntry
	if err := json.Unmarshal(body, &list); err == nil {
		return list, nil
	}
	var single metarEntry
	if err := json.Unmarshal(body, &single); err != nil {
		return nil, err
	}
	if single.StationID == "" {
		return nil, fmt.Errorf("unrecognized metar payload")
	}
	return []metarEntry{single}, nil
}

// FormatMetarEntry renders an entry as
// "KSMF-VFR-30.12-68/50-270@12-10.0mi-CLR|12000ft"
func FormatMetarEntry(e metarEntry) string {
	station := strings.ToUpper(e.StationID)
	if station == "" {
		station = "UNK"
	}
	category := e.FlightCategory
	if category == "" {
		category = "UNK"
	}

	altim := "UNK"
	if e.AltimInHg != nil {
		altim = fmt.Sprintf("%.2f", *e.AltimInHg)
	}

	temp := "NA"
	if e.TempC != nil {
		temp = fmt.Sprintf("%d", celsiusToFahrenheit(*e.TempC))
	}
	dew := "NA"
	if e.DewpointC != nil {
		dew = fmt.Sprintf("%d", celsiusToFahrenheit(*e.DewpointC))
	}

	vis := "NA"
	if e.VisibilityMi != nil {
		vis = fmt.Sprintf("%.1f", *e.VisibilityMi)
	}

	cover, base := formatCeiling(e)

	return fmt.Sprintf("%s-%s-%s-%s/%s-%s-%smi-%s|%dft",
		station, category, altim, temp, dew, formatWind(e), vis, cover, base)
}

func celsiusToFahrenheit(c float64) int {
	f := c*9/5 + 32
	if f >= 0 {
		return int(f + 0.5)
	}
	return int(f - 0.5)
}

// formatWind renders "270@12", "270@12G18", "VRB@5" or "CALM"
func formatWind(e metarEntry) string {
	dir, speed, gust := 0, 0, 0
	if e.WindDirDegrees != nil {
		dir = *e.WindDirDegrees
	}
	if e.WindSpeedKt != nil {
		speed = *e.WindSpeedKt
	}
	if e.WindGustKt != nil {
		gust = *e.WindGustKt
	}

	if dir == 0 && speed == 0 && gust == 0 {
		return "CALM"
	}

	dirStr := "VRB"
	if dir != 0 {
		dirStr = fmt.Sprintf("%d", dir)
	}
	if e.WindGustKt != nil {
		return fmt.Sprintf("%s@%dG%d", dirStr, speed, gust)
	}
	return fmt.Sprintf("%s@%d", dirStr, speed)
}

// formatCeiling picks the displayed cover and the lowest BKN/OVC base.
// Missing bases default to 12000ft, missing covers to CLR.
func formatCeiling(e metarEntry) (string, int) {
	covers := []string{e.SkyCover, e.SkyCover2, e.SkyCover3}
	bases := []*int{e.CloudBaseFt, e.CloudBaseFt2, e.CloudBaseFt3}

	cover := "CLR"
	for _, c := range covers {
		if c != "" {
			cover = c
			break
		}
	}

	normalize := func(b *int) int {
		if b == nil {
			return 12000
		}
		return *b
	}

	base := -1
	for i, c := range covers {
		if c == "BKN" || c == "OVC" {
			if b := normalize(bases[i]); base < 0 || b < base {
				base = b
			}
		}
	}
	if base < 0 {
		base = 12000
		for i, c := range covers {
			if c != "" {
				base = normalize(bases[i])
				break
			}
		}
	}

	return cover, base
}
