// Package weather fetches current conditions from an OpenWeatherMap-style
// API and maps them onto the routing conditions used for ETA adjustment.
// The integration is optional: without an API key every lookup reports
// clear conditions.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/swiftresponder/swiftresponder/core/model"
	"github.com/swiftresponder/swiftresponder/core/routing"
	"github.com/swiftresponder/swiftresponder/infra/logger"
)

// Config holds the weather API settings.
type Config struct {
	Endpoint string        `json:"endpoint" yaml:"endpoint"`
	APIKey   string        `json:"api_key" yaml:"api_key"`
	Timeout  time.Duration `json:"timeout" yaml:"timeout"`
}

// SetDefaults fills zero values with sane defaults.
func (c *Config) SetDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "https://api.openweathermap.org/data/2.5/weather"
	}
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}
}

// Current is a snapshot of observed conditions at a location.
type Current struct {
	TemperatureC float64 `json:"temperature_c"`
	Condition    string  `json:"condition"`
	Description  string  `json:"description"`
	Humidity     int     `json:"humidity"`
	WindKMH      float64 `json:"wind_kmh"`
	VisibilityM  int     `json:"visibility_m"`
	Hazardous    bool    `json:"hazardous"`
}

// Client fetches current weather conditions.
type Client struct {
	cfg  Config
	http *http.Client
	log  logger.Logger
}

// NewClient creates a weather client. An empty API key disables lookups.
func NewClient(cfg Config) *Client {
	cfg.SetDefaults()
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  logger.New("weather-client"),
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool { return c.cfg.APIKey != "" }

var hazardKeywords = []string{
	"thunderstorm", "snow", "heavy rain", "fog", "tornado", "hurricane",
}

type apiResponse struct {
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"` // m/s
	} `json:"wind"`
	Visibility int `json:"visibility"` // meters
}

// Fetch returns current conditions at the location, or nil when the
// integration is disabled.
func (c *Client) Fetch(ctx context.Context, loc model.LatLng) (*Current, error) {
	if !c.Enabled() {
		return nil, nil
	}

	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%f", loc.Lat))
	params.Set("lon", fmt.Sprintf("%f", loc.Lng))
	params.Set("appid", c.cfg.APIKey)
	params.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather: unexpected status %d", resp.StatusCode)
	}
	var ar apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return nil, fmt.Errorf("weather: decode response: %w", err)
	}
	if len(ar.Weather) == 0 {
		return nil, fmt.Errorf("weather: empty conditions in response")
	}

	cur := &Current{
		TemperatureC: math.Round(ar.Main.Temp),
		Condition:    ar.Weather[0].Main,
		Description:  ar.Weather[0].Description,
		Humidity:     ar.Main.Humidity,
		WindKMH:      math.Round(ar.Wind.Speed * 3.6),
		VisibilityM:  ar.Visibility,
	}
	cur.Hazardous = isHazardous(cur)
	c.log.Debugf("weather at %.4f,%.4f: %s, visibility %dm, wind %.0f km/h",
		loc.Lat, loc.Lng, cur.Description, cur.VisibilityM, cur.WindKMH)
	return cur, nil
}

func isHazardous(cur *Current) bool {
	desc := strings.ToLower(cur.Description)
	for _, kw := range hazardKeywords {
		if strings.Contains(desc, kw) {
			return true
		}
	}
	return cur.WindKMH > 50 || cur.VisibilityM < 1000
}

// Conditions maps a weather snapshot onto routing conditions. A nil
// snapshot yields clear defaults.
func Conditions(cur *Current, now time.Time) routing.Conditions {
	cond := routing.Conditions{
		Traffic:      routing.TrafficLight,
		VisibilityKM: 10,
		TimeOfDay:    TimeBand(now),
	}
	if cur == nil {
		return cond
	}
	if cur.VisibilityM > 0 {
		cond.VisibilityKM = float64(cur.VisibilityM) / 1000
	}
	if cur.Hazardous {
		cond.Traffic = routing.TrafficModerate
	}
	return cond
}

// TimeBand classifies the local hour into a routing time band.
func TimeBand(now time.Time) routing.TimeBand {
	switch h := now.Hour(); {
	case h >= 7 && h < 10:
		return routing.BandMorningRush
	case h >= 16 && h < 19:
		return routing.BandEveningRush
	case h >= 10 && h < 16:
		return routing.BandMidday
	default:
		return routing.BandNight
	}
}
