// Package directions implements routing.Provider against a directions API
// that returns encoded-polyline routes with live traffic estimates.
package directions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/swiftresponder/swiftresponder/core/model"
	"github.com/swiftresponder/swiftresponder/core/routing"
	"github.com/swiftresponder/swiftresponder/infra/logger"
)

// Config holds the directions API settings.
type Config struct {
	Endpoint string        `json:"endpoint" yaml:"endpoint"`
	APIKey   string        `json:"api_key" yaml:"api_key"`
	Timeout  time.Duration `json:"timeout" yaml:"timeout"`
}

// SetDefaults fills zero values with sane defaults.
func (c *Config) SetDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}
}

// Client queries a directions endpoint for driving routes with a best-guess
// traffic model. It implements routing.Provider.
type Client struct {
	cfg  Config
	http *http.Client
	log  logger.Logger
}

// NewClient creates a directions client.
func NewClient(cfg Config) *Client {
	cfg.SetDefaults()
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  logger.New("directions-client"),
	}
}

type directionsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Routes       []struct {
		OverviewPolyline struct {
			Points string `json:"points"`
		} `json:"overview_polyline"`
		Legs []struct {
			Distance struct {
				Value int `json:"value"` // meters
			} `json:"distance"`
			Duration struct {
				Value int `json:"value"` // seconds
			} `json:"duration"`
			DurationInTraffic *struct {
				Value int `json:"value"` // seconds
			} `json:"duration_in_traffic"`
		} `json:"legs"`
	} `json:"routes"`
}

// Route requests the fastest driving route between origin and dest.
func (c *Client) Route(ctx context.Context, origin, dest model.LatLng) (*routing.Route, error) {
	if c.cfg.Endpoint == "" || c.cfg.APIKey == "" {
		return nil, fmt.Errorf("directions: endpoint or api key not configured")
	}

	params := url.Values{}
	params.Set("origin", fmt.Sprintf("%f,%f", origin.Lat, origin.Lng))
	params.Set("destination", fmt.Sprintf("%f,%f", dest.Lat, dest.Lng))
	params.Set("mode", "driving")
	params.Set("departure_time", "now")
	params.Set("traffic_model", "best_guess")
	params.Set("key", c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directions: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directions: unexpected status %d", resp.StatusCode)
	}
	var dr directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return nil, fmt.Errorf("directions: decode response: %w", err)
	}
	if dr.Status != "OK" && dr.Status != "" {
		return nil, fmt.Errorf("directions: status %s: %s", dr.Status, dr.ErrorMessage)
	}
	if len(dr.Routes) == 0 || len(dr.Routes[0].Legs) == 0 {
		return nil, fmt.Errorf("directions: no route returned")
	}

	best := dr.Routes[0]
	leg := best.Legs[0]
	points := DecodePolyline(best.OverviewPolyline.Points)
	if len(points) < 2 {
		points = []model.LatLng{origin, dest}
	}

	r := &routing.Route{
		Points:      points,
		DistanceKM:  float64(leg.Distance.Value) / 1000,
		DurationMin: float64(leg.Duration.Value) / 60,
	}
	if leg.DurationInTraffic != nil {
		r.DurationInTrafficMin = float64(leg.DurationInTraffic.Value) / 60
	}
	c.log.Debugf("directions route: %.2f km, %.1f min over %d points", r.DistanceKM, r.DurationMin, len(r.Points))
	return r, nil
}

// DecodePolyline decodes a Google-encoded polyline into coordinates.
func DecodePolyline(encoded string) []model.LatLng {
	var points []model.LatLng
	var lat, lng int64
	index := 0

	readDelta := func() (int64, bool) {
		var result int64
		var shift uint
		for {
			if index >= len(encoded) {
				return 0, false
			}
			b := int64(encoded[index]) - 63
			index++
			result |= (b & 0x1f) << shift
			shift += 5
			if b < 0x20 {
				break
			}
		}
		if result&1 != 0 {
			return ^(result >> 1), true
		}
		return result >> 1, true
	}

	for index < len(encoded) {
		dLat, ok := readDelta()
		if !ok {
			break
		}
		dLng, ok := readDelta()
		if !ok {
			break
		}
		lat += dLat
		lng += dLng
		points = append(points, model.LatLng{
			Lat: float64(lat) / 1e5,
			Lng: float64(lng) / 1e5,
		})
	}
	return points
}
