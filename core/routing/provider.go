// Package routing computes the path and travel time between an ambulance and
// its destination. A directions-service provider can be wrapped with a
// straight-line fallback so a route is always available.
package routing

import (
	"context"

	"github.com/swiftresponder/swiftresponder/core/logger"
	"github.com/swiftresponder/swiftresponder/core/model"
)

// AverageSpeedKMH is the assumed ambulance speed when no live traffic data is
// available (48 km/h, or 0.8 km per minute).
const AverageSpeedKMH = 48.0

// Route is an ordered point sequence with distance and time estimates. It is
// always replaced wholesale, never mutated in place.
type Route struct {
	Points               []model.LatLng `json:"points"`
	DistanceKM           float64        `json:"distance_km"`
	DurationMin          float64        `json:"duration_min"`
	DurationInTrafficMin float64        `json:"duration_in_traffic_min,omitempty"`
}

// Provider resolves a route between two points.
type Provider interface {
	Route(ctx context.Context, origin, dest model.LatLng) (*Route, error)
}

// StraightLine estimates a two-point route from the haversine distance and a
// constant average speed.
type StraightLine struct{}

// Route implements Provider.
func (StraightLine) Route(_ context.Context, origin, dest model.LatLng) (*Route, error) {
	d := model.Haversine(origin, dest)
	return &Route{
		Points:      []model.LatLng{origin, dest},
		DistanceKM:  d,
		DurationMin: d / AverageSpeedKMH * 60,
	}, nil
}

// fallbackProvider degrades to a straight line when the primary fails.
type fallbackProvider struct {
	primary Provider
	line    StraightLine
	log     logger.Logger
}

// WithFallback wraps primary so that route requests never fail. A nil primary
// yields plain straight-line routing.
func WithFallback(primary Provider, log logger.Logger) Provider {
	if primary == nil {
		return StraightLine{}
	}
	return &fallbackProvider{primary: primary, log: log}
}

func (f *fallbackProvider) Route(ctx context.Context, origin, dest model.LatLng) (*Route, error) {
	r, err := f.primary.Route(ctx, origin, dest)
	if err == nil && len(r.Points) >= 2 {
		return r, nil
	}
	if err != nil {
		f.log.Warnf("directions lookup failed, using straight line: %v", err)
	} else {
		f.log.Warnf("directions returned a degenerate route, using straight line")
	}
	return f.line.Route(ctx, origin, dest)
}
