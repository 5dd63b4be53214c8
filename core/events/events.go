// Package events defines the domain events published on the internal bus
// during a dispatch lifecycle.
package events

import (
	"time"

	"github.com/swiftresponder/swiftresponder/core/model"
)

// StatusEvent signals a tracker state transition.
type StatusEvent struct {
	From string
	To   string
	Time time.Time
}

// DispatchEvent is published once an ambulance and hospital are resolved.
type DispatchEvent struct {
	Request   model.DispatchRequest
	Ambulance model.Ambulance
	Hospital  model.Hospital
	ETAMin    float64
}

// PositionEvent is published on every simulation tick while en route.
type PositionEvent struct {
	AmbulanceID string
	Position    model.LatLng
	DistanceKM  float64
	ETAMin      float64
	Time        time.Time
}

// ArrivalEvent is published when the ambulance reaches the destination.
type ArrivalEvent struct {
	AmbulanceID string
	Hospital    string
	Time        time.Time
}

// ProviderFallbackEvent records a hospital provider failing over to the next
// one in the chain.
type ProviderFallbackEvent struct {
	Provider string
	Err      error
}
