package model

import (
	"math"
	"testing"
)

func TestHaversineIdentity(t *testing.T) {
	p := LatLng{Lat: 34.0522, Lng: -118.2437}
	if d := Haversine(p, p); d != 0 {
		t.Fatalf("expected 0 got %v", d)
	}
}

func TestHaversineSymmetry(t *testing.T) {
	a := LatLng{Lat: 34.06, Lng: -118.25}
	b := LatLng{Lat: 34.07, Lng: -118.24}
	d1 := Haversine(a, b)
	d2 := Haversine(b, a)
	if math.Abs(d1-d2) > 1e-9 {
		t.Fatalf("expected symmetric distances, got %v and %v", d1, d2)
	}
	if d1 <= 0 {
		t.Fatalf("expected positive distance got %v", d1)
	}
}

func TestHaversineKnownDistance(t *testing.T) {
	// Los Angeles to San Francisco, roughly 559 km.
	la := LatLng{Lat: 34.0522, Lng: -118.2437}
	sf := LatLng{Lat: 37.7749, Lng: -122.4194}
	d := Haversine(la, sf)
	if d < 540 || d > 580 {
		t.Fatalf("expected ~559km got %v", d)
	}
}

func TestStepTowardReducesDistance(t *testing.T) {
	from := LatLng{Lat: 34.06, Lng: -118.25}
	to := LatLng{Lat: 34.07, Lng: -118.24}
	before := Haversine(from, to)
	next := StepToward(from, to, 10)
	after := Haversine(next, to)
	if after >= before {
		t.Fatalf("expected distance to shrink, %v -> %v", before, after)
	}
}

func TestStepTowardNonPositiveSteps(t *testing.T) {
	from := LatLng{Lat: 1, Lng: 1}
	to := LatLng{Lat: 2, Lng: 2}
	if got := StepToward(from, to, 0); got != to {
		t.Fatalf("expected destination got %+v", got)
	}
}
