package model

import "math"

const earthRadiusKM = 6371

// LatLng is a geographic coordinate in decimal degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Haversine returns the great-circle distance between a and b in kilometers.
func Haversine(a, b LatLng) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKM * c
}

// StepToward moves from toward to by 1/steps of the remaining coordinate
// delta and returns the new position. steps must be positive.
func StepToward(from, to LatLng, steps float64) LatLng {
	if steps <= 0 {
		return to
	}
	return LatLng{
		Lat: from.Lat + (to.Lat-from.Lat)/steps,
		Lng: from.Lng + (to.Lng-from.Lng)/steps,
	}
}
