package hospital

import (
	"context"

	"github.com/swiftresponder/swiftresponder/core/model"
)

// Static always returns a single hardcoded hospital. It terminates the
// provider chain so a dispatch can never fail for lack of a destination.
type Static struct {
	Hospital model.Hospital
}

// DefaultFallback returns the built-in fallback record near downtown
// Los Angeles.
func DefaultFallback() Static {
	return Static{Hospital: model.Hospital{
		Name:                     "General Hospital",
		Address:                  "123 Main St, Los Angeles, CA",
		AvailableBeds:            12,
		AvailableICUs:            3,
		AvailableNICUs:           2,
		AvailableOxygenCylinders: 8,
		AvailableVentilators:     5,
		AvailableDoctors:         7,
		SuitabilityScore:         9.2,
		Reason:                   "Top-rated for cardiac emergencies and has immediate availability.",
		Location:                 &model.LatLng{Lat: 34.0722, Lng: -118.2237},
		IsOpen:                   true,
	}}
}

func (Static) Name() string { return "static" }

// Find returns the configured hospital regardless of the query.
func (s Static) Find(ctx context.Context, q Query) ([]model.Hospital, error) {
	h := s.Hospital
	if h.Location != nil {
		h.DistanceKM = model.Haversine(q.Location, *h.Location)
	}
	return []model.Hospital{h}, nil
}
