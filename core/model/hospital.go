package model

// Hospital is a candidate destination with capacity estimates and a
// suitability score between 1 and 10.
type Hospital struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Address string `json:"address"`

	AvailableBeds            int `json:"available_beds"`
	AvailableICUs            int `json:"available_icus"`
	AvailableNICUs           int `json:"available_nicus"`
	AvailableOxygenCylinders int `json:"available_oxygen_cylinders"`
	AvailableVentilators     int `json:"available_ventilators"`
	AvailableDoctors         int `json:"available_doctors"`

	SuitabilityScore float64 `json:"suitability_score"`
	Reason           string  `json:"reason"`

	Location    *LatLng  `json:"location,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	Specialties []string `json:"specialties,omitempty"`
	WaitTimeMin int      `json:"wait_time_min,omitempty"`
	DistanceKM  float64  `json:"distance_km,omitempty"`
	Rating      float64  `json:"rating,omitempty"`
	ReviewCount int      `json:"review_count,omitempty"`
	IsOpen      bool     `json:"is_open"`
}
