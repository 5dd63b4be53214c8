package model

import "time"

// Severity grades the urgency of an emergency request.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityUrgent   Severity = "urgent"
	SeverityModerate Severity = "moderate"
)

// DispatchRequest describes an emergency call for an ambulance.
type DispatchRequest struct {
	ID                string    `json:"id"`
	MedicalNeeds      string    `json:"medical_needs"`
	Severity          Severity  `json:"severity"`
	RequiredEquipment []string  `json:"required_equipment,omitempty"`
	PatientAge        int       `json:"patient_age,omitempty"`
	Location          LatLng    `json:"location"`
	Timestamp         time.Time `json:"timestamp"`
}
