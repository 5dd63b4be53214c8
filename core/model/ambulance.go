package model

// AmbulanceType classifies the level of care a unit can deliver.
type AmbulanceType string

const (
	TypeBasic        AmbulanceType = "Basic Life Support"
	TypeAdvanced     AmbulanceType = "Advanced Life Support"
	TypeCriticalCare AmbulanceType = "Critical Care Transport"
	TypeNeonatal     AmbulanceType = "Neonatal Transport"
)

// AmbulanceStatus describes the operational state of a unit.
type AmbulanceStatus string

const (
	StatusAvailable    AmbulanceStatus = "available"
	StatusDispatched   AmbulanceStatus = "dispatched"
	StatusEnRoute      AmbulanceStatus = "en_route"
	StatusOnScene      AmbulanceStatus = "on_scene"
	StatusTransporting AmbulanceStatus = "transporting"
	StatusAtHospital   AmbulanceStatus = "at_hospital"
	StatusMaintenance  AmbulanceStatus = "maintenance"
)

// Driver holds crew information for an ambulance.
type Driver struct {
	Name   string  `json:"name"`
	Phone  string  `json:"phone"`
	Rating float64 `json:"rating"` // 0-5
}

// Equipment describes the medical gear carried by a unit.
type Equipment struct {
	Defibrillator bool     `json:"defibrillator"`
	Oxygen        bool     `json:"oxygen"`
	Ventilator    bool     `json:"ventilator"`
	Medications   []string `json:"medications"`
}

// List flattens the equipment set into item names, medications included.
func (e *Equipment) List() []string {
	if e == nil {
		return nil
	}
	var items []string
	if e.Defibrillator {
		items = append(items, "defibrillator")
	}
	if e.Oxygen {
		items = append(items, "oxygen")
	}
	if e.Ventilator {
		items = append(items, "ventilator")
	}
	items = append(items, e.Medications...)
	return items
}

// Ambulance represents a simulated emergency response unit.
type Ambulance struct {
	ID        string          `json:"id"`
	Vehicle   string          `json:"vehicle"`
	Type      AmbulanceType   `json:"type"`
	Status    AmbulanceStatus `json:"status"`
	Location  LatLng          `json:"location"`
	Driver    *Driver         `json:"driver,omitempty"`
	Equipment *Equipment      `json:"equipment,omitempty"`
}
