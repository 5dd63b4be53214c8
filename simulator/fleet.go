// Package simulator generates synthetic ambulance fleets for the movement
// simulation.
package simulator

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/swiftresponder/swiftresponder/core/model"
)

var fleetRng = rand.New(rand.NewSource(time.Now().UnixNano()))

// DefaultCenter is downtown Los Angeles.
var DefaultCenter = model.LatLng{Lat: 34.0522, Lng: -118.2437}

// FleetConfig holds parameters for bulk fleet generation.
type FleetConfig struct {
	Size      int          `json:"size" yaml:"size"`
	Center    model.LatLng `json:"center" yaml:"center"`
	SpreadDeg float64      `json:"spread_deg" yaml:"spread_deg"`
	Seed      int64        `json:"seed" yaml:"seed"`
}

// SetDefaults fills zero values with sane defaults.
func (c *FleetConfig) SetDefaults() {
	if c.Size == 0 {
		c.Size = 3
	}
	if c.Center == (model.LatLng{}) {
		c.Center = DefaultCenter
	}
	if c.SpreadDeg == 0 {
		c.SpreadDeg = 0.02
	}
}

var vehicles = []string{
	"Ford Transit Custom",
	"Mercedes-Benz Sprinter",
	"Ford E-Series",
	"Ram ProMaster",
	"Chevrolet Express",
}

var driverNames = []string{
	"R. Alvarez", "M. Chen", "D. Okafor", "S. Petrov", "L. Nguyen",
	"J. Carter", "A. Haddad", "K. Johansson",
}

var typeEquipment = map[model.AmbulanceType]model.Equipment{
	model.TypeBasic: {
		Oxygen:      true,
		Medications: []string{"aspirin", "glucose", "bandages"},
	},
	model.TypeAdvanced: {
		Defibrillator: true,
		Oxygen:        true,
		Medications:   []string{"epinephrine", "aspirin", "nitroglycerin", "albuterol"},
	},
	model.TypeCriticalCare: {
		Defibrillator: true,
		Oxygen:        true,
		Ventilator:    true,
		Medications:   []string{"epinephrine", "fentanyl", "midazolam", "norepinephrine"},
	},
	model.TypeNeonatal: {
		Oxygen:      true,
		Ventilator:  true,
		Medications: []string{"surfactant", "pediatric epinephrine", "dextrose"},
	},
}

var unitTypes = []model.AmbulanceType{
	model.TypeBasic,
	model.TypeAdvanced,
	model.TypeCriticalCare,
	model.TypeNeonatal,
}

// GenerateFleet creates Size ambulances with IDs AMB-0001..AMB-NNNN
// scattered around the configured center. A non-zero Seed makes the output
// deterministic.
func GenerateFleet(cfg FleetConfig) []model.Ambulance {
	cfg.SetDefaults()
	if cfg.Size <= 0 {
		return nil
	}
	rng := fleetRng
	if cfg.Seed != 0 {
		rng = rand.New(rand.NewSource(cfg.Seed))
	}
	fleet := make([]model.Ambulance, cfg.Size)
	for i := 0; i < cfg.Size; i++ {
		unitType := unitTypes[i%len(unitTypes)]
		equipment := typeEquipment[unitType]
		driver := model.Driver{
			Name:   driverNames[rng.Intn(len(driverNames))],
			Phone:  fmt.Sprintf("+1-213-555-%04d", rng.Intn(10000)),
			Rating: 3.5 + rng.Float64()*1.5,
		}
		fleet[i] = model.Ambulance{
			ID:      fmt.Sprintf("AMB-%04d", i+1),
			Vehicle: vehicles[i%len(vehicles)],
			Type:    unitType,
			Status:  model.StatusAvailable,
			Location: model.LatLng{
				Lat: cfg.Center.Lat + (rng.Float64()*2-1)*cfg.SpreadDeg,
				Lng: cfg.Center.Lng + (rng.Float64()*2-1)*cfg.SpreadDeg,
			},
			Driver:    &driver,
			Equipment: &equipment,
		}
	}
	return fleet
}
