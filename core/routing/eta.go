package routing

import (
	"fmt"
	"math"
)

// TrafficLevel grades observed congestion.
type TrafficLevel string

const (
	TrafficLight    TrafficLevel = "light"
	TrafficModerate TrafficLevel = "moderate"
	TrafficHeavy    TrafficLevel = "heavy"
	TrafficSevere   TrafficLevel = "severe"
)

// TimeBand classifies the time of day for ETA purposes.
type TimeBand string

const (
	BandMorningRush TimeBand = "morning-rush"
	BandMidday      TimeBand = "midday"
	BandEveningRush TimeBand = "evening-rush"
	BandNight       TimeBand = "night"
)

// Conditions collects the factors feeding the ETA adjustment.
type Conditions struct {
	Traffic      TrafficLevel
	VisibilityKM float64
	TimeOfDay    TimeBand
}

// Historical carries aggregate data from past dispatches.
type Historical struct {
	AverageDelayMin float64
	SuccessRate     float64
}

// Estimate is the adjusted ETA with a heuristic confidence percentage and the
// reasons behind each adjustment.
type Estimate struct {
	PredictedMin int      `json:"predicted_min"`
	Confidence   int      `json:"confidence"`
	Factors      []string `json:"factors,omitempty"`
}

var trafficMultipliers = map[TrafficLevel]float64{
	TrafficLight:    1.0,
	TrafficModerate: 1.2,
	TrafficHeavy:    1.5,
	TrafficSevere:   2.0,
}

// EnhanceETA applies multiplicative traffic, weather and time-of-day
// adjustments to a base ETA in minutes. The confidence value is a heuristic,
// not statistically derived.
func EnhanceETA(baseMin float64, cond Conditions, hist *Historical) Estimate {
	adjusted := baseMin
	var factors []string

	mult, ok := trafficMultipliers[cond.Traffic]
	if !ok {
		mult = 1.0
	}
	adjusted *= mult
	if mult > 1.0 {
		factors = append(factors, fmt.Sprintf("traffic: +%.0f%% delay", (mult-1)*100))
	}

	if cond.VisibilityKM > 0 && cond.VisibilityKM < 3 {
		adjusted *= 1.3
		factors = append(factors, "poor visibility: +30% delay")
	}

	if cond.TimeOfDay == BandMorningRush || cond.TimeOfDay == BandEveningRush {
		adjusted *= 1.15
		factors = append(factors, "rush hour: +15% delay")
	}

	if hist != nil && hist.AverageDelayMin > 0 {
		adjusted += hist.AverageDelayMin
		factors = append(factors, fmt.Sprintf("historical pattern: +%.0f min", hist.AverageDelayMin))
	}

	confidence := 85
	if cond.Traffic == TrafficSevere {
		confidence -= 15
	}
	if cond.VisibilityKM > 0 && cond.VisibilityKM < 2 {
		confidence -= 10
	}
	if hist == nil {
		confidence -= 5
	}
	if confidence < 50 {
		confidence = 50
	}

	return Estimate{
		PredictedMin: int(math.Round(adjusted)),
		Confidence:   confidence,
		Factors:      factors,
	}
}
