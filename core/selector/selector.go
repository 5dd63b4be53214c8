// Package selector ranks ambulances against an emergency request using a
// weighted scoring heuristic: distance bands, equipment match, specialty
// match and crew readiness.
package selector

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/swiftresponder/swiftresponder/core/model"
)

// Criteria describes what the caller needs from a unit.
type Criteria struct {
	MedicalNeeds      string
	Severity          model.Severity
	RequiredEquipment []string
	PatientAge        int
}

// ScoredAmbulance pairs a candidate with its composite score.
type ScoredAmbulance struct {
	model.Ambulance
	Score          float64 `json:"score"`
	MatchReason    string  `json:"match_reason"`
	EquipmentMatch float64 `json:"equipment_match"` // percentage
	DistanceKM     float64 `json:"distance_km"`
}

// Selector scores and ranks ambulances using configured point budgets.
type Selector struct {
	cfg Config
}

// New returns a Selector with defaults applied to cfg.
func New(cfg Config) *Selector {
	cfg.SetDefaults()
	return &Selector{cfg: cfg}
}

// Rank scores every candidate and returns them sorted by descending score.
// Units whose ID is in exclude are never part of the result.
func (s *Selector) Rank(ambulances []model.Ambulance, origin model.LatLng, crit Criteria, exclude ...string) []ScoredAmbulance {
	skip := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}
	scored := make([]ScoredAmbulance, 0, len(ambulances))
	for _, a := range ambulances {
		if _, ok := skip[a.ID]; ok {
			continue
		}
		scored = append(scored, s.score(a, origin, crit))
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	return scored
}

// Nearest returns the closest candidate by haversine distance, skipping
// excluded IDs. Used as a plain fallback when ranking yields nothing.
func Nearest(ambulances []model.Ambulance, origin model.LatLng, exclude ...string) (model.Ambulance, bool) {
	skip := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}
	var best model.Ambulance
	min := math.Inf(1)
	found := false
	for _, a := range ambulances {
		if _, ok := skip[a.ID]; ok {
			continue
		}
		if d := model.Haversine(origin, a.Location); d < min {
			min = d
			best = a
			found = true
		}
	}
	return best, found
}

func (s *Selector) score(a model.Ambulance, origin model.LatLng, crit Criteria) ScoredAmbulance {
	var reasons []string

	distance := model.Haversine(origin, a.Location)
	distScore := s.distanceScore(distance)
	reasons = append(reasons, fmt.Sprintf("distance %.2fkm (%.1f/10)", distance, distScore/s.cfg.DistanceMax*10))

	equipment := a.Equipment.List()
	equipScore, matchPct := s.equipmentScore(equipment, crit.RequiredEquipment)
	reasons = append(reasons, fmt.Sprintf("equipment %.0f%% match (%.1f/10)", matchPct, equipScore/s.cfg.EquipmentMax*10))

	specScore, specReason := s.specialtyScore(equipment, crit)
	if specReason != "" {
		reasons = append(reasons, specReason)
	}

	readyScore := s.readinessScore(a)
	reasons = append(reasons, fmt.Sprintf("readiness %.1f/10", readyScore/s.cfg.ReadinessMax*10))

	total := distScore + equipScore + specScore + readyScore
	if crit.Severity == model.SeverityCritical && distance < s.cfg.CriticalBonusRadiusKM {
		total += s.cfg.CriticalBonus
		reasons = append(reasons, "critical proximity bonus")
	}

	return ScoredAmbulance{
		Ambulance:      a,
		Score:          math.Round(total),
		MatchReason:    strings.Join(reasons, "; "),
		EquipmentMatch: matchPct,
		DistanceKM:     distance,
	}
}

// distanceScore buckets distance into four bands, closer is better.
func (s *Selector) distanceScore(km float64) float64 {
	switch {
	case km < s.cfg.NearKM:
		return s.cfg.DistanceMax
	case km < s.cfg.MidKM:
		return s.cfg.DistanceMax * 2 / 3
	case km < s.cfg.FarKM:
		return s.cfg.DistanceMax / 3
	default:
		return s.cfg.DistanceMax / 6
	}
}

// equipmentScore returns the score and the match percentage. With no explicit
// requirements a flat score derived from the carried item count is used.
func (s *Selector) equipmentScore(carried, required []string) (float64, float64) {
	if len(required) == 0 {
		if len(carried) >= 5 {
			return s.cfg.EquipmentMax, 100
		}
		return float64(len(carried)) * s.cfg.EquipmentMax / 7, 100
	}
	matched := 0
	for _, req := range required {
		reqLower := strings.ToLower(req)
		for _, item := range carried {
			itemLower := strings.ToLower(item)
			if strings.Contains(itemLower, reqLower) || strings.Contains(reqLower, itemLower) {
				matched++
				break
			}
		}
	}
	pct := float64(matched) / float64(len(required)) * 100
	return math.Round(pct / 100 * s.cfg.EquipmentMax), pct
}

// specialtyScore keys on keywords in the medical-need text and checks for the
// matching equipment class.
func (s *Selector) specialtyScore(equipment []string, crit Criteria) (float64, string) {
	needs := strings.ToLower(crit.MedicalNeeds)
	has := func(items ...string) bool {
		for _, want := range items {
			for _, item := range equipment {
				if strings.Contains(strings.ToLower(item), want) {
					return true
				}
			}
		}
		return false
	}

	max := s.cfg.SpecialtyMax
	switch {
	case containsAny(needs, "cardiac", "heart", "chest pain"):
		if has("defibrillator", "ecg") {
			return max, "cardiac equipment available"
		}
		return max / 4, "limited cardiac equipment"
	case containsAny(needs, "breathing", "respiratory", "asthma"):
		if has("ventilator", "oxygen") {
			return max, "respiratory support available"
		}
		return max / 4, "limited respiratory equipment"
	case containsAny(needs, "trauma", "injury", "accident"):
		if has("stretcher", "splint", "bandage") {
			return max, "trauma equipment ready"
		}
		return max / 2, ""
	case crit.PatientAge > 0 && crit.PatientAge < 12:
		if has("pediatric", "child") {
			return max, "pediatric equipment available"
		}
		return max / 2, ""
	default:
		return max / 2, ""
	}
}

// readinessScore combines driver rating and unit availability.
func (s *Selector) readinessScore(a model.Ambulance) float64 {
	ratingBudget := s.cfg.ReadinessMax * 2 / 3
	statusBudget := s.cfg.ReadinessMax / 3

	score := ratingBudget / 2
	if a.Driver != nil && a.Driver.Rating > 0 {
		score = math.Min(a.Driver.Rating*ratingBudget/5, ratingBudget)
	}
	switch a.Status {
	case model.StatusAvailable:
		score += statusBudget
	case model.StatusEnRoute:
		score += statusBudget * 0.4
	}
	return score
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
