package selector

import (
	"testing"

	"github.com/swiftresponder/swiftresponder/core/model"
)

var origin = model.LatLng{Lat: 34.0522, Lng: -118.2437}

func fullKit() *model.Equipment {
	return &model.Equipment{
		Defibrillator: true,
		Oxygen:        true,
		Ventilator:    true,
		Medications:   []string{"epinephrine", "aspirin"},
	}
}

func TestRankExcludesDispatchedUnit(t *testing.T) {
	s := New(Config{})
	ambulances := []model.Ambulance{
		{ID: "AMB-001", Status: model.StatusAvailable, Location: origin},
		{ID: "AMB-002", Status: model.StatusDispatched, Location: origin},
	}
	ranked := s.Rank(ambulances, origin, Criteria{MedicalNeeds: "chest pain"}, "AMB-002")
	if len(ranked) != 1 {
		t.Fatalf("expected 1 candidate got %d", len(ranked))
	}
	if ranked[0].ID != "AMB-001" {
		t.Fatalf("excluded unit returned: %s", ranked[0].ID)
	}
}

func TestDistanceScoreMonotonic(t *testing.T) {
	s := New(Config{})
	distances := []float64{0.5, 1.9, 2.1, 4.9, 5.1, 9.9, 10.1, 50}
	prev := s.distanceScore(distances[0])
	for _, d := range distances[1:] {
		cur := s.distanceScore(d)
		if cur > prev {
			t.Fatalf("score increased with distance: %v km scored %v > %v", d, cur, prev)
		}
		prev = cur
	}
}

func TestDistanceScoreBands(t *testing.T) {
	s := New(Config{})
	cases := []struct {
		km   float64
		want float64
	}{
		{1, 30},
		{3, 20},
		{7, 10},
		{15, 5},
	}
	for _, c := range cases {
		if got := s.distanceScore(c.km); got != c.want {
			t.Fatalf("distanceScore(%v) = %v, want %v", c.km, got, c.want)
		}
	}
}

func TestEquipmentScoreExplicitRequirement(t *testing.T) {
	s := New(Config{})
	score, pct := s.equipmentScore([]string{"defibrillator", "oxygen"}, []string{"defibrillator", "ventilator"})
	if pct != 50 {
		t.Fatalf("expected 50%% match got %v", pct)
	}
	if score != 18 { // round(0.5*35)
		t.Fatalf("expected 18 points got %v", score)
	}
}

func TestEquipmentScoreNoRequirement(t *testing.T) {
	s := New(Config{})
	score, pct := s.equipmentScore([]string{"defibrillator", "oxygen", "ventilator", "epinephrine", "aspirin"}, nil)
	if score != 35 || pct != 100 {
		t.Fatalf("expected full flat score got %v / %v%%", score, pct)
	}
	score, _ = s.equipmentScore([]string{"oxygen"}, nil)
	if score != 5 {
		t.Fatalf("expected 5 got %v", score)
	}
}

func TestSpecialtyCardiacNeedsDefibrillator(t *testing.T) {
	s := New(Config{})
	withKit := model.Ambulance{ID: "kit", Status: model.StatusAvailable, Location: origin, Equipment: fullKit()}
	without := model.Ambulance{ID: "bare", Status: model.StatusAvailable, Location: origin}
	ranked := s.Rank([]model.Ambulance{without, withKit}, origin, Criteria{MedicalNeeds: "cardiac arrest"})
	if ranked[0].ID != "kit" {
		t.Fatalf("expected equipped unit first, got %s", ranked[0].ID)
	}
}

func TestCriticalProximityBonus(t *testing.T) {
	s := New(Config{})
	a := model.Ambulance{ID: "near", Status: model.StatusAvailable, Location: origin, Equipment: fullKit()}
	base := s.Rank([]model.Ambulance{a}, origin, Criteria{MedicalNeeds: "trauma", Severity: model.SeverityUrgent})
	crit := s.Rank([]model.Ambulance{a}, origin, Criteria{MedicalNeeds: "trauma", Severity: model.SeverityCritical})
	if crit[0].Score != base[0].Score+10 {
		t.Fatalf("expected +10 bonus: %v vs %v", crit[0].Score, base[0].Score)
	}
}

func TestReadinessDriverRating(t *testing.T) {
	s := New(Config{})
	rated := model.Ambulance{Status: model.StatusAvailable, Driver: &model.Driver{Rating: 5}}
	unrated := model.Ambulance{Status: model.StatusAvailable}
	if got := s.readinessScore(rated); got != 15 {
		t.Fatalf("expected 15 got %v", got)
	}
	if got := s.readinessScore(unrated); got != 10 {
		t.Fatalf("expected 10 got %v", got)
	}
}

func TestNearestFallback(t *testing.T) {
	far := model.Ambulance{ID: "far", Location: model.LatLng{Lat: 35, Lng: -118}}
	near := model.Ambulance{ID: "near", Location: model.LatLng{Lat: 34.06, Lng: -118.25}}
	got, ok := Nearest([]model.Ambulance{far, near}, origin)
	if !ok || got.ID != "near" {
		t.Fatalf("expected near got %+v ok=%v", got, ok)
	}
	_, ok = Nearest([]model.Ambulance{near}, origin, "near")
	if ok {
		t.Fatalf("expected no candidate when all excluded")
	}
}
