package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/swiftresponder/swiftresponder/core/hospital"
	"github.com/swiftresponder/swiftresponder/core/model"
	"github.com/swiftresponder/swiftresponder/infra/logger"
)

// Ranker wraps an inner hospital provider and re-ranks its candidates with
// the completion model. Any failure, from the inner provider or from the
// model, propagates so the finder chain can fall through to the next
// provider.
type Ranker struct {
	inner  hospital.Provider
	client *Client
	log    logger.Logger
}

// NewRanker creates a Ranker over the given provider.
func NewRanker(inner hospital.Provider, client *Client) *Ranker {
	return &Ranker{inner: inner, client: client, log: logger.New("ai-ranker")}
}

func (r *Ranker) Name() string { return "ai-ranked-" + r.inner.Name() }

// Find fetches candidates from the inner provider, asks the model to rank
// them, and merges the model's estimates back onto the candidate data.
func (r *Ranker) Find(ctx context.Context, q hospital.Query) ([]model.Hospital, error) {
	candidates, err := r.inner.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("ai: no candidates to rank")
	}

	raw, err := r.client.Complete(ctx, BuildPrompt(q, candidates))
	if err != nil {
		return nil, err
	}
	suggestions, err := ParseSuggestions(raw)
	if err != nil {
		return nil, err
	}
	r.log.Infof("model ranked %d of %d candidates", len(suggestions), len(candidates))
	return Merge(suggestions, candidates, q.Location), nil
}

// BuildPrompt serializes the medical context and the candidate list into
// the ranking prompt.
func BuildPrompt(q hospital.Query, candidates []model.Hospital) string {
	var b strings.Builder

	severity := string(q.Severity)
	if severity == "" {
		severity = string(model.SeverityUrgent)
	}
	b.WriteString("Medical Situation:\n")
	fmt.Fprintf(&b, "- Primary Need: %s\n", q.Needs)
	fmt.Fprintf(&b, "- Severity Level: %s\n", strings.ToUpper(severity))
	if q.PatientAge > 0 {
		fmt.Fprintf(&b, "- Patient Age: %d years\n", q.PatientAge)
	}
	fmt.Fprintf(&b, "- Patient Location: Latitude %.4f, Longitude %.4f\n", q.Location.Lat, q.Location.Lng)

	b.WriteString("\nAvailable Hospitals in Area:\n")
	for i, h := range candidates {
		fmt.Fprintf(&b, "%d. %s\n", i+1, h.Name)
		fmt.Fprintf(&b, "   - Address: %s\n", h.Address)
		fmt.Fprintf(&b, "   - Distance: %.2f km away\n", h.DistanceKM)
		fmt.Fprintf(&b, "   - Rating: %.1f/5 (%d reviews)\n", h.Rating, h.ReviewCount)
		specialties := "General"
		if len(h.Specialties) > 0 {
			specialties = strings.Join(h.Specialties, ", ")
		}
		fmt.Fprintf(&b, "   - Specialties: %s\n", specialties)
		fmt.Fprintf(&b, "   - Wait Time: ~%d minutes\n", h.WaitTimeMin)
		fmt.Fprintf(&b, "   - Available Beds: %d\n", h.AvailableBeds)
		fmt.Fprintf(&b, "   - Available ICUs: %d\n", h.AvailableICUs)
	}

	b.WriteString(`
Analyze these hospitals and rank them for the emergency above, considering
distance, ratings, specialties matching the medical need, wait times and
severity. Reply with only a JSON array; each element must have the fields
name, address, availableBeds, availableICUs, availableNICUs,
availableOxygenCylinders, availableVentilators, availableDoctors,
suitabilityScore (1-10) and reason.
`)
	return b.String()
}

// Merge maps the model's suggestions back onto the candidate data by
// case-insensitive substring name match, overriding capacity estimates,
// score and reason. Suggestions without a matching candidate become new
// entries anchored at the search location.
func Merge(suggestions []Suggestion, candidates []model.Hospital, searchLoc model.LatLng) []model.Hospital {
	out := make([]model.Hospital, 0, len(suggestions))
	for _, s := range suggestions {
		if match := findByName(candidates, s.Name); match != nil {
			h := *match
			h.AvailableBeds = s.AvailableBeds
			h.AvailableICUs = s.AvailableICUs
			h.AvailableNICUs = s.AvailableNICUs
			h.AvailableOxygenCylinders = s.AvailableOxygenCylinders
			h.AvailableVentilators = s.AvailableVentilators
			h.AvailableDoctors = s.AvailableDoctors
			h.SuitabilityScore = s.SuitabilityScore
			h.Reason = s.Reason
			out = append(out, h)
			continue
		}
		loc := searchLoc
		out = append(out, model.Hospital{
			Name:                     s.Name,
			Address:                  s.Address,
			Location:                 &loc,
			AvailableBeds:            s.AvailableBeds,
			AvailableICUs:            s.AvailableICUs,
			AvailableNICUs:           s.AvailableNICUs,
			AvailableOxygenCylinders: s.AvailableOxygenCylinders,
			AvailableVentilators:     s.AvailableVentilators,
			AvailableDoctors:         s.AvailableDoctors,
			SuitabilityScore:         s.SuitabilityScore,
			Reason:                   s.Reason,
			WaitTimeMin:              15,
			DistanceKM:               5.0,
			IsOpen:                   true,
		})
	}
	return out
}

func findByName(candidates []model.Hospital, name string) *model.Hospital {
	n := strings.ToLower(name)
	for i := range candidates {
		c := strings.ToLower(candidates[i].Name)
		if strings.Contains(c, n) || strings.Contains(n, c) {
			return &candidates[i]
		}
	}
	return nil
}
