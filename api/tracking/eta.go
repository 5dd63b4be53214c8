package tracking

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/swiftresponder/swiftresponder/core/history"
	"github.com/swiftresponder/swiftresponder/core/model"
	"github.com/swiftresponder/swiftresponder/core/routing"
	"github.com/swiftresponder/swiftresponder/core/tracker"
)

// ConditionsFunc resolves the routing conditions at a location. Implementations
// may consult a live weather feed; errors degrade to clear defaults.
type ConditionsFunc func(ctx context.Context, loc model.LatLng) routing.Conditions

// ClearConditions reports light traffic and full visibility regardless of
// location.
func ClearConditions(_ context.Context, _ model.LatLng) routing.Conditions {
	return routing.Conditions{Traffic: routing.TrafficLight, VisibilityKM: 10}
}

// NewETAHandler returns an HTTP handler serving the enhanced arrival estimate
// for the active dispatch via GET /api/tracking/eta. The base ETA from the
// tracker is adjusted for current conditions and historical outcomes.
func NewETAHandler(t *tracker.Tracker, cond ConditionsFunc, store history.Store) http.Handler {
	if cond == nil {
		cond = ClearConditions
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		snap := t.Snapshot()
		if snap.Status != tracker.StatusDispatched {
			http.Error(w, "no active dispatch", http.StatusConflict)
			return
		}
		conditions := cond(r.Context(), snap.Dispatched.Location)

		var hist *routing.Historical
		if store != nil {
			if recs, err := store.Query(r.Context(), history.Query{}); err == nil && len(recs) > 0 {
				stats := history.Compute(recs)
				hist = &routing.Historical{SuccessRate: stats.CompletionRate}
			}
		}

		est := routing.EnhanceETA(snap.ETAMin, conditions, hist)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(est)
	})
}
