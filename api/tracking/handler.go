// Package tracking exposes the dispatch state machine over HTTP.
package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/swiftresponder/swiftresponder/core/logger"
	"github.com/swiftresponder/swiftresponder/core/model"
	"github.com/swiftresponder/swiftresponder/core/tracker"
)

// NewStatusHandler returns an HTTP handler exposing the tracker snapshot via
// GET /api/tracking/status.
func NewStatusHandler(t *tracker.Tracker) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(t.Snapshot()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

// NewDispatchHandler returns an HTTP handler accepting dispatch requests via
// POST /api/tracking/dispatch. The dispatch resolution runs in the
// background; the handler replies 202 once the request is accepted and 409
// when a dispatch is already active.
func NewDispatchHandler(t *tracker.Tracker, log logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req model.DispatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if t.Status() != tracker.StatusIdle {
			http.Error(w, "dispatch already in progress", http.StatusConflict)
			return
		}
		go func() {
			if err := t.Dispatch(context.Background(), req); err != nil {
				if errors.Is(err, tracker.ErrNotIdle) {
					return
				}
				log.Errorf("dispatch failed: %v", err)
			}
		}()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "accepted"})
	})
}

// NewResetHandler returns an HTTP handler clearing the active dispatch via
// POST /api/tracking/reset.
func NewResetHandler(t *tracker.Tracker) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		t.Reset()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": string(t.Status())})
	})
}
