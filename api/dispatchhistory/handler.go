// Package dispatchhistory exposes persisted dispatch records over HTTP.
package dispatchhistory

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/swiftresponder/swiftresponder/core/history"
)

// NewHandler returns an HTTP handler exposing dispatch history via
// GET /api/history. Requests must include an Authorization header with
// "Bearer <token>" when token is non-empty. Passing ?stats=1 returns the
// aggregate statistics instead of the raw records.
func NewHandler(store history.Store, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token != "" {
			auth := r.Header.Get("Authorization")
			if auth != "Bearer "+token {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		q := history.Query{}
		if s := r.URL.Query().Get("start"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.Start = t
			}
		}
		if s := r.URL.Query().Get("end"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.End = t
			}
		}
		if s := r.URL.Query().Get("outcome"); s != "" {
			q.Outcome = history.Outcome(s)
		}
		records, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("stats") == "1" {
			if err := json.NewEncoder(w).Encode(history.Compute(records)); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
			return
		}
		if err := json.NewEncoder(w).Encode(records); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
