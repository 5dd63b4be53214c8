package dispatchhistory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/swiftresponder/swiftresponder/core/history"
	"github.com/swiftresponder/swiftresponder/core/model"
)

func seedStore(t *testing.T) *history.MemoryStore {
	t.Helper()
	store := history.NewMemoryStore()
	now := time.Now()
	recs := []history.Record{
		{ID: "r1", Timestamp: now.Add(-2 * time.Hour), Ambulance: model.Ambulance{ID: "AMB-0001"}, Hospital: model.Hospital{Name: "General Hospital"}, DurationMin: 12, Outcome: history.OutcomeCompleted},
		{ID: "r2", Timestamp: now, Ambulance: model.Ambulance{ID: "AMB-0002"}, Hospital: model.Hospital{Name: "Cedar Ridge"}, DurationMin: 3, Outcome: history.OutcomeCancelled},
	}
	for _, r := range recs {
		if err := store.Append(context.Background(), r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	return store
}

func TestHandler_AuthAndFilters(t *testing.T) {
	h := NewHandler(seedStore(t), "tok")

	req := httptest.NewRequest("GET", "/api/history?outcome=completed", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out []history.Record
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != 1 || out[0].ID != "r1" {
		t.Fatalf("expected completed record, got %v", out)
	}

	// unauthorized
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/history", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}
}

func TestHandler_TimeFilter(t *testing.T) {
	h := NewHandler(seedStore(t), "")
	start := time.Now().Add(-time.Hour).Format(time.RFC3339)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/history?start="+start, nil))
	var out []history.Record
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != 1 || out[0].ID != "r2" {
		t.Fatalf("expected recent record, got %v", out)
	}
}

func TestHandler_Stats(t *testing.T) {
	h := NewHandler(seedStore(t), "")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/api/history?stats=1", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var stats history.Stats
	if err := json.Unmarshal(rr.Body.Bytes(), &stats); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if stats.Total != 2 || stats.Completed != 1 || stats.CompletionRate != 0.5 {
		t.Fatalf("bad stats %+v", stats)
	}
}
