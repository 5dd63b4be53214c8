package tracking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/swiftresponder/swiftresponder/core/hospital"
	"github.com/swiftresponder/swiftresponder/core/model"
	"github.com/swiftresponder/swiftresponder/core/routing"
	"github.com/swiftresponder/swiftresponder/core/selector"
	"github.com/swiftresponder/swiftresponder/core/tracker"
	"github.com/swiftresponder/swiftresponder/infra/logger"
)

func newTestTracker() *tracker.Tracker {
	log := logger.NopLogger{}
	fleet := []model.Ambulance{{
		ID:       "AMB-0001",
		Status:   model.StatusAvailable,
		Location: model.LatLng{Lat: 34.06, Lng: -118.25},
	}}
	return tracker.New(tracker.Config{DispatchDelay: time.Millisecond}, fleet, tracker.Deps{
		Selector: selector.New(selector.Config{}),
		Finder:   hospital.NewFinder(log, nil, hospital.DefaultFallback()),
		Routes:   routing.StraightLine{},
		Log:      log,
	})
}

func TestStatusHandler(t *testing.T) {
	tr := newTestTracker()
	h := NewStatusHandler(tr)

	req := httptest.NewRequest("GET", "/api/tracking/status", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var snap tracker.Snapshot
	if err := json.Unmarshal(rr.Body.Bytes(), &snap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if snap.Status != tracker.StatusIdle {
		t.Fatalf("expected IDLE got %s", snap.Status)
	}
	if len(snap.Ambulances) != 1 {
		t.Fatalf("expected fleet in snapshot")
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("POST", "/api/tracking/status", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 got %d", rr.Code)
	}
}

func TestDispatchHandlerAcceptsAndConflicts(t *testing.T) {
	tr := newTestTracker()
	h := NewDispatchHandler(tr, logger.NopLogger{})

	body := `{"medical_needs":"chest pain","severity":"critical","location":{"lat":34.06,"lng":-118.25}}`
	req := httptest.NewRequest("POST", "/api/tracking/dispatch", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected 202 got %d", rr.Code)
	}

	// Wait for the background dispatch to land.
	deadline := time.After(time.Second)
	for tr.Status() != tracker.StatusDispatched {
		select {
		case <-deadline:
			t.Fatalf("dispatch never completed, status %s", tr.Status())
		default:
			time.Sleep(2 * time.Millisecond)
		}
	}

	req = httptest.NewRequest("POST", "/api/tracking/dispatch", strings.NewReader(body))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rr.Code)
	}
}

func TestDispatchHandlerBadBody(t *testing.T) {
	h := NewDispatchHandler(newTestTracker(), logger.NopLogger{})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("POST", "/api/tracking/dispatch", strings.NewReader("{")))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}
}

func TestResetHandler(t *testing.T) {
	tr := newTestTracker()
	if err := tr.Dispatch(context.Background(), model.DispatchRequest{
		MedicalNeeds: "trauma",
		Location:     model.LatLng{Lat: 34.06, Lng: -118.25},
	}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	h := NewResetHandler(tr)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("POST", "/api/tracking/reset", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	if tr.Status() != tracker.StatusIdle {
		t.Fatalf("expected IDLE after reset, got %s", tr.Status())
	}
}
