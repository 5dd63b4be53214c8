package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftresponder/swiftresponder/core/hospital"
	"github.com/swiftresponder/swiftresponder/core/model"
)

type stubProvider struct {
	hs  []model.Hospital
	err error
}

func (s stubProvider) Name() string { return "stub" }

func (s stubProvider) Find(context.Context, hospital.Query) ([]model.Hospital, error) {
	return s.hs, s.err
}

func completionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.Header.Get("Authorization"), "Bearer ")
		reply := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(reply)
	}))
}

func candidates() []model.Hospital {
	loc := model.LatLng{Lat: 34.05, Lng: -118.24}
	return []model.Hospital{
		{Name: "Cedar Ridge Medical Center", Address: "500 Grand Ave", DistanceKM: 1.2, Rating: 4.6, Location: &loc, IsOpen: true, WaitTimeMin: 12},
		{Name: "Westside Clinic", Address: "12 Elm St", DistanceKM: 3.4, Rating: 3.2, Location: &loc, IsOpen: true},
	}
}

func TestRankerMergesModelEstimates(t *testing.T) {
	srv := completionServer(t, "```json\n[{\"name\":\"Cedar Ridge\",\"address\":\"500 Grand Ave\",\"availableBeds\":22,\"availableICUs\":6,\"availableDoctors\":14,\"suitabilityScore\":9.5,\"reason\":\"cardiac unit on site\"}]\n```")
	defer srv.Close()

	r := NewRanker(stubProvider{hs: candidates()}, NewClient(Config{Endpoint: srv.URL, APIKey: "k"}))
	hs, err := r.Find(context.Background(), hospital.Query{
		Needs:    "cardiac emergency",
		Severity: model.SeverityCritical,
	})
	require.NoError(t, err)
	require.Len(t, hs, 1)

	// Real place data survives, model estimates override capacity and score.
	assert.Equal(t, "Cedar Ridge Medical Center", hs[0].Name)
	assert.InDelta(t, 1.2, hs[0].DistanceKM, 1e-9)
	assert.Equal(t, 22, hs[0].AvailableBeds)
	assert.Equal(t, 9.5, hs[0].SuitabilityScore)
	assert.Equal(t, "cardiac unit on site", hs[0].Reason)
}

func TestRankerUnmatchedSuggestionBecomesNewEntry(t *testing.T) {
	srv := completionServer(t, `[{"name":"St. Vincent Hospital","address":"9 Hill Rd","availableBeds":10,"suitabilityScore":7,"reason":"nearest trauma center"}]`)
	defer srv.Close()

	r := NewRanker(stubProvider{hs: candidates()}, NewClient(Config{Endpoint: srv.URL, APIKey: "k"}))
	hs, err := r.Find(context.Background(), hospital.Query{Location: model.LatLng{Lat: 34.05, Lng: -118.24}})
	require.NoError(t, err)
	require.Len(t, hs, 1)
	assert.Equal(t, "St. Vincent Hospital", hs[0].Name)
	require.NotNil(t, hs[0].Location)
	assert.Equal(t, 34.05, hs[0].Location.Lat)
}

func TestRankerPropagatesInnerError(t *testing.T) {
	r := NewRanker(stubProvider{err: errors.New("places down")}, NewClient(Config{Endpoint: "http://127.0.0.1:0", APIKey: "k"}))
	_, err := r.Find(context.Background(), hospital.Query{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "places down")
}

func TestRankerPropagatesModelError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	r := NewRanker(stubProvider{hs: candidates()}, NewClient(Config{Endpoint: srv.URL, APIKey: "k"}))
	_, err := r.Find(context.Background(), hospital.Query{})
	require.Error(t, err)
}

func TestBuildPromptContainsContext(t *testing.T) {
	p := BuildPrompt(hospital.Query{
		Needs:      "pediatric respiratory distress",
		Severity:   model.SeverityCritical,
		PatientAge: 6,
	}, candidates())
	assert.Contains(t, p, "pediatric respiratory distress")
	assert.Contains(t, p, "CRITICAL")
	assert.Contains(t, p, "Patient Age: 6 years")
	assert.Contains(t, p, "Cedar Ridge Medical Center")
	assert.Contains(t, p, "JSON array")
}

func TestParseSuggestionsErrors(t *testing.T) {
	_, err := ParseSuggestions("no json here")
	require.Error(t, err)
	_, err = ParseSuggestions("[]")
	require.Error(t, err)
}
