package places

import (
	"context"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swiftresponder/swiftresponder/core/hospital"
	"github.com/swiftresponder/swiftresponder/core/model"
)

const searchPayload = `{
  "status": "OK",
  "results": [
    {
      "place_id": "p1",
      "name": "Westside Clinic",
      "vicinity": "12 Elm St",
      "geometry": {"location": {"lat": 34.06, "lng": -118.25}},
      "rating": 3.2,
      "user_ratings_total": 80,
      "opening_hours": {"open_now": false}
    },
    {
      "place_id": "p2",
      "name": "Cedar Ridge Medical Center",
      "vicinity": "500 Grand Ave",
      "geometry": {"location": {"lat": 34.055, "lng": -118.245}},
      "rating": 4.6,
      "user_ratings_total": 1500,
      "opening_hours": {"open_now": true}
    }
  ]
}`

func TestClientFindConvertsAndSorts(t *testing.T) {
	capacityRng = rand.New(rand.NewSource(1))
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"location": r.URL.Query().Get("location"),
			"type":     r.URL.Query().Get("type"),
			"key":      r.URL.Query().Get("key"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(searchPayload))
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL, APIKey: "test-key"})
	hs, err := c.Find(context.Background(), hospital.Query{
		Location: model.LatLng{Lat: 34.0522, Lng: -118.2437},
	})
	require.NoError(t, err)
	require.Len(t, hs, 2)

	assert.Equal(t, "hospital", gotQuery["type"])
	assert.Equal(t, "test-key", gotQuery["key"])
	assert.NotEmpty(t, gotQuery["location"])

	// The open, highly rated medical center sorts first.
	assert.Equal(t, "Cedar Ridge Medical Center", hs[0].Name)
	assert.True(t, hs[0].IsOpen)
	assert.Greater(t, hs[0].SuitabilityScore, hs[1].SuitabilityScore)
	assert.NotNil(t, hs[0].Location)
	assert.Greater(t, hs[0].AvailableBeds, 0)
	assert.NotEmpty(t, hs[0].Reason)
	assert.Contains(t, hs[0].Specialties, "Emergency Medicine")
}

func TestClientFindErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"REQUEST_DENIED","error_message":"bad key","results":[]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL, APIKey: "bad"})
	_, err := c.Find(context.Background(), hospital.Query{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
}

func TestClientFindUnconfigured(t *testing.T) {
	c := NewClient(Config{})
	_, err := c.Find(context.Background(), hospital.Query{})
	require.Error(t, err)
}

func TestInferSize(t *testing.T) {
	assert.Equal(t, sizeLarge, inferSize(50, "County Medical Center"))
	assert.Equal(t, sizeLarge, inferSize(2000, "St. Anne Hospital"))
	assert.Equal(t, sizeSmall, inferSize(40, "Corner Urgent Care"))
	assert.Equal(t, sizeMedium, inferSize(500, "St. Anne Hospital"))
}

func TestSuitabilityScoreClamped(t *testing.T) {
	high := suitabilityScore(4.9, 0.5, true, capacity{beds: 30, icus: 10, doctors: 20})
	assert.Equal(t, 10.0, high)
	low := suitabilityScore(0, 50, false, capacity{beds: 1, icus: 0, doctors: 1})
	assert.GreaterOrEqual(t, low, 1.0)
	assert.LessOrEqual(t, low, 10.0)
}

func TestSortCandidatesDeadband(t *testing.T) {
	hs := []model.Hospital{
		{Name: "far-better", IsOpen: true, SuitabilityScore: 8.4, DistanceKM: 6},
		{Name: "near", IsOpen: true, SuitabilityScore: 8.0, DistanceKM: 1},
		{Name: "closed", IsOpen: false, SuitabilityScore: 9.9, DistanceKM: 0.5},
	}
	SortCandidates(hs)
	// Scores within 0.5 of each other fall back to distance; closed sorts last.
	assert.Equal(t, "near", hs[0].Name)
	assert.Equal(t, "far-better", hs[1].Name)
	assert.Equal(t, "closed", hs[2].Name)
}
