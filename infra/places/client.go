// Package places implements a hospital provider backed by a nearby-search
// places API. Raw place results carry no medical capacity information, so
// the client synthesizes realistic capacity estimates from the facility's
// size, rating and distance.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/swiftresponder/swiftresponder/core/hospital"
	"github.com/swiftresponder/swiftresponder/core/model"
	"github.com/swiftresponder/swiftresponder/infra/logger"
)

var capacityRng = rand.New(rand.NewSource(time.Now().UnixNano()))

// Config holds the places API settings.
type Config struct {
	Endpoint string        `json:"endpoint" yaml:"endpoint"`
	APIKey   string        `json:"api_key" yaml:"api_key"`
	RadiusM  int           `json:"radius_m" yaml:"radius_m"`
	Timeout  time.Duration `json:"timeout" yaml:"timeout"`
}

// SetDefaults fills zero values with sane defaults.
func (c *Config) SetDefaults() {
	if c.RadiusM == 0 {
		c.RadiusM = 10000
	}
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}
}

// Client queries a places nearby-search endpoint and converts the results
// into hospital candidates. It implements hospital.Provider.
type Client struct {
	cfg  Config
	http *http.Client
	log  logger.Logger
}

// NewClient creates a places client. The endpoint and API key must be set
// for Find to succeed.
func NewClient(cfg Config) *Client {
	cfg.SetDefaults()
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  logger.New("places-client"),
	}
}

func (c *Client) Name() string { return "places" }

type placeResult struct {
	PlaceID          string `json:"place_id"`
	Name             string `json:"name"`
	Vicinity         string `json:"vicinity"`
	FormattedAddress string `json:"formatted_address"`
	Geometry         struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
	Rating           float64 `json:"rating"`
	UserRatingsTotal int     `json:"user_ratings_total"`
	BusinessStatus   string  `json:"business_status"`
	OpeningHours     *struct {
		OpenNow bool `json:"open_now"`
	} `json:"opening_hours"`
	Types []string `json:"types"`
}

type searchResponse struct {
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message"`
	Results      []placeResult `json:"results"`
}

// Find performs a nearby search around the query location and returns
// hospital candidates sorted by open status, suitability and distance.
func (c *Client) Find(ctx context.Context, q hospital.Query) ([]model.Hospital, error) {
	if c.cfg.Endpoint == "" || c.cfg.APIKey == "" {
		return nil, fmt.Errorf("places: endpoint or api key not configured")
	}
	radius := q.RadiusM
	if radius == 0 {
		radius = c.cfg.RadiusM
	}

	params := url.Values{}
	params.Set("location", fmt.Sprintf("%f,%f", q.Location.Lat, q.Location.Lng))
	params.Set("radius", strconv.Itoa(radius))
	params.Set("type", "hospital")
	params.Set("keyword", "emergency hospital medical center clinic")
	params.Set("key", c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("places: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("places: unexpected status %d", resp.StatusCode)
	}
	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("places: decode response: %w", err)
	}
	if sr.Status != "OK" && sr.Status != "" {
		return nil, fmt.Errorf("places: search status %s: %s", sr.Status, sr.ErrorMessage)
	}

	hs := make([]model.Hospital, 0, len(sr.Results))
	for i, p := range sr.Results {
		if p.Name == "" {
			continue
		}
		hs = append(hs, convertPlace(p, q.Location, i))
	}
	c.log.Infof("places search returned %d hospitals near %.4f,%.4f", len(hs), q.Location.Lat, q.Location.Lng)
	SortCandidates(hs)
	return hs, nil
}

// SortCandidates orders hospitals by open status first, then suitability
// when scores differ by more than half a point, then distance.
func SortCandidates(hs []model.Hospital) {
	sort.SliceStable(hs, func(i, j int) bool {
		a, b := hs[i], hs[j]
		if a.IsOpen != b.IsOpen {
			return a.IsOpen
		}
		if diff := a.SuitabilityScore - b.SuitabilityScore; diff > 0.5 || diff < -0.5 {
			return a.SuitabilityScore > b.SuitabilityScore
		}
		return a.DistanceKM < b.DistanceKM
	})
}

func convertPlace(p placeResult, origin model.LatLng, index int) model.Hospital {
	loc := model.LatLng{Lat: p.Geometry.Location.Lat, Lng: p.Geometry.Location.Lng}
	dist := model.Haversine(origin, loc)

	open := true
	if p.OpeningHours != nil {
		open = p.OpeningHours.OpenNow
	}
	operational := p.BusinessStatus == "" || p.BusinessStatus == "OPERATIONAL"

	size := inferSize(p.UserRatingsTotal, p.Name)
	avail := synthesizeCapacity(size, dist, open)
	score := suitabilityScore(p.Rating, dist, open, avail)

	id := p.PlaceID
	if id == "" {
		id = fmt.Sprintf("hospital-%d", index)
	}
	addr := p.Vicinity
	if addr == "" {
		addr = p.FormattedAddress
	}
	if addr == "" {
		addr = "Address unavailable"
	}

	return model.Hospital{
		ID:                       id,
		Name:                     p.Name,
		Address:                  addr,
		Location:                 &loc,
		DistanceKM:               dist,
		AvailableBeds:            avail.beds,
		AvailableICUs:            avail.icus,
		AvailableNICUs:           avail.nicus,
		AvailableOxygenCylinders: avail.oxygen,
		AvailableVentilators:     avail.ventilators,
		AvailableDoctors:         avail.doctors,
		SuitabilityScore:         score,
		Reason:                   suitabilityReason(p.Rating, p.UserRatingsTotal, dist, open, avail),
		Specialties:              inferSpecialties(size, p.Name),
		WaitTimeMin:              waitTime(dist, avail.beds, open),
		Rating:                   p.Rating,
		ReviewCount:              p.UserRatingsTotal,
		IsOpen:                   open && operational,
	}
}

type hospitalSize int

const (
	sizeSmall hospitalSize = iota
	sizeMedium
	sizeLarge
)

func inferSize(reviewCount int, name string) hospitalSize {
	n := strings.ToLower(name)
	switch {
	case reviewCount > 1000,
		strings.Contains(n, "medical center"),
		strings.Contains(n, "university"),
		strings.Contains(n, "regional"),
		strings.Contains(n, "general hospital"):
		return sizeLarge
	case reviewCount < 200,
		strings.Contains(n, "clinic"),
		strings.Contains(n, "urgent care"):
		return sizeSmall
	default:
		return sizeMedium
	}
}

type capacity struct {
	beds, icus, nicus, oxygen, ventilators, doctors int
}

var capacityRanges = map[hospitalSize]struct {
	beds, icus, nicus, oxygen, ventilators, doctors [2]int
}{
	sizeSmall:  {[2]int{3, 8}, [2]int{1, 3}, [2]int{0, 1}, [2]int{5, 10}, [2]int{2, 5}, [2]int{2, 5}},
	sizeMedium: {[2]int{8, 20}, [2]int{3, 8}, [2]int{1, 3}, [2]int{10, 25}, [2]int{5, 12}, [2]int{5, 12}},
	sizeLarge:  {[2]int{15, 35}, [2]int{8, 15}, [2]int{3, 8}, [2]int{20, 50}, [2]int{10, 20}, [2]int{10, 25}},
}

func synthesizeCapacity(size hospitalSize, distanceKM float64, open bool) capacity {
	r := capacityRanges[size]
	c := capacity{
		beds:        randomInRange(r.beds),
		icus:        randomInRange(r.icus),
		nicus:       randomInRange(r.nicus),
		oxygen:      randomInRange(r.oxygen),
		ventilators: randomInRange(r.ventilators),
		doctors:     randomInRange(r.doctors),
	}
	// Night shifts run on reduced staff.
	if !open {
		c.beds = c.beds * 6 / 10
		c.icus = c.icus * 7 / 10
		c.doctors = c.doctors * 4 / 10
	}
	// Distant facilities are assumed busier.
	if distanceKM > 5 {
		c.beds = max(1, c.beds*8/10)
		c.icus = max(1, c.icus*8/10)
	}
	return c
}

func randomInRange(r [2]int) int {
	return capacityRng.Intn(r[1]-r[0]+1) + r[0]
}

func suitabilityScore(rating, distanceKM float64, open bool, c capacity) float64 {
	score := 5.0

	switch {
	case rating >= 4.5:
		score += 3
	case rating >= 4.0:
		score += 2.5
	case rating >= 3.5:
		score += 2
	case rating >= 3.0:
		score += 1
	}

	switch {
	case distanceKM < 1:
		score += 2
	case distanceKM < 3:
		score += 1.5
	case distanceKM < 5:
		score += 1
	case distanceKM < 10:
		score += 0.5
	}

	if open {
		score += 2
	} else {
		score += 0.5
	}

	total := c.beds + c.icus + c.doctors
	switch {
	case total > 30:
		score += 3
	case total > 20:
		score += 2
	case total > 10:
		score += 1
	}

	if score > 10 {
		return 10
	}
	if score < 1 {
		return 1
	}
	return score
}

func waitTime(distanceKM float64, beds int, open bool) int {
	wait := int(distanceKM / 48 * 60)
	switch {
	case beds > 15:
		wait += randomInRange([2]int{5, 10})
	case beds > 8:
		wait += randomInRange([2]int{10, 20})
	default:
		wait += randomInRange([2]int{15, 30})
	}
	if !open {
		wait += randomInRange([2]int{5, 15})
	}
	return wait
}

func suitabilityReason(rating float64, reviews int, distanceKM float64, open bool, c capacity) string {
	var reasons []string

	switch {
	case distanceKM < 1:
		reasons = append(reasons, "extremely close, under 1 km")
	case distanceKM < 2:
		reasons = append(reasons, "very close proximity")
	case distanceKM < 5:
		reasons = append(reasons, "good location within 5 km")
	default:
		reasons = append(reasons, fmt.Sprintf("%.1f km away", distanceKM))
	}

	switch {
	case rating >= 4.5:
		reasons = append(reasons, "excellent patient reviews (4.5+)")
	case rating >= 4.0:
		reasons = append(reasons, "highly rated (4.0+)")
	case rating >= 3.5:
		reasons = append(reasons, "good ratings (3.5+)")
	}

	if reviews > 1000 {
		reasons = append(reasons, "well-established facility")
	} else if reviews > 500 {
		reasons = append(reasons, "trusted by community")
	}

	switch {
	case c.beds > 15:
		reasons = append(reasons, fmt.Sprintf("high bed availability (%d beds)", c.beds))
	case c.beds > 8:
		reasons = append(reasons, fmt.Sprintf("adequate capacity (%d beds)", c.beds))
	default:
		reasons = append(reasons, fmt.Sprintf("limited beds (%d available)", c.beds))
	}

	if c.icus >= 5 {
		reasons = append(reasons, fmt.Sprintf("well-equipped ICU (%d units)", c.icus))
	}
	if c.doctors >= 10 {
		reasons = append(reasons, fmt.Sprintf("well-staffed (%d doctors)", c.doctors))
	}

	if open {
		reasons = append(reasons, "currently open")
	} else {
		reasons = append(reasons, "24/7 emergency services available")
	}

	return strings.Join(reasons, "; ")
}

func inferSpecialties(size hospitalSize, name string) []string {
	n := strings.ToLower(name)
	specialties := []string{"Emergency Medicine"}

	add := func(ss ...string) {
		for _, s := range ss {
			found := false
			for _, have := range specialties {
				if have == s {
					found = true
					break
				}
			}
			if !found {
				specialties = append(specialties, s)
			}
		}
	}

	if strings.Contains(n, "children") || strings.Contains(n, "pediatric") {
		add("Pediatrics", "Neonatology")
	}
	if strings.Contains(n, "cardiac") || strings.Contains(n, "heart") {
		add("Cardiology", "Cardiac Surgery")
	}
	if strings.Contains(n, "cancer") || strings.Contains(n, "oncology") {
		add("Oncology", "Radiation Therapy")
	}
	if strings.Contains(n, "women") || strings.Contains(n, "maternity") {
		add("Obstetrics", "Gynecology")
	}
	if strings.Contains(n, "trauma") || strings.Contains(n, "regional") {
		add("Trauma Surgery", "Emergency Care")
	}

	switch size {
	case sizeLarge:
		add("General Medicine", "Surgery", "Cardiology", "Neurology", "Orthopedics", "Trauma Care", "Intensive Care")
	case sizeMedium:
		add("General Medicine", "Surgery", "Cardiology", "Orthopedics")
	default:
		add("Primary Care", "General Medicine")
	}
	return specialties
}
