// Package tracker owns the dispatch lifecycle: a guarded state machine from
// IDLE through DISPATCHING and DISPATCHED to ARRIVED, plus the movement
// simulation that drives a dispatched unit toward its destination on a
// fixed tick.
package tracker

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/swiftresponder/swiftresponder/core/events"
	"github.com/swiftresponder/swiftresponder/core/history"
	"github.com/swiftresponder/swiftresponder/core/hospital"
	"github.com/swiftresponder/swiftresponder/core/logger"
	coremetrics "github.com/swiftresponder/swiftresponder/core/metrics"
	"github.com/swiftresponder/swiftresponder/core/model"
	"github.com/swiftresponder/swiftresponder/core/routing"
	"github.com/swiftresponder/swiftresponder/core/selector"
	"github.com/swiftresponder/swiftresponder/core/telemetry"
	"github.com/swiftresponder/swiftresponder/internal/eventbus"
)

var (
	// ErrNotIdle is returned when Dispatch is called while a dispatch is
	// already active.
	ErrNotIdle = errors.New("tracker: dispatch already in progress")
	// ErrNoAmbulance is returned when no unit is available for dispatch.
	ErrNoAmbulance = errors.New("tracker: no ambulance available")
	// ErrCancelled is returned when a reset lands while a dispatch is
	// still being resolved.
	ErrCancelled = errors.New("tracker: dispatch cancelled")
)

// Config tunes the simulation.
type Config struct {
	DispatchDelay      time.Duration `json:"dispatch_delay" yaml:"dispatch_delay"`
	TickInterval       time.Duration `json:"tick_interval" yaml:"tick_interval"`
	SpeedKMH           float64       `json:"speed_kmh" yaml:"speed_kmh"`
	ArrivalThresholdKM float64       `json:"arrival_threshold_km" yaml:"arrival_threshold_km"`
	RouteRefreshTicks  int           `json:"route_refresh_ticks" yaml:"route_refresh_ticks"`
}

// SetDefaults fills zero values with the simulation defaults.
func (c *Config) SetDefaults() {
	if c.DispatchDelay == 0 {
		c.DispatchDelay = 2500 * time.Millisecond
	}
	if c.TickInterval == 0 {
		c.TickInterval = time.Second
	}
	if c.SpeedKMH == 0 {
		c.SpeedKMH = routing.AverageSpeedKMH
	}
	if c.ArrivalThresholdKM == 0 {
		c.ArrivalThresholdKM = 0.1
	}
	if c.RouteRefreshTicks == 0 {
		c.RouteRefreshTicks = 30
	}
}

// Deps collects the collaborators of a Tracker. Bus, Sink and Publisher may
// be nil.
type Deps struct {
	Selector  *selector.Selector
	Finder    *hospital.Finder
	Routes    routing.Provider
	History   history.Store
	Sink      coremetrics.Sink
	Publisher telemetry.Publisher
	Bus       eventbus.EventBus
	Log       logger.Logger
}

// Snapshot is a consistent copy of the tracker state for read-only callers.
type Snapshot struct {
	Status     Status                 `json:"status"`
	Ambulances []model.Ambulance      `json:"ambulances"`
	Dispatched *model.Ambulance       `json:"dispatched,omitempty"`
	Hospital   *model.Hospital        `json:"hospital,omitempty"`
	Request    *model.DispatchRequest `json:"request,omitempty"`
	Route      *routing.Route         `json:"route,omitempty"`
	ETAMin     float64                `json:"eta_min"`
	DistanceKM float64                `json:"distance_km"`
}

// Tracker is the dispatch state machine. All mutable state sits behind one
// mutex; timers and async completions re-check state before applying.
type Tracker struct {
	cfg  Config
	deps Deps

	mu         sync.Mutex
	status     Status
	baseline   []model.Ambulance
	ambulances []model.Ambulance
	dispatched *model.Ambulance
	hospital   *model.Hospital
	request    *model.DispatchRequest
	route      *routing.Route
	etaMin     float64
	distanceKM float64
	dispatchID string
	startedAt  time.Time
	ticks      int
	refreshing bool
}

// New creates a Tracker over the given fleet. The fleet is the baseline
// restored on every reset.
func New(cfg Config, fleet []model.Ambulance, deps Deps) *Tracker {
	cfg.SetDefaults()
	if deps.Sink == nil {
		deps.Sink = coremetrics.NopSink{}
	}
	if deps.Publisher == nil {
		deps.Publisher = telemetry.NopPublisher{}
	}
	if deps.Log == nil {
		deps.Log = nopLogger{}
	}
	baseline := make([]model.Ambulance, len(fleet))
	copy(baseline, fleet)
	active := make([]model.Ambulance, len(fleet))
	copy(active, fleet)
	t := &Tracker{
		cfg:        cfg,
		deps:       deps,
		status:     StatusIdle,
		baseline:   baseline,
		ambulances: active,
	}
	setStateGauge(StatusIdle)
	return t
}

// Status returns the current lifecycle state.
func (t *Tracker) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Snapshot returns a consistent copy of the tracker state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := Snapshot{
		Status:     t.status,
		Ambulances: make([]model.Ambulance, len(t.ambulances)),
		ETAMin:     t.etaMin,
		DistanceKM: t.distanceKM,
	}
	copy(snap.Ambulances, t.ambulances)
	if t.dispatched != nil {
		a := *t.dispatched
		snap.Dispatched = &a
	}
	if t.hospital != nil {
		h := *t.hospital
		snap.Hospital = &h
	}
	if t.request != nil {
		r := *t.request
		snap.Request = &r
	}
	if t.route != nil {
		r := *t.route
		r.Points = make([]model.LatLng, len(t.route.Points))
		copy(r.Points, t.route.Points)
		snap.Route = &r
	}
	return snap
}

// Dispatch resolves a unit, a destination hospital and a route for the
// request, then transitions to DISPATCHED. It blocks for the configured
// dispatch delay and is rejected unless the tracker is IDLE.
func (t *Tracker) Dispatch(ctx context.Context, req model.DispatchRequest) error {
	t.mu.Lock()
	if t.status != StatusIdle {
		t.mu.Unlock()
		return ErrNotIdle
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Timestamp.IsZero() {
		req.Timestamp = time.Now()
	}
	id := req.ID
	t.dispatchID = id
	t.transition(StatusDispatching)
	fleet := make([]model.Ambulance, len(t.ambulances))
	copy(fleet, t.ambulances)
	t.mu.Unlock()

	if err := t.wait(ctx); err != nil {
		t.abort(id)
		return err
	}

	unit, score, ok := t.selectUnit(fleet, req)
	if !ok {
		t.deps.Log.Errorf("no ambulance available for request %s", req.ID)
		t.abort(id)
		return ErrNoAmbulance
	}

	dest, err := t.deps.Finder.FindBest(ctx, hospital.Query{
		Location:   req.Location,
		Needs:      req.MedicalNeeds,
		Severity:   req.Severity,
		PatientAge: req.PatientAge,
	})
	if err != nil {
		t.deps.Log.Errorf("hospital resolution failed for request %s: %v", req.ID, err)
		t.abort(id)
		return err
	}

	target := req.Location
	if dest.Location != nil {
		target = *dest.Location
	}
	route, err := t.deps.Routes.Route(ctx, unit.Location, target)
	if err != nil {
		// The provider is normally wrapped with a straight-line
		// fallback, so this only happens with a bare provider.
		t.deps.Log.Warnf("route lookup failed, using straight line: %v", err)
		route, _ = routing.StraightLine{}.Route(ctx, unit.Location, target)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != StatusDispatching || t.dispatchID != id {
		// Reset landed while we were resolving.
		return ErrCancelled
	}

	unit.Status = model.StatusDispatched
	for i := range t.ambulances {
		if t.ambulances[i].ID == unit.ID {
			t.ambulances[i] = unit
			t.dispatched = &t.ambulances[i]
			break
		}
	}
	reqCopy := req
	t.request = &reqCopy
	t.hospital = &dest
	t.route = route
	t.distanceKM = model.Haversine(unit.Location, target)
	t.etaMin = t.etaFromRoute(route)
	t.startedAt = time.Now()
	t.ticks = 0
	t.transition(StatusDispatched)
	dispatchesStarted.Inc()

	t.deps.Log.Infof("dispatched %s to %s (%.2f km, eta %.0f min, score %.0f)",
		unit.ID, dest.Name, t.distanceKM, t.etaMin, score)
	if t.deps.Bus != nil {
		t.deps.Bus.Publish(events.DispatchEvent{
			Request:   req,
			Ambulance: unit,
			Hospital:  dest,
			ETAMin:    t.etaMin,
		})
	}
	return nil
}

// wait sleeps for the dispatch delay, honouring context cancellation.
func (t *Tracker) wait(ctx context.Context) error {
	if t.cfg.DispatchDelay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(t.cfg.DispatchDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// abort returns to IDLE if this dispatch attempt is still the active one.
func (t *Tracker) abort(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status == StatusDispatching && t.dispatchID == id {
		t.dispatchID = ""
		t.transition(StatusIdle)
	}
}

// selectUnit ranks the fleet and falls back to the nearest unit when the
// ranking is empty. Units already marked dispatched are never candidates.
func (t *Tracker) selectUnit(fleet []model.Ambulance, req model.DispatchRequest) (model.Ambulance, float64, bool) {
	var exclude []string
	for _, a := range fleet {
		if a.Status == model.StatusDispatched {
			exclude = append(exclude, a.ID)
		}
	}
	if t.deps.Selector != nil {
		ranked := t.deps.Selector.Rank(fleet, req.Location, selector.Criteria{
			MedicalNeeds:      req.MedicalNeeds,
			Severity:          req.Severity,
			RequiredEquipment: req.RequiredEquipment,
			PatientAge:        req.PatientAge,
		}, exclude...)
		if len(ranked) > 0 {
			return ranked[0].Ambulance, ranked[0].Score, true
		}
	}
	unit, ok := selector.Nearest(fleet, req.Location, exclude...)
	return unit, 0, ok
}

// Tick advances the movement simulation by one step. It is a no-op outside
// DISPATCHED.
func (t *Tracker) Tick(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != StatusDispatched || t.dispatched == nil || t.hospital == nil {
		return
	}
	movementTicks.Inc()

	target := t.destination()
	dist := model.Haversine(t.dispatched.Location, target)

	if dist < t.cfg.ArrivalThresholdKM {
		t.dispatched.Location = target
		t.route = nil
		t.distanceKM = 0
		t.etaMin = 0
		t.transition(StatusArrived)
		arrivals.Inc()
		t.deps.Log.Infof("%s arrived at %s", t.dispatched.ID, t.hospital.Name)
		if t.deps.Bus != nil {
			t.deps.Bus.Publish(events.ArrivalEvent{
				AmbulanceID: t.dispatched.ID,
				Hospital:    t.hospital.Name,
				Time:        now,
			})
		}
		return
	}

	kmPerMin := t.cfg.SpeedKMH / 60
	totalSteps := dist / (kmPerMin / 60)
	t.dispatched.Location = model.StepToward(t.dispatched.Location, target, totalSteps)
	t.distanceKM = model.Haversine(t.dispatched.Location, target)
	t.etaMin = math.Max(0, math.Round(t.distanceKM/kmPerMin))
	// The straight path is replaced wholesale every tick; a live route is
	// kept until the next refresh.
	if t.route == nil || len(t.route.Points) == 2 {
		t.route = &routing.Route{
			Points:      []model.LatLng{t.dispatched.Location, target},
			DistanceKM:  t.distanceKM,
			DurationMin: t.etaMin,
		}
	}

	ev := events.PositionEvent{
		AmbulanceID: t.dispatched.ID,
		Position:    t.dispatched.Location,
		DistanceKM:  t.distanceKM,
		ETAMin:      t.etaMin,
		Time:        now,
	}
	if t.deps.Bus != nil {
		t.deps.Bus.Publish(ev)
	}
	if err := t.deps.Publisher.PublishPosition(ev); err != nil {
		t.deps.Log.Warnf("telemetry publish failed: %v", err)
	}
	if rec, ok := t.deps.Sink.(coremetrics.TickRecorder); ok {
		_ = rec.RecordTick(coremetrics.TickEvent{
			AmbulanceID: ev.AmbulanceID,
			DistanceKM:  ev.DistanceKM,
			ETAMin:      ev.ETAMin,
			Time:        now,
		})
	}

	t.ticks++
	if t.ticks%t.cfg.RouteRefreshTicks == 0 && !t.refreshing {
		t.refreshing = true
		go t.refreshRoute(t.dispatchID, t.dispatched.Location, target)
	}
}

// refreshRoute re-requests the live route and replaces the stored one when
// the dispatch is still active. Stale completions are dropped.
func (t *Tracker) refreshRoute(id string, origin, dest model.LatLng) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	route, err := t.deps.Routes.Route(ctx, origin, dest)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.refreshing = false
	if err != nil {
		routeRefreshFailures.Inc()
		t.deps.Log.Warnf("route refresh failed, keeping current path: %v", err)
		return
	}
	if t.status != StatusDispatched || t.dispatchID != id {
		return
	}
	t.route = route
	if route.DurationInTrafficMin > 0 {
		t.etaMin = math.Round(route.DurationInTrafficMin)
	}
	t.deps.Log.Debugf("route refreshed: %.2f km over %d points", route.DistanceKM, len(route.Points))
}

// Run drives the movement simulation until ctx is cancelled.
func (t *Tracker) Run(ctx context.Context) {
	ticker := time.NewTicker(t.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			t.Tick(now)
		}
	}
}

// Reset returns the tracker to IDLE. If a dispatch was active, exactly one
// history record is appended: completed when the unit had arrived,
// cancelled otherwise.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.dispatched != nil {
		outcome := history.OutcomeCancelled
		if t.status == StatusArrived {
			outcome = history.OutcomeCompleted
		}
		duration := time.Since(t.startedAt).Minutes()
		rec := history.Record{
			ID:          uuid.NewString(),
			Timestamp:   time.Now(),
			Ambulance:   *t.dispatched,
			Hospital:    *t.hospital,
			DurationMin: duration,
			Outcome:     outcome,
		}
		if t.deps.History != nil {
			if err := t.deps.History.Append(context.Background(), rec); err != nil {
				t.deps.Log.Errorf("history write failed: %v", err)
			}
		}
		_ = t.deps.Sink.RecordDispatch(coremetrics.DispatchEvent{
			DispatchID:  t.dispatchID,
			AmbulanceID: t.dispatched.ID,
			Hospital:    t.hospital.Name,
			Outcome:     string(outcome),
			DistanceKM:  t.distanceKM,
			DurationMin: duration,
			Time:        time.Now(),
		})
	}

	t.ambulances = make([]model.Ambulance, len(t.baseline))
	copy(t.ambulances, t.baseline)
	t.dispatched = nil
	t.hospital = nil
	t.request = nil
	t.route = nil
	t.etaMin = 0
	t.distanceKM = 0
	t.dispatchID = ""
	t.startedAt = time.Time{}
	t.ticks = 0
	if t.status != StatusIdle {
		t.transition(StatusIdle)
	}
}

// destination returns the coordinates the dispatched unit is heading to.
func (t *Tracker) destination() model.LatLng {
	if t.hospital != nil && t.hospital.Location != nil {
		return *t.hospital.Location
	}
	if t.request != nil {
		return t.request.Location
	}
	return model.LatLng{}
}

// etaFromRoute prefers the traffic-adjusted duration when available.
func (t *Tracker) etaFromRoute(r *routing.Route) float64 {
	if r == nil {
		return math.Round(t.distanceKM / (t.cfg.SpeedKMH / 60))
	}
	if r.DurationInTrafficMin > 0 {
		return math.Round(r.DurationInTrafficMin)
	}
	return math.Round(r.DurationMin)
}

// transition applies a state change and publishes it. Caller holds the lock.
func (t *Tracker) transition(to Status) {
	from := t.status
	t.status = to
	setStateGauge(to)
	ev := events.StatusEvent{From: string(from), To: string(to), Time: time.Now()}
	if t.deps.Bus != nil {
		t.deps.Bus.Publish(ev)
	}
	if err := t.deps.Publisher.PublishStatus(ev); err != nil {
		t.deps.Log.Warnf("status publish failed: %v", err)
	}
	t.deps.Log.Debugf("state %s -> %s", from, to)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
