// Package metrics defines the sink interface used to record dispatch
// outcomes for observability backends.
package metrics

import "time"

// DispatchEvent represents one finished dispatch to be recorded.
type DispatchEvent struct {
	DispatchID  string
	AmbulanceID string
	Hospital    string
	Outcome     string
	Score       float64
	DistanceKM  float64
	DurationMin float64
	Time        time.Time
}

// Sink records dispatch events for observability purposes.
type Sink interface {
	RecordDispatch(ev DispatchEvent) error
}

// TickEvent captures a movement simulation tick.
type TickEvent struct {
	AmbulanceID string
	DistanceKM  float64
	ETAMin      float64
	Time        time.Time
}

// TickRecorder is implemented by sinks able to record per-tick telemetry.
type TickRecorder interface {
	RecordTick(ev TickEvent) error
}

// NopSink implements Sink with no-op methods.
type NopSink struct{}

func (NopSink) RecordDispatch(DispatchEvent) error { return nil }
func (NopSink) RecordTick(TickEvent) error         { return nil }
