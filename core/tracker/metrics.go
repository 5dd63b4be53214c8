package tracker

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	dispatchesStarted    prometheus.Counter
	arrivals             prometheus.Counter
	movementTicks        prometheus.Counter
	routeRefreshFailures prometheus.Counter
	trackerState         *prometheus.GaugeVec
)

// newCollectors creates new metric collectors.
func newCollectors() (prometheus.Counter, prometheus.Counter, prometheus.Counter, prometheus.Counter, *prometheus.GaugeVec) {
	started := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tracker_dispatches_started_total",
			Help: "Number of dispatches accepted by the tracker",
		},
	)
	arrived := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tracker_arrivals_total",
			Help: "Number of dispatches that reached the destination",
		},
	)
	ticks := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tracker_movement_ticks_total",
			Help: "Number of movement simulation ticks processed",
		},
	)
	refreshFail := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tracker_route_refresh_failures_total",
			Help: "Number of failed live route refresh attempts",
		},
	)
	state := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tracker_state",
			Help: "Current tracker state (1 for the active state)",
		},
		[]string{"state"},
	)
	return started, arrived, ticks, refreshFail, state
}

func init() {
	dispatchesStarted, arrivals, movementTicks, routeRefreshFailures, trackerState = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers tracker metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(dispatchesStarted, arrivals, movementTicks, routeRefreshFailures, trackerState)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	dispatchesStarted, arrivals, movementTicks, routeRefreshFailures, trackerState = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}

func setStateGauge(s Status) {
	for _, st := range []Status{StatusIdle, StatusDispatching, StatusDispatched, StatusArrived} {
		v := 0.0
		if st == s {
			v = 1.0
		}
		trackerState.WithLabelValues(string(st)).Set(v)
	}
}
