package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/swiftresponder/swiftresponder/core/metrics"
)

// PromSink records dispatch events in Prometheus metrics.
type PromSink struct {
	dispatches *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	distance   prometheus.Histogram
}

// NewPromSink registers dispatch metrics on the default Prometheus registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	dispatches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatches_total",
		Help: "Total number of finished dispatches",
	}, []string{"outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dispatch_duration_minutes",
		Help:    "Duration of a dispatch from request to completion",
		Buckets: []float64{1, 2, 5, 10, 15, 30, 60},
	}, []string{"outcome"})
	distance := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "dispatch_distance_km",
		Help:    "Initial distance between ambulance and destination",
		Buckets: []float64{0.5, 1, 2, 5, 10, 25},
	})

	if err := reg.Register(dispatches); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			dispatches = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(duration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			duration = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(distance); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			distance = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}
	return &PromSink{dispatches: dispatches, duration: duration, distance: distance}, nil
}

// RecordDispatch increments the counters for a finished dispatch.
func (s *PromSink) RecordDispatch(ev coremetrics.DispatchEvent) error {
	s.dispatches.WithLabelValues(ev.Outcome).Inc()
	s.duration.WithLabelValues(ev.Outcome).Observe(ev.DurationMin)
	s.distance.Observe(ev.DistanceKM)
	return nil
}
