package metrics

import coremetrics "github.com/swiftresponder/swiftresponder/core/metrics"

// MultiSink fans dispatch events out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordDispatch forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordDispatch(ev coremetrics.DispatchEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordDispatch(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordTick forwards tick samples to sinks that support them.
func (m *MultiSink) RecordTick(ev coremetrics.TickEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.TickRecorder); ok {
			if err := rec.RecordTick(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
