package metrics

import coremetrics "github.com/todatrack/todatrack/core/metrics"

// MultiSink fans fleet events out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordTripStart forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordTripStart(ev coremetrics.TripStartEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordTripStart(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordTripCompletion forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordTripCompletion(ev coremetrics.TripCompletionEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordTripCompletion(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordDayClose forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordDayClose(ev coremetrics.DayCloseEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordDayClose(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordFleetState forwards fleet gauges to the sinks that support them.
func (m *MultiSink) RecordFleetState(ev coremetrics.FleetStateEvent) error {
	for _, s := range m.Sinks {
		if r, ok := s.(coremetrics.FleetStateRecorder); ok {
			if err := r.RecordFleetState(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
