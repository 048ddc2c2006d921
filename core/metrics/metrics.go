// Package metrics defines the observability contract of the fleet
// coordinator. The coordinator records domain events against a sink;
// the Prometheus and InfluxDB adapters live in infra.
package metrics

import "time"

// TripStartEvent captures one dispatched trip.
type TripStartEvent struct {
	TripID     int
	Plate      string
	Passengers int
	TotalFare  float64
	FromQueue  bool // false when the vehicle was dispatched without waiting in line
	Time       time.Time
}

// TripCompletionEvent captures an arrival.
type TripCompletionEvent struct {
	TripID    int
	Plate     string
	TotalFare float64
	Duration  time.Duration
	Time      time.Time
}

// DayCloseEvent captures one end of day archival run.
type DayCloseEvent struct {
	Archived     int
	TotalFares   float64
	CounterReset bool
	Time         time.Time
}

// FleetStateEvent is a gauge style snapshot of the fleet.
type FleetStateEvent struct {
	Vehicles    int
	Waiting     int
	ActiveTrips int
	Archived    int
	Time        time.Time
}

// MetricsSink records fleet events for observability purposes.
type MetricsSink interface {
	RecordTripStart(ev TripStartEvent) error
	RecordTripCompletion(ev TripCompletionEvent) error
	RecordDayClose(ev DayCloseEvent) error
}

// FleetStateRecorder is implemented by sinks able to record fleet level
// gauges.
type FleetStateRecorder interface {
	RecordFleetState(ev FleetStateEvent) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordTripStart(TripStartEvent) error           { return nil }
func (NopSink) RecordTripCompletion(TripCompletionEvent) error { return nil }
func (NopSink) RecordDayClose(DayCloseEvent) error             { return nil }

// Ensure NopSink implements FleetStateRecorder.
func (NopSink) RecordFleetState(FleetStateEvent) error { return nil }
