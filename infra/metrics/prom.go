package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/todatrack/todatrack/core/metrics"
)

// PromSink records fleet events in Prometheus metrics.
type PromSink struct {
	tripsStarted   *prometheus.CounterVec
	tripsCompleted *prometheus.CounterVec
	tripDuration   prometheus.Histogram
	faresEarned    prometheus.Counter
	dayCloses      prometheus.Counter
	archivedTrips  prometheus.Counter

	vehicles    prometheus.Gauge
	waiting     prometheus.Gauge
	activeTrips prometheus.Gauge
	archiveSize prometheus.Gauge
}

// NewPromSink registers the fleet collectors on the provided Prometheus
// registerer. If reg is nil, the default registerer is used. If the
// collectors are already registered, the existing ones are reused.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		tripsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fleet_trips_started_total",
			Help: "Total number of trips dispatched",
		}, []string{"plate"}),
		tripsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fleet_trips_completed_total",
			Help: "Total number of trips completed",
		}, []string{"plate"}),
		tripDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fleet_trip_duration_seconds",
			Help:    "Duration of completed trips in seconds",
			Buckets: prometheus.ExponentialBuckets(60, 2, 8),
		}),
		faresEarned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fleet_fares_earned_total",
			Help: "Sum of fares recorded on completed trips",
		}),
		dayCloses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fleet_day_closes_total",
			Help: "Number of end of day archival runs",
		}),
		archivedTrips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fleet_archived_trips_total",
			Help: "Number of trips moved to the archive at day close",
		}),
		vehicles: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fleet_vehicles",
			Help: "Number of registered vehicles",
		}),
		waiting: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fleet_waiting_vehicles",
			Help: "Number of vehicles in the waiting line",
		}),
		activeTrips: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fleet_active_trips",
			Help: "Number of trips currently under way",
		}),
		archiveSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fleet_archive_size",
			Help: "Number of trips held in the archive",
		}),
	}

	var err error
	if s.tripsStarted, err = register(reg, s.tripsStarted); err != nil {
		return nil, err
	}
	if s.tripsCompleted, err = register(reg, s.tripsCompleted); err != nil {
		return nil, err
	}
	if s.tripDuration, err = register(reg, s.tripDuration); err != nil {
		return nil, err
	}
	if s.faresEarned, err = register(reg, s.faresEarned); err != nil {
		return nil, err
	}
	if s.dayCloses, err = register(reg, s.dayCloses); err != nil {
		return nil, err
	}
	if s.archivedTrips, err = register(reg, s.archivedTrips); err != nil {
		return nil, err
	}
	if s.vehicles, err = register(reg, s.vehicles); err != nil {
		return nil, err
	}
	if s.waiting, err = register(reg, s.waiting); err != nil {
		return nil, err
	}
	if s.activeTrips, err = register(reg, s.activeTrips); err != nil {
		return nil, err
	}
	if s.archiveSize, err = register(reg, s.archiveSize); err != nil {
		return nil, err
	}
	return s, nil
}

// register adds c to reg, reusing the existing collector when one with the
// same descriptor is already registered.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	return c, err
}

// RecordTripStart increments the dispatch counter for the vehicle.
func (s *PromSink) RecordTripStart(ev coremetrics.TripStartEvent) error {
	s.tripsStarted.WithLabelValues(ev.Plate).Inc()
	return nil
}

// RecordTripCompletion records the completion counter, the trip duration and
// the earned fare.
func (s *PromSink) RecordTripCompletion(ev coremetrics.TripCompletionEvent) error {
	s.tripsCompleted.WithLabelValues(ev.Plate).Inc()
	s.tripDuration.Observe(ev.Duration.Seconds())
	s.faresEarned.Add(ev.TotalFare)
	return nil
}

// RecordDayClose counts the archival run and the trips it moved.
func (s *PromSink) RecordDayClose(ev coremetrics.DayCloseEvent) error {
	s.dayCloses.Inc()
	s.archivedTrips.Add(float64(ev.Archived))
	return nil
}

// RecordFleetState updates the fleet level gauges.
func (s *PromSink) RecordFleetState(ev coremetrics.FleetStateEvent) error {
	s.vehicles.Set(float64(ev.Vehicles))
	s.waiting.Set(float64(ev.Waiting))
	s.activeTrips.Set(float64(ev.ActiveTrips))
	s.archiveSize.Set(float64(ev.Archived))
	return nil
}
