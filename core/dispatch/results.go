package dispatch

import (
	"github.com/todatrack/todatrack/core/ledger"
	"github.com/todatrack/todatrack/core/model"
)

// TripRequest carries the passenger side of a dispatch. A zero
// FarePerPassenger falls back to the vehicle's fare rate.
type TripRequest struct {
	Passengers       int     `json:"passengers"`
	From             string  `json:"from"`
	Destination      string  `json:"destination"`
	FarePerPassenger float64 `json:"fare_per_passenger,omitempty"`
}

// StartTripResult reports a dispatched trip. Warning carries the
// tolerated inconsistency met while dequeuing the vehicle, if any.
type StartTripResult struct {
	Trip    model.Trip
	Warning *ConsistencyWarning
}

// CompleteTripResult reports a finished trip. AlreadyCompleted is true
// when the call found the trip completed and changed nothing.
type CompleteTripResult struct {
	Trip             model.Trip
	AlreadyCompleted bool
}

// VehicleUpdate lists the editable vehicle fields. Nil fields stay
// untouched; a non-nil Plate re-plates the vehicle.
type VehicleUpdate struct {
	Plate        *string  `json:"plate,omitempty"`
	OperatorName *string  `json:"operator_name,omitempty"`
	Contact      *string  `json:"contact,omitempty"`
	FareRate     *float64 `json:"fare_rate,omitempty"`
	Route        *string  `json:"route,omitempty"`
}

// Overview aggregates the counts and fare figures the dashboard shows.
// FareStats covers today's completed trips.
type Overview struct {
	Vehicles       int              `json:"vehicles"`
	Waiting        int              `json:"waiting"`
	ActiveTrips    int              `json:"active_trips"`
	CompletedToday int              `json:"completed_today"`
	ArchivedTrips  int              `json:"archived_trips"`
	FaresToday     float64          `json:"fares_today"`
	FareStats      ledger.FareStats `json:"fare_stats"`
	Broadcast      string           `json:"broadcast"`
}
