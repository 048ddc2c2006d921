package model

import "fmt"

// VehicleStatus tracks where a vehicle sits in the dispatch cycle. The
// three states are mutually exclusive with queue membership and trip
// linkage: Waiting means queued with no trip, OnTrip means unqueued with
// exactly one active trip, Unavailable means unqueued with no trip.
type VehicleStatus string

const (
	StatusUnavailable VehicleStatus = "UNAVAILABLE"
	StatusWaiting     VehicleStatus = "WAITING"
	StatusOnTrip      VehicleStatus = "ON_TRIP"
)

// ParseVehicleStatus converts a stored string back into a VehicleStatus.
func ParseVehicleStatus(s string) (VehicleStatus, error) {
	st := VehicleStatus(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown vehicle status %q", s)
	}
	return st, nil
}

func (s VehicleStatus) String() string { return string(s) }

// Valid reports whether s is one of the three known states.
func (s VehicleStatus) Valid() bool {
	switch s {
	case StatusUnavailable, StatusWaiting, StatusOnTrip:
		return true
	}
	return false
}

// CanTransitionTo reports whether the dispatch cycle allows moving from s
// to next. OnTrip only releases back to Unavailable; returning to the
// queue after a trip is a separate duty change by the operator.
func (s VehicleStatus) CanTransitionTo(next VehicleStatus) bool {
	switch s {
	case StatusUnavailable:
		return next == StatusWaiting || next == StatusOnTrip
	case StatusWaiting:
		return next == StatusUnavailable || next == StatusOnTrip
	case StatusOnTrip:
		return next == StatusUnavailable
	}
	return false
}
