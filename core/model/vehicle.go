package model

import (
	"fmt"
	"strings"
)

// Vehicle is one registered tricycle of the association, the unit the
// roster, the waiting queue and the trip ledger all refer to.
type Vehicle struct {
	Plate    string        `json:"plate"` // body/plate number, unique across the roster
	Operator Operator      `json:"operator"`
	Status   VehicleStatus `json:"status"`
	FareRate float64       `json:"fare_rate"`       // default fare per passenger in PHP
	Route    string        `json:"route,omitempty"` // default service route

	// CurrentTrip holds the id of the active trip, 0 while idle. Links
	// are kept by id, never by pointer, so snapshots restore them
	// explicitly.
	CurrentTrip int `json:"current_trip,omitempty"`
}

// Operator is the driver assigned to a vehicle. Availability mirrors the
// vehicle's duty state: true exactly while the vehicle waits in queue.
type Operator struct {
	Name      string `json:"name"`
	Contact   string `json:"contact,omitempty"`
	Available bool   `json:"available"`
}

// Validate checks that the vehicle record is sound enough to enter the
// roster. Plate and operator name are required, the fare rate cannot be
// negative (zero means no default and every trip request must carry its
// own rate).
func (v Vehicle) Validate() error {
	if strings.TrimSpace(v.Plate) == "" {
		return fmt.Errorf("plate is required")
	}
	if strings.TrimSpace(v.Operator.Name) == "" {
		return fmt.Errorf("operator name is required")
	}
	if v.FareRate < 0 {
		return fmt.Errorf("fare rate cannot be negative")
	}
	if v.Status != "" && !v.Status.Valid() {
		return fmt.Errorf("unknown vehicle status %q", v.Status)
	}
	return nil
}

// OnDuty reports whether the vehicle currently waits in the queue.
func (v Vehicle) OnDuty() bool { return v.Status == StatusWaiting }

// GoOnDuty moves the vehicle into the waiting state. The caller owns the
// matching queue insertion.
func (v *Vehicle) GoOnDuty() error {
	if !v.Status.CanTransitionTo(StatusWaiting) {
		return fmt.Errorf("vehicle %s cannot go on duty while %s", v.Plate, v.Status)
	}
	v.Status = StatusWaiting
	v.Operator.Available = true
	return nil
}

// GoOffDuty pulls a waiting vehicle off duty. A vehicle on a trip must
// finish it first.
func (v *Vehicle) GoOffDuty() error {
	if v.Status != StatusWaiting {
		return fmt.Errorf("vehicle %s cannot go off duty while %s", v.Plate, v.Status)
	}
	v.Status = StatusUnavailable
	v.Operator.Available = false
	return nil
}

// BeginTrip links the vehicle to trip id and marks it on the road. The
// one-active-trip rule is enforced here: a vehicle already carrying a
// trip link refuses a second one.
func (v *Vehicle) BeginTrip(id int) error {
	if v.CurrentTrip != 0 {
		return fmt.Errorf("vehicle %s already assigned trip %d", v.Plate, v.CurrentTrip)
	}
	if !v.Status.CanTransitionTo(StatusOnTrip) {
		return fmt.Errorf("vehicle %s cannot start a trip while %s", v.Plate, v.Status)
	}
	v.Status = StatusOnTrip
	v.Operator.Available = false
	v.CurrentTrip = id
	return nil
}

// FinishTrip clears the trip link and releases the vehicle to
// Unavailable. Whether it re-queues afterwards is the operator's call.
func (v *Vehicle) FinishTrip() error {
	if v.Status != StatusOnTrip {
		return fmt.Errorf("vehicle %s has no trip to finish", v.Plate)
	}
	v.Status = StatusUnavailable
	v.Operator.Available = false
	v.CurrentTrip = 0
	return nil
}
