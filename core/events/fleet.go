package events

import "time"

// Event is implemented by every payload published on the fleet topic.
type Event interface {
	// Kind returns the stable name used to route the event on the feed.
	Kind() string
}

// VehicleRegistered is published when a vehicle joins the roster.
type VehicleRegistered struct {
	Plate    string    `json:"plate"`
	Operator string    `json:"operator"`
	Route    string    `json:"route,omitempty"`
	At       time.Time `json:"at"`
}

func (VehicleRegistered) Kind() string { return "vehicle_registered" }

// VehicleDeregistered is published when a vehicle leaves the roster.
type VehicleDeregistered struct {
	Plate string    `json:"plate"`
	At    time.Time `json:"at"`
}

func (VehicleDeregistered) Kind() string { return "vehicle_deregistered" }

// VehicleUpdated is published when a vehicle record is edited. Plate is
// the current plate, OldPlate is set only by a re-plate.
type VehicleUpdated struct {
	Plate    string    `json:"plate"`
	OldPlate string    `json:"old_plate,omitempty"`
	At       time.Time `json:"at"`
}

func (VehicleUpdated) Kind() string { return "vehicle_updated" }

// DutyChanged is published when a vehicle enters or leaves the waiting
// queue.
type DutyChanged struct {
	Plate      string    `json:"plate"`
	OnDuty     bool      `json:"on_duty"`
	QueueDepth int       `json:"queue_depth"`
	At         time.Time `json:"at"`
}

func (DutyChanged) Kind() string { return "duty_changed" }
