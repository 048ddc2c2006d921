package events

import "time"

// TripStarted is published when the coordinator opens a trip.
type TripStarted struct {
	TripID      int       `json:"trip_id"`
	Plate       string    `json:"plate"`
	Passengers  int       `json:"passengers"`
	From        string    `json:"from"`
	Destination string    `json:"destination"`
	TotalFare   float64   `json:"total_fare"`
	At          time.Time `json:"at"`
}

func (TripStarted) Kind() string { return "trip_started" }

// TripCompleted is published when a trip arrives.
type TripCompleted struct {
	TripID    int           `json:"trip_id"`
	Plate     string        `json:"plate"`
	TotalFare float64       `json:"total_fare"`
	Duration  time.Duration `json:"duration_ns"`
	At        time.Time     `json:"at"`
}

func (TripCompleted) Kind() string { return "trip_completed" }
