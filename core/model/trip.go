package model

import "time"

// Trip is a single passenger run from request to arrival. A completed
// trip never mutates again apart from relocation into the day archive.
type Trip struct {
	ID          int       `json:"id"`
	Plate       string    `json:"plate"` // owning vehicle, referenced by plate only
	Passengers  int       `json:"passengers"`
	From        string    `json:"from"`
	Destination string    `json:"destination"`
	TotalFare   float64   `json:"total_fare"` // PHP, fare per passenger times passenger count
	Active      bool      `json:"active"`
	DepartedAt  time.Time `json:"departed_at"`
	ArrivedAt   time.Time `json:"arrived_at,omitempty"` // zero until arrival
}

// Complete marks the trip arrived at the given time and reports whether
// the call changed anything. Completing an already completed trip is a
// no-op.
func (t *Trip) Complete(at time.Time) bool {
	if !t.Active {
		return false
	}
	t.Active = false
	t.ArrivedAt = at
	return true
}

// Completed reports whether the trip has arrived.
func (t Trip) Completed() bool { return !t.Active }

// Duration returns the ride time for completed trips, 0 while the trip
// is still on the road.
func (t Trip) Duration() time.Duration {
	if t.Active || t.ArrivedAt.IsZero() {
		return 0
	}
	return t.ArrivedAt.Sub(t.DepartedAt)
}
