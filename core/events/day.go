package events

import "time"

// DayClosed is published after an end of day archival run.
type DayClosed struct {
	Archived     int       `json:"archived"`
	TotalFares   float64   `json:"total_fares"`
	CounterReset bool      `json:"counter_reset"`
	At           time.Time `json:"at"`
}

func (DayClosed) Kind() string { return "day_closed" }

// BroadcastChanged is published when the association announcement is
// replaced. The feed publisher retains it so late terminals catch up.
type BroadcastChanged struct {
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

func (BroadcastChanged) Kind() string { return "broadcast" }
