// Package snapshot defines the persistent form of the coordinator state
// and the store contract for saving and loading it. A snapshot is flat
// and inspectable: vehicle records, queue plates, trip lists and the
// counter, with vehicle to trip links kept as plain ids.
package snapshot

import (
	"errors"
	"fmt"
	"time"

	"github.com/todatrack/todatrack/core/model"
)

// SchemaVersion is the current snapshot schema. Files written by this
// code carry it; files with a higher version are rejected on load.
const SchemaVersion = 1

// Snapshot is the full serializable state of a dispatch day.
type Snapshot struct {
	SchemaVersion int       `json:"schema_version"`
	SavedAt       time.Time `json:"saved_at"`

	Broadcast  string          `json:"broadcast,omitempty"`
	NextTripID int             `json:"next_trip_id"`
	Vehicles   []model.Vehicle `json:"vehicles"`
	Waiting    []string        `json:"waiting"`
	Trips      []model.Trip    `json:"trips"`
	Archive    []model.Trip    `json:"archive"`
}

// Validate checks the structural soundness of a decoded snapshot before
// it is handed to the coordinator: supported schema, well formed vehicle
// records, unique plates and a waiting list that only names registered
// vehicles. Trip level checks (id uniqueness, archive state) belong to
// the ledger restore.
func (s Snapshot) Validate() error {
	if s.SchemaVersion <= 0 || s.SchemaVersion > SchemaVersion {
		return fmt.Errorf("unsupported schema version %d", s.SchemaVersion)
	}
	if s.NextTripID < 1 {
		return fmt.Errorf("next trip id must be positive, got %d", s.NextTripID)
	}
	plates := make(map[string]struct{}, len(s.Vehicles))
	for _, v := range s.Vehicles {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("vehicle %q: %w", v.Plate, err)
		}
		if _, dup := plates[v.Plate]; dup {
			return fmt.Errorf("duplicate vehicle plate %q", v.Plate)
		}
		plates[v.Plate] = struct{}{}
	}
	seen := make(map[string]struct{}, len(s.Waiting))
	for _, plate := range s.Waiting {
		if _, ok := plates[plate]; !ok {
			return fmt.Errorf("waiting list names unknown vehicle %q", plate)
		}
		if _, dup := seen[plate]; dup {
			return fmt.Errorf("waiting list repeats vehicle %q", plate)
		}
		seen[plate] = struct{}{}
	}
	return nil
}

// DayLabel formats t as a store label. One label names one dispatch day.
func DayLabel(t time.Time) string {
	return t.Format("2006-01-02")
}

// ValidLabel reports whether label is a well formed calendar date.
func ValidLabel(label string) bool {
	_, err := time.Parse("2006-01-02", label)
	return err == nil
}

// ErrNotFound reports that no snapshot exists under the requested label.
var ErrNotFound = errors.New("snapshot not found")

// PersistenceError wraps a failed load, save or list against a Store.
// Callers treat any load failure as "start fresh", never as partial
// state.
type PersistenceError struct {
	Op    string // "load", "save" or "list"
	Label string
	Err   error
}

func (e *PersistenceError) Error() string {
	if e.Label == "" {
		return fmt.Sprintf("snapshot %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("snapshot %s %s: %v", e.Op, e.Label, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
