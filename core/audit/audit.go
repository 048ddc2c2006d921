// Package audit defines the operation journal: every roster, queue and
// trip mutation leaves one queryable record.
package audit

import (
	"context"
	"time"
)

// Record captures one coordinator operation and its outcome.
type Record struct {
	ID      string    `json:"id"` // assigned by the coordinator, uuid
	Time    time.Time `json:"time"`
	Op      string    `json:"op"`
	Plate   string    `json:"plate,omitempty"`
	TripID  int       `json:"trip_id,omitempty"`
	Detail  string    `json:"detail,omitempty"`
	Warning string    `json:"warning,omitempty"` // consistency warnings surface here
}

// Query defines filters for retrieving records. Zero fields match
// everything.
type Query struct {
	Start time.Time
	End   time.Time
	Op    string
	Plate string
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// NopStore discards every record. It stands in when journaling is
// disabled.
type NopStore struct{}

func (NopStore) Append(context.Context, Record) error           { return nil }
func (NopStore) Query(context.Context, Query) ([]Record, error) { return nil, nil }
func (NopStore) Close() error                                   { return nil }
