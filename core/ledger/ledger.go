// Package ledger tracks trips through the day: today's live list, the
// long-term archive and the id counter whose reset rule guards against
// identifier reuse. Like the fleet collections it carries no lock, the
// coordinator serializes every access.
package ledger

import (
	"fmt"
	"time"

	"github.com/todatrack/todatrack/core/model"
)

// TripLedger owns trip identity and residency: an issued trip lives in
// today's list until a day close relocates it, completed, into the
// archive.
type TripLedger struct {
	today   []*model.Trip
	archive []model.Trip
	nextID  int
}

func NewTripLedger() *TripLedger {
	return &TripLedger{nextID: 1}
}

// Open issues the next identifier and appends a new active trip to
// today's list.
func (l *TripLedger) Open(plate string, passengers int, from, destination string, totalFare float64, departedAt time.Time) model.Trip {
	t := &model.Trip{
		ID:          l.nextID,
		Plate:       plate,
		Passengers:  passengers,
		From:        from,
		Destination: destination,
		TotalFare:   totalFare,
		Active:      true,
		DepartedAt:  departedAt,
	}
	l.nextID++
	l.today = append(l.today, t)
	return *t
}

// Find returns the live record of a trip still in today's list.
func (l *TripLedger) Find(id int) (*model.Trip, bool) {
	for _, t := range l.today {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// Today returns copies of today's list in creation order.
func (l *TripLedger) Today() []model.Trip {
	out := make([]model.Trip, len(l.today))
	for i, t := range l.today {
		out[i] = *t
	}
	return out
}

// Archive returns copies of the archived trips, oldest first.
func (l *TripLedger) Archive() []model.Trip {
	out := make([]model.Trip, len(l.archive))
	copy(out, l.archive)
	return out
}

// ActiveCount returns the number of trips still on the road today.
func (l *TripLedger) ActiveCount() int {
	n := 0
	for _, t := range l.today {
		if t.Active {
			n++
		}
	}
	return n
}

// NextID returns the identifier the next opened trip will receive.
func (l *TripLedger) NextID() int { return l.nextID }

// ArchivedCount returns the number of trips held in the archive.
func (l *TripLedger) ArchivedCount() int { return len(l.archive) }

// CloseDay relocates today's completed trips into the archive in their
// original order and resets the id counter to 1 when nothing stays
// active. An active trip anywhere in today's list blocks the reset so a
// future identifier can never collide with it.
func (l *TripLedger) CloseDay(at time.Time) DaySummary {
	var kept []*model.Trip
	var archived []model.Trip
	total := 0.0
	for _, t := range l.today {
		if t.Completed() {
			archived = append(archived, *t)
			l.archive = append(l.archive, *t)
			total += t.TotalFare
			continue
		}
		kept = append(kept, t)
	}
	l.today = kept

	reset := len(kept) == 0
	if reset {
		l.nextID = 1
	}
	return DaySummary{
		ClosedAt:      at,
		Archived:      len(archived),
		RemainingOpen: len(kept),
		TotalFares:    total,
		CounterReset:  reset,
		Stats:         ComputeFareStats(archived),
	}
}

// Restore replaces the ledger content from a snapshot. Today's
// identifiers must be unique and the archive strictly completed; the
// counter is clamped past every identifier in today's list so a
// restored ledger can never re-issue a live one. Archive identifiers do
// not clamp: a day close legally resets the counter below them.
func (l *TripLedger) Restore(today, archive []model.Trip, nextID int) error {
	seen := make(map[int]bool, len(today))
	maxID := 0
	restored := make([]*model.Trip, len(today))
	for i := range today {
		t := today[i]
		if t.ID <= 0 {
			return fmt.Errorf("trip id %d is not positive", t.ID)
		}
		if seen[t.ID] {
			return fmt.Errorf("duplicate trip id %d in today's list", t.ID)
		}
		seen[t.ID] = true
		if t.ID > maxID {
			maxID = t.ID
		}
		restored[i] = &t
	}
	for _, t := range archive {
		if t.Active {
			return fmt.Errorf("active trip %d in archive", t.ID)
		}
	}

	if nextID < 1 {
		nextID = 1
	}
	if maxID >= nextID {
		nextID = maxID + 1
	}
	l.today = restored
	l.archive = append([]model.Trip(nil), archive...)
	l.nextID = nextID
	return nil
}
