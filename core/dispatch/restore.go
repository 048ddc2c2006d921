package dispatch

import (
	"fmt"

	"github.com/todatrack/todatrack/core/audit"
	"github.com/todatrack/todatrack/core/events"
	"github.com/todatrack/todatrack/core/logger"
	"github.com/todatrack/todatrack/core/metrics"
	"github.com/todatrack/todatrack/core/model"
	"github.com/todatrack/todatrack/core/snapshot"
	"github.com/todatrack/todatrack/internal/pubsub"
)

// Snapshot captures the complete coordinator state for persistence.
func (c *Coordinator) Snapshot() snapshot.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return snapshot.Snapshot{
		SchemaVersion: snapshot.SchemaVersion,
		SavedAt:       c.now(),
		Broadcast:     c.broadcast,
		NextTripID:    c.ledger.NextID(),
		Vehicles:      c.roster.Vehicles(),
		Waiting:       c.queue.Plates(),
		Trips:         c.ledger.Today(),
		Archive:       c.ledger.Archive(),
	}
}

// FromSnapshot rebuilds a coordinator from a saved snapshot. The data is
// validated and the restored roster, queue and ledger are cross-checked;
// a snapshot in which they disagree is refused rather than repaired.
func FromSnapshot(snap snapshot.Snapshot, sink metrics.MetricsSink, store audit.Store, bus *pubsub.Topic[events.Event], log logger.Logger) (*Coordinator, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}

	c := NewCoordinator(sink, store, bus, log)
	for _, v := range snap.Vehicles {
		// Availability mirrors the duty state.
		v.Operator.Available = v.Status == model.StatusWaiting
		if err := c.roster.Add(v); err != nil {
			return nil, fmt.Errorf("restore vehicle %s: %w", v.Plate, err)
		}
	}
	for _, plate := range snap.Waiting {
		c.queue.Enqueue(plate)
	}
	if err := c.ledger.Restore(snap.Trips, snap.Archive, snap.NextTripID); err != nil {
		return nil, fmt.Errorf("restore ledger: %w", err)
	}
	if snap.Broadcast != "" {
		c.broadcast = snap.Broadcast
	}
	if err := c.verifyAgreement(); err != nil {
		return nil, err
	}

	queueDepth.Set(float64(c.queue.Len()))
	c.recordFleetState()
	log.Infof("state restored: %d vehicles, %d waiting, %d open trips, %d archived",
		c.roster.Len(), c.queue.Len(), c.ledger.ActiveCount(), c.ledger.ArchivedCount())
	return c, nil
}

// verifyAgreement cross-checks roster, queue and ledger: queued vehicles
// exist and are waiting, waiting vehicles are queued, trip links point at
// open trips for the same plate, and open trips are linked back by their
// vehicle. Runs without the lock; callers must not have published the
// coordinator yet.
func (c *Coordinator) verifyAgreement() error {
	for _, plate := range c.queue.Plates() {
		v, ok := c.roster.Get(plate)
		if !ok {
			return fmt.Errorf("state mismatch: queued vehicle %s is not registered", plate)
		}
		if v.Status != model.StatusWaiting {
			return fmt.Errorf("state mismatch: queued vehicle %s has status %s", plate, v.Status)
		}
	}

	open := make(map[int]model.Trip)
	for _, t := range c.ledger.Today() {
		if t.Active {
			open[t.ID] = t
		}
	}
	for _, v := range c.roster.Vehicles() {
		switch {
		case v.Status == model.StatusWaiting && !c.queue.Contains(v.Plate):
			return fmt.Errorf("state mismatch: waiting vehicle %s is not queued", v.Plate)
		case v.Status == model.StatusOnTrip && v.CurrentTrip == 0:
			return fmt.Errorf("state mismatch: vehicle %s is on a trip with no trip link", v.Plate)
		case v.Status != model.StatusOnTrip && v.CurrentTrip != 0:
			return fmt.Errorf("state mismatch: vehicle %s links trip %d while %s", v.Plate, v.CurrentTrip, v.Status)
		}
		if v.CurrentTrip == 0 {
			continue
		}
		t, ok := open[v.CurrentTrip]
		if !ok {
			return fmt.Errorf("state mismatch: vehicle %s links trip %d which is not open", v.Plate, v.CurrentTrip)
		}
		if t.Plate != v.Plate {
			return fmt.Errorf("state mismatch: trip %d belongs to %s, not %s", t.ID, t.Plate, v.Plate)
		}
	}
	for _, t := range c.ledger.Today() {
		if !t.Active {
			continue
		}
		// A deregistered vehicle may leave an open trip behind; only a
		// registered vehicle must link its trip back.
		if v, ok := c.roster.Get(t.Plate); ok && v.CurrentTrip != t.ID {
			return fmt.Errorf("state mismatch: open trip %d is not linked by vehicle %s", t.ID, t.Plate)
		}
	}
	return nil
}
