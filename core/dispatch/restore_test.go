package dispatch

import (
	"strings"
	"testing"
	"time"

	"github.com/todatrack/todatrack/core/model"
	"github.com/todatrack/todatrack/core/snapshot"
	"github.com/todatrack/todatrack/infra/logger"
)

func restorableSnapshot() snapshot.Snapshot {
	return snapshot.Snapshot{
		SchemaVersion: snapshot.SchemaVersion,
		SavedAt:       testStart,
		Broadcast:     "Meeting at the terminal, 5 PM",
		NextTripID:    3,
		Vehicles: []model.Vehicle{
			{Plate: "TRI-001", Operator: model.Operator{Name: "Juan dela Cruz", Available: true}, Status: model.StatusWaiting, FareRate: 12},
			{Plate: "TRI-002", Operator: model.Operator{Name: "Maria Santos"}, Status: model.StatusOnTrip, FareRate: 15, CurrentTrip: 2},
			{Plate: "TRI-003", Operator: model.Operator{Name: "Pedro Reyes"}, Status: model.StatusUnavailable, FareRate: 10},
		},
		Waiting: []string{"TRI-001"},
		Trips: []model.Trip{
			{ID: 1, Plate: "TRI-003", Passengers: 1, From: "Terminal", Destination: "School", TotalFare: 10, DepartedAt: testStart, ArrivedAt: testStart.Add(10 * time.Minute)},
			{ID: 2, Plate: "TRI-002", Passengers: 2, From: "Terminal", Destination: "Market", TotalFare: 30, Active: true, DepartedAt: testStart.Add(5 * time.Minute)},
		},
		Archive: []model.Trip{
			{ID: 1, Plate: "TRI-001", Passengers: 3, From: "Terminal", Destination: "Chapel", TotalFare: 36, DepartedAt: testStart.Add(-24 * time.Hour), ArrivedAt: testStart.Add(-23 * time.Hour)},
		},
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	c, _, _ := newTestCoordinator()
	registerThree(t, c)
	_ = c.SetOnDuty("TRI-001")
	_ = c.SetOnDuty("TRI-002")
	r1, _ := c.StartTrip("TRI-001", TripRequest{Passengers: 2, From: "Terminal", Destination: "Market"})
	_, _ = c.CompleteTrip(r1.Trip.ID)
	_, err := c.StartTrip("TRI-002", TripRequest{Passengers: 1, From: "Terminal", Destination: "School"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	c.SetBroadcast("Fiesta on Sunday")

	snap := c.Snapshot()
	restored, err := FromSnapshot(snap, nil, nil, nil, logger.NopLogger{})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}

	if got, want := restored.Broadcast(), "Fiesta on Sunday"; got != want {
		t.Errorf("broadcast %q, want %q", got, want)
	}
	if got, want := len(restored.Vehicles()), 3; got != want {
		t.Errorf("vehicles %d, want %d", got, want)
	}
	if got := restored.Waiting(); len(got) != 0 {
		t.Errorf("waiting %v, want empty", got)
	}
	if got, want := restored.ledger.NextID(), c.ledger.NextID(); got != want {
		t.Errorf("next id %d, want %d", got, want)
	}
	today := restored.TodayTrips()
	if len(today) != 2 {
		t.Fatalf("today %d trips, want 2", len(today))
	}
	v, _ := restored.Vehicle("TRI-002")
	if v.Status != model.StatusOnTrip || v.CurrentTrip != 2 {
		t.Errorf("trip link lost: %#v", v)
	}

	// The restored coordinator keeps operating where the old one stopped.
	restored.now = func() time.Time { return testStart.Add(time.Hour) }
	if _, err := restored.CompleteTrip(2); err != nil {
		t.Fatalf("complete after restore: %v", err)
	}
	assertAgreement(t, restored)
}

func TestSnapshotRoundTripAfterDayClose(t *testing.T) {
	c, _, _ := newTestCoordinator()
	registerThree(t, c)
	r1, _ := c.StartTrip("TRI-001", TripRequest{Passengers: 2, From: "Terminal", Destination: "Market"})
	_, _ = c.CompleteTrip(r1.Trip.ID)
	c.CloseDay()

	restored, err := FromSnapshot(c.Snapshot(), nil, nil, nil, logger.NopLogger{})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	// The reset survives the round trip even though the archive still
	// holds trip 1.
	if got := restored.ledger.NextID(); got != 1 {
		t.Fatalf("next id %d, want 1", got)
	}
	if got := restored.ledger.ArchivedCount(); got != 1 {
		t.Fatalf("archive %d, want 1", got)
	}
	res, err := restored.StartTrip("TRI-002", TripRequest{Passengers: 1, From: "Terminal", Destination: "School"})
	if err != nil {
		t.Fatalf("start after restore: %v", err)
	}
	if res.Trip.ID != 1 {
		t.Fatalf("trip id %d, want 1", res.Trip.ID)
	}
}

func TestFromSnapshot_DefaultBroadcast(t *testing.T) {
	snap := restorableSnapshot()
	snap.Broadcast = ""
	c, err := FromSnapshot(snap, nil, nil, nil, logger.NopLogger{})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if got := c.Broadcast(); got != DefaultBroadcast {
		t.Fatalf("broadcast %q, want default", got)
	}
}

func TestFromSnapshot_ClampsCounterPastLiveTrips(t *testing.T) {
	snap := restorableSnapshot()
	snap.NextTripID = 1 // stale save, trips 1 and 2 already issued
	c, err := FromSnapshot(snap, nil, nil, nil, logger.NopLogger{})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if got := c.ledger.NextID(); got != 3 {
		t.Fatalf("next id %d, want 3", got)
	}
}

func TestFromSnapshot_AllowsOrphanOpenTrip(t *testing.T) {
	// A vehicle deregistered mid-trip leaves its open trip behind; the
	// snapshot stays loadable and the trip can still be completed.
	snap := restorableSnapshot()
	snap.Vehicles = snap.Vehicles[:1]
	snap.Waiting = []string{"TRI-001"}
	c, err := FromSnapshot(snap, nil, nil, nil, logger.NopLogger{})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if _, err := c.CompleteTrip(2); err != nil {
		t.Fatalf("complete orphan trip: %v", err)
	}
}

func TestFromSnapshot_RefusesMismatchedState(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*snapshot.Snapshot)
		wantMsg string
	}{
		{
			name: "queued vehicle not waiting",
			mutate: func(s *snapshot.Snapshot) {
				s.Waiting = []string{"TRI-003"}
				s.Vehicles[0].Status = model.StatusUnavailable
				s.Vehicles[0].Operator.Available = false
			},
			wantMsg: "has status",
		},
		{
			name: "waiting vehicle missing from queue",
			mutate: func(s *snapshot.Snapshot) {
				s.Waiting = nil
			},
			wantMsg: "is not queued",
		},
		{
			name: "on trip without link",
			mutate: func(s *snapshot.Snapshot) {
				s.Vehicles[1].CurrentTrip = 0
			},
			wantMsg: "no trip link",
		},
		{
			name: "link while waiting",
			mutate: func(s *snapshot.Snapshot) {
				s.Vehicles[0].CurrentTrip = 2
				s.Vehicles[1].Status = model.StatusUnavailable
				s.Vehicles[1].CurrentTrip = 0
			},
			wantMsg: "links trip",
		},
		{
			name: "link to missing trip",
			mutate: func(s *snapshot.Snapshot) {
				s.Vehicles[1].CurrentTrip = 9
			},
			wantMsg: "not open",
		},
		{
			name: "link to completed trip",
			mutate: func(s *snapshot.Snapshot) {
				s.Trips[1].Active = false
				s.Trips[1].ArrivedAt = testStart.Add(time.Hour)
			},
			wantMsg: "not open",
		},
		{
			name: "trip plate mismatch",
			mutate: func(s *snapshot.Snapshot) {
				s.Trips[1].Plate = "TRI-003"
			},
			wantMsg: "belongs to",
		},
		{
			name: "open trip not linked back",
			mutate: func(s *snapshot.Snapshot) {
				s.Trips = append(s.Trips, model.Trip{ID: 5, Plate: "TRI-003", Passengers: 1, From: "A", Destination: "B", TotalFare: 10, Active: true, DepartedAt: testStart})
				s.NextTripID = 6
			},
			wantMsg: "not linked",
		},
	}
	for _, tc := range cases {
		snap := restorableSnapshot()
		tc.mutate(&snap)
		_, err := FromSnapshot(snap, nil, nil, nil, logger.NopLogger{})
		if err == nil {
			t.Errorf("%s: expected refusal", tc.name)
			continue
		}
		if !strings.Contains(err.Error(), tc.wantMsg) {
			t.Errorf("%s: error %q does not mention %q", tc.name, err, tc.wantMsg)
		}
	}
}

func TestFromSnapshot_RejectsInvalidSnapshot(t *testing.T) {
	snap := restorableSnapshot()
	snap.SchemaVersion = 99
	if _, err := FromSnapshot(snap, nil, nil, nil, logger.NopLogger{}); err == nil {
		t.Fatal("expected schema rejection")
	}
	snap = restorableSnapshot()
	snap.Trips = append(snap.Trips, snap.Trips[0])
	if _, err := FromSnapshot(snap, nil, nil, nil, logger.NopLogger{}); err == nil {
		t.Fatal("expected duplicate trip id rejection")
	}
}
