package dispatch

import (
	"testing"
	"time"

	"github.com/todatrack/todatrack/core/model"
)

func TestStartTrip_FromQueue(t *testing.T) {
	c, sink, _ := newTestCoordinator()
	registerThree(t, c)
	_ = c.SetOnDuty("TRI-001")
	_ = c.SetOnDuty("TRI-002")

	res, err := c.StartTrip("TRI-001", TripRequest{Passengers: 2, From: "Terminal", Destination: "Public Market"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if res.Warning != nil {
		t.Fatalf("unexpected warning: %v", res.Warning)
	}
	trip := res.Trip
	if trip.ID != 1 || trip.Plate != "TRI-001" || !trip.Active {
		t.Fatalf("trip record wrong: %#v", trip)
	}
	if trip.TotalFare != 24 {
		t.Fatalf("expected fare 24 got %.2f", trip.TotalFare)
	}
	if !trip.DepartedAt.Equal(testStart) {
		t.Fatalf("departure time %v", trip.DepartedAt)
	}
	v, _ := c.Vehicle("TRI-001")
	if v.Status != model.StatusOnTrip || v.CurrentTrip != 1 {
		t.Fatalf("vehicle not linked: %#v", v)
	}
	if got := c.Waiting(); len(got) != 1 || got[0] != "TRI-002" {
		t.Fatalf("queue after dispatch: %v", got)
	}
	if len(sink.starts) != 1 || !sink.starts[0].FromQueue {
		t.Fatalf("sink starts: %#v", sink.starts)
	}
	if c.ledger.NextID() != 2 {
		t.Fatalf("counter should advance to 2, got %d", c.ledger.NextID())
	}
	assertAgreement(t, c)
}

func TestStartTrip_OffQueueWarns(t *testing.T) {
	c, sink, _ := newTestCoordinator()
	registerThree(t, c)

	res, err := c.StartTrip("TRI-003", TripRequest{Passengers: 1, From: "Terminal", Destination: "School"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if res.Warning == nil {
		t.Fatalf("expected consistency warning")
	}
	if res.Warning.Op != opStartTrip || res.Warning.Plate != "TRI-003" {
		t.Fatalf("warning fields: %#v", res.Warning)
	}
	if res.Trip.ID != 1 {
		t.Fatalf("trip should still open, got %#v", res.Trip)
	}
	v, _ := c.Vehicle("TRI-003")
	if v.Status != model.StatusOnTrip {
		t.Fatalf("vehicle not dispatched: %#v", v)
	}
	if len(sink.starts) != 1 || sink.starts[0].FromQueue {
		t.Fatalf("sink should mark off queue dispatch: %#v", sink.starts)
	}
	assertAgreement(t, c)
}

func TestStartTrip_FailureMutatesNothing(t *testing.T) {
	c, sink, journal := newTestCoordinator()
	registerThree(t, c)
	if err := c.RegisterVehicle(model.Vehicle{Plate: "TRI-004", Operator: model.Operator{Name: "Ana Reyes"}}); err != nil {
		t.Fatalf("register: %v", err)
	}
	_ = c.SetOnDuty("TRI-001")
	baseJournal := len(journal.recs)

	cases := []struct {
		name     string
		plate    string
		req      TripRequest
		notFound bool
	}{
		{name: "unknown plate", plate: "TRI-999", req: TripRequest{Passengers: 1, From: "A", Destination: "B"}, notFound: true},
		{name: "zero passengers", plate: "TRI-001", req: TripRequest{From: "A", Destination: "B"}},
		{name: "negative passengers", plate: "TRI-001", req: TripRequest{Passengers: -2, From: "A", Destination: "B"}},
		{name: "blank origin", plate: "TRI-001", req: TripRequest{Passengers: 1, From: "  ", Destination: "B"}},
		{name: "blank destination", plate: "TRI-001", req: TripRequest{Passengers: 1, From: "A", Destination: ""}},
		{name: "no fare rate", plate: "TRI-004", req: TripRequest{Passengers: 1, From: "A", Destination: "B"}},
		{name: "negative fare rate", plate: "TRI-001", req: TripRequest{Passengers: 1, From: "A", Destination: "B", FarePerPassenger: -5}},
	}
	for _, tc := range cases {
		before, _ := c.Vehicle(tc.plate)
		_, err := c.StartTrip(tc.plate, tc.req)
		if tc.notFound {
			if !IsNotFound(err) {
				t.Errorf("%s: expected not found, got %v", tc.name, err)
			}
		} else if !IsValidation(err) {
			t.Errorf("%s: expected validation error, got %v", tc.name, err)
		}
		after, _ := c.Vehicle(tc.plate)
		if before != after {
			t.Errorf("%s: vehicle mutated: %#v -> %#v", tc.name, before, after)
		}
	}
	if got := c.Waiting(); len(got) != 1 || got[0] != "TRI-001" {
		t.Fatalf("queue mutated: %v", got)
	}
	if len(c.TodayTrips()) != 0 || c.ledger.NextID() != 1 {
		t.Fatalf("ledger mutated: %d trips, next id %d", len(c.TodayTrips()), c.ledger.NextID())
	}
	if len(sink.starts) != 0 {
		t.Fatalf("sink should see nothing: %#v", sink.starts)
	}
	if len(journal.recs) != baseJournal {
		t.Fatalf("failed starts must not journal: %v", journal.ops())
	}
	assertAgreement(t, c)
}

func TestStartTrip_ExplicitFareOverride(t *testing.T) {
	c, _, _ := newTestCoordinator()
	registerThree(t, c)
	res, err := c.StartTrip("TRI-002", TripRequest{Passengers: 2, From: "Terminal", Destination: "Chapel", FarePerPassenger: 20})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if res.Trip.TotalFare != 40 {
		t.Fatalf("expected fare 40 got %.2f", res.Trip.TotalFare)
	}
}

func TestStartTrip_SecondTripRefused(t *testing.T) {
	c, _, _ := newTestCoordinator()
	registerThree(t, c)
	if _, err := c.StartTrip("TRI-001", TripRequest{Passengers: 1, From: "A", Destination: "B"}); err != nil {
		t.Fatalf("first start: %v", err)
	}
	_, err := c.StartTrip("TRI-001", TripRequest{Passengers: 1, From: "A", Destination: "B"})
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := len(c.TodayTrips()); got != 1 {
		t.Fatalf("expected 1 trip got %d", got)
	}
}

func TestCompleteTrip_ReleasesVehicle(t *testing.T) {
	c, sink, _ := newTestCoordinator()
	registerThree(t, c)
	_ = c.SetOnDuty("TRI-001")
	res, err := c.StartTrip("TRI-001", TripRequest{Passengers: 2, From: "Terminal", Destination: "Market"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	c.now = func() time.Time { return testStart.Add(25 * time.Minute) }

	out, err := c.CompleteTrip(res.Trip.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if out.AlreadyCompleted {
		t.Fatalf("first completion flagged as repeat")
	}
	if out.Trip.Active || !out.Trip.ArrivedAt.Equal(testStart.Add(25*time.Minute)) {
		t.Fatalf("trip not closed: %#v", out.Trip)
	}
	if out.Trip.Duration() != 25*time.Minute {
		t.Fatalf("duration %v", out.Trip.Duration())
	}
	v, _ := c.Vehicle("TRI-001")
	if v.Status != model.StatusUnavailable || v.CurrentTrip != 0 {
		t.Fatalf("vehicle not released: %#v", v)
	}
	if len(c.Waiting()) != 0 {
		t.Fatalf("completion must not re-queue: %v", c.Waiting())
	}
	if len(sink.completions) != 1 || sink.completions[0].Duration != 25*time.Minute {
		t.Fatalf("sink completions: %#v", sink.completions)
	}
	assertAgreement(t, c)
}

func TestCompleteTrip_Idempotent(t *testing.T) {
	c, sink, journal := newTestCoordinator()
	registerThree(t, c)
	res, _ := c.StartTrip("TRI-001", TripRequest{Passengers: 1, From: "A", Destination: "B"})
	if _, err := c.CompleteTrip(res.Trip.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	sinkBefore, journalBefore := len(sink.completions), len(journal.recs)

	out, err := c.CompleteTrip(res.Trip.ID)
	if err != nil {
		t.Fatalf("repeat complete: %v", err)
	}
	if !out.AlreadyCompleted {
		t.Fatalf("repeat not flagged")
	}
	if len(sink.completions) != sinkBefore || len(journal.recs) != journalBefore {
		t.Fatalf("repeat completion must record nothing")
	}
}

func TestCompleteTrip_UnknownTrip(t *testing.T) {
	c, _, _ := newTestCoordinator()
	if _, err := c.CompleteTrip(42); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCompleteTrip_AfterDeregistration(t *testing.T) {
	c, _, _ := newTestCoordinator()
	registerThree(t, c)
	res, _ := c.StartTrip("TRI-001", TripRequest{Passengers: 2, From: "Terminal", Destination: "Market"})
	if !c.DeregisterVehicle("TRI-001") {
		t.Fatalf("deregister failed")
	}
	out, err := c.CompleteTrip(res.Trip.ID)
	if err != nil {
		t.Fatalf("complete after deregistration: %v", err)
	}
	if out.Trip.Active {
		t.Fatalf("trip still open")
	}
	assertAgreement(t, c)
}

func TestCloseDay_ArchivesAndResets(t *testing.T) {
	c, sink, _ := newTestCoordinator()
	registerThree(t, c)
	r1, _ := c.StartTrip("TRI-001", TripRequest{Passengers: 2, From: "Terminal", Destination: "Market"})
	r2, _ := c.StartTrip("TRI-002", TripRequest{Passengers: 1, From: "Terminal", Destination: "School"})
	_, _ = c.CompleteTrip(r1.Trip.ID)
	_, _ = c.CompleteTrip(r2.Trip.ID)

	sum := c.CloseDay()
	if sum.Archived != 2 || !sum.CounterReset {
		t.Fatalf("summary: %+v", sum)
	}
	if sum.TotalFares != 39 {
		t.Fatalf("expected fares 39 got %.2f", sum.TotalFares)
	}
	if len(c.TodayTrips()) != 0 {
		t.Fatalf("day log should be empty")
	}
	arch := c.ArchivedTrips()
	if len(arch) != 2 || arch[0].ID != 1 || arch[1].ID != 2 {
		t.Fatalf("archive order: %#v", arch)
	}
	if c.ledger.NextID() != 1 {
		t.Fatalf("counter should reset to 1, got %d", c.ledger.NextID())
	}
	if len(sink.dayCloses) != 1 || sink.dayCloses[0].Archived != 2 || !sink.dayCloses[0].CounterReset {
		t.Fatalf("sink day closes: %#v", sink.dayCloses)
	}

	// The next morning starts numbering from 1 again.
	res, err := c.StartTrip("TRI-003", TripRequest{Passengers: 1, From: "Terminal", Destination: "Chapel"})
	if err != nil {
		t.Fatalf("start after close: %v", err)
	}
	if res.Trip.ID != 1 {
		t.Fatalf("expected trip id 1 got %d", res.Trip.ID)
	}
	assertAgreement(t, c)
}

func TestCloseDay_ActiveTripsHoldCounter(t *testing.T) {
	c, _, _ := newTestCoordinator()
	registerThree(t, c)
	r1, _ := c.StartTrip("TRI-001", TripRequest{Passengers: 2, From: "Terminal", Destination: "Market"})
	r2, _ := c.StartTrip("TRI-002", TripRequest{Passengers: 3, From: "Terminal", Destination: "School"})
	_, _ = c.CompleteTrip(r1.Trip.ID)

	sum := c.CloseDay()
	if sum.Archived != 1 || sum.CounterReset {
		t.Fatalf("summary: %+v", sum)
	}
	if sum.RemainingOpen != 1 {
		t.Fatalf("expected 1 open trip, got %d", sum.RemainingOpen)
	}
	if c.ledger.NextID() != 3 {
		t.Fatalf("counter must hold at 3, got %d", c.ledger.NextID())
	}
	today := c.TodayTrips()
	if len(today) != 1 || today[0].ID != r2.Trip.ID {
		t.Fatalf("open trip lost: %#v", today)
	}

	// The straggler still completes under its old id.
	if _, err := c.CompleteTrip(r2.Trip.ID); err != nil {
		t.Fatalf("complete straggler: %v", err)
	}
	assertAgreement(t, c)
}

func TestCloseDay_EmptyDay(t *testing.T) {
	c, _, _ := newTestCoordinator()
	sum := c.CloseDay()
	if sum.Archived != 0 || sum.TotalFares != 0 || !sum.CounterReset {
		t.Fatalf("summary: %+v", sum)
	}
}

func TestAgreementHeldThroughout(t *testing.T) {
	c, _, _ := newTestCoordinator()
	registerThree(t, c)
	step := func(name string, f func() error) {
		t.Helper()
		if err := f(); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		assertAgreement(t, c)
	}

	step("on duty 1", func() error { return c.SetOnDuty("TRI-001") })
	step("on duty 2", func() error { return c.SetOnDuty("TRI-002") })
	step("on duty 3", func() error { return c.SetOnDuty("TRI-003") })
	var tripID int
	step("start", func() error {
		res, err := c.StartTrip("TRI-001", TripRequest{Passengers: 2, From: "Terminal", Destination: "Market"})
		tripID = res.Trip.ID
		return err
	})
	step("off duty 3", func() error { return c.SetOffDuty("TRI-003") })
	step("complete", func() error {
		_, err := c.CompleteTrip(tripID)
		return err
	})
	step("re-queue 1", func() error { return c.SetOnDuty("TRI-001") })
	step("close day", func() error { c.CloseDay(); return nil })
	step("deregister 2", func() error { c.DeregisterVehicle("TRI-002"); return nil })
	step("broadcast", func() error { c.SetBroadcast("Terminal cleanup after lunch"); return nil })
}
