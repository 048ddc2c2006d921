package scenarios

import (
	"fmt"
	"testing"

	"github.com/todatrack/todatrack/core/dispatch"
	"github.com/todatrack/todatrack/infra/logger"
)

// RunScenario replays the scripted day on a fresh coordinator and fails
// the test when the end state differs from the scenario's expectations.
func RunScenario(t *testing.T, sc *Scenario) {
	c := dispatch.NewCoordinator(nil, nil, nil, logger.NopLogger{})
	for _, v := range sc.Vehicles {
		if err := c.RegisterVehicle(v.ToModel()); err != nil {
			t.Fatalf("register %s: %v", v.Plate, err)
		}
	}

	warnings := 0
	half := len(sc.Steps) / 2
	for i, step := range sc.Steps {
		if sc.RestoreMidway && i == half {
			restored, err := dispatch.FromSnapshot(c.Snapshot(), nil, nil, nil, logger.NopLogger{})
			if err != nil {
				t.Fatalf("restore before step %d: %v", i, err)
			}
			c = restored
		}
		if err := applyStep(c, step, &warnings); err != nil {
			t.Fatalf("step %d %s: %v", i, step.Action, err)
		}
	}

	ov := c.Overview()
	snap := c.Snapshot()
	if ov.CompletedToday != sc.Expected.CompletedToday {
		t.Errorf("scenario %s expected %d completed today, got %d", sc.Name, sc.Expected.CompletedToday, ov.CompletedToday)
	}
	if ov.ArchivedTrips != sc.Expected.ArchivedTrips {
		t.Errorf("scenario %s expected %d archived, got %d", sc.Name, sc.Expected.ArchivedTrips, ov.ArchivedTrips)
	}
	if ov.FaresToday != sc.Expected.FaresToday {
		t.Errorf("scenario %s expected fares %.2f, got %.2f", sc.Name, sc.Expected.FaresToday, ov.FaresToday)
	}
	if warnings != sc.Expected.Warnings {
		t.Errorf("scenario %s expected %d warnings, got %d", sc.Name, sc.Expected.Warnings, warnings)
	}
	if sc.Expected.NextTripID != 0 && snap.NextTripID != sc.Expected.NextTripID {
		t.Errorf("scenario %s expected next trip id %d, got %d", sc.Name, sc.Expected.NextTripID, snap.NextTripID)
	}
	if sc.Expected.Broadcast != "" && ov.Broadcast != sc.Expected.Broadcast {
		t.Errorf("scenario %s expected broadcast %q, got %q", sc.Name, sc.Expected.Broadcast, ov.Broadcast)
	}
	waiting := c.Waiting()
	if len(waiting) != len(sc.Expected.Waiting) {
		t.Errorf("scenario %s expected queue %v, got %v", sc.Name, sc.Expected.Waiting, waiting)
	} else {
		for i, p := range sc.Expected.Waiting {
			if waiting[i] != p {
				t.Errorf("scenario %s expected queue %v, got %v", sc.Name, sc.Expected.Waiting, waiting)
				break
			}
		}
	}
}

func applyStep(c *dispatch.Coordinator, step StepDef, warnings *int) error {
	switch step.Action {
	case "on_duty":
		return c.SetOnDuty(step.Plate)
	case "off_duty":
		return c.SetOffDuty(step.Plate)
	case "start_trip":
		res, err := c.StartTrip(step.Plate, dispatch.TripRequest{
			Passengers:       step.Passengers,
			From:             step.From,
			Destination:      step.Destination,
			FarePerPassenger: step.FarePerPassenger,
		})
		if err != nil {
			return err
		}
		if res.Warning != nil {
			*warnings++
		}
		return nil
	case "complete_trip":
		_, err := c.CompleteTrip(step.Trip)
		return err
	case "close_day":
		c.CloseDay()
		return nil
	case "deregister":
		c.DeregisterVehicle(step.Plate)
		return nil
	case "broadcast":
		c.SetBroadcast(step.Message)
		return nil
	default:
		return fmt.Errorf("unknown action %q", step.Action)
	}
}
