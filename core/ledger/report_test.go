package ledger

import (
	"math"
	"strings"
	"testing"

	"github.com/todatrack/todatrack/core/model"
)

func TestReportAfterReset(t *testing.T) {
	sum := DaySummary{Archived: 1, TotalFares: 40, CounterReset: true}
	got := sum.Report()
	for _, want := range []string{
		"--- End of Day Report ---",
		"Total Completed Trips: 1",
		"Total Fares Earned: ₱40.00",
		"Trip counter has been reset to 1 for the new day.",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("report missing %q:\n%s", want, got)
		}
	}
}

func TestReportWithActiveTrips(t *testing.T) {
	sum := DaySummary{Archived: 2, TotalFares: 95.5, RemainingOpen: 1}
	got := sum.Report()
	if !strings.Contains(got, "Total Fares Earned: ₱95.50") {
		t.Fatalf("expected two decimal fare total:\n%s", got)
	}
	if !strings.Contains(got, "Active trips remain. Trip counter will not be reset to avoid ID conflicts.") {
		t.Fatalf("expected no-reset note:\n%s", got)
	}
}

func TestComputeFareStats(t *testing.T) {
	trips := []model.Trip{
		{TotalFare: 20},
		{TotalFare: 40},
		{TotalFare: 60},
		{TotalFare: 100},
	}
	s := ComputeFareStats(trips)
	if s.Count != 4 || s.Total != 220 {
		t.Fatalf("unexpected count/total %+v", s)
	}
	if math.Abs(s.Mean-55) > 1e-9 {
		t.Fatalf("expected mean 55, got %v", s.Mean)
	}
	if s.Min != 20 || s.Max != 100 {
		t.Fatalf("unexpected min/max %+v", s)
	}
	if s.Median < 40 || s.Median > 60 {
		t.Fatalf("median %v outside inner fares", s.Median)
	}
}

func TestComputeFareStatsEmpty(t *testing.T) {
	s := ComputeFareStats(nil)
	if s != (FareStats{}) {
		t.Fatalf("expected zero stats, got %+v", s)
	}
}
