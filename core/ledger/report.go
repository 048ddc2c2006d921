package ledger

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/todatrack/todatrack/core/model"
)

// DaySummary is the outcome of a day close: what moved to the archive,
// what stayed open and whether the id counter could be reset.
type DaySummary struct {
	ClosedAt      time.Time `json:"closed_at"`
	Archived      int       `json:"archived"`
	RemainingOpen int       `json:"remaining_open"`
	TotalFares    float64   `json:"total_fares"`
	CounterReset  bool      `json:"counter_reset"`
	Stats         FareStats `json:"stats"`
}

// Report renders the dispatcher-facing end of day text.
func (s DaySummary) Report() string {
	note := "\nAll completed trips have been archived.\nActive trips remain. Trip counter will not be reset to avoid ID conflicts."
	if s.CounterReset {
		note = "\nAll completed trips have been archived.\nTrip counter has been reset to 1 for the new day."
	}
	return fmt.Sprintf("--- End of Day Report ---\n\nTotal Completed Trips: %d\nTotal Fares Earned: ₱%.2f\n%s",
		s.Archived, s.TotalFares, note)
}

// FareStats summarizes the fare distribution of a set of trips.
type FareStats struct {
	Count  int     `json:"count"`
	Total  float64 `json:"total"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// ComputeFareStats aggregates the total fares of the given trips. An
// empty input yields the zero value.
func ComputeFareStats(trips []model.Trip) FareStats {
	if len(trips) == 0 {
		return FareStats{}
	}
	fares := make([]float64, len(trips))
	total := 0.0
	for i, t := range trips {
		fares[i] = t.TotalFare
		total += t.TotalFare
	}
	sort.Float64s(fares)
	return FareStats{
		Count:  len(fares),
		Total:  total,
		Mean:   stat.Mean(fares, nil),
		Median: stat.Quantile(0.5, stat.Empirical, fares, nil),
		Min:    fares[0],
		Max:    fares[len(fares)-1],
	}
}
