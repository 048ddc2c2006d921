package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/todatrack/todatrack/core/model"
)

// WriteJSON writes the trip archive to w in JSON format.
func WriteJSON(w io.Writer, trips []model.Trip) error {
	enc := json.NewEncoder(w)
	return enc.Encode(trips)
}

// WriteCSV writes the trip archive to w in CSV format, one row per trip.
func WriteCSV(w io.Writer, trips []model.Trip) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"trip_id", "plate", "passengers", "from", "destination", "total_fare", "departed_at", "arrived_at"}); err != nil {
		return err
	}
	for _, t := range trips {
		rec := []string{
			strconv.Itoa(t.ID),
			t.Plate,
			strconv.Itoa(t.Passengers),
			t.From,
			t.Destination,
			strconv.FormatFloat(t.TotalFare, 'f', 2, 64),
			t.DepartedAt.Format(time.RFC3339),
			t.ArrivedAt.Format(time.RFC3339),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
