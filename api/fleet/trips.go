package fleet

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/todatrack/todatrack/core/dispatch"
	"github.com/todatrack/todatrack/core/model"
)

// NewTripsHandler serves the trip lifecycle under /api/fleet/trips. GET
// lists today's trips, POST starts one, /archive reads the closed days
// and /{id}/complete finishes a trip.
func NewTripsHandler(c *dispatch.Coordinator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/fleet/trips"), "/")
		switch {
		case rest == "":
			switch r.Method {
			case http.MethodGet:
				writeJSON(w, c.TodayTrips())
			case http.MethodPost:
				startTrip(w, r, c)
			default:
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			}
		case rest == "archive":
			if r.Method != http.MethodGet {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			writeJSON(w, c.ArchivedTrips())
		default:
			parts := strings.Split(rest, "/")
			if len(parts) != 2 || parts[1] != "complete" {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodPost {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			id, err := strconv.Atoi(parts[0])
			if err != nil {
				http.Error(w, "bad trip id", http.StatusBadRequest)
				return
			}
			completeTrip(w, c, id)
		}
	})
}

func startTrip(w http.ResponseWriter, r *http.Request, c *dispatch.Coordinator) {
	var req struct {
		Plate            string  `json:"plate"`
		Passengers       int     `json:"passengers"`
		From             string  `json:"from"`
		Destination      string  `json:"destination"`
		FarePerPassenger float64 `json:"fare_per_passenger"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := c.StartTrip(req.Plate, dispatch.TripRequest{
		Passengers:       req.Passengers,
		From:             req.From,
		Destination:      req.Destination,
		FarePerPassenger: req.FarePerPassenger,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	out := struct {
		Trip    model.Trip `json:"trip"`
		Warning string     `json:"warning,omitempty"`
	}{Trip: res.Trip}
	if res.Warning != nil {
		out.Warning = res.Warning.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(out)
}

func completeTrip(w http.ResponseWriter, c *dispatch.Coordinator, id int) {
	res, err := c.CompleteTrip(id)
	if err != nil {
		writeError(w, err)
		return
	}
	out := struct {
		Trip             model.Trip `json:"trip"`
		AlreadyCompleted bool       `json:"already_completed,omitempty"`
	}{res.Trip, res.AlreadyCompleted}
	writeJSON(w, out)
}
