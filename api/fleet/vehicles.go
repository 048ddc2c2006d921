// Package fleet exposes the coordinator's read and mutation surface
// over HTTP for stand terminals.
package fleet

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/todatrack/todatrack/core/dispatch"
	"github.com/todatrack/todatrack/core/model"
)

// writeError maps coordinator failures onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case dispatch.IsNotFound(err):
		http.Error(w, err.Error(), http.StatusNotFound)
	case dispatch.IsValidation(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// NewVehiclesHandler serves the roster under /api/fleet/vehicles. GET
// lists, POST registers; per plate subpaths read, patch, deregister and
// toggle duty.
func NewVehiclesHandler(c *dispatch.Coordinator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/fleet/vehicles"), "/")
		if rest == "" {
			switch r.Method {
			case http.MethodGet:
				writeJSON(w, c.Vehicles())
			case http.MethodPost:
				var v model.Vehicle
				if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
					http.Error(w, err.Error(), http.StatusBadRequest)
					return
				}
				if err := c.RegisterVehicle(v); err != nil {
					writeError(w, err)
					return
				}
				out, _ := c.Vehicle(strings.TrimSpace(v.Plate))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusCreated)
				_ = json.NewEncoder(w).Encode(out)
			default:
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			}
			return
		}

		parts := strings.Split(rest, "/")
		plate := parts[0]
		if len(parts) == 2 && parts[1] == "duty" {
			if r.Method != http.MethodPost {
				http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
				return
			}
			var req struct {
				OnDuty bool `json:"on_duty"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			var err error
			if req.OnDuty {
				err = c.SetOnDuty(plate)
			} else {
				err = c.SetOffDuty(plate)
			}
			if err != nil {
				writeError(w, err)
				return
			}
			v, _ := c.Vehicle(plate)
			writeJSON(w, v)
			return
		}
		if len(parts) != 1 {
			http.NotFound(w, r)
			return
		}

		switch r.Method {
		case http.MethodGet:
			v, ok := c.Vehicle(plate)
			if !ok {
				http.Error(w, "vehicle "+plate+" not found", http.StatusNotFound)
				return
			}
			writeJSON(w, v)
		case http.MethodPatch:
			var upd dispatch.VehicleUpdate
			if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			v, err := c.UpdateVehicle(plate, upd)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, v)
		case http.MethodDelete:
			if !c.DeregisterVehicle(plate) {
				http.Error(w, "vehicle "+plate+" not found", http.StatusNotFound)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
}
