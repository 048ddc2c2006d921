// Package fleet holds the in-memory collections the dispatch coordinator
// works on: the roster of registered vehicles and the FIFO waiting
// queue. Neither carries a lock of its own, the coordinator serializes
// every access.
package fleet

import (
	"fmt"

	"github.com/todatrack/todatrack/core/model"
)

// Roster is the master collection of registered vehicles, keyed by plate
// with registration order preserved for listings.
type Roster struct {
	byPlate map[string]*model.Vehicle
	order   []string
}

func NewRoster() *Roster {
	return &Roster{byPlate: make(map[string]*model.Vehicle)}
}

// Add registers a vehicle. Plates are unique: adding a plate that is
// already registered fails.
func (r *Roster) Add(v model.Vehicle) error {
	if _, ok := r.byPlate[v.Plate]; ok {
		return fmt.Errorf("plate %s already registered", v.Plate)
	}
	r.byPlate[v.Plate] = &v
	r.order = append(r.order, v.Plate)
	return nil
}

// Remove deregisters a plate and reports whether it was present.
func (r *Roster) Remove(plate string) bool {
	if _, ok := r.byPlate[plate]; !ok {
		return false
	}
	delete(r.byPlate, plate)
	for i, p := range r.order {
		if p == plate {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns the live vehicle record for in-place mutation by the
// coordinator.
func (r *Roster) Get(plate string) (*model.Vehicle, bool) {
	v, ok := r.byPlate[plate]
	return v, ok
}

// Has reports whether a plate is registered.
func (r *Roster) Has(plate string) bool {
	_, ok := r.byPlate[plate]
	return ok
}

// Rekey moves a vehicle to a new plate, keeping its registration slot.
func (r *Roster) Rekey(oldPlate, newPlate string) error {
	v, ok := r.byPlate[oldPlate]
	if !ok {
		return fmt.Errorf("plate %s not registered", oldPlate)
	}
	if _, taken := r.byPlate[newPlate]; taken {
		return fmt.Errorf("plate %s already registered", newPlate)
	}
	delete(r.byPlate, oldPlate)
	v.Plate = newPlate
	r.byPlate[newPlate] = v
	for i, p := range r.order {
		if p == oldPlate {
			r.order[i] = newPlate
			break
		}
	}
	return nil
}

func (r *Roster) Len() int { return len(r.byPlate) }

// Vehicles returns copies of every record in registration order.
func (r *Roster) Vehicles() []model.Vehicle {
	out := make([]model.Vehicle, 0, len(r.order))
	for _, p := range r.order {
		if v, ok := r.byPlate[p]; ok {
			out = append(out, *v)
		}
	}
	return out
}
