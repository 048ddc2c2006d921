// Package scenarios runs YAML scripted stand days against the dispatch
// coordinator. Each scenario registers a fleet, replays a list of
// operations and checks the resulting state, so whole operating days can
// be described as data.
package scenarios

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/todatrack/todatrack/core/model"
)

type VehicleDef struct {
	Plate    string  `yaml:"plate"`
	Operator string  `yaml:"operator"`
	Contact  string  `yaml:"contact,omitempty"`
	FareRate float64 `yaml:"fare_rate"`
}

func (v VehicleDef) ToModel() model.Vehicle {
	return model.Vehicle{
		Plate:    v.Plate,
		Operator: model.Operator{Name: v.Operator, Contact: v.Contact},
		FareRate: v.FareRate,
	}
}

// StepDef is one scripted operation. Action selects the coordinator
// call; the remaining fields feed its arguments.
type StepDef struct {
	Action           string  `yaml:"action"`
	Plate            string  `yaml:"plate,omitempty"`
	Trip             int     `yaml:"trip,omitempty"`
	Passengers       int     `yaml:"passengers,omitempty"`
	From             string  `yaml:"from,omitempty"`
	Destination      string  `yaml:"destination,omitempty"`
	FarePerPassenger float64 `yaml:"fare_per_passenger,omitempty"`
	Message          string  `yaml:"message,omitempty"`
}

// Expected describes the end state of the stand after the last step.
type Expected struct {
	CompletedToday int      `yaml:"completed_today"`
	ArchivedTrips  int      `yaml:"archived_trips"`
	FaresToday     float64  `yaml:"fares_today"`
	Waiting        []string `yaml:"waiting,omitempty"`
	Warnings       int      `yaml:"warnings,omitempty"`
	NextTripID     int      `yaml:"next_trip_id,omitempty"`
	Broadcast      string   `yaml:"broadcast,omitempty"`
}

type Scenario struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description,omitempty"`
	Vehicles    []VehicleDef `yaml:"vehicles"`
	Steps       []StepDef    `yaml:"steps"`
	// RestoreMidway snapshots the stand halfway through the steps and
	// continues on a coordinator rebuilt from that snapshot.
	RestoreMidway bool     `yaml:"restore_midway,omitempty"`
	Expected      Expected `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}
