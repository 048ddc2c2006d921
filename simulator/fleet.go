package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"
)

var fleetRng = rand.New(rand.NewSource(time.Now().UnixNano()))

var operatorNames = []string{
	"Juan dela Cruz", "Maria Santos", "Pedro Reyes", "Ana Lopez",
	"Ramon Garcia", "Liza Navarro", "Carlo Mendoza", "Nora Villanueva",
}

// FleetConfig holds parameters for bulk fleet generation.
type FleetConfig struct {
	Size       int
	WalkInPct  float64
	BaseFare   float64
	FareSpread int
}

// DriverTemplate allows overriding generated drivers per plate.
type DriverTemplate struct {
	Operator string  `json:"operator"`
	FareRate float64 `json:"fare_rate"`
	WalkIn   *bool   `json:"walk_in"`
}

// GenerateFleet creates Size drivers with plates SIM-0001..SIM-NNNN.
// Drivers are flagged walk-in according to WalkInPct; walk-ins never line
// up, so every dispatch for them draws a warning from the stand.
func GenerateFleet(cfg FleetConfig, tmpl map[string]DriverTemplate) []SimDriver {
	if cfg.Size <= 0 {
		return nil
	}
	ds := make([]SimDriver, cfg.Size)
	for i := 0; i < cfg.Size; i++ {
		plate := fmt.Sprintf("SIM-%04d", i+1)
		fare := cfg.BaseFare
		if cfg.FareSpread > 0 {
			fare += float64(fleetRng.Intn(cfg.FareSpread + 1))
		}
		walkIn := cfg.WalkInPct > 0 && fleetRng.Float64() < cfg.WalkInPct
		operator := operatorNames[i%len(operatorNames)]
		if tmpl != nil {
			if o, ok := tmpl[plate]; ok {
				if o.Operator != "" {
					operator = o.Operator
				}
				if o.FareRate > 0 {
					fare = o.FareRate
				}
				if o.WalkIn != nil {
					walkIn = *o.WalkIn
				}
			}
		}
		ds[i] = SimDriver{
			Plate:    plate,
			Operator: operator,
			FareRate: fare,
			WalkIn:   walkIn,
		}
	}
	return ds
}

// LoadDriverTemplates reads per-plate overrides from JSON.
func LoadDriverTemplates(data []byte) (map[string]DriverTemplate, error) {
	var m map[string]DriverTemplate
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}
