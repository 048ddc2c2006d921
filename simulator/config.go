package main

import (
	"errors"
	"time"
)

// Config holds parameters for the stand simulator.
type Config struct {
	API          string
	AdminToken   string
	FleetSize    int
	WalkInPct    float64
	Trips        int
	MaxIdle      time.Duration
	MaxTrip      time.Duration
	MaxSeats     int
	BaseFare     float64
	FareSpread   int
	TemplateFile string
	Steady       bool
	CloseDay     bool
	Seed         int64
	Verbose      bool
}

// Validate rejects parameter combinations the simulator cannot run with.
func (c *Config) Validate() error {
	if c.FleetSize <= 0 {
		return errors.New("fleet-size must be positive")
	}
	if c.WalkInPct < 0 || c.WalkInPct > 1 {
		return errors.New("walkin-pct must be between 0 and 1")
	}
	if c.MaxSeats < 1 {
		return errors.New("max-seats must be at least 1")
	}
	if c.BaseFare <= 0 {
		return errors.New("base-fare must be positive")
	}
	if c.CloseDay && c.AdminToken == "" {
		return errors.New("close-day requires an admin token")
	}
	return nil
}
