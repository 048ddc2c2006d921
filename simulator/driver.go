package main

import (
	"context"
	"fmt"
	"log"
	"time"
)

var routes = [][2]string{
	{"Terminal", "Public Market"},
	{"Terminal", "Town Plaza"},
	{"Terminal", "Elementary School"},
	{"Terminal", "Health Center"},
	{"Public Market", "Riverside"},
}

// SimDriver plays one tricycle against the stand API. Queued drivers line
// up again after every trip; walk-in drivers never do.
type SimDriver struct {
	Plate    string
	Operator string
	FareRate float64
	WalkIn   bool

	API   *apiClient
	Pace  TripPace
	Trips int
}

// Run registers the driver and loops through trips until ctx is done or
// the configured trip count is reached.
func (d *SimDriver) Run(ctx context.Context) error {
	if err := d.API.registerVehicle(ctx, d.Plate, d.Operator, d.FareRate); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	if !d.WalkIn {
		if err := d.API.setDuty(ctx, d.Plate, true); err != nil {
			return fmt.Errorf("line up: %w", err)
		}
	}
	for done := 0; d.Trips <= 0 || done < d.Trips; done++ {
		if !d.Pace.Rest(ctx) {
			return nil
		}
		route := routes[rng.Intn(len(routes))]
		id, err := d.API.startTrip(ctx, d.Plate, d.Pace.Passengers(), route[0], route[1])
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Printf("%s: start trip: %v", d.Plate, err)
			continue
		}
		select {
		case <-time.After(d.Pace.TripDuration()):
		case <-ctx.Done():
			return nil
		}
		if err := d.API.completeTrip(ctx, id); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Printf("%s: complete trip %d: %v", d.Plate, id, err)
		}
		if !d.WalkIn {
			if err := d.API.setDuty(ctx, d.Plate, true); err != nil && ctx.Err() == nil {
				log.Printf("%s: rejoin queue: %v", d.Plate, err)
			}
		}
	}
	return nil
}
