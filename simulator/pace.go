package main

import (
	"context"
	"math/rand"
	"time"
)

var rng = rand.New(rand.NewSource(time.Now().UnixNano()))

// TripPace decides how a driver spends the day: the rest at the stand
// between trips, the time a trip keeps them on the road and how many
// passengers board.
type TripPace interface {
	Rest(ctx context.Context) bool
	TripDuration() time.Duration
	Passengers() int
}

// SteadyPace runs trips back to back with fixed timings.
type SteadyPace struct {
	Idle  time.Duration
	Trip  time.Duration
	Seats int
}

// Rest implements TripPace.
func (p SteadyPace) Rest(ctx context.Context) bool {
	if p.Idle <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-time.After(p.Idle):
		return true
	case <-ctx.Done():
		return false
	}
}

// TripDuration implements TripPace.
func (p SteadyPace) TripDuration() time.Duration { return p.Trip }

// Passengers implements TripPace.
func (p SteadyPace) Passengers() int { return p.Seats }

// RandomPace jitters rest and road times and varies the passenger load,
// so the queue rotates in a less regular order.
type RandomPace struct {
	MaxIdle  time.Duration
	MaxTrip  time.Duration
	MaxSeats int
}

// Rest implements TripPace.
func (p RandomPace) Rest(ctx context.Context) bool {
	if p.MaxIdle <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-time.After(time.Duration(rng.Int63n(int64(p.MaxIdle)))):
		return true
	case <-ctx.Done():
		return false
	}
}

// TripDuration implements TripPace.
func (p RandomPace) TripDuration() time.Duration {
	if p.MaxTrip <= 0 {
		return 0
	}
	return time.Duration(rng.Int63n(int64(p.MaxTrip)))
}

// Passengers implements TripPace.
func (p RandomPace) Passengers() int {
	if p.MaxSeats <= 1 {
		return 1
	}
	return 1 + rng.Intn(p.MaxSeats)
}
