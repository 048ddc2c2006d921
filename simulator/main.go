// Command simulator drives a running stand with synthetic tricycle
// traffic. Each driver registers itself, lines up, runs trips at its
// configured pace and rejoins the queue, so a demo stand fills with
// realistic dispatch activity.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

func main() {
	cfg := parseFlags()
	if err := (&cfg).Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	if !cfg.Verbose {
		log.SetOutput(io.Discard)
	}
	if cfg.Seed != 0 {
		rng = rand.New(rand.NewSource(cfg.Seed))
		fleetRng = rand.New(rand.NewSource(cfg.Seed))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var tmpl map[string]DriverTemplate
	if cfg.TemplateFile != "" {
		data, err := os.ReadFile(cfg.TemplateFile)
		if err != nil {
			log.Fatalf("template file: %v", err)
		}
		if tmpl, err = LoadDriverTemplates(data); err != nil {
			log.Fatalf("template file: %v", err)
		}
	}

	fleetCfg := FleetConfig{
		Size:       cfg.FleetSize,
		WalkInPct:  cfg.WalkInPct,
		BaseFare:   cfg.BaseFare,
		FareSpread: cfg.FareSpread,
	}
	drivers := GenerateFleet(fleetCfg, tmpl)
	api := newAPIClient(cfg.API, cfg.AdminToken)
	var pace TripPace = RandomPace{MaxIdle: cfg.MaxIdle, MaxTrip: cfg.MaxTrip, MaxSeats: cfg.MaxSeats}
	if cfg.Steady {
		pace = SteadyPace{Idle: cfg.MaxIdle, Trip: cfg.MaxTrip, Seats: cfg.MaxSeats}
	}
	runDrivers(ctx, drivers, api, pace, cfg.Trips)

	if cfg.CloseDay {
		report, err := api.endOfDay(context.Background())
		if err != nil {
			log.Fatalf("end of day: %v", err)
		}
		fmt.Println(report)
	}
}

func parseFlags() Config {
	var cfg Config
	flag.StringVar(&cfg.API, "api", "http://localhost:8080", "stand API base URL")
	flag.StringVar(&cfg.AdminToken, "admin-token", "", "bearer token for the admin surface")
	flag.IntVar(&cfg.FleetSize, "fleet-size", 5, "number of simulated tricycles")
	flag.Float64Var(&cfg.WalkInPct, "walkin-pct", 0, "ratio of drivers that never line up")
	flag.IntVar(&cfg.Trips, "trips", 3, "trips per driver, 0 for unlimited")
	flag.DurationVar(&cfg.MaxIdle, "max-idle", 2*time.Second, "longest rest between trips")
	flag.DurationVar(&cfg.MaxTrip, "max-trip", 5*time.Second, "longest time on the road")
	flag.IntVar(&cfg.MaxSeats, "max-seats", 4, "most passengers per trip")
	flag.Float64Var(&cfg.BaseFare, "base-fare", 12, "lowest per head fare")
	flag.IntVar(&cfg.FareSpread, "fare-spread", 3, "pesos added on top of the base fare at most")
	flag.StringVar(&cfg.TemplateFile, "template-file", "", "driver template overrides")
	flag.BoolVar(&cfg.Steady, "steady", false, "fixed pacing instead of random")
	flag.BoolVar(&cfg.CloseDay, "close-day", false, "close the dispatch day after the run")
	flag.Int64Var(&cfg.Seed, "seed", 0, "RNG seed, 0 for time based")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "enable verbose logging")
	flag.Parse()
	return cfg
}

func runDrivers(ctx context.Context, drivers []SimDriver, api *apiClient, pace TripPace, trips int) {
	var wg sync.WaitGroup
	for i := range drivers {
		d := &drivers[i]
		d.API = api
		d.Pace = pace
		d.Trips = trips
		wg.Add(1)
		go func(d *SimDriver) {
			defer wg.Done()
			if err := d.Run(ctx); err != nil {
				log.Printf("%s: %v", d.Plate, err)
			}
		}(d)
	}
	wg.Wait()
}
