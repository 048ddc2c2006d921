package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	apiadmin "github.com/todatrack/todatrack/api/admin"
	apifleet "github.com/todatrack/todatrack/api/fleet"
	"github.com/todatrack/todatrack/config"
	"github.com/todatrack/todatrack/core/audit"
	"github.com/todatrack/todatrack/core/dispatch"
	"github.com/todatrack/todatrack/core/events"
	coremetrics "github.com/todatrack/todatrack/core/metrics"
	"github.com/todatrack/todatrack/core/monitoring"
	coresnapshot "github.com/todatrack/todatrack/core/snapshot"
	infraaudit "github.com/todatrack/todatrack/infra/audit"
	"github.com/todatrack/todatrack/infra/logger"
	"github.com/todatrack/todatrack/infra/metrics"
	inframonitoring "github.com/todatrack/todatrack/infra/monitoring"
	"github.com/todatrack/todatrack/infra/mqtt"
	infrasnapshot "github.com/todatrack/todatrack/infra/snapshot"
	"github.com/todatrack/todatrack/internal/pubsub"
)

// Service orchestrates the dispatch coordinator, its persistence and the
// outward surfaces: HTTP API, MQTT feed and metrics.
type Service struct {
	Coordinator *dispatch.Coordinator

	snaps       *infrasnapshot.FileStore
	journal     audit.Store
	bus         *pubsub.Topic[events.Event]
	feed        *mqtt.FeedPublisher
	log         logger.Logger
	addr        string
	adminToken  string
	autosave    time.Duration
	promEnabled bool
	promAddr    string
}

// New creates a Service from the configuration. The coordinator starts
// from the latest stored snapshot when one loads cleanly, otherwise
// empty.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	if cfg.Sentry.DSN != "" {
		mon, err := inframonitoring.NewSentryMonitor(cfg.Sentry)
		if err != nil {
			return nil, fmt.Errorf("sentry: %w", err)
		}
		monitoring.Init(mon)
	}

	journal, err := newAuditStore(cfg.Audit)
	if err != nil {
		return nil, fmt.Errorf("audit store: %w", err)
	}

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(nil)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	var sink coremetrics.MetricsSink
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	snaps, err := infrasnapshot.NewFileStore(cfg.Snapshots.Dir, cfg.Snapshots.Prefix)
	if err != nil {
		return nil, fmt.Errorf("snapshot store: %w", err)
	}
	bus := pubsub.NewTopic[events.Event](64)
	coord := restoreOrNew(snaps, sink, journal, bus, logg)

	svc := &Service{
		Coordinator: coord,
		snaps:       snaps,
		journal:     journal,
		bus:         bus,
		log:         logg,
		addr:        cfg.API.Addr,
		adminToken:  cfg.API.AdminToken,
		autosave:    time.Duration(cfg.Snapshots.AutosaveSeconds) * time.Second,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promAddr:    cfg.Metrics.PrometheusAddr,
	}
	if cfg.MQTT.Enabled {
		feed, err := mqtt.NewFeedPublisher(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt feed: %w", err)
		}
		svc.feed = feed
	}
	return svc, nil
}

// restoreOrNew loads the most recent snapshot. Any load or agreement
// failure is logged and the stand starts empty rather than refusing to
// boot.
func restoreOrNew(snaps *infrasnapshot.FileStore, sink coremetrics.MetricsSink, journal audit.Store, bus *pubsub.Topic[events.Event], logg logger.Logger) *dispatch.Coordinator {
	snap, label, err := snaps.Latest(context.Background())
	if err != nil {
		if errors.Is(err, coresnapshot.ErrNotFound) {
			logg.Infof("no snapshot found, starting with an empty stand")
		} else {
			logg.Errorf("snapshot load failed, starting with an empty stand: %v", err)
		}
		return dispatch.NewCoordinator(sink, journal, bus, logg)
	}
	coord, err := dispatch.FromSnapshot(snap, sink, journal, bus, logg)
	if err != nil {
		logg.Errorf("snapshot %s rejected, starting with an empty stand: %v", label, err)
		return dispatch.NewCoordinator(sink, journal, bus, logg)
	}
	logg.Infof("restored snapshot %s", label)
	return coord
}

func newAuditStore(cfg config.AuditConfig) (audit.Store, error) {
	switch cfg.Backend {
	case "sqlite":
		return infraaudit.NewSQLiteStore(cfg.Path)
	default:
		if cfg.Rotating() {
			return infraaudit.NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
		}
		return infraaudit.NewJSONLStore(cfg.Path)
	}
}

// Run starts the service and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.feed != nil {
		go s.forwardFeed(ctx, s.feed)
	}
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.autosave > 0 {
		go s.autosaveLoop(ctx)
	}

	srv := &http.Server{Addr: s.addr, Handler: s.routes()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api shutdown: %v", err)
		}
	}()
	s.log.Infof("serving API on %s", s.addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Service) routes() http.Handler {
	mux := http.NewServeMux()
	vehicles := apifleet.NewVehiclesHandler(s.Coordinator)
	mux.Handle("/api/fleet/vehicles", vehicles)
	mux.Handle("/api/fleet/vehicles/", vehicles)
	trips := apifleet.NewTripsHandler(s.Coordinator)
	mux.Handle("/api/fleet/trips", trips)
	mux.Handle("/api/fleet/trips/", trips)
	mux.Handle("/api/fleet/queue", apifleet.NewQueueHandler(s.Coordinator))
	mux.Handle("/api/fleet/overview", apifleet.NewOverviewHandler(s.Coordinator))
	mux.Handle("/api/fleet/broadcast", apifleet.NewBroadcastHandler(s.Coordinator))
	mux.Handle("/api/admin/endofday", apiadmin.NewEndOfDayHandler(s.Coordinator, s.adminToken))
	mux.Handle("/api/admin/broadcast", apiadmin.NewBroadcastHandler(s.Coordinator, s.adminToken))
	mux.Handle("/api/admin/snapshot", apiadmin.NewSnapshotHandler(s.Coordinator, s.snaps, s.adminToken))
	mux.Handle("/api/admin/audit", apiadmin.NewAuditHandler(s.journal, s.adminToken))
	return mux
}

// forwardFeed relays coordinator events onto the feed until the context
// ends or the bus closes.
func (s *Service) forwardFeed(ctx context.Context, dst mqtt.Publisher) {
	defer monitoring.Recover()
	sub := s.bus.Subscribe()
	defer s.bus.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			if err := dst.PublishEvent(ev); err != nil {
				s.log.Errorf("feed publish %s: %v", ev.Kind(), err)
			}
		}
	}
}

func (s *Service) autosaveLoop(ctx context.Context) {
	defer monitoring.Recover()
	ticker := time.NewTicker(s.autosave)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.save(ctx)
		}
	}
}

func (s *Service) save(ctx context.Context) {
	label := coresnapshot.DayLabel(time.Now())
	if err := s.snaps.Save(ctx, label, s.Coordinator.Snapshot()); err != nil {
		s.log.Errorf("snapshot save: %v", err)
		return
	}
	s.log.Debugf("state saved under %s", label)
}

// Close saves a final snapshot and releases resources held by the
// service.
func (s *Service) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.save(ctx)
	err := s.Coordinator.Close()
	if s.feed != nil {
		s.feed.Disconnect()
	}
	monitoring.Flush(2 * time.Second)
	return err
}
