// Package app wires the coordination core, its infrastructure adapters and
// the HTTP surface from configuration.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Medic423/medport-sub003/api"
	"github.com/Medic423/medport-sub003/config"
	"github.com/Medic423/medport-sub003/core/bid"
	coredistance "github.com/Medic423/medport-sub003/core/distance"
	"github.com/Medic423/medport-sub003/core/history"
	"github.com/Medic423/medport-sub003/core/match"
	coremetrics "github.com/Medic423/medport-sub003/core/metrics"
	"github.com/Medic423/medport-sub003/core/notify"
	"github.com/Medic423/medport-sub003/core/registry"
	"github.com/Medic423/medport-sub003/core/request"
	infradistance "github.com/Medic423/medport-sub003/infra/distance"
	_ "github.com/Medic423/medport-sub003/infra/history" // register archive stores
	"github.com/Medic423/medport-sub003/infra/logger"
	"github.com/Medic423/medport-sub003/infra/metrics"
	"github.com/Medic423/medport-sub003/infra/mqtt"
	"github.com/Medic423/medport-sub003/internal/eventbus"
	"github.com/Medic423/medport-sub003/internal/keymutex"
)

// Service owns every long-lived component of the coordination server.
type Service struct {
	Registry *registry.Registry
	Store    *request.Store
	Ledger   *bid.Ledger
	Engine   *match.Engine
	Tracker  history.Tracker

	bus      eventbus.EventBus
	sink     coremetrics.Sink
	archive  history.Store
	notifier notify.Dispatcher
	cache    *infradistance.RedisKV
	cfg      *config.Config
	log      logger.Logger
}

// New builds a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	log := logger.New("service")
	bus := eventbus.New()
	reg := registry.New()

	notifier, err := newNotifier(cfg, bus)
	if err != nil {
		return nil, err
	}

	archive, err := history.NewStore(cfg.History.ModuleConfig())
	if err != nil {
		return nil, fmt.Errorf("history archive: %w", err)
	}
	tracker := history.NewMemoryTracker(archive, logger.New("history"))

	locks := keymutex.New()
	store := request.NewStore(reg, tracker, locks, bus, notifier, logger.New("requests"))
	tracker.SetChecker(store)
	ledger := bid.NewLedger(store, locks, bus, notifier, logger.New("bids"))

	svc := &Service{
		Registry: reg,
		Store:    store,
		Ledger:   ledger,
		Tracker:  tracker,
		bus:      bus,
		archive:  archive,
		notifier: notifier,
		cfg:      cfg,
		log:      log,
	}

	provider, err := svc.newDistanceProvider(reg)
	if err != nil {
		return nil, err
	}
	svc.Engine = match.NewEngine(reg, provider, ledger, cfg.Matching.EngineConfig(), bus, logger.New("matcher"))

	sink, err := coremetrics.NewSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	svc.sink = sink
	return svc, nil
}

func newNotifier(cfg *config.Config, bus eventbus.EventBus) (notify.Dispatcher, error) {
	switch cfg.Notify.Dispatcher {
	case "mqtt":
		pub, err := mqtt.NewPublisher(cfg.Notify.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt notifier: %w", err)
		}
		return pub, nil
	case "none":
		return notify.Nop{}, nil
	default:
		return notify.NewBusDispatcher(bus), nil
	}
}

func (s *Service) newDistanceProvider(reg *registry.Registry) (coredistance.Provider, error) {
	var provider coredistance.Provider
	switch s.cfg.Distance.Provider {
	case "google":
		gp, err := infradistance.NewGoogleProvider(s.cfg.Distance.GoogleAPIKey, reg)
		if err != nil {
			return nil, fmt.Errorf("google provider: %w", err)
		}
		provider = gp
	default:
		provider = coredistance.NewGeoProvider(reg, s.cfg.Distance.GroundMph, s.cfg.Distance.AirMph)
	}
	if s.cfg.Distance.Cache.Enabled {
		s.cache = infradistance.NewRedisKVAddr(s.cfg.Distance.Cache.RedisAddr)
		ttl := time.Duration(s.cfg.Distance.Cache.TTLMinutes) * time.Minute
		provider = infradistance.NewCachedProvider(provider, s.cache, ttl, logger.New("distance-cache"))
	}
	return provider, nil
}

// Run starts the HTTP servers and background workers and blocks until the
// context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	metrics.StartEventCollector(ctx, s.bus, s.sink)
	go s.runExpirySweeper(ctx)

	if addr := s.cfg.Server.PromAddr; addr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, addr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:    s.cfg.Server.Addr,
		Handler: api.NewServer(s.Store, s.Ledger, s.Engine, s.Tracker, s.Registry, logger.New("api")).Mux(),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Infof("listening on %s", s.cfg.Server.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// runExpirySweeper periodically expires pending bids older than the validity
// window. Disabled when no window is configured.
func (s *Service) runExpirySweeper(ctx context.Context) {
	validity := time.Duration(s.cfg.Bids.ValidityMinutes) * time.Minute
	if validity <= 0 {
		return
	}
	interval := time.Duration(s.cfg.Bids.SweepIntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-validity)
			for _, id := range s.Ledger.Stale(cutoff) {
				if err := s.Ledger.Expire(ctx, id); err != nil {
					s.log.Warnf("expire bid %s: %v", id, err)
				}
			}
		}
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	if s.cache != nil {
		_ = s.cache.Close()
	}
	if s.archive != nil {
		return s.archive.Close()
	}
	return nil
}
