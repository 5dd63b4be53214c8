// Package app assembles the dispatch service from its configuration.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/swiftresponder/swiftresponder/api/dispatchhistory"
	"github.com/swiftresponder/swiftresponder/api/tracking"
	"github.com/swiftresponder/swiftresponder/config"
	"github.com/swiftresponder/swiftresponder/core/history"
	"github.com/swiftresponder/swiftresponder/core/hospital"
	coremetrics "github.com/swiftresponder/swiftresponder/core/metrics"
	"github.com/swiftresponder/swiftresponder/core/model"
	"github.com/swiftresponder/swiftresponder/core/routing"
	"github.com/swiftresponder/swiftresponder/core/selector"
	"github.com/swiftresponder/swiftresponder/core/telemetry"
	"github.com/swiftresponder/swiftresponder/core/tracker"
	"github.com/swiftresponder/swiftresponder/infra/ai"
	"github.com/swiftresponder/swiftresponder/infra/directions"
	"github.com/swiftresponder/swiftresponder/infra/logger"
	"github.com/swiftresponder/swiftresponder/infra/metrics"
	"github.com/swiftresponder/swiftresponder/infra/mqtt"
	"github.com/swiftresponder/swiftresponder/infra/places"
	"github.com/swiftresponder/swiftresponder/infra/weather"
	"github.com/swiftresponder/swiftresponder/internal/eventbus"
	"github.com/swiftresponder/swiftresponder/simulator"
)

// Service orchestrates the tracker, the HTTP surface and the connectors.
type Service struct {
	Tracker *tracker.Tracker
	Store   history.Store

	bus         eventbus.EventBus
	log         logger.Logger
	mux         *http.ServeMux
	apiAddr     string
	promEnabled bool
	promPort    string
	publisher   telemetry.Publisher
	influx      *metrics.InfluxSink
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	fleet := simulator.GenerateFleet(cfg.Fleet)
	sel := selector.New(cfg.Selector)
	bus := eventbus.New()

	store, err := newStore(cfg.History)
	if err != nil {
		return nil, fmt.Errorf("history store: %w", err)
	}

	svc := &Service{
		Store:       store,
		bus:         bus,
		log:         logg,
		apiAddr:     cfg.API.Addr,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
	}

	sink, err := svc.newSink(cfg.Metrics)
	if err != nil {
		return nil, err
	}

	var publisher telemetry.Publisher
	if cfg.MQTT.Enabled {
		pub, err := mqtt.NewPahoPublisher(cfg.MQTT.Config)
		if err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		publisher = pub
		svc.publisher = pub
	}

	svc.Tracker = tracker.New(cfg.Tracker, fleet, tracker.Deps{
		Selector:  sel,
		Finder:    newFinder(cfg, bus),
		Routes:    newRoutes(cfg.Directions),
		History:   store,
		Sink:      sink,
		Publisher: publisher,
		Bus:       bus,
		Log:       logger.New("tracker"),
	})

	svc.mux = newMux(svc.Tracker, store, cfg, newConditions(cfg.Weather))
	return svc, nil
}

func newStore(cfg config.HistoryConfig) (history.Store, error) {
	if cfg.Backend == "memory" {
		return history.NewMemoryStore(), nil
	}
	return history.NewJSONLStore(cfg.Path)
}

// newFinder assembles the hospital provider chain: AI-ranked search first,
// then a quick radius search, a wide-radius retry, and the static fallback.
func newFinder(cfg *config.Config, bus eventbus.EventBus) *hospital.Finder {
	var providers []hospital.Provider
	if cfg.Places.Endpoint != "" && cfg.Places.APIKey != "" {
		quick := places.NewClient(cfg.Places)
		if cfg.AI.Enabled && cfg.AI.Endpoint != "" {
			providers = append(providers, ai.NewRanker(quick, ai.NewClient(cfg.AI.Config)))
		}
		providers = append(providers, quick)
		wideCfg := cfg.Places
		wideCfg.RadiusM *= 2
		providers = append(providers, places.NewClient(wideCfg))
	}
	providers = append(providers, hospital.DefaultFallback())
	return hospital.NewFinder(logger.New("hospital-finder"), bus, providers...)
}

func newRoutes(cfg directions.Config) routing.Provider {
	log := logger.New("routing")
	if cfg.Endpoint == "" || cfg.APIKey == "" {
		return routing.StraightLine{}
	}
	return routing.WithFallback(directions.NewClient(cfg), log)
}

// newConditions turns the optional weather integration into a conditions
// source for the ETA endpoint. Lookup failures degrade to clear conditions.
func newConditions(cfg weather.Config) tracking.ConditionsFunc {
	client := weather.NewClient(cfg)
	if !client.Enabled() {
		return nil
	}
	log := logger.New("weather")
	return func(ctx context.Context, loc model.LatLng) routing.Conditions {
		cur, err := client.Fetch(ctx, loc)
		if err != nil {
			log.Warnf("weather lookup failed, assuming clear: %v", err)
		}
		return weather.Conditions(cur, time.Now())
	}
}

func (s *Service) newSink(cfg config.MetricsConfig) (coremetrics.Sink, error) {
	var sinks []coremetrics.Sink
	if cfg.PrometheusEnabled {
		sink, err := metrics.NewPromSink()
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.InfluxEnabled {
		sink := metrics.NewInfluxSinkWithFallback(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket)
		if is, ok := sink.(*metrics.InfluxSink); ok {
			s.influx = is
		}
		sinks = append(sinks, sink)
	}
	switch len(sinks) {
	case 0:
		return nil, nil
	case 1:
		return sinks[0], nil
	default:
		return metrics.NewMultiSink(sinks...), nil
	}
}

func newMux(t *tracker.Tracker, store history.Store, cfg *config.Config, cond tracking.ConditionsFunc) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/api/tracking/status", tracking.NewStatusHandler(t))
	mux.Handle("/api/tracking/dispatch", tracking.NewDispatchHandler(t, logger.New("dispatch-api")))
	mux.Handle("/api/tracking/reset", tracking.NewResetHandler(t))
	mux.Handle("/api/tracking/eta", tracking.NewETAHandler(t, cond, store))
	mux.Handle("/api/history", dispatchhistory.NewHandler(store, cfg.API.Token))
	return mux
}

// Run starts the tracker loop and the HTTP servers, blocking until the
// context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	go s.Tracker.Run(ctx)
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	srv := &http.Server{Addr: s.apiAddr, Handler: s.mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api shutdown: %v", err)
		}
	}()
	s.log.Infof("api listening on %s", s.apiAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.publisher != nil {
		s.publisher.Close()
	}
	if s.influx != nil {
		s.influx.Close()
	}
	if s.bus != nil {
		s.bus.Close()
	}
	return s.Store.Close()
}
