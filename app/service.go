// Package app wires the configuration into a running scheduling service.
package app

import (
	"context"
	"fmt"

	"github.com/rjoseph-dev/crewsched/config"
	"github.com/rjoseph-dev/crewsched/core/conflict"
	"github.com/rjoseph-dev/crewsched/core/crewpair"
	"github.com/rjoseph-dev/crewsched/core/events"
	"github.com/rjoseph-dev/crewsched/core/fatigue"
	coremetrics "github.com/rjoseph-dev/crewsched/core/metrics"
	"github.com/rjoseph-dev/crewsched/core/scheduler"
	"github.com/rjoseph-dev/crewsched/infra/logger"
	"github.com/rjoseph-dev/crewsched/infra/metrics"
	"github.com/rjoseph-dev/crewsched/infra/store"
	"github.com/rjoseph-dev/crewsched/internal/eventbus"
	"github.com/rjoseph-dev/crewsched/jobs/autogen"
)

// Service orchestrates the schedule generator, its storage and the
// periodic generation job.
type Service struct {
	Generator *scheduler.Generator
	Store     *store.GormStore
	Job       *autogen.Job

	bus         *eventbus.Bus
	log         logger.Logger
	promEnabled bool
	promPort    string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	st, err := store.Open(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}

	var duties fatigue.DutySource = st
	if cfg.Cache.Enabled {
		duties = store.NewCachedDutySource(st, cfg.Cache)
	}

	estimator := fatigue.NewEstimator(duties, cfg.Fatigue, logger.New("fatigue"))
	rest := fatigue.NewRestCalculator(duties, logger.New("rest"))
	finder := crewpair.NewFinder(st, estimator, rest, cfg.Fatigue, cfg.CrewPair, logger.New("crewpair"))
	checker := conflict.NewChecker(st, logger.New("conflict"))

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink()
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sink := metrics.NewInfluxSinkWithFallback(
			cfg.Metrics.InfluxURL, cfg.Metrics.InfluxToken, cfg.Metrics.InfluxOrg, cfg.Metrics.InfluxBucket)
		sinks = append(sinks, sink)
	}
	var sink coremetrics.MetricsSink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	bus := eventbus.New()
	generator, err := scheduler.NewGenerator(st, st, finder, checker, cfg.Scheduler, sink, bus, logger.New("scheduler"))
	if err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}

	svc := &Service{
		Generator:   generator,
		Store:       st,
		bus:         bus,
		log:         logg,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
	}

	if cfg.Autogen.Enabled {
		job, err := autogen.New(cfg.Autogen, generator, st, logger.New("autogen"))
		if err != nil {
			return nil, fmt.Errorf("autogen: %w", err)
		}
		svc.Job = job
	}
	return svc, nil
}

// Run starts the service and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	go s.logEvents(s.bus.Subscribe())
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.Job != nil {
		if err := s.Job.Start(ctx); err != nil {
			return err
		}
	}
	<-ctx.Done()
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.Job != nil {
		s.Job.Stop()
	}
	s.bus.Close()
	return s.Store.Close()
}

func (s *Service) logEvents(sub <-chan eventbus.Event) {
	for ev := range sub {
		switch e := ev.(type) {
		case events.EntryEvent:
			s.log.Debugw("entry accepted", map[string]any{
				"run_id": e.RunID,
				"route":  string(e.Entry.Route),
				"bus":    string(e.Entry.Bus),
				"date":   e.Entry.Date.Format("2006-01-02"),
			})
		case events.ConflictEvent:
			s.log.Warnf("slot rejected: route=%s date=%s %s",
				e.Record.Route, e.Record.Date.Format("2006-01-02"), e.Record.Reason)
		case events.SlotSkippedEvent:
			s.log.Debugw("slot skipped", map[string]any{
				"run_id": e.RunID,
				"route":  string(e.Route.ID),
				"date":   e.Date.Format("2006-01-02"),
				"reason": e.Reason,
			})
		case events.RunCompletedEvent:
			s.log.Infof("run %s complete: %d entries, %d conflicts",
				e.Summary.RunID, e.Summary.TotalGenerated, e.Summary.ConflictCount)
		}
	}
}
