// Package autogen runs scheduled generation of duty plans. A cron
// trigger regenerates the configured schedule type, optionally committing
// the accepted entries as trips.
package autogen

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/rjoseph-dev/crewsched/core/logger"
	"github.com/rjoseph-dev/crewsched/core/model"
)

// PlanGenerator produces a plan for one schedule type.
type PlanGenerator interface {
	Generate(ctx context.Context, scheduleType model.ScheduleType) (model.GenerationResult, error)
}

// Committer persists accepted entries as trips.
type Committer interface {
	CommitSchedules(ctx context.Context, entries []model.ScheduleEntry) ([]model.Trip, error)
}

// Job triggers generation runs on a cron schedule.
type Job struct {
	cfg       Config
	generator PlanGenerator
	committer Committer
	log       logger.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

// New creates a Job. committer may be nil when cfg.Commit is false.
func New(cfg Config, generator PlanGenerator, committer Committer, log logger.Logger) (*Job, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if generator == nil {
		return nil, fmt.Errorf("autogen: generator is required")
	}
	if cfg.Commit && committer == nil {
		return nil, fmt.Errorf("autogen: commit enabled without a committer")
	}
	return &Job{cfg: cfg, generator: generator, committer: committer, log: log}, nil
}

// Start registers the cron entry and begins triggering runs. The context
// bounds each individual run, not the cron loop; call Stop to halt it.
func (j *Job) Start(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cron != nil {
		return fmt.Errorf("autogen: already started")
	}
	c := cron.New()
	if _, err := c.AddFunc(j.cfg.CronSpec, func() { j.run(ctx) }); err != nil {
		return fmt.Errorf("autogen: register cron: %w", err)
	}
	c.Start()
	j.cron = c
	j.log.Infof("autogen: scheduled %q runs at %q", j.cfg.ScheduleType, j.cfg.CronSpec)
	return nil
}

// Stop halts the cron loop and waits for a running trigger to finish.
func (j *Job) Stop() {
	j.mu.Lock()
	c := j.cron
	j.cron = nil
	j.mu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
	j.log.Infof("autogen: stopped")
}

// Run executes one generation immediately, outside the cron schedule.
func (j *Job) Run(ctx context.Context) error {
	return j.runOnce(ctx)
}

func (j *Job) run(ctx context.Context) {
	if err := j.runOnce(ctx); err != nil {
		j.log.Errorf("autogen: run failed: %v", err)
	}
}

func (j *Job) runOnce(ctx context.Context) error {
	res, err := j.generator.Generate(ctx, model.ScheduleType(j.cfg.ScheduleType))
	if err != nil {
		return err
	}
	j.log.Infof("autogen: run %s generated %d entries, %d conflicts",
		res.Summary.RunID, res.Summary.TotalGenerated, res.Summary.ConflictCount)
	if !j.cfg.Commit || len(res.Schedules) == 0 {
		return nil
	}
	trips, err := j.committer.CommitSchedules(ctx, res.Schedules)
	if err != nil {
		return fmt.Errorf("autogen: commit: %w", err)
	}
	j.log.Infof("autogen: committed %d trips", len(trips))
	return nil
}
