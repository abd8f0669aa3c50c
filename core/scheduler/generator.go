package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rjoseph-dev/crewsched/core/conflict"
	"github.com/rjoseph-dev/crewsched/core/crewpair"
	"github.com/rjoseph-dev/crewsched/core/events"
	"github.com/rjoseph-dev/crewsched/core/logger"
	"github.com/rjoseph-dev/crewsched/core/metrics"
	"github.com/rjoseph-dev/crewsched/core/model"
	"github.com/rjoseph-dev/crewsched/internal/eventbus"
)

// RouteSource provides the active routes under consideration. An empty
// depot means every depot.
type RouteSource interface {
	ListActiveRoutes(ctx context.Context, depot model.DepotID) ([]model.Route, error)
}

// VehicleSource provides the active bus roster.
type VehicleSource interface {
	ListActiveBuses(ctx context.Context, excludeMaintenance bool) ([]model.Bus, error)
}

// PairFinder yields ranked eligible crew pairs; implemented by
// crewpair.Finder.
type PairFinder interface {
	FindEligiblePairs(ctx context.Context, depot model.DepotID, required int) []crewpair.Pair
}

// ConflictChecker validates candidates against committed bookings;
// implemented by conflict.Checker.
type ConflictChecker interface {
	Check(ctx context.Context, bus model.BusID, driver, conductor model.CrewID, window model.TimeWindow, date time.Time) conflict.Report
}

const (
	reasonNoCrew = "no_crew"
	reasonNoBus  = "no_bus"
)

// Generator produces day-by-day crew and vehicle assignments for the
// active routes. It only proposes: nothing is written to shared state, and
// committing the result is the caller's responsibility (re-running the
// conflict check at commit time, see conflict.Checker).
type Generator struct {
	routes    RouteSource
	buses     VehicleSource
	pairs     PairFinder
	conflicts ConflictChecker
	policy    Policy
	sink      metrics.MetricsSink
	bus       eventbus.EventBus
	log       logger.Logger
	now       func() time.Time
}

// NewGenerator creates a Generator. sink and bus may be nil.
func NewGenerator(routes RouteSource, buses VehicleSource, pairs PairFinder, conflicts ConflictChecker, policy Policy, sink metrics.MetricsSink, bus eventbus.EventBus, log logger.Logger) (*Generator, error) {
	if routes == nil || buses == nil || pairs == nil || conflicts == nil {
		return nil, fmt.Errorf("scheduler: nil parameter provided to NewGenerator")
	}
	policy.SetDefaults()
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("scheduler: invalid policy: %w", err)
	}
	return &Generator{
		routes:    routes,
		buses:     buses,
		pairs:     pairs,
		conflicts: conflicts,
		policy:    policy,
		sink:      sink,
		bus:       bus,
		log:       log,
		now:       time.Now,
	}, nil
}

// Generate runs one batch computation over the date range implied by
// scheduleType. Per-slot problems degrade to warnings or conflict records;
// only a malformed schedule type, roster failures or cancellation abort
// the run.
func (g *Generator) Generate(ctx context.Context, scheduleType model.ScheduleType) (model.GenerationResult, error) {
	started := g.now()
	days, err := scheduleType.Days()
	if err != nil {
		return model.GenerationResult{}, err
	}
	window, err := g.policy.Window()
	if err != nil {
		return model.GenerationResult{}, err
	}

	routes, err := g.routes.ListActiveRoutes(ctx, "")
	if err != nil {
		return model.GenerationResult{}, fmt.Errorf("route roster: %w", err)
	}
	buses, err := g.buses.ListActiveBuses(ctx, true)
	if err != nil {
		return model.GenerationResult{}, fmt.Errorf("bus roster: %w", err)
	}

	runID := uuid.NewString()
	g.log.Infof("starting %s schedule generation run %s: %d routes, %d buses, %d days",
		scheduleType, runID, len(routes), len(buses), days)

	result := model.GenerationResult{}
	startDay := model.StartOfDay(started)

	for i := 0; i < days; i++ {
		date := startDay.AddDate(0, 0, i)
		for _, route := range routes {
			// Cancellation is checked between slots; nothing has been
			// committed, so aborting mid-run is safe.
			if err := ctx.Err(); err != nil {
				return result, err
			}
			g.fillSlot(ctx, &result, runID, scheduleType, route, date, window, buses)
		}
	}

	result.Summary = model.Summary{
		RunID:          runID,
		TotalGenerated: len(result.Schedules),
		ConflictCount:  len(result.Conflicts),
		ScheduleType:   scheduleType,
		GeneratedAt:    g.now(),
	}
	runDuration.WithLabelValues(string(scheduleType)).Observe(g.now().Sub(started).Seconds())
	g.publish(events.RunCompletedEvent{Summary: result.Summary})
	g.record(result)

	g.log.Infof("generated %d schedules with %d conflicts (run %s)",
		result.Summary.TotalGenerated, result.Summary.ConflictCount, runID)
	return result, nil
}

// fillSlot assigns one (route, date) slot or records why it could not.
func (g *Generator) fillSlot(ctx context.Context, result *model.GenerationResult, runID string, scheduleType model.ScheduleType, route model.Route, date time.Time, window model.TimeWindow, buses []model.Bus) {
	dateStr := date.Format("2006-01-02")

	pairs := g.pairs.FindEligiblePairs(ctx, route.Depot, g.policy.RequiredPairs)
	if len(pairs) == 0 {
		g.log.Warnf("no eligible crew pairs for route %s on %s", route.Name, dateStr)
		g.skip(runID, route, date, reasonNoCrew, scheduleType)
		return
	}
	pair := pairs[0]

	var bus *model.Bus
	for i := range buses {
		if buses[i].Available() && buses[i].ServesDepot(route.Depot) {
			bus = &buses[i]
			break
		}
	}
	if bus == nil {
		g.log.Warnf("no available bus for route %s on %s", route.Name, dateStr)
		g.skip(runID, route, date, reasonNoBus, scheduleType)
		return
	}

	report := g.conflicts.Check(ctx, bus.ID, pair.Driver.ID, pair.Conductor.ID, window, date)
	if report.HasConflict {
		record := model.ConflictRecord{
			Route:     route.ID,
			RouteName: route.Name,
			Date:      date,
			Reason: fmt.Sprintf("schedule conflict detected (bus=%d driver=%d conductor=%d)",
				report.BusConflicts, report.DriverConflicts, report.ConductorConflicts),
		}
		result.Conflicts = append(result.Conflicts, record)
		slotConflicts.WithLabelValues(string(scheduleType)).Inc()
		g.publish(events.ConflictEvent{RunID: runID, Record: record})
		return
	}

	entry := model.ScheduleEntry{
		ID:               uuid.NewString(),
		Route:            route.ID,
		RouteName:        route.Name,
		Bus:              bus.ID,
		BusNumber:        bus.Number,
		Driver:           pair.Driver.ID,
		Conductor:        pair.Conductor.ID,
		Date:             date,
		Window:           window,
		StartTime:        window.Start.String(),
		EndTime:          window.End.String(),
		Status:           model.EntryScheduled,
		DriverFatigue:    pair.DriverFatigue,
		ConductorFatigue: pair.ConductorFatigue,
		CombinedFatigue:  pair.CombinedScore,
	}
	result.Schedules = append(result.Schedules, entry)
	entriesGenerated.WithLabelValues(string(scheduleType)).Inc()
	g.publish(events.EntryEvent{RunID: runID, Entry: entry})
}

func (g *Generator) skip(runID string, route model.Route, date time.Time, reason string, scheduleType model.ScheduleType) {
	slotsSkipped.WithLabelValues(string(scheduleType), reason).Inc()
	g.publish(events.SlotSkippedEvent{RunID: runID, Route: route, Date: date, Reason: reason})
}

func (g *Generator) publish(e eventbus.Event) {
	if g.bus != nil {
		g.bus.Publish(e)
	}
}

// record hands the run to the metrics sink, if one is configured.
func (g *Generator) record(result model.GenerationResult) {
	if g.sink == nil {
		return
	}
	recs := make([]metrics.ScheduleResult, 0, len(result.Schedules))
	for _, e := range result.Schedules {
		recs = append(recs, metrics.ScheduleResult{
			RunID:        result.Summary.RunID,
			ScheduleType: result.Summary.ScheduleType,
			Entry:        e,
			GeneratedAt:  result.Summary.GeneratedAt,
		})
	}
	if err := g.sink.RecordScheduleResult(recs); err != nil {
		g.log.Errorf("metrics error: %v", err)
	}
	if cr, ok := g.sink.(metrics.ConflictRecorder); ok && len(result.Conflicts) > 0 {
		if err := cr.RecordConflicts(result.Summary.RunID, result.Conflicts); err != nil {
			g.log.Errorf("conflict metrics error: %v", err)
		}
	}
	if rr, ok := g.sink.(metrics.RunRecorder); ok {
		if err := rr.RecordRunSummary(result.Summary); err != nil {
			g.log.Errorf("run summary metrics error: %v", err)
		}
	}
}
