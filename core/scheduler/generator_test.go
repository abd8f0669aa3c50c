package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rjoseph-dev/crewsched/core/conflict"
	"github.com/rjoseph-dev/crewsched/core/crewpair"
	"github.com/rjoseph-dev/crewsched/core/events"
	"github.com/rjoseph-dev/crewsched/core/fatigue"
	"github.com/rjoseph-dev/crewsched/core/metrics"
	"github.com/rjoseph-dev/crewsched/core/model"
	"github.com/rjoseph-dev/crewsched/internal/eventbus"
)

type nopLog struct{}

func (nopLog) Debugf(string, ...any)         {}
func (nopLog) Debugw(string, map[string]any) {}
func (nopLog) Infof(string, ...any)          {}
func (nopLog) Warnf(string, ...any)          {}
func (nopLog) Errorf(string, ...any)         {}

type fakeRoutes struct {
	routes []model.Route
	err    error
}

func (f *fakeRoutes) ListActiveRoutes(context.Context, model.DepotID) ([]model.Route, error) {
	return f.routes, f.err
}

type fakeBuses struct {
	buses []model.Bus
	err   error
}

func (f *fakeBuses) ListActiveBuses(context.Context, bool) ([]model.Bus, error) {
	return f.buses, f.err
}

type fakeCrew struct {
	drivers    []model.CrewMember
	conductors []model.CrewMember
}

func (f *fakeCrew) ListActive(_ context.Context, role model.Role, depot model.DepotID) ([]model.CrewMember, error) {
	src := f.drivers
	if role == model.RoleConductor {
		src = f.conductors
	}
	if depot == "" {
		return src, nil
	}
	var out []model.CrewMember
	for _, m := range src {
		if m.Depot == depot {
			out = append(out, m)
		}
	}
	return out, nil
}

type stubScores struct {
	fatigue map[model.CrewID]int
	rest    map[model.CrewID]float64
}

func (s stubScores) Score(_ context.Context, c model.CrewMember) int { return s.fatigue[c.ID] }

func (s stubScores) RestHours(_ context.Context, id model.CrewID) float64 {
	if r, ok := s.rest[id]; ok {
		return r
	}
	return fatigue.FullRestHours
}

type fixedBooking struct {
	res    conflict.Resource
	id     string
	window model.TimeWindow
}

type fakeBookings struct {
	bookings []fixedBooking
	err      error
}

func (f *fakeBookings) CountOverlapping(_ context.Context, res conflict.Resource, id string, _ time.Time, window model.TimeWindow, _ []model.TripStatus) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	count := 0
	for _, b := range f.bookings {
		if b.res == res && b.id == id && b.window.Overlaps(window) {
			count++
		}
	}
	return count, nil
}

type captureSink struct {
	results   []metrics.ScheduleResult
	conflicts []model.ConflictRecord
	summaries []model.Summary
}

func (c *captureSink) RecordScheduleResult(rs []metrics.ScheduleResult) error {
	c.results = append(c.results, rs...)
	return nil
}

func (c *captureSink) RecordConflicts(_ string, recs []model.ConflictRecord) error {
	c.conflicts = append(c.conflicts, recs...)
	return nil
}

func (c *captureSink) RecordRunSummary(s model.Summary) error {
	c.summaries = append(c.summaries, s)
	return nil
}

func window(a, b string) model.TimeWindow {
	s, _ := model.ParseTimeOfDay(a)
	e, _ := model.ParseTimeOfDay(b)
	return model.TimeWindow{Start: s, End: e}
}

// depot fixture: one route, one bus, one driver, one conductor.
type fixture struct {
	routes   *fakeRoutes
	buses    *fakeBuses
	crew     *fakeCrew
	scores   stubScores
	bookings *fakeBookings
	sink     *captureSink
	bus      *eventbus.Bus
}

func newFixture() *fixture {
	return &fixture{
		routes: &fakeRoutes{routes: []model.Route{
			{ID: "r1", Name: "City Loop", Depot: "depot-a", Status: model.RouteActive},
		}},
		buses: &fakeBuses{buses: []model.Bus{
			{ID: "b1", Number: "KL-01", Depot: "depot-a", Status: model.BusActive, Maintenance: model.MaintenanceNone},
		}},
		crew: &fakeCrew{
			drivers: []model.CrewMember{
				{ID: "dr1", Role: model.RoleDriver, Depot: "depot-a", Status: model.CrewActive},
			},
			conductors: []model.CrewMember{
				{ID: "co1", Role: model.RoleConductor, Depot: "depot-a", Status: model.CrewActive},
			},
		},
		scores:   stubScores{fatigue: map[model.CrewID]int{"dr1": 20, "co1": 10}},
		bookings: &fakeBookings{},
		sink:     &captureSink{},
		bus:      eventbus.New(),
	}
}

func (f *fixture) generator(t *testing.T) *Generator {
	t.Helper()
	var fp fatigue.Policy
	fp.SetDefaults()
	finder := crewpair.NewFinder(f.crew, f.scores, f.scores, fp, crewpair.Config{AllowAnyDepot: true}, nopLog{})
	checker := conflict.NewChecker(f.bookings, nopLog{})
	g, err := NewGenerator(f.routes, f.buses, finder, checker, Policy{}, f.sink, f.bus, nopLog{})
	require.NoError(t, err)
	return g
}

func TestGenerateDailyHappyPath(t *testing.T) {
	f := newFixture()
	g := f.generator(t)

	res, err := g.Generate(context.Background(), model.ScheduleDaily)
	require.NoError(t, err)

	require.Len(t, res.Schedules, 1)
	assert.Empty(t, res.Conflicts)

	e := res.Schedules[0]
	assert.Equal(t, model.RouteID("r1"), e.Route)
	assert.Equal(t, model.BusID("b1"), e.Bus)
	assert.Equal(t, model.CrewID("dr1"), e.Driver)
	assert.Equal(t, model.CrewID("co1"), e.Conductor)
	assert.Equal(t, "08:00", e.StartTime)
	assert.Equal(t, "18:00", e.EndTime)
	assert.Equal(t, model.EntryScheduled, e.Status)
	assert.NotEmpty(t, e.ID)

	// Audit scores travel with the entry.
	assert.Equal(t, 20, e.DriverFatigue)
	assert.Equal(t, 10, e.ConductorFatigue)
	assert.Equal(t, 15.0, e.CombinedFatigue)

	assert.Equal(t, 1, res.Summary.TotalGenerated)
	assert.Equal(t, 0, res.Summary.ConflictCount)
	assert.Equal(t, model.ScheduleDaily, res.Summary.ScheduleType)
	assert.NotEmpty(t, res.Summary.RunID)
}

func TestGenerateBookedBusYieldsConflict(t *testing.T) {
	f := newFixture()
	f.bookings.bookings = []fixedBooking{
		{res: conflict.ResourceBus, id: "b1", window: window("09:00", "11:00")},
	}
	g := f.generator(t)

	res, err := g.Generate(context.Background(), model.ScheduleDaily)
	require.NoError(t, err)

	assert.Empty(t, res.Schedules)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, model.RouteID("r1"), res.Conflicts[0].Route)
	assert.Contains(t, res.Conflicts[0].Reason, "conflict")
	assert.Equal(t, 1, res.Summary.ConflictCount)
}

func TestGenerateAdjacentBookingIsNotConflict(t *testing.T) {
	f := newFixture()
	// Booking ends exactly when the default window starts.
	f.bookings.bookings = []fixedBooking{
		{res: conflict.ResourceBus, id: "b1", window: window("06:00", "08:00")},
	}
	g := f.generator(t)

	res, err := g.Generate(context.Background(), model.ScheduleDaily)
	require.NoError(t, err)
	assert.Len(t, res.Schedules, 1)
	assert.Empty(t, res.Conflicts)
}

func TestGenerateFatiguedDriverSkipsSlot(t *testing.T) {
	f := newFixture()
	f.scores.fatigue["dr1"] = 75
	g := f.generator(t)

	res, err := g.Generate(context.Background(), model.ScheduleDaily)
	require.NoError(t, err)

	// Absence of crew is a skipped slot, not a conflict.
	assert.Empty(t, res.Schedules)
	assert.Empty(t, res.Conflicts)
}

func TestGenerateNoBusSkipsSlot(t *testing.T) {
	f := newFixture()
	f.buses.buses = []model.Bus{
		{ID: "b1", Depot: "depot-a", Status: model.BusActive, Maintenance: model.InMaintenance},
		{ID: "b2", Depot: "depot-b", Status: model.BusActive, Maintenance: model.MaintenanceNone},
	}
	g := f.generator(t)

	res, err := g.Generate(context.Background(), model.ScheduleDaily)
	require.NoError(t, err)
	assert.Empty(t, res.Schedules)
	assert.Empty(t, res.Conflicts)
}

func TestGenerateSharedPoolBus(t *testing.T) {
	f := newFixture()
	f.buses.buses = []model.Bus{
		{ID: "b9", Number: "POOL-9", Depot: "", Status: model.BusActive, Maintenance: model.MaintenanceNone},
	}
	g := f.generator(t)

	res, err := g.Generate(context.Background(), model.ScheduleDaily)
	require.NoError(t, err)
	require.Len(t, res.Schedules, 1)
	assert.Equal(t, model.BusID("b9"), res.Schedules[0].Bus)
}

func TestGenerateWeeklyCoversSevenDays(t *testing.T) {
	f := newFixture()
	g := f.generator(t)

	res, err := g.Generate(context.Background(), model.ScheduleWeekly)
	require.NoError(t, err)
	require.Len(t, res.Schedules, 7)

	seen := map[string]bool{}
	for _, e := range res.Schedules {
		seen[e.Date.Format("2006-01-02")] = true
	}
	assert.Len(t, seen, 7)
}

func TestGenerateUnknownTypeFails(t *testing.T) {
	f := newFixture()
	g := f.generator(t)
	_, err := g.Generate(context.Background(), model.ScheduleType("yearly"))
	assert.Error(t, err)
}

func TestGenerateRosterFailureIsFatal(t *testing.T) {
	f := newFixture()
	f.routes.err = errors.New("roster down")
	g := f.generator(t)
	_, err := g.Generate(context.Background(), model.ScheduleDaily)
	assert.Error(t, err)
}

func TestGenerateCancellation(t *testing.T) {
	f := newFixture()
	g := f.generator(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := g.Generate(ctx, model.ScheduleDaily)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateRecordsToSink(t *testing.T) {
	f := newFixture()
	g := f.generator(t)

	res, err := g.Generate(context.Background(), model.ScheduleDaily)
	require.NoError(t, err)

	require.Len(t, f.sink.results, 1)
	assert.Equal(t, res.Summary.RunID, f.sink.results[0].RunID)
	require.Len(t, f.sink.summaries, 1)
	assert.Equal(t, 1, f.sink.summaries[0].TotalGenerated)
	assert.Empty(t, f.sink.conflicts)
}

func TestGeneratePublishesEvents(t *testing.T) {
	f := newFixture()
	sub := f.bus.Subscribe()
	g := f.generator(t)

	_, err := g.Generate(context.Background(), model.ScheduleDaily)
	require.NoError(t, err)
	f.bus.Close()

	var entries, runs int
	for ev := range sub {
		switch ev.(type) {
		case events.EntryEvent:
			entries++
		case events.RunCompletedEvent:
			runs++
		}
	}
	assert.Equal(t, 1, entries)
	assert.Equal(t, 1, runs)
}
