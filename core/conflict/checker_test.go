package conflict

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rjoseph-dev/crewsched/core/model"
)

type booking struct {
	res    Resource
	id     string
	date   time.Time
	window model.TimeWindow
	status model.TripStatus
}

// fakeBookings applies the half-open overlap rule in memory.
type fakeBookings struct {
	bookings []booking
	err      error
}

func (f *fakeBookings) CountOverlapping(_ context.Context, res Resource, id string, date time.Time, window model.TimeWindow, statuses []model.TripStatus) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	count := 0
	for _, b := range f.bookings {
		if b.res != res || b.id != id || !b.date.Equal(date) {
			continue
		}
		blocked := false
		for _, s := range statuses {
			if b.status == s {
				blocked = true
				break
			}
		}
		if blocked && b.window.Overlaps(window) {
			count++
		}
	}
	return count, nil
}

type nopLog struct{}

func (nopLog) Debugf(string, ...any)         {}
func (nopLog) Debugw(string, map[string]any) {}
func (nopLog) Infof(string, ...any)          {}
func (nopLog) Warnf(string, ...any)          {}
func (nopLog) Errorf(string, ...any)         {}

func window(a, b string) model.TimeWindow {
	s, _ := model.ParseTimeOfDay(a)
	e, _ := model.ParseTimeOfDay(b)
	return model.TimeWindow{Start: s, End: e}
}

var day = time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

func TestCheckNoBookings(t *testing.T) {
	c := NewChecker(&fakeBookings{}, nopLog{})
	r := c.Check(context.Background(), "b1", "d1", "c1", window("08:00", "18:00"), day)
	assert.False(t, r.HasConflict)
	assert.Zero(t, r.BusConflicts+r.DriverConflicts+r.ConductorConflicts)
}

func TestCheckBoundaryTouchIsNotConflict(t *testing.T) {
	src := &fakeBookings{bookings: []booking{
		{res: ResourceBus, id: "b1", date: day, window: window("08:00", "12:00"), status: model.TripScheduled},
	}}
	c := NewChecker(src, nopLog{})
	r := c.Check(context.Background(), "b1", "d1", "c1", window("12:00", "16:00"), day)
	assert.False(t, r.HasConflict)
}

func TestCheckGenuineOverlap(t *testing.T) {
	src := &fakeBookings{bookings: []booking{
		{res: ResourceBus, id: "b1", date: day, window: window("08:00", "12:00"), status: model.TripScheduled},
	}}
	c := NewChecker(src, nopLog{})
	r := c.Check(context.Background(), "b1", "d1", "c1", window("11:00", "15:00"), day)
	assert.True(t, r.HasConflict)
	assert.Equal(t, 1, r.BusConflicts)
	assert.Zero(t, r.DriverConflicts)
}

func TestCheckPerResourceCounts(t *testing.T) {
	src := &fakeBookings{bookings: []booking{
		{res: ResourceDriver, id: "d1", date: day, window: window("09:00", "11:00"), status: model.TripRunning},
		{res: ResourceConductor, id: "c1", date: day, window: window("10:00", "12:00"), status: model.TripBoarding},
		{res: ResourceConductor, id: "c1", date: day, window: window("13:00", "14:00"), status: model.TripActive},
	}}
	c := NewChecker(src, nopLog{})
	r := c.Check(context.Background(), "b1", "d1", "c1", window("08:00", "18:00"), day)
	assert.True(t, r.HasConflict)
	assert.Zero(t, r.BusConflicts)
	assert.Equal(t, 1, r.DriverConflicts)
	assert.Equal(t, 2, r.ConductorConflicts)
}

func TestCheckIgnoresTerminalStatuses(t *testing.T) {
	src := &fakeBookings{bookings: []booking{
		{res: ResourceBus, id: "b1", date: day, window: window("08:00", "18:00"), status: model.TripCompleted},
		{res: ResourceBus, id: "b1", date: day, window: window("08:00", "18:00"), status: model.TripCancelled},
	}}
	c := NewChecker(src, nopLog{})
	r := c.Check(context.Background(), "b1", "d1", "c1", window("09:00", "10:00"), day)
	assert.False(t, r.HasConflict)
}

func TestCheckOtherDateDoesNotConflict(t *testing.T) {
	src := &fakeBookings{bookings: []booking{
		{res: ResourceBus, id: "b1", date: day.AddDate(0, 0, 1), window: window("08:00", "18:00"), status: model.TripScheduled},
	}}
	c := NewChecker(src, nopLog{})
	r := c.Check(context.Background(), "b1", "d1", "c1", window("08:00", "18:00"), day)
	assert.False(t, r.HasConflict)
}

func TestCheckLookupFailureFailsClosed(t *testing.T) {
	c := NewChecker(&fakeBookings{err: errors.New("store down")}, nopLog{})
	r := c.Check(context.Background(), "b1", "d1", "c1", window("08:00", "18:00"), day)
	assert.True(t, r.HasConflict)
}

func TestRecheckMatchesCheck(t *testing.T) {
	src := &fakeBookings{bookings: []booking{
		{res: ResourceBus, id: "b1", date: day, window: window("09:00", "11:00"), status: model.TripScheduled},
	}}
	c := NewChecker(src, nopLog{})
	entry := model.ScheduleEntry{
		Bus: "b1", Driver: "d1", Conductor: "c1",
		Date: day, Window: window("08:00", "18:00"),
	}
	assert.True(t, c.Recheck(context.Background(), entry).HasConflict)
}
