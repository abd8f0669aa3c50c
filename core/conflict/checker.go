package conflict

import (
	"context"
	"time"

	"github.com/rjoseph-dev/crewsched/core/logger"
	"github.com/rjoseph-dev/crewsched/core/model"
)

// Resource identifies which committed-booking column an overlap query
// matches against.
type Resource string

const (
	ResourceBus       Resource = "bus"
	ResourceDriver    Resource = "driver"
	ResourceConductor Resource = "conductor"
)

// BookingSource counts committed trips that occupy a resource. The interval
// comparison is half-open: a booking [s,e) overlaps the window [S,E) when
// s < E and e > S.
type BookingSource interface {
	CountOverlapping(ctx context.Context, res Resource, id string, date time.Time, window model.TimeWindow, statuses []model.TripStatus) (int, error)
}

// Report is the outcome of one conflict check, with per-resource counts
// for diagnostics.
type Report struct {
	HasConflict        bool
	BusConflicts       int
	DriverConflicts    int
	ConductorConflicts int
}

// Checker tests candidate assignments against existing committed bookings.
//
// The check reads a snapshot of the committed state; it is not re-validated
// atomically against a later write. The external commit step must call
// Recheck immediately before persisting, or rely on a storage-side
// uniqueness constraint over (resource, date, window).
type Checker struct {
	bookings BookingSource
	log      logger.Logger
}

// NewChecker creates a Checker backed by the given booking source.
func NewChecker(bookings BookingSource, log logger.Logger) *Checker {
	return &Checker{bookings: bookings, log: log}
}

// Check reports whether the candidate {bus, driver, conductor, window}
// collides with any committed booking on the given calendar date. A lookup
// failure is reported as a conflict: the engine never silently double-books
// a resource.
func (c *Checker) Check(ctx context.Context, bus model.BusID, driver, conductor model.CrewID, window model.TimeWindow, date time.Time) Report {
	day := model.StartOfDay(date)
	statuses := model.BlockingTripStatuses()

	busCount, err := c.bookings.CountOverlapping(ctx, ResourceBus, string(bus), day, window, statuses)
	if err != nil {
		c.log.Errorf("conflict: bus booking lookup failed for %s: %v", bus, err)
		return Report{HasConflict: true}
	}
	driverCount, err := c.bookings.CountOverlapping(ctx, ResourceDriver, string(driver), day, window, statuses)
	if err != nil {
		c.log.Errorf("conflict: driver booking lookup failed for %s: %v", driver, err)
		return Report{HasConflict: true}
	}
	conductorCount, err := c.bookings.CountOverlapping(ctx, ResourceConductor, string(conductor), day, window, statuses)
	if err != nil {
		c.log.Errorf("conflict: conductor booking lookup failed for %s: %v", conductor, err)
		return Report{HasConflict: true}
	}

	return Report{
		HasConflict:        busCount > 0 || driverCount > 0 || conductorCount > 0,
		BusConflicts:       busCount,
		DriverConflicts:    driverCount,
		ConductorConflicts: conductorCount,
	}
}

// Recheck re-validates a proposed entry against the current committed
// state. Intended for the commit step, which must run it in the same
// transaction as the write.
func (c *Checker) Recheck(ctx context.Context, e model.ScheduleEntry) Report {
	return c.Check(ctx, e.Bus, e.Driver, e.Conductor, e.Window, e.Date)
}
