package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rjoseph-dev/crewsched/core/conflict"
	"github.com/rjoseph-dev/crewsched/core/model"
)

// MemoryStore keeps the whole roster in process memory. It backs tests and
// small single-node deployments; production setups use the gorm store.
type MemoryStore struct {
	mu     sync.RWMutex
	crew   []model.CrewMember
	duties []model.DutyRecord
	routes []model.Route
	buses  []model.Bus
	trips  []model.Trip
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

// AddCrew registers crew members.
func (s *MemoryStore) AddCrew(members ...model.CrewMember) {
	s.mu.Lock()
	s.crew = append(s.crew, members...)
	s.mu.Unlock()
}

// AddDuties registers duty history records.
func (s *MemoryStore) AddDuties(duties ...model.DutyRecord) {
	s.mu.Lock()
	s.duties = append(s.duties, duties...)
	s.mu.Unlock()
}

// AddRoutes registers routes.
func (s *MemoryStore) AddRoutes(routes ...model.Route) {
	s.mu.Lock()
	s.routes = append(s.routes, routes...)
	s.mu.Unlock()
}

// AddBuses registers buses.
func (s *MemoryStore) AddBuses(buses ...model.Bus) {
	s.mu.Lock()
	s.buses = append(s.buses, buses...)
	s.mu.Unlock()
}

// AddTrips registers committed trips.
func (s *MemoryStore) AddTrips(trips ...model.Trip) {
	s.mu.Lock()
	s.trips = append(s.trips, trips...)
	s.mu.Unlock()
}

// ListActive returns active crew of the role, filtered by depot unless
// depot is empty.
func (s *MemoryStore) ListActive(_ context.Context, role model.Role, depot model.DepotID) ([]model.CrewMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.CrewMember
	for _, m := range s.crew {
		if m.Role != role || !m.IsActive() {
			continue
		}
		if depot != "" && m.Depot != depot {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// ListSince returns duties starting on or after since with a matching
// status.
func (s *MemoryStore) ListSince(_ context.Context, crew model.CrewID, since time.Time, statuses []model.DutyStatus) ([]model.DutyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.DutyRecord
	for _, d := range s.duties {
		if d.CrewID != crew || d.Start.Before(since) {
			continue
		}
		for _, st := range statuses {
			if d.Status == st {
				out = append(out, d)
				break
			}
		}
	}
	return out, nil
}

// MostRecentCompleted returns the completed duty with the latest end time.
func (s *MemoryStore) MostRecentCompleted(_ context.Context, crew model.CrewID) (*model.DutyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *model.DutyRecord
	for i := range s.duties {
		d := s.duties[i]
		if d.CrewID != crew || d.Status != model.DutyCompleted {
			continue
		}
		if latest == nil || d.End.After(latest.End) {
			latest = &d
		}
	}
	return latest, nil
}

// ListActiveRoutes returns active routes, filtered by depot unless depot
// is empty.
func (s *MemoryStore) ListActiveRoutes(_ context.Context, depot model.DepotID) ([]model.Route, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Route
	for _, r := range s.routes {
		if r.Status != model.RouteActive {
			continue
		}
		if depot != "" && r.Depot != depot {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// ListActiveBuses returns active buses, excluding workshop vehicles when
// requested.
func (s *MemoryStore) ListActiveBuses(_ context.Context, excludeMaintenance bool) ([]model.Bus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Bus
	for _, b := range s.buses {
		if b.Status != model.BusActive {
			continue
		}
		if excludeMaintenance && b.Maintenance == model.InMaintenance {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// CountOverlapping counts committed trips occupying the resource on the
// date with a half-open window overlap.
func (s *MemoryStore) CountOverlapping(_ context.Context, res conflict.Resource, id string, date time.Time, window model.TimeWindow, statuses []model.TripStatus) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	day := model.StartOfDay(date)
	count := 0
	for _, t := range s.trips {
		if !model.StartOfDay(t.Date).Equal(day) {
			continue
		}
		switch res {
		case conflict.ResourceBus:
			if string(t.Bus) != id {
				continue
			}
		case conflict.ResourceDriver:
			if string(t.Driver) != id {
				continue
			}
		case conflict.ResourceConductor:
			if string(t.Conductor) != id {
				continue
			}
		default:
			continue
		}
		matched := false
		for _, st := range statuses {
			if t.Status == st {
				matched = true
				break
			}
		}
		if matched && t.Window.Overlaps(window) {
			count++
		}
	}
	return count, nil
}

// CommitSchedules turns accepted entries into committed trips. Every
// entry is re-checked against the committed state first; a collision
// drops the whole batch so two overlapping proposals cannot both land.
func (s *MemoryStore) CommitSchedules(_ context.Context, entries []model.ScheduleEntry) ([]model.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	committed := make([]model.Trip, 0, len(entries))
	for _, e := range entries {
		if s.overlapsLocked(e) {
			return nil, &CommitConflictError{Entry: e}
		}
		committed = append(committed, model.Trip{
			ID:        model.TripID(uuid.NewString()),
			Route:     e.Route,
			Bus:       e.Bus,
			Driver:    e.Driver,
			Conductor: e.Conductor,
			Date:      model.StartOfDay(e.Date),
			Window:    e.Window,
			Status:    model.TripScheduled,
		})
	}
	s.trips = append(s.trips, committed...)
	return committed, nil
}

func (s *MemoryStore) overlapsLocked(e model.ScheduleEntry) bool {
	day := model.StartOfDay(e.Date)
	for _, t := range s.trips {
		if !t.Date.Equal(day) {
			continue
		}
		blocking := false
		for _, st := range model.BlockingTripStatuses() {
			if t.Status == st {
				blocking = true
				break
			}
		}
		if !blocking || !t.Window.Overlaps(e.Window) {
			continue
		}
		if t.Bus == e.Bus || t.Driver == e.Driver || t.Conductor == e.Conductor {
			return true
		}
	}
	return false
}
