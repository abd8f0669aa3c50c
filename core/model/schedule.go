package model

import (
	"fmt"
	"time"
)

// ScheduleType selects the horizon of a generation run.
type ScheduleType string

const (
	ScheduleDaily   ScheduleType = "daily"
	ScheduleWeekly  ScheduleType = "weekly"
	ScheduleMonthly ScheduleType = "monthly"
)

// Days returns the number of consecutive days covered by the type.
func (t ScheduleType) Days() (int, error) {
	switch t {
	case ScheduleDaily:
		return 1, nil
	case ScheduleWeekly:
		return 7, nil
	case ScheduleMonthly:
		return 30, nil
	default:
		return 0, fmt.Errorf("unknown schedule type %q", t)
	}
}

// EntryStatus is the state of a proposed schedule entry.
type EntryStatus string

// EntryScheduled is the only status this engine emits; later lifecycle
// states belong to the committed trip, not the proposal.
const EntryScheduled EntryStatus = "scheduled"

// ScheduleEntry is one proposed {route, bus, crew, window} assignment.
// Entries are ephemeral: they exist only inside a generation result and
// are handed to the caller for persistence or display.
type ScheduleEntry struct {
	ID        string      `json:"id"`
	Route     RouteID     `json:"route_id"`
	RouteName string      `json:"route_name"`
	Bus       BusID       `json:"bus_id"`
	BusNumber string      `json:"bus_number"`
	Driver    CrewID      `json:"driver_id"`
	Conductor CrewID      `json:"conductor_id"`
	Date      time.Time   `json:"date"`
	Window    TimeWindow  `json:"-"`
	StartTime string      `json:"start_time"`
	EndTime   string      `json:"end_time"`
	Status    EntryStatus `json:"status"`

	// Fatigue scores that justified the pairing, kept for audit.
	DriverFatigue    int     `json:"driver_fatigue_score"`
	ConductorFatigue int     `json:"conductor_fatigue_score"`
	CombinedFatigue  float64 `json:"combined_fatigue_score"`
}

// ConflictRecord reports a slot that could not be filled because the chosen
// resources were already booked.
type ConflictRecord struct {
	Route     RouteID   `json:"route_id"`
	RouteName string    `json:"route_name"`
	Date      time.Time `json:"date"`
	Reason    string    `json:"reason"`
}

// Summary aggregates one generation run.
type Summary struct {
	RunID          string       `json:"run_id"`
	TotalGenerated int          `json:"total_generated"`
	ConflictCount  int          `json:"conflict_count"`
	ScheduleType   ScheduleType `json:"schedule_type"`
	GeneratedAt    time.Time    `json:"generated_at"`
}

// GenerationResult is the full output of one generation run.
type GenerationResult struct {
	Schedules []ScheduleEntry  `json:"schedules"`
	Conflicts []ConflictRecord `json:"conflicts"`
	Summary   Summary          `json:"summary"`
}
