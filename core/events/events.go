package events

import (
	"time"

	"github.com/rjoseph-dev/crewsched/core/model"
)

// EntryEvent is published for every accepted schedule entry.
type EntryEvent struct {
	RunID string
	Entry model.ScheduleEntry
}

// ConflictEvent is published when a slot is rejected because of a booking
// clash.
type ConflictEvent struct {
	RunID  string
	Record model.ConflictRecord
}

// SlotSkippedEvent is published when a route/date slot is dropped for lack
// of crew or buses. Skips are not conflicts; they carry their own reason.
type SlotSkippedEvent struct {
	RunID  string
	Route  model.Route
	Date   time.Time
	Reason string
}

// RunCompletedEvent is published once per generation run.
type RunCompletedEvent struct {
	Summary model.Summary
}
