package store

import (
	"fmt"

	"github.com/rjoseph-dev/crewsched/core/model"
)

// CommitConflictError reports that a proposed entry collided with a trip
// committed after the proposal was generated. The whole batch is dropped
// when any entry collides.
type CommitConflictError struct {
	Entry model.ScheduleEntry
}

func (e *CommitConflictError) Error() string {
	return fmt.Sprintf("store: entry for route %s on %s conflicts with a committed trip",
		e.Entry.Route, e.Entry.Date.Format("2006-01-02"))
}
