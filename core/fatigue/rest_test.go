package fatigue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rjoseph-dev/crewsched/core/model"
	"github.com/rjoseph-dev/crewsched/infra/logger"
)

func newTestRest(src DutySource) *RestCalculator {
	r := NewRestCalculator(src, logger.NopLogger{})
	r.now = func() time.Time { return testNow }
	return r
}

func TestRestHoursNoCompletedDuty(t *testing.T) {
	r := newTestRest(&fakeDuties{})
	if got := r.RestHours(context.Background(), "d1"); got != FullRestHours {
		t.Errorf("rest = %v, want %v", got, FullRestHours)
	}
}

func TestRestHoursElapsed(t *testing.T) {
	last := model.DutyRecord{CrewID: "d1", End: testNow.Add(-10 * time.Hour), Status: model.DutyCompleted}
	r := newTestRest(&fakeDuties{recent: &last})
	if got := r.RestHours(context.Background(), "d1"); got != 10 {
		t.Errorf("rest = %v, want 10", got)
	}
}

func TestRestHoursNeverNegative(t *testing.T) {
	// An active duty recorded with an end time in the future must not
	// produce negative rest.
	last := model.DutyRecord{CrewID: "d1", End: testNow.Add(2 * time.Hour), Status: model.DutyCompleted}
	r := newTestRest(&fakeDuties{recent: &last})
	if got := r.RestHours(context.Background(), "d1"); got != 0 {
		t.Errorf("rest = %v, want 0", got)
	}
}

func TestRestHoursLookupFailure(t *testing.T) {
	r := newTestRest(&fakeDuties{err: errors.New("store down")})
	if got := r.RestHours(context.Background(), "d1"); got != FullRestHours {
		t.Errorf("rest on failure = %v, want %v", got, FullRestHours)
	}
}
