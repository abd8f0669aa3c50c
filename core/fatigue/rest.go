package fatigue

import (
	"context"
	"time"

	"github.com/rjoseph-dev/crewsched/core/logger"
	"github.com/rjoseph-dev/crewsched/core/model"
)

// FullRestHours is assumed for crew without any completed duty and when
// history cannot be read. The calculator fails open toward availability.
const FullRestHours = 24

// RestCalculator computes elapsed rest since a crew member's last
// completed duty.
type RestCalculator struct {
	duties DutySource
	log    logger.Logger
	now    func() time.Time
}

// NewRestCalculator creates a RestCalculator reading history from duties.
func NewRestCalculator(duties DutySource, log logger.Logger) *RestCalculator {
	return &RestCalculator{duties: duties, log: log, now: time.Now}
}

// RestHours returns the hours elapsed since the most recently completed
// duty ended, never negative.
func (r *RestCalculator) RestHours(ctx context.Context, crew model.CrewID) float64 {
	last, err := r.duties.MostRecentCompleted(ctx, crew)
	if err != nil {
		r.log.Errorf("fatigue: last duty lookup for %s failed: %v", crew, err)
		return FullRestHours
	}
	if last == nil || last.End.IsZero() {
		return FullRestHours
	}
	hours := r.now().Sub(last.End).Hours()
	if hours < 0 {
		return 0
	}
	return hours
}
