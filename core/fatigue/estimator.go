package fatigue

import (
	"context"
	"math"
	"time"

	"github.com/rjoseph-dev/crewsched/core/logger"
	"github.com/rjoseph-dev/crewsched/core/model"
)

// DutySource provides read-only access to historical duty records.
type DutySource interface {
	// ListSince returns duties for the crew member whose start falls on or
	// after since and whose status is in statuses.
	ListSince(ctx context.Context, crew model.CrewID, since time.Time, statuses []model.DutyStatus) ([]model.DutyRecord, error)
	// MostRecentCompleted returns the completed duty with the latest end
	// time, or nil when the member has no completed duty.
	MostRecentCompleted(ctx context.Context, crew model.CrewID) (*model.DutyRecord, error)
}

// Factor caps for the fatigue score. The four partial scores sum to at
// most 100 before clamping.
const (
	distanceCap = 30
	hoursCap    = 30
	tripCap     = 20
	nightCap    = 20

	// defaultScore is returned when duty history cannot be read. A failed
	// lookup must never abort scheduling for the whole depot.
	defaultScore = 50
)

// Estimator scores recent workload for a crew member on a 0-100 scale.
// Higher means more fatigued.
type Estimator struct {
	duties DutySource
	policy Policy
	log    logger.Logger
	now    func() time.Time
}

// NewEstimator creates an Estimator reading history from duties.
func NewEstimator(duties DutySource, policy Policy, log logger.Logger) *Estimator {
	policy.SetDefaults()
	return &Estimator{duties: duties, policy: policy, log: log, now: time.Now}
}

// Score computes the fatigue score from the trailing lookback window,
// inclusive of today. Completed and still-active duties both count.
func (e *Estimator) Score(ctx context.Context, crew model.CrewMember) int {
	since := model.StartOfDay(e.now()).AddDate(0, 0, -(e.policy.LookbackDays - 1))
	duties, err := e.duties.ListSince(ctx, crew.ID, since,
		[]model.DutyStatus{model.DutyCompleted, model.DutyActive})
	if err != nil {
		e.log.Errorf("fatigue: duty history lookup for %s failed: %v", crew.ID, err)
		return defaultScore
	}

	var distance, hours float64
	var trips, nights int
	for _, d := range duties {
		distance += d.DistanceKM
		h := d.Duration.Hours()
		if h <= 0 {
			h = e.policy.DefaultDutyHours
		}
		hours += h
		if d.TripID != "" {
			trips++
		}
		startHour := e.policy.DefaultStartHour
		if !d.Start.IsZero() {
			startHour = d.Start.Hour()
		}
		if startHour >= e.policy.NightStartHour || startHour < e.policy.NightEndHour {
			nights++
		}
	}

	score := math.Min(distanceCap, distance/1000*0.5)
	score += math.Min(hoursCap, hours/24*hoursCap)
	score += math.Min(tripCap, float64(trips)*2)
	score += math.Min(nightCap, float64(nights)*5)

	s := int(math.Round(score))
	if s > 100 {
		s = 100
	}
	if s < 0 {
		s = 0
	}
	return s
}
