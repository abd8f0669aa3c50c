package roster

import (
	"context"
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/rjoseph-dev/crewsched/core/fatigue"
	"github.com/rjoseph-dev/crewsched/core/model"
)

// CrewSource provides read-only access to the crew roster. An empty depot
// means every depot.
type CrewSource interface {
	ListActive(ctx context.Context, role model.Role, depot model.DepotID) ([]model.CrewMember, error)
}

// FatigueScorer scores recent workload; implemented by fatigue.Estimator.
type FatigueScorer interface {
	Score(ctx context.Context, crew model.CrewMember) int
}

// RoleStats summarizes fatigue across the active members of one role.
type RoleStats struct {
	Role          model.Role `json:"role"`
	Count         int        `json:"count"`
	MeanFatigue   float64    `json:"mean_fatigue"`
	StdDevFatigue float64    `json:"stddev_fatigue"`
	MaxFatigue    int        `json:"max_fatigue"`
	// Blocked counts members over the hard fatigue ceiling, i.e. crew that
	// no pairing can use today.
	Blocked int `json:"blocked"`
}

// Report is a depot-level fatigue overview for dashboards and capacity
// planning.
type Report struct {
	Depot       model.DepotID `json:"depot,omitempty"`
	GeneratedAt time.Time     `json:"generated_at"`
	Roles       []RoleStats   `json:"roles"`
}

// FatigueReport scores every active driver and conductor of the depot and
// aggregates per-role statistics.
func FatigueReport(ctx context.Context, crew CrewSource, scorer FatigueScorer, policy fatigue.Policy, depot model.DepotID) (Report, error) {
	policy.SetDefaults()
	report := Report{Depot: depot, GeneratedAt: time.Now()}
	for _, role := range []model.Role{model.RoleDriver, model.RoleConductor} {
		members, err := crew.ListActive(ctx, role, depot)
		if err != nil {
			return Report{}, fmt.Errorf("roster: %s roster lookup: %w", role, err)
		}
		report.Roles = append(report.Roles, roleStats(ctx, role, members, scorer, policy))
	}
	return report, nil
}

func roleStats(ctx context.Context, role model.Role, members []model.CrewMember, scorer FatigueScorer, policy fatigue.Policy) RoleStats {
	stats := RoleStats{Role: role, Count: len(members)}
	if len(members) == 0 {
		return stats
	}
	scores := make([]float64, 0, len(members))
	for _, m := range members {
		s := scorer.Score(ctx, m)
		scores = append(scores, float64(s))
		if s > stats.MaxFatigue {
			stats.MaxFatigue = s
		}
		if s > policy.HardFatigueCeiling {
			stats.Blocked++
		}
	}
	stats.MeanFatigue = stat.Mean(scores, nil)
	if len(scores) > 1 {
		stats.StdDevFatigue = stat.StdDev(scores, nil)
	}
	return stats
}
