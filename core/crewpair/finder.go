package crewpair

import (
	"context"
	"sort"

	"github.com/rjoseph-dev/crewsched/core/fatigue"
	"github.com/rjoseph-dev/crewsched/core/logger"
	"github.com/rjoseph-dev/crewsched/core/model"
)

// CrewSource provides read-only access to the crew roster. An empty depot
// means every depot.
type CrewSource interface {
	ListActive(ctx context.Context, role model.Role, depot model.DepotID) ([]model.CrewMember, error)
}

// Pair is a ranked driver/conductor combination together with the scores
// that produced the ranking.
type Pair struct {
	Driver           model.CrewMember
	Conductor        model.CrewMember
	DriverFatigue    int
	ConductorFatigue int
	DriverRest       float64
	ConductorRest    float64
	// CombinedScore is the mean fatigue of the pair; lower is better.
	CombinedScore float64
	// CombinedRest is the rest of the lesser-rested member.
	CombinedRest float64
}

// Config holds finder options.
type Config struct {
	// AllowAnyDepot permits a depot-less query to consider the whole
	// roster. When false such queries return no pairs.
	AllowAnyDepot bool `json:"allow_any_depot"`
}

// FatigueScorer scores recent workload; implemented by fatigue.Estimator.
type FatigueScorer interface {
	Score(ctx context.Context, crew model.CrewMember) int
}

// RestProvider reports elapsed rest; implemented by fatigue.RestCalculator.
type RestProvider interface {
	RestHours(ctx context.Context, crew model.CrewID) float64
}

// Finder enumerates and ranks eligible driver/conductor pairs for a depot.
type Finder struct {
	crew      CrewSource
	estimator FatigueScorer
	rest      RestProvider
	policy    fatigue.Policy
	cfg       Config
	log       logger.Logger
}

// NewFinder creates a Finder. The policy gates individual members before
// any pairing happens.
func NewFinder(crew CrewSource, est FatigueScorer, rest RestProvider, policy fatigue.Policy, cfg Config, log logger.Logger) *Finder {
	policy.SetDefaults()
	return &Finder{crew: crew, estimator: est, rest: rest, policy: policy, cfg: cfg, log: log}
}

type scored struct {
	member model.CrewMember
	score  int
	rest   float64
}

// eligibleMembers loads active crew of one role and drops anyone failing
// the fatigue/rest gate. Scoring each member once keeps the pairing loop
// free of duplicate history lookups.
func (f *Finder) eligibleMembers(ctx context.Context, role model.Role, depot model.DepotID) ([]scored, error) {
	members, err := f.crew.ListActive(ctx, role, depot)
	if err != nil {
		return nil, err
	}
	out := make([]scored, 0, len(members))
	for _, m := range members {
		score := f.estimator.Score(ctx, m)
		rest := f.rest.RestHours(ctx, m.ID)
		if !f.policy.Eligible(score, rest) {
			f.log.Debugf("crewpair: %s %s ineligible (fatigue=%d rest=%.1fh)", role, m.ID, score, rest)
			continue
		}
		out = append(out, scored{member: m, score: score, rest: rest})
	}
	return out, nil
}

// FindEligiblePairs returns up to required pairs ranked by ascending
// combined fatigue, ties broken by descending combined rest. Lookup
// failures yield an empty list so the caller skips the slot instead of
// failing the whole run.
func (f *Finder) FindEligiblePairs(ctx context.Context, depot model.DepotID, required int) []Pair {
	if depot == "" && !f.cfg.AllowAnyDepot {
		f.log.Warnf("crewpair: depot-less query refused, any-depot fallback disabled")
		return nil
	}

	drivers, err := f.eligibleMembers(ctx, model.RoleDriver, depot)
	if err != nil {
		f.log.Errorf("crewpair: driver roster lookup failed for depot %q: %v", depot, err)
		return nil
	}
	conductors, err := f.eligibleMembers(ctx, model.RoleConductor, depot)
	if err != nil {
		f.log.Errorf("crewpair: conductor roster lookup failed for depot %q: %v", depot, err)
		return nil
	}

	pairs := make([]Pair, 0, len(drivers)*len(conductors))
	for _, d := range drivers {
		for _, c := range conductors {
			pairs = append(pairs, Pair{
				Driver:           d.member,
				Conductor:        c.member,
				DriverFatigue:    d.score,
				ConductorFatigue: c.score,
				DriverRest:       d.rest,
				ConductorRest:    c.rest,
				CombinedScore:    float64(d.score+c.score) / 2,
				CombinedRest:     min(d.rest, c.rest),
			})
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].CombinedScore != pairs[j].CombinedScore {
			return pairs[i].CombinedScore < pairs[j].CombinedScore
		}
		return pairs[i].CombinedRest > pairs[j].CombinedRest
	})

	if required > 0 && len(pairs) > required {
		pairs = pairs[:required]
	}
	return pairs
}
