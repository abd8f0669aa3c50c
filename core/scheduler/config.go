package scheduler

import (
	"fmt"

	"github.com/rjoseph-dev/crewsched/core/model"
)

// Policy defines the slot parameters for generated assignments.
type Policy struct {
	// DefaultStart and DefaultEnd bound the service window assigned to
	// every slot, as "HH:MM" clock strings.
	DefaultStart string `json:"default_start"`
	DefaultEnd   string `json:"default_end"`
	// RequiredPairs is how many ranked pairs to request per slot. Only the
	// best one is used; requesting more keeps alternates visible in debug
	// logs.
	RequiredPairs int `json:"required_pairs"`
}

// SetDefaults applies the standard day-service window.
func (p *Policy) SetDefaults() {
	if p.DefaultStart == "" {
		p.DefaultStart = "08:00"
	}
	if p.DefaultEnd == "" {
		p.DefaultEnd = "18:00"
	}
	if p.RequiredPairs == 0 {
		p.RequiredPairs = 1
	}
}

// Window parses and validates the configured slot window.
func (p Policy) Window() (model.TimeWindow, error) {
	start, err := model.ParseTimeOfDay(p.DefaultStart)
	if err != nil {
		return model.TimeWindow{}, fmt.Errorf("default_start: %w", err)
	}
	end, err := model.ParseTimeOfDay(p.DefaultEnd)
	if err != nil {
		return model.TimeWindow{}, fmt.Errorf("default_end: %w", err)
	}
	w := model.TimeWindow{Start: start, End: end}
	if err := w.Validate(); err != nil {
		return model.TimeWindow{}, err
	}
	return w, nil
}

// Validate checks the policy is usable.
func (p Policy) Validate() error {
	if _, err := p.Window(); err != nil {
		return err
	}
	if p.RequiredPairs < 1 {
		return fmt.Errorf("required_pairs must be at least 1")
	}
	return nil
}
