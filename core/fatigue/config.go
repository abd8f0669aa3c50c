package fatigue

import "fmt"

// Policy groups the fatigue and rest rules so they can be tuned from
// configuration instead of living as literals inside the algorithms.
type Policy struct {
	// LookbackDays is the trailing window, inclusive of today, over which
	// duties contribute to the fatigue score.
	LookbackDays int `json:"lookback_days"`
	// DefaultDutyHours is assumed for duties without a recorded duration.
	DefaultDutyHours float64 `json:"default_duty_hours"`
	// DefaultStartHour is assumed for duties without a start timestamp.
	DefaultStartHour int `json:"default_start_hour"`
	// NightStartHour and NightEndHour bound the night-duty band. A duty
	// starting at hour h counts as night when h >= start or h < end.
	NightStartHour int `json:"night_start_hour"`
	NightEndHour   int `json:"night_end_hour"`
	// HardFatigueCeiling blocks assignment outright when exceeded.
	HardFatigueCeiling int `json:"hard_fatigue_ceiling"`
	// ModerateFatigue requires MinRestHours of rest when exceeded.
	ModerateFatigue int     `json:"moderate_fatigue"`
	MinRestHours    float64 `json:"min_rest_hours"`
}

// SetDefaults applies the depot operations defaults.
func (p *Policy) SetDefaults() {
	if p.LookbackDays == 0 {
		p.LookbackDays = 7
	}
	if p.DefaultDutyHours == 0 {
		p.DefaultDutyHours = 8
	}
	if p.DefaultStartHour == 0 {
		p.DefaultStartHour = 8
	}
	if p.NightStartHour == 0 {
		p.NightStartHour = 22
	}
	if p.NightEndHour == 0 {
		p.NightEndHour = 6
	}
	if p.HardFatigueCeiling == 0 {
		p.HardFatigueCeiling = 70
	}
	if p.ModerateFatigue == 0 {
		p.ModerateFatigue = 50
	}
	if p.MinRestHours == 0 {
		p.MinRestHours = 8
	}
}

// Validate checks the policy is internally consistent.
func (p Policy) Validate() error {
	if p.LookbackDays <= 0 {
		return fmt.Errorf("lookback_days must be positive")
	}
	if p.HardFatigueCeiling <= p.ModerateFatigue {
		return fmt.Errorf("hard_fatigue_ceiling %d must exceed moderate_fatigue %d",
			p.HardFatigueCeiling, p.ModerateFatigue)
	}
	if p.MinRestHours < 0 {
		return fmt.Errorf("min_rest_hours must not be negative")
	}
	return nil
}

// Eligible applies the assignment gate in order: the hard fatigue ceiling
// first, then the rest buffer required for moderately fatigued crew. Pure,
// no I/O.
func (p Policy) Eligible(fatigueScore int, restHours float64) bool {
	if fatigueScore > p.HardFatigueCeiling {
		return false
	}
	if fatigueScore > p.ModerateFatigue && restHours < p.MinRestHours {
		return false
	}
	return true
}
