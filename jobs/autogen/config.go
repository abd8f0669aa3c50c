package autogen

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/rjoseph-dev/crewsched/core/model"
)

// Config defines the periodic generation job.
type Config struct {
	Enabled bool `json:"enabled"`
	// CronSpec is a standard five-field cron expression in the job's
	// local time.
	CronSpec string `json:"cron_spec"`
	// ScheduleType selects what each trigger generates: "daily", "weekly"
	// or "monthly".
	ScheduleType string `json:"schedule_type"`
	// Commit persists accepted entries as trips after each run.
	Commit bool `json:"commit"`
}

// SetDefaults applies the overnight defaults: regenerate the daily plan
// at 03:00.
func (c *Config) SetDefaults() {
	if c.CronSpec == "" {
		c.CronSpec = "0 3 * * *"
	}
	if c.ScheduleType == "" {
		c.ScheduleType = string(model.ScheduleDaily)
	}
}

// Validate checks the cron expression and schedule type.
func (c Config) Validate() error {
	if _, err := cron.ParseStandard(c.CronSpec); err != nil {
		return fmt.Errorf("cron_spec: %w", err)
	}
	if _, err := model.ScheduleType(c.ScheduleType).Days(); err != nil {
		return err
	}
	return nil
}
