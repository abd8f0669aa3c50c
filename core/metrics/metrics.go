package metrics

import (
	"time"

	"github.com/rjoseph-dev/crewsched/core/model"
)

// ScheduleResult represents one generated schedule entry to be recorded.
type ScheduleResult struct {
	RunID        string
	ScheduleType model.ScheduleType
	Entry        model.ScheduleEntry
	GeneratedAt  time.Time
}

// MetricsSink records generation results for observability purposes.
type MetricsSink interface {
	RecordScheduleResult(results []ScheduleResult) error
}

// ConflictRecorder is an optional capability for sinks that also track
// rejected slots.
type ConflictRecorder interface {
	RecordConflicts(runID string, conflicts []model.ConflictRecord) error
}

// RunRecorder is an optional capability for sinks that record per-run
// summaries.
type RunRecorder interface {
	RecordRunSummary(summary model.Summary) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordScheduleResult([]ScheduleResult) error { return nil }
