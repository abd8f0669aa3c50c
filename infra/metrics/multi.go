package metrics

import (
	coremetrics "github.com/rjoseph-dev/crewsched/core/metrics"
	"github.com/rjoseph-dev/crewsched/core/model"
)

// MultiSink fans generation results out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordScheduleResult forwards the record to all sinks, returning the
// first error encountered.
func (m *MultiSink) RecordScheduleResult(res []coremetrics.ScheduleResult) error {
	for _, s := range m.Sinks {
		if err := s.RecordScheduleResult(res); err != nil {
			return err
		}
	}
	return nil
}

// RecordConflicts forwards conflicts to sinks that support them.
func (m *MultiSink) RecordConflicts(runID string, conflicts []model.ConflictRecord) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.ConflictRecorder); ok {
			if err := rec.RecordConflicts(runID, conflicts); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordRunSummary forwards summaries to sinks that support them.
func (m *MultiSink) RecordRunSummary(summary model.Summary) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.RunRecorder); ok {
			if err := rec.RecordRunSummary(summary); err != nil {
				return err
			}
		}
	}
	return nil
}
