package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/rjoseph-dev/crewsched/core/metrics"
	"github.com/rjoseph-dev/crewsched/core/model"
)

// PromSink records generation results in Prometheus metrics.
type PromSink struct {
	entries   *prometheus.CounterVec
	conflicts prometheus.Counter
	fatigue   *prometheus.HistogramVec
	lastRun   prometheus.Gauge
}

// NewPromSink registers schedule metrics on the default Prometheus
// registerer. The metrics HTTP server is started separately using
// cfg.PrometheusPort.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	entries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_entries_recorded_total",
		Help: "Total number of schedule entries recorded by sinks",
	}, []string{"schedule_type"})
	conflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_conflicts_recorded_total",
		Help: "Total number of conflicts recorded by sinks",
	})
	fatigue := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "schedule_entry_combined_fatigue",
		Help:    "Combined crew fatigue of accepted entries",
		Buckets: prometheus.LinearBuckets(0, 10, 11),
	}, []string{"schedule_type"})
	lastRun := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "schedule_last_run_entries",
		Help: "Entries produced by the most recent generation run",
	})

	if err := reg.Register(entries); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			entries = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(conflicts); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			conflicts = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(fatigue); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			fatigue = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(lastRun); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			lastRun = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}

	return &PromSink{entries: entries, conflicts: conflicts, fatigue: fatigue, lastRun: lastRun}, nil
}

// RecordScheduleResult increments the counters for each accepted entry.
func (s *PromSink) RecordScheduleResult(res []coremetrics.ScheduleResult) error {
	for _, r := range res {
		st := string(r.ScheduleType)
		s.entries.WithLabelValues(st).Inc()
		s.fatigue.WithLabelValues(st).Observe(r.Entry.CombinedFatigue)
	}
	return nil
}

// RecordConflicts counts rejected slots.
func (s *PromSink) RecordConflicts(_ string, conflicts []model.ConflictRecord) error {
	s.conflicts.Add(float64(len(conflicts)))
	return nil
}

// RecordRunSummary tracks the size of the latest run.
func (s *PromSink) RecordRunSummary(summary model.Summary) error {
	s.lastRun.Set(float64(summary.TotalGenerated))
	return nil
}
