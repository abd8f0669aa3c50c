package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	entriesGenerated *prometheus.CounterVec
	slotConflicts    *prometheus.CounterVec
	slotsSkipped     *prometheus.CounterVec
	runDuration      *prometheus.HistogramVec
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, *prometheus.CounterVec, *prometheus.CounterVec, *prometheus.HistogramVec) {
	entries := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schedule_entries_generated_total",
			Help: "Number of schedule entries proposed by generation runs",
		},
		[]string{"schedule_type"},
	)
	conflicts := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schedule_slot_conflicts_total",
			Help: "Number of route-date slots rejected on booking clashes",
		},
		[]string{"schedule_type"},
	)
	skipped := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schedule_slots_skipped_total",
			Help: "Number of route-date slots skipped for lack of resources",
		},
		[]string{"schedule_type", "reason"},
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "schedule_generation_duration_seconds",
			Help:    "Wall time of full generation runs",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"schedule_type"},
	)
	return entries, conflicts, skipped, duration
}

func init() {
	entriesGenerated, slotConflicts, slotsSkipped, runDuration = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers generation metrics on the provided
// registry. If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(entriesGenerated, slotConflicts, slotsSkipped, runDuration)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	entriesGenerated, slotConflicts, slotsSkipped, runDuration = newCollectors()
	if reg != nil {
		reg.MustRegister(entriesGenerated, slotConflicts, slotsSkipped, runDuration)
	}
}
