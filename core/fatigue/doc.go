// Package fatigue scores recent crew workload and decides assignment
// eligibility. The estimator aggregates distance, hours, trip count and
// night duties over a trailing window; the rest calculator measures time
// since the last completed duty; the policy combines both into a single
// eligibility gate.
package fatigue
