// Package metrics computes the derived observations of a simulation run:
// replication counts, deduplication savings, and the per-step Snapshot
// appended to the run history.
//
// Everything here is a pure projection of cluster state. Snapshots are values
// and are never mutated after creation; downstream consumers (CSV export,
// dashboards, reports) read them without touching cluster internals.
package metrics
