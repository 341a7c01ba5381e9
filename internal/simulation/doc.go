// Package simulation drives the HyperPart engine through multi-step
// workloads and records a metrics snapshot per step.
//
// A Simulation owns everything mutable in a run: the cluster state, the
// deduplication index, the seeded random source, and the growing snapshot
// history. Execution is single-threaded and synchronous: one Step at a time,
// no concurrent mutation, no I/O. A whole run is reproducible from
// (Config.Seed, workload script).
//
// Each step applies a workload Delta (files added, blocks removed, optional
// random churn), distributes the new unique blocks at the configured
// replication factor, rebalances when load variance crosses the threshold,
// rebuilds the sharing graph, and appends an immutable metrics.Snapshot.
//
// Error posture follows the engine taxonomy: removing an absent block and
// degraded replication are absorbed and recorded, while a fingerprint
// collision or a rebalance bookkeeping violation poisons the run; every
// subsequent Step fails fast with the original error.
package simulation
