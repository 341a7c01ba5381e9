// Package cluster holds the authoritative placement state of the simulated
// storage cluster and the replica distributor that populates it.
//
// # State
//
// State pairs the ordered set of storage nodes with the replica map: for every
// unique block fingerprint, the set of node IDs currently holding a copy. The
// two views are kept coherent by routing every placement mutation through
// State (AddReplica, RemoveReplica, MoveReplica, RemoveBlock); nothing else
// writes to a node's stored set once it joins a State.
//
// State is a plain value owned by one simulation instance. There is no
// ambient or global cluster state: every component call receives the State it
// should operate on, and read accessors return copies so downstream consumers
// cannot mutate cluster internals.
//
// # Distribution
//
// Distributor places unique blocks onto nodes. For each block it selects R
// distinct nodes uniformly at random among nodes that still have capacity and
// do not already hold the block. When fewer than R such nodes exist, the
// block is placed on however many are available and a DegradedEvent records
// the shortfall; degraded replication is a warning, not an error.
//
// Randomness comes from a *rand.Rand injected at construction. With a fixed
// seed and a fixed block sequence, placement is fully reproducible, which the
// deterministic tests rely on.
package cluster
