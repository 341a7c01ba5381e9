// Package storage implements the capacity-bounded storage node, the leaf
// container of the HyperPart cluster model.
//
// A Node tracks the set of unique block fingerprints it currently holds. The
// capacity bound is enforced on every store: a node never holds more blocks
// than its capacity, and callers that hit the bound receive
// ErrCapacityExceeded rather than a silently dropped write. Storing a block
// the node already holds is an idempotent no-op; removing an absent block
// fails with ErrBlockNotFound and the caller decides whether that matters
// (the simulation layer treats it as a no-op, the balancer treats it as a
// bookkeeping violation).
//
// Utilization is the stored-block count divided by capacity. A node with
// capacity zero reports utilization 0 and rejects every store, behaving as
// permanently full.
//
// Side effects are confined to the node's own stored set; nodes know nothing
// about each other or about replica placement, which lives in the cluster
// package.
package storage
