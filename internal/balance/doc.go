// Package balance detects load imbalance across storage nodes and corrects it
// with greedy block moves.
//
// # Load and variance
//
// A node's load is its stored-block count when all capacities are equal, and
// its capacity-normalized utilization ratio when they differ. The imbalance
// signal is the population variance of these loads: the mean of squared
// deviations from the mean load. Variance is always >= 0 and is exactly 0
// when every node carries the same load.
//
// # Rebalancing
//
// Rebalance runs only when variance is at or above the configured threshold.
// Each iteration moves one block from the most-loaded node to the
// least-loaded node that can legally accept it: the destination must not
// already hold a replica of that block and must have remaining capacity.
// Ties are broken deterministically, lowest fingerprint first and node order
// for equally loaded nodes, so rebalancing never consults the random source.
//
// The loop stops when a tentative move fails to strictly reduce variance
// (the move is rolled back), when no legal move exists, or when the iteration
// bound is hit. The bound protects against degenerate inputs where legal
// moves exist but oscillate. Moves are greedy, not globally optimal: the
// point is an explainable correction, not a minimal move plan.
//
// Two consequences worth naming:
//
//   - Variance never increases: every accepted move strictly reduced it.
//   - Rebalance is idempotent: on an already-balanced cluster it performs
//     zero moves and returns identical before/after variance.
package balance
