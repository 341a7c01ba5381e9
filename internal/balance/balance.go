package balance

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/dreamware/hyperpart/internal/cluster"
	"github.com/dreamware/hyperpart/internal/dedup"
)

// DefaultThreshold is the variance at or above which rebalancing kicks in.
// Calibrated for raw block counts; clusters with heterogeneous capacities
// compare ratio variances and want a much smaller threshold.
const DefaultThreshold = 1.0

// DefaultMaxMoves bounds the number of block moves per rebalance call.
const DefaultMaxMoves = 10

// Result reports the outcome of one rebalance call.
type Result struct {
	Before float64 // Variance when rebalancing started
	After  float64 // Variance when it stopped
	Moves  int     // Blocks moved
}

// Variance returns the population variance of node loads: the mean of squared
// deviations from the mean load. Loads are raw stored-block counts for
// uniform capacities and utilization ratios when capacities differ.
func Variance(s *cluster.State) float64 {
	loads := nodeLoads(s)
	if len(loads) == 0 {
		return 0
	}

	mean := 0.0
	for _, l := range loads {
		mean += l
	}
	mean /= float64(len(loads))

	v := 0.0
	for _, l := range loads {
		d := l - mean
		v += d * d
	}
	return v / float64(len(loads))
}

// Rebalance reduces load variance by greedily moving single blocks from the
// most-loaded node to the least-loaded node that can legally accept them.
//
// Nothing happens when the starting variance is below threshold; a negative
// threshold disables the gate, since variance is never negative. Otherwise
// moves are applied one at a time until variance stops improving, no legal
// move remains, or maxMoves is reached. Every accepted move strictly reduces
// variance, so Result.After <= Result.Before always holds.
//
// A move that fails inside the cluster state is a bookkeeping violation and
// aborts the run with an error.
func Rebalance(s *cluster.State, threshold float64, maxMoves int) (Result, error) {
	before := Variance(s)
	res := Result{Before: before, After: before}
	if before < threshold {
		return res, nil
	}

	current := before
	for res.Moves < maxMoves {
		fp, from, to, ok := nextMove(s)
		if !ok {
			break
		}

		if err := s.MoveReplica(fp, from, to); err != nil {
			return res, fmt.Errorf("rebalance move %s %s->%s: %w", fp.Short(), from, to, err)
		}

		after := Variance(s)
		if after >= current {
			// The best available move doesn't help; roll it back and stop.
			if err := s.MoveReplica(fp, to, from); err != nil {
				return res, fmt.Errorf("rebalance rollback %s %s->%s: %w", fp.Short(), to, from, err)
			}
			break
		}

		current = after
		res.Moves++
		res.After = current
	}
	return res, nil
}

// nextMove picks the candidate move for one greedy iteration: the most-loaded
// donor, the least-loaded destination that can accept one of its blocks, and
// the lowest fingerprint movable between them. Returns ok=false when no legal
// move exists.
func nextMove(s *cluster.State) (fp dedup.Fingerprint, from, to string, ok bool) {
	nodes := s.Nodes()
	if len(nodes) < 2 {
		return "", "", "", false
	}

	loads := nodeLoads(s)

	// Stable order: ascending load, node order breaks ties.
	order := make([]int, len(nodes))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case loads[a] < loads[b]:
			return -1
		case loads[a] > loads[b]:
			return 1
		default:
			return a - b
		}
	})

	donor := nodes[order[len(order)-1]]
	if donor.Len() == 0 {
		return "", "", "", false
	}

	// Least-loaded legal destination first, lowest fingerprint second.
	for _, idx := range order[:len(order)-1] {
		target := nodes[idx]
		if target.Remaining() <= 0 {
			continue
		}
		for _, candidate := range donor.Blocks() {
			if !target.Has(candidate) {
				return candidate, donor.ID(), target.ID(), true
			}
		}
	}
	return "", "", "", false
}

// nodeLoads returns the per-node load values in node order.
func nodeLoads(s *cluster.State) []float64 {
	nodes := s.Nodes()
	loads := make([]float64, len(nodes))
	ratio := s.Heterogeneous()
	for i, n := range nodes {
		if ratio {
			loads[i] = n.Utilization()
		} else {
			loads[i] = float64(n.Len())
		}
	}
	return loads
}
