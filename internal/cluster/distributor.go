package cluster

import (
	"errors"
	"math/rand"

	"github.com/dreamware/hyperpart/internal/dedup"
	"github.com/dreamware/hyperpart/internal/storage"
)

// DegradedEvent records a block that could not reach its full replication
// factor because too few nodes had remaining capacity. It is a warning-level
// observation attached to the step snapshot, not an error.
type DegradedEvent struct {
	Fingerprint dedup.Fingerprint // The under-replicated block
	Want        int               // Requested replication factor
	Got         int               // Replicas actually placed
}

// Distributor places unique blocks onto cluster nodes at a fixed replication
// factor, selecting target nodes uniformly at random from those with
// remaining capacity.
type Distributor struct {
	r   int
	rng *rand.Rand
}

// NewDistributor creates a distributor with replication factor r drawing
// randomness from rng. The rng is shared with (and owned by) the simulation,
// keeping a whole run reproducible from a single seed.
func NewDistributor(r int, rng *rand.Rand) *Distributor {
	return &Distributor{r: r, rng: rng}
}

// ReplicationFactor returns the target number of replicas per block.
func (d *Distributor) ReplicationFactor() int { return d.r }

// Distribute places each block on up to R distinct nodes and updates the
// cluster state. Blocks are processed in the given order; callers pass sorted
// fingerprints so a fixed seed yields identical placements run over run.
//
// A node that rejects a placement with ErrCapacityExceeded is skipped and the
// next random candidate is tried. When fewer than R replicas could be placed,
// the shortfall is reported as a DegradedEvent. Any other storage error is
// returned as-is: it means the placement bookkeeping is broken.
func (d *Distributor) Distribute(s *State, fps []dedup.Fingerprint) ([]DegradedEvent, error) {
	var degraded []DegradedEvent

	for _, fp := range fps {
		placed, err := d.place(s, fp)
		if err != nil {
			return degraded, err
		}
		if placed < d.r {
			degraded = append(degraded, DegradedEvent{Fingerprint: fp, Want: d.r, Got: placed})
		}
	}
	return degraded, nil
}

// place stores one block on up to R random candidate nodes and returns how
// many replicas were placed.
func (d *Distributor) place(s *State, fp dedup.Fingerprint) (int, error) {
	// Candidates: nodes that can still accept this block. Built in node
	// order, then shuffled with the simulation's seeded source.
	var candidates []string
	for _, n := range s.Nodes() {
		if n.Remaining() > 0 && !n.Has(fp) {
			candidates = append(candidates, n.ID())
		}
	}
	d.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	placed := 0
	for _, id := range candidates {
		if placed == d.r {
			break
		}
		if err := s.AddReplica(fp, id); err != nil {
			if errors.Is(err, storage.ErrCapacityExceeded) {
				continue // not a candidate after all, try the next
			}
			return placed, err
		}
		placed++
	}
	return placed, nil
}
