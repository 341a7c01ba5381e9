package metrics

import (
	"golang.org/x/exp/slices"

	"github.com/dreamware/hyperpart/internal/cluster"
	"github.com/dreamware/hyperpart/internal/dedup"
	"github.com/dreamware/hyperpart/internal/storage"
)

// Savings quantifies the storage avoided by deduplication.
type Savings struct {
	DedupRatio      float64 // original file count / unique block count, >= 1
	SpaceSavedRatio float64 // 1 - unique/original, in [0, 1)
	WithReplication float64 // unique blocks * average replication
}

// Snapshot captures the observable state of one simulation step.
// Immutable once created; the simulation appends it to the run history.
type Snapshot struct {
	Step            int
	TotalBlocks     int // replicas stored across all nodes
	UniqueBlocks    int // distinct blocks present in the cluster
	VarianceBefore  float64
	VarianceAfter   float64
	Moves           int // blocks moved by rebalancing this step
	AvgReplication  float64
	DedupRatio      float64
	SpaceSavedRatio float64
	Degraded        []cluster.DegradedEvent
	Utilizations    []storage.NodeInfo
}

// ReplicaCount pairs a block with its replica count, for sorted reporting.
type ReplicaCount struct {
	Fingerprint dedup.Fingerprint
	Count       int
}

// ReplicationCounts returns how many replicas of each block the cluster holds.
func ReplicationCounts(s *cluster.State) map[dedup.Fingerprint]int {
	counts := make(map[dedup.Fingerprint]int)
	for _, fp := range s.Fingerprints() {
		counts[fp] = len(s.Replicas(fp))
	}
	return counts
}

// NodeUniqueCounts returns the number of distinct blocks per node.
func NodeUniqueCounts(s *cluster.State) map[string]int {
	counts := make(map[string]int)
	for _, n := range s.Nodes() {
		counts[n.ID()] = n.Len()
	}
	return counts
}

// TopReplicated returns the n most-replicated blocks, highest count first,
// ties broken by fingerprint so output is stable.
func TopReplicated(counts map[dedup.Fingerprint]int, n int) []ReplicaCount {
	out := make([]ReplicaCount, 0, len(counts))
	for fp, c := range counts {
		out = append(out, ReplicaCount{Fingerprint: fp, Count: c})
	}
	slices.SortFunc(out, func(a, b ReplicaCount) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		if a.Fingerprint < b.Fingerprint {
			return -1
		}
		if a.Fingerprint > b.Fingerprint {
			return 1
		}
		return 0
	})
	if n < len(out) {
		out = out[:n]
	}
	return out
}

// AvgReplication returns the mean replica count across unique blocks, 0 for
// an empty cluster.
func AvgReplication(s *cluster.State) float64 {
	unique := s.UniqueBlocks()
	if unique == 0 {
		return 0
	}
	return float64(s.TotalBlocks()) / float64(unique)
}

// ComputeSavings derives deduplication savings from the original and unique
// block counts. With no unique blocks there is nothing stored and every ratio
// is zero.
func ComputeSavings(original, unique int, avgReplication float64) Savings {
	if unique == 0 || original == 0 {
		return Savings{}
	}
	return Savings{
		DedupRatio:      float64(original) / float64(unique),
		SpaceSavedRatio: 1.0 - float64(unique)/float64(original),
		WithReplication: float64(unique) * avgReplication,
	}
}
