package cluster

import (
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/dreamware/hyperpart/internal/dedup"
	"github.com/dreamware/hyperpart/internal/storage"
)

// State is the cluster's placement state: the ordered node set plus the
// replica map from block fingerprint to the node IDs holding a copy.
//
// All placement mutations go through State so the replica map and the
// per-node stored sets cannot drift apart. State is not safe for concurrent
// use; it is exclusively owned by one simulation instance.
type State struct {
	nodes    []*storage.Node
	byID     map[string]*storage.Node
	replicas map[dedup.Fingerprint]map[string]struct{}
}

// NewState creates a cluster state over the given nodes.
// Node order is preserved and used for deterministic tie-breaking.
func NewState(nodes []*storage.Node) *State {
	byID := make(map[string]*storage.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID()] = n
	}
	return &State{
		nodes:    nodes,
		byID:     byID,
		replicas: make(map[dedup.Fingerprint]map[string]struct{}),
	}
}

// Nodes returns the nodes in their construction order.
// The slice is a copy; the nodes themselves are shared and must only be
// mutated through State.
func (s *State) Nodes() []*storage.Node {
	return append([]*storage.Node(nil), s.nodes...)
}

// Node returns the node with the given ID, or nil.
func (s *State) Node(id string) *storage.Node {
	return s.byID[id]
}

// AddReplica stores a block on a node and records the replica.
// Placing a replica the node already holds is a no-op success, matching the
// idempotent store semantics of the node itself.
func (s *State) AddReplica(fp dedup.Fingerprint, nodeID string) error {
	n := s.byID[nodeID]
	if n == nil {
		return fmt.Errorf("add replica: unknown node %q", nodeID)
	}
	if err := n.Store(fp); err != nil {
		return err
	}
	set := s.replicas[fp]
	if set == nil {
		set = make(map[string]struct{})
		s.replicas[fp] = set
	}
	set[nodeID] = struct{}{}
	return nil
}

// RemoveReplica removes one replica of a block from a node.
// Returns storage.ErrBlockNotFound if the node doesn't hold the block;
// the caller decides whether that is an error or a no-op.
func (s *State) RemoveReplica(fp dedup.Fingerprint, nodeID string) error {
	n := s.byID[nodeID]
	if n == nil {
		return fmt.Errorf("remove replica: unknown node %q", nodeID)
	}
	if err := n.Remove(fp); err != nil {
		return err
	}
	delete(s.replicas[fp], nodeID)
	if len(s.replicas[fp]) == 0 {
		delete(s.replicas, fp)
	}
	return nil
}

// MoveReplica relocates one replica of a block from one node to another.
// The move is rejected when the destination already holds the block or has no
// remaining capacity; a donor that doesn't hold the block is a bookkeeping
// violation surfaced as storage.ErrBlockNotFound.
func (s *State) MoveReplica(fp dedup.Fingerprint, fromID, toID string) error {
	to := s.byID[toID]
	if to == nil {
		return fmt.Errorf("move replica: unknown node %q", toID)
	}
	if to.Has(fp) {
		return fmt.Errorf("move replica: node %s already holds %s", toID, fp.Short())
	}
	if to.Remaining() <= 0 {
		return storage.ErrCapacityExceeded
	}
	if err := s.RemoveReplica(fp, fromID); err != nil {
		return err
	}
	// Destination was checked above, so this cannot fail.
	return s.AddReplica(fp, toID)
}

// RemoveBlock removes every replica of a block from the cluster.
// Removing an unknown block is a no-op; the returned count is how many
// replicas were dropped.
func (s *State) RemoveBlock(fp dedup.Fingerprint) int {
	ids := s.Replicas(fp)
	for _, id := range ids {
		// Replica map and node sets are coherent, so Remove cannot fail here.
		_ = s.RemoveReplica(fp, id)
	}
	return len(ids)
}

// Replicas returns the sorted node IDs holding a replica of the block.
func (s *State) Replicas(fp dedup.Fingerprint) []string {
	set := s.replicas[fp]
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Fingerprints returns all block fingerprints present in the cluster, sorted.
func (s *State) Fingerprints() []dedup.Fingerprint {
	fps := make([]dedup.Fingerprint, 0, len(s.replicas))
	for fp := range s.replicas {
		fps = append(fps, fp)
	}
	slices.Sort(fps)
	return fps
}

// UniqueBlocks returns the number of distinct blocks in the cluster.
func (s *State) UniqueBlocks() int {
	return len(s.replicas)
}

// TotalBlocks returns the total replica count across all nodes.
func (s *State) TotalBlocks() int {
	total := 0
	for _, n := range s.nodes {
		total += n.Len()
	}
	return total
}

// Heterogeneous reports whether node capacities differ. Load computations
// switch from raw counts to capacity-normalized ratios when they do.
func (s *State) Heterogeneous() bool {
	if len(s.nodes) < 2 {
		return false
	}
	first := s.nodes[0].Capacity()
	for _, n := range s.nodes[1:] {
		if n.Capacity() != first {
			return true
		}
	}
	return false
}

// Utilizations returns per-node load snapshots in node order.
func (s *State) Utilizations() []storage.NodeInfo {
	infos := make([]storage.NodeInfo, 0, len(s.nodes))
	for _, n := range s.nodes {
		infos = append(infos, n.Info())
	}
	return infos
}
