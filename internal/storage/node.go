package storage

import (
	"errors"

	"golang.org/x/exp/slices"

	"github.com/dreamware/hyperpart/internal/dedup"
)

// ErrCapacityExceeded is returned when storing a block would push a node past
// its capacity. Callers (distributor, balancer) treat it as "this node is not
// a candidate", never as a silent drop.
var ErrCapacityExceeded = errors.New("node capacity exceeded")

// ErrBlockNotFound is returned when removing a block the node doesn't hold.
var ErrBlockNotFound = errors.New("block not found on node")

// Node is a capacity-bounded container for unique content blocks.
// It is not safe for concurrent use; the simulation mutates nodes from a
// single goroutine only.
type Node struct {
	id       string
	capacity int
	blocks   map[dedup.Fingerprint]struct{}
}

// NodeInfo is a read-only snapshot of a node's load, handed to external
// consumers (reports, exports) without exposing the mutable stored set.
type NodeInfo struct {
	ID          string  // Node identifier
	Stored      int     // Number of blocks currently held
	Capacity    int     // Maximum number of blocks
	Utilization float64 // Stored / Capacity, 0 for zero-capacity nodes
}

// NewNode creates a node with the given identifier and capacity.
// A capacity of zero is legal and means the node is permanently full.
func NewNode(id string, capacity int) *Node {
	if capacity < 0 {
		capacity = 0
	}
	return &Node{
		id:       id,
		capacity: capacity,
		blocks:   make(map[dedup.Fingerprint]struct{}),
	}
}

// ID returns the node identifier.
func (n *Node) ID() string { return n.id }

// Capacity returns the maximum number of blocks the node may hold.
func (n *Node) Capacity() int { return n.capacity }

// Len returns the number of blocks currently stored.
func (n *Node) Len() int { return len(n.blocks) }

// Has reports whether the node holds the given block.
func (n *Node) Has(fp dedup.Fingerprint) bool {
	_, ok := n.blocks[fp]
	return ok
}

// Remaining returns how many more blocks the node can accept.
func (n *Node) Remaining() int {
	return n.capacity - len(n.blocks)
}

// Store adds a block to the node.
// Storing a block the node already holds is a no-op success. Returns
// ErrCapacityExceeded if the node is full.
func (n *Node) Store(fp dedup.Fingerprint) error {
	if n.Has(fp) {
		return nil
	}
	if len(n.blocks) >= n.capacity {
		return ErrCapacityExceeded
	}
	n.blocks[fp] = struct{}{}
	return nil
}

// Remove deletes a block from the node.
// Returns ErrBlockNotFound if the node doesn't hold it.
func (n *Node) Remove(fp dedup.Fingerprint) error {
	if !n.Has(fp) {
		return ErrBlockNotFound
	}
	delete(n.blocks, fp)
	return nil
}

// Utilization returns the stored-block count divided by capacity.
// Zero-capacity nodes report 0: they can never hold anything, so there is no
// meaningful ratio, and they are treated as always full by placement.
func (n *Node) Utilization() float64 {
	if n.capacity == 0 {
		return 0
	}
	return float64(len(n.blocks)) / float64(n.capacity)
}

// Blocks returns the stored fingerprints in sorted order.
// The slice is a copy; mutating it has no effect on the node.
func (n *Node) Blocks() []dedup.Fingerprint {
	fps := make([]dedup.Fingerprint, 0, len(n.blocks))
	for fp := range n.blocks {
		fps = append(fps, fp)
	}
	slices.Sort(fps)
	return fps
}

// Info returns a read-only snapshot of the node's load.
func (n *Node) Info() NodeInfo {
	return NodeInfo{
		ID:          n.id,
		Stored:      len(n.blocks),
		Capacity:    n.capacity,
		Utilization: n.Utilization(),
	}
}
