package simulation

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog"
	"golang.org/x/exp/slices"

	"github.com/dreamware/hyperpart/internal/balance"
	"github.com/dreamware/hyperpart/internal/cluster"
	"github.com/dreamware/hyperpart/internal/dedup"
	"github.com/dreamware/hyperpart/internal/hypergraph"
	"github.com/dreamware/hyperpart/internal/metrics"
	"github.com/dreamware/hyperpart/internal/storage"
)

// ErrRunAborted wraps the fatal error that stopped a run; every Step after
// the failure returns it.
var ErrRunAborted = errors.New("simulation run aborted")

// Delta is the workload applied by one simulation step.
type Delta struct {
	// Add maps file labels to raw content. Duplicate content collapses to
	// one block; only blocks new to the cluster are distributed.
	Add map[string][]byte

	// Remove lists blocks to drop entirely, every replica at once.
	// Removing a block that isn't present is a no-op, which keeps the
	// driver robust to overlapping workload scripts.
	Remove []dedup.Fingerprint

	// Churn removes this many single replicas from randomly chosen nodes,
	// simulating uncoordinated loss. Replica counts may drop below the
	// replication factor; the next metrics snapshot shows the effect.
	Churn int
}

// Simulation owns one run: cluster state, dedup index, seeded randomness,
// and the snapshot history. Not safe for concurrent use.
type Simulation struct {
	cfg     Config
	rng     *rand.Rand
	state   *cluster.State
	dist    *cluster.Distributor
	index   *dedup.Index
	history []metrics.Snapshot
	log     zerolog.Logger
	failed  error
}

// New creates a simulation from the given configuration.
func New(cfg Config) (*Simulation, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	nodes := make([]*storage.Node, cfg.NumNodes)
	for i := range nodes {
		capacity := DefaultNodeCapacity
		if len(cfg.Capacities) > 0 {
			capacity = cfg.Capacities[i]
		}
		nodes[i] = storage.NewNode(fmt.Sprintf("N%d", i+1), capacity)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	return &Simulation{
		cfg:   cfg,
		rng:   rng,
		state: cluster.NewState(nodes),
		dist:  cluster.NewDistributor(cfg.ReplicationFactor, rng),
		index: dedup.NewIndex(),
		log:   zerolog.Nop(),
	}, nil
}

// SetLogger installs a structured logger for step-level events.
// The default is a no-op logger.
func (s *Simulation) SetLogger(log zerolog.Logger) {
	s.log = log
}

// Step applies one workload delta, rebalances if needed, and appends the
// resulting snapshot to the history.
//
// NotFound removals and degraded replication are absorbed; a fingerprint
// collision or rebalance bookkeeping violation fails the step and poisons
// the run.
func (s *Simulation) Step(delta Delta) (metrics.Snapshot, error) {
	if s.failed != nil {
		return metrics.Snapshot{}, fmt.Errorf("%w: %v", ErrRunAborted, s.failed)
	}

	step := len(s.history)

	fresh, err := s.ingest(delta.Add)
	if err != nil {
		s.failed = err
		return metrics.Snapshot{}, err
	}

	degraded, err := s.dist.Distribute(s.state, fresh)
	if err != nil {
		s.failed = err
		return metrics.Snapshot{}, err
	}
	for _, ev := range degraded {
		s.log.Warn().
			Int("step", step).
			Str("block", ev.Fingerprint.Short()).
			Int("want", ev.Want).
			Int("got", ev.Got).
			Msg("degraded replication")
	}

	for _, fp := range delta.Remove {
		if dropped := s.state.RemoveBlock(fp); dropped == 0 {
			s.log.Debug().Int("step", step).Str("block", fp.Short()).Msg("remove of absent block ignored")
		}
	}
	s.churn(delta.Churn)

	res, err := balance.Rebalance(s.state, s.cfg.RebalanceThreshold, s.cfg.MaxRebalanceMoves)
	if err != nil {
		s.failed = err
		return metrics.Snapshot{}, err
	}

	graph := hypergraph.Build(s.state)

	unique := s.state.UniqueBlocks()
	avgRepl := metrics.AvgReplication(s.state)
	savings := metrics.ComputeSavings(s.index.OriginalCount(), unique, avgRepl)

	snap := metrics.Snapshot{
		Step:            step,
		TotalBlocks:     s.state.TotalBlocks(),
		UniqueBlocks:    unique,
		VarianceBefore:  res.Before,
		VarianceAfter:   res.After,
		Moves:           res.Moves,
		AvgReplication:  avgRepl,
		DedupRatio:      savings.DedupRatio,
		SpaceSavedRatio: savings.SpaceSavedRatio,
		Degraded:        degraded,
		Utilizations:    s.state.Utilizations(),
	}
	s.history = append(s.history, snap)

	s.log.Info().
		Int("step", step).
		Int("total_blocks", snap.TotalBlocks).
		Int("unique_blocks", snap.UniqueBlocks).
		Float64("variance_before", snap.VarianceBefore).
		Float64("variance_after", snap.VarianceAfter).
		Int("moves", snap.Moves).
		Float64("dedup_ratio", snap.DedupRatio).
		Int("graph_edges", len(graph.Edges())).
		Msg("step complete")

	return snap, nil
}

// Run applies the script deltas in order and returns the full history.
func (s *Simulation) Run(script []Delta) ([]metrics.Snapshot, error) {
	for _, delta := range script {
		if _, err := s.Step(delta); err != nil {
			return s.History(), err
		}
	}
	return s.History(), nil
}

// ingest hashes new files into the dedup index and returns the fingerprints
// that are new to the cluster, sorted for deterministic placement.
func (s *Simulation) ingest(files map[string][]byte) ([]dedup.Fingerprint, error) {
	labels := make([]string, 0, len(files))
	for label := range files {
		labels = append(labels, label)
	}
	slices.Sort(labels)

	seen := make(map[dedup.Fingerprint]bool)
	var fresh []dedup.Fingerprint
	for _, label := range labels {
		fp, _, err := s.index.Add(label, files[label])
		if err != nil {
			return nil, err
		}
		// A block already replicated in the cluster needs no placement; one
		// removed earlier and re-ingested does.
		if !seen[fp] && len(s.state.Replicas(fp)) == 0 {
			seen[fp] = true
			fresh = append(fresh, fp)
		}
	}
	slices.Sort(fresh)
	return fresh, nil
}

// churn removes up to n single replicas from randomly chosen nodes.
func (s *Simulation) churn(n int) {
	nodes := s.state.Nodes()
	for i := 0; i < n; i++ {
		if s.state.TotalBlocks() == 0 {
			return
		}
		// Pick a random node, walking forward to the next non-empty one.
		idx := s.rng.Intn(len(nodes))
		for nodes[idx].Len() == 0 {
			idx = (idx + 1) % len(nodes)
		}
		node := nodes[idx]
		blocks := node.Blocks()
		fp := blocks[s.rng.Intn(len(blocks))]
		// Node and block were just observed, so removal cannot fail.
		_ = s.state.RemoveReplica(fp, node.ID())
	}
}

// Utilizations returns per-node load snapshots in node order.
func (s *Simulation) Utilizations() []storage.NodeInfo {
	return s.state.Utilizations()
}

// Hypergraph rebuilds and returns the sharing graph for the current state.
func (s *Simulation) Hypergraph() *hypergraph.Graph {
	return hypergraph.Build(s.state)
}

// History returns a copy of the snapshot history in step order.
// The copy is deep enough that consumers cannot reach the stored snapshots
// through the slice fields.
func (s *Simulation) History() []metrics.Snapshot {
	out := make([]metrics.Snapshot, len(s.history))
	for i, snap := range s.history {
		snap.Degraded = append([]cluster.DegradedEvent(nil), snap.Degraded...)
		snap.Utilizations = append([]storage.NodeInfo(nil), snap.Utilizations...)
		out[i] = snap
	}
	return out
}

// ReplicationCounts returns the replica count of every block in the cluster.
func (s *Simulation) ReplicationCounts() map[dedup.Fingerprint]int {
	return metrics.ReplicationCounts(s.state)
}

// DefaultScript generates the canonical churn workload: each step adds two
// small files and, after the first step, removes one random replica.
func DefaultScript(steps int) []Delta {
	script := make([]Delta, 0, steps)
	for step := 0; step < steps; step++ {
		add := make(map[string][]byte, 2)
		for i := 0; i < 2; i++ {
			label := fmt.Sprintf("step%d_file%d.txt", step, i)
			add[label] = []byte(fmt.Sprintf("content_%d_%d", step, i))
		}
		delta := Delta{Add: add}
		if step > 0 {
			delta.Churn = 1
		}
		script = append(script, delta)
	}
	return script
}
