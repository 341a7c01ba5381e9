package hypergraph

import (
	"golang.org/x/exp/slices"

	"github.com/dreamware/hyperpart/internal/cluster"
	"github.com/dreamware/hyperpart/internal/dedup"
)

// Graph is the sharing graph over storage nodes. It is immutable once built;
// derive a fresh one from the cluster state instead of patching it.
type Graph struct {
	nodes  []string
	util   map[string]float64
	adj    map[string]map[string]int
	shared map[string]map[string][]dedup.Fingerprint
}

// Edge is one weighted pair of nodes, with A < B lexicographically.
type Edge struct {
	A, B   string
	Weight int // number of blocks replicated on both A and B
}

// Build constructs the sharing graph for the given cluster state.
// Edge weight between two nodes is the size of the intersection of their
// stored-block sets; node pairs sharing nothing get no edge.
func Build(s *cluster.State) *Graph {
	nodes := s.Nodes()

	g := &Graph{
		nodes:  make([]string, 0, len(nodes)),
		util:   make(map[string]float64, len(nodes)),
		adj:    make(map[string]map[string]int),
		shared: make(map[string]map[string][]dedup.Fingerprint),
	}
	for _, n := range nodes {
		g.nodes = append(g.nodes, n.ID())
		g.util[n.ID()] = n.Utilization()
	}

	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			a, b := nodes[i], nodes[j]
			var common []dedup.Fingerprint
			for _, fp := range a.Blocks() {
				if b.Has(fp) {
					common = append(common, fp)
				}
			}
			if len(common) == 0 {
				continue
			}
			g.addEdge(a.ID(), b.ID(), common)
			g.addEdge(b.ID(), a.ID(), common)
		}
	}
	return g
}

func (g *Graph) addEdge(from, to string, common []dedup.Fingerprint) {
	if g.adj[from] == nil {
		g.adj[from] = make(map[string]int)
		g.shared[from] = make(map[string][]dedup.Fingerprint)
	}
	g.adj[from][to] = len(common)
	g.shared[from][to] = common
}

// Nodes returns the node IDs in cluster order.
func (g *Graph) Nodes() []string {
	return append([]string(nil), g.nodes...)
}

// Utilization returns the utilization ratio the node had when the graph was
// built.
func (g *Graph) Utilization(id string) float64 {
	return g.util[id]
}

// Weight returns the number of blocks shared by two nodes, 0 when they share
// nothing (or are the same node).
func (g *Graph) Weight(a, b string) int {
	return g.adj[a][b]
}

// Shared returns the sorted fingerprints replicated on both nodes.
func (g *Graph) Shared(a, b string) []dedup.Fingerprint {
	return append([]dedup.Fingerprint(nil), g.shared[a][b]...)
}

// Edges returns every positive-weight edge exactly once, ordered by node pair
// for deterministic consumption.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for from, neighbors := range g.adj {
		for to, w := range neighbors {
			if from < to {
				edges = append(edges, Edge{A: from, B: to, Weight: w})
			}
		}
	}
	slices.SortFunc(edges, func(x, y Edge) int {
		if x.A != y.A {
			if x.A < y.A {
				return -1
			}
			return 1
		}
		if x.B < y.B {
			return -1
		}
		if x.B > y.B {
			return 1
		}
		return 0
	})
	return edges
}
