package hypergraph

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/hyperpart/internal/cluster"
	"github.com/dreamware/hyperpart/internal/dedup"
	"github.com/dreamware/hyperpart/internal/storage"
)

func newState(t *testing.T, numNodes int) *cluster.State {
	t.Helper()
	nodes := make([]*storage.Node, numNodes)
	for i := range nodes {
		nodes[i] = storage.NewNode(fmt.Sprintf("N%d", i+1), 10)
	}
	return cluster.NewState(nodes)
}

func place(t *testing.T, s *cluster.State, content string, nodeIDs ...string) dedup.Fingerprint {
	t.Helper()
	fp := dedup.Hash([]byte(content))
	for _, id := range nodeIDs {
		require.NoError(t, s.AddReplica(fp, id))
	}
	return fp
}

// TestBuildWeights verifies edge weights equal stored-set intersections.
func TestBuildWeights(t *testing.T) {
	s := newState(t, 3)

	place(t, s, "a", "N1", "N2") // shared by N1,N2
	place(t, s, "b", "N1", "N2") // shared by N1,N2
	place(t, s, "c", "N2", "N3") // shared by N2,N3
	place(t, s, "d", "N1")       // unshared

	g := Build(s)

	assert.Equal(t, 2, g.Weight("N1", "N2"))
	assert.Equal(t, 2, g.Weight("N2", "N1"))
	assert.Equal(t, 1, g.Weight("N2", "N3"))
	assert.Equal(t, 0, g.Weight("N1", "N3"))

	edges := g.Edges()
	require.Len(t, edges, 2)
	assert.Equal(t, Edge{A: "N1", B: "N2", Weight: 2}, edges[0])
	assert.Equal(t, Edge{A: "N2", B: "N3", Weight: 1}, edges[1])
}

// TestBuildEmptyIntersectionsOmitted verifies weight-zero pairs get no edge.
func TestBuildEmptyIntersectionsOmitted(t *testing.T) {
	s := newState(t, 3)
	place(t, s, "a", "N1")
	place(t, s, "b", "N2")
	place(t, s, "c", "N3")

	g := Build(s)
	assert.Empty(t, g.Edges())
	assert.Equal(t, []string{"N1", "N2", "N3"}, g.Nodes())
}

// TestBuildSharedBlocks verifies the shared-fingerprint listing on edges.
func TestBuildSharedBlocks(t *testing.T) {
	s := newState(t, 2)
	fpA := place(t, s, "a", "N1", "N2")
	fpB := place(t, s, "b", "N1", "N2")
	place(t, s, "c", "N1")

	g := Build(s)
	shared := g.Shared("N1", "N2")
	require.Len(t, shared, 2)
	assert.ElementsMatch(t, []dedup.Fingerprint{fpA, fpB}, shared)
	assert.Equal(t, shared, g.Shared("N2", "N1"))
}

// TestBuildCarriesUtilization verifies per-node utilization is captured at
// build time and frozen there.
func TestBuildCarriesUtilization(t *testing.T) {
	s := newState(t, 2)
	place(t, s, "a", "N1")
	place(t, s, "b", "N1")

	g := Build(s)
	assert.Equal(t, 0.2, g.Utilization("N1"))
	assert.Equal(t, 0.0, g.Utilization("N2"))

	// Later cluster changes don't touch an already-built graph
	place(t, s, "c", "N2")
	assert.Equal(t, 0.0, g.Utilization("N2"))
	assert.Equal(t, 0, g.Weight("N1", "N2"))
}

// TestBuildEmptyCluster verifies the degenerate case.
func TestBuildEmptyCluster(t *testing.T) {
	g := Build(cluster.NewState(nil))
	assert.Empty(t, g.Nodes())
	assert.Empty(t, g.Edges())
}
