// Package hypergraph derives the sharing graph over storage nodes: an edge
// between two nodes weighted by how many distinct blocks both replicate.
//
// The graph is a plain adjacency map (node ID -> neighbor ID -> weight)
// rebuilt from scratch on every Build call, so it is always consistent with
// whatever cluster state produced it and carries no incremental bookkeeping.
// Zero-weight pairs get no edge.
package hypergraph
