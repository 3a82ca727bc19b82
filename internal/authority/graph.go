// Package authority derives per-document importance weights from the
// document reference graph via damped power iteration, and caches the
// resulting score vector for the lifetime of an index snapshot.
package authority

import (
	"sort"

	"github.com/Algolizen-Inc/LinkRanker/internal/index"
)

// Graph is a sparse directed reference graph over the document universe.
// Every known document is a node, including documents with no edges.
// Node order is ascending document ID so iteration is deterministic.
type Graph struct {
	nodes    []int64
	position map[int64]int
	outLinks [][]int
	numEdges int
}

// BuildGraph constructs the reference graph from a snapshot. Edges whose
// endpoints fall outside the document universe are dropped; self-loops are
// kept.
func BuildGraph(snapshot *index.Snapshot) *Graph {
	nodes := snapshot.DocIDs()
	g := &Graph{
		nodes:    nodes,
		position: make(map[int64]int, len(nodes)),
		outLinks: make([][]int, len(nodes)),
	}
	for i, id := range nodes {
		g.position[id] = i
	}
	for _, link := range snapshot.Links() {
		from, okFrom := g.position[link.From]
		to, okTo := g.position[link.To]
		if !okFrom || !okTo {
			continue
		}
		g.outLinks[from] = append(g.outLinks[from], to)
		g.numEdges++
	}
	for _, targets := range g.outLinks {
		sort.Ints(targets)
	}
	return g
}

// NumNodes returns the number of documents in the graph.
func (g *Graph) NumNodes() int {
	return len(g.nodes)
}

// NumEdges returns the number of reference edges in the graph.
func (g *Graph) NumEdges() int {
	return g.numEdges
}
