package spectral

import "github.com/matzehuels/spectra/pkg/core/cgraph"

// Graph is the read-only view of a host graph that the layout needs. Edges
// are undirected and may touch compound nodes at any nesting level.
// [*cgraph.Graph] satisfies it.
type Graph interface {
	// NodeIDs returns every node, compound nodes included, in insertion order.
	NodeIDs() []string
	Parent(id string) string
	Children(id string) []string
	// Ancestors returns the containing compound nodes, nearest first.
	Ancestors(id string) []string
	Descendants(id string) []string
	// Neighbors returns the distinct nodes sharing an edge with id.
	Neighbors(id string) []string
	// Degree returns the number of edges incident to id.
	Degree(id string) int
	IsCompound(id string) bool
	HasNode(id string) bool
}

var _ Graph = (*cgraph.Graph)(nil)
