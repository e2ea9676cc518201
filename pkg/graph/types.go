package graph

import (
	"encoding/json"

	"github.com/matzehuels/spectra/pkg/core/cgraph"
	"github.com/matzehuels/spectra/pkg/errors"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// EngineSpectral identifies layouts produced by the landmark spectral engine.
const EngineSpectral = "spectral"

// Internal metadata keys for serialization.
const (
	metaLabel = "_label" // Stores display label for round-trip fidelity
)

// =============================================================================
// Graph - Compound Graph Serialization
// =============================================================================

// Graph is the canonical serialization format for compound graphs.
// Used for CLI input files, API requests, and cache keys.
//
// Node order is significant: layouts index leaves in the order they appear,
// so readers and writers preserve it.
type Graph struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// =============================================================================
// Node - Unified Node Type
// =============================================================================

// Node is a graph vertex. A node referenced by another node's Parent is a
// compound node.
type Node struct {
	ID     string         `json:"id" bson:"id"`
	Label  string         `json:"label,omitempty" bson:"label,omitempty"`   // Display label (defaults to ID)
	Parent string         `json:"parent,omitempty" bson:"parent,omitempty"` // Containing compound node
	Meta   map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// =============================================================================
// Edge - Undirected Connection
// =============================================================================

// Edge connects two nodes. Direction is not interpreted by the layout.
type Edge struct {
	From string `json:"from" bson:"from"`
	To   string `json:"to" bson:"to"`
}

// =============================================================================
// cgraph.Graph ↔ Graph Conversion
// =============================================================================

// FromCGraph converts a compound graph to its serialization format.
// Node and edge order are preserved.
func FromCGraph(g *cgraph.Graph) Graph {
	nodes := g.Nodes()
	edges := g.Edges()
	out := Graph{
		Nodes: make([]Node, len(nodes)),
		Edges: make([]Edge, len(edges)),
	}
	for i, n := range nodes {
		out.Nodes[i] = nodeFromCGraph(n)
	}
	for i, e := range edges {
		out.Edges[i] = Edge{From: e.From, To: e.To}
	}
	return out
}

// ToCGraph converts a Graph to a compound graph and validates it.
// Structural problems are reported as INVALID_GRAPH errors.
func ToCGraph(gj Graph) (*cgraph.Graph, error) {
	g := cgraph.New(nil)

	for _, nj := range gj.Nodes {
		if err := errors.ValidateNodeID(nj.ID); err != nil {
			return nil, err
		}
		n := cgraph.Node{
			ID:     nj.ID,
			Parent: nj.Parent,
			Meta:   copyMeta(nj.Meta),
		}
		if n.Meta == nil {
			n.Meta = cgraph.Metadata{}
		}
		if nj.Label != "" {
			n.Meta[metaLabel] = nj.Label
		}
		if err := g.AddNode(n); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "add node %s", nj.ID)
		}
	}

	for _, ej := range gj.Edges {
		if err := g.AddEdge(cgraph.Edge{From: ej.From, To: ej.To}); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "add edge %s-%s", ej.From, ej.To)
		}
	}

	if err := g.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "validate graph")
	}
	return g, nil
}

// copyMeta creates a shallow copy of metadata to avoid mutation.
func copyMeta(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	result := make(map[string]any, len(m))
	for k, v := range m {
		result[k] = v
	}
	return result
}

// UnmarshalGraph deserializes JSON bytes to a Graph.
func UnmarshalGraph(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "unmarshal graph")
	}
	return g, nil
}

// =============================================================================
// Internal Helpers
// =============================================================================

// nodeFromCGraph converts a cgraph.Node to a serialization Node, restoring
// the label stored by ToCGraph.
func nodeFromCGraph(n *cgraph.Node) Node {
	node := Node{
		ID:     n.ID,
		Parent: n.Parent,
		Meta:   cleanMeta(n.Meta),
	}
	if label, ok := n.Meta[metaLabel].(string); ok {
		node.Label = label
	}
	return node
}

// cleanMeta returns a copy of metadata without internal keys (e.g., _label).
// Returns nil if the result would be empty.
func cleanMeta(m map[string]any) map[string]any {
	result := make(map[string]any, len(m))
	for k, v := range m {
		if k != metaLabel {
			result[k] = v
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
