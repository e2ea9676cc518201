// Package cgraph provides an undirected compound graph: a plain vertex/edge
// graph plus an optional containment forest in which compound nodes hold
// other nodes.
//
// # Overview
//
// Spectral layout works on leaves. Compound nodes (groups, clusters,
// containers) are structural: they own children but are never placed
// directly. This package keeps both relations side by side so the layout
// core can ask for containment ([Graph.Children], [Graph.Ancestors],
// [Graph.Descendants]) and connectivity ([Graph.Neighbors], [Graph.Degree])
// through one read-only value.
//
// # Basic Usage
//
//	g := cgraph.New(nil)
//	g.AddNode(cgraph.Node{ID: "cluster"})
//	g.AddNode(cgraph.Node{ID: "a", Parent: "cluster"})
//	g.AddNode(cgraph.Node{ID: "b", Parent: "cluster"})
//	g.AddEdge(cgraph.Edge{From: "a", To: "b"})
//	if err := g.Validate(); err != nil { ... }
//
// Nodes keep their insertion order. [Graph.Nodes] and [Graph.NodeIDs] return
// them in that order and downstream index assignment depends on it.
//
// # Edges
//
// Edges are undirected. Parallel edges are stored and contribute to
// [Graph.Degree], while [Graph.Neighbors] lists every neighbor once. Edges
// may connect nodes at any nesting level, including compound nodes.
//
// # Concurrency
//
// A Graph is safe for concurrent reads once construction is finished.
package cgraph
