package cgraph

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists in the graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the To node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrUnknownParent is returned by [Graph.Validate] when a node names a
	// parent that was never added.
	ErrUnknownParent = errors.New("unknown parent node")

	// ErrContainmentCycle is returned by [Graph.Validate] when following
	// parent links from a node leads back to the node itself.
	ErrContainmentCycle = errors.New("compound containment contains a cycle")
)

// Metadata stores arbitrary key-value pairs attached to nodes or the graph.
// Metadata maps are never nil after AddNode/AddEdge.
type Metadata map[string]any

// Node is a vertex of a compound graph. A node whose ID appears as another
// node's Parent is a compound (container) node; every other node is a leaf.
type Node struct {
	ID     string   // Unique identifier
	Parent string   // Containing compound node, empty for top-level nodes
	Meta   Metadata // Arbitrary key-value metadata (never nil after AddNode)
}

// Edge is an undirected connection between two nodes. From and To only
// record the order in which the endpoints were given.
type Edge struct {
	From string
	To   string
	Meta Metadata
}

// Graph is an undirected graph with an optional compound containment tree.
// Nodes keep their insertion order, which downstream consumers rely on for
// stable indexing.
//
// The zero value is not usable - use New to create a valid Graph instance.
// Graph is safe for concurrent reads but not for concurrent writes.
type Graph struct {
	nodes    map[string]*Node
	order    []string
	edges    []Edge
	children map[string][]string // parentID -> child IDs
	adjacent map[string][]string // nodeID -> distinct neighbor IDs
	degree   map[string]int      // nodeID -> incident edge count
	meta     Metadata
}

// New creates an empty Graph with optional graph-level metadata.
func New(meta Metadata) *Graph {
	if meta == nil {
		meta = Metadata{}
	}
	return &Graph{
		nodes:    make(map[string]*Node),
		children: make(map[string][]string),
		adjacent: make(map[string][]string),
		degree:   make(map[string]int),
		meta:     meta,
	}
}

// Meta returns the graph-level metadata map.
func (g *Graph) Meta() Metadata { return g.meta }

// AddNode adds a node to the graph. The parent does not need to exist yet,
// which lets readers add nodes in file order; use Validate once the graph is
// complete.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	node := &n
	g.nodes[n.ID] = node
	g.order = append(g.order, n.ID)
	if n.Parent != "" {
		g.children[n.Parent] = append(g.children[n.Parent], n.ID)
	}
	return nil
}

// AddEdge adds an undirected edge between two existing nodes. Parallel
// edges are kept and counted in Degree; Neighbors lists each neighbor once.
// A self-loop counts once towards the node's degree and never makes the
// node its own neighbor.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	if e.Meta == nil {
		e.Meta = Metadata{}
	}
	g.edges = append(g.edges, e)
	g.degree[e.From]++
	if e.From == e.To {
		return nil
	}
	g.degree[e.To]++
	g.link(e.From, e.To)
	g.link(e.To, e.From)
	return nil
}

func (g *Graph) link(from, to string) {
	if !slices.Contains(g.adjacent[from], to) {
		g.adjacent[from] = append(g.adjacent[from], to)
	}
}

// Node returns the node with the given ID and true, or nil and false.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// HasNode reports whether a node with the given ID exists.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Nodes returns all nodes in insertion order. The pointers refer to the
// graph's own nodes.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, len(g.order))
	for i, id := range g.order {
		nodes[i] = g.nodes[id]
	}
	return nodes
}

// NodeIDs returns all node IDs in insertion order.
func (g *Graph) NodeIDs() []string { return slices.Clone(g.order) }

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes, compound nodes included.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// LeafCount returns the number of non-compound nodes.
func (g *Graph) LeafCount() int {
	count := 0
	for _, id := range g.order {
		if !g.IsCompound(id) {
			count++
		}
	}
	return count
}

// Parent returns the ID of the compound node containing id, or "".
func (g *Graph) Parent(id string) string {
	if n, ok := g.nodes[id]; ok {
		return n.Parent
	}
	return ""
}

// Children returns the direct children of a compound node in insertion
// order. The returned slice should be treated as read-only.
func (g *Graph) Children(id string) []string { return g.children[id] }

// IsCompound reports whether the node contains at least one other node.
func (g *Graph) IsCompound(id string) bool { return len(g.children[id]) > 0 }

// Ancestors returns the chain of containing compound nodes, nearest first.
// The walk stops at a missing parent or when a cycle is detected.
func (g *Graph) Ancestors(id string) []string {
	var out []string
	seen := map[string]bool{id: true}
	for p := g.Parent(id); p != "" && !seen[p]; p = g.Parent(p) {
		if _, ok := g.nodes[p]; !ok {
			break
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// Descendants returns every node nested below id in breadth-first order.
func (g *Graph) Descendants(id string) []string {
	var out []string
	seen := map[string]bool{id: true}
	queue := slices.Clone(g.children[id])
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		if seen[curr] {
			continue
		}
		seen[curr] = true
		out = append(out, curr)
		queue = append(queue, g.children[curr]...)
	}
	return out
}

// Neighbors returns the distinct nodes sharing an edge with id, in the order
// the edges were added. The returned slice should be treated as read-only.
func (g *Graph) Neighbors(id string) []string { return g.adjacent[id] }

// Degree returns the number of edges incident to id.
func (g *Graph) Degree(id string) int { return g.degree[id] }

// Roots returns the top-level nodes (no parent) in insertion order.
func (g *Graph) Roots() []string {
	var roots []string
	for _, id := range g.order {
		if g.nodes[id].Parent == "" {
			roots = append(roots, id)
		}
	}
	return roots
}

// Clone returns a deep copy of the graph structure. Metadata maps are
// copied shallowly.
func (g *Graph) Clone() *Graph {
	out := New(cloneMeta(g.meta))
	for _, n := range g.Nodes() {
		_ = out.AddNode(Node{ID: n.ID, Parent: n.Parent, Meta: cloneMeta(n.Meta)})
	}
	for _, e := range g.edges {
		_ = out.AddEdge(Edge{From: e.From, To: e.To, Meta: cloneMeta(e.Meta)})
	}
	return out
}

func cloneMeta(m Metadata) Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Validate checks graph integrity and returns nil if valid. It verifies that
// every parent reference names an existing node and that the containment
// relation is a forest.
func (g *Graph) Validate() error {
	for _, id := range g.order {
		if p := g.nodes[id].Parent; p != "" {
			if _, ok := g.nodes[p]; !ok {
				return ErrUnknownParent
			}
		}
	}
	return g.detectContainmentCycles()
}

func (g *Graph) detectContainmentCycles() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(g.nodes))
	for _, id := range g.order {
		var path []string
		curr := id
		for curr != "" && color[curr] == white {
			color[curr] = gray
			path = append(path, curr)
			curr = g.nodes[curr].Parent
		}
		if curr != "" && color[curr] == gray {
			return ErrContainmentCycle
		}
		for _, p := range path {
			color[p] = black
		}
	}
	return nil
}
