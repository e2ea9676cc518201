package spectral

import (
	"slices"
	"strconv"

	"github.com/matzehuels/spectra/pkg/errors"
)

// connectorPrefix names synthetic connectors: dummy1, dummy2, ...
const connectorPrefix = "dummy"

// Connector is a synthetic vertex inserted to join disconnected groups. It
// takes part in distance computation but never appears in a [Result].
type Connector struct {
	ID      string   `json:"id"`
	Targets []string `json:"targets"` // Anchor vertices, possibly compound
}

// Scope records how one set of sibling vertices was repaired. Parent is the
// compound node owning the siblings, or "" for the top level.
type Scope struct {
	Parent  string     `json:"parent,omitempty"`
	Groups  [][]string `json:"groups"`
	Anchors []string   `json:"anchors"`
}

// Flattened is the connected, flat view of a compound graph that the
// distance and eigenvector stages operate on.
//
// Order maps index to vertex ID: leaves first in insertion order, followed by
// connectors in creation order. Compound vertices are not indexed; they
// resolve through Representatives to one of their leaves.
type Flattened struct {
	Order           []string
	Index           map[string]int
	Adjacency       [][]int
	Leaves          int
	Connectors      []Connector
	Representatives map[string]string
	Scopes          []Scope
}

// Size returns the number of indexed vertices, connectors included.
func (f *Flattened) Size() int { return len(f.Order) }

// Resolve maps a vertex to its index. Compound vertices resolve to their
// representative leaf.
func (f *Flattened) Resolve(id string) (int, bool) {
	if rep, ok := f.Representatives[id]; ok {
		id = rep
	}
	idx, ok := f.Index[id]
	return idx, ok
}

// Normalize flattens g into a connected adjacency model. Disconnected
// sibling groups are joined by synthetic connectors, nested scopes first.
// It returns an EMPTY_GRAPH error when g has no leaf vertices.
func Normalize(g Graph) (*Flattened, error) {
	ids := g.NodeIDs()

	f := &Flattened{
		Index:           make(map[string]int, len(ids)),
		Representatives: make(map[string]string),
	}
	for _, id := range ids {
		if !g.IsCompound(id) {
			f.Index[id] = len(f.Order)
			f.Order = append(f.Order, id)
		}
	}
	f.Leaves = len(f.Order)
	if f.Leaves == 0 {
		return nil, errors.New(errors.ErrCodeEmptyGraph, "graph has no leaf vertices")
	}

	for _, id := range ids {
		if g.IsCompound(id) {
			f.Representatives[id] = Representative(g, id)
		}
	}

	namer := connectorNamer{g: g}
	for _, scope := range repairOrder(g, ids) {
		var members []string
		if scope == "" {
			members = TopMost(g, ids)
		} else {
			members = g.Children(scope)
		}
		groups := Components(g, members)
		s := Scope{Parent: scope, Groups: groups}
		for _, grp := range groups {
			s.Anchors = append(s.Anchors, minDegree(g, grp))
		}
		for i := 1; i < len(s.Anchors); i++ {
			f.Connectors = append(f.Connectors, Connector{
				ID:      namer.next(),
				Targets: []string{s.Anchors[0], s.Anchors[i]},
			})
		}
		f.Scopes = append(f.Scopes, s)
	}

	for _, c := range f.Connectors {
		f.Index[c.ID] = len(f.Order)
		f.Order = append(f.Order, c.ID)
	}

	f.Adjacency = make([][]int, len(f.Order))
	for _, id := range ids {
		from, _ := f.Resolve(id)
		for _, nb := range g.Neighbors(id) {
			to, ok := f.Resolve(nb)
			if !ok {
				continue
			}
			f.link(from, to)
		}
	}
	for _, c := range f.Connectors {
		from := f.Index[c.ID]
		for _, t := range c.Targets {
			to, _ := f.Resolve(t)
			f.link(from, to)
		}
	}
	return f, nil
}

func (f *Flattened) link(a, b int) {
	if a == b {
		return
	}
	if !slices.Contains(f.Adjacency[a], b) {
		f.Adjacency[a] = append(f.Adjacency[a], b)
	}
	if !slices.Contains(f.Adjacency[b], a) {
		f.Adjacency[b] = append(f.Adjacency[b], a)
	}
}

// repairOrder lists the compound scopes deepest first, ties in insertion
// order, followed by "" for the top level.
func repairOrder(g Graph, ids []string) []string {
	var compounds []string
	depth := make(map[string]int)
	for _, id := range ids {
		if g.IsCompound(id) {
			compounds = append(compounds, id)
			depth[id] = len(g.Ancestors(id))
		}
	}
	slices.SortStableFunc(compounds, func(a, b string) int {
		return depth[b] - depth[a]
	})
	return append(compounds, "")
}

// TopMost returns the members of ids that have no ancestor in ids,
// preserving order.
func TopMost(g Graph, ids []string) []string {
	in := make(map[string]bool, len(ids))
	for _, id := range ids {
		in[id] = true
	}
	var out []string
	for _, id := range ids {
		if !slices.ContainsFunc(g.Ancestors(id), func(a string) bool { return in[a] }) {
			out = append(out, id)
		}
	}
	return out
}

// Components partitions the top-most vertices of scope into connected
// groups in discovery order. A vertex's reach includes every edge of its
// descendants; an edge endpoint outside scope counts through its nearest
// ancestor inside scope and is ignored when it has none.
func Components(g Graph, scope []string) [][]string {
	top := TopMost(g, scope)
	in := make(map[string]bool, len(top))
	for _, id := range top {
		in[id] = true
	}
	project := func(id string) string {
		if in[id] {
			return id
		}
		for _, a := range g.Ancestors(id) {
			if in[a] {
				return a
			}
		}
		return ""
	}

	visited := make(map[string]bool, len(top))
	var groups [][]string
	for _, start := range top {
		if visited[start] {
			continue
		}
		var group, queue []string
		enqueue := func(id string) {
			visited[id] = true
			group = append(group, id)
			queue = append(queue, id)
			queue = append(queue, g.Descendants(id)...)
		}
		enqueue(start)
		for len(queue) > 0 {
			curr := queue[0]
			queue = queue[1:]
			for _, nb := range g.Neighbors(curr) {
				if p := project(nb); p != "" && !visited[p] {
					enqueue(p)
				}
			}
		}
		groups = append(groups, group)
	}
	return groups
}

// Representative picks the leaf that stands in for compound vertex id: the
// nearest generation holding a leaf is found by following the first child,
// and its leaf with the fewest incident edges wins (first on ties).
func Representative(g Graph, id string) string {
	gen := g.Children(id)
	for len(gen) > 0 {
		var leaves []string
		for _, c := range gen {
			if !g.IsCompound(c) {
				leaves = append(leaves, c)
			}
		}
		if len(leaves) > 0 {
			return minDegree(g, leaves)
		}
		gen = g.Children(gen[0])
	}
	return id
}

func minDegree(g Graph, ids []string) string {
	best := ids[0]
	for _, id := range ids[1:] {
		if g.Degree(id) < g.Degree(best) {
			best = id
		}
	}
	return best
}

type connectorNamer struct {
	g    Graph
	used map[string]bool
	n    int
}

func (c *connectorNamer) next() string {
	if c.used == nil {
		c.used = make(map[string]bool)
	}
	for {
		c.n++
		id := connectorPrefix + strconv.Itoa(c.n)
		if !c.g.HasNode(id) && !c.used[id] {
			c.used[id] = true
			return id
		}
	}
}
