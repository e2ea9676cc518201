package graph

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matzehuels/spectra/pkg/core/cgraph"
	"github.com/matzehuels/spectra/pkg/core/spectral"
	"github.com/matzehuels/spectra/pkg/errors"
)

// =============================================================================
// Layout - Positioned Graph
// =============================================================================

// Layout is the serialization format for a computed layout. Every node of
// the source graph appears in Nodes; compound nodes carry the position of
// their representative leaf.
type Layout struct {
	Engine string `json:"engine" bson:"engine"`

	Nodes      []PlacedNode `json:"nodes" bson:"nodes"`
	Edges      []Edge       `json:"edges,omitempty" bson:"edges,omitempty"`
	Connectors []Connector  `json:"connectors,omitempty" bson:"connectors,omitempty"`
	Bounds     Bounds       `json:"bounds" bson:"bounds"`

	// Run details
	Landmarks  int  `json:"landmarks" bson:"landmarks"`
	Iterations int  `json:"iterations" bson:"iterations"`
	Converged  bool `json:"converged" bson:"converged"`
}

// PlacedNode is a node with coordinates.
type PlacedNode struct {
	ID             string  `json:"id" bson:"id"`
	Label          string  `json:"label,omitempty" bson:"label,omitempty"`
	Parent         string  `json:"parent,omitempty" bson:"parent,omitempty"`
	X              float64 `json:"x" bson:"x"`
	Y              float64 `json:"y" bson:"y"`
	Compound       bool    `json:"compound,omitempty" bson:"compound,omitempty"`
	Representative string  `json:"representative,omitempty" bson:"representative,omitempty"`
}

// Connector records a synthetic vertex inserted to connect the graph.
type Connector struct {
	ID      string   `json:"id" bson:"id"`
	Targets []string `json:"targets" bson:"targets"`
}

// Bounds is the axis-aligned bounding box of all leaf positions.
type Bounds struct {
	MinX float64 `json:"min_x" bson:"min_x"`
	MinY float64 `json:"min_y" bson:"min_y"`
	MaxX float64 `json:"max_x" bson:"max_x"`
	MaxY float64 `json:"max_y" bson:"max_y"`
}

// Width returns the horizontal extent.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Node returns the placed node with the given ID.
func (l *Layout) Node(id string) (PlacedNode, bool) {
	for _, n := range l.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return PlacedNode{}, false
}

// =============================================================================
// spectral.Result → Layout Conversion
// =============================================================================

// FromResult combines a graph and its spectral layout result into the
// serialization format. Node order follows the graph.
func FromResult(g *cgraph.Graph, res *spectral.Result) Layout {
	lo, hi := res.Bounds()
	out := Layout{
		Engine:     EngineSpectral,
		Nodes:      make([]PlacedNode, 0, g.NodeCount()),
		Bounds:     Bounds{MinX: lo.X, MinY: lo.Y, MaxX: hi.X, MaxY: hi.Y},
		Landmarks:  res.Landmarks,
		Iterations: res.Iterations,
		Converged:  res.Converged,
	}

	for _, n := range g.Nodes() {
		p, _ := res.Position(n.ID)
		pn := PlacedNode{
			ID:       n.ID,
			Parent:   n.Parent,
			X:        p.X,
			Y:        p.Y,
			Compound: g.IsCompound(n.ID),
		}
		if label, ok := n.Meta[metaLabel].(string); ok {
			pn.Label = label
		}
		if pn.Compound {
			pn.Representative = res.Representatives[n.ID]
		}
		out.Nodes = append(out.Nodes, pn)
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, Edge{From: e.From, To: e.To})
	}
	for _, c := range res.Connectors {
		out.Connectors = append(out.Connectors, Connector{ID: c.ID, Targets: c.Targets})
	}
	return out
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "unmarshal layout")
	}
	if l.Engine == "" {
		l.Engine = EngineSpectral
	}
	if len(l.Nodes) == 0 {
		return Layout{}, errors.New(errors.ErrCodeInvalidFormat, "layout must contain nodes")
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
