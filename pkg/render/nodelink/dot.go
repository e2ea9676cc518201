package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/spectra/pkg/graph"
)

const (
	// DefaultScale maps one layout unit to one point.
	DefaultScale = 1.0

	// margin is the padding in points around the bounding box.
	margin = 36.0

	// baseDPI is the resolution Graphviz assumes for points.
	baseDPI = 72.0
)

// Options configures node-link diagram rendering.
type Options struct {
	// Scale multiplies layout coordinates before they become points.
	// Zero means DefaultScale.
	Scale float64

	// ShowLabels draws node labels. When false nodes are small dots.
	ShowLabels bool

	// Connectors draws the synthetic connectors that joined disconnected
	// components as dashed grey edges.
	Connectors bool
}

func (o Options) scale() float64 {
	if o.Scale <= 0 {
		return DefaultScale
	}
	return o.Scale
}

// ToDOT converts a layout to Graphviz DOT with every node pinned at its
// computed position. Compound nodes are drawn as dashed outlines at the
// position of their representative leaf. The y axis is flipped so that the
// picture reads top to bottom like the layout coordinates.
//
// The output is meant for the "nop" layout engine (neato -n), which keeps
// the pinned positions and only routes edges.
func ToDOT(l graph.Layout, opts Options) string {
	s := opts.scale()
	pos := func(x, y float64) string {
		px := (x-l.Bounds.MinX)*s + margin
		py := (l.Bounds.MaxY-y)*s + margin
		return strconv.FormatFloat(px, 'f', 2, 64) + "," + strconv.FormatFloat(py, 'f', 2, 64) + "!"
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=false;\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	if opts.ShowLabels {
		buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, margin=\"0.1,0.05\"];\n")
	} else {
		buf.WriteString("  node [shape=point, width=0.12, color=\"#2f4f6f\"];\n")
	}
	buf.WriteString("  edge [color=\"#7f8c8d\"];\n")
	buf.WriteString("\n")

	for _, n := range l.Nodes {
		attrs := fmt.Sprintf("pos=%q", pos(n.X, n.Y))
		if opts.ShowLabels {
			attrs += fmt.Sprintf(", label=%q", displayLabel(n))
		}
		if n.Compound {
			attrs += ", style=\"dashed\", shape=box, color=\"#b0b0b0\", fontcolor=\"#b0b0b0\""
			if !opts.ShowLabels {
				attrs += ", label=\"\", width=0.3, height=0.3"
			}
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, attrs)
	}

	buf.WriteString("\n")
	for _, e := range l.Edges {
		fmt.Fprintf(&buf, "  %q -- %q;\n", e.From, e.To)
	}

	if opts.Connectors && len(l.Connectors) > 0 {
		buf.WriteString("\n")
		for _, c := range l.Connectors {
			for i := 1; i < len(c.Targets); i++ {
				fmt.Fprintf(&buf, "  %q -- %q [style=dashed, color=\"#d0d0d0\", comment=%q];\n",
					c.Targets[0], c.Targets[i], c.ID)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func displayLabel(n graph.PlacedNode) string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// RenderSVG renders pinned DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	data, err := render(ctx, []byte(dot), graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(data), nil
}

// RenderPNG renders pinned DOT source to PNG. A scale of 2.0 doubles the
// resolution for high-DPI displays.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}
	src := withDPI(dot, baseDPI*scale)
	return render(ctx, src, graphviz.PNG)
}

func render(ctx context.Context, dot []byte, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NOP)

	g, err := graphviz.ParseBytes(dot)
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var graphHeadRe = regexp.MustCompile(`^(strict\s+)?(di)?graph\s+[^{]*\{`)

// withDPI injects a dpi attribute right after the opening brace.
func withDPI(dot string, dpi float64) []byte {
	loc := graphHeadRe.FindStringIndex(dot)
	if loc == nil {
		return []byte(dot)
	}
	attr := fmt.Sprintf("\n  dpi=%s;", strconv.FormatFloat(dpi, 'f', -1, 64))
	return []byte(dot[:loc[1]] + attr + dot[loc[1]:])
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
