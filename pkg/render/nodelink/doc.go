// Package nodelink renders computed layouts as node-link diagrams.
//
// # Overview
//
// Nodes are pinned at the coordinates produced by the spectral layout and
// Graphviz only draws them: the "nop" engine keeps every pos attribute and
// routes straight edges between them. Nothing is moved, so the picture shows
// exactly what the layout computed, which is what you want when judging an
// initial placement before any refinement.
//
// # Usage
//
//	dot := nodelink.ToDOT(layout, nodelink.Options{ShowLabels: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0) // 2x scale
//
// # Options
//
//   - Scale: multiplies layout units before they become points
//   - ShowLabels: boxes with labels instead of dots
//   - Connectors: draw the synthetic connectors as dashed edges
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG and
// PNG rendering. No external Graphviz installation is needed.
package nodelink
