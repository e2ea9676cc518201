// Package render groups the output renderers for computed layouts.
//
// Only one diagram style exists today: [nodelink] pins every node of a
// [graph.Layout] at its spectral coordinates and lets Graphviz draw the
// edges. It emits DOT text directly and SVG or PNG through the embedded
// Graphviz build, so no external binaries are needed.
//
//	dot := nodelink.ToDOT(layout, nodelink.Options{ShowLabels: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Most callers go through [pipeline.RenderFromLayout] instead, which picks
// the renderer per output format and caches the results.
package render
