// Package pkg provides the libraries behind Spectra, a fast initial layout
// engine for large compound graphs.
//
// # Overview
//
// Spectra places every node of a possibly disconnected, possibly nested
// graph in the plane using a landmark-based Nyström approximation of
// classical multidimensional scaling. The result is meant as a starting
// point for force-directed refinement, computed in time roughly linear in
// the number of edges.
//
// # Architecture
//
// The typical data flow:
//
//	graph.json (file, URL, stdin, or HTTP request)
//	         ↓
//	    [source] / [graph] (decode into a compound graph)
//	         ↓
//	    [core/spectral] Normalize (flatten, add connectors)
//	         ↓
//	    [core/spectral] Layout (landmarks, BFS distances, Nyström, power iteration)
//	         ↓
//	    [render/nodelink] (DOT, SVG, PNG) or layout JSON
//
// [pipeline] runs these stages for both the CLI and [server], caching layouts
// and artifacts in a [cache] backend and reporting to [observability] hooks.
//
// # Main Packages
//
// [core/cgraph] - Compound graph: nodes with optional parents, undirected
// edges that may touch compound nodes at any level.
//
// [core/spectral] - Normalization, landmark sampling, breadth-first distance
// matrix, Nyström eigenvector approximation, and the Layout entry point.
//
// [graph] - JSON serialization for graphs and layouts.
//
// [pipeline] - Options, defaults, TOML configuration, and the caching Runner.
//
// [cache] - File, Redis, MongoDB, and null cache backends behind one interface.
//
// [render/nodelink] - Pinned-position node-link diagrams through Graphviz.
//
// [server] - HTTP API on chi with request IDs, limits, and Prometheus metrics.
//
// [observability] - Pipeline, cache, and HTTP hooks with a Prometheus
// implementation.
//
// [errors] - Coded errors mapped to HTTP statuses and user messages.
//
// [source] - Graph loading from files, URLs, and stdin.
//
// [retry] - Exponential backoff for transient failures.
//
// # Quick Start
//
//	g := cgraph.New(nil)
//	_ = g.AddNode(cgraph.Node{ID: "a"})
//	_ = g.AddNode(cgraph.Node{ID: "b"})
//	_ = g.AddEdge(cgraph.Edge{From: "a", To: "b"})
//
//	res, err := spectral.Layout(ctx, g, spectral.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	p, _ := res.Position("a")
//
// # Testing
//
//	go test ./pkg/...
//	go test -run Example ./pkg/...
//
// [core/cgraph]: https://pkg.go.dev/github.com/matzehuels/spectra/pkg/core/cgraph
// [core/spectral]: https://pkg.go.dev/github.com/matzehuels/spectra/pkg/core/spectral
// [graph]: https://pkg.go.dev/github.com/matzehuels/spectra/pkg/graph
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/spectra/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/spectra/pkg/cache
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/spectra/pkg/render/nodelink
// [server]: https://pkg.go.dev/github.com/matzehuels/spectra/pkg/server
// [observability]: https://pkg.go.dev/github.com/matzehuels/spectra/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/spectra/pkg/errors
// [source]: https://pkg.go.dev/github.com/matzehuels/spectra/pkg/source
// [retry]: https://pkg.go.dev/github.com/matzehuels/spectra/pkg/retry
package pkg
