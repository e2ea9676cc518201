// Package graph provides serialization types for compound graphs and their
// layouts.
//
// This package defines the canonical wire format for spectra's graph data,
// used for JSON files, API requests and responses, and caching.
//
// # Architecture
//
// The package sits at the serialization boundary between internal
// representations and external formats:
//
//   - [Graph], [Layout]: Serialization types (this package)
//   - pkg/core/cgraph.Graph: Internal compound graph
//   - pkg/core/spectral.Result: Internal layout result
//
// Use [FromCGraph]/[ToCGraph] and [FromResult] to convert between them.
//
// # Graph Serialization
//
// Graphs use a node-link JSON format. A node with a parent field lives
// inside that compound node:
//
//	{
//	  "nodes": [
//	    {"id": "cluster"},
//	    {"id": "a", "parent": "cluster"},
//	    {"id": "b"}
//	  ],
//	  "edges": [{"from": "a", "to": "b"}]
//	}
//
// Node order is preserved in both directions because layout indexing
// depends on it.
//
// Common operations:
//
//	g, _ := graph.ReadGraphFile("graph.json")    // File → cgraph.Graph
//	graph.WriteGraphFile(g, "output.json")      // cgraph.Graph → File
//	data, _ := graph.MarshalGraph(g)            // cgraph.Graph → []byte
//	parsed, _ := graph.UnmarshalGraph(data)     // []byte → Graph
//
// # Layout Serialization
//
// A [Layout] lists every node with x/y coordinates, the synthetic connectors
// that were added to make the graph connected, and the bounding box of the
// leaf positions:
//
//	layout := graph.FromResult(g, res)
//	graph.WriteLayoutFile(layout, "layout.json")
//
// # Errors
//
// Malformed JSON is reported as INVALID_FORMAT, structural problems (unknown
// endpoints, containment cycles) as INVALID_GRAPH.
package graph
