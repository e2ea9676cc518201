// Package spectral computes a fast initial 2D layout for compound and
// possibly disconnected graphs with a landmark-based Nyström spectral method.
//
// # Overview
//
// Exact distance-based spectral layout needs all-pairs shortest paths and a
// full eigendecomposition, neither of which scales. This package samples k
// landmark vertices, runs one BFS per landmark to build an N×k matrix C of
// squared hop distances, pseudo-inverts the k×k landmark block, and runs
// power iteration on the implicit double-centered Gram matrix
//
//	center(C · INV · (-½ Cᵗ) · center(x))
//
// to recover the two dominant eigenvectors, which become the x and y axes.
// No N×N matrix is ever formed. The result is intended as the starting point
// of a force-directed refinement, not a finished drawing.
//
// # Normalization
//
// [Normalize] turns the host graph into a flat, connected adjacency model:
//
//   - Compound vertices are never placed. Each resolves to a representative
//     leaf (see [Representative]) and edges on a compound land on it.
//   - Disconnected groups of siblings are joined by synthetic connectors
//     named dummy1, dummy2, ... Nested scopes are repaired before their
//     parents and the top level goes last.
//   - Leaves are indexed in insertion order, connectors after them.
//
// Connectors take part in BFS but are stripped from the [Result].
//
// # Sampling
//
// [SamplingGreedy] (the default) picks a random first landmark and then the
// vertex farthest from all landmarks so far. [SamplingRandom] draws
// landmarks uniformly. Randomness comes from [Options.Rand] or, when unset,
// a PCG source seeded with [Options.Seed], so a fixed seed reproduces the
// same coordinates.
//
// # Usage
//
//	res, err := spectral.Layout(ctx, g, spectral.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	p, _ := res.Position("node-id")
//
// # Errors
//
// Invalid options fail with an INVALID_CONFIG error before any work is done.
// A graph without leaves fails with EMPTY_GRAPH. Rank-deficient landmark
// blocks and disconnected graphs are handled, not reported. Hitting
// [Options.MaxIterations] sets [Result.Converged] to false.
//
// # Concurrency
//
// Layout keeps all state local to the call. Concurrent calls are safe as
// long as they do not share an [Options.Rand] source.
package spectral
