package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/spectra/pkg/core/cgraph"
	"github.com/matzehuels/spectra/pkg/core/spectral"
	"github.com/matzehuels/spectra/pkg/graph"
	"github.com/matzehuels/spectra/pkg/observability"
)

// =============================================================================
// Layout Generation
// =============================================================================

// GenerateLayout runs the spectral method on g and exports the result in the
// serialization format. Pipeline hooks observe every run, including failed
// ones. opts must already carry defaults (see [Options.ValidateForLayout]).
func GenerateLayout(ctx context.Context, g *cgraph.Graph, opts Options) (graph.Layout, error) {
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, g.NodeCount())
	start := time.Now()

	res, err := spectral.Layout(ctx, g, opts.SpectralOptions())
	if err != nil {
		hooks.OnLayoutComplete(ctx, g.NodeCount(), 0, time.Since(start), err)
		return graph.Layout{}, err
	}
	hooks.OnLayoutComplete(ctx, g.NodeCount(), res.Iterations, time.Since(start), nil)

	return graph.FromResult(g, res), nil
}
