package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/spectra/pkg/core/spectral"
	"github.com/matzehuels/spectra/pkg/graph"
	"github.com/matzehuels/spectra/pkg/pipeline"
)

// layoutFlags holds the spectral parameters. Values only override the
// config file when set explicitly.
type layoutFlags struct {
	sampleSize    int
	sampling      string
	separation    float64
	tol           float64
	maxIterations int
	seed          uint64
	refresh       bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.sampleSize, "sample-size", pipeline.DefaultSampleSize, "number of landmarks")
	cmd.Flags().StringVar(&f.sampling, "sampling", pipeline.DefaultSamplingType, "landmark selection: greedy, random")
	cmd.Flags().Float64Var(&f.separation, "separation", pipeline.DefaultNodeSeparation, "target edge length")
	cmd.Flags().Float64Var(&f.tol, "tol", pipeline.DefaultPiTol, "power iteration convergence tolerance")
	cmd.Flags().IntVar(&f.maxIterations, "max-iter", pipeline.DefaultMaxIterations, "power iteration cap")
	cmd.Flags().Uint64Var(&f.seed, "seed", pipeline.DefaultSeed, "random seed for sampling and initial vectors")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even when the layout is cached")
	_ = cmd.RegisterFlagCompletionFunc("sampling", cobra.FixedCompletions(spectral.SamplingTypes, cobra.ShellCompDirectiveNoFileComp))
}

// apply copies explicitly set flags into opts.
func (f *layoutFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	flags := cmd.Flags()
	if flags.Changed("sample-size") {
		opts.SampleSize = f.sampleSize
	}
	if flags.Changed("sampling") {
		opts.SamplingType = f.sampling
	}
	if flags.Changed("separation") {
		opts.NodeSeparation = f.separation
	}
	if flags.Changed("tol") {
		opts.PiTol = f.tol
	}
	if flags.Changed("max-iter") {
		opts.MaxIterations = f.maxIterations
	}
	if flags.Changed("seed") {
		opts.Seed = f.seed
	}
	opts.Refresh = f.refresh
}

// layoutCommand creates the layout command for computing spectral layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		flags   layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [graph.json | URL | -]",
		Short: "Compute a spectral layout for a graph",
		Long: `Compute a spectral layout for a graph.

The layout command reads a graph.json file (or a URL, or - for stdin),
connects disconnected parts with synthetic connectors, and places every
node with the landmark Nyström method.
The output is a layout.json file that 'render' turns into SVG, PNG, or DOT.

Results are cached, keyed by graph content and layout parameters.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := cfg.Options()
			flags.apply(cmd, &opts)
			return c.runLayout(cmd.Context(), cfg, args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	flags.register(cmd)

	return cmd
}

// runLayout loads the graph, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, cfg pipeline.Config, input string, opts pipeline.Options, output string, noCache bool) error {
	g, err := c.Source.Load(ctx, input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, spinnerOut, fmt.Sprintf("Computing layout for %d nodes...", g.NodeCount()))
	spinner.Start()

	layout, cacheHit, err := runner.ComputeLayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = outputPathFor(input, ".layout.json")
	}
	if err := graph.WriteLayoutFile(layout, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(graphStats{
		nodes:      g.NodeCount(),
		edges:      g.EdgeCount(),
		connectors: len(layout.Connectors),
		iterations: layout.Iterations,
		cached:     cacheHit,
	})
	if !layout.Converged {
		printWarning("Power iteration stopped at %d iterations before converging", layout.Iterations)
	}
	printNewline()
	printNextStep("Render", appName+" render "+outputPath)

	return nil
}
