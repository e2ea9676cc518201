package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/spectra/pkg/graph"
	"github.com/matzehuels/spectra/pkg/pipeline"
)

// renderFlags holds the render parameters. Like layoutFlags they override
// the config file only when set explicitly.
type renderFlags struct {
	output     string
	formats    string
	scale      float64
	labels     bool
	connectors bool
	noCache    bool
}

// renderCommand creates the render command for drawing computed layouts.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render [layout.json]",
		Short: "Render a layout to SVG, PNG, or DOT",
		Long: `Render a layout to SVG, PNG, or DOT.

The render command reads a layout.json file produced by 'layout' and draws it
as a node-link diagram with every node pinned at its computed position.
Several formats can be requested at once with -f svg,png.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts := cfg.Options()
			flags.apply(cmd, &opts)
			return c.runRender(cmd.Context(), cfg, args[0], opts, flags.output, flags.noCache)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output base path (default: input without .layout.json)")
	cmd.Flags().StringVarP(&flags.formats, "format", "f", pipeline.FormatSVG, "output formats: svg, png, dot, json")
	cmd.Flags().Float64Var(&flags.scale, "scale", pipeline.DefaultScale, "layout units to points")
	cmd.Flags().BoolVar(&flags.labels, "labels", false, "draw node labels")
	cmd.Flags().BoolVar(&flags.connectors, "connectors", false, "draw synthetic connectors as dashed edges")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(
		[]string{pipeline.FormatSVG, pipeline.FormatPNG, pipeline.FormatDOT, pipeline.FormatJSON},
		cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

// apply copies explicitly set flags into opts.
func (f *renderFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	flags := cmd.Flags()
	if flags.Changed("format") || len(opts.Formats) == 0 {
		opts.Formats = parseFormats(f.formats)
	}
	if flags.Changed("scale") {
		opts.Scale = f.scale
	}
	if flags.Changed("labels") {
		opts.ShowLabels = f.labels
	}
	if flags.Changed("connectors") {
		opts.Connectors = f.connectors
	}
}

// runRender draws the layout in every requested format and writes one file
// per format next to the output base path.
func (c *CLI) runRender(ctx context.Context, cfg pipeline.Config, input string, opts pipeline.Options, output string, noCache bool) error {
	if err := opts.ValidateForRender(); err != nil {
		return err
	}

	layout, err := graph.ReadLayoutFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	prog := newProgress(c.Logger)

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, layout, opts)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	prog.done(fmt.Sprintf("Rendered %d nodes", len(layout.Nodes)))

	base := renderBase(input)
	if output != "" {
		base = strings.TrimSuffix(output, filepath.Ext(output))
	}

	printSuccess("Render complete")
	for _, format := range sortedFormats(artifacts) {
		path := artifactPath(base, format)
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	printStats(graphStats{
		nodes:      len(layout.Nodes),
		edges:      len(layout.Edges),
		connectors: len(layout.Connectors),
		cached:     cacheHit,
	})

	return nil
}

// renderBase strips the layout suffix so that graph.layout.json renders to
// graph.svg.
func renderBase(input string) string {
	if base, ok := strings.CutSuffix(input, ".layout.json"); ok {
		return base
	}
	return strings.TrimSuffix(input, filepath.Ext(input))
}

// artifactPath names the output for one format. JSON keeps the layout
// suffix so it never overwrites the source graph.json.
func artifactPath(base, format string) string {
	if format == pipeline.FormatJSON {
		return base + ".layout.json"
	}
	return base + "." + format
}

func sortedFormats(artifacts map[string][]byte) []string {
	formats := make([]string, 0, len(artifacts))
	for f := range artifacts {
		formats = append(formats, f)
	}
	slices.Sort(formats)
	return formats
}
