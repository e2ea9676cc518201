package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/spectra/pkg/graph"
	"github.com/matzehuels/spectra/pkg/observability"
	"github.com/matzehuels/spectra/pkg/render/nodelink"
)

// RenderFromLayout generates output artifacts in the requested formats.
// The DOT source is built once and shared by every Graphviz format.
func RenderFromLayout(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	dot := nodelink.ToDOT(l, nodelinkOptions(opts))
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		data, err := renderFormat(ctx, l, dot, format, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderFormat(ctx context.Context, l graph.Layout, dot, format string, opts Options) (data []byte, err error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, format)
	start := time.Now()
	defer func() { hooks.OnRenderComplete(ctx, format, time.Since(start), err) }()

	switch format {
	case FormatSVG:
		return nodelink.RenderSVG(ctx, dot)
	case FormatPNG:
		return nodelink.RenderPNG(ctx, dot, pngScale)
	case FormatDOT:
		return []byte(dot), nil
	case FormatJSON:
		return graph.MarshalLayout(l)
	default:
		return nil, ValidateFormat(format)
	}
}

// RenderFromLayoutData renders output from serialized layout data.
// This is useful when the layout was computed elsewhere (e.g., cached).
func RenderFromLayoutData(ctx context.Context, layoutData []byte, opts Options) (map[string][]byte, error) {
	parsed, err := graph.UnmarshalLayout(layoutData)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	return RenderFromLayout(ctx, parsed, opts)
}

// pngScale renders PNGs at 2x resolution for high-DPI displays.
const pngScale = 2.0

func nodelinkOptions(opts Options) nodelink.Options {
	return nodelink.Options{
		Scale:      opts.Scale,
		ShowLabels: opts.ShowLabels,
		Connectors: opts.Connectors,
	}
}
