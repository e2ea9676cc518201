// Package pipeline provides the layout → render pipeline shared by the CLI
// and the API server.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Layout: run the spectral method on a compound graph and export the
//     coordinates as a [graph.Layout]
//  2. Render: draw the layout as SVG, PNG, DOT, or JSON
//
// Each stage can be run independently or as part of the complete pipeline,
// and both stages are cached by content hash through a [cache.Cache].
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    SampleSize: 50,
//	    Formats:    []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, g, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	// Layout only
//	layout, err := runner.ComputeLayout(ctx, g, opts)
//
//	// Render an existing layout
//	artifacts, err := runner.Render(ctx, layout, opts)
package pipeline

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spectra/pkg/cache"
	"github.com/matzehuels/spectra/pkg/core/cgraph"
	"github.com/matzehuels/spectra/pkg/core/spectral"
	"github.com/matzehuels/spectra/pkg/errors"
	"github.com/matzehuels/spectra/pkg/graph"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultSampleSize is the default number of landmarks.
	DefaultSampleSize = spectral.DefaultSampleSize

	// DefaultSamplingType is the default landmark selection strategy.
	DefaultSamplingType = string(spectral.DefaultSamplingType)

	// DefaultNodeSeparation is the default layout distance of one hop.
	DefaultNodeSeparation = spectral.DefaultNodeSeparation

	// DefaultPiTol is the default power iteration tolerance.
	DefaultPiTol = spectral.DefaultPiTol

	// DefaultMaxIterations is the default power iteration cap.
	DefaultMaxIterations = spectral.DefaultMaxIterations

	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = spectral.DefaultSeed

	// DefaultScale is the default render scale.
	DefaultScale = 1.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatDOT:  true,
	FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the layout pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	SampleSize     int     `json:"sample_size,omitempty"`
	SamplingType   string  `json:"sampling_type,omitempty"`
	NodeSeparation float64 `json:"node_separation,omitempty"`
	PiTol          float64 `json:"pi_tol,omitempty"`
	MaxIterations  int     `json:"max_iterations,omitempty"`
	Seed           uint64  `json:"seed,omitempty"`
	Refresh        bool    `json:"refresh,omitempty"` // Skip the layout cache lookup

	// Render options
	Formats    []string `json:"formats,omitempty"`
	Scale      float64  `json:"scale,omitempty"`
	ShowLabels bool     `json:"show_labels,omitempty"`
	Connectors bool     `json:"connectors,omitempty"` // Draw synthetic connectors

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the input graph.
	Graph *cgraph.Graph

	// GraphHash is the content hash of the graph.
	GraphHash string

	// Layout contains the computed positions.
	Layout graph.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	LeafCount  int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidConfig, "invalid format: %q (must be one of: svg, png, dot, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults applies defaults for both stages and validates the
// result. Calling it more than once has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	return o.ValidateForRender()
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.SampleSize == 0 {
		o.SampleSize = DefaultSampleSize
	}
	if o.SamplingType == "" {
		o.SamplingType = DefaultSamplingType
	}
	if o.NodeSeparation == 0 {
		o.NodeSeparation = DefaultNodeSeparation
	}
	if o.PiTol == 0 {
		o.PiTol = DefaultPiTol
	}
	if o.MaxIterations == 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	return o.SpectralOptions().Validate()
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := errors.RequirePositive("scale", o.Scale); err != nil {
		return err
	}
	return ValidateFormats(o.Formats)
}

// SpectralOptions returns the options for the spectral core.
func (o *Options) SpectralOptions() spectral.Options {
	return spectral.Options{
		SampleSize:     o.SampleSize,
		SamplingType:   spectral.SamplingType(o.SamplingType),
		NodeSeparation: o.NodeSeparation,
		PiTol:          o.PiTol,
		MaxIterations:  o.MaxIterations,
		Seed:           o.Seed,
		Logger:         o.Logger,
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		SampleSize:     o.SampleSize,
		SamplingType:   o.SamplingType,
		NodeSeparation: o.NodeSeparation,
		PiTol:          o.PiTol,
		MaxIterations:  o.MaxIterations,
		Seed:           o.Seed,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:     format,
		Scale:      o.Scale,
		ShowLabels: o.ShowLabels,
		Connectors: o.Connectors,
	}
}

// HasFormat reports whether format was requested.
func (o *Options) HasFormat(format string) bool {
	return slices.Contains(o.Formats, format)
}
