package spectral

import (
	"context"
	"io"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/floats"

	"github.com/matzehuels/spectra/pkg/errors"
)

// =============================================================================
// Defaults
// =============================================================================

const (
	// DefaultSampleSize is the number of landmark vertices.
	DefaultSampleSize = 25

	// DefaultSamplingType is the landmark selection strategy.
	DefaultSamplingType = SamplingGreedy

	// DefaultNodeSeparation is the layout distance of one hop.
	DefaultNodeSeparation = 75.0

	// DefaultPiTol is the power iteration convergence tolerance.
	DefaultPiTol = 1e-7

	// DefaultMaxIterations caps each power iteration loop.
	DefaultMaxIterations = 10000

	// DefaultSeed seeds the default random source.
	DefaultSeed = uint64(42)
)

// =============================================================================
// Options
// =============================================================================

// Options configures a spectral layout run.
type Options struct {
	SampleSize     int
	SamplingType   SamplingType
	NodeSeparation float64
	PiTol          float64

	// MaxIterations caps each power iteration loop. Zero means
	// DefaultMaxIterations.
	MaxIterations int

	// Seed seeds the default PCG source. Ignored when Rand is set.
	Seed uint64
	Rand Source

	// Logger receives debug progress. Nil discards.
	Logger *log.Logger
}

// DefaultOptions returns the stock configuration.
func DefaultOptions() Options {
	return Options{
		SampleSize:     DefaultSampleSize,
		SamplingType:   DefaultSamplingType,
		NodeSeparation: DefaultNodeSeparation,
		PiTol:          DefaultPiTol,
		MaxIterations:  DefaultMaxIterations,
		Seed:           DefaultSeed,
	}
}

// Validate reports the first invalid field as an INVALID_CONFIG error.
func (o Options) Validate() error {
	if err := errors.RequirePositiveInt("sample size", o.SampleSize); err != nil {
		return err
	}
	if err := errors.RequireOneOf("sampling type", string(o.SamplingType), SamplingTypes...); err != nil {
		return err
	}
	if err := errors.RequirePositive("node separation", o.NodeSeparation); err != nil {
		return err
	}
	if err := errors.RequirePositive("pi tolerance", o.PiTol); err != nil {
		return err
	}
	if o.MaxIterations < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max iterations must not be negative, got %d", o.MaxIterations)
	}
	return nil
}

func (o Options) source() Source {
	if o.Rand != nil {
		return o.Rand
	}
	return rand.New(rand.NewPCG(o.Seed, o.Seed^0xdeadbeef))
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.New(io.Discard)
}

// =============================================================================
// Result
// =============================================================================

// Point is a 2D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Result holds the coordinates of every leaf vertex. IDs[i] is placed at
// (X[i], Y[i]). Connectors are excluded from the coordinates but reported
// for inspection.
type Result struct {
	IDs             []string
	X               []float64
	Y               []float64
	Connectors      []Connector
	Representatives map[string]string
	Landmarks       int
	Iterations      int
	Converged       bool

	index map[string]int
}

// Position returns the coordinates of a vertex. Compound vertices report
// the position of their representative leaf.
func (r *Result) Position(id string) (Point, bool) {
	if rep, ok := r.Representatives[id]; ok {
		id = rep
	}
	i, ok := r.index[id]
	if r.index == nil {
		i = slices.Index(r.IDs, id)
		ok = i >= 0
	}
	if !ok {
		return Point{}, false
	}
	return Point{X: r.X[i], Y: r.Y[i]}, true
}

// Bounds returns the bounding box of all leaf coordinates.
func (r *Result) Bounds() (lo, hi Point) {
	if len(r.X) == 0 {
		return Point{}, Point{}
	}
	return Point{X: floats.Min(r.X), Y: floats.Min(r.Y)},
		Point{X: floats.Max(r.X), Y: floats.Max(r.Y)}
}

// =============================================================================
// Layout
// =============================================================================

// Layout computes initial 2D coordinates for the leaves of g.
//
// The graph is flattened and connected with [Normalize], landmark hop
// distances are collected by BFS, the landmark block is pseudo-inverted, and
// the two dominant eigenvectors of the implicit centered Gram matrix become
// the x and y axes. g is never modified. Cancellation is checked between BFS
// runs and power iteration steps.
func Layout(ctx context.Context, g Graph, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.MaxIterations == 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	logger := opts.logger()

	flat, err := Normalize(g)
	if err != nil {
		return nil, err
	}
	res := &Result{
		IDs:             slices.Clone(flat.Order[:flat.Leaves]),
		X:               make([]float64, flat.Leaves),
		Y:               make([]float64, flat.Leaves),
		Connectors:      flat.Connectors,
		Representatives: flat.Representatives,
		Converged:       true,
		index:           make(map[string]int, flat.Leaves),
	}
	for i, id := range res.IDs {
		res.index[id] = i
	}

	n := flat.Size()
	logger.Debug("normalized graph", "nodes", n, "leaves", flat.Leaves, "connectors", len(flat.Connectors))
	if n == 1 {
		return res, nil
	}

	rng := opts.source()
	landmarks, c, err := sample(ctx, flat.Adjacency, opts.SampleSize, opts.SamplingType, opts.NodeSeparation, rng)
	if err != nil {
		return nil, err
	}
	res.Landmarks = len(landmarks)
	logger.Debug("sampled landmarks", "landmarks", len(landmarks), "sampling", opts.SamplingType)

	inv, err := pseudoInverse(landmarkBlock(c, landmarks))
	if err != nil {
		return nil, err
	}

	op := newGram(c, inv)
	first, err := dominantEigenpair(ctx, op, n, rng, nil, opts.PiTol, opts.MaxIterations)
	if err != nil {
		return nil, err
	}
	second, err := dominantEigenpair(ctx, op, n, rng, first.vec, opts.PiTol, opts.MaxIterations)
	if err != nil {
		return nil, err
	}
	res.Iterations = first.iterations + second.iterations
	res.Converged = first.converged && second.converged
	if !res.Converged {
		logger.Warn("power iteration hit the iteration cap", "max_iterations", opts.MaxIterations)
	}
	logger.Debug("power iteration finished", "iterations", res.Iterations, "theta1", first.value, "theta2", second.value)

	sx := math.Sqrt(math.Abs(first.value))
	sy := math.Sqrt(math.Abs(second.value))
	for i := range flat.Leaves {
		res.X[i] = first.vec[i] * sx
		res.Y[i] = second.vec[i] * sy
	}
	return res, nil
}
