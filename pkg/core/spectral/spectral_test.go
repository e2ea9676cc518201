package spectral

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/spectra/pkg/core/cgraph"
	"github.com/matzehuels/spectra/pkg/errors"
)

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"zero sample size", func(o *Options) { o.SampleSize = 0 }},
		{"negative sample size", func(o *Options) { o.SampleSize = -3 }},
		{"unknown sampling", func(o *Options) { o.SamplingType = "fancy" }},
		{"zero separation", func(o *Options) { o.NodeSeparation = 0 }},
		{"negative separation", func(o *Options) { o.NodeSeparation = -1 }},
		{"NaN separation", func(o *Options) { o.NodeSeparation = math.NaN() }},
		{"zero tolerance", func(o *Options) { o.PiTol = 0 }},
		{"negative iterations", func(o *Options) { o.MaxIterations = -1 }},
	}

	require.NoError(t, DefaultOptions().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			err := opts.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig), "got %v", err)

			_, err = Layout(context.Background(), pathGraph(t), opts)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig), "Layout must fail before computing")
		})
	}
}

func TestLayoutEmptyGraph(t *testing.T) {
	_, err := Layout(context.Background(), cgraph.New(nil), DefaultOptions())
	assert.True(t, errors.Is(err, errors.ErrCodeEmptyGraph))
}

func TestLayoutSingleLeaf(t *testing.T) {
	g := build(t, []string{"box", "only<box"}, nil)

	res, err := Layout(context.Background(), g, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"only"}, res.IDs)
	assert.Equal(t, []float64{0}, res.X)
	assert.Equal(t, []float64{0}, res.Y)
	assert.True(t, res.Converged)

	p, ok := res.Position("box")
	require.True(t, ok)
	assert.Equal(t, Point{}, p)
}

func TestLayoutTwoLeaves(t *testing.T) {
	g := build(t, []string{"a", "b"}, [][2]string{{"a", "b"}})

	res, err := Layout(context.Background(), g, DefaultOptions())
	require.NoError(t, err)

	require.Len(t, res.X, 2)
	for _, v := range append(res.X, res.Y...) {
		assert.False(t, math.IsNaN(v))
	}
	assert.InDelta(t, 0, res.X[0]+res.X[1], 1e-6, "coordinates are centered")
}

func TestLayoutCoordinateCount(t *testing.T) {
	g := build(t,
		[]string{"G", "a<G", "b<G", "c", "d", "e"},
		[][2]string{{"a", "b"}, {"c", "d"}},
	)

	res, err := Layout(context.Background(), g, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, g.LeafCount(), len(res.IDs))
	assert.Len(t, res.X, g.LeafCount())
	assert.Len(t, res.Y, g.LeafCount())
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, res.IDs)
	assert.Len(t, res.Connectors, 2)
	for _, c := range res.Connectors {
		_, ok := res.Position(c.ID)
		assert.False(t, ok, "connector %s must not be placed", c.ID)
	}
}

func TestLayoutPathIsMonotone(t *testing.T) {
	opts := DefaultOptions()
	opts.NodeSeparation = 1
	opts.SampleSize = 5

	res, err := Layout(context.Background(), pathGraph(t), opts)
	require.NoError(t, err)

	increasing, decreasing := true, true
	for i := 1; i < len(res.X); i++ {
		increasing = increasing && res.X[i] > res.X[i-1]
		decreasing = decreasing && res.X[i] < res.X[i-1]
	}
	assert.True(t, increasing || decreasing, "x must follow path order, got %v", res.X)
	assert.InDelta(t, 0, res.X[2], 1e-2, "middle vertex sits at the center")
}

func TestLayoutTwoTrianglesSeparate(t *testing.T) {
	res, err := Layout(context.Background(), twoTriangles(t), DefaultOptions())
	require.NoError(t, err)

	require.Len(t, res.Connectors, 1)
	assert.Equal(t, "dummy1", res.Connectors[0].ID)

	left, right := res.X[:3], res.X[3:]
	if left[0] > right[0] {
		left, right = right, left
	}
	assert.Less(t, maxOf(left), minOf(right), "clusters must not overlap along x: %v", res.X)
}

func TestLayoutCompoundPosition(t *testing.T) {
	g := build(t,
		[]string{"P", "a<P", "b<P", "c<P", "d<P", "x"},
		[][2]string{
			{"a", "b"}, {"a", "c"}, {"a", "d"}, {"b", "c"}, {"b", "d"}, {"c", "d"},
			{"x", "a"},
		},
	)

	res, err := Layout(context.Background(), g, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "b", res.Representatives["P"])
	pp, ok := res.Position("P")
	require.True(t, ok)
	pb, _ := res.Position("b")
	assert.Equal(t, pb, pp)
}

func TestLayoutDeterministic(t *testing.T) {
	var nodes []string
	var edges [][2]string
	for r := range 3 {
		for c := range 4 {
			id := string(rune('a' + r*4 + c))
			nodes = append(nodes, id)
			if c > 0 {
				edges = append(edges, [2]string{string(rune('a' + r*4 + c - 1)), id})
			}
			if r > 0 {
				edges = append(edges, [2]string{string(rune('a' + (r-1)*4 + c)), id})
			}
		}
	}
	g := build(t, nodes, edges)

	opts := DefaultOptions()
	opts.SamplingType = SamplingRandom
	opts.SampleSize = 5
	opts.Seed = 1234

	first, err := Layout(context.Background(), g, opts)
	require.NoError(t, err)
	second, err := Layout(context.Background(), g, opts)
	require.NoError(t, err)
	assert.Equal(t, first.X, second.X)
	assert.Equal(t, first.Y, second.Y)

	opts.Rand = rand.New(rand.NewPCG(1234, 1234^0xdeadbeef))
	third, err := Layout(context.Background(), g, opts)
	require.NoError(t, err)
	assert.Equal(t, first.X, third.X, "an explicit source seeded the same way matches the default")
}

func TestLayoutIterationCap(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxIterations = 1

	res, err := Layout(context.Background(), pathGraph(t), opts)
	require.NoError(t, err)
	assert.False(t, res.Converged)
	assert.Equal(t, 2, res.Iterations)
}

func TestLayoutCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Layout(ctx, pathGraph(t), DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLayoutLeavesHostGraphUntouched(t *testing.T) {
	g := twoTriangles(t)
	before := g.NodeIDs()

	_, err := Layout(context.Background(), g, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, before, g.NodeIDs())
	assert.False(t, g.HasNode("dummy1"))
}

func TestResultBounds(t *testing.T) {
	r := &Result{IDs: []string{"a", "b"}, X: []float64{-2, 3}, Y: []float64{5, -1}}
	lo, hi := r.Bounds()
	assert.Equal(t, Point{X: -2, Y: -1}, lo)
	assert.Equal(t, Point{X: 3, Y: 5}, hi)

	p, ok := r.Position("b")
	require.True(t, ok)
	assert.Equal(t, Point{X: 3, Y: -1}, p)
}

func minOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		m = min(m, x)
	}
	return m
}

func maxOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		m = max(m, x)
	}
	return m
}
