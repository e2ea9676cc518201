package pipeline

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/spectra/pkg/cache"
	"github.com/matzehuels/spectra/pkg/core/cgraph"
	"github.com/matzehuels/spectra/pkg/errors"
	"github.com/matzehuels/spectra/pkg/graph"
	"github.com/matzehuels/spectra/pkg/observability"
)

// twoClusters builds two disconnected triangles, one of them inside a
// compound node.
func twoClusters(t *testing.T) *cgraph.Graph {
	t.Helper()
	g := cgraph.New(nil)
	for _, n := range []cgraph.Node{
		{ID: "team"},
		{ID: "a", Parent: "team"}, {ID: "b", Parent: "team"}, {ID: "c", Parent: "team"},
		{ID: "x"}, {ID: "y"}, {ID: "z"},
	} {
		require.NoError(t, g.AddNode(n))
	}
	for _, e := range [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}, {"x", "y"}, {"y", "z"}, {"z", "x"}} {
		require.NoError(t, g.AddEdge(cgraph.Edge{From: e[0], To: e[1]}))
	}
	require.NoError(t, g.Validate())
	return g
}

func quietRunner(c cache.Cache) *Runner {
	return NewRunner(c, nil, log.New(io.Discard))
}

func fileCache(t *testing.T) cache.Cache {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	return c
}

func TestRunnerExecute(t *testing.T) {
	ctx := context.Background()
	r := quietRunner(fileCache(t))
	defer r.Close()

	opts := Options{Formats: []string{FormatDOT, FormatJSON}, Connectors: true}
	res, err := r.Execute(ctx, twoClusters(t), opts)
	require.NoError(t, err)

	assert.Equal(t, 7, res.Stats.NodeCount)
	assert.Equal(t, 6, res.Stats.EdgeCount)
	assert.Equal(t, 6, res.Stats.LeafCount)
	assert.NotEmpty(t, res.GraphHash)
	assert.False(t, res.CacheInfo.LayoutHit)
	assert.False(t, res.CacheInfo.RenderHit)

	assert.Equal(t, graph.EngineSpectral, res.Layout.Engine)
	assert.Len(t, res.Layout.Nodes, 7)
	assert.Len(t, res.Layout.Connectors, 1)

	assert.Contains(t, string(res.Artifacts[FormatDOT]), "graph G {")
	assert.Contains(t, string(res.Artifacts[FormatDOT]), "style=dashed")

	var decoded graph.Layout
	require.NoError(t, json.Unmarshal(res.Artifacts[FormatJSON], &decoded))
	assert.Equal(t, res.Layout.Nodes, decoded.Nodes)
}

func TestRunnerExecuteCaches(t *testing.T) {
	ctx := context.Background()
	r := quietRunner(fileCache(t))
	g := twoClusters(t)
	opts := Options{Formats: []string{FormatDOT}}

	first, err := r.Execute(ctx, g, opts)
	require.NoError(t, err)

	second, err := r.Execute(ctx, g.Clone(), opts)
	require.NoError(t, err)
	assert.True(t, second.CacheInfo.LayoutHit)
	assert.True(t, second.CacheInfo.RenderHit)
	assert.Equal(t, first.GraphHash, second.GraphHash)
	assert.Equal(t, first.Layout, second.Layout)
	assert.Equal(t, first.Artifacts, second.Artifacts)

	// A different seed is a different layout key.
	opts.Seed = 1234
	third, err := r.Execute(ctx, g, opts)
	require.NoError(t, err)
	assert.False(t, third.CacheInfo.LayoutHit)
}

func TestRunnerRefreshSkipsLayoutCache(t *testing.T) {
	ctx := context.Background()
	r := quietRunner(fileCache(t))
	g := twoClusters(t)

	_, hit, err := r.ComputeLayoutWithCacheInfo(ctx, g, Options{})
	require.NoError(t, err)
	assert.False(t, hit)

	_, hit, err = r.ComputeLayoutWithCacheInfo(ctx, g, Options{})
	require.NoError(t, err)
	assert.True(t, hit)

	_, hit, err = r.ComputeLayoutWithCacheInfo(ctx, g, Options{Refresh: true})
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRunnerComputeLayoutWithHash(t *testing.T) {
	ctx := context.Background()
	r := quietRunner(fileCache(t))
	defer r.Close()
	g := twoClusters(t)

	hash, err := GraphHash(g)
	require.NoError(t, err)

	layout, hit, err := r.ComputeLayoutWithHash(ctx, g, hash, Options{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, layout.Nodes, 7)

	// Both entry points share one cache entry for the same graph.
	_, hit, err = r.ComputeLayoutWithCacheInfo(ctx, g, Options{})
	require.NoError(t, err)
	assert.True(t, hit)

	_, _, err = r.ComputeLayoutWithHash(ctx, g, hash, Options{SamplingType: "stratified"})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig))
}

func TestRunnerCorruptCachedLayout(t *testing.T) {
	ctx := context.Background()
	c := fileCache(t)
	r := quietRunner(c)
	g := twoClusters(t)

	opts := Options{}
	require.NoError(t, opts.ValidateForLayout())
	hash, err := GraphHash(g)
	require.NoError(t, err)
	key := r.Keyer.LayoutKey(hash, opts.LayoutKeyOpts())
	require.NoError(t, c.Set(ctx, key, []byte("not json"), time.Hour))

	layout, hit, err := r.ComputeLayoutWithCacheInfo(ctx, g, Options{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, layout.Nodes, 7)
}

func TestRunnerRenderPartialCache(t *testing.T) {
	ctx := context.Background()
	r := quietRunner(fileCache(t))
	layout, err := r.ComputeLayout(ctx, twoClusters(t), Options{})
	require.NoError(t, err)

	_, hit, err := r.RenderWithCacheInfo(ctx, layout, Options{Formats: []string{FormatDOT}})
	require.NoError(t, err)
	assert.False(t, hit)

	artifacts, hit, err := r.RenderWithCacheInfo(ctx, layout, Options{Formats: []string{FormatDOT, FormatJSON}})
	require.NoError(t, err)
	assert.False(t, hit, "json was not cached yet")
	assert.Len(t, artifacts, 2)

	_, hit, err = r.RenderWithCacheInfo(ctx, layout, Options{Formats: []string{FormatJSON, FormatDOT}})
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestRunnerInvalidOptions(t *testing.T) {
	r := quietRunner(nil)
	_, err := r.Execute(context.Background(), twoClusters(t), Options{SamplingType: "stratified"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig))
}

func TestRunnerEmptyGraph(t *testing.T) {
	r := quietRunner(nil)
	_, err := r.ComputeLayout(context.Background(), cgraph.New(nil), Options{})
	assert.True(t, errors.Is(err, errors.ErrCodeEmptyGraph))
}

func TestRunnerCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := quietRunner(nil)
	_, err := r.ComputeLayout(ctx, twoClusters(t), Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGraphHashStable(t *testing.T) {
	g := twoClusters(t)
	h1, err := GraphHash(g)
	require.NoError(t, err)
	h2, err := GraphHash(g.Clone())
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	require.NoError(t, g.AddNode(cgraph.Node{ID: "w"}))
	h3, err := GraphHash(g)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestRenderFromLayoutData(t *testing.T) {
	ctx := context.Background()
	layout, err := quietRunner(nil).ComputeLayout(ctx, twoClusters(t), Options{})
	require.NoError(t, err)
	data, err := graph.MarshalLayout(layout)
	require.NoError(t, err)

	artifacts, err := RenderFromLayoutData(ctx, data, Options{Formats: []string{FormatDOT}, ShowLabels: true})
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(artifacts[FormatDOT]), `label="x"`))

	_, err = RenderFromLayoutData(ctx, []byte("{"), Options{Formats: []string{FormatDOT}})
	assert.Error(t, err)
}

// =============================================================================
// Hooks
// =============================================================================

type recordingHooks struct {
	observability.NoopPipelineHooks
	observability.NoopCacheHooks

	mu     sync.Mutex
	events []string
}

func (h *recordingHooks) record(e string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

func (h *recordingHooks) OnLayoutStart(context.Context, int) { h.record("layout-start") }
func (h *recordingHooks) OnLayoutComplete(_ context.Context, _, _ int, _ time.Duration, err error) {
	if err != nil {
		h.record("layout-error")
		return
	}
	h.record("layout-complete")
}
func (h *recordingHooks) OnRenderComplete(_ context.Context, format string, _ time.Duration, _ error) {
	h.record("render-" + format)
}
func (h *recordingHooks) OnCacheHit(_ context.Context, keyType string)  { h.record("hit-" + keyType) }
func (h *recordingHooks) OnCacheMiss(_ context.Context, keyType string) { h.record("miss-" + keyType) }

func TestRunnerEmitsHooks(t *testing.T) {
	observability.Reset()
	defer observability.Reset()
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)

	ctx := context.Background()
	r := quietRunner(fileCache(t))
	g := twoClusters(t)
	opts := Options{Formats: []string{FormatDOT}}

	_, err := r.Execute(ctx, g, opts)
	require.NoError(t, err)
	_, err = r.Execute(ctx, g, opts)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"miss-layout", "layout-start", "layout-complete",
		"miss-artifact", "render-dot",
		"hit-layout", "hit-artifact",
	}, hooks.events)
}
