package cache

import "fmt"

// Key prefixes.
const (
	prefixLayout   = "layout"
	prefixArtifact = "artifact"
)

// Keyer derives cache keys.
type Keyer interface {
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts lists every option that changes a computed layout.
type LayoutKeyOpts struct {
	SampleSize     int     `json:"sample_size"`
	SamplingType   string  `json:"sampling_type"`
	NodeSeparation float64 `json:"node_separation"`
	PiTol          float64 `json:"pi_tol"`
	MaxIterations  int     `json:"max_iterations"`
	Seed           uint64  `json:"seed"`
}

// ArtifactKeyOpts lists every option that changes a rendered artifact.
type ArtifactKeyOpts struct {
	Format     string  `json:"format"`
	Scale      float64 `json:"scale"`
	ShowLabels bool    `json:"show_labels"`
	Connectors bool    `json:"connectors"`
}

// DefaultKeyer produces keys of the form prefix:sha256(parts).
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// LayoutKey returns the key for a layout of the graph with the given hash.
func (k *DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey(prefixLayout, graphHash, opts)
}

// ArtifactKey returns the key for a rendering of the given layout.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey(prefixArtifact, layoutHash, opts)
}

// String implements fmt.Stringer for debug logging.
func (o LayoutKeyOpts) String() string {
	return fmt.Sprintf("k=%d %s sep=%g tol=%g seed=%d", o.SampleSize, o.SamplingType, o.NodeSeparation, o.PiTol, o.Seed)
}
