package pipeline

import (
	stderrors "errors"
	"io/fs"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/spectra/pkg/errors"
)

// Config is the on-disk TOML configuration shared by the CLI and the
// server. Zero values mean "use the default".
//
//	cache = "redis://localhost:6379/0"
//
//	[layout]
//	sample_size = 50
//	sampling_type = "random"
//	seed = 7
//
//	[render]
//	formats = ["svg", "png"]
//	show_labels = true
//
//	[server]
//	addr = ":8080"
//	timeout = "30s"
//	rate_limit = 5
//	burst = 10
type Config struct {
	Cache  string       `toml:"cache"`
	Layout LayoutConfig `toml:"layout"`
	Render RenderConfig `toml:"render"`
	Server ServerConfig `toml:"server"`
}

// LayoutConfig holds the [layout] table.
type LayoutConfig struct {
	SampleSize     int     `toml:"sample_size"`
	SamplingType   string  `toml:"sampling_type"`
	NodeSeparation float64 `toml:"node_separation"`
	PiTol          float64 `toml:"pi_tol"`
	MaxIterations  int     `toml:"max_iterations"`
	Seed           uint64  `toml:"seed"`
}

// RenderConfig holds the [render] table.
type RenderConfig struct {
	Formats    []string `toml:"formats"`
	Scale      float64  `toml:"scale"`
	ShowLabels bool     `toml:"show_labels"`
	Connectors bool     `toml:"connectors"`
}

// ServerConfig holds the [server] table.
type ServerConfig struct {
	Addr         string        `toml:"addr"`
	Timeout      time.Duration `toml:"timeout"`
	MaxBodyBytes int64         `toml:"max_body_bytes"`
	RateLimit    float64       `toml:"rate_limit"`
	Burst        int           `toml:"burst"`
}

// LoadConfig decodes a TOML config file. Unknown keys are rejected so that
// typos do not silently fall back to defaults.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		slices.Sort(keys)
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// Options converts the layout and render tables to pipeline options.
func (c Config) Options() Options {
	return Options{
		SampleSize:     c.Layout.SampleSize,
		SamplingType:   c.Layout.SamplingType,
		NodeSeparation: c.Layout.NodeSeparation,
		PiTol:          c.Layout.PiTol,
		MaxIterations:  c.Layout.MaxIterations,
		Seed:           c.Layout.Seed,
		Formats:        slices.Clone(c.Render.Formats),
		Scale:          c.Render.Scale,
		ShowLabels:     c.Render.ShowLabels,
		Connectors:     c.Render.Connectors,
	}
}
