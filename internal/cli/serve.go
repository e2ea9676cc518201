package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/spectra/pkg/observability"
	"github.com/matzehuels/spectra/pkg/pipeline"
	"github.com/matzehuels/spectra/pkg/server"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr         string
		timeout      time.Duration
		maxBodyBytes int64
		rateLimit    float64
		burst        int
		noMetrics    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout API over HTTP",
		Long: `Serve the layout API over HTTP.

Endpoints:
  POST /v1/layout            graph JSON in, layout JSON out
  POST /v1/render?format=svg graph JSON in, rendered artifact out
  GET  /healthz              liveness and version
  GET  /metrics              Prometheus metrics

Layouts are cached in the backend selected by --cache, so a shared redis://
or mongodb:// cache lets several instances reuse each other's results.
With --rate-limit each client address gets its own request budget on /v1.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			srvCfg := server.Config{
				Addr:         cfg.Server.Addr,
				Timeout:      cfg.Server.Timeout,
				MaxBodyBytes: cfg.Server.MaxBodyBytes,
				RateLimit:    cfg.Server.RateLimit,
				Burst:        cfg.Server.Burst,
			}
			if cmd.Flags().Changed("addr") || srvCfg.Addr == "" {
				srvCfg.Addr = addr
			}
			if cmd.Flags().Changed("timeout") {
				srvCfg.Timeout = timeout
			}
			if cmd.Flags().Changed("max-body") {
				srvCfg.MaxBodyBytes = maxBodyBytes
			}
			if cmd.Flags().Changed("rate-limit") {
				srvCfg.RateLimit = rateLimit
			}
			if cmd.Flags().Changed("burst") {
				srvCfg.Burst = burst
			}
			return c.runServe(cmd.Context(), cfg, srvCfg, !noMetrics)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().DurationVar(&timeout, "timeout", server.DefaultTimeout, "per-request time limit")
	cmd.Flags().Int64Var(&maxBodyBytes, "max-body", server.DefaultMaxBodyBytes, "maximum request body size in bytes")
	cmd.Flags().Float64Var(&rateLimit, "rate-limit", 0, "requests per second per client on /v1 (0 disables)")
	cmd.Flags().IntVar(&burst, "burst", 0, "rate limit burst size (default: rate limit rounded down, at least 1)")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "disable the /metrics endpoint")

	return cmd
}

// runServe installs the Prometheus hooks and serves until ctx is canceled.
func (c *CLI) runServe(ctx context.Context, cfg pipeline.Config, srvCfg server.Config, metrics bool) error {
	runner, err := c.newRunner(ctx, cfg, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	if metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		observability.NewPrometheusHooks(reg).Install()
		defer observability.Reset()
		srvCfg.Metrics = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	}

	srv := server.New(runner, srvCfg, c.Logger)
	printInfo("Serving on %s", StyleHighlight.Render(srv.Addr()))
	if err := srv.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	printSuccess("Server stopped")
	return nil
}
