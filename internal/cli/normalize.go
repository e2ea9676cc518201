package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/spectra/pkg/core/spectral"
)

// normalizeReport is the machine-readable output of the normalize command.
type normalizeReport struct {
	Leaves          int                  `json:"leaves"`
	Vertices        int                  `json:"vertices"`
	Connectors      []spectral.Connector `json:"connectors"`
	Representatives map[string]string    `json:"representatives,omitempty"`
	Scopes          []spectral.Scope     `json:"scopes"`
}

// normalizeCommand creates the normalize command, which shows how a graph is
// flattened and reconnected before layout.
func (c *CLI) normalizeCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "normalize [graph.json | URL | -]",
		Short: "Show the connectors and representatives a layout would use",
		Long: `Show the connectors and representatives a layout would use.

Every group of sibling nodes that is split into several connected components
is joined by synthetic connectors, nested groups first. Compound nodes are
placed at a representative leaf. This command prints that plan without
computing positions.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runNormalize(cmd.Context(), cmd.OutOrStdout(), args[0], asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the plan as JSON")

	return cmd
}

func (c *CLI) runNormalize(ctx context.Context, w io.Writer, input string, asJSON bool) error {
	g, err := c.Source.Load(ctx, input)
	if err != nil {
		return fmt.Errorf("load graph %s: %w", input, err)
	}

	flat, err := spectral.Normalize(g)
	if err != nil {
		return err
	}
	c.Logger.Debug("normalized graph", "leaves", flat.Leaves, "connectors", len(flat.Connectors))

	report := normalizeReport{
		Leaves:          flat.Leaves,
		Vertices:        flat.Size(),
		Connectors:      flat.Connectors,
		Representatives: flat.Representatives,
		Scopes:          flat.Scopes,
	}
	if report.Connectors == nil {
		report.Connectors = []spectral.Connector{}
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	printNormalize(report)
	return nil
}

// printNormalize prints the plan in the styled terminal format.
func printNormalize(r normalizeReport) {
	printSuccess("Normalized graph")
	printKeyValue("Leaves", strconv.Itoa(r.Leaves))
	printKeyValue("Vertices", strconv.Itoa(r.Vertices))
	printKeyValue("Connectors", strconv.Itoa(len(r.Connectors)))

	for _, s := range r.Scopes {
		if len(s.Groups) < 2 {
			continue
		}
		scope := s.Parent
		if scope == "" {
			scope = "(top level)"
		}
		printNewline()
		printInfo("%s: %d groups, anchors %s", scope, len(s.Groups), strings.Join(s.Anchors, ", "))
	}

	if len(r.Connectors) > 0 {
		printNewline()
		for _, conn := range r.Connectors {
			printDetail("%s joins %s", conn.ID, strings.Join(conn.Targets, " and "))
		}
	}

	if len(r.Representatives) > 0 {
		printNewline()
		ids := make([]string, 0, len(r.Representatives))
		for id := range r.Representatives {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		for _, id := range ids {
			printDetail("%s placed at %s", id, r.Representatives[id])
		}
	}
}
