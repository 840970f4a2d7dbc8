package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/treekit/pkg/stats"
)

type statsOptions struct {
	top        int
	jsonOutput bool
}

// statsReport pairs a document with its summary for JSON output.
type statsReport struct {
	Name    string        `json:"name"`
	Path    string        `json:"path"`
	Summary stats.Summary `json:"summary"`
}

func newStatsCmd(root *rootFlags) *cobra.Command {
	opts := &statsOptions{}

	cmd := &cobra.Command{
		Use:   "stats FILE...",
		Short: "Summarize the shape of one or more forests",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd, root.app, args, opts)
		},
	}

	cmd.Flags().IntVar(&opts.top, "top", 5, "Number of hub nodes to rank (0 disables ranking)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

func runStats(cmd *cobra.Command, app *appContext, paths []string, opts *statsOptions) error {
	if opts.top < 0 {
		return fmt.Errorf("--top must not be negative, got %d", opts.top)
	}
	docs, err := newLoader(app).LoadAll(cmd.Context(), paths)
	if err != nil {
		return err
	}

	reports := make([]statsReport, len(docs))
	for i, doc := range docs {
		reports[i] = statsReport{
			Name:    doc.Key(),
			Path:    doc.Path,
			Summary: stats.Compute(doc.Nodes, opts.top),
		}
	}

	if opts.jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}
	for i, r := range reports {
		if i > 0 {
			fmt.Fprintln(cmd.OutOrStdout())
		}
		if err := renderStatsTable(cmd.OutOrStdout(), r); err != nil {
			return err
		}
	}
	return nil
}

func renderStatsTable(w io.Writer, r statsReport) error {
	s := r.Summary
	fmt.Fprintf(w, "== %s ==\n", r.Name)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "nodes\t%d\n", s.Nodes)
	fmt.Fprintf(tw, "roots\t%d\n", s.Roots)
	fmt.Fprintf(tw, "leaves\t%d\n", s.Leaves)
	fmt.Fprintf(tw, "disabled\t%d\n", s.Disabled)
	fmt.Fprintf(tw, "max depth\t%d\n", s.MaxDepth)
	fmt.Fprintf(tw, "depth mean\t%.2f (stddev %.2f)\n", s.DepthMean, s.DepthStdDev)
	fmt.Fprintf(tw, "branching\t%.2f mean, %d max\n", s.BranchingMean, s.BranchingMax)

	if len(s.Hubs) > 0 {
		parts := make([]string, len(s.Hubs))
		for i, h := range s.Hubs {
			parts[i] = fmt.Sprintf("%s (%.2f)", h.ID, h.Score)
		}
		line := strings.Join(parts, ", ")
		if s.HubSampleSize > 0 {
			line += fmt.Sprintf(" [estimated from %d pivots]", s.HubSampleSize)
		}
		fmt.Fprintf(tw, "hubs\t%s\n", line)
	}
	return tw.Flush()
}
