package main

import (
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/treekit/pkg/tree"
)

type flattenOptions struct {
	projection projectionFlags
	filter     string
	jsonOutput bool
}

// flatRow is the JSON shape of one visible row.
type flatRow struct {
	ID       string `json:"id"`
	Label    string `json:"label,omitempty"`
	Depth    int    `json:"depth"`
	Leaf     bool   `json:"leaf"`
	Expanded bool   `json:"expanded"`
	Selected bool   `json:"selected"`
	Disabled bool   `json:"disabled,omitempty"`
}

func newFlattenCmd(root *rootFlags) *cobra.Command {
	opts := &flattenOptions{}

	cmd := &cobra.Command{
		Use:   "flatten FILE",
		Short: "Print the visible rows of a forest",
		Long: `Print the rows a tree view would show, one per line, indented by depth.

Nodes are collapsed unless expanded with --expand, --expand-all, --level or
--reveal. --filter takes an expression over id, label, disabled, depth, leaf,
expanded and selected, and lists every matching node with its ancestors.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFlatten(cmd, root.app, args[0], opts)
		},
	}

	opts.projection.register(cmd)
	cmd.Flags().StringVar(&opts.filter, "filter", "", `Filter expression, e.g. 'label contains "api" && !disabled'`)
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

func runFlatten(cmd *cobra.Command, app *appContext, path string, opts *flattenOptions) error {
	doc, err := newLoader(app).LoadFile(path)
	if err != nil {
		return err
	}
	ctrl, err := opts.projection.controller(app, doc)
	if err != nil {
		return err
	}

	var rows []tree.VisibleNode
	if opts.filter != "" {
		pred, err := tree.CompileFilter(opts.filter)
		if err != nil {
			return err
		}
		rows = ctrl.Filter(pred)
	} else {
		rows = ctrl.VisibleNodes()
	}

	if opts.jsonOutput {
		return renderFlattenJSON(cmd.OutOrStdout(), ctrl, rows)
	}
	return renderFlattenText(cmd.OutOrStdout(), ctrl, rows)
}

func toFlatRows(ctrl *tree.Controller, rows []tree.VisibleNode) []flatRow {
	out := make([]flatRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, flatRow{
			ID:       row.Node.ID,
			Label:    row.Node.Label,
			Depth:    row.Depth,
			Leaf:     row.Node.IsLeaf(),
			Expanded: ctrl.IsExpanded(row.Node.ID),
			Selected: ctrl.IsSelected(row.Node.ID),
			Disabled: row.Node.Disabled,
		})
	}
	return out
}

func renderFlattenJSON(w io.Writer, ctrl *tree.Controller, rows []tree.VisibleNode) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toFlatRows(ctrl, rows))
}

func renderFlattenText(w io.Writer, ctrl *tree.Controller, rows []tree.VisibleNode) error {
	for _, r := range toFlatRows(ctrl, rows) {
		if _, err := fmt.Fprintln(w, flatLine(r)); err != nil {
			return err
		}
	}
	return nil
}

// flatLine renders "  ▾ Label (id) *" style rows.
func flatLine(r flatRow) string {
	var sb strings.Builder
	sb.WriteString(strings.Repeat("  ", r.Depth))
	switch {
	case r.Leaf:
		sb.WriteString("•")
	case r.Expanded:
		sb.WriteString("▾")
	default:
		sb.WriteString("▸")
	}
	sb.WriteString(" ")
	if strings.TrimSpace(r.Label) != "" && r.Label != r.ID {
		sb.WriteString(r.Label)
		sb.WriteString(" (" + r.ID + ")")
	} else {
		sb.WriteString(r.ID)
	}
	if r.Disabled {
		sb.WriteString(" [disabled]")
	}
	if r.Selected {
		sb.WriteString(" *")
	}
	return sb.String()
}
