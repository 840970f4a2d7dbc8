package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vanderheijden86/treekit/pkg/export"
)

type exportOptions struct {
	projection projectionFlags
	format     string
	output     string
	title      string
	showIDs    bool
}

func newExportCmd(root *rootFlags) *cobra.Command {
	opts := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Draw the visible rows of a forest as SVG, PNG or Markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, root.app, args[0], opts)
		},
	}

	opts.projection.register(cmd)
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Output format: svg, png or md (default from --output extension, else svg)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVar(&opts.title, "title", "", "Title drawn above the tree (default document name)")
	cmd.Flags().BoolVar(&opts.showIDs, "ids", false, "Show node ids next to labels")

	return cmd
}

func resolveExportFormat(format, output string) (export.Format, error) {
	switch {
	case format != "":
		return export.ParseFormat(format)
	case output != "" && filepath.Ext(output) != "":
		return export.ParseFormat(filepath.Ext(output))
	}
	return export.FormatSVG, nil
}

func runExport(cmd *cobra.Command, app *appContext, path string, opts *exportOptions) error {
	format, err := resolveExportFormat(opts.format, opts.output)
	if err != nil {
		return err
	}

	doc, err := newLoader(app).LoadFile(path)
	if err != nil {
		return err
	}
	ctrl, err := opts.projection.controller(app, doc)
	if err != nil {
		return err
	}

	title := opts.title
	if title == "" {
		title = doc.Key()
	}
	eo := export.Options{Title: title, ShowIDs: opts.showIDs}

	if opts.output == "" {
		if format == export.FormatPNG && term.IsTerminal(int(os.Stdout.Fd())) && cmd.OutOrStdout() == os.Stdout {
			return fmt.Errorf("refusing to write PNG to a terminal; use --output")
		}
		return export.Write(cmd.OutOrStdout(), format, ctrl, eo)
	}

	if err := export.SaveToFile(opts.output, format, ctrl, eo); err != nil {
		return err
	}
	app.log.Info("exported tree", "path", opts.output, "format", string(format))
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", opts.output)
	return nil
}
