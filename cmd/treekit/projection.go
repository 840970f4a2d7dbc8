package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/treekit/pkg/loader"
	"github.com/vanderheijden86/treekit/pkg/model"
	"github.com/vanderheijden86/treekit/pkg/tree"
)

// projectionFlags shape the expand/select state of a non-interactive run.
type projectionFlags struct {
	mode      string
	expand    []string
	expandAll bool
	level     int
	reveal    []string
	selectIDs []string
}

func (p *projectionFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&p.mode, "mode", "", "Selection mode: single or multi (default from config)")
	f.StringSliceVar(&p.expand, "expand", nil, "Expand these node ids")
	f.BoolVar(&p.expandAll, "expand-all", false, "Expand every node")
	f.IntVar(&p.level, "level", 0, "Show nodes down to this level (1 = roots only)")
	f.StringSliceVar(&p.reveal, "reveal", nil, "Expand the ancestors of these node ids")
	f.StringSliceVar(&p.selectIDs, "select", nil, "Select these node ids, in order")
}

func (p *projectionFlags) selectionMode(app *appContext) (model.SelectionMode, error) {
	if p.mode == "" {
		return app.cfg.Mode, nil
	}
	return model.ParseSelectionMode(p.mode)
}

// controller builds a Controller for doc with the requested state applied.
// Without any expand flag the config's default expand depth is used.
func (p *projectionFlags) controller(app *appContext, doc *loader.Document) (*tree.Controller, error) {
	mode, err := p.selectionMode(app)
	if err != nil {
		return nil, err
	}
	if p.level < 0 {
		return nil, fmt.Errorf("--level must not be negative, got %d", p.level)
	}

	ctrl := tree.New(doc.Nodes,
		tree.WithMode(mode),
		tree.WithLogger(app.log),
	)

	explicit := p.expandAll || p.level > 0 || len(p.expand) > 0 || len(p.reveal) > 0
	switch {
	case p.expandAll:
		ctrl.ExpandAll()
	case p.level > 0:
		ctrl.ExpandToLevel(p.level)
	case !explicit && app.cfg.DefaultExpandDepth > 0:
		ctrl.ExpandToLevel(app.cfg.DefaultExpandDepth + 1)
	}
	for _, id := range p.expand {
		if !ctrl.IsExpanded(id) {
			ctrl.ToggleExpand(id)
		}
	}
	for _, id := range p.reveal {
		ctrl.Reveal(id)
	}
	for _, id := range p.selectIDs {
		if !ctrl.IsSelected(id) {
			ctrl.ToggleSelect(id)
		}
	}
	return ctrl, nil
}

func newLoader(app *appContext) *loader.Loader {
	opts := []loader.Option{loader.WithLogger(app.log)}
	if app.cfg.AutoID {
		opts = append(opts, loader.WithAutoID())
	}
	return loader.New(opts...)
}
