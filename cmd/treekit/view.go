package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vanderheijden86/treekit/pkg/config"
	"github.com/vanderheijden86/treekit/pkg/loader"
	"github.com/vanderheijden86/treekit/pkg/model"
	"github.com/vanderheijden86/treekit/pkg/persist"
	"github.com/vanderheijden86/treekit/pkg/tree"
	"github.com/vanderheijden86/treekit/pkg/ui"
)

const modeAsk = "ask"

type viewOptions struct {
	mode      string
	statePath string
	backend   string
	watch     bool
	noState   bool
}

func newViewCmd(root *rootFlags) *cobra.Command {
	opts := &viewOptions{}

	cmd := &cobra.Command{
		Use:   "view FILE",
		Short: "Browse a forest interactively",
		Long: `Open FILE in an interactive tree view.

Expanded and selected nodes are saved as they change and restored the next
time the same document is opened.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd, root.app, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.mode, "mode", "", "Selection mode: single, multi or ask (default from config)")
	f.StringVar(&opts.statePath, "state", "", "State file (default .treekit/tree-state.json)")
	f.StringVar(&opts.backend, "backend", "", "State backend: json or sqlite (default from config)")
	f.BoolVar(&opts.watch, "watch", false, "Reload FILE when it changes")
	f.BoolVar(&opts.noState, "no-state", false, "Do not restore or save expand/select state")

	return cmd
}

func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func runView(cmd *cobra.Command, app *appContext, path string, opts *viewOptions) error {
	if !isInteractive() {
		return errors.New("view needs an interactive terminal; use 'treekit flatten' for plain output")
	}

	ldr := newLoader(app)
	doc, err := ldr.LoadFile(path)
	if err != nil {
		return err
	}

	mode, err := resolveViewMode(app, opts.mode)
	if err != nil {
		return err
	}

	ctrl := tree.New(doc.Nodes, tree.WithMode(mode), tree.WithLogger(app.log))
	if depth := app.cfg.DefaultExpandDepth; depth > 0 {
		ctrl.ExpandToLevel(depth + 1)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if !opts.noState {
		store, err := openStateStore(app, opts)
		if err != nil {
			return err
		}
		defer store.Close()

		key := stateKey(doc)
		if restored, err := persist.Restore(ctx, ctrl, store, key); err != nil {
			app.log.Warn("ignoring saved tree state", "key", key, "error", err.Error())
		} else if restored {
			app.log.Debug("restored tree state", "key", key)
		}
		persist.AutoSave(ctrl, store, key, app.log)

		if _, ok := config.FindRoot(app.root); ok {
			if err := config.EnsureGitignored(app.root); err != nil {
				app.log.Warn("could not update .gitignore", "error", err.Error())
			}
		}
	}

	modelOpts := []ui.ModelOption{
		ui.WithTitle(doc.Key()),
		ui.WithModelLogger(app.log),
	}

	if opts.watch || app.cfg.Watch {
		reloads := make(chan ui.ReloadMsg)
		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		watcher, err := ldr.Watch(path, func(doc *loader.Document, err error) {
			select {
			case reloads <- ui.ReloadMsg{Doc: doc, Err: err}:
			case <-watchCtx.Done():
			}
		})
		if err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		// cancel runs first so a pending send unblocks before Stop waits
		defer watcher.Stop()
		defer cancel()

		modelOpts = append(modelOpts, ui.WithReloads(reloads))
	}

	program := tea.NewProgram(
		ui.NewModel(ctrl, modelOpts...),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run viewer: %w", err)
	}
	return nil
}

func resolveViewMode(app *appContext, flag string) (model.SelectionMode, error) {
	switch flag {
	case "":
		return app.cfg.Mode, nil
	case modeAsk:
		return promptMode(app.cfg.Mode)
	}
	return model.ParseSelectionMode(flag)
}

// promptMode asks which selection mode to use, preselecting initial.
func promptMode(initial model.SelectionMode) (model.SelectionMode, error) {
	choice := string(initial)
	err := huh.NewSelect[string]().
		Title("Selection mode").
		Options(
			huh.NewOption("Single: one node at a time", string(model.SelectSingle)),
			huh.NewOption("Multi: toggle any number of nodes", string(model.SelectMulti)),
		).
		Value(&choice).
		Run()
	if err != nil {
		return "", fmt.Errorf("choose selection mode: %w", err)
	}
	return model.ParseSelectionMode(choice)
}

func openStateStore(app *appContext, opts *viewOptions) (persist.Store, error) {
	backend := opts.backend
	if backend == "" {
		backend = app.cfg.StateBackend
	}
	path := opts.statePath
	if path == "" {
		cfg := app.cfg
		cfg.StateBackend = backend
		path = cfg.ResolveStatePath(app.root)
	}
	store, err := persist.Open(backend, path, app.log)
	if err != nil {
		return nil, err
	}
	app.log.Debug("opened state store", "backend", backend, "path", path)
	return store, nil
}

// stateKey identifies a document across runs: its name when it has one,
// else its absolute path.
func stateKey(doc *loader.Document) string {
	if doc.Name != "" {
		return doc.Name
	}
	if abs, err := filepath.Abs(doc.Path); err == nil {
		return abs
	}
	return doc.Key()
}
