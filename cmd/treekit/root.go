package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/treekit/pkg/config"
	"github.com/vanderheijden86/treekit/pkg/logging"
)

type rootFlags struct {
	configPath string
	logLevel   string
	verbose    bool

	// populated by PersistentPreRunE
	app *appContext
}

// appContext is what every subcommand needs after flag parsing.
type appContext struct {
	cfg  config.Config
	root string // project root: the directory holding .treekit/
	log  *logging.Logger
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "treekit",
		Short:         "Browse and inspect hierarchical forests with expand/select state",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			app, err := setupApp(cmd, flags)
			if err != nil {
				return err
			}
			flags.app = app
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "Config file (default: .treekit/treekit.yaml above the working directory)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error, disabled")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newViewCmd(flags))
	cmd.AddCommand(newFlattenCmd(flags))
	cmd.AddCommand(newStatsCmd(flags))
	cmd.AddCommand(newExportCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func setupApp(cmd *cobra.Command, flags *rootFlags) (*appContext, error) {
	var (
		cfg  config.Config
		root string
		err  error
	)
	if flags.configPath != "" {
		cfg, err = config.Load(flags.configPath)
		root = projectRootFor(flags.configPath)
	} else {
		var wd string
		if wd, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("determine working directory: %w", err)
		}
		cfg, root, err = config.Discover(wd)
	}
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	switch {
	case flags.logLevel != "":
		level = flags.logLevel
	case flags.verbose:
		level = "debug"
	}
	log, err := logging.New(logging.Options{
		Level:         level,
		HumanReadable: true,
		Writer:        cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	log.Debug("configuration loaded", "root", root, "mode", string(cfg.Mode), "backend", cfg.StateBackend)
	return &appContext{cfg: cfg, root: root, log: log}, nil
}

// projectRootFor maps an explicit config path to its project root: the
// parent of .treekit/ when the file lives there, else the file's directory.
func projectRootFor(configPath string) string {
	abs, err := filepath.Abs(configPath)
	if err != nil {
		abs = configPath
	}
	dir := filepath.Dir(abs)
	if filepath.Base(dir) == config.DirName {
		return filepath.Dir(dir)
	}
	return dir
}
