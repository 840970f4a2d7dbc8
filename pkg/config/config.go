// Package config loads treekit settings from .treekit/treekit.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/treekit/pkg/model"
)

const (
	// DirName is the per-project directory holding config and state.
	DirName = ".treekit"
	// FileName is the config file inside DirName.
	FileName = "treekit.yaml"
)

// Config holds user settings. Zero-valued fields in the file keep their defaults.
type Config struct {
	// Mode is the selection mode: single or multi
	Mode model.SelectionMode `yaml:"mode" json:"mode" validate:"oneof=single multi"`

	// StatePath is where expand/select state is persisted. Relative paths
	// resolve against the project root. Empty means the backend's default
	// file inside .treekit/.
	StatePath string `yaml:"state_path,omitempty" json:"state_path,omitempty"`

	// StateBackend selects the persistence backend
	StateBackend string `yaml:"state_backend" json:"state_backend" validate:"oneof=json sqlite"`

	LogLevel string `yaml:"log_level" json:"log_level" validate:"oneof=trace debug info warn error disabled"`

	// DefaultExpandDepth expands nodes down to this level on first open (0 = all collapsed)
	DefaultExpandDepth int `yaml:"default_expand_depth" json:"default_expand_depth" validate:"min=0"`

	// Watch reloads the forest file when it changes
	Watch bool `yaml:"watch" json:"watch"`

	// AutoID assigns generated ids to nodes that have none
	AutoID bool `yaml:"auto_id" json:"auto_id"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Mode:         model.SelectSingle,
		StateBackend: "json",
		LogLevel:     "warn",
	}
}

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		validateInst = validator.New()
	})
	return validateInst
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validatorInstance().Struct(c); err != nil {
		var ves validator.ValidationErrors
		if errors.As(err, &ves) && len(ves) > 0 {
			fe := ves[0]
			return fmt.Errorf("config field %s: failed validation for tag '%s' (value %v)",
				strings.ToLower(fe.Field()), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Load reads the config at path on top of Defaults. A missing file is not
// an error.
func Load(path string) (Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Defaults(), fmt.Errorf("parse config %s: %w", path, err)
	}
	if mode, err := model.ParseSelectionMode(string(cfg.Mode)); err == nil {
		cfg.Mode = mode
	}
	cfg.StateBackend = strings.ToLower(strings.TrimSpace(cfg.StateBackend))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if err := cfg.Validate(); err != nil {
		return Defaults(), fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ResolveStatePath returns the state file for a project rooted at root.
func (c *Config) ResolveStatePath(root string) string {
	if c.StatePath != "" {
		if filepath.IsAbs(c.StatePath) {
			return c.StatePath
		}
		return filepath.Join(root, c.StatePath)
	}
	name := "tree-state.json"
	if c.StateBackend == "sqlite" {
		name = "tree-state.db"
	}
	return filepath.Join(root, DirName, name)
}
