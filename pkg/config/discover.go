package config

import (
	"os"
	"path/filepath"
)

// Discover finds the project root above start and loads its config.
// Without a project it returns Defaults and start itself as the root.
func Discover(start string) (cfg Config, root string, err error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return Defaults(), start, err
	}
	root, ok := FindRoot(abs)
	if !ok {
		return Defaults(), abs, nil
	}
	cfg, err = Load(filepath.Join(root, DirName, FileName))
	return cfg, root, err
}

// FindRoot walks up from dir looking for a .treekit/ directory. It stops
// at the filesystem root or the user's home directory.
func FindRoot(dir string) (string, bool) {
	home, _ := os.UserHomeDir()

	for {
		if info, err := os.Stat(filepath.Join(dir, DirName)); err == nil && info.IsDir() {
			return dir, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		if home != "" && dir == home {
			break
		}
		dir = parent
	}
	return "", false
}
