package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

const gitignoreComment = "# treekit local config and state"

// EnsureGitignored makes sure the project's .gitignore covers .treekit/.
// It creates the file when missing and leaves existing content untouched.
// Calling it repeatedly is safe.
func EnsureGitignored(projectDir string) error {
	if projectDir == "" {
		var err error
		projectDir, err = os.Getwd()
		if err != nil {
			return err
		}
	}
	path := filepath.Join(projectDir, ".gitignore")

	covered, err := isIgnored(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	if covered {
		return nil
	}
	return appendPattern(path, DirName+"/")
}

func isIgnored(path string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if coversStateDir(line) {
			return true, nil
		}
	}
	return false, scanner.Err()
}

// coversStateDir reports whether a .gitignore line ignores the whole state directory.
func coversStateDir(line string) bool {
	switch strings.TrimPrefix(line, "/") {
	case DirName, DirName + "/", DirName + "/*", DirName + "/**", DirName + "/**/*":
		return true
	}
	return false
}

func appendPattern(path, pattern string) error {
	content, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	var b strings.Builder
	if len(content) > 0 {
		if content[len(content)-1] != '\n' {
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	b.WriteString(gitignoreComment + "\n" + pattern + "\n")

	_, err = file.WriteString(b.String())
	return err
}
