package main_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
)

// buildTreekitBinary compiles cmd/treekit into a temp dir and returns its path.
func buildTreekitBinary(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping e2e build in short mode")
	}

	name := "treekit"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	binPath := filepath.Join(t.TempDir(), name)

	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/treekit")
	cmd.Dir = filepath.Join("..", "..")
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("Build failed: %v\n%s", err, out)
	}
	return binPath
}

func TestEndToEndBuildAndRun(t *testing.T) {
	binPath := buildTreekitBinary(t)
	envDir := t.TempDir()

	runCmd := exec.Command(binPath, "version")
	runCmd.Dir = envDir
	if out, err := runCmd.CombinedOutput(); err != nil {
		t.Fatalf("Execution failed: %v\n%s", err, out)
	}
}

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}
