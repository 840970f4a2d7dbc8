package loader

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reload struct {
	doc *Document
	err error
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "tree.yaml", "- id: first\n")

	got := make(chan reload, 4)
	w, err := New().WatchWithDebounce(path, 20*time.Millisecond, func(doc *Document, err error) {
		got <- reload{doc, err}
	})
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("- id: second\n"), 0o644))

	select {
	case r := <-got:
		require.NoError(t, r.err)
		assert.Equal(t, "second", r.doc.Nodes[0].ID)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatcherReportsBadContent(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "tree.yaml", "- id: first\n")

	got := make(chan reload, 4)
	w, err := New().WatchWithDebounce(path, 20*time.Millisecond, func(doc *Document, err error) {
		got <- reload{doc, err}
	})
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("- id: [\n"), 0o644))

	select {
	case r := <-got:
		assert.Nil(t, r.doc)
		var pe *ParseError
		assert.ErrorAs(t, r.err, &pe)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}

func TestWatcherIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "tree.yaml", "- id: first\n")

	got := make(chan reload, 4)
	w, err := New().WatchWithDebounce(path, 20*time.Millisecond, func(doc *Document, err error) {
		got <- reload{doc, err}
	})
	require.NoError(t, err)
	defer w.Stop()

	abs, _ := filepath.Abs(path)
	assert.Equal(t, abs, w.Path())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("- id: x\n"), 0o644))

	select {
	case r := <-got:
		t.Fatalf("unexpected reload: %+v", r)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherStopWaitsForRunningReload(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "tree.yaml", "- id: first\n")

	entered := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	w, err := New().WatchWithDebounce(path, 10*time.Millisecond, func(*Document, error) {
		if calls.Add(1) == 1 {
			close(entered)
			<-release
		}
	})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("- id: second\n"), 0o644))
	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	stopped := make(chan struct{})
	go func() {
		w.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while onReload was still running")
	case <-time.After(100 * time.Millisecond):
	}

	close(release)
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return after onReload finished")
	}

	require.NoError(t, os.WriteFile(path, []byte("- id: third\n"), 0o644))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "no reloads after Stop")
}

func TestWatcherStopCancelsPendingReload(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "tree.yaml", "- id: first\n")

	var calls atomic.Int32
	w, err := New().WatchWithDebounce(path, time.Hour, func(*Document, error) {
		calls.Add(1)
	})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("- id: second\n"), 0o644))
	time.Sleep(100 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop blocked on a reload that never started")
	}
	assert.Zero(t, calls.Load())
}
