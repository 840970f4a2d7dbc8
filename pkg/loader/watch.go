package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces bursts of writes from editors.
const DefaultDebounce = 200 * time.Millisecond

// ReloadFunc receives the re-parsed document or the error that stopped it.
type ReloadFunc func(doc *Document, err error)

// Watcher reloads a forest file whenever it changes on disk.
type Watcher struct {
	loader   *Loader
	path     string
	onReload ReloadFunc
	watcher  *fsnotify.Watcher
	debounce time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu       sync.Mutex
	timer    *time.Timer
	inflight sync.WaitGroup // scheduled or running reloads
}

// Watch starts watching path and calls onReload after each debounced change.
// The parent directory is watched so that editors which replace the file
// through a rename are still seen.
func (l *Loader) Watch(path string, onReload ReloadFunc) (*Watcher, error) {
	return l.WatchWithDebounce(path, DefaultDebounce, onReload)
}

// WatchWithDebounce is Watch with an explicit quiet period.
func (l *Loader) WatchWithDebounce(path string, debounce time.Duration, onReload ReloadFunc) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		loader:   l,
		path:     abs,
		onReload: onReload,
		watcher:  fw,
		debounce: debounce,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Stop shuts the watcher down. It waits for the event loop and for a reload
// that is already running, so onReload is never called after Stop returns.
// An onReload that blocks forever therefore blocks Stop too.
func (w *Watcher) Stop() {
	w.cancel()
	w.watcher.Close()
	<-w.done

	w.mu.Lock()
	w.stopTimer()
	w.mu.Unlock()
	w.inflight.Wait()
}

// stopTimer cancels a pending reload. Callers hold mu.
func (w *Watcher) stopTimer() {
	if w.timer != nil && w.timer.Stop() {
		w.inflight.Done()
	}
	w.timer = nil
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.schedule()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.loader.log.Warn("file watcher error", "path", w.path, "error", err.Error())
		}
	}
}

// schedule restarts the debounce timer.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopTimer()
	w.inflight.Add(1)
	w.timer = time.AfterFunc(w.debounce, func() {
		defer w.inflight.Done()
		w.reload()
	})
}

func (w *Watcher) reload() {
	if w.ctx.Err() != nil {
		return
	}
	doc, err := w.loader.LoadFile(w.path)
	if err != nil {
		w.loader.log.Warn("reload failed, keeping previous forest", "path", w.path, "error", err.Error())
	} else {
		w.loader.log.Info("forest reloaded", "path", w.path, "nodes", len(doc.Nodes))
	}
	if w.onReload != nil {
		w.onReload(doc, err)
	}
}
