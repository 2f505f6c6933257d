// Package watcher keeps a catalog root fresh: filesystem events under
// the watched directory are debounced into periodic incremental
// sweeps, so new photos dropped into the library get indexed without
// anyone running the index command.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/visualoom/visualoom/internal/meta"
)

// DefaultDebounce is how long the watcher waits after the last event
// before triggering a sweep. Bulk copies land as one sweep, not one
// per file.
const DefaultDebounce = 2 * time.Second

// SweepFunc is called with the watched root when changes settle.
type SweepFunc func(root string)

// Watcher watches a directory tree and triggers sweeps.
type Watcher struct {
	root     string
	debounce time.Duration
	sweep    SweepFunc
	logger   *slog.Logger

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	timer   *time.Timer
	stopped bool
}

// New creates a Watcher over root. debounce <= 0 uses DefaultDebounce.
func New(root string, debounce time.Duration, sweep SweepFunc, logger *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		root:     root,
		debounce: debounce,
		sweep:    sweep,
		logger:   logger,
	}
}

// Start begins watching. It registers the root and every existing
// subdirectory, then runs until the context is cancelled or Stop is
// called. Directories created later are added as they appear.
func (w *Watcher) Start(ctx context.Context) error {
	info, err := os.Stat(w.root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("watch root is not a directory: %s", w.root)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		_ = fsw.Close()
		return nil
	}
	w.fsw = fsw
	w.mu.Unlock()

	if err := w.addTree(w.root); err != nil {
		_ = fsw.Close()
		return err
	}

	w.logger.Info("watcher_started",
		slog.String("root", w.root),
		slog.Duration("debounce", w.debounce))

	go w.loop(ctx, fsw)
	return nil
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher) {
	defer func() { _ = fsw.Close() }()

	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handle(event)

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher_error", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return
	}

	// New directories must be registered before their contents settle.
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warn("watcher_add_failed",
					slog.String("path", event.Name),
					slog.String("error", err.Error()))
			}
			w.schedule()
			return
		}
	}

	// Only image files are worth a sweep.
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) && !event.Op.Has(fsnotify.Write) {
		return
	}
	if !meta.IsImageFile(name) {
		return
	}

	w.logger.Debug("watcher_event",
		slog.String("path", event.Name),
		slog.String("op", event.Op.String()))
	w.schedule()
}

// schedule resets the debounce timer. The sweep fires once events
// stop arriving for a full window.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.logger.Info("watcher_sweep_triggered", slog.String("root", w.root))
		w.sweep(w.root)
	})
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.watchDir(path)
	})
}

func (w *Watcher) watchDir(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped || w.fsw == nil {
		return nil
	}
	return w.fsw.Add(path)
}

// Stop halts watching and any pending sweep trigger. Safe to call
// multiple times.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	if w.fsw != nil {
		_ = w.fsw.Close()
		w.fsw = nil
	}
	w.logger.Info("watcher_stopped", slog.String("root", w.root))
}
