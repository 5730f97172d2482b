// Package watch rebuilds the export when the docs source tree changes.
// Bursts of filesystem events are coalesced: a rebuild fires after a quiet
// window, but never later than the max delay after the first event.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Config controls the watcher.
type Config struct {
	// Dir is the docs source tree to watch, recursively.
	Dir string

	// QuietWindow is how long the tree must stay quiet before a rebuild.
	QuietWindow time.Duration

	// MaxDelay bounds how long a rebuild can be postponed by a steady
	// stream of events.
	MaxDelay time.Duration
}

// Watcher drives debounced rebuilds from filesystem events.
type Watcher struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a watcher for cfg.
func New(cfg Config) (*Watcher, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("watch directory is required")
	}
	if cfg.QuietWindow <= 0 {
		cfg.QuietWindow = 500 * time.Millisecond
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 5 * time.Second
	}
	return &Watcher{cfg: cfg, logger: slog.Default()}, nil
}

// WithLogger sets a custom logger.
func (w *Watcher) WithLogger(logger *slog.Logger) *Watcher {
	w.logger = logger
	return w
}

// Run watches the tree and invokes rebuild after each debounced burst until
// ctx is done. Rebuild failures are logged; watching continues.
func (w *Watcher) Run(ctx context.Context, rebuild func(context.Context) error) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	if err := w.addRecursive(fw, w.cfg.Dir); err != nil {
		return err
	}
	w.logger.Info("Watching for changes", "dir", w.cfg.Dir)

	newStoppedTimer := func() *time.Timer {
		t := time.NewTimer(time.Hour)
		if !t.Stop() {
			select {
			case <-t.C:
			default:
			}
		}
		return t
	}
	resetTimer := func(t *time.Timer, after time.Duration) {
		if !t.Stop() {
			select {
			case <-t.C:
			default:
			}
		}
		t.Reset(after)
	}

	quietTimer := newStoppedTimer()
	maxTimer := newStoppedTimer()
	var quietC, maxC <-chan time.Time
	pending := 0

	doRebuild := func() {
		w.logger.Info("Change burst settled, rebuilding", "events", pending)
		pending = 0
		quietC, maxC = nil, nil
		if err := rebuild(ctx); err != nil {
			w.logger.Error("Rebuild failed", "error", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			// New directories must be picked up so nested edits are seen.
			if event.Op.Has(fsnotify.Create) {
				if err := w.addRecursive(fw, event.Name); err == nil {
					w.logger.Debug("Watching new directory", "dir", event.Name)
				}
			}

			pending++
			resetTimer(quietTimer, w.cfg.QuietWindow)
			quietC = quietTimer.C
			if pending == 1 {
				resetTimer(maxTimer, w.cfg.MaxDelay)
				maxC = maxTimer.C
			}

		case <-quietC:
			doRebuild()

		case <-maxC:
			doRebuild()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", "error", err)
		}
	}
}

// relevant filters out events the export does not care about: non-markdown
// files and hidden paths (editors write swap files constantly).
func (w *Watcher) relevant(event fsnotify.Event) bool {
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	ext := filepath.Ext(base)
	// Directory events carry no extension; keep them for addRecursive.
	return ext == "" || strings.EqualFold(ext, ".md")
}

// addRecursive registers path and every non-hidden directory below it.
// Non-directory paths are ignored.
func (w *Watcher) addRecursive(fw *fsnotify.Watcher, path string) error {
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == path {
				return nil
			}
			w.logger.Warn("Skipping unwatchable path", "path", p, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != path && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := fw.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		return nil
	})
}
