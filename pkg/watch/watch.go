// Package watch rebuilds the engine when files in the content directory
// change. Bursts of events are coalesced into a single rebuild.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher calls Reload after the content directory has been quiet for the
// debounce interval following a change.
type Watcher struct {
	dirs     []string
	reload   func() error
	debounce time.Duration
	logger   *slog.Logger
}

// New returns a watcher over dir and its direct subdirectories (the terms
// directory lives one level down). Directories created later are added
// as their Create events arrive.
func New(dir string, debounce time.Duration, reload func() error, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	dirs := []string{dir}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read content dir %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, filepath.Join(dir, e.Name()))
		}
	}
	return &Watcher{dirs: dirs, reload: reload, debounce: debounce, logger: logger}, nil
}

// Run watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	for _, d := range w.dirs {
		if err := fw.Add(d); err != nil {
			return fmt.Errorf("watch %s: %w", d, err)
		}
	}
	w.logger.Info("watching content", "dirs", len(w.dirs), "debounce", w.debounce)

	// fire is nil while no rebuild is pending.
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := fw.Add(ev.Name); err != nil {
						w.logger.Warn("watch new directory", "path", ev.Name, "error", err)
					} else {
						w.logger.Info("watching new directory", "path", ev.Name)
					}
				}
			}
			if !relevant(ev) {
				continue
			}
			w.logger.Debug("content changed", "path", ev.Name, "op", ev.Op.String())
			fire = time.After(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		case <-fire:
			fire = nil
			if err := w.reload(); err != nil {
				w.logger.Error("rebuild failed, keeping previous engine", "error", err)
			}
		}
	}
}

// relevant filters out editor swap files and chmod-only events.
func relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	base := filepath.Base(ev.Name)
	if base == "" || base[0] == '.' || base[len(base)-1] == '~' {
		return false
	}
	switch filepath.Ext(base) {
	case ".swp", ".tmp":
		return false
	}
	return true
}
