package file

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/aobun/internal/core/domain"
	"github.com/custodia-labs/aobun/internal/logger"
)

// DefaultDebounce coalesces the burst of events editors emit on save.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reloads the configuration file when it changes.
// The directory is watched rather than the file so that editors which
// save by rename-and-replace are still seen.
type Watcher struct {
	store    *ConfigStore
	debounce time.Duration
	fsw      *fsnotify.Watcher
}

// NewWatcher starts watching the store's directory.
// The directory must exist. Call Run to receive reloads and Close when done.
func (s *ConfigStore) NewWatcher(debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(s.filePath)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(s.filePath), err)
	}

	return &Watcher{store: s, debounce: debounce, fsw: fsw}, nil
}

// Run blocks until ctx is cancelled, calling onChange with freshly loaded
// settings after each change to the config file. Invalid files are logged
// and skipped; the previous settings stay in effect.
func (w *Watcher) Run(ctx context.Context, onChange func(domain.Settings)) error {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.store.Path() {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug("config event: %s", event)
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			fire = timer.C

		case <-fire:
			fire = nil
			settings, err := w.store.Load()
			if err != nil {
				logger.Warn("ignoring config change: %v", err)
				continue
			}
			logger.Info("reloaded config from %s", w.store.Path())
			onChange(settings)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher: %v", err)
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
