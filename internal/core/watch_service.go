package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/EmundoT/avrogen/internal/logging"
	"github.com/EmundoT/avrogen/internal/schema"
)

// DefaultWatchDebounce is how long the watcher waits for a burst of file
// events to settle before regenerating.
const DefaultWatchDebounce = 500 * time.Millisecond

// WatchService reruns a callback when schema files under a tree change
type WatchService struct {
	root     string
	debounce time.Duration
	ui       UICallback
	logger   *zap.Logger
}

// NewWatchService creates a watcher for root. A zero debounce uses DefaultWatchDebounce.
func NewWatchService(root string, debounce time.Duration, ui UICallback, logger *zap.Logger) *WatchService {
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}
	if ui == nil {
		ui = &SilentUICallback{}
	}
	return &WatchService{root: root, debounce: debounce, ui: ui, logger: logging.OrNop(logger)}
}

// Watch blocks until ctx is done. Every directory under root is watched;
// directories created later are added as they appear. Schema file writes,
// creates, removes and renames trigger callback once the debounce window
// closes. Callback errors are shown and the watch continues.
func (w *WatchService) Watch(ctx context.Context, callback func(context.Context) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := w.addTree(watcher, w.root); err != nil {
		return err
	}
	w.logger.Info("watching for schema changes", zap.String("dir", w.root))

	var (
		mu            sync.Mutex
		debounceTimer *time.Timer
		running       sync.WaitGroup
	)
	defer func() {
		mu.Lock()
		if debounceTimer != nil && debounceTimer.Stop() {
			running.Done()
		}
		mu.Unlock()
		running.Wait()
	}()

	trigger := func(name string) {
		mu.Lock()
		defer mu.Unlock()
		if debounceTimer != nil && debounceTimer.Stop() {
			running.Done()
		}
		running.Add(1)
		debounceTimer = time.AfterFunc(w.debounce, func() {
			defer running.Done()
			if ctx.Err() != nil {
				return
			}

			w.logger.Info("detected schema change", zap.String("file", filepath.Base(name)))
			if err := callback(ctx); err != nil {
				w.ui.ShowError("Generation Failed", err.Error())
			} else {
				w.ui.ShowSuccess("Regenerated sources")
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(watcher, event.Name); err != nil {
						w.logger.Warn("cannot watch new directory", zap.String("dir", event.Name), zap.Error(err))
					}
					// Files copied in with the directory may not raise their own events.
					trigger(event.Name)
					continue
				}
			}

			if _, isSchema := schema.KindForPath(event.Name); !isSchema {
				continue
			}
			if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) ||
				event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename) {
				trigger(event.Name)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))
		}
	}
}

// addTree registers dir and every directory below it
func (w *WatchService) addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", path, err)
		}
		return nil
	})
}
