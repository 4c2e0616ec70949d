package assets

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/conneroisu/pagekit/internal/logging"
)

// Watcher re-runs a callback when files under a source tree change. Rapid
// bursts of filesystem events (editors write several times per save) are
// coalesced through a quiet-period timer.
type Watcher struct {
	watcher *fsnotify.Watcher
	delay   time.Duration
	logger  logging.Logger

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher creates a Watcher over root, watching all subdirectories.
func NewWatcher(root string, delay time.Duration, logger logging.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}
	if delay <= 0 {
		delay = 300 * time.Millisecond
	}

	w := &Watcher{
		watcher: fsw,
		delay:   delay,
		logger:  logger.WithComponent("watcher"),
	}

	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
	if err != nil {
		fsw.Close()
		return nil, err
	}

	return w, nil
}

// Run blocks, invoking onChange after each coalesced burst of changes, until
// ctx is cancelled.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			w.cancelPending()
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			// New directories need to be watched too.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.watcher.Add(event.Name)
				}
			}

			w.logger.Debug(ctx, "file changed", "path", event.Name, "op", event.Op.String())
			w.schedule(onChange)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn(ctx, err, "watch error")
		}
	}
}

func (w *Watcher) schedule(onChange func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, onChange)
}

func (w *Watcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}
