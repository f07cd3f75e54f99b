package knowledge

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/frontdesk-ai/frontdesk/internal/log"
)

// watchDebounce is how long the watcher waits after the last file event
// before triggering a rebuild. Editors tend to emit bursts of events for a
// single save.
const watchDebounce = 2 * time.Second

// Watcher observes the knowledge directory and triggers a coalesced rebuild
// when source files are added, changed, or removed. Events for the snapshot
// file itself are ignored so a rebuild's own write never retriggers it.
type Watcher struct {
	fw      *fsnotify.Watcher
	manager *Manager
	dir     string
	logger  log.Logger
}

// NewWatcher creates a Watcher on the manager's source directory.
func NewWatcher(manager *Manager, dir string, logger log.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %q: %w", dir, err)
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Watcher{fw: fw, manager: manager, dir: dir, logger: logger}, nil
}

// Run processes file events until ctx is canceled. It debounces bursts of
// events into a single rebuild trigger.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fw.Close()

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("knowledge source changed", "file", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(watchDebounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			w.logger.Info("knowledge directory changed, scheduling rebuild")
			w.manager.TriggerRebuild(ctx)

		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}

// relevant filters out the snapshot file, temp files, and event types that
// cannot change document content.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	name := filepath.Base(event.Name)
	if name == DefaultSnapshotName {
		return false
	}
	ext := filepath.Ext(name)
	return supportedExtensions[ext]
}
