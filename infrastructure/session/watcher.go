package session

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	pkgerrors "cardboard/pkg/errors"
)

// Watcher reports when the backing document changes on disk outside the
// session, e.g. when the host application or another tool rewrites the
// file. It never touches the board itself: changes are delivered on a
// channel, and the goroutine that owns the session drains it and reloads.
// Board and history have no locking, so a reload racing an action-layer
// call would corrupt both.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	logger  *zap.Logger
	changes chan struct{}
	stopCh  chan struct{}
}

// NewWatcher creates a watcher over the given document path
func NewWatcher(path string, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "create file watcher")
	}

	// Watch the directory rather than the file so atomic saves (write to
	// temp, rename over) keep being observed.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, pkgerrors.Wrap(err, "watch document directory")
	}

	return &Watcher{
		path:    path,
		watcher: watcher,
		logger:  logger,
		changes: make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
	}, nil
}

// Changes returns the channel on which document-changed notifications are
// delivered. Notifications coalesce: a burst of writes while the owner is
// busy yields a single pending notification.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Start begins watching for document changes
func (w *Watcher) Start() {
	go w.watchLoop()
	w.logger.Info("document watcher started", zap.String("path", w.path))
}

// Stop stops watching for document changes
func (w *Watcher) Stop() {
	close(w.stopCh)
	w.watcher.Close()
	w.logger.Info("document watcher stopped")
}

func (w *Watcher) watchLoop() {
	// Debounce timer so an editor's burst of writes triggers one notification
	var debounceTimer *time.Timer
	debounceDuration := 100 * time.Millisecond

	for {
		select {
		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(debounceDuration, w.notify)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) notify() {
	w.logger.Info("document changed on disk", zap.String("path", w.path))

	select {
	case w.changes <- struct{}{}:
	default:
	}
}
