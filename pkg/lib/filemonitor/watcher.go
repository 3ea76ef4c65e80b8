package filemonitor

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Watcher monitors a target-state file and invokes a callback each
// time its contents change. Editors often replace files via rename,
// so the parent directory is watched and events are filtered by
// name.
type Watcher struct {
	notify  *fsnotify.Watcher
	path    string
	logger  *logrus.Logger
	onWrite func()
}

// NewWatcher sets up monitoring for path. onWrite runs on the
// watcher goroutine whenever the file is written, created, or
// renamed into place.
func NewWatcher(logger *logrus.Logger, path string, onWrite func()) (*Watcher, error) {
	notify, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		notify.Close()
		return nil, err
	}
	if err := notify.Add(filepath.Dir(abs)); err != nil {
		notify.Close()
		return nil, err
	}
	logger.Debugf("monitoring %v", abs)

	return &Watcher{
		notify:  notify,
		path:    abs,
		logger:  logger,
		onWrite: onWrite,
	}, nil
}

// Run processes events until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				w.notify.Close() // always returns nil for the error
				w.logger.Debug("terminating watcher")
				return
			case event := <-w.notify.Events:
				if w.relevant(event) {
					w.logger.Debugf("watcher got event: %v", event)
					w.onWrite()
				}
			case err := <-w.notify.Errors:
				w.logger.Warnf("watcher got error: %v", err)
			}
		}
	}()
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Rename)
}
