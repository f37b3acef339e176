package docsync

import (
	"context"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// watcher refreshes open documents when their backing files change on disk
// outside the synchronizer, keeping the language server's view current.
type watcher struct {
	sync   *synchronizer
	fsw    *fsnotify.Watcher
	logger *zap.SugaredLogger
	closer chan bool
}

func newWatcher(s *synchronizer, logger *zap.SugaredLogger) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &watcher{
		sync:   s,
		fsw:    fsw,
		logger: logger,
		closer: make(chan bool),
	}, nil
}

func (w *watcher) add(path string) error {
	return w.fsw.Add(path)
}

func (w *watcher) remove(path string) {
	if err := w.fsw.Remove(path); err != nil {
		w.logger.Debugw("unwatching file failed", "path", path, "error", err)
	}
}

func (w *watcher) run() {
	go w.handleChanges()
}

func (w *watcher) close() error {
	close(w.closer)
	return w.fsw.Close()
}

func (w *watcher) handleChanges() {
	for {
		select {
		case event := <-w.fsw.Events:
			if !event.Has(fsnotify.Write) {
				continue
			}
			w.refresh(event.Name)
		case err := <-w.fsw.Errors:
			w.logger.Warnf("failure in document change watcher: %v", err)
		case <-w.closer:
			return
		}
	}
}

// refresh re-reads a changed file and forwards the new content if the hash
// differs. Editors often emit several Write events per save; the hash check
// keeps redundant didChange traffic off the wire.
func (w *watcher) refresh(path string) {
	ctx := context.Background()
	u, doc, ok := w.sync.lookupByPath(path)
	if !ok {
		return
	}

	content, err := w.sync.fs.ReadFile(path)
	if err != nil {
		w.logger.Warnw("re-reading changed file failed", "path", path, "error", err)
		return
	}
	if contentHash(content) == doc.ContentHash {
		return
	}

	if _, err := w.sync.NotifyChanged(ctx, u, string(content)); err != nil {
		w.logger.Warnw("forwarding external change failed", "path", path, "error", err)
	}
}
