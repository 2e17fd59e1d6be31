package importer

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/glslpad/internal/logger"
)

// watcher reloads one file when it changes. It watches the parent
// directory so editors that save by rename are still seen.
type watcher struct {
	fs     *fsnotify.Watcher
	reload func(path string)
	log    *zap.Logger

	mu   sync.Mutex
	dir  string
	path string
	done chan struct{}
}

func newWatcher(reload func(path string)) (*watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &watcher{
		fs:     fs,
		reload: reload,
		log:    logger.Named("importer.watch"),
		done:   make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// follow switches the watch to path.
func (w *watcher) follow(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()

	if dir != w.dir {
		if err := w.fs.Add(dir); err != nil {
			return err
		}
		if w.dir != "" {
			_ = w.fs.Remove(w.dir)
		}
		w.dir = dir
	}
	w.path = abs
	w.log.Debug("watching", zap.String("path", abs))
	return nil
}

// unfollow stops watching until the next follow.
func (w *watcher) unfollow() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.dir != "" {
		_ = w.fs.Remove(w.dir)
	}
	w.dir, w.path = "", ""
}

func (w *watcher) run() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			w.mu.Lock()
			match := filepath.Clean(ev.Name) == w.path
			path := w.path
			w.mu.Unlock()
			if match {
				w.log.Info("model changed on disk", zap.String("path", path))
				w.reload(path)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))
		}
	}
}

func (w *watcher) close() error {
	err := w.fs.Close()
	<-w.done
	return err
}
