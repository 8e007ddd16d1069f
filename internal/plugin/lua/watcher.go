package lua

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"
)

// Watcher reloads script handlers when their files change.
//
// It watches the directory of each script rather than the file itself, so
// editors that save by renaming a temporary file over the script are seen.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	log      logr.Logger
	handlers map[string]*ScriptHandler
	dirs     map[string]bool
	onReload func(path string, err error)

	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherLogger sets the logger for reload failures.
func WithWatcherLogger(log logr.Logger) WatcherOption {
	return func(w *Watcher) {
		w.log = log
	}
}

// OnReload registers fn to be called after every reload attempt.
func OnReload(fn func(path string, err error)) WatcherOption {
	return func(w *Watcher) {
		w.onReload = fn
	}
}

// NewWatcher creates a watcher and starts its event loop.
func NewWatcher(opts ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fsw,
		log:      logr.Discard(),
		handlers: make(map[string]*ScriptHandler),
		dirs:     make(map[string]bool),
		closeCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Add starts watching h's script.
func (w *Watcher) Add(h *ScriptHandler) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}

	dir := filepath.Dir(h.Path())
	if !w.dirs[dir] {
		if err := w.watcher.Add(dir); err != nil {
			return err
		}
		w.dirs[dir] = true
	}
	w.handlers[h.Path()] = h
	return nil
}

// Close stops the event loop. Handlers are not closed.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.reload(filepath.Clean(event.Name))

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error(err, "watch error")
		}
	}
}

func (w *Watcher) reload(path string) {
	w.mu.Lock()
	h := w.handlers[path]
	w.mu.Unlock()

	if h == nil {
		return
	}

	err := h.Reload()
	if err != nil {
		w.log.Error(err, "reload failed, keeping previous script", "path", path)
	}
	if w.onReload != nil {
		w.onReload(path, err)
	}
}
