package session

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"grocli/internal/logging"
)

// Watcher refreshes the session store when the credentials file changes on
// disk: a login or logout performed by another grocli process (for example
// `grocli logout` next to a running TUI) takes effect here without a
// restart.
type Watcher struct {
	mu      sync.Mutex
	watcher *fsnotify.Watcher
	store   *Store
	path    string

	// lastEvent debounces editor-style double writes
	lastEvent time.Time

	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool

	// onRefresh fires after the store was refreshed from disk; the TUI
	// uses it to push a re-render. May be nil.
	onRefresh func(Snapshot)
}

// NewWatcher creates a watcher over the store's credentials file.
func NewWatcher(store *Store, onRefresh func(Snapshot)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher:   fsw,
		store:     store,
		path:      store.creds.Path(),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
		onRefresh: onRefresh,
	}, nil
}

// Start begins watching. Non-blocking. The parent directory is watched, not
// the file: logout removes the file and fsnotify drops watches on deleted
// paths.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}
	logging.SessionDebug("watching credentials dir %s", dir)

	go w.run()
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	_ = w.watcher.Close()
	<-w.doneCh
}

func (w *Watcher) run() {
	defer close(w.doneCh)

	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) {
				continue
			}

			w.mu.Lock()
			if time.Since(w.lastEvent) < 100*time.Millisecond {
				w.mu.Unlock()
				continue
			}
			w.lastEvent = time.Now()
			w.mu.Unlock()

			logging.SessionDebug("credentials file %s: %s", event.Op, event.Name)
			w.store.Refresh()
			if w.onRefresh != nil {
				w.onRefresh(w.store.Snapshot())
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.SessionError("credentials watcher error: %v", err)
		}
	}
}
