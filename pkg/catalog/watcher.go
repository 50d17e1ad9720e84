package catalog

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the store when the catalog document is modified outside
// the process, e.g. by hand-editing papers.json. Rapid successive writes
// are debounced so a single external edit triggers one reload.
type Watcher struct {
	store        *Store
	watcher      *fsnotify.Watcher
	stopChan     chan struct{}
	debounceTime time.Duration

	mu         sync.Mutex
	lastReload time.Time
}

// NewWatcher creates a watcher for the store's document.
func NewWatcher(store *Store) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the directory rather than the file: atomic rename replaces the
	// inode, which would silently drop a file-level watch.
	if err := fsWatcher.Add(filepath.Dir(store.Path())); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch data directory: %w", err)
	}

	return &Watcher{
		store:        store,
		watcher:      fsWatcher,
		stopChan:     make(chan struct{}),
		debounceTime: 500 * time.Millisecond,
	}, nil
}

// Start begins watching in a background goroutine.
func (w *Watcher) Start() {
	log.Printf("[catalog] watching %s for external changes", w.store.Path())
	go w.watchLoop()
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	close(w.stopChan)
	if err := w.watcher.Close(); err != nil {
		log.Printf("[catalog] error closing file watcher: %v", err)
	}
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[catalog] watcher error: %v", err)

		case <-w.stopChan:
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Base(event.Name) != filepath.Base(w.store.Path()) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	w.mu.Lock()
	if time.Since(w.lastReload) < w.debounceTime {
		w.mu.Unlock()
		return
	}
	w.lastReload = time.Now()
	w.mu.Unlock()

	go func() {
		time.Sleep(w.debounceTime)
		if err := w.store.Reload(); err != nil {
			if errors.Is(err, ErrCorrupt) {
				log.Printf("[catalog] external edit left the document corrupt, keeping previous snapshot: %v", err)
				return
			}
			log.Printf("[catalog] reload after external change failed: %v", err)
			return
		}
		log.Printf("[catalog] reloaded after external change (%d records)", w.store.Len())
	}()
}
