package fsstore

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"

	"model-bundle-service/internal/core/domain"
)

const indexDebounce = 500 * time.Millisecond

// Watcher observes the store's bundles tree and reports headers saved by
// external writers (typically the packctl CLI) so the registry can index
// them.
type Watcher struct {
	store   *Store
	onFound func(ctx context.Context, bundle *domain.Bundle)

	mu      sync.Mutex
	pending map[string]*time.Timer
}

func NewWatcher(store *Store, onFound func(ctx context.Context, bundle *domain.Bundle)) *Watcher {
	return &Watcher{
		store:   store,
		onFound: onFound,
		pending: make(map[string]*time.Timer),
	}
}

// schedule (re)arms the debounce timer for a header path. The entry is
// dropped once the timer fires so the map stays bounded by in-flight
// writes, not by every header ever seen.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(indexDebounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.index(ctx, path)
	})
}

// Run blocks until ctx is cancelled. Bundle name and version directories
// are added to the watch set as they appear; a header write schedules a
// debounced load of that bundle.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create store watcher: %w", err)
	}
	defer watcher.Close()

	if err := w.addTree(ctx, watcher, w.store.BundlesRoot()); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Op.Has(fsnotify.Create) {
				// New name or version directory: extend the watch set.
				if err := w.addTree(ctx, watcher, event.Name); err != nil {
					log.WithError(err).WithField("path", event.Name).Warn("watch new store directory")
				}
			}

			if filepath.Base(event.Name) != headerName {
				continue
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}

			w.schedule(ctx, event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Error("store watcher error")
		}
	}
}

// addTree registers root and its subdirectories with the watcher. Headers
// already present in a newly watched directory are indexed right away:
// their writes predate the watch and would otherwise be missed.
func (w *Watcher) addTree(ctx context.Context, watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		header := filepath.Join(path, headerName)
		if _, err := os.Stat(header); err == nil {
			w.index(ctx, header)
		}
		return nil
	})
}

func (w *Watcher) index(ctx context.Context, path string) {
	bundle, err := w.store.loadHeader(path)
	if err != nil {
		log.WithError(err).WithField("path", path).Error("load bundle header")
		return
	}
	log.WithFields(log.Fields{
		"name":    bundle.Name,
		"version": bundle.Version,
	}).Info("bundle discovered in store")
	w.onFound(ctx, bundle)
}
