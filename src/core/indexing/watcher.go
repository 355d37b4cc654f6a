package indexing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"docsearch/src/core/document"
	"docsearch/src/log"
)

// Watcher indexes files as they appear or change in a directory. Content
// already indexed is recognised by hash and skipped. Removals are ignored
// because the store is append-only.
type Watcher struct {
	indexer *Indexer

	mu     sync.Mutex
	hashes map[string]string
}

func NewWatcher(indexer *Indexer) *Watcher {
	return &Watcher{
		indexer: indexer,
		hashes:  make(map[string]string),
	}
}

// Scan indexes every supported file under dir that has not been seen yet.
func (w *Watcher) Scan(ctx context.Context, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !document.IsAllowed(path) {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		w.handle(ctx, path)
		return nil
	})
}

// Watch scans dir once and then blocks, indexing new and modified files
// until ctx is cancelled.
func (w *Watcher) Watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	if err := w.Scan(ctx, dir); err != nil {
		return fmt.Errorf("initial scan of %s: %w", dir, err)
	}
	log.Info("watching directory", "dir", dir)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !document.IsAllowed(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				log.Debug("watch event", "event", event.String())
				w.handle(ctx, event.Name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error(err, "watcher error", "dir", dir)
		case <-ctx.Done():
			log.Info("stopping directory watch", "dir", dir)
			return nil
		}
	}
}

func (w *Watcher) handle(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Error(err, "failed to read watched file", "path", path)
		return
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	w.mu.Lock()
	if w.hashes[path] == hash {
		w.mu.Unlock()
		return
	}
	w.hashes[path] = hash
	w.mu.Unlock()

	if _, err := w.indexer.IndexBytes(ctx, path, data); err != nil {
		log.Error(err, "failed to index watched file", "path", path)
		w.mu.Lock()
		delete(w.hashes, path)
		w.mu.Unlock()
	}
}
