package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/memomind/memomind/internal/checksum"
	"github.com/memomind/memomind/internal/storage"
)

// debounceWindow coalesces rapid successive writes to the same file
// (editors often fire several events per save) into one re-index.
const debounceWindow = 500 * time.Millisecond

// EventCallback is called after a watcher-driven index change.
// kind is one of "indexed", "removed".
type EventCallback func(kind string, path string)

// Watch starts an fsnotify watcher on the vault root and keeps the
// semantic index in step with file changes until ctx is cancelled.
// Changed files pass through the same parse/chunk/embed pipeline as a
// full build; there is no second parsing path.
//
// New directories created at runtime are added to the watch list.
// Rename events remove the old entry; the new path arrives as a
// separate Create event.
func Watch(ctx context.Context, db *DB, store storage.Provider, b *Builder, vaultRoot string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, vaultRoot); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", vaultRoot))

	// pending holds paths waiting out the debounce window.
	pending := make(map[string]struct{})
	var debounce *time.Timer
	var debounceCh <-chan time.Time

	schedule := func(rel string) {
		pending[rel] = struct{}{}
		if debounce == nil {
			debounce = time.NewTimer(debounceWindow)
			debounceCh = debounce.C
		} else {
			debounce.Reset(debounceWindow)
		}
	}

	flush := func() {
		for rel := range pending {
			delete(pending, rel)

			data, readErr := store.Read(rel)
			if readErr != nil {
				// File vanished between the event and the flush.
				continue
			}
			if row, _ := db.GetRow(rel); row != nil && row.Checksum == checksum.Sum(data) {
				continue
			}
			n, idxErr := indexFile(ctx, db, store, b, rel)
			if idxErr != nil {
				logger.Warn("watcher: index failed", slog.String("path", rel), slog.String("error", idxErr.Error()))
				continue
			}
			logger.Debug("watcher: indexed", slog.String("path", rel), slog.Int("segments", n))
			if cb != nil {
				cb("indexed", rel)
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-debounceCh:
			flush()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name

			// New directories: start watching and pick up any notes
			// already inside.
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					}
					scheduleDir(vaultRoot, absPath, schedule)
					continue
				}
			}

			if !strings.HasSuffix(absPath, ".md") {
				continue
			}
			rel, relErr := filepath.Rel(vaultRoot, absPath)
			if relErr != nil {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				schedule(rel)

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				// Rename fires on the old path; the new path shows up
				// as its own Create event.
				delete(pending, rel)
				if remErr := removeFile(ctx, db, b, rel); remErr != nil {
					logger.Warn("watcher: remove failed", slog.String("path", rel), slog.String("error", remErr.Error()))
					continue
				}
				logger.Debug("watcher: removed", slog.String("path", rel))
				if cb != nil {
					cb("removed", rel)
				}
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// scheduleDir queues every .md file under a newly created directory.
func scheduleDir(vaultRoot, dirPath string, schedule func(string)) {
	_ = filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}
		if rel, relErr := filepath.Rel(vaultRoot, path); relErr == nil {
			schedule(rel)
		}
		return nil
	})
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
