package index

import (
	"context"
	"log/slog"
	"time"

	"github.com/memomind/memomind/internal/checksum"
	"github.com/memomind/memomind/internal/parser"
	"github.com/memomind/memomind/internal/storage"
)

// Sync walks the vault and brings the semantic index up to date:
//   - new or changed files are parsed, chunked, embedded, and upserted
//   - files removed from disk lose their ledger row and their vectors
//
// Per-file failures are logged and skipped; the pass continues. Returns
// the number of segments written.
func Sync(ctx context.Context, db *DB, store storage.Provider, b *Builder, logger *slog.Logger) (int, error) {
	if err := b.store.EnsureCollection(ctx); err != nil {
		return 0, err
	}

	metas, err := store.List("")
	if err != nil {
		return 0, err
	}
	checksums, err := db.AllChecksums()
	if err != nil {
		return 0, err
	}

	written := 0
	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}
		if checksums[m.Path] == m.Checksum {
			continue
		}
		n, err := indexFile(ctx, db, store, b, m.Path)
		if err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		written += n
		logger.Debug("sync: indexed", slog.String("path", m.Path), slog.Int("segments", n))
	}

	// Remove stale entries for files gone from disk.
	for p := range checksums {
		if _, ok := disk[p]; ok {
			continue
		}
		if err := removeFile(ctx, db, b, p); err != nil {
			logger.Warn("sync: remove failed", slog.String("path", p), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: removed stale", slog.String("path", p))
		}
	}

	return written, nil
}

// indexFile parses and indexes a single vault file, then records it in
// the ledger. The ledger row is written only after a successful upsert,
// so a failure leaves the file marked as pending for the next pass.
func indexFile(ctx context.Context, db *DB, store storage.Provider, b *Builder, path string) (int, error) {
	data, err := store.Read(path)
	if err != nil {
		return 0, err
	}
	note := parser.Parse(data, storage.Title(path))
	n, err := b.BuildNote(ctx, note)
	if err != nil {
		return 0, err
	}
	err = db.UpsertRow(LedgerRow{
		Path:      path,
		Title:     note.Title,
		Checksum:  checksum.Sum(data),
		Segments:  n,
		IndexedAt: time.Now(),
	})
	if err != nil {
		return n, err
	}
	return n, nil
}

// removeFile drops a file's vectors and its ledger row.
func removeFile(ctx context.Context, db *DB, b *Builder, path string) error {
	if err := b.store.DeleteByNote(ctx, storage.Title(path)); err != nil {
		return err
	}
	return db.DeleteRow(path)
}
