package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// LedgerRow records one ingested vault file.
type LedgerRow struct {
	Path      string
	Title     string
	Checksum  string
	Segments  int
	IndexedAt time.Time
}

// UpsertRow inserts or replaces a ledger entry.
func (db *DB) UpsertRow(row LedgerRow) error {
	_, err := db.conn.Exec(`
		INSERT INTO notes (path, title, checksum, segments, indexed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title      = excluded.title,
			checksum   = excluded.checksum,
			segments   = excluded.segments,
			indexed_at = excluded.indexed_at
	`, row.Path, row.Title, row.Checksum, row.Segments, row.IndexedAt)
	if err != nil {
		return fmt.Errorf("index: upsert row: %w", err)
	}
	return nil
}

// DeleteRow removes a ledger entry. Missing rows are not an error.
func (db *DB) DeleteRow(path string) error {
	if _, err := db.conn.Exec(`DELETE FROM notes WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete row: %w", err)
	}
	return nil
}

// GetRow returns the ledger entry for a path, or nil when absent.
func (db *DB) GetRow(path string) (*LedgerRow, error) {
	var row LedgerRow
	err := db.conn.QueryRow(`
		SELECT path, title, checksum, segments, indexed_at FROM notes WHERE path = ?
	`, path).Scan(&row.Path, &row.Title, &row.Checksum, &row.Segments, &row.IndexedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: get row: %w", err)
	}
	return &row, nil
}

// AllChecksums returns path -> checksum for every ledger entry.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM notes`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// Stats returns the number of ledger entries and the total segment count.
func (db *DB) Stats() (notes, segments int, err error) {
	err = db.conn.QueryRow(`SELECT COUNT(*), COALESCE(SUM(segments), 0) FROM notes`).Scan(&notes, &segments)
	if err != nil {
		return 0, 0, fmt.Errorf("index: stats: %w", err)
	}
	return notes, segments, nil
}
