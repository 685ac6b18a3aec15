// Package storage defines the vault file-system abstraction. The vault
// is a read-only corpus source: Memomind never writes notes back.
package storage

import "github.com/memomind/memomind/internal/models"

// Provider is the interface for vault file operations.
type Provider interface {
	// List returns metadata for every .md file under dir (relative to
	// the vault root).
	List(dir string) ([]models.NoteMetadata, error)
	// Read returns the raw bytes of the file at path (relative to the
	// vault root).
	Read(path string) ([]byte, error)
}
