// Package corpus runs the extraction pass over a vault and manages the
// persisted intermediate corpus: an ordered JSON list of Note records
// that hands off from extraction to indexing.
package corpus

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/memomind/memomind/internal/models"
	"github.com/memomind/memomind/internal/parser"
	"github.com/memomind/memomind/internal/storage"
)

// Extract parses every Markdown file in the vault into a Note. A file
// that cannot be read aborts that file only; the pass continues with a
// logged warning. Later files with a duplicate title overwrite earlier
// ones in the result set.
func Extract(store storage.Provider, logger *slog.Logger) ([]models.Note, error) {
	metas, err := store.List("")
	if err != nil {
		return nil, fmt.Errorf("corpus: list vault: %w", err)
	}

	byTitle := make(map[string]int, len(metas))
	var notes []models.Note
	for _, m := range metas {
		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("extract: read failed",
				slog.String("path", m.Path),
				slog.String("error", err.Error()))
			continue
		}
		note := parser.Parse(data, storage.Title(m.Path))
		if i, ok := byTitle[note.Title]; ok {
			notes[i] = note
			continue
		}
		byTitle[note.Title] = len(notes)
		notes = append(notes, note)
	}

	logger.Info("extract: corpus built", slog.Int("notes", len(notes)))
	return notes, nil
}

// Save writes the corpus to path as a JSON array of Note records.
func Save(path string, notes []models.Note) error {
	data, err := json.MarshalIndent(notes, "", "  ")
	if err != nil {
		return fmt.Errorf("corpus: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("corpus: write %s: %w", path, err)
	}
	return nil
}

// Load reads a corpus previously written by Save.
func Load(path string) ([]models.Note, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("corpus: read %s: %w", path, err)
	}
	var notes []models.Note
	if err := json.Unmarshal(data, &notes); err != nil {
		return nil, fmt.Errorf("corpus: parse %s: %w", path, err)
	}
	return notes, nil
}
