// Package dataset generates question/answer training pairs from notes
// by prompting a language model per note and parsing its output into
// CSV rows.
package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/memomind/memomind/internal/llm"
	"github.com/memomind/memomind/internal/models"
)

const (
	questionMarker = "Question:"
	answerMarker   = "Answer:"
)

const pairPrompt = `From the note below, write exactly one question that the note answers, and the answer to it.
Respond in this format and nothing else:

Question: <the question>
Answer: <the answer>

Note titled %q:
%s`

// Pair is one generated question/answer row.
type Pair struct {
	Question string
	Answer   string
}

// Generator produces Q&A pairs from notes using a language model.
type Generator struct {
	model  llm.LanguageModel
	logger *slog.Logger
}

func NewGenerator(model llm.LanguageModel, logger *slog.Logger) *Generator {
	return &Generator{model: model, logger: logger}
}

// Generate prompts the model once per note. Notes whose responses do
// not follow the marker format are logged and skipped, never fatal; a
// model error aborts the run.
func (g *Generator) Generate(ctx context.Context, notes []models.Note) ([]Pair, error) {
	pairs := make([]Pair, 0, len(notes))
	for _, note := range notes {
		if strings.TrimSpace(note.Content) == "" {
			continue
		}
		raw, err := g.model.Generate(ctx, fmt.Sprintf(pairPrompt, note.Title, note.Content))
		if err != nil {
			return nil, fmt.Errorf("generate pair for %q: %w", note.Title, err)
		}
		pair, ok := parsePair(raw)
		if !ok {
			g.logger.Warn("skipping malformed pair", "note", note.Title)
			continue
		}
		pairs = append(pairs, pair)
	}
	return pairs, nil
}

// parsePair extracts the question and answer from a marker-formatted
// response. Both markers must be present, question before answer, and
// both extracted strings non-empty.
func parsePair(raw string) (Pair, bool) {
	qi := strings.Index(raw, questionMarker)
	ai := strings.Index(raw, answerMarker)
	if qi < 0 || ai < 0 || ai < qi {
		return Pair{}, false
	}
	q := strings.TrimSpace(raw[qi+len(questionMarker) : ai])
	a := strings.TrimSpace(raw[ai+len(answerMarker):])
	if q == "" || a == "" {
		return Pair{}, false
	}
	return Pair{Question: q, Answer: a}, true
}

// WriteCSV writes pairs with a header row.
func WriteCSV(w io.Writer, pairs []Pair) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"question", "answer"}); err != nil {
		return err
	}
	for _, p := range pairs {
		if err := cw.Write([]string{p.Question, p.Answer}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
