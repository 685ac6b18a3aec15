// Package parser turns raw Markdown notes into structured Note records:
// frontmatter, body content, outgoing wikilinks, and citation references.
package parser

import (
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/memomind/memomind/internal/models"
)

// delimiter separates frontmatter, body, and the trailing reference
// block inside a note.
const delimiter = "---"

// drawingMarker marks wikilink targets that point at drawing files
// rather than notes; those are never indexed as related notes.
const drawingMarker = ".excalidraw"

var (
	wikilinkRe  = regexp.MustCompile(`\[\[(.*?)\]\]`)
	referenceRe = regexp.MustCompile(`\[(.*?)\]\((.*?)\)`)
)

// Parse converts one raw Markdown document into a Note. The title comes
// from the caller (filename stem by convention).
//
// The document is split on the --- delimiter: the first delimited part
// is frontmatter, the last is the reference block, and everything in
// between is body. A document with fewer than two delimiters degrades
// to an all-body note with empty metadata, related notes, and
// references; that is a valid result, not an error.
func Parse(data []byte, title string) models.Note {
	meta, body, refs, delimited := splitSections(string(data))

	note := models.Note{
		Title:       title,
		Content:     strings.TrimSpace(body),
		Frontmatter: parseFrontmatter(meta),
	}
	if delimited {
		note.RelatedNotes = extractWikilinks(body + "\n" + refs)
		note.References = extractReferences(refs)
	}
	return note
}

// splitSections splits raw content into (frontmatter, body, references).
// delimited reports whether the document carried the sectioning
// delimiters at all; a degraded all-body document extracts nothing.
func splitSections(content string) (meta, body, refs string, delimited bool) {
	parts := strings.Split(content, delimiter)
	if len(parts) < 3 {
		// Delimiter missing or unpaired: everything is body.
		return "", content, "", false
	}
	meta = strings.TrimSpace(parts[1])
	body = strings.Join(parts[2:len(parts)-1], " ")
	refs = strings.TrimSpace(parts[len(parts)-1])
	return meta, body, refs, true
}

// parseFrontmatter decodes the frontmatter section as YAML. The result
// is preserved on the Note but nothing downstream consumes it yet.
// Invalid YAML yields nil rather than an error.
func parseFrontmatter(meta string) map[string]any {
	if meta == "" {
		return nil
	}
	var fm map[string]any
	if err := yaml.Unmarshal([]byte(meta), &fm); err != nil {
		return nil
	}
	return fm
}

// extractWikilinks returns deduplicated [[wikilink]] targets in
// first-seen order, excluding drawing files.
func extractWikilinks(text string) []string {
	matches := wikilinkRe.FindAllStringSubmatch(text, -1)
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		target := strings.TrimSpace(m[1])
		if target == "" || strings.Contains(target, drawingMarker) {
			continue
		}
		if _, ok := seen[target]; ok {
			continue
		}
		seen[target] = struct{}{}
		out = append(out, target)
	}
	return out
}

// extractReferences returns every [title](link) pair from the reference
// block in document order. Duplicates are kept; display-time rendering
// is where they collapse.
func extractReferences(refs string) []models.Reference {
	matches := referenceRe.FindAllStringSubmatch(refs, -1)
	var out []models.Reference
	for _, m := range matches {
		out = append(out, models.Reference{Title: m[1], Link: m[2]})
	}
	return out
}
