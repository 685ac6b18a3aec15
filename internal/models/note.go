// Package models defines the domain types for Memomind.
package models

import "time"

// Reference is one markdown-style citation link found in a note's
// trailing reference block.
type Reference struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// Note represents one parsed Markdown document from the vault.
//
// RelatedNotes holds deduplicated wikilink targets collected from both
// the body and the reference block. References keeps the citation links
// of the reference block in the order they were found, duplicates
// included.
type Note struct {
	Title        string         `json:"title"`
	Content      string         `json:"content"`
	Frontmatter  map[string]any `json:"frontmatter,omitempty"`
	RelatedNotes []string       `json:"related_notes"`
	References   []Reference    `json:"references"`
}

// Segment is one embeddable slice of a note's content. Every segment
// carries the whole parent note's relational metadata, not just the
// links that happen to fall inside its text.
type Segment struct {
	ID           string      `json:"id"`
	Text         string      `json:"text"`
	NoteTitle    string      `json:"note_title"`
	RelatedNotes []string    `json:"related_notes"`
	References   []Reference `json:"references"`
}

// NoteMetadata is a lightweight representation returned by vault list
// operations.
type NoteMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
