package parser

import (
	"reflect"
	"testing"

	"github.com/memomind/memomind/internal/models"
)

func TestParse_FullDocument(t *testing.T) {
	raw := []byte("---\nfoo: bar\n---\nHello [[World]].\n---\n[Ref](http://x.com)")
	n := Parse(raw, "greeting")

	if n.Title != "greeting" {
		t.Errorf("title = %q, want %q", n.Title, "greeting")
	}
	if n.Content != "Hello [[World]]." {
		t.Errorf("content = %q, want %q", n.Content, "Hello [[World]].")
	}
	if !reflect.DeepEqual(n.RelatedNotes, []string{"World"}) {
		t.Errorf("related notes = %v, want [World]", n.RelatedNotes)
	}
	want := []models.Reference{{Title: "Ref", Link: "http://x.com"}}
	if !reflect.DeepEqual(n.References, want) {
		t.Errorf("references = %v, want %v", n.References, want)
	}
	if n.Frontmatter["foo"] != "bar" {
		t.Errorf("frontmatter = %v, want foo: bar", n.Frontmatter)
	}
}

func TestParse_NoDelimiter(t *testing.T) {
	raw := []byte("  Just prose with [[a link]] in it.\n")
	n := Parse(raw, "prose")

	if n.Content != "Just prose with [[a link]] in it." {
		t.Errorf("content = %q", n.Content)
	}
	if n.Frontmatter != nil {
		t.Errorf("expected nil frontmatter, got %v", n.Frontmatter)
	}
	if len(n.References) != 0 {
		t.Errorf("expected no references, got %v", n.References)
	}
	// An unsectioned document extracts no relations, even when the
	// prose contains wikilink syntax.
	if len(n.RelatedNotes) != 0 {
		t.Errorf("related notes = %v, want empty", n.RelatedNotes)
	}
}

func TestParse_SingleDelimiterIsBody(t *testing.T) {
	raw := []byte("before\n---\nafter [[Link]]")
	n := Parse(raw, "odd")
	if n.Content != "before\n---\nafter [[Link]]" {
		t.Errorf("content = %q, want whole input", n.Content)
	}
	if len(n.RelatedNotes) != 0 {
		t.Errorf("related notes = %v, want empty for unpaired delimiter", n.RelatedNotes)
	}
}

func TestParse_DrawingLinksFiltered(t *testing.T) {
	raw := []byte("---\nt: d\n---\nSee [[Diagram.excalidraw]] and [[Notes]] and [[Diagram.excalidraw]] again.\n---\n")
	n := Parse(raw, "drawings")
	if !reflect.DeepEqual(n.RelatedNotes, []string{"Notes"}) {
		t.Errorf("related notes = %v, want [Notes]", n.RelatedNotes)
	}
}

func TestParse_WikilinksFromReferencesBlock(t *testing.T) {
	raw := []byte("---\ntitle: x\n---\nBody [[Alpha]].\n---\nAlso [[Beta]] and [[Alpha]].\n[Site](https://example.com)")
	n := Parse(raw, "links")
	if !reflect.DeepEqual(n.RelatedNotes, []string{"Alpha", "Beta"}) {
		t.Errorf("related notes = %v, want [Alpha Beta]", n.RelatedNotes)
	}
}

func TestParse_ReferencesKeepOrderAndDuplicates(t *testing.T) {
	raw := []byte("---\nm\n---\nbody\n---\n[B](http://b)\n[A](http://a)\n[B](http://b)")
	n := Parse(raw, "refs")
	want := []models.Reference{
		{Title: "B", Link: "http://b"},
		{Title: "A", Link: "http://a"},
		{Title: "B", Link: "http://b"},
	}
	if !reflect.DeepEqual(n.References, want) {
		t.Errorf("references = %v, want %v", n.References, want)
	}
}

func TestParse_InvalidFrontmatterYAML(t *testing.T) {
	raw := []byte("---\n: bad: yaml: {{{\n---\nbody text\n---\n")
	n := Parse(raw, "bad")
	if n.Frontmatter != nil {
		t.Errorf("expected nil frontmatter on invalid YAML, got %v", n.Frontmatter)
	}
	if n.Content != "body text" {
		t.Errorf("content = %q", n.Content)
	}
}

func TestParse_EmptyExtractionsAreNotErrors(t *testing.T) {
	n := Parse([]byte("---\na: 1\n---\nplain body\n---\nno links here"), "plain")
	if len(n.RelatedNotes) != 0 || len(n.References) != 0 {
		t.Errorf("expected empty link sets, got %v / %v", n.RelatedNotes, n.References)
	}
}
