package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestVault(t *testing.T) (string, *FS) {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return dir, fs
}

func TestList_OnlyMarkdownFiles(t *testing.T) {
	dir, fs := newTestVault(t)
	writeFile(t, dir, "a.md", "alpha")
	writeFile(t, dir, "sub/b.md", "beta")
	writeFile(t, dir, "ignore.txt", "nope")

	metas, err := fs.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("len(metas) = %d, want 2", len(metas))
	}
	paths := map[string]bool{}
	for _, m := range metas {
		paths[m.Path] = true
		if m.Checksum == "" {
			t.Errorf("empty checksum for %s", m.Path)
		}
	}
	if !paths["a.md"] || !paths[filepath.Join("sub", "b.md")] {
		t.Errorf("unexpected paths: %v", paths)
	}
}

func TestRead_TraversalRejected(t *testing.T) {
	_, fs := newTestVault(t)
	if _, err := fs.Read("../outside.md"); err == nil {
		t.Error("expected traversal to be rejected")
	}
	if _, err := fs.Read("/etc/passwd"); err == nil {
		t.Error("expected absolute path to be rejected")
	}
}

func TestTitle(t *testing.T) {
	cases := map[string]string{
		"notes/Hello World.md": "Hello World",
		"a.md":                 "a",
		"deep/nested/Note.md":  "Note",
	}
	for in, want := range cases {
		if got := Title(in); got != want {
			t.Errorf("Title(%q) = %q, want %q", in, got, want)
		}
	}
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
