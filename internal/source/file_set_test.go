package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAddVirtualLines(t *testing.T) {
	fs := NewFileSet()

	id, err := fs.AddVirtual("doc.adoc", []byte("first\nsecond\n\nfourth\n"))
	if err != nil {
		t.Fatalf("AddVirtual failed: %v", err)
	}

	f := fs.Get(id)
	if f.Flags&FileVirtual == 0 {
		t.Error("expected FileVirtual flag to be set")
	}

	lines := f.Lines()
	want := []string{"first", "second", "", "fourth"}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d: %q", len(want), len(lines), lines)
	}
	for i, w := range want {
		if lines[i] != w {
			t.Errorf("line %d: expected %q, got %q", i+1, w, lines[i])
		}
	}
}

func TestLinesNoTrailingNewline(t *testing.T) {
	fs := NewFileSet()
	id, err := fs.AddVirtual("doc.adoc", []byte("only line"))
	if err != nil {
		t.Fatalf("AddVirtual failed: %v", err)
	}
	lines := fs.Get(id).Lines()
	if len(lines) != 1 || lines[0] != "only line" {
		t.Errorf("expected single line, got %q", lines)
	}
}

func TestLinesEmptyFile(t *testing.T) {
	fs := NewFileSet()
	id, err := fs.AddVirtual("empty.adoc", nil)
	if err != nil {
		t.Fatalf("AddVirtual failed: %v", err)
	}
	if lines := fs.Get(id).Lines(); lines != nil {
		t.Errorf("expected nil lines for empty file, got %q", lines)
	}
}

func TestGetLine(t *testing.T) {
	fs := NewFileSet()
	id, err := fs.AddVirtual("doc.adoc", []byte("alpha\nbeta\ngamma"))
	if err != nil {
		t.Fatalf("AddVirtual failed: %v", err)
	}
	f := fs.Get(id)

	cases := []struct {
		line uint32
		want string
	}{
		{0, ""},
		{1, "alpha"},
		{2, "beta"},
		{3, "gamma"},
		{4, ""},
	}
	for _, c := range cases {
		if got := f.GetLine(c.line); got != c.want {
			t.Errorf("GetLine(%d): expected %q, got %q", c.line, c.want, got)
		}
	}
}

func TestLoadNormalizesCRLFAndBOM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.adoc")
	raw := []byte{0xEF, 0xBB, 0xBF}
	raw = append(raw, []byte("one\r\ntwo\r\n")...)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	f := fs.Get(id)
	if f.Flags&FileHadBOM == 0 {
		t.Error("expected FileHadBOM flag")
	}
	if f.Flags&FileNormalizedCRLF == 0 {
		t.Error("expected FileNormalizedCRLF flag")
	}
	if string(f.Content) != "one\ntwo\n" {
		t.Errorf("expected normalized content, got %q", f.Content)
	}
}

func TestGetByPathLatestWins(t *testing.T) {
	fs := NewFileSet()
	if _, err := fs.AddVirtual("doc.adoc", []byte("old")); err != nil {
		t.Fatalf("AddVirtual failed: %v", err)
	}
	id2, err := fs.AddVirtual("doc.adoc", []byte("new"))
	if err != nil {
		t.Fatalf("AddVirtual failed: %v", err)
	}

	f, ok := fs.GetByPath("doc.adoc")
	if !ok {
		t.Fatal("expected doc.adoc to be present")
	}
	if f.ID != id2 {
		t.Errorf("expected latest ID %d, got %d", id2, f.ID)
	}
	if string(f.Content) != "new" {
		t.Errorf("expected latest content, got %q", f.Content)
	}
}
