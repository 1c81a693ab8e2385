package driver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Mo-Gul/asciidoctor-reducer/internal/reduce"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("MkdirAll failed: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}
	return dir
}

func TestReduceFile(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"root.adoc": "intro\ninclude::part.adoc[]\n",
		"part.adoc": "body\n",
	})

	res, err := ReduceFile(filepath.Join(dir, "root.adoc"), reduce.Options{})
	if err != nil {
		t.Fatalf("ReduceFile failed: %v", err)
	}
	if res.Failed() {
		t.Fatalf("unexpected failure: %+v", res.Bag.Items())
	}
	if got := res.Text(); got != "intro\nbody\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestReduceFileMissing(t *testing.T) {
	if _, err := ReduceFile(filepath.Join(t.TempDir(), "nope.adoc"), reduce.Options{}); err == nil {
		t.Error("expected error for missing root document")
	}
}

func TestReduceString(t *testing.T) {
	res, err := ReduceString("doc.adoc", "ifdef::x[]\nhidden\nendif::[]\nshown\n", reduce.Options{})
	if err != nil {
		t.Fatalf("ReduceString failed: %v", err)
	}
	if got := res.Text(); got != "shown\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestReduceStringResolvesRelativeIncludes(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"part.adoc": "from disk\n",
	})

	name := filepath.Join(dir, "virtual.adoc")
	res, err := ReduceString(name, "include::part.adoc[]\n", reduce.Options{})
	if err != nil {
		t.Fatalf("ReduceString failed: %v", err)
	}
	if res.Failed() {
		t.Fatalf("unexpected failure: %+v", res.Bag.Items())
	}
	if got := res.Text(); got != "from disk\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestReduceReader(t *testing.T) {
	res, err := Reduce(strings.NewReader("only line\n"), "<stdin>", reduce.Options{})
	if err != nil {
		t.Fatalf("Reduce failed: %v", err)
	}
	if got := res.Text(); got != "only line\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestWriteText(t *testing.T) {
	res, err := ReduceString("doc.adoc", "content\n", reduce.Options{})
	if err != nil {
		t.Fatalf("ReduceString failed: %v", err)
	}

	out := filepath.Join(t.TempDir(), "out.adoc")
	if err := res.WriteText(out); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "content\n" {
		t.Errorf("unexpected file content: %q", data)
	}
}
