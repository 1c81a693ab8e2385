package sourcemap

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/Mo-Gul/asciidoctor-reducer/internal/reduce"
	"github.com/Mo-Gul/asciidoctor-reducer/internal/source"
)

func buildFixture(t *testing.T) (Map, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSet()
	root, err := fs.AddVirtual("root.adoc", []byte("before\ninclude here\nafter\n"))
	if err != nil {
		t.Fatalf("AddVirtual failed: %v", err)
	}
	child, err := fs.AddVirtual("child.adoc", []byte("leaf\n"))
	if err != nil {
		t.Fatalf("AddVirtual failed: %v", err)
	}

	lines := []reduce.Line{
		{Text: "before", Ref: reduce.Ref{File: root, Line: 1}},
		{Text: "leaf", Ref: reduce.Ref{File: child, Line: 1, Stack: []reduce.Frame{{File: root, Line: 2}}}},
		{Text: "after", Ref: reduce.Ref{File: root, Line: 3}},
	}
	m, err := Build(lines, fs, root)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return m, fs
}

func TestBuild(t *testing.T) {
	m, _ := buildFixture(t)

	if m.Schema != schemaVersion {
		t.Errorf("expected schema %d, got %d", schemaVersion, m.Schema)
	}
	if m.Root != "root.adoc" {
		t.Errorf("expected root root.adoc, got %q", m.Root)
	}
	if len(m.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(m.Entries))
	}

	e := m.Entries[1]
	if e.Output != 2 || e.Path != "child.adoc" || e.Line != 1 {
		t.Errorf("unexpected included entry: %+v", e)
	}
	if len(e.Trail) != 1 || e.Trail[0].Path != "root.adoc" || e.Trail[0].Line != 2 {
		t.Errorf("unexpected trail: %+v", e.Trail)
	}
	if len(m.Entries[0].Trail) != 0 {
		t.Errorf("root-document entry must have no trail, got %+v", m.Entries[0].Trail)
	}
}

func TestLookup(t *testing.T) {
	m, _ := buildFixture(t)

	e, ok := m.Lookup(3)
	if !ok || e.Path != "root.adoc" || e.Line != 3 {
		t.Errorf("Lookup(3): unexpected %+v ok=%v", e, ok)
	}
	if _, ok := m.Lookup(0); ok {
		t.Error("Lookup(0) should fail")
	}
	if _, ok := m.Lookup(4); ok {
		t.Error("Lookup past the end should fail")
	}
}

func TestWriteJSON(t *testing.T) {
	m, _ := buildFixture(t)

	var buf bytes.Buffer
	if err := m.WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	var back Map
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if back.Schema != m.Schema || len(back.Entries) != len(m.Entries) {
		t.Errorf("round trip lost data: %+v", back)
	}
	// root-document entries omit the trail key
	if strings.Count(buf.String(), `"trail"`) != 1 {
		t.Errorf("expected exactly one trail key in %s", buf.String())
	}
}

func TestMsgpackRoundTrip(t *testing.T) {
	m, _ := buildFixture(t)

	var buf bytes.Buffer
	if err := m.WriteMsgpack(&buf); err != nil {
		t.Fatalf("WriteMsgpack failed: %v", err)
	}
	back, err := ReadMsgpack(&buf)
	if err != nil {
		t.Fatalf("ReadMsgpack failed: %v", err)
	}
	if back.Root != m.Root || len(back.Entries) != 3 {
		t.Fatalf("round trip lost data: %+v", back)
	}
	if back.Entries[1].Trail[0].Line != 2 {
		t.Errorf("trail lost in round trip: %+v", back.Entries[1])
	}
}

func TestReadMsgpackRejectsWrongSchema(t *testing.T) {
	m, _ := buildFixture(t)
	m.Schema = schemaVersion + 1

	var buf bytes.Buffer
	if err := msgpack.NewEncoder(&buf).Encode(m); err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if _, err := ReadMsgpack(&buf); err == nil {
		t.Error("expected schema mismatch error")
	}
}

func TestWriteFilePicksEncoding(t *testing.T) {
	m, _ := buildFixture(t)
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "map.json")
	if err := m.WriteFile(jsonPath); err != nil {
		t.Fatalf("WriteFile json failed: %v", err)
	}
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	var jsonBack Map
	if err := json.Unmarshal(data, &jsonBack); err != nil {
		t.Errorf(".json file is not JSON: %v", err)
	}

	packPath := filepath.Join(dir, "map.msgpack")
	if err := m.WriteFile(packPath); err != nil {
		t.Fatalf("WriteFile msgpack failed: %v", err)
	}
	f, err := os.Open(packPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()
	back, err := ReadMsgpack(f)
	if err != nil {
		t.Fatalf(".msgpack file does not decode: %v", err)
	}
	if len(back.Entries) != 3 {
		t.Errorf("unexpected entries: %+v", back.Entries)
	}
}
