// Package sourcemap renders the per-output-line provenance of a reduction
// into an exportable sidecar, as JSON or as a schema-versioned msgpack
// payload.
package sourcemap

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/Mo-Gul/asciidoctor-reducer/internal/reduce"
	"github.com/Mo-Gul/asciidoctor-reducer/internal/source"
)

// Current schema version - increment when the payload format changes.
const schemaVersion uint16 = 1

// Pos is one step of an inclusion lineage in exported form.
type Pos struct {
	Path string `json:"path" msgpack:"path"`
	Line uint32 `json:"line" msgpack:"line"`
}

// Entry maps one output line back to its origin.
type Entry struct {
	// Output is the 1-based line number in the flattened document.
	Output uint32 `json:"output" msgpack:"output"`
	Path   string `json:"path" msgpack:"path"`
	Line   uint32 `json:"line" msgpack:"line"`
	// Trail is the inclusion lineage from the root document to this
	// line's file; empty for root-document lines.
	Trail []Pos `json:"trail,omitempty" msgpack:"trail,omitempty"`
}

// Map is the whole source map for one reduced document.
type Map struct {
	Schema  uint16  `json:"schema" msgpack:"schema"`
	Root    string  `json:"root" msgpack:"root"`
	Entries []Entry `json:"entries" msgpack:"entries"`
}

// Build assembles the map from the reducer's output lines.
func Build(lines []reduce.Line, fs *source.FileSet, root source.FileID) (Map, error) {
	m := Map{
		Schema:  schemaVersion,
		Root:    fs.Get(root).Path,
		Entries: make([]Entry, 0, len(lines)),
	}
	for i, l := range lines {
		output, err := safecast.Conv[uint32](i + 1)
		if err != nil {
			return Map{}, fmt.Errorf("flattened document too large for source map: %w", err)
		}
		e := Entry{
			Output: output,
			Path:   fs.Get(l.Ref.File).Path,
			Line:   l.Ref.Line,
		}
		for _, frame := range l.Ref.Stack {
			e.Trail = append(e.Trail, Pos{
				Path: fs.Get(frame.File).Path,
				Line: frame.Line,
			})
		}
		m.Entries = append(m.Entries, e)
	}
	return m, nil
}

// Lookup returns the origin of the 1-based output line.
func (m Map) Lookup(output uint32) (Entry, bool) {
	if output < 1 || int(output) > len(m.Entries) {
		return Entry{}, false
	}
	return m.Entries[output-1], true
}

// WriteJSON encodes the map as indented JSON.
func (m Map) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}

// WriteMsgpack encodes the map as a msgpack payload.
func (m Map) WriteMsgpack(w io.Writer) error {
	return msgpack.NewEncoder(w).Encode(m)
}

// ReadMsgpack decodes a payload written by WriteMsgpack and validates its
// schema version.
func ReadMsgpack(r io.Reader) (Map, error) {
	var m Map
	if err := msgpack.NewDecoder(r).Decode(&m); err != nil {
		return Map{}, err
	}
	if m.Schema != schemaVersion {
		return Map{}, fmt.Errorf("unsupported source map schema %d (want %d)", m.Schema, schemaVersion)
	}
	return m, nil
}

// WriteFile writes the map to path, choosing the encoding by extension:
// .msgpack and .bin select msgpack, everything else JSON.
func (m Map) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create source map %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".msgpack", ".bin":
		err = m.WriteMsgpack(f)
	default:
		err = m.WriteJSON(f)
	}
	if err != nil {
		return fmt.Errorf("cannot encode source map %s: %w", path, err)
	}
	return f.Close()
}
