// Package driver exposes the library entry points: reduce one document from
// a path, a reader, or literal text, and batch reduction over a directory.
package driver

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Mo-Gul/asciidoctor-reducer/internal/diag"
	"github.com/Mo-Gul/asciidoctor-reducer/internal/reduce"
	"github.com/Mo-Gul/asciidoctor-reducer/internal/source"
)

// Result bundles everything one reduction produced: the file set (for
// resolving diagnostic positions), the root ID, the flattened lines with
// provenance, and the diagnostic bag.
type Result struct {
	FileSet *source.FileSet
	Root    source.FileID
	Lines   []reduce.Line
	Bag     *diag.Bag
}

// Text renders the flattened document.
func (r *Result) Text() string {
	res := reduce.Result{Lines: r.Lines, Bag: r.Bag}
	return res.Text()
}

// Failed reports whether the reduction crossed the fatal threshold.
func (r *Result) Failed() bool {
	return r.Bag.HasFatal()
}

// ReduceFile reduces the document at path.
func ReduceFile(path string, opts reduce.Options) (*Result, error) {
	fileSet := source.NewFileSetWithBase(filepath.Dir(path))
	root, err := fileSet.Load(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	return run(fileSet, root, opts), nil
}

// ReduceString reduces literal document text. name is used in diagnostics
// and as the root of the source map; include targets resolve relative to
// its directory.
func ReduceString(name, text string, opts reduce.Options) (*Result, error) {
	fileSet := source.NewFileSetWithBase(filepath.Dir(name))
	root, err := fileSet.AddVirtual(name, []byte(text))
	if err != nil {
		return nil, err
	}
	return run(fileSet, root, opts), nil
}

// Reduce reduces a document read from r, e.g. stdin.
func Reduce(r io.Reader, name string, opts reduce.Options) (*Result, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", name, err)
	}
	return ReduceString(name, string(content), opts)
}

func run(fileSet *source.FileSet, root source.FileID, opts reduce.Options) *Result {
	reducer := reduce.New(fileSet, opts)
	res := reducer.Reduce(root)
	return &Result{
		FileSet: fileSet,
		Root:    root,
		Lines:   res.Lines,
		Bag:     res.Bag,
	}
}

// WriteText writes the flattened document to path, with "-" or ""
// selecting stdout.
func (r *Result) WriteText(path string) error {
	if path == "" || path == "-" {
		_, err := io.WriteString(os.Stdout, r.Text())
		return err
	}
	return os.WriteFile(path, []byte(r.Text()), 0o644)
}
