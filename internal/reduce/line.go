package reduce

import (
	"github.com/Mo-Gul/asciidoctor-reducer/internal/source"
)

// Frame is one step of an inclusion lineage: the file and line of the
// include directive that pulled the content in.
type Frame struct {
	File source.FileID
	Line uint32
}

// Ref ties a buffer line back to its origin. Stack holds the inclusion
// lineage from the root document to this line's file; it is empty only for
// lines of the root document, and its length equals the nesting depth.
type Ref struct {
	File  source.FileID
	Line  uint32 // 1-based
	Stack []Frame
}

// Depth returns the inclusion nesting level (0 for root-document lines).
func (r Ref) Depth() int {
	return len(r.Stack)
}

// Pos returns the line-granular position for diagnostics.
func (r Ref) Pos() source.Pos {
	return source.Pos{File: r.File, Line: r.Line}
}

// push returns the lineage for content included at this ref's site.
func (r Ref) push() []Frame {
	stack := make([]Frame, len(r.Stack), len(r.Stack)+1)
	copy(stack, r.Stack)
	return append(stack, Frame{File: r.File, Line: r.Line})
}

// Line is one line of the document under reduction. Lines are value types:
// content changes produce a replacement line, never an in-place edit.
type Line struct {
	Text string
	Ref  Ref
}
