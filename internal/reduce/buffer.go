package reduce

import "strings"

// Buffer is the ordered line sequence of the document under reduction.
// Mutation happens only through Replace (remove a range, insert at its
// start), which keeps indexes stable for everything before the splice point.
type Buffer struct {
	lines []Line
}

// NewBuffer creates a buffer seeded with the given lines.
func NewBuffer(lines []Line) *Buffer {
	return &Buffer{lines: lines}
}

// Len returns the current number of lines.
func (b *Buffer) Len() int {
	return len(b.lines)
}

// At returns the line at index i.
func (b *Buffer) At(i int) Line {
	return b.lines[i]
}

// Replace removes lines [i, j) and inserts repl at i.
// The scanner is expected to resume from i afterwards, since inserted
// content may itself contain directives.
func (b *Buffer) Replace(i, j int, repl []Line) {
	if i < 0 || j < i || j > len(b.lines) {
		panic("reduce: Replace range out of bounds")
	}
	out := make([]Line, 0, len(b.lines)-(j-i)+len(repl))
	out = append(out, b.lines[:i]...)
	out = append(out, repl...)
	out = append(out, b.lines[j:]...)
	b.lines = out
}

// Lines returns a copy of the current line sequence.
func (b *Buffer) Lines() []Line {
	out := make([]Line, len(b.lines))
	copy(out, b.lines)
	return out
}

// Text joins the buffer into document text. A non-empty buffer always ends
// with a newline.
func (b *Buffer) Text() string {
	if len(b.lines) == 0 {
		return ""
	}
	var sb strings.Builder
	for i := range b.lines {
		sb.WriteString(b.lines[i].Text)
		sb.WriteByte('\n')
	}
	return sb.String()
}
