package reduce

// Scanner walks the buffer forward looking for directive lines. It never
// revisits a line region on its own: the orchestrator restarts it at the
// splice point after every replacement, which is what makes directives in
// freshly spliced content visible on the very next scan.
type Scanner struct {
	buf *Buffer
	// onLine is invoked for every non-directive line the scan passes,
	// exactly once per pass over that line. The orchestrator uses it to
	// accumulate attribute entries in document order.
	onLine func(Line)
}

// NewScanner creates a scanner over buf. onLine may be nil.
func NewScanner(buf *Buffer, onLine func(Line)) *Scanner {
	return &Scanner{buf: buf, onLine: onLine}
}

// Next returns the next directive at or after index from, with Index set to
// its buffer position. ok is false when no directive remains.
func (s *Scanner) Next(from int) (Directive, bool) {
	for i := from; i < s.buf.Len(); i++ {
		line := s.buf.At(i)
		d, ok := parseDirective(line.Text)
		if !ok {
			if s.onLine != nil {
				s.onLine(line)
			}
			continue
		}
		d.Index = i
		return d, true
	}
	return Directive{}, false
}
