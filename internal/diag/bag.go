package diag

import (
	"fmt"
	"sort"
)

// Bag collects diagnostics for one reduction pass. Diagnostics never drive
// control flow by themselves; the orchestrator inspects the bag at the end.
type Bag struct {
	items []Diagnostic
	max   uint16
}

func NewBag(max int) *Bag {
	return &Bag{
		items: make([]Diagnostic, 0, max),
		max:   uint16(max),
	}
}

// Add appends a diagnostic, honoring the cap. Fatal diagnostics are always
// admitted: the cap bounds noise, it must never erase a failed verdict.
// Returns false when the diagnostic was dropped (cap reached).
func (b *Bag) Add(d Diagnostic) bool {
	if d.Severity < SevFatal && len(b.items) >= int(b.max) {
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Cap() uint16 {
	return b.max
}

// HasErrors reports whether any diagnostic is SevError or worse.
func (b *Bag) HasErrors() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}
	return false
}

// HasFatal reports whether any diagnostic is SevFatal.
func (b *Bag) HasFatal() bool {
	for i := range b.items {
		if b.items[i].Severity >= SevFatal {
			return true
		}
	}
	return false
}

// FirstFatal returns the first SevFatal diagnostic in emission order.
func (b *Bag) FirstFatal() (Diagnostic, bool) {
	for i := range b.items {
		if b.items[i].Severity >= SevFatal {
			return b.items[i], true
		}
	}
	return Diagnostic{}, false
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items returns a read-only view of the diagnostics.
// Do not modify the returned slice; it aliases the Bag's storage.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Merge appends diagnostics from another Bag, growing the cap if needed.
func (b *Bag) Merge(other *Bag) {
	newTotal := len(b.items) + len(other.items)
	if uint16(newTotal) > b.max {
		b.max = uint16(newTotal)
	}
	b.items = append(b.items, other.items...)
}

// Sort orders diagnostics by file, line, severity (desc), code (asc)
// for stable, deterministic output.
func (b *Bag) Sort() {
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Primary.File != dj.Primary.File {
			return di.Primary.File < dj.Primary.File
		}
		if di.Primary.Line != dj.Primary.Line {
			return di.Primary.Line < dj.Primary.Line
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code.String() < dj.Code.String()
	})
}

// Dedup removes duplicates keyed by code and primary position.
func (b *Bag) Dedup() {
	seen := make(map[string]bool)
	newitems := make([]Diagnostic, 0, len(b.items))
	for _, d := range b.items {
		key := fmt.Sprintf("%s:%d:%d", d.Code.String(), d.Primary.File, d.Primary.Line)
		if seen[key] {
			continue
		}
		seen[key] = true
		newitems = append(newitems, d)
	}
	b.items = newitems
}
