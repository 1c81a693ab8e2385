package reduce

import (
	"slices"
	"strings"
)

// scanTagAnchor recognizes tag::name[] and end::name[] anchors inside a
// line (typically behind a line comment). The anchor must sit on a word
// boundary and be followed by end-of-line or a space.
func scanTagAnchor(text string) (name string, end bool, ok bool) {
	for _, marker := range [...]struct {
		prefix string
		end    bool
	}{{"tag::", false}, {"end::", true}} {
		idx := 0
		for {
			rel := strings.Index(text[idx:], marker.prefix)
			if rel < 0 {
				break
			}
			at := idx + rel
			idx = at + len(marker.prefix)
			if at > 0 && isWordByte(text[at-1]) {
				continue
			}
			rest := text[at+len(marker.prefix):]
			close_ := strings.Index(rest, "[]")
			if close_ <= 0 {
				continue
			}
			candidate := rest[:close_]
			if strings.ContainsAny(candidate, " \t[") {
				continue
			}
			after := rest[close_+2:]
			if after != "" && after[0] != ' ' {
				continue
			}
			return candidate, marker.end, true
		}
	}
	return "", false, false
}

func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == ':'
}

// tagFilter captures a tags= selection: explicit names, negations, and the
// * (any tagged region) and ** (everything outside anchors) wildcards.
type tagFilter struct {
	include     map[string]bool
	exclude     map[string]bool
	wildcard    bool // *
	doubleWild  bool // **
	onlyNegated bool
}

func newTagFilter(spec []string) tagFilter {
	f := tagFilter{
		include: make(map[string]bool),
		exclude: make(map[string]bool),
	}
	negatedOnly := true
	for _, raw := range spec {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		switch name {
		case "**":
			f.doubleWild = true
			negatedOnly = false
		case "*":
			f.wildcard = true
			negatedOnly = false
		default:
			if cut, neg := strings.CutPrefix(name, "!"); neg {
				f.exclude[cut] = true
			} else {
				f.include[name] = true
				negatedOnly = false
			}
		}
	}
	f.onlyNegated = negatedOnly && len(f.exclude) > 0
	return f
}

// keep decides whether a content line inside the given open-tag chain is
// selected. The innermost explicit decision wins.
func (f tagFilter) keep(openTags []string) bool {
	for i := len(openTags) - 1; i >= 0; i-- {
		t := openTags[i]
		if f.exclude[t] {
			return false
		}
		if f.include[t] {
			return true
		}
	}
	if len(openTags) > 0 {
		return f.wildcard || f.doubleWild || f.onlyNegated
	}
	return f.doubleWild || f.onlyNegated
}

// selectTags filters the lines of an included file by a tags= spec.
// Anchor lines themselves are never selected. Returned indexes are 0-based
// positions into lines; missing holds explicitly requested tags that never
// appeared.
func selectTags(lines []string, spec []string) (selected []int, missing []string) {
	f := newTagFilter(spec)
	seen := make(map[string]bool)
	var open []string

	for i, text := range lines {
		if name, isEnd, ok := scanTagAnchor(text); ok {
			if isEnd {
				// pop the innermost matching tag
				for j := len(open) - 1; j >= 0; j-- {
					if open[j] == name {
						open = append(open[:j], open[j+1:]...)
						break
					}
				}
			} else {
				seen[name] = true
				open = append(open, name)
			}
			continue
		}
		if f.keep(open) {
			selected = append(selected, i)
		}
	}

	for name := range f.include {
		if !seen[name] {
			missing = append(missing, name)
		}
	}
	slices.Sort(missing)
	return selected, missing
}
