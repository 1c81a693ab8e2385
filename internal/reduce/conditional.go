package reduce

import "strings"

// condFrame tracks one open conditional block. Frames live only for the
// duration of a reduction pass; a non-empty stack at document end means the
// document is structurally invalid.
type condFrame struct {
	kind   DirectiveKind
	target string // raw attribute list, matched against endif::name[]
	open   Ref
	active bool
}

// splitConditionNames splits a conditional attribute list. A comma-separated
// list selects "any" semantics, a plus-separated list selects "all".
func splitConditionNames(target string) (names []string, all bool) {
	switch {
	case strings.ContainsRune(target, ','):
		names = strings.Split(target, ",")
	case strings.ContainsRune(target, '+'):
		names = strings.Split(target, "+")
		all = true
	default:
		names = []string{target}
	}
	for i := range names {
		names[i] = strings.TrimSpace(names[i])
	}
	return names, all
}

// evalDefined decides an ifdef/ifndef attribute list.
//
// ifdef::a,b[]  -> any of a, b defined
// ifdef::a+b[]  -> all of a, b defined
// ifndef::a,b[] -> none of a, b defined
// ifndef::a+b[] -> at least one of a, b undefined
func evalDefined(kind DirectiveKind, target string, attrs *AttributeSet) bool {
	names, all := splitConditionNames(target)

	defined := 0
	for _, name := range names {
		if name != "" && attrs.IsDefined(name) {
			defined++
		}
	}

	var result bool
	if all {
		result = defined == len(names)
	} else {
		result = defined > 0
	}
	if kind == DirIfNDef {
		return !result
	}
	return result
}

// findEndIf returns the buffer index of the endif matching the block
// conditional at start, honoring lexical nesting of block forms, or -1 when
// the buffer ends first.
func findEndIf(buf *Buffer, start int) int {
	depth := 1
	for i := start + 1; i < buf.Len(); i++ {
		d, ok := parseDirective(buf.At(i).Text)
		if !ok {
			continue
		}
		switch d.Kind {
		case DirIfDef, DirIfNDef, DirIfEval:
			if d.Block() {
				depth++
			}
		case DirEndIf:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
