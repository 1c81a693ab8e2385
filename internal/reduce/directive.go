package reduce

import (
	"strings"
)

// DirectiveKind enumerates the directive variants the scanner recognizes.
// The orchestrator switches exhaustively over this set.
type DirectiveKind uint8

const (
	DirInclude DirectiveKind = iota
	DirIfDef
	DirIfNDef
	DirIfEval
	DirEndIf
)

func (k DirectiveKind) String() string {
	switch k {
	case DirInclude:
		return "include"
	case DirIfDef:
		return "ifdef"
	case DirIfNDef:
		return "ifndef"
	case DirIfEval:
		return "ifeval"
	case DirEndIf:
		return "endif"
	}
	return "unknown"
}

// Directive is one recognized directive line.
//
// Target is the include target or the conditional attribute list. Text is
// whatever the brackets carried: the attrlist for an include, the inline
// body for a single-line ifdef/ifndef, or the expression for an ifeval.
type Directive struct {
	Kind   DirectiveKind
	Index  int
	Raw    string
	Target string
	Text   string
}

// Block reports whether the directive opens a conditional block that must be
// closed by endif. Single-line ifdef::attr[text] forms carry their body in
// the brackets and do not open a block; ifeval always does.
func (d Directive) Block() bool {
	switch d.Kind {
	case DirIfEval:
		return true
	case DirIfDef, DirIfNDef:
		return d.Text == ""
	}
	return false
}

// parseDirective recognizes a directive occupying its own line. A directive
// starts at column one and ends with a bracketed segment; anything that does
// not match the fixed shape is ordinary text.
func parseDirective(text string) (Directive, bool) {
	var kind DirectiveKind
	var rest string
	switch {
	case strings.HasPrefix(text, "include::"):
		kind, rest = DirInclude, text[len("include::"):]
	case strings.HasPrefix(text, "ifdef::"):
		kind, rest = DirIfDef, text[len("ifdef::"):]
	case strings.HasPrefix(text, "ifndef::"):
		kind, rest = DirIfNDef, text[len("ifndef::"):]
	case strings.HasPrefix(text, "ifeval::"):
		kind, rest = DirIfEval, text[len("ifeval::"):]
	case strings.HasPrefix(text, "endif::"):
		kind, rest = DirEndIf, text[len("endif::"):]
	default:
		return Directive{}, false
	}

	if !strings.HasSuffix(rest, "]") {
		return Directive{}, false
	}
	open := strings.IndexByte(rest, '[')
	if open < 0 {
		return Directive{}, false
	}
	target := rest[:open]
	body := rest[open+1 : len(rest)-1]

	switch kind {
	case DirInclude:
		if target == "" {
			return Directive{}, false
		}
	case DirIfDef, DirIfNDef:
		if target == "" {
			return Directive{}, false
		}
	case DirIfEval:
		if target != "" || strings.TrimSpace(body) == "" {
			return Directive{}, false
		}
	case DirEndIf:
		if strings.TrimSpace(body) != "" {
			return Directive{}, false
		}
	}

	return Directive{
		Kind:   kind,
		Raw:    text,
		Target: target,
		Text:   body,
	}, true
}

// parseAttrList splits an include attrlist into positional entries and named
// key=value pairs. Commas inside single or double quotes do not split; quotes
// around values are stripped.
func parseAttrList(list string) (positional []string, named map[string]string) {
	named = make(map[string]string)
	for _, item := range splitQuoted(list, ',') {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if eq := indexByteQuoted(item, '='); eq > 0 {
			key := strings.ToLower(strings.TrimSpace(item[:eq]))
			named[key] = unquote(strings.TrimSpace(item[eq+1:]))
			continue
		}
		positional = append(positional, unquote(item))
	}
	return positional, named
}

// splitQuoted splits on sep outside of single/double quotes.
func splitQuoted(s string, sep byte) []string {
	var out []string
	var quote byte
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == sep:
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

// indexByteQuoted returns the index of the first b outside quotes, or -1.
func indexByteQuoted(s string, b byte) int {
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == b:
			return i
		}
	}
	return -1
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
