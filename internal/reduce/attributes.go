package reduce

import (
	"strings"
)

// AttributeSet holds the attributes visible at the current scan position:
// the caller-supplied set (locked, cannot be overridden by the document)
// plus entries accumulated from the document as the scan passes them.
type AttributeSet struct {
	vals   map[string]string
	locked map[string]bool
}

// NewAttributeSet creates a set from caller-supplied attributes. Every name
// in cli is locked: in-document entries for the same name are ignored.
// A trailing '!' on a name locks the attribute as unset.
func NewAttributeSet(cli map[string]string) *AttributeSet {
	a := &AttributeSet{
		vals:   make(map[string]string),
		locked: make(map[string]bool),
	}
	for name, value := range cli {
		if unset, ok := strings.CutSuffix(name, "!"); ok {
			a.UnsetLocked(unset)
			continue
		}
		a.SetLocked(name, value)
	}
	return a
}

func normalizeAttrName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// SetLocked defines an attribute that the document cannot change.
func (a *AttributeSet) SetLocked(name, value string) {
	name = normalizeAttrName(name)
	a.vals[name] = value
	a.locked[name] = true
}

// UnsetLocked removes an attribute and forbids the document to define it.
func (a *AttributeSet) UnsetLocked(name string) {
	name = normalizeAttrName(name)
	delete(a.vals, name)
	a.locked[name] = true
}

// Set records an in-document attribute entry.
// Returns false when the name is locked by the caller.
func (a *AttributeSet) Set(name, value string) bool {
	name = normalizeAttrName(name)
	if a.locked[name] {
		return false
	}
	a.vals[name] = value
	return true
}

// Unset removes an in-document attribute.
// Returns false when the name is locked by the caller.
func (a *AttributeSet) Unset(name string) bool {
	name = normalizeAttrName(name)
	if a.locked[name] {
		return false
	}
	delete(a.vals, name)
	return true
}

// Get returns the attribute value and whether it is defined.
func (a *AttributeSet) Get(name string) (string, bool) {
	v, ok := a.vals[normalizeAttrName(name)]
	return v, ok
}

// IsDefined reports whether the attribute is currently defined.
func (a *AttributeSet) IsDefined(name string) bool {
	_, ok := a.vals[normalizeAttrName(name)]
	return ok
}

// Substitute replaces {name} references with attribute values, using the set
// accumulated so far. References to undefined attributes are left intact and
// reported in missing.
func (a *AttributeSet) Substitute(s string) (out string, missing []string) {
	if !strings.Contains(s, "{") {
		return s, nil
	}
	var sb strings.Builder
	i := 0
	for i < len(s) {
		open := strings.IndexByte(s[i:], '{')
		if open < 0 {
			sb.WriteString(s[i:])
			break
		}
		open += i
		close_ := strings.IndexByte(s[open:], '}')
		if close_ < 0 {
			sb.WriteString(s[i:])
			break
		}
		close_ += open
		name := s[open+1 : close_]
		if isAttrRefName(name) {
			if v, ok := a.Get(name); ok {
				sb.WriteString(s[i:open])
				sb.WriteString(v)
				i = close_ + 1
				continue
			}
			missing = append(missing, normalizeAttrName(name))
		}
		sb.WriteString(s[i : close_+1])
		i = close_ + 1
	}
	return sb.String(), missing
}

// isAttrRefName checks the shape of an attribute reference between braces.
func isAttrRefName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '_', c == '-':
		default:
			return false
		}
	}
	return true
}

// parseAttributeEntry recognizes attribute entry lines:
// ":name: value", ":name:" (set empty) and ":name!:" (unset).
func parseAttributeEntry(text string) (name, value string, unset, ok bool) {
	if len(text) < 3 || text[0] != ':' {
		return "", "", false, false
	}
	rest := text[1:]
	end := strings.IndexByte(rest, ':')
	if end <= 0 {
		return "", "", false, false
	}
	name = rest[:end]
	if cut, found := strings.CutSuffix(name, "!"); found {
		name = cut
		unset = true
	} else if cut, found := strings.CutPrefix(name, "!"); found {
		name = cut
		unset = true
	}
	if !isAttrName(name) {
		return "", "", false, false
	}
	value = rest[end+1:]
	if value != "" && !strings.HasPrefix(value, " ") {
		// ":name:value" without a separating space is not an entry
		return "", "", false, false
	}
	return normalizeAttrName(name), strings.TrimSpace(value), unset, true
}

// isAttrName checks an attribute entry name: word characters and hyphens,
// starting with a word character.
func isAttrName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
		case c == '-' && i > 0:
		default:
			return false
		}
	}
	return true
}
