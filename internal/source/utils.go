package source

import (
	"path/filepath"
	"slices"

	"golang.org/x/text/encoding/unicode"
)

// normalizeContent brings raw file bytes to UTF-8 with LF line endings and
// reports what was changed via FileFlags.
func normalizeContent(content []byte) ([]byte, FileFlags, error) {
	flags := FileFlags(0)

	if isUTF16(content) {
		decoded, err := decodeUTF16(content)
		if err != nil {
			return nil, 0, err
		}
		content = decoded
		flags |= FileTranscodedUTF16 | FileHadBOM
	} else {
		var hadBOM bool
		content, hadBOM = removeBOM(content)
		if hadBOM {
			flags |= FileHadBOM
		}
	}

	content, hadCRLF := normalizeCRLF(content)
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	return content, flags, nil
}

// normalizeCRLF replaces every \r\n with \n, leaving lone \r untouched.
// Returns the (possibly new) slice and whether any replacement happened.
func normalizeCRLF(content []byte) ([]byte, bool) {
	// Fast path: no \r at all.
	if !slices.Contains(content, '\r') {
		return content, false
	}

	out := make([]byte, 0, len(content))
	changed := false

	i := 0
	for i < len(content) {
		if content[i] == '\r' && i+1 < len(content) && content[i+1] == '\n' {
			out = append(out, '\n')
			i += 2
			changed = true
		} else {
			out = append(out, content[i])
			i++
		}
	}
	return out, changed
}

func removeBOM(content []byte) ([]byte, bool) {
	if len(content) < 3 {
		return content, false
	}

	if content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		return content[3:], true
	}

	return content, false
}

// isUTF16 reports whether content starts with a UTF-16 byte order mark.
func isUTF16(content []byte) bool {
	if len(content) < 2 {
		return false
	}
	return (content[0] == 0xFE && content[1] == 0xFF) || (content[0] == 0xFF && content[1] == 0xFE)
}

func decodeUTF16(content []byte) ([]byte, error) {
	decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	return decoder.Bytes(content)
}

func buildLineIndex(content []byte) []uint32 {
	out := make([]uint32, 0, len(content)/32)
	for i, b := range content {
		if b == '\n' {
			out = append(out, uint32(i))
		}
	}
	return out
}

func normalizePath(p string) string {
	// one canonical shape in cross-platform diffs
	return filepath.ToSlash(filepath.Clean(p))
}
