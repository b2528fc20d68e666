package vo

import (
	"strings"
	"unicode"
)

// FileName represents a file name that is safe to create on common filesystems.
type FileName struct {
	value string
}

// forbiddenChars are removed from candidate names.
const forbiddenChars = `\/*?:<>|"`

// SanitizeFileName removes characters that are not allowed in file names and
// replaces every run of whitespace with a single underscore.
// The second return value is false when no character other than whitespace
// is left.
func SanitizeFileName(raw string) (FileName, bool) {
	var b strings.Builder
	b.Grow(len(raw))

	inSpace, visible := false, false
	for _, r := range raw {
		if strings.ContainsRune(forbiddenChars, r) {
			continue
		}
		if isSpace(r) {
			if !inSpace {
				b.WriteByte('_')
				inSpace = true
			}
			continue
		}
		inSpace, visible = false, true
		b.WriteRune(r)
	}

	if !visible {
		return FileName{}, false
	}
	return FileName{value: b.String()}, true
}

// String returns the string representation of the name.
func (fn FileName) String() string {
	return fn.value
}

// IsEmpty returns true if the name is empty.
func (fn FileName) IsEmpty() bool {
	return fn.value == ""
}

// HasExtension reports whether the name already ends with ext.
func (fn FileName) HasExtension(ext string) bool {
	return strings.HasSuffix(fn.value, ext)
}

// WithExtension returns the name with ext appended unless it already ends with it.
func (fn FileName) WithExtension(ext string) FileName {
	if fn.value == "" || fn.HasExtension(ext) {
		return fn
	}
	return FileName{value: fn.value + ext}
}

// isSpace also treats the \x1c-\x1f separators as whitespace
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}
