package service

import (
	"strings"
	"unicode/utf8"
)

// maxFieldLength caps free-text fields coming from untrusted adapters.
const maxFieldLength = 512

// shellMetaChars are stripped from free text before it can reach a store
// write or a log line; the stdin adapter accepts arbitrary callers.
const shellMetaChars = "`$|&;<>(){}[]\\\"'"

// sanitizeUTF8 removes invalid UTF-8 sequences from a string. This
// prevents PostgreSQL encoding errors when saving text.
func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}

	var result strings.Builder
	result.Grow(len(s))

	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError && size == 1 {
			s = s[1:]
			continue
		}
		result.WriteRune(r)
		s = s[size:]
	}

	return result.String()
}

// SanitizeField strips shell metacharacters, drops invalid UTF-8 and caps
// the length of a caller-supplied text field.
func SanitizeField(s string) string {
	s = sanitizeUTF8(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x80 && strings.ContainsRune(shellMetaChars, r) {
			continue
		}
		b.WriteRune(r)
	}
	out := strings.TrimSpace(b.String())
	return truncateRunes(out, maxFieldLength)
}
