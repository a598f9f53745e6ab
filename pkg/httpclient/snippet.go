package httpclient

import (
	"strings"
	"unicode/utf8"
)

const maxSnippetBytes = 512

// BodySnippet renders a response body for logs and error messages: trimmed,
// at most 512 bytes, never splitting a UTF-8 sequence.
func BodySnippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if s == "" {
		return "<empty>"
	}
	if len(s) <= maxSnippetBytes {
		return s
	}
	cut := maxSnippetBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
