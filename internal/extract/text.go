// Package extract turns stored object bytes into plaintext and holds the small text
// rules shared by the pipeline stages.
package extract

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Sentinels written to the Plaintext field when no real text can be produced.
const (
	UndecodableText = "Unable to decode text file"
	EmptyDocxText   = "No text found in document"
)

// Extract produces plaintext for the object called name. Word-processor and
// spreadsheet packages are unpacked; everything else is decoded as text. Parse
// failures become a readable message instead of an error, so the caller always has
// something to store.
func Extract(name string, content []byte) string {
	switch FileType(name) {
	case "docx":
		return DocxText(content)
	case "xlsx":
		return XLSXText(content)
	default:
		return Decode(content)
	}
}

// Decode reads raw bytes as UTF-8, falling back to Latin-1, then to UndecodableText.
func Decode(content []byte) string {
	if utf8.Valid(content) {
		return string(content)
	}
	text, err := charmap.ISO8859_1.NewDecoder().Bytes(content)
	if err != nil {
		return UndecodableText
	}
	return string(text)
}

// WordCount returns the number of whitespace-delimited tokens in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// FirstWords keeps at most n whitespace-delimited tokens of text, joined by single
// spaces. Text that is already short enough is returned unchanged.
func FirstWords(text string, n int) string {
	words := strings.Fields(text)
	if len(words) <= n {
		return text
	}
	return strings.Join(words[:n], " ")
}

// TruncateUTF8 cuts s to at most max bytes without splitting a rune.
func TruncateUTF8(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
