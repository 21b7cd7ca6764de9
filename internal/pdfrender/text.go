package pdfrender

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PageText returns the plain text of page n (1-based). Pages without a text
// layer return an empty string.
func PageText(data []byte, n int) (text string, err error) {
	// The reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", &ParseError{Err: fmt.Errorf("reading text: %v", r)}
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ParseError{Err: err}
	}
	if n < 1 || n > r.NumPage() {
		return "", fmt.Errorf("page %d out of range [1, %d]", n, r.NumPage())
	}
	page := r.Page(n)
	if page.V.IsNull() {
		return "", nil
	}
	text, err = page.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("extracting text from page %d: %w", n, err)
	}
	return normalizeText(text), nil
}

func normalizeText(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

var terminalReplacer = strings.NewReplacer(
	"“", `"`, "”", `"`,
	"‘", "'", "’", "'",
	"–", "-", "—", "--",
	"…", "...",
	"\u00a0", " ",
	"•", "*",
	"«", "<<", "»", ">>",
)

// SanitizeForTerminal replaces typographic punctuation that many terminal
// fonts render poorly with ASCII equivalents. Other scripts pass through.
func SanitizeForTerminal(s string) string {
	return terminalReplacer.Replace(s)
}
