package pdfrender

import (
	"regexp"
	"strings"
	"unicode/utf16"
)

// Metadata holds the document Info fields used to prefill an upload.
type Metadata struct {
	Title   string
	Author  string
	Subject string
}

const metaWindow = 8192

// ExtractMetadata reads Title, Author and Subject from the Info dictionary.
// It only looks at the head and tail of the file, where the Info dictionary
// and trailer normally sit, so compressed object streams yield nothing.
func ExtractMetadata(data []byte) Metadata {
	text := string(data)
	if len(data) > 2*metaWindow {
		text = string(data[:metaWindow]) + "\n" + string(data[len(data)-metaWindow:])
	}
	return Metadata{
		Title:   extractField(text, "Title"),
		Author:  extractField(text, "Author"),
		Subject: extractField(text, "Subject"),
	}
}

var fieldPatterns = map[string][2]*regexp.Regexp{}

func init() {
	for _, f := range []string{"Title", "Author", "Subject"} {
		fieldPatterns[f] = [2]*regexp.Regexp{
			regexp.MustCompile(`/` + f + `\s*\(((?:\\.|[^\\)])*)\)`),
			regexp.MustCompile(`/` + f + `\s*<([0-9A-Fa-f\s]+)>`),
		}
	}
}

// extractField matches /Field (literal) first, then /Field <hex>.
func extractField(text, field string) string {
	pats := fieldPatterns[field]
	if m := pats[0].FindStringSubmatch(text); len(m) > 1 {
		return decodeLiteral(m[1])
	}
	if m := pats[1].FindStringSubmatch(text); len(m) > 1 {
		return decodeHex(m[1])
	}
	return ""
}

func decodeLiteral(s string) string {
	r := strings.NewReplacer(`\n`, "\n", `\r`, "\r", `\t`, "\t", `\(`, "(", `\)`, ")", `\\`, `\`)
	return strings.TrimSpace(r.Replace(s))
}

// decodeHex decodes a hex string, as UTF-16BE when it carries a BOM.
func decodeHex(hex string) string {
	hex = strings.Join(strings.Fields(hex), "")
	if len(hex)%2 != 0 {
		return ""
	}
	raw := make([]byte, len(hex)/2)
	for i := range raw {
		raw[i] = hexValue(hex[i*2])<<4 | hexValue(hex[i*2+1])
	}
	if len(raw) >= 2 && raw[0] == 0xFE && raw[1] == 0xFF {
		raw = raw[2:]
		if len(raw)%2 != 0 {
			return ""
		}
		u16 := make([]uint16, len(raw)/2)
		for i := range u16 {
			u16[i] = uint16(raw[i*2])<<8 | uint16(raw[i*2+1])
		}
		return strings.TrimSpace(string(utf16.Decode(u16)))
	}
	return strings.TrimSpace(string(raw))
}

func hexValue(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}
