package tui

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg" // covers are stored as JPEG
	"image/png"
	"os"
	"strings"
)

// TerminalImageProtocol represents the image protocol supported by the terminal
type TerminalImageProtocol int

// Terminal image protocol types
const (
	// ProtocolNone indicates no image protocol support
	ProtocolNone TerminalImageProtocol = iota
	// ProtocolKitty indicates Kitty terminal graphics protocol
	ProtocolKitty
	// ProtocolITerm2 indicates iTerm2 inline images protocol
	ProtocolITerm2
)

// DetectImageProtocol detects which terminal image protocol is supported.
func DetectImageProtocol() TerminalImageProtocol {
	termProgram := os.Getenv("TERM_PROGRAM")
	term := os.Getenv("TERM")

	// Check for Kitty terminal
	if strings.Contains(term, "kitty") {
		return ProtocolKitty
	}

	// Check for Ghostty (supports Kitty protocol)
	if termProgram == "ghostty" {
		return ProtocolKitty
	}

	// Check for iTerm2
	if termProgram == "iTerm.app" {
		return ProtocolITerm2
	}

	return ProtocolNone
}

// ParseProtocol resolves the viewer.images setting. "auto" and unknown
// values fall back to detection.
func ParseProtocol(setting string) TerminalImageProtocol {
	switch strings.ToLower(strings.TrimSpace(setting)) {
	case "off", "none", "text":
		return ProtocolNone
	case "kitty":
		return ProtocolKitty
	case "iterm2", "iterm":
		return ProtocolITerm2
	}
	return DetectImageProtocol()
}

// RenderInlineImage renders an image file inline using the terminal's protocol.
// Returns the terminal escape sequences to display the image, or empty string on error.
func RenderInlineImage(imagePath string, protocol TerminalImageProtocol) string {
	if protocol == ProtocolNone {
		return ""
	}

	data, err := os.ReadFile(imagePath)
	if err != nil {
		return ""
	}

	// Kitty's f=100 only takes PNG.
	if protocol == ProtocolKitty && !bytes.HasPrefix(data, pngMagic) {
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return ""
		}
		if data, err = EncodePNG(img); err != nil {
			return ""
		}
	}
	return RenderInlineImageBytes(data, protocol)
}

// RenderInlineImageBytes renders image data inline using the terminal's protocol.
// Returns the terminal escape sequences to display the image, or empty string on error.
func RenderInlineImageBytes(data []byte, protocol TerminalImageProtocol) string {
	switch protocol {
	case ProtocolKitty:
		return renderKittyImage(data)
	case ProtocolITerm2:
		return renderITerm2Image(data)
	}
	return ""
}

// ClearInlineImages returns the sequence that removes images drawn earlier.
// Only Kitty keeps images around independently of the text grid.
func ClearInlineImages(protocol TerminalImageProtocol) string {
	if protocol == ProtocolKitty {
		return "\x1b_Ga=d\x1b\\"
	}
	return ""
}

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

// EncodePNG encodes img with the fastest PNG compression.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}

// renderKittyImage uses Kitty's graphics protocol. Payloads over 4096 bytes
// are sent in chunks with m=1 on every chunk but the last.
func renderKittyImage(data []byte) string {
	const chunk = 4096
	encoded := base64.StdEncoding.EncodeToString(data)

	var b strings.Builder
	for i := 0; i < len(encoded); i += chunk {
		end := min(i+chunk, len(encoded))
		more := 0
		if end < len(encoded) {
			more = 1
		}
		if i == 0 {
			// a=T: transmit and display, f=100: PNG
			fmt.Fprintf(&b, "\x1b_Ga=T,f=100,m=%d;%s\x1b\\", more, encoded[i:end])
		} else {
			fmt.Fprintf(&b, "\x1b_Gm=%d;%s\x1b\\", more, encoded[i:end])
		}
	}
	return b.String()
}

// renderITerm2Image uses iTerm2's inline images protocol
// Format: \x1b]1337;File=inline=1:<base64>\x07
func renderITerm2Image(data []byte) string {
	encoded := base64.StdEncoding.EncodeToString(data)
	return fmt.Sprintf("\x1b]1337;File=inline=1;size=%d;preserveAspectRatio=1:%s\x07", len(data), encoded)
}
