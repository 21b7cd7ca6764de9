// Package pdfrender is the PDF capability shared by the cover extractor and
// the page viewer: structure parsing, page geometry, rasterization and text.
package pdfrender

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ParseError reports bytes that are not a readable PDF.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid PDF: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// PageSize is a page's rendered viewport in PDF points.
type PageSize struct {
	Width  float64
	Height float64
}

// Scaled returns the pixel viewport for the page at scale, at least 1x1.
func (p PageSize) Scaled(scale float64) (w, h int) {
	w = int(p.Width*scale + 0.5)
	h = int(p.Height*scale + 0.5)
	return max(w, 1), max(h, 1)
}

// Document is the parsed geometry of a PDF.
type Document struct {
	Pages []PageSize
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int { return len(d.Pages) }

// Page returns the size of page n (1-based).
func (d *Document) Page(n int) (PageSize, error) {
	if n < 1 || n > len(d.Pages) {
		return PageSize{}, fmt.Errorf("page %d out of range [1, %d]", n, len(d.Pages))
	}
	return d.Pages[n-1], nil
}

var disableConfigDir sync.Once

func config() *model.Configuration {
	disableConfigDir.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// Parse validates data as a PDF and reads the viewport of every page: the
// CropBox (MediaBox when absent) with the page rotation applied. This is
// the area pdftoppm renders.
func Parse(data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, &ParseError{Err: errors.New("empty input")}
	}
	if !bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), []byte("%PDF-")) {
		return nil, &ParseError{Err: errors.New("missing %PDF header")}
	}

	ctx, err := api.ReadAndValidate(bytes.NewReader(data), config())
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	boxes, err := ctx.PageBoundaries(nil)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	if len(boxes) == 0 {
		return nil, &ParseError{Err: errors.New("document has no pages")}
	}

	doc := &Document{Pages: make([]PageSize, len(boxes))}
	for i, pb := range boxes {
		size, err := viewport(pb)
		if err != nil {
			return nil, &ParseError{Err: fmt.Errorf("page %d: %w", i+1, err)}
		}
		doc.Pages[i] = size
	}
	return doc, nil
}

func viewport(pb model.PageBoundaries) (PageSize, error) {
	box := pb.CropBox()
	if box == nil {
		return PageSize{}, errors.New("missing MediaBox")
	}
	d := box.Dimensions()
	if pb.Rot%180 != 0 {
		d.Width, d.Height = d.Height, d.Width
	}
	if d.Width <= 0 || d.Height <= 0 {
		return PageSize{}, fmt.Errorf("empty page box %vx%v", d.Width, d.Height)
	}
	return PageSize{Width: d.Width, Height: d.Height}, nil
}
