// Package cover produces the thumbnail stored with every story: page 1 of
// the PDF, rendered at twice its nominal size and encoded as a JPEG data URI.
package cover

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // custom covers may be PNG
	"io"

	"github.com/blackwell-systems/storyshelf/internal/catalog"
	"github.com/blackwell-systems/storyshelf/internal/pdfrender"
	"github.com/sirupsen/logrus"
)

// Defaults for Extractor.
const (
	DefaultScale   = 2.0
	DefaultQuality = 85
)

// ParseError means no cover could be produced from the input: the bytes are
// not a readable PDF or the renderer could not run.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot extract cover: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Extractor renders cover thumbnails.
type Extractor struct {
	raster  pdfrender.Rasterizer
	scale   float64
	quality int
	log     *logrus.Entry
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithScale sets the oversampling factor applied to the page's nominal size.
func WithScale(scale float64) Option {
	return func(e *Extractor) {
		if scale > 0 {
			e.scale = scale
		}
	}
}

// WithQuality sets the JPEG quality, 1 to 100.
func WithQuality(q int) Option {
	return func(e *Extractor) {
		if q >= 1 && q <= 100 {
			e.quality = q
		}
	}
}

// New returns an Extractor that rasterizes with r.
func New(r pdfrender.Rasterizer, opts ...Option) *Extractor {
	e := &Extractor{
		raster:  r,
		scale:   DefaultScale,
		quality: DefaultQuality,
		log:     logrus.WithField("component", "cover"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns page 1 of data as a JPEG data URI. Invalid input and an
// unavailable renderer both yield *ParseError. A cancelled context is
// returned unwrapped.
func (e *Extractor) Extract(ctx context.Context, data []byte) (string, error) {
	img, err := e.Render(ctx, data)
	if err != nil {
		return "", err
	}
	return e.encode(img)
}

// Render rasterizes page 1 without encoding it.
func (e *Extractor) Render(ctx context.Context, data []byte) (image.Image, error) {
	doc, err := pdfrender.Parse(data)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	page, err := doc.Page(1)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	w, h := page.Scaled(e.scale)

	img, err := e.raster.Rasterize(ctx, data, 1, w, h)
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return nil, err
		}
		return nil, &ParseError{Err: err}
	}
	e.log.WithFields(logrus.Fields{"width": w, "height": h}).Debug("cover rendered")
	return img, nil
}

// FromImage re-encodes a JPEG or PNG image as a cover data URI.
func (e *Extractor) FromImage(r io.Reader) (string, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return "", &ParseError{Err: fmt.Errorf("decoding image: %w", err)}
	}
	return e.encode(img)
}

func (e *Extractor) encode(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: e.quality}); err != nil {
		return "", fmt.Errorf("encoding cover: %w", err)
	}
	return catalog.EncodeDataURI(catalog.MIMEJPEG, buf.Bytes()), nil
}
