// Package viewer renders a stored PDF one page at a time onto a reusable
// surface. Each new render cancels the one in flight; only the most recently
// requested page is ever drawn.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/blackwell-systems/storyshelf/internal/pdfrender"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
)

// Zoom limits.
const (
	MinZoom     = 0.5
	MaxZoom     = 3.0
	ZoomStep    = 0.2
	DefaultZoom = 1.2
)

var (
	// ErrOpen is returned when the source cannot be opened as a document.
	ErrOpen = errors.New("cannot open document")
	// ErrSuperseded is returned by a render that a newer request replaced.
	ErrSuperseded = errors.New("render superseded")
	// ErrNotOpen is returned when rendering before Open.
	ErrNotOpen = errors.New("no document open")
)

// Frame is one rendered page. Image is the viewer's surface and is only
// valid until the next successful render.
type Frame struct {
	Page      int
	PageCount int
	Scale     float64
	Image     *image.RGBA
}

// Viewer holds one open document and its render surface.
type Viewer struct {
	raster pdfrender.Rasterizer
	zoom   float64
	log    *logrus.Entry

	mu      sync.Mutex
	data    []byte
	doc     *pdfrender.Document
	page    int
	scale   float64
	seq     uint64
	cancel  context.CancelFunc
	surface *image.RGBA
}

// New returns a Viewer. defaultZoom is the scale a document opens at; values
// outside [MinZoom, MaxZoom] fall back to DefaultZoom.
func New(r pdfrender.Rasterizer, defaultZoom float64) *Viewer {
	if defaultZoom < MinZoom || defaultZoom > MaxZoom {
		defaultZoom = DefaultZoom
	}
	return &Viewer{
		raster: r,
		zoom:   defaultZoom,
		log:    logrus.WithField("component", "viewer"),
	}
}

// Open loads data as the current document and returns its page count. A
// render still in flight for the previous document is cancelled.
func (v *Viewer) Open(data []byte) (int, error) {
	doc, err := pdfrender.Parse(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrOpen, err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.supersedeLocked()
	v.data = data
	v.doc = doc
	v.page = 1
	v.scale = v.zoom
	v.log.WithField("pages", doc.PageCount()).Debug("document opened")
	return doc.PageCount(), nil
}

// Close drops the document and cancels any render in flight.
func (v *Viewer) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.supersedeLocked()
	v.data, v.doc = nil, nil
}

// Page returns the current page number.
func (v *Viewer) Page() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.page
}

// Scale returns the current zoom.
func (v *Viewer) Scale() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.scale
}

// PageCount returns the number of pages, or 0 when nothing is open.
func (v *Viewer) PageCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.doc == nil {
		return 0
	}
	return v.doc.PageCount()
}

// Next renders the following page.
func (v *Viewer) Next(ctx context.Context) (Frame, error) {
	return v.step(ctx, 1, 0)
}

// Prev renders the preceding page.
func (v *Viewer) Prev(ctx context.Context) (Frame, error) {
	return v.step(ctx, -1, 0)
}

// ZoomIn renders the current page one step larger.
func (v *Viewer) ZoomIn(ctx context.Context) (Frame, error) {
	return v.step(ctx, 0, ZoomStep)
}

// ZoomOut renders the current page one step smaller.
func (v *Viewer) ZoomOut(ctx context.Context) (Frame, error) {
	return v.step(ctx, 0, -ZoomStep)
}

// Redraw renders the current page at the current scale.
func (v *Viewer) Redraw(ctx context.Context) (Frame, error) {
	return v.step(ctx, 0, 0)
}

func (v *Viewer) step(ctx context.Context, dPage int, dScale float64) (Frame, error) {
	v.mu.Lock()
	page, scale := v.page+dPage, v.scale+dScale
	v.mu.Unlock()
	return v.Render(ctx, page, scale)
}

// Render draws page at scale onto the surface. Page is clamped to
// [1, PageCount] and scale to [MinZoom, MaxZoom]. If another Render starts
// before this one finishes, this one returns ErrSuperseded and draws nothing.
func (v *Viewer) Render(ctx context.Context, page int, scale float64) (Frame, error) {
	v.mu.Lock()
	if v.doc == nil {
		v.mu.Unlock()
		return Frame{}, ErrNotOpen
	}
	page = ClampPage(page, v.doc.PageCount())
	scale = ClampZoom(scale)
	size, err := v.doc.Page(page)
	if err != nil {
		v.mu.Unlock()
		return Frame{}, err
	}

	v.supersedeLocked()
	seq := v.seq
	rctx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	v.page, v.scale = page, scale
	data, count := v.data, v.doc.PageCount()
	v.mu.Unlock()

	w, h := size.Scaled(scale)
	img, err := v.raster.Rasterize(rctx, data, page, w, h)

	v.mu.Lock()
	defer v.mu.Unlock()
	cancel()
	if seq != v.seq {
		return Frame{}, ErrSuperseded
	}
	v.cancel = nil
	if err != nil {
		return Frame{}, fmt.Errorf("rendering page %d: %w", page, err)
	}

	surface := v.resizeLocked(w, h)
	draw.Draw(surface, surface.Bounds(), img, img.Bounds().Min, draw.Src)
	return Frame{Page: page, PageCount: count, Scale: scale, Image: surface}, nil
}

// Snapshot copies the surface while it still shows f. Once a request for
// another page or scale has started, Snapshot returns ErrSuperseded.
func (v *Viewer) Snapshot(f Frame) (*image.RGBA, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.doc == nil || v.surface == nil || v.page != f.Page || v.scale != f.Scale {
		return nil, ErrSuperseded
	}
	out := image.NewRGBA(v.surface.Rect)
	copy(out.Pix, v.surface.Pix)
	return out, nil
}

// supersedeLocked invalidates and cancels the render in flight, if any.
func (v *Viewer) supersedeLocked() {
	v.seq++
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
}

// resizeLocked reshapes the surface to w x h, reusing its pixel buffer when
// it is large enough.
func (v *Viewer) resizeLocked(w, h int) *image.RGBA {
	need := 4 * w * h
	if v.surface != nil && cap(v.surface.Pix) >= need {
		v.surface.Pix = v.surface.Pix[:need]
		v.surface.Stride = 4 * w
		v.surface.Rect = image.Rect(0, 0, w, h)
		return v.surface
	}
	v.surface = image.NewRGBA(image.Rect(0, 0, w, h))
	return v.surface
}

// ClampPage limits page to [1, count].
func ClampPage(page, count int) int {
	return max(1, min(page, count))
}

// ClampZoom limits scale to [MinZoom, MaxZoom], rounded to one decimal.
func ClampZoom(scale float64) float64 {
	scale = math.Round(scale*10) / 10
	return math.Max(MinZoom, math.Min(scale, MaxZoom))
}
