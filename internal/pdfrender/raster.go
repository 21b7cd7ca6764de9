package pdfrender

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
)

// ErrRendererUnavailable is returned when no rasterizer can run on this host.
var ErrRendererUnavailable = errors.New("PDF renderer unavailable")

// Rasterizer renders one page of a PDF into an image of exactly width x height pixels.
type Rasterizer interface {
	Rasterize(ctx context.Context, data []byte, page, width, height int) (image.Image, error)
}

// Poppler rasterizes pages with pdftoppm from poppler-utils.
type Poppler struct {
	// Bin is the pdftoppm executable. Empty means "pdftoppm" on PATH.
	Bin string
	Log *logrus.Entry
}

// NewPoppler returns a Poppler using bin, or pdftoppm from PATH when bin is empty.
func NewPoppler(bin string) *Poppler {
	return &Poppler{Bin: bin, Log: logrus.WithField("component", "pdfrender")}
}

func (p *Poppler) bin() string {
	if p.Bin == "" {
		return "pdftoppm"
	}
	return p.Bin
}

// Available reports whether the pdftoppm binary can be found.
func (p *Poppler) Available() bool {
	_, err := exec.LookPath(p.bin())
	return err == nil
}

// Rasterize renders page into a width x height image. The source bytes and
// the rendered file live in a temporary directory that is removed before
// Rasterize returns, on every path.
func (p *Poppler) Rasterize(ctx context.Context, data []byte, page, width, height int) (image.Image, error) {
	bin, err := exec.LookPath(p.bin())
	if err != nil {
		return nil, fmt.Errorf("%w: %s not found (%s)", ErrRendererUnavailable, p.bin(), GetPopplerInstallHint())
	}
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("invalid raster size %dx%d", width, height)
	}

	dir, err := os.MkdirTemp("", "storyshelf-render-*")
	if err != nil {
		return nil, fmt.Errorf("creating render dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	src := filepath.Join(dir, "source.pdf")
	if err := os.WriteFile(src, data, 0600); err != nil {
		return nil, fmt.Errorf("writing render source: %w", err)
	}

	prefix := filepath.Join(dir, "page")
	pg := strconv.Itoa(page)
	// -singlefile: output is exactly <prefix>.png, no page-number suffix
	cmd := exec.CommandContext(ctx, bin,
		"-png",
		"-singlefile",
		"-f", pg,
		"-l", pg,
		"-scale-to-x", strconv.Itoa(width),
		"-scale-to-y", strconv.Itoa(height),
		src,
		prefix,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("pdftoppm page %d: %w: %s", page, err, out)
	}

	f, err := os.Open(prefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("reading rendered page: %w", err)
	}
	defer func() { _ = f.Close() }()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding rendered page: %w", err)
	}
	if p.Log != nil {
		p.Log.WithFields(logrus.Fields{"page": page, "width": width, "height": height}).Debug("page rasterized")
	}
	return Fit(img, width, height), nil
}

// Fit returns img scaled to exactly width x height. Images already at that
// size are returned unchanged.
func Fit(img image.Image, width, height int) image.Image {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height && b.Min == (image.Point{}) {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// GetPopplerInstallHint returns a platform-specific install command for poppler.
func GetPopplerInstallHint() string {
	switch runtime.GOOS {
	case "darwin":
		return "install with: brew install poppler"
	case "windows":
		return "install with: choco install poppler"
	default:
		return "install with: sudo apt install poppler-utils (or your distro's poppler package)"
	}
}
