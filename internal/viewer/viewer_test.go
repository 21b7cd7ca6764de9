package viewer_test

import (
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/blackwell-systems/storyshelf/internal/viewer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRaster paints each page a solid colour derived from the page number.
// Pages listed in gates block until their gate is closed or ctx ends.
type stubRaster struct {
	mu      sync.Mutex
	gates   map[int]chan struct{}
	started chan int
	calls   []int
}

func (s *stubRaster) Rasterize(ctx context.Context, _ []byte, page, w, h int) (image.Image, error) {
	s.mu.Lock()
	s.calls = append(s.calls, page)
	gate := s.gates[page]
	s.mu.Unlock()

	if s.started != nil {
		s.started <- page
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	c := color.RGBA{R: uint8(page * 40), A: 255}
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+3] = c.R, c.A
	}
	return img, nil
}

func samplePDF(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "pdfrender", "testdata", "sample.pdf"))
	require.NoError(t, err)
	return data
}

func openViewer(t *testing.T, r *stubRaster) *viewer.Viewer {
	t.Helper()
	v := viewer.New(r, viewer.DefaultZoom)
	n, err := v.Open(samplePDF(t))
	require.NoError(t, err)
	require.Equal(t, 2, n)
	t.Cleanup(v.Close)
	return v
}

func TestOpen_Malformed(t *testing.T) {
	v := viewer.New(&stubRaster{}, viewer.DefaultZoom)
	_, err := v.Open([]byte("<html>not a pdf</html>"))
	assert.ErrorIs(t, err, viewer.ErrOpen)
	assert.Zero(t, v.PageCount())

	_, err = v.Render(context.Background(), 1, 1)
	assert.ErrorIs(t, err, viewer.ErrNotOpen)
}

func TestOpen_Defaults(t *testing.T) {
	v := openViewer(t, &stubRaster{})
	assert.Equal(t, 1, v.Page())
	assert.Equal(t, viewer.DefaultZoom, v.Scale())
}

func TestRender_ClampsPageAndZoom(t *testing.T) {
	ctx := context.Background()
	v := openViewer(t, &stubRaster{})

	f, err := v.Render(ctx, 99, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, f.Page)
	assert.Equal(t, viewer.MaxZoom, f.Scale)
	// page 2 is 300x200 points
	assert.Equal(t, image.Rect(0, 0, 900, 600), f.Image.Bounds())

	f, err = v.Render(ctx, -3, 0.1)
	require.NoError(t, err)
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, viewer.MinZoom, f.Scale)
	assert.Equal(t, image.Rect(0, 0, 100, 150), f.Image.Bounds())
}

func TestNavigation(t *testing.T) {
	ctx := context.Background()
	v := openViewer(t, &stubRaster{})

	f, err := v.Prev(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, f.Page, "prev on first page stays put")

	f, err = v.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, f.Page)

	f, err = v.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, f.Page, "next on last page stays put")

	f, err = v.ZoomIn(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1.4, f.Scale)

	for i := 0; i < 20; i++ {
		f, err = v.ZoomOut(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, viewer.MinZoom, f.Scale)
}

func TestRender_SupersededByNewerRequest(t *testing.T) {
	ctx := context.Background()
	r := &stubRaster{
		gates:   map[int]chan struct{}{1: make(chan struct{})},
		started: make(chan int, 4),
	}
	v := openViewer(t, r)

	first := make(chan error, 1)
	go func() {
		_, err := v.Render(ctx, 1, 1.0)
		first <- err
	}()
	require.Equal(t, 1, <-r.started)

	f, err := v.Render(ctx, 2, 1.0)
	require.NoError(t, err)
	assert.Equal(t, 2, f.Page)
	<-r.started

	select {
	case err := <-first:
		assert.ErrorIs(t, err, viewer.ErrSuperseded)
	case <-time.After(5 * time.Second):
		t.Fatal("superseded render did not return")
	}

	// The surface still shows page 2.
	assert.Equal(t, uint8(80), f.Image.Pix[0])
	assert.Equal(t, 2, v.Page())
}

func TestRender_LateResultDiscarded(t *testing.T) {
	ctx := context.Background()
	gate := make(chan struct{})
	r := &stubRaster{gates: map[int]chan struct{}{1: gate}, started: make(chan int, 4)}
	v := openViewer(t, r)

	first := make(chan error, 1)
	go func() {
		// A detached context: the stub only returns once the gate opens.
		_, err := v.Render(context.WithoutCancel(ctx), 1, 1.0)
		first <- err
	}()
	<-r.started

	f, err := v.Render(ctx, 2, 1.0)
	require.NoError(t, err)
	<-r.started
	close(gate)

	assert.ErrorIs(t, <-first, viewer.ErrSuperseded)
	assert.Equal(t, uint8(80), f.Image.Pix[0], "late page 1 result must not reach the surface")
}

func TestRender_ReusesSurface(t *testing.T) {
	ctx := context.Background()
	v := openViewer(t, &stubRaster{})

	f1, err := v.Render(ctx, 1, 2.0)
	require.NoError(t, err)
	p1 := &f1.Image.Pix[0]

	f2, err := v.Render(ctx, 1, 1.0)
	require.NoError(t, err)
	assert.Same(t, p1, &f2.Image.Pix[0], "smaller render should reuse the buffer")
	assert.Equal(t, image.Rect(0, 0, 200, 300), f2.Image.Bounds())
}

func TestClampZoom(t *testing.T) {
	assert.Equal(t, 1.4, viewer.ClampZoom(1.2+0.2))
	assert.Equal(t, viewer.MinZoom, viewer.ClampZoom(0))
	assert.Equal(t, viewer.MaxZoom, viewer.ClampZoom(7))
}

func TestClampPage(t *testing.T) {
	assert.Equal(t, 1, viewer.ClampPage(0, 5))
	assert.Equal(t, 5, viewer.ClampPage(9, 5))
	assert.Equal(t, 3, viewer.ClampPage(3, 5))
}

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	v := openViewer(t, &stubRaster{})

	f, err := v.Render(ctx, 2, 1.0)
	require.NoError(t, err)

	snap, err := v.Snapshot(f)
	require.NoError(t, err)
	assert.Equal(t, f.Image.Bounds(), snap.Bounds())
	assert.NotSame(t, &f.Image.Pix[0], &snap.Pix[0])
	assert.Equal(t, f.Image.Pix, snap.Pix)

	_, err = v.Render(ctx, 1, 1.0)
	require.NoError(t, err)
	_, err = v.Snapshot(f)
	assert.ErrorIs(t, err, viewer.ErrSuperseded, "surface now shows page 1")
}
