package operations_test

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/blackwell-systems/storyshelf/internal/cover"
	"github.com/blackwell-systems/storyshelf/internal/operations"
	"github.com/blackwell-systems/storyshelf/internal/session"
	"github.com/blackwell-systems/storyshelf/internal/store"
	"github.com/stretchr/testify/require"
)

const ownerSecret = "open-sesame"

var (
	ownerProfile = session.Profile{Name: "Saad Albogami", Email: "owner@example.com"}
	baseTime     = time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
)

// fakeRaster returns a blank image of the requested size.
type fakeRaster struct {
	calls atomic.Int32
}

func (f *fakeRaster) Rasterize(_ context.Context, _ []byte, _, w, h int) (image.Image, error) {
	f.calls.Add(1)
	return image.NewRGBA(image.Rect(0, 0, w, h)), nil
}

type fixture struct {
	lib   *operations.Library
	docs  *store.Store
	state *session.State
	clock *atomic.Int64
}

func newFixture(t *testing.T, opts ...operations.Option) *fixture {
	t.Helper()
	ctx := context.Background()

	docs, err := store.Open(ctx, filepath.Join(t.TempDir(), "library.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = docs.Close() })

	state := session.New(&session.MemoryBlob{}, session.NewStaticSecret(ownerProfile.Email, ownerSecret), docs, ownerProfile)

	clock := &atomic.Int64{}
	var seq atomic.Int64
	opts = append([]operations.Option{
		operations.WithClock(func() time.Time {
			return baseTime.Add(time.Duration(clock.Add(1)) * time.Minute)
		}),
		operations.WithIDs(func() string { return fmt.Sprintf("story-%03d", seq.Add(1)) }),
	}, opts...)

	lib := operations.New(docs, cover.New(&fakeRaster{}), state, opts...)
	return &fixture{lib: lib, docs: docs, state: state, clock: clock}
}

func (f *fixture) loginOwner(t *testing.T) {
	t.Helper()
	_, err := f.state.LoginOwner(context.Background(), session.Credentials{Email: ownerProfile.Email, Secret: ownerSecret})
	require.NoError(t, err)
}

func samplePDF(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "sample.pdf"))
	require.NoError(t, err)
	return data
}

func uploadSample(t *testing.T, f *fixture, title, category string) string {
	t.Helper()
	st, err := f.lib.Upload(context.Background(), operations.UploadRequest{
		Title:       title,
		Author:      "Author of " + title,
		Description: "About " + title,
		Category:    category,
		Data:        samplePDF(t),
	})
	require.NoError(t, err)
	return st.ID
}
