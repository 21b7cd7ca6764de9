package store

import (
	"context"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/blackwell-systems/storyshelf/internal/catalog"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

// newTestStore opens a fresh store in a temp dir.
func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "library.db")
	s, err := Open(context.Background(), path, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// newTestStory builds a story that passes catalog.Validate.
func newTestStory(id string, created time.Time, category string) catalog.Story {
	return catalog.Story{
		ID:          id,
		Title:       "Story " + id,
		Author:      "Author " + id,
		Description: fmt.Sprintf("Description of %s", id),
		Category:    category,
		CoverImage:  "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("jpeg-"+id)),
		Content:     "data:application/pdf;base64," + base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 "+id)),
		CreatedAt:   created,
	}
}

func mustPut(t *testing.T, s *Store, stories ...catalog.Story) {
	t.Helper()
	for _, st := range stories {
		require.NoError(t, s.PutStory(context.Background(), st))
	}
}
