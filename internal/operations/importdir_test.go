package operations_test

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/blackwell-systems/storyshelf/internal/catalog"
	"github.com/blackwell-systems/storyshelf/internal/importer"
	"github.com/blackwell-systems/storyshelf/internal/operations"
	"github.com/blackwell-systems/storyshelf/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeImportDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	data := samplePDF(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.pdf"), data, 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "copy.pdf"), data, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.pdf"), []byte("not a pdf"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))
	return dir
}

func TestImportDir(t *testing.T) {
	led, err := importer.OpenLedger(filepath.Join(t.TempDir(), "imports.jsonl"))
	require.NoError(t, err)
	f := newFixture(t, operations.WithLedger(led), operations.WithWorkers(2))
	f.loginOwner(t)
	ctx := context.Background()
	dir := writeImportDir(t)

	var calls atomic.Int32
	report, err := f.lib.ImportDir(ctx, dir, operations.ImportOptions{
		Category: "روايات",
		Progress: func(done, total int) {
			calls.Add(1)
			assert.Equal(t, 3, total)
		},
	})
	require.NoError(t, err)
	assert.Len(t, report.Imported, 1)
	assert.Len(t, report.Skipped, 1, "identical content imported once")
	require.Len(t, report.Failed, 1)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, filepath.Join(dir, "broken.pdf"), report.Failed[0].Path)

	stories, err := f.lib.Browse(ctx, catalog.Filter{})
	require.NoError(t, err)
	require.Len(t, stories, 1)
	assert.Equal(t, "Sample Story", stories[0].Title, "title from PDF metadata")
	assert.Equal(t, "Test Author", stories[0].Author)
	assert.Equal(t, "روايات", stories[0].Category)

	again, err := f.lib.ImportDir(ctx, dir, operations.ImportOptions{})
	require.NoError(t, err)
	assert.Empty(t, again.Imported, "rerun skips ledgered files")
	assert.Len(t, again.Skipped, 2)

	stories, _ = f.lib.Browse(ctx, catalog.Filter{})
	assert.Len(t, stories, 1)
}

func TestImportDir_DuplicateRetriedAfterFailure(t *testing.T) {
	var seq atomic.Int32
	ids := func() string {
		// The first upload gets no id and fails validation.
		if seq.Add(1) == 1 {
			return ""
		}
		return "story-ok"
	}
	f := newFixture(t, operations.WithIDs(ids), operations.WithWorkers(2))
	f.loginOwner(t)
	ctx := context.Background()

	dir := t.TempDir()
	data := samplePDF(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.pdf"), data, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.pdf"), data, 0644))

	report, err := f.lib.ImportDir(ctx, dir, operations.ImportOptions{})
	require.NoError(t, err)
	require.Len(t, report.Failed, 1)
	require.Len(t, report.Imported, 1, "the copy is imported once the first upload fails")
	assert.Empty(t, report.Skipped)
	assert.Equal(t, "story-ok", report.Imported[0].StoryID)

	stories, err := f.lib.Browse(ctx, catalog.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"story-ok"}, storyIDs(stories))
}

func TestImportDir_SkippedCarriesStoryID(t *testing.T) {
	f := newFixture(t, operations.WithWorkers(4))
	f.loginOwner(t)

	report, err := f.lib.ImportDir(context.Background(), writeImportDir(t), operations.ImportOptions{})
	require.NoError(t, err)
	require.Len(t, report.Imported, 1)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, report.Imported[0].StoryID, report.Skipped[0].StoryID)
}

func TestImportDir_RequiresOwner(t *testing.T) {
	f := newFixture(t)
	_, err := f.lib.ImportDir(context.Background(), t.TempDir(), operations.ImportOptions{})
	assert.ErrorIs(t, err, session.ErrOwnerRequired)
}

func TestImportDir_Cancelled(t *testing.T) {
	f := newFixture(t)
	f.loginOwner(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.lib.ImportDir(ctx, writeImportDir(t), operations.ImportOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func storyIDs(stories []catalog.Story) []string {
	out := make([]string, len(stories))
	for i, s := range stories {
		out[i] = s.ID
	}
	return out
}
