package store

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/blackwell-systems/storyshelf/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutGet_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	want := newTestStory("s1", time.Date(2026, 1, 2, 3, 4, 5, 123456789, time.UTC), "روايات")
	want.Content = "data:application/pdf;base64," + strings.Repeat("QUJD", 50000)
	want.Views, want.Likes, want.Dislikes, want.Downloads = 7, 3, 1, 2
	want.Comments = []catalog.Comment{
		{ID: "c1", User: catalog.VisitorLabel, Text: "جميلة", CreatedAt: baseTime},
		{ID: "c2", User: catalog.VisitorLabel, Text: "second", CreatedAt: baseTime.Add(time.Minute)},
	}

	require.NoError(t, s.PutStory(ctx, want))

	got, err := s.GetStory(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)
}

func TestGetStory_Absent(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetStory(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestPutStory_Overwrites(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	st := newTestStory("s1", baseTime, "تقنية")
	mustPut(t, s, st)

	st.Title = "Revised"
	st.Category = "روايات"
	mustPut(t, s, st)

	all, err := s.ListStories(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Revised", all[0].Title)
	assert.Equal(t, "روايات", all[0].Category)
}

func TestPutStory_RequiresID(t *testing.T) {
	err := newTestStore(t).PutStory(context.Background(), catalog.Story{Title: "x"})

	var ve *catalog.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"id"}, ve.Fields)
}

func TestPutStory_RejectsInvalidUTF8(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	st := newTestStory("s1", baseTime, "")
	st.Author = "Ann\xff"

	err := s.PutStory(ctx, st)
	var ve *catalog.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"author"}, ve.Fields)
	assert.Equal(t, catalog.ReasonInvalidUTF8, ve.Reason)

	got, err := s.GetStory(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got, "nothing stored")
}

func TestListStories_NewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	// Fractional seconds must not break ordering.
	mustPut(t, s,
		newTestStory("b", baseTime.Add(500*time.Millisecond), ""),
		newTestStory("d", baseTime.Add(-time.Hour), ""),
		newTestStory("a", baseTime.Add(2*time.Second), ""),
		newTestStory("c", baseTime, ""),
	)

	all, err := s.ListStories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, storyIDs(all))
}

func TestListStories_TiesByIDDescending(t *testing.T) {
	s := newTestStore(t)
	mustPut(t, s,
		newTestStory("x1", baseTime, ""),
		newTestStory("x3", baseTime, ""),
		newTestStory("x2", baseTime, ""),
	)

	all, err := s.ListStories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"x3", "x2", "x1"}, storyIDs(all))
}

func TestDeleteStory(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	mustPut(t, s, newTestStory("keep", baseTime, ""), newTestStory("gone", baseTime.Add(time.Second), ""))

	_, err := s.AppendComment(ctx, "gone", "bye")
	require.NoError(t, err)
	require.NoError(t, s.DeleteStory(ctx, "gone"))

	got, err := s.GetStory(ctx, "gone")
	require.NoError(t, err)
	assert.Nil(t, got)

	all, err := s.ListStories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep"}, storyIDs(all))

	assert.NoError(t, s.DeleteStory(ctx, "gone"), "deleting twice is not an error")
}

func TestAppendComment(t *testing.T) {
	ctx := context.Background()
	now := baseTime.Add(time.Hour)
	s := newTestStore(t, WithClock(func() time.Time { return now }))
	mustPut(t, s, newTestStory("s1", baseTime, ""))

	c, err := s.AppendComment(ctx, "s1", "  great read  ")
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, catalog.VisitorLabel, c.User)
	assert.Equal(t, "great read", c.Text)
	assert.Equal(t, now, c.CreatedAt)

	got, err := s.GetStory(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, c, got.Comments[0])
}

func TestAppendComment_MissingStory(t *testing.T) {
	_, err := newTestStore(t).AppendComment(context.Background(), "nope", "hi")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAppendComment_EmptyText(t *testing.T) {
	s := newTestStore(t)
	mustPut(t, s, newTestStory("s1", baseTime, ""))

	_, err := s.AppendComment(context.Background(), "s1", "   ")
	var ve *catalog.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestAppendComment_InvalidUTF8(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	mustPut(t, s, newTestStory("s1", baseTime, ""))

	_, err := s.AppendComment(ctx, "s1", "nice\xfe")
	var ve *catalog.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, catalog.ReasonInvalidUTF8, ve.Reason)

	got, err := s.GetStory(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, got.Comments)
}

func TestAppendComment_ConcurrentAppendsAllSurvive(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	mustPut(t, s, newTestStory("s1", baseTime, ""))

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.AppendComment(ctx, "s1", strings.Repeat("x", i+1))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := s.GetStory(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, got.Comments, n)

	seen := make(map[string]bool)
	for _, c := range got.Comments {
		seen[c.Text] = true
	}
	assert.Len(t, seen, n)
}

func TestIncrementCounter(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	mustPut(t, s, newTestStory("s1", baseTime, ""))

	for _, c := range []catalog.Counter{catalog.CounterViews, catalog.CounterViews, catalog.CounterLikes, catalog.CounterDownloads} {
		_, err := s.IncrementCounter(ctx, "s1", c)
		require.NoError(t, err)
	}
	got, err := s.IncrementCounter(ctx, "s1", catalog.CounterDislikes)
	require.NoError(t, err)

	assert.Equal(t, int64(2), got.Views)
	assert.Equal(t, int64(1), got.Likes)
	assert.Equal(t, int64(1), got.Dislikes)
	assert.Equal(t, int64(1), got.Downloads)

	_, err = s.IncrementCounter(ctx, "s1", catalog.Counter("stars"))
	assert.Error(t, err)

	_, err = s.IncrementCounter(ctx, "missing", catalog.CounterViews)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStory_KeepsIdentity(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	mustPut(t, s, newTestStory("s1", baseTime, ""))

	got, err := s.UpdateStory(ctx, "s1", func(st *catalog.Story) error {
		st.ID = "hijack"
		st.CreatedAt = time.Time{}
		st.Title = "changed"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)
	assert.Equal(t, baseTime, got.CreatedAt)
	assert.Equal(t, "changed", got.Title)

	other, err := s.GetStory(ctx, "hijack")
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestUpdateStory_ErrorRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	mustPut(t, s, newTestStory("s1", baseTime, ""))

	_, err := s.UpdateStory(ctx, "s1", func(st *catalog.Story) error {
		st.Title = "half done"
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	got, err := s.GetStory(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Story s1", got.Title)
}

func storyIDs(stories []catalog.Story) []string {
	out := make([]string, len(stories))
	for i, st := range stories {
		out[i] = st.ID
	}
	return out
}
