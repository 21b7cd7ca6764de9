package catalog_test

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/blackwell-systems/storyshelf/internal/catalog"
	"github.com/sebdah/goldie/v2"
)

var sampleYAML = []byte(`
categories: [روايات, تقنية, عام]
stories:
  - id: s-001
    title: "The Lighthouse Keeper"
    author: "Mona Saleh"
    description: "A keeper counts ships through one long winter"
    category: روايات
    views: 12
    likes: 3
    created_at: "2026-01-01T00:00:00Z"
    comments:
      - id: c-1
        user: زائر
        text: "first"
        created_at: "2026-01-02T00:00:00Z"
      - id: c-2
        user: زائر
        text: "second"
        created_at: "2026-01-03T00:00:00Z"

  - id: s-002
    title: "Bits and Pieces"
    author: "Omar Nasser"
    description: "Short essays on building small machines"
    category: تقنية
    created_at: "2026-02-01T00:00:00Z"
`)

func mustParse(t *testing.T) []catalog.Story {
	t.Helper()
	lib, err := catalog.Parse(sampleYAML)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return lib.Stories
}

// --- Parse / Marshal ---

func TestParse_ValidYAML(t *testing.T) {
	lib, err := catalog.Parse(sampleYAML)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(lib.Stories) != 2 {
		t.Fatalf("expected 2 stories, got %d", len(lib.Stories))
	}
	if len(lib.Categories) != 3 {
		t.Errorf("expected 3 categories, got %d", len(lib.Categories))
	}
	if lib.Stories[0].ID != "s-001" {
		t.Errorf("stories[0].ID = %q, want %q", lib.Stories[0].ID, "s-001")
	}
	if lib.Stories[0].Views != 12 {
		t.Errorf("stories[0].Views = %d, want 12", lib.Stories[0].Views)
	}
	if len(lib.Stories[0].Comments) != 2 {
		t.Errorf("stories[0] comments = %d, want 2", len(lib.Stories[0].Comments))
	}
}

func TestParse_Empty(t *testing.T) {
	lib, err := catalog.Parse([]byte(""))
	if err != nil {
		t.Fatalf("Parse empty: %v", err)
	}
	if len(lib.Stories) != 0 {
		t.Errorf("expected 0 stories, got %d", len(lib.Stories))
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := catalog.Parse([]byte(":: bad yaml ["))
	if err == nil {
		t.Error("expected error for invalid YAML, got nil")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	lib, err := catalog.Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("Load missing: %v", err)
	}
	if len(lib.Stories) != 0 || len(lib.Categories) != 0 {
		t.Errorf("expected empty library, got %+v", lib)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	lib, _ := catalog.Parse(sampleYAML)
	path := filepath.Join(t.TempDir(), "catalog.yml")
	if err := catalog.Save(path, lib); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := catalog.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Stories) != len(lib.Stories) {
		t.Fatalf("round-trip length: got %d, want %d", len(got.Stories), len(lib.Stories))
	}
	for i := range lib.Stories {
		if !got.Stories[i].CreatedAt.Equal(lib.Stories[i].CreatedAt) {
			t.Errorf("[%d] CreatedAt mismatch", i)
		}
		if got.Stories[i].Category != lib.Stories[i].Category {
			t.Errorf("[%d] Category = %q, want %q", i, got.Stories[i].Category, lib.Stories[i].Category)
		}
	}
}

func TestMarshal_Golden(t *testing.T) {
	lib := &catalog.Library{
		Categories: []string{"general", "fiction"},
		Stories: []catalog.Story{{
			ID:          "s1",
			Title:       "First",
			Author:      "Ann",
			Description: "A short tale",
			Category:    "fiction",
			Views:       3,
			Likes:       1,
			CreatedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			Comments: []catalog.Comment{{
				ID:        "c1",
				User:      "visitor",
				Text:      "nice",
				CreatedAt: time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC),
			}},
		}},
	}
	data, err := catalog.Marshal(lib)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "library_export", data)
}

// --- Append / Remove ---

func TestAppend_New(t *testing.T) {
	stories := mustParse(t)
	stories = catalog.Append(stories, catalog.Story{ID: "s-003", Title: "New"})
	if len(stories) != 3 {
		t.Errorf("expected 3 after append, got %d", len(stories))
	}
}

func TestAppend_ReplacesExisting(t *testing.T) {
	stories := mustParse(t)
	stories = catalog.Append(stories, catalog.Story{ID: "s-001", Title: "Updated"})
	if len(stories) != 2 {
		t.Errorf("expected 2 after update, got %d", len(stories))
	}
	if stories[0].Title != "Updated" {
		t.Errorf("title not updated: %q", stories[0].Title)
	}
}

func TestRemove_Existing(t *testing.T) {
	stories := mustParse(t)
	stories, ok := catalog.Remove(stories, "s-001")
	if !ok {
		t.Error("Remove returned ok=false for existing story")
	}
	if len(stories) != 1 || stories[0].ID != "s-002" {
		t.Errorf("remaining = %v, want [s-002]", ids(stories))
	}
}

func TestRemove_Missing(t *testing.T) {
	stories := mustParse(t)
	stories, ok := catalog.Remove(stories, "nope")
	if ok {
		t.Error("Remove returned ok=true for missing story")
	}
	if len(stories) != 2 {
		t.Errorf("expected 2 stories after no-op remove, got %d", len(stories))
	}
}

// --- Filter / Sort ---

func TestFilter_BySearch_Title(t *testing.T) {
	stories := mustParse(t)
	result := catalog.Filter{Search: "lighthouse"}.Apply(stories)
	if len(result) != 1 || result[0].ID != "s-001" {
		t.Errorf("search by title failed: got %v", ids(result))
	}
}

func TestFilter_BySearch_Author(t *testing.T) {
	stories := mustParse(t)
	result := catalog.Filter{Search: "NASSER"}.Apply(stories)
	if len(result) != 1 || result[0].ID != "s-002" {
		t.Errorf("search by author failed: got %v", ids(result))
	}
}

func TestFilter_BySearch_Description(t *testing.T) {
	stories := mustParse(t)
	result := catalog.Filter{Search: "winter"}.Apply(stories)
	if len(result) != 1 || result[0].ID != "s-001" {
		t.Errorf("search by description failed: got %v", ids(result))
	}
}

func TestFilter_ByCategory(t *testing.T) {
	stories := mustParse(t)
	result := catalog.Filter{Category: "تقنية"}.Apply(stories)
	if len(result) != 1 || result[0].ID != "s-002" {
		t.Errorf("category filter failed: got %v", ids(result))
	}
}

func TestFilter_Combined_NoMatch(t *testing.T) {
	stories := mustParse(t)
	result := catalog.Filter{Category: "تقنية", Search: "winter"}.Apply(stories)
	if len(result) != 0 {
		t.Errorf("expected 0 results, got %d", len(result))
	}
}

func TestFilter_Empty(t *testing.T) {
	stories := mustParse(t)
	if result := (catalog.Filter{}).Apply(stories); len(result) != 2 {
		t.Errorf("empty filter should return all stories, got %d", len(result))
	}
}

func TestSortNewestFirst(t *testing.T) {
	stories := mustParse(t)
	catalog.SortNewestFirst(stories)
	if stories[0].ID != "s-002" {
		t.Errorf("newest story first: got %v", ids(stories))
	}
}

func TestSortNewestFirst_TiesStable(t *testing.T) {
	ts := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	stories := []catalog.Story{{ID: "a", CreatedAt: ts}, {ID: "c", CreatedAt: ts}, {ID: "b", CreatedAt: ts}}
	catalog.SortNewestFirst(stories)
	if got := ids(stories); got[0] != "c" || got[1] != "b" || got[2] != "a" {
		t.Errorf("tie order = %v, want [c b a]", got)
	}
}

func TestCommentsNewestFirst(t *testing.T) {
	stories := mustParse(t)
	got := stories[0].CommentsNewestFirst()
	if got[0].ID != "c-2" || got[1].ID != "c-1" {
		t.Errorf("display order = %s,%s; want c-2,c-1", got[0].ID, got[1].ID)
	}
	if stories[0].Comments[0].ID != "c-1" {
		t.Error("CommentsNewestFirst must not reorder stored comments")
	}
}

func TestSummarize(t *testing.T) {
	st := catalog.Summarize(mustParse(t))
	if st.Stories != 2 || st.Views != 12 || st.Likes != 3 || st.Comments != 2 {
		t.Errorf("Summarize = %+v", st)
	}
}

// --- Validate ---

func validStory() catalog.Story {
	return catalog.Story{
		ID:          "s-001",
		Title:       "The Lighthouse Keeper",
		Author:      "Mona Saleh",
		Description: "A keeper counts ships",
		CoverImage:  "data:image/png;base64,AA==",
		Content:     "data:application/pdf;base64,AA==",
		CreatedAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestValidate_Complete(t *testing.T) {
	if err := catalog.Validate(validStory()); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidate_RejectsInvalidUTF8(t *testing.T) {
	s := validStory()
	s.Title = "bad\xffbyte"
	s.Comments = []catalog.Comment{{ID: "c-1", User: "زائر", Text: "ok\xc3"}}

	var ve *catalog.ValidationError
	if err := catalog.Validate(s); !errors.As(err, &ve) {
		t.Fatalf("Validate = %v, want *ValidationError", err)
	}
	if ve.Reason != catalog.ReasonInvalidUTF8 {
		t.Errorf("Reason = %q", ve.Reason)
	}
	if want := []string{"title", "comments[0].text"}; !reflect.DeepEqual(ve.Fields, want) {
		t.Errorf("Fields = %v, want %v", ve.Fields, want)
	}
}

func TestInvalidText_ArabicIsValid(t *testing.T) {
	s := validStory()
	s.Title = "قصة1"
	s.Author = "كاتب1"
	if bad := catalog.InvalidText(s); len(bad) != 0 {
		t.Errorf("InvalidText = %v, want none", bad)
	}
}

func ids(stories []catalog.Story) []string {
	out := make([]string, len(stories))
	for i, s := range stories {
		out[i] = s.ID
	}
	return out
}
