package catalog

import (
	"sort"
	"strings"
)

// Filter applies all non-empty criteria and returns matching stories.
type Filter struct {
	Search   string // matches title, author or description
	Category string
}

// Apply returns the subset of stories matching all non-empty filter fields.
// Input order is preserved.
func (f Filter) Apply(stories []Story) []Story {
	var out []Story
	for _, s := range stories {
		if f.Category != "" && s.Category != f.Category {
			continue
		}
		if f.Search != "" && !matchesSearch(s, f.Search) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// SortNewestFirst orders stories by CreatedAt descending. Equal timestamps
// fall back to ID descending so the order is stable across calls.
func SortNewestFirst(stories []Story) {
	sort.SliceStable(stories, func(i, j int) bool {
		a, b := stories[i], stories[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}

// Stats are the owner dashboard totals.
type Stats struct {
	Stories   int   `json:"stories"`
	Views     int64 `json:"views"`
	Likes     int64 `json:"likes"`
	Dislikes  int64 `json:"dislikes"`
	Downloads int64 `json:"downloads"`
	Comments  int   `json:"comments"`
}

// Summarize totals the counters across stories.
func Summarize(stories []Story) Stats {
	st := Stats{Stories: len(stories)}
	for _, s := range stories {
		st.Views += s.Views
		st.Likes += s.Likes
		st.Dislikes += s.Dislikes
		st.Downloads += s.Downloads
		st.Comments += len(s.Comments)
	}
	return st
}

func matchesSearch(s Story, q string) bool {
	q = strings.ToLower(q)
	if strings.Contains(strings.ToLower(s.Title), q) {
		return true
	}
	if strings.Contains(strings.ToLower(s.Author), q) {
		return true
	}
	return strings.Contains(strings.ToLower(s.Description), q)
}
