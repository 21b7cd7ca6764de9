package catalog

import (
	"strings"
	"time"
)

// VisitorLabel is the display name attached to comments when there is no
// real identity behind them.
const VisitorLabel = "زائر"

// Story is one document in the library.
type Story struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Author      string    `json:"author" yaml:"author"`
	Description string    `json:"description" yaml:"description"`
	Category    string    `json:"category" yaml:"category"`
	CoverImage  string    `json:"coverImage" yaml:"cover_image,omitempty"`
	Content     string    `json:"content" yaml:"content,omitempty"`
	Views       int64     `json:"views" yaml:"views"`
	Likes       int64     `json:"likes" yaml:"likes"`
	Dislikes    int64     `json:"dislikes" yaml:"dislikes"`
	Downloads   int64     `json:"downloads" yaml:"downloads"`
	CreatedAt   time.Time `json:"createdAt" yaml:"created_at"`
	Comments    []Comment `json:"comments" yaml:"comments,omitempty"`
}

// Comment is a visitor remark attached to a story.
type Comment struct {
	ID        string    `json:"id" yaml:"id"`
	User      string    `json:"user" yaml:"user"`
	Text      string    `json:"text" yaml:"text"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
}

// Counter names one of the monotonically increasing story counters.
type Counter string

// Story counters.
const (
	CounterViews     Counter = "views"
	CounterLikes     Counter = "likes"
	CounterDislikes  Counter = "dislikes"
	CounterDownloads Counter = "downloads"
)

// Valid reports whether c names a known counter.
func (c Counter) Valid() bool {
	switch c {
	case CounterViews, CounterLikes, CounterDislikes, CounterDownloads:
		return true
	}
	return false
}

// Increment bumps the named counter by one.
func (s *Story) Increment(c Counter) {
	switch c {
	case CounterViews:
		s.Views++
	case CounterLikes:
		s.Likes++
	case CounterDislikes:
		s.Dislikes++
	case CounterDownloads:
		s.Downloads++
	}
}

// CommentsNewestFirst returns the comments in display order without
// touching the stored insertion order.
func (s Story) CommentsNewestFirst() []Comment {
	out := make([]Comment, len(s.Comments))
	for i, c := range s.Comments {
		out[len(s.Comments)-1-i] = c
	}
	return out
}

// Excerpt trims text to at most n runes on a word boundary.
func Excerpt(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	cut := string(r[:n])
	if i := strings.LastIndex(cut, " "); i > n/2 {
		cut = cut[:i]
	}
	return cut + "…"
}
