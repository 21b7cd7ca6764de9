package operations

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/blackwell-systems/storyshelf/internal/catalog"
	"github.com/blackwell-systems/storyshelf/internal/pdfrender"
	"github.com/sirupsen/logrus"
)

// excerptLength bounds a description derived from the first page.
const excerptLength = 280

// UploadRequest carries everything needed to add a story.
type UploadRequest struct {
	Title       string
	Author      string
	Description string
	Category    string
	Data        []byte // the PDF
	Cover       string // optional data URI; extracted from page 1 when empty
}

// Validate reports every missing field at once. Description may be blank:
// Upload derives one from the document.
func (r UploadRequest) Validate() error {
	var missing []string
	if strings.TrimSpace(r.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(r.Author) == "" {
		missing = append(missing, "author")
	}
	if len(r.Data) == 0 {
		missing = append(missing, "file")
	}
	if len(missing) > 0 {
		return &catalog.ValidationError{Fields: missing}
	}
	var bad []string
	for _, f := range []struct{ name, v string }{
		{"title", r.Title},
		{"author", r.Author},
		{"description", r.Description},
		{"category", r.Category},
	} {
		if !utf8.ValidString(f.v) {
			bad = append(bad, f.name)
		}
	}
	if len(bad) > 0 {
		return &catalog.ValidationError{Fields: bad, Reason: catalog.ReasonInvalidUTF8}
	}
	return nil
}

// Upload validates the request, extracts the cover and stores a new story
// with zeroed counters. Nothing is written when any step fails.
func (l *Library) Upload(ctx context.Context, req UploadRequest) (*catalog.Story, error) {
	if err := l.requireOwner(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	coverURI := req.Cover
	if coverURI == "" {
		var err error
		coverURI, err = l.covers.Extract(ctx, req.Data)
		if err != nil {
			return nil, err
		}
	}

	desc := strings.TrimSpace(req.Description)
	if desc == "" {
		desc = l.describe(req.Data)
	}
	if desc == "" {
		return nil, &catalog.ValidationError{Fields: []string{"description"}}
	}

	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = catalog.FallbackCategory
	}

	story := catalog.Story{
		ID:          l.newID(),
		Title:       strings.TrimSpace(req.Title),
		Author:      strings.TrimSpace(req.Author),
		Description: desc,
		Category:    category,
		CoverImage:  coverURI,
		Content:     catalog.EncodeDataURI(catalog.MIMEPDF, req.Data),
		CreatedAt:   l.now().UTC(),
	}
	if err := catalog.Validate(story); err != nil {
		return nil, err
	}
	if err := l.docs.PutStory(ctx, story); err != nil {
		return nil, err
	}

	l.log.WithFields(logrus.Fields{
		"story":    story.ID,
		"category": story.Category,
		"bytes":    len(req.Data),
	}).Info("story uploaded")
	return &story, nil
}

// describe derives a description from the first page's text.
func (l *Library) describe(data []byte) string {
	text, err := pdfrender.PageText(data, 1)
	if err != nil {
		l.log.WithError(err).Debug("no first page text for description")
		return ""
	}
	return catalog.Excerpt(text, excerptLength)
}
