package operations

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/blackwell-systems/storyshelf/internal/catalog"
	"github.com/sirupsen/logrus"
)

// ExportCatalog snapshots every category and story, content included.
func (l *Library) ExportCatalog(ctx context.Context) (*catalog.Library, error) {
	if err := l.requireOwner(); err != nil {
		return nil, err
	}
	cats, err := l.docs.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	stories, err := l.docs.ListStories(ctx)
	if err != nil {
		return nil, err
	}
	return &catalog.Library{Categories: cats, Stories: stories}, nil
}

// RestoreResult summarizes ImportCatalog.
type RestoreResult struct {
	Categories int
	Stories    int
	Skipped    []string // "id: reason"
}

// ImportCatalog merges a backup into the library. Categories are added,
// stories are upserted by id. Stories that fail validation are skipped and
// listed in the result. The rest is written in one transaction, so a
// storage error leaves the library as it was.
func (l *Library) ImportCatalog(ctx context.Context, lib *catalog.Library) (*RestoreResult, error) {
	if err := l.requireOwner(); err != nil {
		return nil, err
	}
	res := &RestoreResult{}

	// Seed first so restored names keep their place after the defaults.
	if _, err := l.docs.ListCategories(ctx); err != nil {
		return nil, err
	}

	var cats []string
	for _, name := range lib.Categories {
		if strings.TrimSpace(name) == "" || !utf8.ValidString(name) {
			res.Skipped = append(res.Skipped, fmt.Sprintf("category %q: invalid name", name))
			continue
		}
		cats = append(cats, name)
	}
	var stories []catalog.Story
	for _, st := range lib.Stories {
		if err := catalog.Validate(st); err != nil {
			res.Skipped = append(res.Skipped, fmt.Sprintf("%s: %v", st.ID, err))
			continue
		}
		stories = append(stories, st)
	}

	if err := l.docs.Restore(ctx, cats, stories); err != nil {
		return nil, err
	}
	res.Categories = len(cats)
	res.Stories = len(stories)

	l.log.WithFields(logrus.Fields{
		"categories": res.Categories,
		"stories":    res.Stories,
		"skipped":    len(res.Skipped),
	}).Info("catalog restored")
	return res, nil
}
