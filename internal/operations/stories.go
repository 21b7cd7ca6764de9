package operations

import (
	"context"
	"fmt"
	"strings"

	"github.com/blackwell-systems/storyshelf/internal/catalog"
)

// Browse returns stories newest first, narrowed by f.
func (l *Library) Browse(ctx context.Context, f catalog.Filter) ([]catalog.Story, error) {
	stories, err := l.docs.ListStories(ctx)
	if err != nil {
		return nil, err
	}
	return f.Apply(stories), nil
}

// Get returns a story without counting a view.
func (l *Library) Get(ctx context.Context, id string) (*catalog.Story, error) {
	st, err := l.docs.GetStory(ctx, id)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, notFound(id)
	}
	return st, nil
}

// OpenStory counts a view and returns the updated story.
func (l *Library) OpenStory(ctx context.Context, id string) (*catalog.Story, error) {
	return l.docs.IncrementCounter(ctx, id, catalog.CounterViews)
}

// Like adds one like.
func (l *Library) Like(ctx context.Context, id string) (*catalog.Story, error) {
	return l.docs.IncrementCounter(ctx, id, catalog.CounterLikes)
}

// Dislike adds one dislike.
func (l *Library) Dislike(ctx context.Context, id string) (*catalog.Story, error) {
	return l.docs.IncrementCounter(ctx, id, catalog.CounterDislikes)
}

// Download is a story's PDF ready to be written out.
type Download struct {
	Story    *catalog.Story
	FileName string
	Data     []byte
}

// Download counts a download and returns the decoded PDF.
func (l *Library) Download(ctx context.Context, id string) (*Download, error) {
	st, err := l.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := Content(st)
	if err != nil {
		return nil, err
	}
	st, err = l.docs.IncrementCounter(ctx, id, catalog.CounterDownloads)
	if err != nil {
		return nil, err
	}
	return &Download{Story: st, FileName: FileName(st), Data: data}, nil
}

// Content decodes a story's PDF bytes.
func Content(st *catalog.Story) ([]byte, error) {
	mime, data, err := catalog.DecodeDataURI(st.Content)
	if err != nil {
		return nil, fmt.Errorf("story %s content: %w", st.ID, err)
	}
	if mime != catalog.MIMEPDF {
		return nil, fmt.Errorf("story %s content is %s, not a PDF", st.ID, mime)
	}
	return data, nil
}

// FileName is the suggested download name for a story.
func FileName(st *catalog.Story) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '-'
		}
		return r
	}, strings.TrimSpace(st.Title))
	if name == "" {
		name = st.ID
	}
	return name + ".pdf"
}

// Comment adds an anonymous comment. Anyone may comment.
func (l *Library) Comment(ctx context.Context, id, text string) (catalog.Comment, error) {
	return l.docs.AppendComment(ctx, id, text)
}

// DeleteStory removes a story and its cached files.
func (l *Library) DeleteStory(ctx context.Context, id string) error {
	if err := l.requireOwner(); err != nil {
		return err
	}
	if err := l.docs.DeleteStory(ctx, id); err != nil {
		return err
	}
	if l.cache != nil {
		if err := l.cache.Remove(id); err != nil {
			l.log.WithError(err).WithField("story", id).Warn("could not remove cached files")
		}
	}
	l.log.WithField("story", id).Info("story deleted")
	return nil
}

// Dashboard is the owner's overview.
type Dashboard struct {
	Stats      catalog.Stats
	Stories    []catalog.Story
	Categories []string
}

// Dashboard totals the counters across the library.
func (l *Library) Dashboard(ctx context.Context) (*Dashboard, error) {
	if err := l.requireOwner(); err != nil {
		return nil, err
	}
	stories, err := l.docs.ListStories(ctx)
	if err != nil {
		return nil, err
	}
	cats, err := l.docs.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		Stats:      catalog.Summarize(stories),
		Stories:    stories,
		Categories: cats,
	}, nil
}
