// Package operations holds the library use cases shared by the CLI commands
// and the terminal reader. Nothing here prints; callers decide how to
// present results and errors.
package operations

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/blackwell-systems/storyshelf/internal/cache"
	"github.com/blackwell-systems/storyshelf/internal/catalog"
	"github.com/blackwell-systems/storyshelf/internal/importer"
	"github.com/blackwell-systems/storyshelf/internal/session"
	"github.com/blackwell-systems/storyshelf/internal/store"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Documents is the part of the document store the use cases need.
type Documents interface {
	ListStories(ctx context.Context) ([]catalog.Story, error)
	GetStory(ctx context.Context, id string) (*catalog.Story, error)
	PutStory(ctx context.Context, story catalog.Story) error
	DeleteStory(ctx context.Context, id string) error
	AppendComment(ctx context.Context, storyID, text string) (catalog.Comment, error)
	IncrementCounter(ctx context.Context, id string, c catalog.Counter) (*catalog.Story, error)
	ListCategories(ctx context.Context) ([]string, error)
	PutCategory(ctx context.Context, name string) error
	DeleteCategory(ctx context.Context, name string) (int, error)
	RenameCategory(ctx context.Context, oldName, newName string) (int, error)
	Restore(ctx context.Context, categories []string, stories []catalog.Story) error
}

// Covers turns uploads into cover data URIs.
type Covers interface {
	Extract(ctx context.Context, data []byte) (string, error)
	FromImage(r io.Reader) (string, error)
}

// Library binds the store, cover extractor and session together.
type Library struct {
	docs    Documents
	covers  Covers
	session *session.State
	cache   *cache.Manager
	ledger  *importer.Ledger
	workers int
	now     func() time.Time
	newID   func() string
	log     *logrus.Entry
}

// Option configures a Library.
type Option func(*Library)

// WithCache removes cached files when their story is deleted.
func WithCache(m *cache.Manager) Option {
	return func(l *Library) { l.cache = m }
}

// WithLedger makes ImportDir skip files recorded in the ledger.
func WithLedger(led *importer.Ledger) Option {
	return func(l *Library) { l.ledger = led }
}

// WithWorkers bounds how many files ImportDir processes at once.
func WithWorkers(n int) Option {
	return func(l *Library) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithClock overrides the time source used to stamp new stories.
func WithClock(now func() time.Time) Option {
	return func(l *Library) { l.now = now }
}

// WithIDs overrides story id generation.
func WithIDs(fn func() string) Option {
	return func(l *Library) { l.newID = fn }
}

// New returns a Library.
func New(docs Documents, covers Covers, sess *session.State, opts ...Option) *Library {
	l := &Library{
		docs:    docs,
		covers:  covers,
		session: sess,
		workers: 4,
		now:     time.Now,
		newID:   newStoryID,
		log:     logrus.WithField("component", "operations"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Session returns the session state the library checks roles against.
func (l *Library) Session() *session.State { return l.session }

func (l *Library) requireOwner() error {
	if !l.session.Current().IsOwner() {
		return session.ErrOwnerRequired
	}
	return nil
}

// newStoryID returns a time-ordered UUIDv7.
func newStoryID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func notFound(id string) error {
	return fmt.Errorf("story %s: %w", id, store.ErrNotFound)
}
