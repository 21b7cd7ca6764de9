package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/blackwell-systems/storyshelf/internal/catalog"
	"github.com/sirupsen/logrus"
)

// ListStories returns every story, newest first. Equal timestamps are
// ordered by id descending.
func (s *Store) ListStories(ctx context.Context) ([]catalog.Story, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc FROM stories ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, wrap("list stories", err)
	}
	stories, err := scanStories(rows)
	return stories, wrap("list stories", err)
}

// GetStory returns the story with the given id, or nil when it does not exist.
func (s *Store) GetStory(ctx context.Context, id string) (*catalog.Story, error) {
	st, err := getStory(ctx, s.db, id)
	return st, wrap("get story", err)
}

// PutStory inserts or fully replaces a story. Text that is not valid UTF-8
// is rejected, since it would not read back byte for byte.
func (s *Store) PutStory(ctx context.Context, story catalog.Story) error {
	if strings.TrimSpace(story.ID) == "" {
		return &catalog.ValidationError{Fields: []string{"id"}}
	}
	if bad := catalog.InvalidText(story); len(bad) > 0 {
		return &catalog.ValidationError{Fields: bad, Reason: catalog.ReasonInvalidUTF8}
	}
	if err := putStory(ctx, s.db, story); err != nil {
		return wrap("put story", err)
	}
	s.log.WithField("story", story.ID).Debug("story saved")
	return nil
}

// UpdateStory loads a story, applies fn and writes the result back in one
// transaction. The id and creation time cannot be changed by fn. An error
// from fn aborts the update and is returned as is.
func (s *Store) UpdateStory(ctx context.Context, id string, fn func(*catalog.Story) error) (*catalog.Story, error) {
	var out *catalog.Story
	var fnErr error

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		st, err := getStory(ctx, tx, id)
		if err != nil {
			return err
		}
		if st == nil {
			return fmt.Errorf("story %s: %w", id, ErrNotFound)
		}
		created := st.CreatedAt
		if err := fn(st); err != nil {
			fnErr = err
			return err
		}
		st.ID = id
		st.CreatedAt = created
		if err := putStory(ctx, tx, *st); err != nil {
			return err
		}
		out = st
		return nil
	})
	if fnErr != nil {
		return nil, fnErr
	}
	if err != nil {
		return nil, wrap("update story", err)
	}
	return out, nil
}

// DeleteStory removes a story together with its comments. Deleting a
// missing story is not an error.
func (s *Store) DeleteStory(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM stories WHERE id = ?`, id); err != nil {
		return wrap("delete story", err)
	}
	s.log.WithField("story", id).Debug("story deleted")
	return nil
}

// AppendComment adds a visitor comment to a story. Concurrent appends are
// serialized, so every comment survives.
func (s *Store) AppendComment(ctx context.Context, storyID, text string) (catalog.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return catalog.Comment{}, &catalog.ValidationError{Fields: []string{"text"}}
	}
	if !utf8.ValidString(text) {
		return catalog.Comment{}, &catalog.ValidationError{Fields: []string{"text"}, Reason: catalog.ReasonInvalidUTF8}
	}
	c := catalog.Comment{
		ID:        s.newID(),
		User:      catalog.VisitorLabel,
		Text:      text,
		CreatedAt: s.now().UTC(),
	}
	_, err := s.UpdateStory(ctx, storyID, func(st *catalog.Story) error {
		st.Comments = append(st.Comments, c)
		return nil
	})
	if err != nil {
		return catalog.Comment{}, err
	}
	s.log.WithFields(logrus.Fields{"story": storyID, "comment": c.ID}).Debug("comment added")
	return c, nil
}

// IncrementCounter bumps one of the story counters and returns the updated story.
func (s *Store) IncrementCounter(ctx context.Context, id string, c catalog.Counter) (*catalog.Story, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("unknown counter %q", c)
	}
	return s.UpdateStory(ctx, id, func(st *catalog.Story) error {
		st.Increment(c)
		return nil
	})
}

func getStory(ctx context.Context, q querier, id string) (*catalog.Story, error) {
	var doc string
	err := q.QueryRowContext(ctx, `SELECT doc FROM stories WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeStory(doc)
}

func putStory(ctx context.Context, q querier, st catalog.Story) error {
	doc, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding story %s: %w", st.ID, err)
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO stories (id, category, created_at, doc)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			category = excluded.category,
			created_at = excluded.created_at,
			doc = excluded.doc
	`, st.ID, st.Category, st.CreatedAt.UnixNano(), string(doc))
	return err
}

// retag moves every story tagged from to the category to and returns how
// many stories changed. Rows are read fully before any write.
func retag(ctx context.Context, tx *sql.Tx, from, to string) (int, error) {
	rows, err := tx.QueryContext(ctx, `SELECT doc FROM stories WHERE category = ?`, from)
	if err != nil {
		return 0, err
	}
	stories, err := scanStories(rows)
	if err != nil {
		return 0, err
	}
	n := catalog.Retag(stories, from, to)
	for _, st := range stories {
		if err := putStory(ctx, tx, st); err != nil {
			return 0, err
		}
	}
	return n, nil
}

func scanStories(rows *sql.Rows) ([]catalog.Story, error) {
	defer rows.Close()
	var out []catalog.Story
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		st, err := decodeStory(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, *st)
	}
	return out, rows.Err()
}

func decodeStory(doc string) (*catalog.Story, error) {
	var st catalog.Story
	if err := json.Unmarshal([]byte(doc), &st); err != nil {
		return nil, fmt.Errorf("decoding story: %w", err)
	}
	return &st, nil
}
