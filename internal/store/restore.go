package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/blackwell-systems/storyshelf/internal/catalog"
	"github.com/sirupsen/logrus"
)

// Restore adds categories and upserts stories in one transaction. Either
// everything is written or, on any error, nothing is.
func (s *Store) Restore(ctx context.Context, categories []string, stories []catalog.Story) error {
	names := make([]string, len(categories))
	for i, name := range categories {
		names[i] = strings.TrimSpace(name)
		if names[i] == "" {
			return &catalog.ValidationError{Fields: []string{"name"}}
		}
	}
	for _, st := range stories {
		if strings.TrimSpace(st.ID) == "" {
			return &catalog.ValidationError{Fields: []string{"id"}}
		}
		if bad := catalog.InvalidText(st); len(bad) > 0 {
			return &catalog.ValidationError{Fields: bad, Reason: catalog.ReasonInvalidUTF8}
		}
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		for _, name := range names {
			if err := putCategory(ctx, tx, name); err != nil {
				return err
			}
		}
		for _, st := range stories {
			if err := putStory(ctx, tx, st); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return wrap("restore", err)
	}
	s.log.WithFields(logrus.Fields{
		"categories": len(categories),
		"stories":    len(stories),
	}).Info("library restored")
	return nil
}
