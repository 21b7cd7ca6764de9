package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/blackwell-systems/storyshelf/internal/catalog"
	"github.com/sirupsen/logrus"
)

// ListCategories returns category names in display order. An empty
// collection is seeded with catalog.DefaultCategories in the same
// transaction, so seeding happens at most once.
func (s *Store) ListCategories(ctx context.Context) ([]string, error) {
	var names []string
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&count); err != nil {
			return err
		}
		if count == 0 {
			for i, name := range catalog.DefaultCategories {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO categories (name, position) VALUES (?, ?)`, name, i); err != nil {
					return err
				}
			}
			s.log.WithField("count", len(catalog.DefaultCategories)).Info("seeded default categories")
		}

		rows, err := tx.QueryContext(ctx, `SELECT name FROM categories ORDER BY position, name`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				return err
			}
			names = append(names, name)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, wrap("list categories", err)
	}
	return names, nil
}

// PutCategory adds a category at the end of the list. Adding an existing
// name is a no-op.
func (s *Store) PutCategory(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return &catalog.ValidationError{Fields: []string{"name"}}
	}
	return wrap("put category", putCategory(ctx, s.db, name))
}

func putCategory(ctx context.Context, q querier, name string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO categories (name, position)
		VALUES (?, (SELECT COALESCE(MAX(position), -1) + 1 FROM categories))
		ON CONFLICT(name) DO NOTHING
	`, name)
	return err
}

// DeleteCategory removes a category and re-tags its stories to
// catalog.FallbackCategory. It returns the number of re-tagged stories.
func (s *Store) DeleteCategory(ctx context.Context, name string) (int, error) {
	var moved int
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE name = ?`, name); err != nil {
			return err
		}
		n, err := retag(ctx, tx, name, catalog.FallbackCategory)
		moved = n
		return err
	})
	if err != nil {
		return 0, wrap("delete category", err)
	}
	s.log.WithFields(logrus.Fields{"category": name, "retagged": moved}).Info("category deleted")
	return moved, nil
}

// RenameCategory replaces oldName with newName, keeping its position, and
// re-tags every story that referenced oldName. Renaming to the same name
// does nothing.
func (s *Store) RenameCategory(ctx context.Context, oldName, newName string) (int, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return 0, &catalog.ValidationError{Fields: []string{"name"}}
	}
	if oldName == newName {
		return 0, nil
	}

	var moved int
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO categories (name, position)
			VALUES (?, COALESCE(
				(SELECT position FROM categories WHERE name = ?),
				(SELECT COALESCE(MAX(position), -1) + 1 FROM categories)))
			ON CONFLICT(name) DO NOTHING
		`, newName, oldName); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE name = ?`, oldName); err != nil {
			return err
		}
		n, err := retag(ctx, tx, oldName, newName)
		moved = n
		return err
	})
	if err != nil {
		return 0, wrap("rename category", err)
	}
	s.log.WithFields(logrus.Fields{"from": oldName, "to": newName, "retagged": moved}).Info("category renamed")
	return moved, nil
}
