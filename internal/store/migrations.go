package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"
)

// migration is one additive schema step. Every statement must be safe to
// run against a database that already contains the objects it creates:
// a partially upgraded file may hold some tables but not others.
type migration struct {
	version int
	name    string
	stmts   []string
}

// migrations is ordered by version. Never edit or remove an entry that has
// shipped; append a new one instead.
var migrations = []migration{
	{
		version: 1,
		name:    "stories",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS stories (
				id         TEXT PRIMARY KEY,
				category   TEXT NOT NULL DEFAULT '',
				created_at INTEGER NOT NULL,
				doc        TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_stories_created ON stories(created_at DESC, id DESC)`,
			`CREATE INDEX IF NOT EXISTS idx_stories_category ON stories(category)`,
		},
	},
	{
		version: 2,
		name:    "categories",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS categories (
				name     TEXT PRIMARY KEY,
				position INTEGER NOT NULL
			)`,
		},
	},
	{
		version: 3,
		name:    "settings",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS settings (
				key   TEXT PRIMARY KEY,
				value TEXT NOT NULL
			)`,
		},
	},
}

// SchemaTarget is the version a freshly migrated database reports.
func SchemaTarget() int {
	return migrations[len(migrations)-1].version
}

func userVersion(ctx context.Context, q querier) (int, error) {
	var v int
	if err := q.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("reading user_version: %w", err)
	}
	return v, nil
}

// migrate brings the database up to SchemaTarget. Pending migrations, the
// upgrade hook and the version bump share one transaction, so the hook runs
// exactly once per upgrade and a failure leaves the old version in place.
func (s *Store) migrate(ctx context.Context, hook UpgradeHook) error {
	from, err := userVersion(ctx, s.db)
	if err != nil {
		return err
	}
	to := SchemaTarget()

	switch {
	case from > to:
		return fmt.Errorf("database schema version %d is newer than supported version %d", from, to)
	case from == to:
		return nil
	}

	s.log.WithFields(logrus.Fields{"from": from, "to": to}).Info("upgrading schema")

	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, m := range migrations {
			if m.version <= from {
				continue
			}
			for _, stmt := range m.stmts {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
				}
			}
			s.log.WithField("migration", m.name).Debug("applied migration")
		}
		if hook != nil {
			if err := hook(ctx, tx, from, to); err != nil {
				return fmt.Errorf("upgrade hook: %w", err)
			}
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", to)); err != nil {
			return fmt.Errorf("setting user_version: %w", err)
		}
		return nil
	})
}
