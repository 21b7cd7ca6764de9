package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// UpgradeHook runs inside the upgrade transaction after the pending
// migrations and before the new version is recorded. Returning an error
// aborts the upgrade and leaves the stored version unchanged.
type UpgradeHook func(ctx context.Context, tx *sql.Tx, from, to int) error

// Option configures Open.
type Option func(*options)

type options struct {
	hook UpgradeHook
	log  *logrus.Entry
	now  func() time.Time
}

// WithUpgradeHook registers fn to run once when the database is upgraded.
func WithUpgradeHook(fn UpgradeHook) Option {
	return func(o *options) { o.hook = fn }
}

// WithLogger sets the logger used for store events.
func WithLogger(l *logrus.Entry) Option {
	return func(o *options) { o.log = l }
}

// WithClock overrides the time source used to stamp comments.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Store provides durable storage for stories, categories and settings.
type Store struct {
	db  *sql.DB
	log *logrus.Entry
	now func() time.Time
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open creates or opens the database at path, applies pragmas and runs any
// pending migrations before returning.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
//   - a single connection, which serializes every transaction
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	o := options{
		log: logrus.WithField("component", "store"),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			return nil, wrap("open", fmt.Errorf("creating database directory: %w", err))
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, wrap("open", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, wrap("open", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, wrap("open", err)
	}

	s := &Store{db: db, log: o.log, now: o.now}
	if err := s.migrate(ctx, o.hook); err != nil {
		_ = db.Close()
		return nil, wrap("migrate", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SchemaVersion returns the version recorded in the database file.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	v, err := userVersion(ctx, s.db)
	return v, wrap("schema version", err)
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("executing %q: %w", pragma, err)
		}
	}
	return nil
}

// inTx runs fn in a transaction. Any error rolls back every write made by fn.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
