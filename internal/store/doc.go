// Package store provides SQLite-backed durable storage for the story library.
//
// The database holds three collections, each keyed by a distinct field:
//   - stories: keyed by id, the full story (comments included) as a JSON document
//   - categories: keyed by name, in seed/insertion order
//   - settings: keyed by key, plain string values
//
// # Foreign keys
//
// A story references its category by name. Deleting a category re-tags its
// stories to catalog.FallbackCategory; renaming re-tags them to the new name.
// Both run as a single transaction.
//
// # Concurrency
//
// The pool is limited to one connection, so every transaction is serialized.
// Read-modify-write operations (UpdateStory, AppendComment, IncrementCounter)
// read and write inside one transaction and never lose a concurrent update.
//
// # Schema
//
// The schema version lives in PRAGMA user_version. Open applies every
// pending migration in one upgrade transaction; see migrations.go.
package store
