// Package importer finds PDF stories on disk and remembers which ones have
// already been brought into the library.
package importer

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LedgerEntry records one completed import.
type LedgerEntry struct {
	SHA256    string    `json:"sha256"`   // content hash, the dedupe key
	Source    string    `json:"source"`   // path the file was read from
	StoryID   string    `json:"story_id"` // id of the story it became
	Timestamp time.Time `json:"timestamp"`
}

// Ledger is a JSONL append-only import log. It is safe for concurrent use.
type Ledger struct {
	path string
	mu   sync.Mutex
}

// OpenLedger opens (or creates the directory for) the ledger at path.
func OpenLedger(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, err
	}
	return &Ledger{path: path}, nil
}

// Path returns the ledger file location.
func (l *Ledger) Path() string { return l.path }

// Append adds an entry to the ledger.
func (l *Ledger) Append(e LedgerEntry) error {
	if e.SHA256 == "" {
		return fmt.Errorf("ledger entry for %q has no sha256", e.Source)
	}
	data, err := json.Marshal(withTimestamp(e))
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = fmt.Fprintln(f, string(data))
	return err
}

func withTimestamp(e LedgerEntry) LedgerEntry {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	return e
}

// Contains reports whether content with the given hash was already imported.
func (l *Ledger) Contains(sha string) (bool, error) {
	idx, err := l.Index()
	if err != nil {
		return false, err
	}
	_, ok := idx[sha]
	return ok, nil
}

// Index returns the latest entry per content hash.
func (l *Ledger) Index() (map[string]LedgerEntry, error) {
	entries, err := l.Entries()
	if err != nil {
		return nil, err
	}
	idx := make(map[string]LedgerEntry, len(entries))
	for _, e := range entries {
		idx[e.SHA256] = e
	}
	return idx, nil
}

// Entries returns all ledger entries. Lines that do not parse are skipped.
func (l *Ledger) Entries() ([]LedgerEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []LedgerEntry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e LedgerEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, sc.Err()
}
