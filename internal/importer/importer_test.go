package importer_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/blackwell-systems/storyshelf/internal/importer"
)

// --- Ledger ---

func TestLedger_AppendAndContains(t *testing.T) {
	l, err := importer.OpenLedger(filepath.Join(t.TempDir(), "nested", "imports.jsonl"))
	if err != nil {
		t.Fatal(err)
	}

	found, err := l.Contains("abc")
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Error("Contains returned true before any entries")
	}

	if err := l.Append(importer.LedgerEntry{SHA256: "abc", Source: "a/1.pdf", StoryID: "s1"}); err != nil {
		t.Fatal(err)
	}

	found, err = l.Contains("abc")
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Error("Contains returned false after append")
	}
}

func TestLedger_AppendRequiresHash(t *testing.T) {
	l, _ := importer.OpenLedger(filepath.Join(t.TempDir(), "imports.jsonl"))
	if err := l.Append(importer.LedgerEntry{Source: "x.pdf"}); err == nil {
		t.Error("expected error for entry without sha256")
	}
}

func TestLedger_ContainsMissingFile(t *testing.T) {
	l, _ := importer.OpenLedger(filepath.Join(t.TempDir(), "nonexistent.jsonl"))
	found, err := l.Contains("any")
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Error("Contains on missing ledger file should return false")
	}
}

func TestLedger_IndexKeepsLatest(t *testing.T) {
	l, _ := importer.OpenLedger(filepath.Join(t.TempDir(), "imports.jsonl"))
	_ = l.Append(importer.LedgerEntry{SHA256: "h1", StoryID: "old"})
	_ = l.Append(importer.LedgerEntry{SHA256: "h2", StoryID: "other"})
	_ = l.Append(importer.LedgerEntry{SHA256: "h1", StoryID: "new"})

	idx, err := l.Index()
	if err != nil {
		t.Fatal(err)
	}
	if len(idx) != 2 {
		t.Errorf("len(Index) = %d, want 2", len(idx))
	}
	if idx["h1"].StoryID != "new" {
		t.Errorf("Index[h1].StoryID = %q, want new", idx["h1"].StoryID)
	}
}

func TestLedger_PreservesTimestamp(t *testing.T) {
	l, _ := importer.OpenLedger(filepath.Join(t.TempDir(), "imports.jsonl"))
	ts := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	_ = l.Append(importer.LedgerEntry{SHA256: "h", Timestamp: ts})

	entries, err := l.Entries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || !entries[0].Timestamp.Equal(ts) {
		t.Errorf("entries = %+v", entries)
	}
}

func TestLedger_SkipsCorruptLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "imports.jsonl")
	data := "{not json\n" + `{"sha256":"ok","story_id":"s"}` + "\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	l, _ := importer.OpenLedger(path)
	entries, err := l.Entries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].SHA256 != "ok" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestLedger_ConcurrentAppend(t *testing.T) {
	l, _ := importer.OpenLedger(filepath.Join(t.TempDir(), "imports.jsonl"))
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = l.Append(importer.LedgerEntry{SHA256: string(rune('a' + i))})
		}(i)
	}
	wg.Wait()

	entries, err := l.Entries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 16 {
		t.Errorf("got %d entries, want 16", len(entries))
	}
}

// --- Scan ---

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, n := range names {
		p := filepath.Join(root, filepath.FromSlash(n))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestScan_FiltersAndSorts(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "b.pdf", "a/c.PDF", "notes.txt", ".hidden/d.pdf", "a/z.epub")

	got, err := importer.Scan(root, []string{"pdf"})
	if err != nil {
		t.Fatal(err)
	}
	var rels []string
	for _, e := range got {
		rels = append(rels, e.Rel)
	}
	if len(rels) != 2 || rels[0] != "a/c.PDF" || rels[1] != "b.pdf" {
		t.Errorf("Scan = %v, want [a/c.PDF b.pdf]", rels)
	}
	if got[0].Size != 1 {
		t.Errorf("Size = %d, want 1", got[0].Size)
	}
}

func TestScan_NotADirectory(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "one.pdf")
	if _, err := importer.Scan(filepath.Join(root, "one.pdf"), nil); err == nil {
		t.Error("expected error scanning a file")
	}
}

func TestScan_Missing(t *testing.T) {
	if _, err := importer.Scan(filepath.Join(t.TempDir(), "nope"), nil); err == nil {
		t.Error("expected error scanning a missing directory")
	}
}

func TestTitleFromName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"the_lighthouse-keeper.pdf", "the lighthouse keeper"},
		{"dir/قصة قصيرة.pdf", "قصة قصيرة"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := importer.TitleFromName(tt.in); got != tt.want {
			t.Errorf("TitleFromName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
