package ingest_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blackwell-systems/storyshelf/internal/ingest"
)

func TestReader_SHA256AndSize(t *testing.T) {
	data := "hello, storyshelf"
	r := ingest.NewReader(strings.NewReader(data))

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != data {
		t.Errorf("content mismatch: got %q", string(out))
	}
	if r.Size() != int64(len(data)) {
		t.Errorf("Size() = %d, want %d", r.Size(), len(data))
	}
	if len(r.SHA256()) != 64 {
		t.Errorf("SHA256() length = %d, want 64", len(r.SHA256()))
	}
}

func TestReader_EmptyInput(t *testing.T) {
	r := ingest.NewReader(strings.NewReader(""))
	io.ReadAll(r) //nolint:errcheck
	if r.Size() != 0 {
		t.Errorf("Size() = %d, want 0", r.Size())
	}
	const emptySHA = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if r.SHA256() != emptySHA {
		t.Errorf("SHA256('') = %q, want %q", r.SHA256(), emptySHA)
	}
}

func TestReader_MultipleReads(t *testing.T) {
	payload := strings.Repeat("abcdefgh", 1000) // 8000 bytes
	r := ingest.NewReader(strings.NewReader(payload))

	buf := make([]byte, 100)
	for {
		_, err := r.Read(buf)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
	}
	if r.Size() != int64(len(payload)) {
		t.Errorf("Size() = %d, want %d", r.Size(), len(payload))
	}
}

func TestResolve_LocalFile_NotFound(t *testing.T) {
	if _, err := ingest.Resolve("/no/such/file.pdf"); err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestResolve_LocalFile_IsDirectory(t *testing.T) {
	if _, err := ingest.Resolve(t.TempDir()); err == nil {
		t.Error("expected error for directory input, got nil")
	}
}

func TestResolve_Stdin(t *testing.T) {
	src, err := ingest.Resolve("-")
	if err != nil {
		t.Fatal(err)
	}
	if src.Size != -1 {
		t.Errorf("Size should be -1 (unknown) for stdin, got %d", src.Size)
	}
}

func TestLoad_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tale.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 body"), 0644); err != nil {
		t.Fatal(err)
	}
	src, err := ingest.Resolve(path)
	if err != nil {
		t.Fatal(err)
	}
	if src.Name != "tale.pdf" {
		t.Errorf("Name = %q, want tale.pdf", src.Name)
	}
	p, err := src.Load(0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(p.Data) != "%PDF-1.4 body" {
		t.Errorf("Data = %q", p.Data)
	}
	if len(p.SHA256) != 64 {
		t.Errorf("SHA256 = %q", p.SHA256)
	}
}

func TestLoad_TooLarge_KnownSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.pdf")
	if err := os.WriteFile(path, make([]byte, 100), 0644); err != nil {
		t.Fatal(err)
	}
	src, _ := ingest.Resolve(path)
	if _, err := src.Load(10); !errors.Is(err, ingest.ErrTooLarge) {
		t.Errorf("Load err = %v, want ErrTooLarge", err)
	}
}

func TestLoad_TooLarge_UnknownSize(t *testing.T) {
	src := &ingest.Source{
		Name: "stream.pdf",
		Size: -1,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(strings.Repeat("x", 50))), nil
		},
	}
	if _, err := src.Load(20); !errors.Is(err, ingest.ErrTooLarge) {
		t.Errorf("Load err = %v, want ErrTooLarge", err)
	}
}

func TestLoad_ExactlyAtLimit(t *testing.T) {
	src := &ingest.Source{
		Name: "edge.pdf",
		Size: -1,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(strings.Repeat("x", 20))), nil
		},
	}
	p, err := src.Load(20)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(p.Data) != 20 {
		t.Errorf("len(Data) = %d, want 20", len(p.Data))
	}
}
