package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// BlobStore persists the serialized session outside the document store.
type BlobStore interface {
	// Load returns nil, nil when nothing has been saved.
	Load() ([]byte, error)
	Save(data []byte) error
	Clear() error
}

// FileBlob keeps the session in a single file.
type FileBlob struct {
	Path string
}

// Load implements BlobStore.
func (f FileBlob) Load() ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}
	return data, nil
}

// Save implements BlobStore. The file is replaced atomically.
func (f FileBlob) Save(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0700); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	if err := os.Rename(tmp, f.Path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("writing session: %w", err)
	}
	return nil
}

// Clear implements BlobStore. Clearing a missing file is not an error.
func (f FileBlob) Clear() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing session: %w", err)
	}
	return nil
}

// MemoryBlob is an in-process BlobStore.
type MemoryBlob struct {
	data []byte
}

// Load implements BlobStore.
func (m *MemoryBlob) Load() ([]byte, error) { return m.data, nil }

// Save implements BlobStore.
func (m *MemoryBlob) Save(data []byte) error {
	m.data = append([]byte(nil), data...)
	return nil
}

// Clear implements BlobStore.
func (m *MemoryBlob) Clear() error {
	m.data = nil
	return nil
}
