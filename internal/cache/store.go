package cache

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// Store writes r to the cache path for storyID, verifying the sha256
// checksum after write if expectedSHA256 is non-empty.
// Returns the final file path.
func (m *Manager) Store(storyID string, r io.Reader, expectedSHA256 string) (string, error) {
	if err := m.EnsureDir(); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}

	destPath := m.Path(storyID)
	tmpPath := destPath + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("writing to cache: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("closing temp file: %w", err)
	}

	if err := VerifyFile(tmpPath, expectedSHA256); err != nil {
		_ = os.Remove(tmpPath)
		return "", err
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", err
	}
	return destPath, nil
}

// Ensure returns the cached path for storyID, writing data first when the
// file is missing or its content differs.
func (m *Manager) Ensure(storyID string, data []byte, sha string) (string, error) {
	path := m.Path(storyID)
	if m.Exists(storyID) && VerifyFile(path, sha) == nil {
		return path, nil
	}
	return m.Store(storyID, bytes.NewReader(data), sha)
}
