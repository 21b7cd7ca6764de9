// Package cache keeps decoded story files on disk so external viewers and
// the terminal reader can open them by path.
package cache

import (
	"os"
	"path/filepath"
)

// Manager handles the local file cache.
type Manager struct {
	baseDir string
}

// New creates a cache Manager rooted at baseDir.
func New(baseDir string) *Manager {
	return &Manager{baseDir: baseDir}
}

// Dir returns the cache root.
func (m *Manager) Dir() string { return m.baseDir }

// Path returns the full cache path for a story's PDF.
// Layout: <baseDir>/stories/<storyID>.pdf
func (m *Manager) Path(storyID string) string {
	return filepath.Join(m.baseDir, "stories", storyID+".pdf")
}

// Exists reports whether the cached file exists.
func (m *Manager) Exists(storyID string) bool {
	_, err := os.Stat(m.Path(storyID))
	return err == nil
}

// EnsureDir creates the directories the cache writes into.
func (m *Manager) EnsureDir() error {
	for _, sub := range []string{"stories", "covers"} {
		if err := os.MkdirAll(filepath.Join(m.baseDir, sub), 0750); err != nil {
			return err
		}
	}
	return nil
}

// Remove deletes the cached PDF and cover for a story if they exist.
func (m *Manager) Remove(storyID string) error {
	if err := removeIfExists(m.Path(storyID)); err != nil {
		return err
	}
	return m.RemoveCover(storyID)
}

// Clear deletes every cached file.
func (m *Manager) Clear() error {
	return os.RemoveAll(m.baseDir)
}

func removeIfExists(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
