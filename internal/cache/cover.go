package cache

import (
	"os"
	"path/filepath"

	"github.com/blackwell-systems/storyshelf/internal/catalog"
	"github.com/blackwell-systems/storyshelf/internal/util"
)

// CoverPath returns the path where a story's cover image is stored.
func (m *Manager) CoverPath(storyID string) string {
	return filepath.Join(m.baseDir, "covers", storyID+".jpg")
}

// HasCover checks if a cover image exists for the given story.
func (m *Manager) HasCover(storyID string) bool {
	_, err := os.Stat(m.CoverPath(storyID))
	return err == nil
}

// StoreCover decodes a cover data URI and writes the image to the cache.
// Only one cover exists per story; an existing file is replaced.
func (m *Manager) StoreCover(storyID, dataURI string) (string, error) {
	_, data, err := catalog.DecodeDataURI(dataURI)
	if err != nil {
		return "", err
	}
	if err := m.EnsureDir(); err != nil {
		return "", err
	}
	path := m.CoverPath(storyID)
	if err := util.WriteFileAtomic(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// RemoveCover deletes the cover image for a story if it exists.
func (m *Manager) RemoveCover(storyID string) error {
	return removeIfExists(m.CoverPath(storyID))
}
