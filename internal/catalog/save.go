package catalog

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Marshal encodes a library to YAML bytes.
func Marshal(lib *Library) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(lib); err != nil {
		return nil, fmt.Errorf("encoding catalog: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding catalog: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes the library to a file on disk.
func Save(path string, lib *Library) error {
	data, err := Marshal(lib)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Append adds a story to the list and returns the updated slice.
// If a story with the same ID already exists it is replaced.
func Append(stories []Story, s Story) []Story {
	for i, existing := range stories {
		if existing.ID == s.ID {
			stories[i] = s
			return stories
		}
	}
	return append(stories, s)
}

// Remove removes a story by ID. Returns the updated slice and whether a
// story was actually removed.
func Remove(stories []Story, id string) ([]Story, bool) {
	for i, s := range stories {
		if s.ID == id {
			return append(stories[:i], stories[i+1:]...), true
		}
	}
	return stories, false
}
