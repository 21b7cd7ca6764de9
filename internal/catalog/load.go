package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Library is the portable backup form of the whole store.
type Library struct {
	Categories []string `yaml:"categories"`
	Stories    []Story  `yaml:"stories"`
}

// Load reads a catalog.yml backup from disk. A missing file is an empty
// library, not an error.
func Load(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Library{}, nil
		}
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes into a library.
func Parse(data []byte) (*Library, error) {
	lib := &Library{}
	if len(data) == 0 {
		return lib, nil
	}
	if err := yaml.Unmarshal(data, lib); err != nil {
		return nil, fmt.Errorf("parsing catalog YAML: %w", err)
	}
	return lib, nil
}
