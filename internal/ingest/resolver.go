package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// MaxSize is the largest document Load accepts. Stories are stored inline
// as data URIs, so anything bigger would bloat every listing.
const MaxSize int64 = 64 << 20

// ErrTooLarge is returned by Load when the input exceeds the size limit.
var ErrTooLarge = errors.New("file too large")

// Source holds a resolved input ready for reading.
type Source struct {
	// Name is the original filename (no directory).
	Name string
	// Size is the byte count if known in advance (-1 if unknown).
	Size int64
	// Open returns a new ReadCloser. May be called once.
	Open func() (io.ReadCloser, error)
}

// Payload is a fully read source.
type Payload struct {
	Name   string
	Data   []byte
	SHA256 string
}

// Resolve determines the type of input and returns a Source.
// Supported formats:
//
//	/path/to/story.pdf  local file
//	-                   standard input
func Resolve(input string) (*Source, error) {
	if input == "-" {
		return &Source{
			Name: "stdin.pdf",
			Size: -1,
			Open: func() (io.ReadCloser, error) { return io.NopCloser(os.Stdin), nil },
		}, nil
	}
	return resolveFile(input)
}

func resolveFile(path string) (*Source, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%q is a directory", path)
	}
	return &Source{
		Name: filepath.Base(path),
		Size: fi.Size(),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

// Load reads the whole source, hashing it on the way. limit <= 0 means MaxSize.
func (s *Source) Load(limit int64) (*Payload, error) {
	if limit <= 0 {
		limit = MaxSize
	}
	if s.Size > limit {
		return nil, fmt.Errorf("%s is %d bytes: %w", s.Name, s.Size, ErrTooLarge)
	}

	rc, err := s.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	r := NewReader(io.LimitReader(rc, limit+1))
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.Name, err)
	}
	if r.Size() > limit {
		return nil, fmt.Errorf("%s exceeds %d bytes: %w", s.Name, limit, ErrTooLarge)
	}
	return &Payload{Name: s.Name, Data: data, SHA256: r.SHA256()}, nil
}
