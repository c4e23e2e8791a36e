package csvdir

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dwsmith1983/campaignlens/pkg/types"
)

// Source loads entity tables from CSV files in a local directory.
type Source struct {
	dir string
}

// New creates a source reading from dir.
func New(dir string) (*Source, error) {
	if dir == "" {
		return nil, fmt.Errorf("csv source: directory required")
	}
	return &Source{dir: dir}, nil
}

// Name returns the source identifier.
func (s *Source) Name() string { return string(types.SourceCSV) }

// Dir returns the directory the source reads from.
func (s *Source) Dir() string { return s.dir }

// Ping checks that every entity file exists.
func (s *Source) Ping(_ context.Context) error {
	for _, name := range Files {
		if _, err := os.Stat(filepath.Join(s.dir, name)); err != nil {
			return fmt.Errorf("csv source: %w", err)
		}
	}
	return nil
}

// Load reads the four entity tables.
func (s *Source) Load(_ context.Context) (*types.Dataset, error) {
	ds, err := Decode(func(name string) (io.ReadCloser, error) {
		return os.Open(filepath.Join(s.dir, name))
	})
	if err != nil {
		return nil, fmt.Errorf("csv source %s: %w", s.dir, err)
	}
	return ds, nil
}

// Save writes ds into the directory, creating it when missing.
func (s *Source) Save(_ context.Context, ds *types.Dataset) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", s.dir, err)
	}
	return Encode(ds, func(name string) (io.WriteCloser, error) {
		return os.Create(filepath.Join(s.dir, name))
	})
}
