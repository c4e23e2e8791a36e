package publish

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileSink writes bundles into a local directory as {id}-{fileName}.
type FileSink struct {
	dir string
}

// NewFileSink creates the directory if needed and returns a sink writing into it.
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating export dir: %w", err)
	}
	return &FileSink{dir: dir}, nil
}

// Name returns the sink identifier.
func (s *FileSink) Name() string { return "file" }

// Send writes the bundle bytes and records the file path as a location.
func (s *FileSink) Send(_ context.Context, b *Bundle) error {
	path := filepath.Join(s.dir, b.ID+"-"+b.FileName)
	if err := os.WriteFile(path, b.Data, 0o644); err != nil {
		return err
	}
	b.Locations = append(b.Locations, path)
	return nil
}
