package publish

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// ConsoleSink prints a one-line summary of each bundle.
type ConsoleSink struct {
	w io.Writer
}

// NewConsoleSink creates a console sink writing to w, or stdout when w is nil.
func NewConsoleSink(w io.Writer) *ConsoleSink {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleSink{w: w}
}

// Name returns the sink identifier.
func (s *ConsoleSink) Name() string { return "console" }

// Send writes the bundle summary.
func (s *ConsoleSink) Send(_ context.Context, b *Bundle) error {
	_, err := fmt.Fprintf(s.w, "%s %s %s (%d bytes)\n",
		color.GreenString("[EXPORT]"), b.ID, b.FileName, b.Size)
	if err != nil {
		return err
	}
	for _, loc := range b.Locations {
		if _, err := fmt.Fprintf(s.w, "  %s\n", color.CyanString(loc)); err != nil {
			return err
		}
	}
	return nil
}
