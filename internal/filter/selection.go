package filter

import (
	"strings"

	"github.com/dwsmith1983/campaignlens/pkg/types"
)

// LookupFunc returns the raw values given for a dimension and whether the
// dimension was given at all.
type LookupFunc func(d types.Dimension) ([]string, bool)

// Resolve builds a selection from user input. A dimension that was not given
// selects every observed value; a given dimension selects exactly the listed
// values, so an explicitly empty one selects nothing. Values may repeat or be
// comma-separated.
func Resolve(opts types.Options, lookup LookupFunc) types.Selection {
	sel := opts.Selection()
	for _, d := range types.Dimensions {
		raw, ok := lookup(d)
		if !ok {
			continue
		}
		sel = sel.With(d, SplitValues(raw))
	}
	return sel
}

// SplitValues flattens comma-separated values, trimming blanks. The result is
// non-nil even when empty.
func SplitValues(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		for _, v := range strings.Split(r, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}
