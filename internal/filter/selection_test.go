package filter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dwsmith1983/campaignlens/internal/filter"
	"github.com/dwsmith1983/campaignlens/internal/testutil"
	"github.com/dwsmith1983/campaignlens/pkg/types"
)

func lookupFrom(m map[types.Dimension][]string) filter.LookupFunc {
	return func(d types.Dimension) ([]string, bool) {
		v, ok := m[d]
		return v, ok
	}
}

func TestResolve_AbsentSelectsAll(t *testing.T) {
	snap := testutil.ScenarioSnapshot(t)
	sel := filter.Resolve(snap.Options(), lookupFrom(nil))
	assert.Equal(t, testutil.AllSelection(snap), sel)
}

func TestResolve_GivenDimensions(t *testing.T) {
	snap := testutil.ScenarioSnapshot(t)
	sel := filter.Resolve(snap.Options(), lookupFrom(map[types.Dimension][]string{
		types.DimPlatform: {"Instagram,YouTube"},
		types.DimGender:   {"Male", " Female "},
	}))

	assert.Equal(t, []string{"Instagram", "YouTube"}, sel.Platforms)
	assert.Equal(t, []string{"Male", "Female"}, sel.Genders)
	assert.Equal(t, snap.Options().Categories, sel.Categories)
	assert.Equal(t, snap.Options().Products, sel.Products)
}

func TestResolve_ExplicitlyEmptySelectsNothing(t *testing.T) {
	snap := testutil.ScenarioSnapshot(t)
	sel := filter.Resolve(snap.Options(), lookupFrom(map[types.Dimension][]string{
		types.DimCategory: {""},
	}))

	assert.NotNil(t, sel.Categories)
	assert.Empty(t, sel.Categories)
	res := filter.Apply(snap, sel)
	assert.Empty(t, res.Influencers)
	assert.Empty(t, res.Tracking)
}

func TestSplitValues(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, filter.SplitValues([]string{"a,b", "", "c,"}))
	assert.Equal(t, []string{}, filter.SplitValues(nil))
}
