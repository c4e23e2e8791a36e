// Package synthetic generates a reproducible marketing dataset: influencers,
// their posts, attributed tracking events and payout terms.
package synthetic

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/dwsmith1983/campaignlens/internal/provider"
	"github.com/dwsmith1983/campaignlens/pkg/types"
)

// Compile-time interface satisfaction check.
var _ provider.Source = (*Generator)(nil)

// Default dataset shape.
const (
	DefaultSeed        = 42
	DefaultInfluencers = 20
	DefaultPosts       = 100
	DefaultEvents      = 200
)

// Value domains drawn from by the generator.
var (
	Platforms  = []string{"Instagram", "YouTube", "Twitter"}
	Categories = []string{"Fitness", "Lifestyle", "Nutrition", "Bodybuilding"}
	Genders    = []string{"Male", "Female", "Other"}
	Campaigns  = []string{"Campaign_A", "Campaign_B", "Campaign_C"}
	Products   = []string{"MuscleBlaze", "HKVitals", "Gritzo"}
	Bases      = []types.Basis{types.BasisPost, types.BasisOrder}
)

// Generator produces a dataset from a seed. The same seed and anchor always
// produce the same dataset.
type Generator struct {
	cfg types.GeneratorConfig
}

// New creates a generator, filling zero-valued counts with defaults.
func New(cfg types.GeneratorConfig) *Generator {
	if cfg.Influencers <= 0 {
		cfg.Influencers = DefaultInfluencers
	}
	if cfg.Posts < 0 {
		cfg.Posts = 0
	} else if cfg.Posts == 0 {
		cfg.Posts = DefaultPosts
	}
	if cfg.Events < 0 {
		cfg.Events = 0
	} else if cfg.Events == 0 {
		cfg.Events = DefaultEvents
	}
	return &Generator{cfg: cfg}
}

// Name returns the source identifier.
func (g *Generator) Name() string { return string(types.SourceSynthetic) }

// Ping always succeeds.
func (g *Generator) Ping(_ context.Context) error { return nil }

// Load generates the dataset.
func (g *Generator) Load(_ context.Context) (*types.Dataset, error) {
	return g.Generate()
}

// Generate builds the four entity tables.
func (g *Generator) Generate() (*types.Dataset, error) {
	anchor, err := ParseAnchor(g.cfg.Anchor)
	if err != nil {
		return nil, err
	}
	r := rand.New(rand.NewPCG(g.cfg.Seed, g.cfg.Seed^0x9e3779b97f4a7c15))
	ds := &types.Dataset{}

	ds.Influencers = make([]types.Influencer, g.cfg.Influencers)
	for i := range ds.Influencers {
		id := i + 1
		ds.Influencers[i] = types.Influencer{
			ID:            id,
			Name:          fmt.Sprintf("Influencer_%d", id),
			Category:      pick(r, Categories),
			Gender:        pick(r, Genders),
			FollowerCount: between(r, 10000, 500000),
			Platform:      pick(r, Platforms),
		}
	}

	ds.Posts = make([]types.Post, g.cfg.Posts)
	for i := range ds.Posts {
		inf := ds.Influencers[r.IntN(len(ds.Influencers))]
		ds.Posts[i] = types.Post{
			InfluencerID: inf.ID,
			Platform:     inf.Platform,
			Date:         anchor.AddDate(0, 0, -between(r, 1, 60)),
			URL:          fmt.Sprintf("https://post.url/%d", i),
			Caption:      fmt.Sprintf("Check out our new product! #%d", i),
			Reach:        between(r, 1000, 100000),
			Likes:        between(r, 100, 10000),
			Comments:     between(r, 10, 1000),
		}
	}

	ds.Tracking = make([]types.TrackingEvent, g.cfg.Events)
	for i := range ds.Tracking {
		ds.Tracking[i] = types.TrackingEvent{
			Source:       types.TrackingSourceInfluencer,
			Campaign:     pick(r, Campaigns),
			InfluencerID: ds.Influencers[r.IntN(len(ds.Influencers))].ID,
			UserID:       between(r, 1000, 2000),
			Product:      pick(r, Products),
			Date:         anchor.AddDate(0, 0, -between(r, 1, 60)),
			Orders:       between(r, 1, 5),
			Revenue:      types.AmountFromFloat(100 + r.Float64()*1900),
		}
	}

	ds.Payouts = make([]types.PayoutTerms, len(ds.Influencers))
	for i, inf := range ds.Influencers {
		ds.Payouts[i] = types.PayoutTerms{
			InfluencerID: inf.ID,
			Basis:        Bases[r.IntN(len(Bases))],
			Rate:         float64(between(r, 100, 5000)),
		}
	}
	return ds, nil
}

// ParseAnchor parses a generator anchor date. An empty anchor is today (UTC).
func ParseAnchor(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC().Truncate(24 * time.Hour), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing anchor %q: %w", s, err)
	}
	return t, nil
}

func pick(r *rand.Rand, vals []string) string {
	return vals[r.IntN(len(vals))]
}

// between returns an int in [lo, hi).
func between(r *rand.Rand, lo, hi int) int {
	return lo + r.IntN(hi-lo)
}
