// Package store holds the entity store: an immutable snapshot of the four
// entity tables with derived payouts, lookup indexes and a content version.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/cespare/xxhash/v2"

	"github.com/dwsmith1983/campaignlens/internal/calc"
	"github.com/dwsmith1983/campaignlens/pkg/types"
)

// Snapshot is a read-only view of a loaded dataset. Slices returned by its
// accessors are shared and must not be modified.
type Snapshot struct {
	influencers []types.Influencer
	posts       []types.Post
	tracking    []types.TrackingEvent
	payouts     []types.Payout

	influencerIdx map[int]int
	payoutIdx     map[int]int

	options types.Options
	gaps    Gaps
	version string
}

// Gaps counts rows whose influencer reference does not resolve. They stay in
// the tables and drop out of joins.
type Gaps struct {
	Posts    int `json:"posts"`
	Tracking int `json:"tracking"`
	Payouts  int `json:"payouts"`
}

// Option configures snapshot construction.
type Option func(*builder)

type builder struct {
	logger *slog.Logger
}

// WithLogger sets the logger used to report referential gaps.
func WithLogger(l *slog.Logger) Option {
	return func(b *builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// New builds a snapshot from a dataset. The dataset is copied, so later
// changes to ds do not leak into the snapshot. Payout totals are derived here
// from the global (unfiltered) tracking and post tables.
func New(ds *types.Dataset, opts ...Option) (*Snapshot, error) {
	b := &builder{logger: slog.Default()}
	for _, o := range opts {
		o(b)
	}
	if ds == nil {
		ds = &types.Dataset{}
	}

	s := &Snapshot{
		influencers:   append([]types.Influencer(nil), ds.Influencers...),
		posts:         append([]types.Post(nil), ds.Posts...),
		tracking:      append([]types.TrackingEvent(nil), ds.Tracking...),
		influencerIdx: make(map[int]int, len(ds.Influencers)),
		payoutIdx:     make(map[int]int, len(ds.Payouts)),
	}

	for i, inf := range s.influencers {
		if _, dup := s.influencerIdx[inf.ID]; dup {
			return nil, fmt.Errorf("influencer %d: %w", inf.ID, types.ErrDuplicateInfluencer)
		}
		s.influencerIdx[inf.ID] = i
	}

	ordersBy := make(map[int]int)
	for _, ev := range s.tracking {
		ordersBy[ev.InfluencerID] += ev.Orders
		if _, ok := s.influencerIdx[ev.InfluencerID]; !ok {
			s.gaps.Tracking++
		}
	}
	postsBy := make(map[int]int)
	for _, p := range s.posts {
		postsBy[p.InfluencerID]++
		if _, ok := s.influencerIdx[p.InfluencerID]; !ok {
			s.gaps.Posts++
		}
	}

	s.payouts = make([]types.Payout, 0, len(ds.Payouts))
	for _, terms := range ds.Payouts {
		if _, dup := s.payoutIdx[terms.InfluencerID]; dup {
			return nil, fmt.Errorf("influencer %d: %w", terms.InfluencerID, types.ErrDuplicatePayout)
		}
		if !terms.Basis.Valid() {
			b.logger.Warn("payout has unknown basis, paying nothing",
				"influencer", terms.InfluencerID, "basis", terms.Basis)
		}
		if _, ok := s.influencerIdx[terms.InfluencerID]; !ok {
			s.gaps.Payouts++
		}
		orders := ordersBy[terms.InfluencerID]
		posts := postsBy[terms.InfluencerID]
		s.payoutIdx[terms.InfluencerID] = len(s.payouts)
		s.payouts = append(s.payouts, types.Payout{
			InfluencerID:             terms.InfluencerID,
			Basis:                    terms.Basis,
			Rate:                     terms.Rate,
			OrdersTotalForInfluencer: orders,
			PostCount:                posts,
			TotalPayout:              calc.TotalPayout(terms.Basis, terms.Rate, orders, posts),
		})
	}

	if s.gaps != (Gaps{}) {
		b.logger.Warn("dataset has unresolved influencer references",
			"posts", s.gaps.Posts, "tracking", s.gaps.Tracking, "payouts", s.gaps.Payouts)
	}

	s.options = observedOptions(s.influencers, s.tracking)

	v, err := version(ds)
	if err != nil {
		return nil, fmt.Errorf("hashing dataset: %w", err)
	}
	s.version = v
	return s, nil
}

// Influencers returns the influencer table.
func (s *Snapshot) Influencers() []types.Influencer { return s.influencers }

// Posts returns the post table.
func (s *Snapshot) Posts() []types.Post { return s.posts }

// Tracking returns the tracking event table.
func (s *Snapshot) Tracking() []types.TrackingEvent { return s.tracking }

// Payouts returns the payout table with derived columns, in source order.
func (s *Snapshot) Payouts() []types.Payout { return s.payouts }

// Influencer looks up an influencer by ID.
func (s *Snapshot) Influencer(id int) (types.Influencer, bool) {
	i, ok := s.influencerIdx[id]
	if !ok {
		return types.Influencer{}, false
	}
	return s.influencers[i], true
}

// Payout looks up the payout record of an influencer.
func (s *Snapshot) Payout(id int) (types.Payout, bool) {
	i, ok := s.payoutIdx[id]
	if !ok {
		return types.Payout{}, false
	}
	return s.payouts[i], true
}

// Options returns the distinct observed values per filter dimension.
func (s *Snapshot) Options() types.Options { return s.options }

// Gaps returns the referential gap counts found while building the snapshot.
func (s *Snapshot) Gaps() Gaps { return s.gaps }

// Version identifies the snapshot contents. Identical datasets share a version.
func (s *Snapshot) Version() string { return s.version }

// observedOptions collects distinct values in order of first appearance.
func observedOptions(infs []types.Influencer, events []types.TrackingEvent) types.Options {
	var o types.Options
	seen := map[types.Dimension]map[string]bool{
		types.DimPlatform: {},
		types.DimCategory: {},
		types.DimGender:   {},
		types.DimProduct:  {},
	}
	add := func(d types.Dimension, dst *[]string, v string) {
		if seen[d][v] {
			return
		}
		seen[d][v] = true
		*dst = append(*dst, v)
	}
	for _, inf := range infs {
		add(types.DimPlatform, &o.Platforms, inf.Platform)
		add(types.DimCategory, &o.Categories, inf.Category)
		add(types.DimGender, &o.Genders, inf.Gender)
	}
	for _, ev := range events {
		add(types.DimProduct, &o.Products, ev.Product)
	}
	return o
}

func version(ds *types.Dataset) (string, error) {
	h := xxhash.New()
	if err := json.NewEncoder(h).Encode(ds); err != nil {
		return "", err
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}
