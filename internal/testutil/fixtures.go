package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dwsmith1983/campaignlens/internal/store"
	"github.com/dwsmith1983/campaignlens/pkg/types"
)

// Fixture influencer IDs.
const (
	AlphaID  = 1  // post basis, rate 100, 3 posts
	BetaID   = 2  // order basis, rate 50, 4 orders
	GammaID  = 3  // order basis, no tracked orders: zero payout
	DeltaID  = 4  // post basis, no posts: counted as one
	OrphanID = 99 // referenced by a post and an event, never defined
)

// Anchor is the reference date used by fixture rows.
var Anchor = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time { return Anchor.AddDate(0, 0, -n) }

// ScenarioDataset returns a small hand-checked dataset:
//
//	Alpha  Instagram Fitness   Female  post  100  3 posts  1 event  rev 500          payout 300
//	Beta   YouTube   Lifestyle Male    order 50   0 posts  2 events rev 120.5+79.5    payout 200
//	Gamma  Twitter   Nutrition Other   order 75   2 posts  0 events                  payout 0
//	Delta  Instagram Fitness   Male    post  40   0 posts  1 event  rev 80           payout 40
//
// plus one orphan post and one orphan event referencing OrphanID.
func ScenarioDataset() *types.Dataset {
	return &types.Dataset{
		Influencers: []types.Influencer{
			{ID: AlphaID, Name: "Alpha", Category: "Fitness", Gender: "Female", FollowerCount: 120000, Platform: "Instagram"},
			{ID: BetaID, Name: "Beta", Category: "Lifestyle", Gender: "Male", FollowerCount: 45000, Platform: "YouTube"},
			{ID: GammaID, Name: "Gamma", Category: "Nutrition", Gender: "Other", FollowerCount: 300000, Platform: "Twitter"},
			{ID: DeltaID, Name: "Delta", Category: "Fitness", Gender: "Male", FollowerCount: 15000, Platform: "Instagram"},
		},
		Posts: []types.Post{
			{InfluencerID: AlphaID, Platform: "Instagram", Date: day(3), URL: "https://post.url/0", Caption: "Check out our new product! #0", Reach: 5000, Likes: 400, Comments: 40},
			{InfluencerID: AlphaID, Platform: "Instagram", Date: day(5), URL: "https://post.url/1", Caption: "Check out our new product! #1", Reach: 7000, Likes: 600, Comments: 60},
			{InfluencerID: AlphaID, Platform: "Instagram", Date: day(9), URL: "https://post.url/2", Caption: "Check out our new product! #2", Reach: 3000, Likes: 200, Comments: 20},
			{InfluencerID: GammaID, Platform: "Twitter", Date: day(2), URL: "https://post.url/3", Caption: "Check out our new product! #3", Reach: 20000, Likes: 900, Comments: 15},
			{InfluencerID: GammaID, Platform: "Twitter", Date: day(4), URL: "https://post.url/4", Caption: "Check out our new product! #4", Reach: 1000, Likes: 100, Comments: 10},
			{InfluencerID: OrphanID, Platform: "Twitter", Date: day(1), URL: "https://post.url/5", Caption: "Check out our new product! #5", Reach: 999, Likes: 9, Comments: 9},
		},
		Tracking: []types.TrackingEvent{
			{Source: types.TrackingSourceInfluencer, Campaign: "Campaign_A", InfluencerID: AlphaID, UserID: 1001, Product: "MuscleBlaze", Date: day(2), Orders: 1, Revenue: types.AmountFromFloat(500)},
			{Source: types.TrackingSourceInfluencer, Campaign: "Campaign_B", InfluencerID: BetaID, UserID: 1002, Product: "HKVitals", Date: day(3), Orders: 1, Revenue: types.AmountFromFloat(120.5)},
			{Source: types.TrackingSourceInfluencer, Campaign: "Campaign_A", InfluencerID: BetaID, UserID: 1003, Product: "MuscleBlaze", Date: day(4), Orders: 3, Revenue: types.AmountFromFloat(79.5)},
			{Source: types.TrackingSourceInfluencer, Campaign: "Campaign_C", InfluencerID: DeltaID, UserID: 1004, Product: "Gritzo", Date: day(6), Orders: 2, Revenue: types.AmountFromFloat(80)},
			{Source: types.TrackingSourceInfluencer, Campaign: "Campaign_C", InfluencerID: OrphanID, UserID: 1005, Product: "Gritzo", Date: day(7), Orders: 1, Revenue: types.AmountFromFloat(999)},
		},
		Payouts: []types.PayoutTerms{
			{InfluencerID: AlphaID, Basis: types.BasisPost, Rate: 100},
			{InfluencerID: BetaID, Basis: types.BasisOrder, Rate: 50},
			{InfluencerID: GammaID, Basis: types.BasisOrder, Rate: 75},
			{InfluencerID: DeltaID, Basis: types.BasisPost, Rate: 40},
		},
	}
}

// ScenarioSnapshot builds a snapshot of ScenarioDataset.
func ScenarioSnapshot(t testing.TB) *store.Snapshot {
	t.Helper()
	snap, err := store.New(ScenarioDataset())
	require.NoError(t, err)
	return snap
}

// AllSelection selects every observed value of snap.
func AllSelection(snap *store.Snapshot) types.Selection {
	return snap.Options().Selection()
}
