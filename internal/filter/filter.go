// Package filter applies a user selection to the entity store.
//
// Dimensions are AND-combined; values within a dimension are OR-combined.
// Membership is strict and case-sensitive, and an empty dimension matches
// nothing: "select all" is the caller's job (see types.Options.Selection).
package filter

import (
	"github.com/dwsmith1983/campaignlens/internal/store"
	"github.com/dwsmith1983/campaignlens/pkg/types"
)

// Result holds the two derived tables of one filter pass. Rows keep their
// source order.
type Result struct {
	Influencers []types.Influencer
	Tracking    []types.TrackingEvent
}

// InfluencerIDs returns the set of IDs in the filtered influencer table.
func (r Result) InfluencerIDs() map[int]bool {
	ids := make(map[int]bool, len(r.Influencers))
	for _, inf := range r.Influencers {
		ids[inf.ID] = true
	}
	return ids
}

// Apply filters influencers by platform, category and gender, then keeps the
// tracking events whose product is selected and whose influencer survived.
func Apply(snap *store.Snapshot, sel types.Selection) Result {
	platforms := toSet(sel.Platforms)
	categories := toSet(sel.Categories)
	genders := toSet(sel.Genders)
	products := toSet(sel.Products)

	var res Result
	kept := make(map[int]bool)
	for _, inf := range snap.Influencers() {
		if platforms[inf.Platform] && categories[inf.Category] && genders[inf.Gender] {
			res.Influencers = append(res.Influencers, inf)
			kept[inf.ID] = true
		}
	}
	if len(kept) == 0 {
		return res
	}

	for _, ev := range snap.Tracking() {
		if products[ev.Product] && kept[ev.InfluencerID] {
			res.Tracking = append(res.Tracking, ev)
		}
	}
	return res
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
