package pipeline

import (
	"cmp"
	"slices"

	"github.com/dwsmith1983/campaignlens/pkg/types"
)

// All grouped outputs are ordered ascending by group key so that identical
// inputs always produce identical tables.

// CampaignTotals is the sum of orders and revenue for one campaign.
type CampaignTotals struct {
	Campaign string
	Orders   int
	Revenue  types.Amount
}

// InfluencerTotals is the revenue of one influencer with its payout. Payout is
// the mean total_payout over the rows that carried one; it is constant per
// influencer, so the mean equals the influencer's payout.
type InfluencerTotals struct {
	Name         string
	InfluencerID int
	Revenue      types.Amount
	Payout       float64
	HasPayout    bool
}

// PersonaTotals is the revenue of one (category, gender) persona.
type PersonaTotals struct {
	Category string
	Gender   string
	Revenue  types.Amount
}

// EngagementTotals sums post engagement for one influencer.
type EngagementTotals struct {
	InfluencerID int
	Reach        int
	Likes        int
	Comments     int
}

// Totals are the global sums over a merged view.
type Totals struct {
	Revenue types.Amount
	Orders  int
	Payout  float64
}

// Sum computes the global totals of a merged view. Payout is summed per row,
// so an influencer with several events contributes its payout once per event.
func Sum(rows []types.MergedRow) Totals {
	var t Totals
	for _, r := range rows {
		t.Revenue += r.Revenue
		t.Orders += r.OrdersFromEvent
		t.Payout += r.TotalPayout
	}
	return t
}

// ByCampaign groups tracking events by campaign.
func ByCampaign(tracking []types.TrackingEvent) []CampaignTotals {
	idx := make(map[string]int)
	var out []CampaignTotals
	for _, ev := range tracking {
		i, ok := idx[ev.Campaign]
		if !ok {
			i = len(out)
			idx[ev.Campaign] = i
			out = append(out, CampaignTotals{Campaign: ev.Campaign})
		}
		out[i].Orders += ev.Orders
		out[i].Revenue += ev.Revenue
	}
	slices.SortFunc(out, func(a, b CampaignTotals) int { return cmp.Compare(a.Campaign, b.Campaign) })
	return out
}

type influencerKey struct {
	name string
	id   int
}

// ByInfluencer groups merged rows by (name, influencer ID). Rows without an
// influencer match have no name and are dropped.
func ByInfluencer(rows []types.MergedRow) []InfluencerTotals {
	type acc struct {
		InfluencerTotals
		payoutSum float64
		payoutN   int
	}
	idx := make(map[influencerKey]int)
	var groups []acc
	for _, r := range rows {
		if !r.HasInfluencer {
			continue
		}
		k := influencerKey{r.Name, r.InfluencerID}
		i, ok := idx[k]
		if !ok {
			i = len(groups)
			idx[k] = i
			groups = append(groups, acc{InfluencerTotals: InfluencerTotals{Name: r.Name, InfluencerID: r.InfluencerID}})
		}
		groups[i].Revenue += r.Revenue
		if r.HasPayout {
			groups[i].payoutSum += r.TotalPayout
			groups[i].payoutN++
		}
	}

	out := make([]InfluencerTotals, len(groups))
	for i, g := range groups {
		out[i] = g.InfluencerTotals
		if g.payoutN > 0 {
			out[i].Payout = g.payoutSum / float64(g.payoutN)
			out[i].HasPayout = true
		}
	}
	slices.SortFunc(out, func(a, b InfluencerTotals) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.InfluencerID, b.InfluencerID)
	})
	return out
}

type personaKey struct {
	category string
	gender   string
}

// ByPersona groups merged rows by (category, gender). Rows without an
// influencer match are dropped.
func ByPersona(rows []types.MergedRow) []PersonaTotals {
	idx := make(map[personaKey]int)
	var out []PersonaTotals
	for _, r := range rows {
		if !r.HasInfluencer {
			continue
		}
		k := personaKey{r.Category, r.Gender}
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, PersonaTotals{Category: r.Category, Gender: r.Gender})
		}
		out[i].Revenue += r.Revenue
	}
	slices.SortFunc(out, func(a, b PersonaTotals) int {
		if c := cmp.Compare(a.Category, b.Category); c != 0 {
			return c
		}
		return cmp.Compare(a.Gender, b.Gender)
	})
	return out
}

// PostEngagement groups posts by influencer ID. It reads the post table
// directly and is independent of the tracking and payout join.
func PostEngagement(posts []types.Post) []EngagementTotals {
	idx := make(map[int]int)
	var out []EngagementTotals
	for _, p := range posts {
		i, ok := idx[p.InfluencerID]
		if !ok {
			i = len(out)
			idx[p.InfluencerID] = i
			out = append(out, EngagementTotals{InfluencerID: p.InfluencerID})
		}
		out[i].Reach += p.Reach
		out[i].Likes += p.Likes
		out[i].Comments += p.Comments
	}
	slices.SortFunc(out, func(a, b EngagementTotals) int { return cmp.Compare(a.InfluencerID, b.InfluencerID) })
	return out
}
