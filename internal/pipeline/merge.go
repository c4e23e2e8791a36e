// Package pipeline joins filtered tracking events with payouts and influencer
// attributes and computes the grouped sums the report is built from.
package pipeline

import (
	"github.com/dwsmith1983/campaignlens/internal/store"
	"github.com/dwsmith1983/campaignlens/pkg/types"
)

// Merge left-joins tracking events with payouts and then with influencer
// attributes, both on influencer ID. Every event yields exactly one row, in
// input order; unmatched joins leave their fields zero and their Has flag
// false.
func Merge(tracking []types.TrackingEvent, snap *store.Snapshot) []types.MergedRow {
	if len(tracking) == 0 {
		return nil
	}
	rows := make([]types.MergedRow, 0, len(tracking))
	for _, ev := range tracking {
		row := types.MergedRow{
			Campaign:        ev.Campaign,
			InfluencerID:    ev.InfluencerID,
			UserID:          ev.UserID,
			Product:         ev.Product,
			Date:            ev.Date,
			OrdersFromEvent: ev.Orders,
			Revenue:         ev.Revenue,
		}
		if p, ok := snap.Payout(ev.InfluencerID); ok {
			row.HasPayout = true
			row.Basis = p.Basis
			row.Rate = p.Rate
			row.OrdersTotalForInfluencer = p.OrdersTotalForInfluencer
			row.TotalPayout = p.TotalPayout
		}
		if inf, ok := snap.Influencer(ev.InfluencerID); ok {
			row.HasInfluencer = true
			row.Name = inf.Name
			row.Category = inf.Category
			row.Gender = inf.Gender
		}
		rows = append(rows, row)
	}
	return rows
}
