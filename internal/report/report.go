// Package report runs one recomputation pass: filter, join, aggregate and
// derive every table of the dashboard for a selection.
package report

import (
	"cmp"
	"context"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dwsmith1983/campaignlens/internal/calc"
	"github.com/dwsmith1983/campaignlens/internal/filter"
	"github.com/dwsmith1983/campaignlens/internal/pipeline"
	"github.com/dwsmith1983/campaignlens/internal/store"
	"github.com/dwsmith1983/campaignlens/pkg/types"
)

// RankSize is the number of rows kept by the influencer rankings and the
// post engagement table.
const RankSize = 10

var tracer = otel.Tracer("github.com/dwsmith1983/campaignlens/internal/report")

// Build computes the full report for sel over snap. It holds no state
// between calls: the same snapshot and selection always give the same
// report.
func Build(ctx context.Context, snap *store.Snapshot, sel types.Selection) types.Report {
	ctx, span := tracer.Start(ctx, "report.Build", trace.WithAttributes(
		attribute.String("dataset.version", snap.Version()),
	))
	defer span.End()

	_, fs := tracer.Start(ctx, "filter")
	view := filter.Apply(snap, sel)
	fs.SetAttributes(
		attribute.Int("influencers", len(view.Influencers)),
		attribute.Int("events", len(view.Tracking)),
	)
	fs.End()

	_, ms := tracer.Start(ctx, "merge")
	merged := pipeline.Merge(view.Tracking, snap)
	ms.End()

	_, as := tracer.Start(ctx, "aggregate")
	totals := pipeline.Sum(merged)
	rep := types.Report{
		DatasetVersion:  snap.Version(),
		Selection:       sel,
		KPIs:            kpis(totals),
		CampaignSummary: campaignSummary(view.Tracking, totals.Payout),
		PersonaSummary:  personaSummary(merged),
		PostEngagement:  postEngagement(snap),
		PayoutSummary:   payoutSummary(snap),
	}
	rep.TopInfluencers, rep.BottomInfluencers = influencerRankings(merged)
	as.End()

	return rep
}

func kpis(t pipeline.Totals) types.KPIs {
	return types.KPIs{
		TotalRevenue: t.Revenue,
		TotalOrders:  t.Orders,
		TotalPayout:  t.Payout,
		ROAS:         calc.ROAS(t.Revenue.Float(), t.Payout),
		ROIPercent:   calc.ROIPercent(t.Revenue.Float(), t.Payout),
	}
}

func campaignSummary(tracking []types.TrackingEvent, totalPayout float64) []types.CampaignRow {
	groups := pipeline.ByCampaign(tracking)
	rows := make([]types.CampaignRow, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, types.CampaignRow{
			Campaign:   g.Campaign,
			Orders:     g.Orders,
			Revenue:    g.Revenue,
			ROAS:       calc.CampaignROAS(g.Revenue.Float(), totalPayout),
			ROIPercent: calc.CampaignROIPercent(g.Revenue.Float(), totalPayout, len(groups)),
		})
	}
	return rows
}

// influencerRankings returns the top and bottom influencers by ROAS.
// Influencers without a nonzero payout are never ranked. Ties keep group
// order.
func influencerRankings(merged []types.MergedRow) (top, bottom []types.InfluencerROASRow) {
	ranked := make([]types.InfluencerROASRow, 0)
	for _, g := range pipeline.ByInfluencer(merged) {
		if !g.HasPayout || g.Payout == 0 {
			continue
		}
		ranked = append(ranked, types.InfluencerROASRow{
			Name:         g.Name,
			InfluencerID: g.InfluencerID,
			Revenue:      g.Revenue,
			TotalPayout:  g.Payout,
			ROAS:         calc.ROAS(g.Revenue.Float(), g.Payout),
		})
	}

	top = slices.Clone(ranked)
	slices.SortStableFunc(top, func(a, b types.InfluencerROASRow) int { return cmp.Compare(b.ROAS, a.ROAS) })
	bottom = slices.Clone(ranked)
	slices.SortStableFunc(bottom, func(a, b types.InfluencerROASRow) int { return cmp.Compare(a.ROAS, b.ROAS) })
	return head(top, RankSize), head(bottom, RankSize)
}

func personaSummary(merged []types.MergedRow) []types.PersonaRow {
	groups := pipeline.ByPersona(merged)
	var total types.Amount
	for _, g := range groups {
		total += g.Revenue
	}
	rows := make([]types.PersonaRow, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, types.PersonaRow{
			Category: g.Category,
			Gender:   g.Gender,
			Revenue:  g.Revenue,
			Percent:  calc.SharePercent(g.Revenue.Float(), total.Float()),
		})
	}
	return rows
}

// postEngagement ranks influencers by total reach over all posts. It ignores
// the selection. Posts of unknown influencers keep an empty name.
func postEngagement(snap *store.Snapshot) []types.EngagementRow {
	groups := pipeline.PostEngagement(snap.Posts())
	rows := make([]types.EngagementRow, 0, len(groups))
	for _, g := range groups {
		inf, _ := snap.Influencer(g.InfluencerID)
		rows = append(rows, types.EngagementRow{
			Name:         inf.Name,
			InfluencerID: g.InfluencerID,
			Reach:        g.Reach,
			Likes:        g.Likes,
			Comments:     g.Comments,
		})
	}
	slices.SortStableFunc(rows, func(a, b types.EngagementRow) int { return cmp.Compare(b.Reach, a.Reach) })
	return head(rows, RankSize)
}

// payoutSummary lists every payout, highest first.
func payoutSummary(snap *store.Snapshot) []types.PayoutRow {
	payouts := snap.Payouts()
	rows := make([]types.PayoutRow, 0, len(payouts))
	for _, p := range payouts {
		inf, _ := snap.Influencer(p.InfluencerID)
		rows = append(rows, types.PayoutRow{
			Name:         inf.Name,
			InfluencerID: p.InfluencerID,
			Basis:        p.Basis,
			Rate:         p.Rate,
			Orders:       p.OrdersTotalForInfluencer,
			TotalPayout:  p.TotalPayout,
		})
	}
	slices.SortStableFunc(rows, func(a, b types.PayoutRow) int { return cmp.Compare(b.TotalPayout, a.TotalPayout) })
	return rows
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
