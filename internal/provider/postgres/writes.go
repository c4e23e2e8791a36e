package postgres

import (
	"context"
	"fmt"
	"math/big"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/dwsmith1983/campaignlens/pkg/types"
)

// Save replaces the contents of the entity tables with ds in one transaction.
func (s *Store) Save(ctx context.Context, ds *types.Dataset) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `TRUNCATE influencers, posts, tracking_events, payout_terms RESTART IDENTITY`); err != nil {
		return fmt.Errorf("postgres truncate: %w", err)
	}

	copies := []struct {
		table string
		cols  []string
		rows  [][]any
	}{
		{"influencers", []string{"id", "name", "category", "gender", "follower_count", "platform"}, influencerRows(ds.Influencers)},
		{"posts", []string{"influencer_id", "platform", "posted_at", "url", "caption", "reach", "likes", "comments"}, postRows(ds.Posts)},
		{"tracking_events", []string{"source", "campaign", "influencer_id", "user_id", "product", "tracked_at", "orders", "revenue"}, trackingRows(ds.Tracking)},
		{"payout_terms", []string{"influencer_id", "basis", "rate"}, payoutRows(ds.Payouts)},
	}
	for _, c := range copies {
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{c.table}, c.cols, pgx.CopyFromRows(c.rows)); err != nil {
			return fmt.Errorf("postgres copy %s: %w", c.table, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres commit: %w", err)
	}
	return nil
}

func influencerRows(in []types.Influencer) [][]any {
	rows := make([][]any, 0, len(in))
	for _, inf := range in {
		rows = append(rows, []any{inf.ID, inf.Name, inf.Category, inf.Gender, inf.FollowerCount, inf.Platform})
	}
	return rows
}

func postRows(in []types.Post) [][]any {
	rows := make([][]any, 0, len(in))
	for _, p := range in {
		rows = append(rows, []any{p.InfluencerID, p.Platform, p.Date, p.URL, p.Caption, p.Reach, p.Likes, p.Comments})
	}
	return rows
}

func trackingRows(in []types.TrackingEvent) [][]any {
	rows := make([][]any, 0, len(in))
	for _, ev := range in {
		rows = append(rows, []any{ev.Source, ev.Campaign, ev.InfluencerID, ev.UserID, ev.Product, ev.Date, ev.Orders, numeric(ev.Revenue)})
	}
	return rows
}

func payoutRows(in []types.PayoutTerms) [][]any {
	rows := make([][]any, 0, len(in))
	for _, p := range in {
		rows = append(rows, []any{p.InfluencerID, string(p.Basis), p.Rate})
	}
	return rows
}

// numeric encodes a as an exact NUMERIC with two decimal places.
func numeric(a types.Amount) pgtype.Numeric {
	return pgtype.Numeric{Int: big.NewInt(int64(a)), Exp: -2, Valid: true}
}
