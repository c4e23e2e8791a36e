package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"github.com/dwsmith1983/campaignlens/pkg/types"
)

// Load reads the four entity tables concurrently.
func (s *Store) Load(ctx context.Context) (*types.Dataset, error) {
	ds := &types.Dataset{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		ds.Influencers, err = queryRows(gctx, s, selectInfluencers, func(r pgx.Rows) (types.Influencer, error) {
			var inf types.Influencer
			err := r.Scan(&inf.ID, &inf.Name, &inf.Category, &inf.Gender, &inf.FollowerCount, &inf.Platform)
			return inf, err
		})
		return err
	})
	g.Go(func() error {
		var err error
		ds.Posts, err = queryRows(gctx, s, selectPosts, func(r pgx.Rows) (types.Post, error) {
			var p types.Post
			err := r.Scan(&p.InfluencerID, &p.Platform, &p.Date, &p.URL, &p.Caption, &p.Reach, &p.Likes, &p.Comments)
			p.Date = p.Date.UTC()
			return p, err
		})
		return err
	})
	g.Go(func() error {
		var err error
		ds.Tracking, err = queryRows(gctx, s, selectTracking, func(r pgx.Rows) (types.TrackingEvent, error) {
			var ev types.TrackingEvent
			var revenue string
			if err := r.Scan(&ev.Source, &ev.Campaign, &ev.InfluencerID, &ev.UserID, &ev.Product, &ev.Date, &ev.Orders, &revenue); err != nil {
				return ev, err
			}
			ev.Date = ev.Date.UTC()
			var err error
			ev.Revenue, err = types.ParseAmount(revenue)
			return ev, err
		})
		return err
	})
	g.Go(func() error {
		var err error
		ds.Payouts, err = queryRows(gctx, s, selectPayouts, func(r pgx.Rows) (types.PayoutTerms, error) {
			var p types.PayoutTerms
			var basis string
			err := r.Scan(&p.InfluencerID, &basis, &p.Rate)
			p.Basis = types.Basis(basis)
			return p, err
		})
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ds, nil
}

func queryRows[T any](ctx context.Context, s *Store, query string, scan func(pgx.Rows) (T, error)) ([]T, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres query: %w", err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres scan: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
