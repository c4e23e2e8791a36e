// Package sqlite loads and seeds the entity tables in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dwsmith1983/campaignlens/pkg/types"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS influencers (
    id             INTEGER PRIMARY KEY,
    name           TEXT NOT NULL,
    category       TEXT NOT NULL,
    gender         TEXT NOT NULL,
    follower_count INTEGER NOT NULL DEFAULT 0,
    platform       TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS posts (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    influencer_id INTEGER NOT NULL,
    platform      TEXT NOT NULL,
    posted_at     TEXT NOT NULL,
    url           TEXT NOT NULL,
    caption       TEXT NOT NULL DEFAULT '',
    reach         INTEGER NOT NULL DEFAULT 0,
    likes         INTEGER NOT NULL DEFAULT 0,
    comments      INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_posts_influencer ON posts (influencer_id);
CREATE TABLE IF NOT EXISTS tracking_events (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    source        TEXT NOT NULL,
    campaign      TEXT NOT NULL,
    influencer_id INTEGER NOT NULL,
    user_id       INTEGER NOT NULL,
    product       TEXT NOT NULL,
    tracked_at    TEXT NOT NULL,
    orders        INTEGER NOT NULL,
    revenue       REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tracking_influencer ON tracking_events (influencer_id);
CREATE TABLE IF NOT EXISTS payout_terms (
    influencer_id INTEGER PRIMARY KEY,
    basis         TEXT NOT NULL,
    rate          REAL NOT NULL
);
`

// Store is a SQLite-backed entity source.
type Store struct {
	db   *sql.DB
	path string
}

// New opens (creating if needed) the database at path and applies the schema.
func New(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite source: path required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite open %s: %w", path, err)
	}
	// A single connection keeps writers from tripping over SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite migrate: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Name returns the source identifier.
func (s *Store) Name() string { return string(types.SourceSQLite) }

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load reads the four entity tables.
func (s *Store) Load(ctx context.Context) (*types.Dataset, error) {
	ds := &types.Dataset{}
	var err error

	ds.Influencers, err = queryRows(ctx, s.db,
		`SELECT id, name, category, gender, follower_count, platform FROM influencers ORDER BY id`,
		func(r *sql.Rows) (types.Influencer, error) {
			var inf types.Influencer
			err := r.Scan(&inf.ID, &inf.Name, &inf.Category, &inf.Gender, &inf.FollowerCount, &inf.Platform)
			return inf, err
		})
	if err != nil {
		return nil, err
	}

	ds.Posts, err = queryRows(ctx, s.db,
		`SELECT influencer_id, platform, posted_at, url, caption, reach, likes, comments FROM posts ORDER BY id`,
		func(r *sql.Rows) (types.Post, error) {
			var p types.Post
			var date string
			if err := r.Scan(&p.InfluencerID, &p.Platform, &date, &p.URL, &p.Caption, &p.Reach, &p.Likes, &p.Comments); err != nil {
				return p, err
			}
			d, err := parseTime(date)
			p.Date = d
			return p, err
		})
	if err != nil {
		return nil, err
	}

	ds.Tracking, err = queryRows(ctx, s.db,
		`SELECT source, campaign, influencer_id, user_id, product, tracked_at, orders, revenue FROM tracking_events ORDER BY id`,
		func(r *sql.Rows) (types.TrackingEvent, error) {
			var ev types.TrackingEvent
			var date string
			var revenue float64
			if err := r.Scan(&ev.Source, &ev.Campaign, &ev.InfluencerID, &ev.UserID, &ev.Product, &date, &ev.Orders, &revenue); err != nil {
				return ev, err
			}
			ev.Revenue = types.AmountFromFloat(revenue)
			d, err := parseTime(date)
			ev.Date = d
			return ev, err
		})
	if err != nil {
		return nil, err
	}

	ds.Payouts, err = queryRows(ctx, s.db,
		`SELECT influencer_id, basis, rate FROM payout_terms ORDER BY influencer_id`,
		func(r *sql.Rows) (types.PayoutTerms, error) {
			var p types.PayoutTerms
			var basis string
			err := r.Scan(&p.InfluencerID, &basis, &p.Rate)
			p.Basis = types.Basis(basis)
			return p, err
		})
	if err != nil {
		return nil, err
	}
	return ds, nil
}

func queryRows[T any](ctx context.Context, db *sql.DB, query string, scan func(*sql.Rows) (T, error)) ([]T, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sqlite query: %w", err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite scan: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

// Save replaces the contents of the entity tables with ds in one transaction.
func (s *Store) Save(ctx context.Context, ds *types.Dataset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"influencers", "posts", "tracking_events", "payout_terms"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("sqlite clear %s: %w", table, err)
		}
	}

	inserts := []struct {
		query string
		rows  [][]any
	}{
		{`INSERT INTO influencers (id, name, category, gender, follower_count, platform) VALUES (?, ?, ?, ?, ?, ?)`, influencerArgs(ds.Influencers)},
		{`INSERT INTO posts (influencer_id, platform, posted_at, url, caption, reach, likes, comments) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, postArgs(ds.Posts)},
		{`INSERT INTO tracking_events (source, campaign, influencer_id, user_id, product, tracked_at, orders, revenue) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, trackingArgs(ds.Tracking)},
		{`INSERT INTO payout_terms (influencer_id, basis, rate) VALUES (?, ?, ?)`, payoutArgs(ds.Payouts)},
	}
	for _, ins := range inserts {
		if err := execAll(ctx, tx, ins.query, ins.rows); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite commit: %w", err)
	}
	return nil
}

func execAll(ctx context.Context, tx *sql.Tx, query string, rows [][]any) error {
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("sqlite prepare: %w", err)
	}
	defer stmt.Close()
	for _, args := range rows {
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("sqlite insert: %w", err)
		}
	}
	return nil
}

func influencerArgs(in []types.Influencer) [][]any {
	rows := make([][]any, 0, len(in))
	for _, inf := range in {
		rows = append(rows, []any{inf.ID, inf.Name, inf.Category, inf.Gender, inf.FollowerCount, inf.Platform})
	}
	return rows
}

func postArgs(in []types.Post) [][]any {
	rows := make([][]any, 0, len(in))
	for _, p := range in {
		rows = append(rows, []any{p.InfluencerID, p.Platform, formatTime(p.Date), p.URL, p.Caption, p.Reach, p.Likes, p.Comments})
	}
	return rows
}

func trackingArgs(in []types.TrackingEvent) [][]any {
	rows := make([][]any, 0, len(in))
	for _, ev := range in {
		rows = append(rows, []any{ev.Source, ev.Campaign, ev.InfluencerID, ev.UserID, ev.Product, formatTime(ev.Date), ev.Orders, ev.Revenue.Float()})
	}
	return rows
}

func payoutArgs(in []types.PayoutTerms) [][]any {
	rows := make([][]any, 0, len(in))
	for _, p := range in {
		rows = append(rows, []any{p.InfluencerID, string(p.Basis), p.Rate})
	}
	return rows
}
