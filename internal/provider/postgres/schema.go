// Package postgres loads and seeds the entity tables in Postgres.
package postgres

const schemaDDL = `
CREATE TABLE IF NOT EXISTS influencers (
    id             INTEGER PRIMARY KEY,
    name           TEXT NOT NULL,
    category       TEXT NOT NULL,
    gender         TEXT NOT NULL,
    follower_count INTEGER NOT NULL DEFAULT 0,
    platform       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_influencers_platform ON influencers (platform);

CREATE TABLE IF NOT EXISTS posts (
    id            BIGSERIAL PRIMARY KEY,
    influencer_id INTEGER NOT NULL,
    platform      TEXT NOT NULL,
    posted_at     TIMESTAMPTZ NOT NULL,
    url           TEXT NOT NULL,
    caption       TEXT NOT NULL DEFAULT '',
    reach         INTEGER NOT NULL DEFAULT 0,
    likes         INTEGER NOT NULL DEFAULT 0,
    comments      INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_posts_influencer ON posts (influencer_id);

CREATE TABLE IF NOT EXISTS tracking_events (
    id            BIGSERIAL PRIMARY KEY,
    source        TEXT NOT NULL,
    campaign      TEXT NOT NULL,
    influencer_id INTEGER NOT NULL,
    user_id       INTEGER NOT NULL,
    product       TEXT NOT NULL,
    tracked_at    TIMESTAMPTZ NOT NULL,
    orders        INTEGER NOT NULL,
    revenue       NUMERIC(14, 2) NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tracking_influencer ON tracking_events (influencer_id);
CREATE INDEX IF NOT EXISTS idx_tracking_product ON tracking_events (product);

CREATE TABLE IF NOT EXISTS payout_terms (
    influencer_id INTEGER PRIMARY KEY,
    basis         TEXT NOT NULL,
    rate          DOUBLE PRECISION NOT NULL
);
`

// Row order is insertion order so that a reload reproduces the seeded dataset.
const (
	selectInfluencers = `SELECT id, name, category, gender, follower_count, platform FROM influencers ORDER BY id`
	selectPosts       = `SELECT influencer_id, platform, posted_at, url, caption, reach, likes, comments FROM posts ORDER BY id`
	selectTracking    = `SELECT source, campaign, influencer_id, user_id, product, tracked_at, orders, revenue::text FROM tracking_events ORDER BY id`
	selectPayouts     = `SELECT influencer_id, basis, rate FROM payout_terms ORDER BY influencer_id`
)
