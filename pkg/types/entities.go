package types

import "time"

// Influencer is a creator profile.
type Influencer struct {
	ID            int    `json:"id" dynamodbav:"id"`
	Name          string `json:"name" dynamodbav:"name"`
	Category      string `json:"category" dynamodbav:"category"`
	Gender        string `json:"gender" dynamodbav:"gender"`
	FollowerCount int    `json:"followerCount" dynamodbav:"followerCount"`
	Platform      string `json:"platform" dynamodbav:"platform"`
}

// Post is a single social post made by an influencer.
type Post struct {
	InfluencerID int       `json:"influencerId" dynamodbav:"influencerId"`
	Platform     string    `json:"platform" dynamodbav:"platform"`
	Date         time.Time `json:"date" dynamodbav:"date"`
	URL          string    `json:"url" dynamodbav:"url"`
	Caption      string    `json:"caption" dynamodbav:"caption"`
	Reach        int       `json:"reach" dynamodbav:"reach"`
	Likes        int       `json:"likes" dynamodbav:"likes"`
	Comments     int       `json:"comments" dynamodbav:"comments"`
}

// TrackingEvent is one attributed conversion. Revenue is attributed per
// event, not per order, and is stored in DynamoDB as whole paise.
type TrackingEvent struct {
	Source       string    `json:"source" dynamodbav:"source"`
	Campaign     string    `json:"campaign" dynamodbav:"campaign"`
	InfluencerID int       `json:"influencerId" dynamodbav:"influencerId"`
	UserID       int       `json:"userId" dynamodbav:"userId"`
	Product      string    `json:"product" dynamodbav:"product"`
	Date         time.Time `json:"date" dynamodbav:"date"`
	Orders       int       `json:"orders" dynamodbav:"orders"`
	Revenue      Amount    `json:"revenue" dynamodbav:"revenuePaise"`
}

// PayoutTerms is the stored part of a payout record. Everything else about a
// payout is derived.
type PayoutTerms struct {
	InfluencerID int     `json:"influencerId" dynamodbav:"influencerId"`
	Basis        Basis   `json:"basis" dynamodbav:"basis"`
	Rate         float64 `json:"rate" dynamodbav:"rate"`
}

// Payout is a PayoutTerms record with its derived columns.
type Payout struct {
	InfluencerID             int     `json:"influencerId"`
	Basis                    Basis   `json:"basis"`
	Rate                     float64 `json:"rate"`
	OrdersTotalForInfluencer int     `json:"ordersTotalForInfluencer"`
	PostCount                int     `json:"postCount"`
	TotalPayout              float64 `json:"totalPayout"`
}

// Dataset is the raw output of a source: the four entity tables as loaded.
type Dataset struct {
	Influencers []Influencer    `json:"influencers"`
	Posts       []Post          `json:"posts"`
	Tracking    []TrackingEvent `json:"tracking"`
	Payouts     []PayoutTerms   `json:"payouts"`
}

// MergedRow is one tracking event left-joined with its payout and influencer
// attributes. HasPayout and HasInfluencer mark whether each join matched;
// unmatched fields keep their zero values.
type MergedRow struct {
	Campaign        string    `json:"campaign"`
	InfluencerID    int       `json:"influencerId"`
	UserID          int       `json:"userId"`
	Product         string    `json:"product"`
	Date            time.Time `json:"date"`
	OrdersFromEvent int       `json:"ordersFromEvent"`
	Revenue         Amount    `json:"revenue"`

	HasPayout                bool    `json:"hasPayout"`
	Basis                    Basis   `json:"basis,omitempty"`
	Rate                     float64 `json:"rate,omitempty"`
	OrdersTotalForInfluencer int     `json:"ordersTotalForInfluencer,omitempty"`
	TotalPayout              float64 `json:"totalPayout,omitempty"`

	HasInfluencer bool   `json:"hasInfluencer"`
	Name          string `json:"name,omitempty"`
	Category      string `json:"category,omitempty"`
	Gender        string `json:"gender,omitempty"`
}
