package types

// KPIs are the headline totals for the current view.
type KPIs struct {
	TotalRevenue Amount  `json:"totalRevenue"`
	TotalOrders  int     `json:"totalOrders"`
	TotalPayout  float64 `json:"totalPayout"`
	ROAS         float64 `json:"roas"`
	ROIPercent   float64 `json:"roiPercent"`
}

// CampaignRow is one row of the campaign summary.
type CampaignRow struct {
	Campaign   string  `json:"campaign"`
	Orders     int     `json:"orders"`
	Revenue    Amount  `json:"revenue"`
	ROAS       float64 `json:"roas"`
	ROIPercent float64 `json:"roiPercent"`
}

// InfluencerROASRow is one row of the top/bottom influencer rankings.
type InfluencerROASRow struct {
	Name         string  `json:"name"`
	InfluencerID int     `json:"influencerId"`
	Revenue      Amount  `json:"revenue"`
	TotalPayout  float64 `json:"totalPayout"`
	ROAS         float64 `json:"roas"`
}

// PersonaRow is the revenue of one (category, gender) persona.
type PersonaRow struct {
	Category string  `json:"category"`
	Gender   string  `json:"gender"`
	Revenue  Amount  `json:"revenue"`
	Percent  float64 `json:"percent"`
}

// EngagementRow sums post engagement for one influencer.
type EngagementRow struct {
	Name         string `json:"name"`
	InfluencerID int    `json:"influencerId"`
	Reach        int    `json:"reach"`
	Likes        int    `json:"likes"`
	Comments     int    `json:"comments"`
}

// PayoutRow is one line of payout tracking.
type PayoutRow struct {
	Name         string  `json:"name"`
	InfluencerID int     `json:"influencerId"`
	Basis        Basis   `json:"basis"`
	Rate         float64 `json:"rate"`
	Orders       int     `json:"orders"`
	TotalPayout  float64 `json:"totalPayout"`
}

// Report is the full output of one recomputation pass.
type Report struct {
	DatasetVersion    string              `json:"datasetVersion"`
	Selection         Selection           `json:"selection"`
	KPIs              KPIs                `json:"kpis"`
	CampaignSummary   []CampaignRow       `json:"campaignSummary"`
	TopInfluencers    []InfluencerROASRow `json:"topInfluencers"`
	BottomInfluencers []InfluencerROASRow `json:"bottomInfluencers"`
	PersonaSummary    []PersonaRow        `json:"personaSummary"`
	PostEngagement    []EngagementRow     `json:"postEngagement"`
	PayoutSummary     []PayoutRow         `json:"payoutSummary"`
}
