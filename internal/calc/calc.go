// Package calc holds the derived-metric formulas. Every ratio is guarded: a
// zero denominator yields 0 rather than NaN or Inf.
package calc

import (
	"math"

	"github.com/dwsmith1983/campaignlens/pkg/types"
)

// SafeDiv returns num/den, or 0 when den is 0.
func SafeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// TotalPayout derives an influencer's payout from its terms. Order-based
// payouts multiply tracked orders by the rate; post-based payouts multiply
// the influencer's post count by the rate, counting an influencer with no
// posts as one post. Unknown bases pay nothing.
func TotalPayout(basis types.Basis, rate float64, orders, posts int) float64 {
	switch basis {
	case types.BasisOrder:
		return float64(orders) * rate
	case types.BasisPost:
		if posts <= 0 {
			posts = 1
		}
		return float64(posts) * rate
	default:
		return 0
	}
}

// ROAS is return on ad spend: revenue / payout.
func ROAS(revenue, payout float64) float64 {
	return SafeDiv(revenue, payout)
}

// ROIPercent is (revenue - payout) / payout * 100.
func ROIPercent(revenue, payout float64) float64 {
	if payout == 0 {
		return 0
	}
	return (revenue - payout) / payout * 100
}

// CampaignROAS measures a campaign's revenue against the whole payout budget
// of the view, not a per-campaign budget.
func CampaignROAS(campaignRevenue, totalPayout float64) float64 {
	return SafeDiv(campaignRevenue, totalPayout)
}

// CampaignROIPercent splits the total payout evenly across the campaigns in
// view and computes ROI against that share. Payout is tracked per influencer,
// not per campaign, so the even split is an approximation; it is kept as is
// because changing it changes reported numbers.
func CampaignROIPercent(campaignRevenue, totalPayout float64, numCampaigns int) float64 {
	if numCampaigns <= 0 {
		return 0
	}
	return ROIPercent(campaignRevenue, totalPayout/float64(numCampaigns))
}

// SharePercent is part/total * 100 rounded to 2 decimals.
func SharePercent(part, total float64) float64 {
	return Round2(SafeDiv(part, total) * 100)
}

// Round2 rounds to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
