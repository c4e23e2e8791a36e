// Package export turns report tables into CSV files and ZIP bundles, and
// renders them as formatted strings for display.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/dwsmith1983/campaignlens/pkg/types"
)

// Table is a report table flattened to strings.
type Table struct {
	Name    types.TableName `json:"name"`
	Columns []string        `json:"columns"`
	Rows    [][]string      `json:"rows"`
}

var fileNames = map[types.TableName]string{
	types.TableCampaignSummary:   "Campaign_Performance.csv",
	types.TableTopInfluencers:    "Top_Influencers.csv",
	types.TableBottomInfluencers: "Bottom_Influencers.csv",
	types.TablePersonaSummary:    "Best_Personas.csv",
	types.TablePostEngagement:    "Post_Engagement_Overview.csv",
	types.TablePayoutSummary:     "Payout_Tracking.csv",
}

var columns = map[types.TableName][]string{
	types.TableCampaignSummary:   {"campaign", "orders", "revenue", "roas", "roi_percent"},
	types.TableTopInfluencers:    {"name", "influencer_id", "revenue", "total_payout", "roas"},
	types.TableBottomInfluencers: {"name", "influencer_id", "revenue", "total_payout", "roas"},
	types.TablePersonaSummary:    {"category", "gender", "revenue", "percent"},
	types.TablePostEngagement:    {"name", "influencer_id", "reach", "likes", "comments"},
	types.TablePayoutSummary:     {"name", "influencer_id", "basis", "rate", "orders", "total_payout"},
}

// FileName returns the name of t inside an export bundle.
func FileName(t types.TableName) string { return fileNames[t] }

// numberFormat renders the cells of one table.
type numberFormat struct {
	amount  func(types.Amount) string
	money   func(float64) string
	ratio   func(float64) string
	percent func(float64) string
}

var raw = numberFormat{amount: types.Amount.String, money: fullPrecision, ratio: fullPrecision, percent: fullPrecision}

func fullPrecision(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// Raw flattens table t of rep with full numeric precision.
func Raw(rep types.Report, t types.TableName) (Table, error) {
	return flatten(rep, t, raw)
}

func flatten(rep types.Report, t types.TableName, f numberFormat) (Table, error) {
	cols, ok := columns[t]
	if !ok {
		return Table{}, fmt.Errorf("%w: %q", types.ErrUnknownTable, t)
	}
	out := Table{Name: t, Columns: cols, Rows: [][]string{}}
	itoa := strconv.Itoa

	switch t {
	case types.TableCampaignSummary:
		for _, r := range rep.CampaignSummary {
			out.Rows = append(out.Rows, []string{r.Campaign, itoa(r.Orders), f.amount(r.Revenue), f.ratio(r.ROAS), f.percent(r.ROIPercent)})
		}
	case types.TableTopInfluencers, types.TableBottomInfluencers:
		rows := rep.TopInfluencers
		if t == types.TableBottomInfluencers {
			rows = rep.BottomInfluencers
		}
		for _, r := range rows {
			out.Rows = append(out.Rows, []string{r.Name, itoa(r.InfluencerID), f.amount(r.Revenue), f.money(r.TotalPayout), f.ratio(r.ROAS)})
		}
	case types.TablePersonaSummary:
		for _, r := range rep.PersonaSummary {
			out.Rows = append(out.Rows, []string{r.Category, r.Gender, f.amount(r.Revenue), f.percent(r.Percent)})
		}
	case types.TablePostEngagement:
		for _, r := range rep.PostEngagement {
			out.Rows = append(out.Rows, []string{r.Name, itoa(r.InfluencerID), itoa(r.Reach), itoa(r.Likes), itoa(r.Comments)})
		}
	case types.TablePayoutSummary:
		for _, r := range rep.PayoutSummary {
			out.Rows = append(out.Rows, []string{r.Name, itoa(r.InfluencerID), string(r.Basis), f.money(r.Rate), itoa(r.Orders), f.money(r.TotalPayout)})
		}
	}
	return out, nil
}

// WriteCSV writes table t of rep as CSV with a header row.
func WriteCSV(w io.Writer, rep types.Report, t types.TableName) error {
	tbl, err := Raw(rep, t)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(tbl.Columns); err != nil {
		return fmt.Errorf("writing %s header: %w", t, err)
	}
	if err := cw.WriteAll(tbl.Rows); err != nil {
		return fmt.Errorf("writing %s rows: %w", t, err)
	}
	return nil
}

// ReadCampaignSummary parses a campaign summary CSV written by WriteCSV.
func ReadCampaignSummary(r io.Reader) ([]types.CampaignRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(columns[types.TableCampaignSummary])
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading campaign summary: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("reading campaign summary: missing header")
	}

	rows := make([]types.CampaignRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		row := types.CampaignRow{Campaign: rec[0]}
		if row.Orders, err = strconv.Atoi(rec[1]); err != nil {
			return nil, fmt.Errorf("campaign summary line %d: orders: %w", i+2, err)
		}
		if row.Revenue, err = types.ParseAmount(rec[2]); err != nil {
			return nil, fmt.Errorf("campaign summary line %d: revenue: %w", i+2, err)
		}
		floats := []*float64{&row.ROAS, &row.ROIPercent}
		for j, dst := range floats {
			if *dst, err = strconv.ParseFloat(rec[j+3], 64); err != nil {
				return nil, fmt.Errorf("campaign summary line %d: %s: %w", i+2, columns[types.TableCampaignSummary][j+3], err)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
