package export

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/dwsmith1983/campaignlens/pkg/types"
)

var printer = message.NewPrinter(language.English)

// Currency formats a KPI amount in rupees without decimals, e.g. ₹1,235.
func Currency(v float64) string { return printer.Sprintf("₹%.0f", rounded(v, 0)) }

// CurrencyLabel formats a table amount in rupees with 2 decimals.
func CurrencyLabel(v float64) string { return printer.Sprintf("₹%.2f", rounded(v, 2)) }

// Ratio formats a ratio with 2 decimals.
func Ratio(v float64) string { return printer.Sprintf("%.2f", rounded(v, 2)) }

// Percent formats a percentage with 2 decimals and a % suffix.
func Percent(v float64) string { return printer.Sprintf("%.2f%%", rounded(v, 2)) }

// rounded rounds half away from zero and drops the sign of -0.
func rounded(v float64, digits int) float64 {
	p := math.Pow10(digits)
	r := math.Round(v*p) / p
	if r == 0 {
		return 0
	}
	return r
}

var display = numberFormat{
	amount:  func(a types.Amount) string { return CurrencyLabel(a.Float()) },
	money:   CurrencyLabel,
	ratio:   Ratio,
	percent: Percent,
}

// Display flattens table t of rep with display formatting.
func Display(rep types.Report, t types.TableName) (Table, error) {
	return flatten(rep, t, display)
}

// KPIHeader is the formatted headline row.
type KPIHeader struct {
	TotalRevenue string `json:"totalRevenue"`
	TotalOrders  string `json:"totalOrders"`
	ROAS         string `json:"roas"`
	ROIPercent   string `json:"roiPercent"`
}

// DisplayKPIs formats k for the headline row.
func DisplayKPIs(k types.KPIs) KPIHeader {
	return KPIHeader{
		TotalRevenue: Currency(k.TotalRevenue.Float()),
		TotalOrders:  printer.Sprintf("%d", k.TotalOrders),
		ROAS:         Ratio(k.ROAS),
		ROIPercent:   Percent(k.ROIPercent),
	}
}
