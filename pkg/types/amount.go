package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Amount is a currency value held in hundredths (paise). Revenue is summed as
// Amount so totals are exact regardless of grouping order.
type Amount int64

// AmountFromFloat rounds v to the nearest hundredth, half away from zero.
func AmountFromFloat(v float64) Amount {
	return Amount(math.Round(v * 100))
}

// ParseAmount reads a decimal such as "1234.5" or "-0.07". Plain decimals
// with at most two fraction digits convert exactly; anything else is parsed as
// a float and rounded to the nearest hundredth.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	whole, frac, _ := strings.Cut(s, ".")
	neg := strings.HasPrefix(whole, "-")
	digits := strings.TrimLeft(whole, "+-")
	if len(whole)-len(digits) <= 1 && digits+frac != "" && len(frac) <= 2 &&
		len(digits) <= 15 && allDigits(digits) && allDigits(frac) {
		var units int64
		for i := 0; i < len(digits); i++ {
			units = units*10 + int64(digits[i]-'0')
		}
		cents := int64(0)
		for i := 0; i < 2; i++ {
			cents *= 10
			if i < len(frac) {
				cents += int64(frac[i] - '0')
			}
		}
		a := Amount(units*100 + cents)
		if neg {
			a = -a
		}
		return a, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return AmountFromFloat(f), nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Float returns a as a float64 for ratio arithmetic and display.
func (a Amount) Float() float64 { return float64(a) / 100 }

// String renders a with exactly two decimals, e.g. "187940.06".
func (a Amount) String() string {
	sign := ""
	v := int64(a)
	if v < 0 {
		sign, v = "-", -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON encodes a as a JSON number with two decimals.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (a *Amount) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		return nil
	}
	v, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}
