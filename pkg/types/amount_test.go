package types_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwsmith1983/campaignlens/pkg/types"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want types.Amount
	}{
		{"0", 0},
		{"512.25", 51225},
		{"120.5", 12050},
		{"7.", 700},
		{".07", 7},
		{"-0.07", -7},
		{"+3", 300},
		{" 42.10 ", 4210},
		{"1.006", 101},
		{"1.994", 199},
		{"2.5e2", 25000},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := types.ParseAmount(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	for _, in := range []string{"", "-", ".", "abc", "1,000", "NaN", "Inf", "--1"} {
		_, err := types.ParseAmount(in)
		assert.Error(t, err, in)
	}
}

func TestAmount_String(t *testing.T) {
	assert.Equal(t, "187940.06", types.Amount(18794006).String())
	assert.Equal(t, "0.00", types.Amount(0).String())
	assert.Equal(t, "-0.07", types.Amount(-7).String())
	assert.Equal(t, "-12.50", types.Amount(-1250).String())
}

func TestAmountFromFloat(t *testing.T) {
	assert.Equal(t, types.Amount(12050), types.AmountFromFloat(120.5))
	assert.Equal(t, types.Amount(-12050), types.AmountFromFloat(-120.5))
	assert.Equal(t, types.Amount(3), types.AmountFromFloat(0.025))
	assert.InDelta(t, 120.5, types.Amount(12050).Float(), 1e-12)
}

func TestAmount_SumIsExact(t *testing.T) {
	values := []string{"187.94", "0.06", "1234.56", "999.99", "100.01", "0.10", "0.20"}
	var forward, backward types.Amount
	for i := range values {
		a, err := types.ParseAmount(values[i])
		require.NoError(t, err)
		forward += a
		b, err := types.ParseAmount(values[len(values)-1-i])
		require.NoError(t, err)
		backward += b
	}
	assert.Equal(t, forward, backward)
	assert.Equal(t, "2522.86", forward.String())
}

func TestAmount_JSON(t *testing.T) {
	data, err := json.Marshal(types.KPIs{TotalRevenue: types.AmountFromFloat(780.5)})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"totalRevenue":780.50`)

	var k types.KPIs
	require.NoError(t, json.Unmarshal(data, &k))
	assert.Equal(t, types.Amount(78050), k.TotalRevenue)

	var quoted struct {
		V types.Amount `json:"v"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"v":"12.3"}`), &quoted))
	assert.Equal(t, types.Amount(1230), quoted.V)
	assert.Error(t, json.Unmarshal([]byte(`{"v":"x"}`), &quoted))
}
