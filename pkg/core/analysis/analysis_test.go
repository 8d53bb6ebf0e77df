package analysis

import (
	"testing"

	"blended_valuation/pkg/core/testutil"
	"blended_valuation/pkg/core/validate"
	"blended_valuation/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyze(t *testing.T, raw models.RawInput) *Analysis {
	t.Helper()
	in, err := validate.ValidateInput(raw, validate.Options{IntegrityTolerance: 0.01})
	require.NoError(t, err)
	a := Analyze(in)
	require.NotNil(t, a)
	return a
}

func fy(a, b float64) map[string]any {
	return map[string]any{"2022": a, "2023": b}
}

func section(raw models.RawInput, s models.Section) map[string]any {
	return raw.Section(s).(map[string]any)
}

// =============================================================================
// SAMPLE STATEMENTS
// =============================================================================

func TestAnalyze_Sample(t *testing.T) {
	a := analyze(t, testutil.SampleRawInput())
	require.Len(t, a.Years, 2)
	assert.Equal(t, 2022, a.Years[0].Year)

	r, ok := a.Latest()
	require.True(t, ok)
	assert.Equal(t, 2023, r.Year)

	tests := []struct {
		name string
		got  *float64
		want float64
	}{
		{"gross margin", r.GrossMargin, (700075.0 - 529105) / 700075},
		{"ebit margin", r.EBITMargin, 34473.0 / 700075},
		{"net margin", r.NetMargin, 35964.0 / 700075},
		{"revenue growth", r.RevenueGrowth, (700075.0 - 683795) / 683795},
		{"dso", r.DSO, 78674.0 / 700075 * 365},
		{"dio", r.DIO, 243959.0 / 529105 * 365},
		{"dpo", r.DPO, 163061.0 / 529105 * 365},
		{"ccc", r.CCC, 96.82549032252767},
		{"nwc", r.NWC, 159572},
		{"delta nwc", r.DeltaNWC, 159572 - 106397},
		{"capex pct", r.CapexPercent, 13084.0 / 700075},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotNil(t, tt.got)
			assert.InDelta(t, tt.want, *tt.got, 1e-9)
		})
	}

	// No D&A reported
	assert.Nil(t, r.EBITDAMargin)
	assert.Nil(t, r.DAPercent)
	assert.Nil(t, a.Years[0].RevenueGrowth)
	assert.Nil(t, a.Years[0].DeltaNWC)
	require.NotNil(t, a.RevenueCAGR)
	assert.InDelta(t, 700075.0/683795-1, *a.RevenueCAGR, 1e-12)
	assert.Empty(t, a.Notes)
}

func TestAnalyze_DepreciationRatios(t *testing.T) {
	raw := testutil.SampleRawInput()
	section(raw, models.SectionIncome)["depreciation_amortization"] = fy(5000, 6000)

	r, _ := analyze(t, raw).Latest()
	require.NotNil(t, r.EBITDAMargin)
	assert.InDelta(t, (34473.0+6000)/700075, *r.EBITDAMargin, 1e-12)
	require.NotNil(t, r.DAPercent)
	assert.InDelta(t, 6000.0/700075, *r.DAPercent, 1e-12)
}

// =============================================================================
// MISSING INPUTS
// =============================================================================

func TestAnalyze_SkipsRatiosWithoutInputs(t *testing.T) {
	tests := []struct {
		name  string
		raw   func() models.RawInput
		check func(t *testing.T, r Ratios)
	}{
		{
			name: "no balance sheet",
			raw:  func() models.RawInput { return testutil.Without(testutil.SampleRawInput(), models.SectionBalance) },
			check: func(t *testing.T, r Ratios) {
				assert.NotNil(t, r.GrossMargin)
				assert.Nil(t, r.DSO)
				assert.Nil(t, r.CCC)
				assert.Nil(t, r.NWC)
				assert.Nil(t, r.DeltaNWC)
			},
		},
		{
			name: "no cogs",
			raw: func() models.RawInput {
				raw := testutil.SampleRawInput()
				delete(section(raw, models.SectionIncome), "cogs")
				return raw
			},
			check: func(t *testing.T, r Ratios) {
				assert.Nil(t, r.GrossMargin)
				assert.Nil(t, r.DIO)
				assert.Nil(t, r.DPO)
				assert.Nil(t, r.CCC)
				assert.NotNil(t, r.DSO)
				assert.NotNil(t, r.NWC)
			},
		},
		{
			name: "no income statement",
			raw:  func() models.RawInput { return testutil.Without(testutil.SampleRawInput(), models.SectionIncome) },
			check: func(t *testing.T, r Ratios) {
				assert.Nil(t, r.GrossMargin)
				assert.Nil(t, r.RevenueGrowth)
				assert.Nil(t, r.CapexPercent)
				assert.Nil(t, r.DSO)
				assert.NotNil(t, r.NWC)
			},
		},
		{
			name: "payables missing",
			raw: func() models.RawInput {
				raw := testutil.SampleRawInput()
				delete(section(raw, models.SectionBalance), "accounts_payable")
				return raw
			},
			check: func(t *testing.T, r Ratios) {
				assert.Nil(t, r.DPO)
				assert.Nil(t, r.CCC)
				assert.Nil(t, r.NWC)
				assert.NotNil(t, r.DIO)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok := analyze(t, tt.raw()).Latest()
			require.True(t, ok)
			tt.check(t, r)
		})
	}
}

func TestAnalyze_NoYears(t *testing.T) {
	assert.Nil(t, Analyze(nil))
	assert.Nil(t, Analyze(&models.ValuationInput{}))

	var a *Analysis
	_, ok := a.Latest()
	assert.False(t, ok)
}

// =============================================================================
// PP&E ROLL-FORWARD
// =============================================================================

func TestAnalyze_PPERollForward(t *testing.T) {
	tests := []struct {
		name    string
		ppe2023 float64
		notes   []string
	}{
		{"consistent", 120, nil},
		{"within tolerance", 125, nil},
		{"large gap", 200, []string{"ppe 2023: reported 200 differs from roll-forward 120 by 80"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := testutil.SampleRawInput()
			section(raw, models.SectionBalance)["ppe"] = fy(100, tt.ppe2023)
			section(raw, models.SectionCashFlow)["capital_expenditures"] = fy(-20, -30)
			section(raw, models.SectionIncome)["depreciation_amortization"] = fy(8, 10)

			assert.Equal(t, tt.notes, analyze(t, raw).Notes)
		})
	}
}
