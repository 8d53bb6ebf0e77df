package calc

import (
	"math"
	"testing"

	"blended_valuation/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// COST OF CAPITAL
// =============================================================================

func TestCostOfEquityCAPM(t *testing.T) {
	// SME defaults: 7.58% + 1.0 × 5% + 4%
	assert.InDelta(t, 0.1658, CostOfEquityCAPM(0.0758, 1.0, 0.05, 0.04), 1e-12)
	assert.InDelta(t, 0.04318+1.64*0.0418, CostOfEquityCAPM(0.04318, 1.64, 0.0418, 0), 1e-12)
}

func TestWACC(t *testing.T) {
	// 30% debt at 6% pre-tax, 15% tax, 70% equity at 16%
	got := WACC(0.06, 0.15, 0.3, 0.16, 0.7)
	assert.InDelta(t, 0.06*0.85*0.3+0.16*0.7, got, 1e-12)
}

func TestCapitalWeights(t *testing.T) {
	wd, we, ok := CapitalWeights(250, 750)
	require.True(t, ok)
	assert.InDelta(t, 0.25, wd, 1e-12)
	assert.InDelta(t, 0.75, we, 1e-12)

	_, _, ok = CapitalWeights(100, 0)
	assert.False(t, ok)
	_, _, ok = CapitalWeights(100, -50)
	assert.False(t, ok)
}

// =============================================================================
// DISCOUNTING
// =============================================================================

func TestTerminalValueGordonGrowth(t *testing.T) {
	tests := []struct {
		name   string
		cf     float64
		r      float64
		g      float64
		want   float64
		wantOK bool
	}{
		{"standard", 100, 0.10, 0.03, 100 * 1.03 / 0.07, true},
		{"zero growth", 100, 0.10, 0, 1000, true},
		{"rate equals growth", 100, 0.05, 0.05, 0, false},
		{"rate below growth", 100, 0.03, 0.05, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TerminalValueGordonGrowth(tt.cf, tt.r, tt.g)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.False(t, math.IsInf(got, 0))
		})
	}
}

func TestPresentValueOfCashFlows(t *testing.T) {
	flows := []float64{100, 100, 100}
	want := 100/1.1 + 100/math.Pow(1.1, 2) + 100/math.Pow(1.1, 3)
	assert.InDelta(t, want, PresentValueOfCashFlows(flows, 0.10), 1e-9)
	assert.Equal(t, 0.0, PresentValue(100, 0.1, -1))
}

func TestLinearFade(t *testing.T) {
	path := LinearFade(0.10, 0.03, 5)
	require.Len(t, path, 5)
	assert.Equal(t, 0.10, path[0])
	assert.Equal(t, 0.03, path[4])
	assert.InDelta(t, 0.0650, path[2], 1e-12)

	assert.Equal(t, []float64{0.07}, LinearFade(0.07, 0.03, 1))
	assert.Nil(t, LinearFade(0.07, 0.03, 0))
}

func TestProjectFromGrowth(t *testing.T) {
	got := ProjectFromGrowth(100, []float64{0.10, 0.10})
	require.Len(t, got, 2)
	assert.InDelta(t, 110, got[0], 1e-9)
	assert.InDelta(t, 121, got[1], 1e-9)
}

// =============================================================================
// GROWTH AND STATISTICS
// =============================================================================

func TestCalculateCAGR(t *testing.T) {
	// Sample revenue 683,795 -> 700,075 over one year
	got, ok := CalculateCAGR(683795, 700075, 1)
	require.True(t, ok)
	assert.InDelta(t, 700075.0/683795.0-1, got, 1e-12)

	_, ok = CalculateCAGR(-10, 100, 2)
	assert.False(t, ok)
	_, ok = CalculateCAGR(10, -100, 2)
	assert.False(t, ok)
	_, ok = CalculateCAGR(10, 100, 0)
	assert.False(t, ok)
}

func TestCAGRFromSeries(t *testing.T) {
	values := map[int]float64{2020: 100, 2021: 110, 2022: 121}
	got, ok := CAGRFromSeries(values, []int{2022, 2020, 2021})
	require.True(t, ok)
	assert.InDelta(t, 0.10, got, 1e-12)

	_, ok = CAGRFromSeries(values, []int{2022})
	assert.False(t, ok)
}

func TestLowerMedian(t *testing.T) {
	assert.Equal(t, 2.0, LowerMedian([]float64{3, 1, 2}))
	assert.Equal(t, 1.0, LowerMedian([]float64{4, 1}))
	assert.Equal(t, 0.0, LowerMedian(nil))
}

func TestMinMax(t *testing.T) {
	lo, hi := MinMax([]float64{5, -2, 9})
	assert.Equal(t, -2.0, lo)
	assert.Equal(t, 9.0, hi)
}

func TestWithinTolerance(t *testing.T) {
	assert.True(t, WithinTolerance(100.5, 100, 0.01))
	assert.False(t, WithinTolerance(102, 100, 0.01))
	assert.True(t, WithinTolerance(0, 0, 0.01))
}

// =============================================================================
// SIGN NORMALIZATION
// =============================================================================

func TestNormalizeSigns(t *testing.T) {
	cf := models.FinancialStatement{
		models.CashFlowFromOperations: {2022: 26952, 2023: -2917},
		models.CapitalExpenditures:    {2022: 9171, 2023: -13084},
		models.TaxesPaid:              {2022: 34112},
	}

	flips := NormalizeSigns(models.SectionCashFlow, cf)

	// Positive capex magnitude becomes an outflow, signed entries are untouched
	assert.Equal(t, -9171.0, cf[models.CapitalExpenditures][2022])
	assert.Equal(t, -13084.0, cf[models.CapitalExpenditures][2023])
	assert.Equal(t, -34112.0, cf[models.TaxesPaid][2022])
	assert.Equal(t, -2917.0, cf[models.CashFlowFromOperations][2023])
	assert.Len(t, flips, 2)

	bs := models.FinancialStatement{
		models.AccountsPayable:    {2023: -163061},
		models.ShareholdersEquity: {2023: -5},
	}
	NormalizeSigns(models.SectionBalance, bs)
	assert.Equal(t, 163061.0, bs[models.AccountsPayable][2023])
	assert.Equal(t, -5.0, bs[models.ShareholdersEquity][2023])
}

func TestScale(t *testing.T) {
	fs := models.FinancialStatement{models.RevenueSales: {2023: 700.075}}
	Scale(fs, 1000)
	assert.InDelta(t, 700075, fs[models.RevenueSales][2023], 1e-6)
}
