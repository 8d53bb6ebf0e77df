package valuation

import (
	"blended_valuation/pkg/models"
)

// =============================================================================
// FUNDAMENTALS EXTRACTION
// =============================================================================
// Helpers read normalized statements: expenses are negative, balance positions positive.

// Source labels record how a figure was obtained.
const (
	SourceReported      = "reported"
	SourceReconstructed = "reconstructed"
)

// EBIT returns operating profit for year: reported, else gross profit + opex + other
// operating, else revenue + cogs + opex + other operating.
func EBIT(is models.FinancialStatement, year int) (float64, string, bool) {
	if v, ok := is.Value(models.OperatingProfitEBIT, year); ok {
		return v, SourceReported, true
	}
	opex, hasOpex := is.Value(models.OperatingExpenses, year)
	if !hasOpex {
		return 0, "", false
	}
	other, _ := is.Value(models.OtherOperatingIncomeExpense, year)
	if gp, ok := is.Value(models.GrossProfit, year); ok {
		return gp + opex + other, SourceReconstructed, true
	}
	revenue, hasRev := is.Value(models.RevenueSales, year)
	cogs, hasCOGS := is.Value(models.COGS, year)
	if hasRev && hasCOGS {
		return revenue + cogs + opex + other, SourceReconstructed, true
	}
	return 0, "", false
}

// Earnings is the operating earnings figure matched against an EV/EBITDA multiple.
type Earnings struct {
	Basis  string  `json:"basis"` // ebitda or ebit
	Value  float64 `json:"value"`
	EBIT   float64 `json:"ebit"`
	DA     float64 `json:"depreciation_amortization,omitempty"`
	Source string  `json:"ebit_source"`
}

// EarningsBasis returns EBITDA = EBIT - D&A (D&A negative) when D&A is reported, else EBIT.
func EarningsBasis(is models.FinancialStatement, year int) (Earnings, bool) {
	ebit, source, ok := EBIT(is, year)
	if !ok {
		return Earnings{}, false
	}
	if da, ok := is.Value(models.DepreciationAmortization, year); ok {
		return Earnings{Basis: "ebitda", Value: ebit - da, EBIT: ebit, DA: da, Source: source}, true
	}
	return Earnings{Basis: "ebit", Value: ebit, EBIT: ebit, Source: source}, true
}

// TotalDebt sums short and long term debt for year.
func TotalDebt(bs models.FinancialStatement, year int) (float64, bool) {
	st, hasST := bs.Value(models.ShortTermDebt, year)
	lt, hasLT := bs.Value(models.LongTermDebt, year)
	return st + lt, hasST || hasLT
}

// BookEquity returns shareholders' equity, else total assets - total liabilities.
func BookEquity(bs models.FinancialStatement, year int) (float64, bool) {
	if v, ok := bs.Value(models.ShareholdersEquity, year); ok {
		return v, true
	}
	ta, hasTA := bs.Value(models.TotalAssets, year)
	tl, hasTL := bs.Value(models.TotalLiabilities, year)
	if hasTA && hasTL {
		return ta - tl, true
	}
	return 0, false
}

