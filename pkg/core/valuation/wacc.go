package valuation

import (
	"blended_valuation/pkg/core/assumption"
	"blended_valuation/pkg/core/calc"
	"blended_valuation/pkg/models"
	"math"
)

// Discount rate sources.
const (
	RateConfigured = "configured"
	RateDerived    = "derived"
	RateDefault    = "default"
)

// DiscountRate is the rate applied to projected cash flows and how it was obtained.
type DiscountRate struct {
	Rate   float64 `json:"rate"`
	Source string  `json:"source"`

	// Populated when Source is derived.
	Year          int     `json:"year,omitempty"`
	CostOfEquity  float64 `json:"cost_of_equity,omitempty"`
	CostOfDebt    float64 `json:"pre_tax_cost_of_debt,omitempty"`
	TaxRate       float64 `json:"tax_rate,omitempty"`
	TaxRateSource string  `json:"tax_rate_source,omitempty"`
	DebtWeight    float64 `json:"debt_weight,omitempty"`
	EquityWeight  float64 `json:"equity_weight,omitempty"`

	Note string `json:"note,omitempty"`
}

// ResolveDiscountRate picks the discount rate: configured, else WACC derived from the
// capital structure, else the documented default.
//
// FORMULA: WACC = Kd × (1 - t) × Wd + Ke × We
//
// Where:
//   - Kd = |interest expense| / (short + long term debt), clamped to the configured bounds
//   - Ke = Rf + β × ERP + CRP
//   - Wd, We = book debt and equity weights
func ResolveDiscountRate(in *models.ValuationInput, a assumption.Assumptions) DiscountRate {
	if a.DCF.DiscountRate > 0 {
		return DiscountRate{Rate: a.DCF.DiscountRate, Source: RateConfigured}
	}

	fallback := func(note string) DiscountRate {
		return DiscountRate{Rate: a.DCF.DefaultDiscountRate, Source: RateDefault, Note: note}
	}

	years := in.CommonYears(models.SectionIncome, models.SectionBalance)
	if len(years) == 0 {
		return fallback("capital structure unavailable, income statement and balance sheet share no year")
	}
	year := years[len(years)-1]
	is, _ := in.Statement(models.SectionIncome)
	bs, _ := in.Statement(models.SectionBalance)

	interest, ok := is.Value(models.InterestExpense, year)
	if !ok {
		return fallback("interest expense not reported")
	}
	debt, ok := TotalDebt(bs, year)
	if !ok || debt <= 0 {
		return fallback("no interest-bearing debt reported")
	}
	equity, ok := BookEquity(bs, year)
	if !ok || equity <= 0 {
		return fallback("book equity not positive")
	}

	c := a.Capital
	kd := calc.Clamp(math.Abs(interest)/debt, c.MinCostOfDebt, c.MaxCostOfDebt)
	ke := calc.CostOfEquityCAPM(c.RiskFreeRate, c.Beta, c.EquityRiskPremium, c.CountryRiskPremium)
	tax, taxSource := EffectiveTaxRate(is, year, c)
	wd, we, _ := calc.CapitalWeights(debt, equity)

	return DiscountRate{
		Rate:          calc.WACC(kd, tax, wd, ke, we),
		Source:        RateDerived,
		Year:          year,
		CostOfEquity:  ke,
		CostOfDebt:    kd,
		TaxRate:       tax,
		TaxRateSource: taxSource,
		DebtWeight:    wd,
		EquityWeight:  we,
	}
}

// EffectiveTaxRate returns income tax / EBT for year when it falls inside the configured
// band, else the normalized rate. Tax expense missing is inferred as max(0, EBT - NI).
func EffectiveTaxRate(is models.FinancialStatement, year int, c assumption.CapitalConfig) (float64, string) {
	ebt, hasEBT := is.Value(models.ProfitBeforeTaxEBT, year)
	tax, hasTax := is.Value(models.IncomeTaxExpense, year)
	ni, hasNI := is.Value(models.NetIncome, year)

	switch {
	case hasEBT && hasTax:
	case hasEBT && hasNI:
		tax, hasTax = -math.Max(0, ebt-ni), true
	case hasTax && hasNI:
		ebt, hasEBT = ni-tax, true
	}
	if !hasEBT || !hasTax || ebt <= 0 {
		return c.NormalizedTaxRate, "normalized"
	}

	rate := -tax / ebt
	if rate < c.MinEffectiveTaxRate || rate > c.MaxEffectiveTaxRate {
		return c.NormalizedTaxRate, "normalized"
	}
	return rate, "effective"
}
