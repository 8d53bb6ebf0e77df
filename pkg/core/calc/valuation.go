// Package calc provides deterministic financial calculations for the valuation engine.
// This file implements cost-of-capital and discounting primitives.
package calc

import (
	"math"
)

// =============================================================================
// COST OF CAPITAL
// =============================================================================

// CostOfEquityCAPM calculates required return on equity using CAPM with a country premium.
//
// FORMULA: r_e = r_f + β × ERP + CRP
//
// Where:
//   - r_f = Risk-free rate
//   - β = Equity beta (market sensitivity)
//   - ERP = Equity risk premium
//   - CRP = Country risk premium (0 for developed markets)
func CostOfEquityCAPM(riskFreeRate, beta, equityRiskPremium, countryRiskPremium float64) float64 {
	return riskFreeRate + beta*equityRiskPremium + countryRiskPremium
}

// WACC calculates Weighted Average Cost of Capital.
//
// FORMULA: WACC = r_d × (1 - T) × (D/V) + r_e × (E/V)
//
// Where:
//   - r_d = Cost of debt (interest expense / debt)
//   - T = Tax rate used for the interest shield
//   - D/V = Debt weight in capital structure
//   - r_e = Cost of equity (from CAPM)
//   - E/V = Equity weight in capital structure
func WACC(costOfDebt, taxRate, debtWeight, costOfEquity, equityWeight float64) float64 {
	afterTaxDebtCost := costOfDebt * (1 - taxRate) * debtWeight
	equityCost := costOfEquity * equityWeight
	return afterTaxDebtCost + equityCost
}

// CapitalWeights returns the debt and equity weights of a book capital structure.
// Returns ok=false when the structure cannot be weighted.
func CapitalWeights(debt, equity float64) (debtWeight, equityWeight float64, ok bool) {
	if debt < 0 || equity <= 0 {
		return 0, 0, false
	}
	total := debt + equity
	return debt / total, equity / total, true
}

// =============================================================================
// DISCOUNTING
// =============================================================================

// TerminalValueGordonGrowth calculates terminal value using the perpetuity-growth model.
//
// FORMULA: TV = CF_N × (1 + g) / (r - g)
//
// Where:
//   - CF_N = Final projected cash flow
//   - r = Discount rate
//   - g = Terminal growth rate (must be < r)
//
// Returns ok=false when r <= g; callers decide whether to clamp or reject.
func TerminalValueGordonGrowth(finalCF, discountRate, growthRate float64) (float64, bool) {
	if discountRate <= growthRate {
		return 0, false
	}
	return finalCF * (1 + growthRate) / (discountRate - growthRate), true
}

// DiscountFactor returns 1 / (1 + r)^t.
func DiscountFactor(discountRate float64, periods int) float64 {
	return 1 / math.Pow(1+discountRate, float64(periods))
}

// PresentValue calculates PV of a single cash flow.
//
// FORMULA: PV = CF / (1 + r)^t
func PresentValue(cashFlow, discountRate float64, periods int) float64 {
	if periods < 0 {
		return 0
	}
	return cashFlow * DiscountFactor(discountRate, periods)
}

// PresentValueOfCashFlows calculates PV of a series of cash flows.
//
// FORMULA: PV = Σ [ CF_t / (1 + r)^t ]
//
// Cash flows are assumed to be at end of each period (ordinary annuity).
func PresentValueOfCashFlows(cashFlows []float64, discountRate float64) float64 {
	var pv float64
	for t, cf := range cashFlows {
		pv += PresentValue(cf, discountRate, t+1)
	}
	return pv
}

// =============================================================================
// FORECAST PROJECTIONS
// =============================================================================

// ProjectFromGrowth compounds a base amount through a path of yearly growth rates.
//
// FORMULA: Amount_t = Amount_{t-1} × (1 + Growth_t)
func ProjectFromGrowth(base float64, growthPath []float64) []float64 {
	out := make([]float64, len(growthPath))
	prior := base
	for i, g := range growthPath {
		prior = prior * (1 + g)
		out[i] = prior
	}
	return out
}

// LinearFade returns a growth path of n years moving linearly from start to end.
// Year 1 carries start and year n carries end; n == 1 returns [start].
func LinearFade(start, end float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	path := make([]float64, n)
	if n == 1 {
		path[0] = start
		return path
	}
	step := (end - start) / float64(n-1)
	for i := range path {
		path[i] = start + step*float64(i)
	}
	path[n-1] = end
	return path
}

// FlatPath returns a growth path of n years at a constant rate.
func FlatPath(rate float64, n int) []float64 {
	path := make([]float64, n)
	for i := range path {
		path[i] = rate
	}
	return path
}
