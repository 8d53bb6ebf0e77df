package valuation

import (
	"blended_valuation/pkg/core/assumption"
	"blended_valuation/pkg/core/calc"
	"blended_valuation/pkg/models"
	"fmt"
)

// Growth rate sources.
const (
	GrowthRevenueCAGR = "revenue_cagr"
	GrowthFCFCAGR     = "fcf_cagr"
	GrowthDefault     = "default"
)

// DCFDetails records every intermediate figure of the DCF for auditability.
type DCFDetails struct {
	DiscountRate DiscountRate `json:"discount_rate"`

	GrowthRate           float64   `json:"growth_rate"` // derived, after clamping
	GrowthRateRaw        float64   `json:"growth_rate_unclamped"`
	GrowthSource         string    `json:"growth_source"`
	GrowthPath           []float64 `json:"growth_path"`
	TerminalGrowth       float64   `json:"terminal_growth_rate"`
	TerminalClamped      bool      `json:"terminal_growth_clamped"`
	ProjectionYears      int       `json:"projection_years"`
	HistoricalYears      []int     `json:"historical_years"`
	HistoricalFCF        []float64 `json:"historical_fcf"`
	BaseFCF              float64   `json:"base_fcf"`
	ProjectedFCF         []float64 `json:"projected_fcf"`
	PresentValueFCF      float64   `json:"pv_fcf"`
	TerminalValue        float64   `json:"terminal_value"`
	PresentValueTV       float64   `json:"pv_terminal_value"`
	ImpliedEVEBITDA      float64   `json:"implied_ev_ebitda,omitempty"`
	ImpliedMultipleBasis string    `json:"implied_multiple_basis,omitempty"`

	Sensitivity *SensitivityGrid `json:"sensitivity,omitempty"`
	Notes       []string         `json:"notes,omitempty"`
}

// CalculateDCF values the company from projected free cash flow.
//
// FORMULA: EV = Σ FCF_t / (1+r)^t + TV / (1+r)^H, TV = FCF_H × (1+g) / (r-g)
//
// Where:
//   - FCF = cash_flow_from_operations + capital_expenditures (capex negative)
//   - FCF_0 = mean historical FCF, grown along the derived growth path for H years
//   - r = discount rate (configured, derived WACC, or default)
//   - g = terminal growth rate, strictly below r
//
// Unavailable when the income statement or operating cash flow is missing, when the
// base FCF is not positive, or when r <= g under the reject policy.
func CalculateDCF(in *models.ValuationInput, a assumption.Assumptions) MethodologyResult {
	const method = models.MethodDCF

	is, ok := in.Statement(models.SectionIncome)
	if !ok {
		return Unavailable(method, "income statement missing")
	}
	cf, ok := in.Statement(models.SectionCashFlow)
	if !ok {
		return Unavailable(method, "cash flow statement missing")
	}
	if !cf.Has(models.CashFlowFromOperations) {
		return Unavailable(method, "operating cash flow not reported")
	}

	details := &DCFDetails{ProjectionYears: a.DCF.ProjectionYears}

	// 1. Historical FCF
	for _, year := range cf[models.CashFlowFromOperations].Years() {
		cfo := cf[models.CashFlowFromOperations][year]
		capex, hasCapex := cf.Value(models.CapitalExpenditures, year)
		if !hasCapex {
			details.Notes = append(details.Notes, fmt.Sprintf("capital expenditures missing for %d, treated as 0", year))
		}
		details.HistoricalYears = append(details.HistoricalYears, year)
		details.HistoricalFCF = append(details.HistoricalFCF, cfo+capex)
	}
	details.BaseFCF = calc.Mean(details.HistoricalFCF)
	if details.BaseFCF <= 0 {
		return Unavailable(method, fmt.Sprintf("base free cash flow %.2f is not positive", details.BaseFCF))
	}

	// 2. Growth
	details.GrowthRateRaw, details.GrowthSource = deriveGrowth(in, is, details, a.DCF.DefaultGrowthRate)
	details.GrowthRate = calc.Clamp(details.GrowthRateRaw, a.DCF.MinGrowthRate, a.DCF.MaxGrowthRate)

	// 3. Discount rate and terminal growth
	details.DiscountRate = ResolveDiscountRate(in, a)
	r := details.DiscountRate.Rate
	g := a.DCF.TerminalGrowthRate
	if r <= g {
		if a.DCF.TerminalPolicy == assumption.TerminalPolicyReject {
			return Unavailable(method, fmt.Sprintf("discount rate %.4f does not exceed terminal growth %.4f", r, g))
		}
		g = r - a.DCF.MinSpread
		details.TerminalClamped = true
		details.Notes = append(details.Notes, fmt.Sprintf("terminal growth clamped to %.4f (discount rate %.4f minus spread %.4f)",
			g, r, a.DCF.MinSpread))
	}
	details.TerminalGrowth = g

	// 4. Projection
	if a.DCF.FadeToTerminal {
		details.GrowthPath = calc.LinearFade(details.GrowthRate, g, a.DCF.ProjectionYears)
	} else {
		details.GrowthPath = calc.FlatPath(details.GrowthRate, a.DCF.ProjectionYears)
	}
	details.ProjectedFCF = calc.ProjectFromGrowth(details.BaseFCF, details.GrowthPath)

	// 5. Discounting
	ev, ok := discount(details, r, g)
	if !ok {
		return Unavailable(method, "terminal value undefined")
	}

	// 6. Implied multiple and optional sensitivity
	var earnings Earnings
	var hasEarnings bool
	if year, ok := is.LatestYear(); ok {
		earnings, hasEarnings = EarningsBasis(is, year)
	}
	if hasEarnings && earnings.Value > 0 {
		details.ImpliedEVEBITDA = ev / earnings.Value
		details.ImpliedMultipleBasis = earnings.Basis
	}

	if a.DCF.Sensitivity.Enabled {
		if hasEarnings && earnings.Value > 0 {
			multiples, _ := a.Comps.MultiplesFor(in.Sector)
			grid := RunSensitivity(details.ProjectedFCF, r, g, a.DCF.Sensitivity, earnings.Value, multiples.EVEBITDA)
			if grid != nil {
				details.Sensitivity = grid
				ev = grid.Selected.EnterpriseValue
				details.ImpliedEVEBITDA = grid.Selected.ImpliedMultiple
			}
		} else {
			details.Notes = append(details.Notes, "sensitivity skipped, no positive operating earnings to anchor against")
		}
	}

	return Available(method, ev, details)
}

// deriveGrowth picks the growth rate: revenue CAGR, else FCF CAGR, else the default.
func deriveGrowth(in *models.ValuationInput, is models.FinancialStatement, d *DCFDetails, fallback float64) (float64, string) {
	years := in.CommonYears(models.SectionIncome, models.SectionCashFlow)
	if len(years) >= 2 && is.Has(models.RevenueSales) {
		if g, ok := calc.CAGRFromSeries(is[models.RevenueSales], years); ok {
			return g, GrowthRevenueCAGR
		}
	}

	fcf := make(map[int]float64, len(d.HistoricalYears))
	for i, y := range d.HistoricalYears {
		fcf[y] = d.HistoricalFCF[i]
	}
	if g, ok := calc.CAGRFromSeries(fcf, d.HistoricalYears); ok {
		return g, GrowthFCFCAGR
	}
	return fallback, GrowthDefault
}

// discount fills the present values and returns the enterprise value.
func discount(d *DCFDetails, r, g float64) (float64, bool) {
	if len(d.ProjectedFCF) == 0 {
		return 0, false
	}
	final := d.ProjectedFCF[len(d.ProjectedFCF)-1]
	tv, ok := calc.TerminalValueGordonGrowth(final, r, g)
	if !ok {
		return 0, false
	}
	d.PresentValueFCF = calc.PresentValueOfCashFlows(d.ProjectedFCF, r)
	d.TerminalValue = tv
	d.PresentValueTV = calc.PresentValue(tv, r, len(d.ProjectedFCF))
	return d.PresentValueFCF + d.PresentValueTV, true
}
