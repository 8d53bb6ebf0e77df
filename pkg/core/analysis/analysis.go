// Package analysis computes per-year financial ratios from validated statements:
// margins, growth, working-capital efficiency and reinvestment intensity.
// A ratio whose inputs are missing for a year is omitted rather than guessed.
package analysis

import (
	"blended_valuation/pkg/core/calc"
	"blended_valuation/pkg/core/valuation"
	"blended_valuation/pkg/models"
	"fmt"
)

// ppeRollForwardTolerance is the relative gap above which a PP&E roll-forward is flagged.
const ppeRollForwardTolerance = 0.10

// Ratios holds one fiscal year of derived metrics. All ratios are fractions except the
// day counts.
type Ratios struct {
	Year int `json:"year"`

	// Profitability
	GrossMargin  *float64 `json:"gross_margin,omitempty"`
	EBITDAMargin *float64 `json:"ebitda_margin,omitempty"`
	EBITMargin   *float64 `json:"ebit_margin,omitempty"`
	NetMargin    *float64 `json:"net_margin,omitempty"`

	// Growth versus the prior fiscal year
	RevenueGrowth *float64 `json:"revenue_growth,omitempty"`

	// Working capital
	DSO      *float64 `json:"dso_days,omitempty"`
	DIO      *float64 `json:"dio_days,omitempty"`
	DPO      *float64 `json:"dpo_days,omitempty"`
	CCC      *float64 `json:"ccc_days,omitempty"`
	NWC      *float64 `json:"nwc,omitempty"`
	DeltaNWC *float64 `json:"delta_nwc,omitempty"`

	// Reinvestment
	CapexPercent *float64 `json:"capex_pct_revenue,omitempty"`
	DAPercent    *float64 `json:"da_pct_revenue,omitempty"`
}

// Analysis is the ratio block for every fiscal year of the input.
type Analysis struct {
	Years       []Ratios `json:"years"`
	RevenueCAGR *float64 `json:"revenue_cagr,omitempty"`
	Notes       []string `json:"notes,omitempty"`
}

// Latest returns the ratios of the most recent fiscal year.
func (a *Analysis) Latest() (Ratios, bool) {
	if a == nil || len(a.Years) == 0 {
		return Ratios{}, false
	}
	return a.Years[len(a.Years)-1], true
}

// =============================================================================
// ANALYSIS ENGINE
// =============================================================================

// Analyze computes the ratio block for in. Returns nil when in carries no fiscal year.
func Analyze(in *models.ValuationInput) *Analysis {
	if in == nil || len(in.Years) == 0 {
		return nil
	}
	is, _ := in.Statement(models.SectionIncome)
	bs, _ := in.Statement(models.SectionBalance)
	cf, _ := in.Statement(models.SectionCashFlow)

	out := &Analysis{Years: make([]Ratios, 0, len(in.Years))}
	for i, year := range in.Years {
		r := Ratios{Year: year}
		profitability(&r, is, year)
		efficiency(&r, is, bs, year)
		reinvestment(&r, is, cf, year)

		if i > 0 {
			prior := in.Years[i-1]
			if rev, ok := is.Value(models.RevenueSales, year); ok {
				if priorRev, ok := is.Value(models.RevenueSales, prior); ok {
					r.RevenueGrowth = opt(calc.CalculateYoY(rev, priorRev))
				}
			}
			if r.NWC != nil {
				if priorNWC, ok := nwc(bs, prior); ok {
					delta := *r.NWC - priorNWC
					r.DeltaNWC = &delta
				}
			}
			if note, ok := rollForward(bs, is, cf, year, prior); ok {
				out.Notes = append(out.Notes, note)
			}
		}
		out.Years = append(out.Years, r)
	}

	if revenue, ok := is[models.RevenueSales]; ok {
		out.RevenueCAGR = opt(calc.CAGRFromSeries(revenue, revenue.Years()))
	}
	return out
}

func profitability(r *Ratios, is models.FinancialStatement, year int) {
	revenue, ok := is.Value(models.RevenueSales, year)
	if !ok || revenue <= 0 {
		return
	}

	if gp, ok := grossProfit(is, year); ok {
		r.GrossMargin = opt(calc.Ratio(gp, revenue))
	}
	if ebit, _, ok := valuation.EBIT(is, year); ok {
		r.EBITMargin = opt(calc.Ratio(ebit, revenue))
		if da, ok := is.Value(models.DepreciationAmortization, year); ok {
			r.EBITDAMargin = opt(calc.Ratio(ebit-da, revenue))
		}
	}
	if ni, ok := is.Value(models.NetIncome, year); ok {
		r.NetMargin = opt(calc.Ratio(ni, revenue))
	}
}

func efficiency(r *Ratios, is, bs models.FinancialStatement, year int) {
	ar, hasAR := bs.Value(models.AccountsReceivable, year)
	inv, hasInv := bs.Value(models.Inventory, year)
	ap, hasAP := bs.Value(models.AccountsPayable, year)

	if revenue, ok := is.Value(models.RevenueSales, year); ok && hasAR {
		r.DSO = opt(calc.DaysOutstanding(ar, revenue))
	}
	if cogs, ok := is.Value(models.COGS, year); ok {
		if hasInv {
			r.DIO = opt(calc.DaysOutstanding(inv, cogs))
		}
		if hasAP {
			r.DPO = opt(calc.DaysOutstanding(ap, cogs))
		}
	}
	if r.DSO != nil && r.DIO != nil && r.DPO != nil {
		ccc := calc.CashConversionCycle(*r.DSO, *r.DIO, *r.DPO)
		r.CCC = &ccc
	}
	if v, ok := nwc(bs, year); ok {
		r.NWC = &v
	}
}

func reinvestment(r *Ratios, is, cf models.FinancialStatement, year int) {
	revenue, ok := is.Value(models.RevenueSales, year)
	if !ok {
		return
	}
	if capex, ok := cf.Value(models.CapitalExpenditures, year); ok {
		r.CapexPercent = opt(calc.PercentOfRevenue(capex, revenue))
	}
	if da, ok := is.Value(models.DepreciationAmortization, year); ok {
		r.DAPercent = opt(calc.PercentOfRevenue(da, revenue))
	}
}

// rollForward flags a PP&E balance that does not follow from the prior year, capex and D&A.
func rollForward(bs, is, cf models.FinancialStatement, year, prior int) (string, bool) {
	ppe, ok1 := bs.Value(models.PPE, year)
	priorPPE, ok2 := bs.Value(models.PPE, prior)
	capex, ok3 := cf.Value(models.CapitalExpenditures, year)
	da, ok4 := is.Value(models.DepreciationAmortization, year)
	if !(ok1 && ok2 && ok3 && ok4) {
		return "", false
	}
	gap := calc.PPERollForwardGap(ppe, priorPPE, capex, da)
	if calc.WithinTolerance(ppe, ppe-gap, ppeRollForwardTolerance) {
		return "", false
	}
	return fmt.Sprintf("ppe %d: reported %.0f differs from roll-forward %.0f by %.0f", year, ppe, ppe-gap, gap), true
}

// grossProfit returns reported gross profit, else revenue + cogs (cogs negative).
func grossProfit(is models.FinancialStatement, year int) (float64, bool) {
	if v, ok := is.Value(models.GrossProfit, year); ok {
		return v, true
	}
	revenue, hasRev := is.Value(models.RevenueSales, year)
	cogs, hasCOGS := is.Value(models.COGS, year)
	return revenue + cogs, hasRev && hasCOGS
}

func nwc(bs models.FinancialStatement, year int) (float64, bool) {
	ar, hasAR := bs.Value(models.AccountsReceivable, year)
	inv, hasInv := bs.Value(models.Inventory, year)
	ap, hasAP := bs.Value(models.AccountsPayable, year)
	if !hasAR || !hasInv || !hasAP {
		return 0, false
	}
	return calc.NetWorkingCapital(ar, inv, ap), true
}

func opt(v float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return &v
}
