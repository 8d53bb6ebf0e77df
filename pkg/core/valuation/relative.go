package valuation

import (
	"blended_valuation/pkg/core/assumption"
	"blended_valuation/pkg/core/calc"
	"blended_valuation/pkg/models"
	"fmt"
)

// CompsDetails records the metric and multiple behind the transaction comps estimate.
type CompsDetails struct {
	Year            int       `json:"year"`
	Mode            string    `json:"mode"`
	Basis           string    `json:"basis"` // ebitda, ebit, revenue or median
	MultipleSource  string    `json:"multiple_source"`
	Earnings        *Earnings `json:"earnings,omitempty"`
	EVEBITDA        float64   `json:"ev_ebitda_multiple"`
	EarningsValue   *float64  `json:"earnings_based_ev,omitempty"`
	Revenue         *float64  `json:"revenue,omitempty"`
	EVSales         float64   `json:"ev_sales_multiple"`
	RevenueValue    *float64  `json:"revenue_based_ev,omitempty"`
	MultipleApplied float64   `json:"multiple_applied,omitempty"`
	Notes           []string  `json:"notes,omitempty"`
}

// CalculateTransactionComps applies precedent transaction multiples to the latest year.
//
// FORMULA: EV = EBIT(DA) × EV/EBITDA multiple, else Revenue × EV/Sales multiple
//
// The earnings basis is EBITDA when D&A is reported, otherwise EBIT. Multiples come from
// the sector table, else the defaults. Median mode takes the lower median of both
// estimates when both exist. Unavailable when neither positive earnings nor revenue exist.
func CalculateTransactionComps(in *models.ValuationInput, a assumption.Assumptions) MethodologyResult {
	const method = models.MethodTransactionComps

	is, ok := in.Statement(models.SectionIncome)
	if !ok {
		return Unavailable(method, "income statement missing")
	}
	year, ok := is.LatestYear()
	if !ok {
		return Unavailable(method, "income statement has no fiscal year")
	}

	multiples, source := a.Comps.MultiplesFor(in.Sector)
	details := &CompsDetails{
		Year:           year,
		Mode:           a.Comps.Mode,
		MultipleSource: source,
		EVEBITDA:       multiples.EVEBITDA,
		EVSales:        multiples.EVSales,
	}

	if earnings, ok := EarningsBasis(is, year); ok {
		if !a.Comps.PreferEBITDA && earnings.Basis == "ebitda" {
			earnings = Earnings{Basis: "ebit", Value: earnings.EBIT, EBIT: earnings.EBIT, Source: earnings.Source}
		}
		details.Earnings = &earnings
		if earnings.Value > 0 {
			ev := earnings.Value * multiples.EVEBITDA
			details.EarningsValue = &ev
		} else {
			details.Notes = append(details.Notes, fmt.Sprintf("%s %.2f is not positive, earnings multiple not applied", earnings.Basis, earnings.Value))
		}
	}
	if revenue, ok := is.Value(models.RevenueSales, year); ok {
		details.Revenue = &revenue
		if revenue > 0 {
			ev := revenue * multiples.EVSales
			details.RevenueValue = &ev
		}
	}

	switch {
	case a.Comps.Mode == assumption.CompsModeMedian && details.EarningsValue != nil && details.RevenueValue != nil:
		details.Basis = "median"
		return Available(method, calc.LowerMedian([]float64{*details.EarningsValue, *details.RevenueValue}), details)
	case details.EarningsValue != nil:
		details.Basis = details.Earnings.Basis
		details.MultipleApplied = multiples.EVEBITDA
		return Available(method, *details.EarningsValue, details)
	case details.RevenueValue != nil:
		details.Basis = "revenue"
		details.MultipleApplied = multiples.EVSales
		return Available(method, *details.RevenueValue, details)
	}
	if e := details.Earnings; e != nil && details.Revenue == nil {
		// A negative multiple-based EV would drag the blend below zero.
		return Unavailable(method, fmt.Sprintf("%s %.2f is not positive and no revenue is reported for %d", e.Basis, e.Value, year))
	}
	return Unavailable(method, fmt.Sprintf("neither positive operating earnings nor revenue reported for %d", year))
}
