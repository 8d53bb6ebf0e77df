package calc

import (
	"math"
)

// DaysInYear is the day count used by the efficiency ratios.
const DaysInYear = 365

// =============================================================================
// MARGINS
// =============================================================================

// Ratio returns numerator / denominator. Returns ok=false when the denominator is zero.
func Ratio(numerator, denominator float64) (float64, bool) {
	if denominator == 0 {
		return 0, false
	}
	return numerator / denominator, true
}

// PercentOfRevenue expresses the magnitude of an amount as a fraction of revenue.
// Outflows are stored negative, so the absolute value is used.
//
// FORMULA: Pct = |Amount| / Revenue
func PercentOfRevenue(amount, revenue float64) (float64, bool) {
	if revenue <= 0 {
		return 0, false
	}
	return math.Abs(amount) / revenue, true
}

// =============================================================================
// WORKING CAPITAL & EFFICIENCY
// =============================================================================

// DaysOutstanding converts a balance into days of an annual flow.
//
// FORMULA: Days = Balance / |Flow| × 365
//
// Used as:
//   - DSO = Receivables / Revenue × 365
//   - DIO = Inventory / COGS × 365
//   - DPO = Payables / COGS × 365
func DaysOutstanding(balance, flow float64) (float64, bool) {
	if flow == 0 {
		return 0, false
	}
	return balance / math.Abs(flow) * DaysInYear, true
}

// CashConversionCycle returns the days between paying suppliers and collecting from customers.
//
// FORMULA: CCC = DSO + DIO - DPO
func CashConversionCycle(dso, dio, dpo float64) float64 {
	return dso + dio - dpo
}

// NetWorkingCapital returns operating working capital.
//
// FORMULA: NWC = Receivables + Inventory - Payables
func NetWorkingCapital(receivables, inventory, payables float64) float64 {
	return receivables + inventory - payables
}

// PPERollForwardGap returns the difference between reported PP&E and the roll-forward estimate.
//
// FORMULA: Gap = PPE_t - (PPE_{t-1} + |Capex| - |D&A|)
func PPERollForwardGap(ppe, priorPPE, capex, da float64) float64 {
	return ppe - (priorPPE + math.Abs(capex) - math.Abs(da))
}
