package validate

import (
	"blended_valuation/pkg/core/calc"
	"blended_valuation/pkg/models"
	"fmt"
)

// =============================================================================
// ACCOUNTING IDENTITY CHECKS
// =============================================================================

// IntegrityCheck is one accounting identity evaluated for one year.
// A failed check is reported as a warning; it never rejects the input.
type IntegrityCheck struct {
	Name       string  `json:"name"`
	Section    string  `json:"section"`
	Year       int     `json:"year"`
	Expected   float64 `json:"expected"` // recomputed from components
	Reported   float64 `json:"reported"`
	Difference float64 `json:"difference"`
	Tolerance  float64 `json:"tolerance"`
	Passed     bool    `json:"passed"`
}

// Warning renders a failed check.
func (c IntegrityCheck) Warning() string {
	return fmt.Sprintf("%s %d: %s reported %.2f, components give %.2f (difference %.2f)",
		c.Section, c.Year, c.Name, c.Reported, c.Expected, c.Difference)
}

func newCheck(name string, section models.Section, year int, expected, reported, tolerance float64) IntegrityCheck {
	return IntegrityCheck{
		Name:       name,
		Section:    string(section),
		Year:       year,
		Expected:   expected,
		Reported:   reported,
		Difference: reported - expected,
		Tolerance:  tolerance,
		Passed:     calc.WithinTolerance(reported, expected, tolerance),
	}
}

// CheckIntegrity evaluates every identity whose components are present, year by year.
// Values are expected after sign normalization (expenses negative).
//
//   - gross_profit = revenue_sales + cogs
//   - operating_profit_ebit = gross_profit + operating_expenses + other_operating_income_expense
//   - net_income = profit_before_tax_ebt + income_tax_expense
//   - total_assets = total_liabilities + shareholders_equity
func CheckIntegrity(in *models.ValuationInput, tolerance float64) []IntegrityCheck {
	var checks []IntegrityCheck

	if is, ok := in.Statement(models.SectionIncome); ok {
		for _, year := range is.Years() {
			revenue, hasRev := is.Value(models.RevenueSales, year)
			cogs, hasCOGS := is.Value(models.COGS, year)
			gp, hasGP := is.Value(models.GrossProfit, year)
			if hasRev && hasCOGS && hasGP {
				checks = append(checks, newCheck("gross_profit", models.SectionIncome, year, revenue+cogs, gp, tolerance))
			}

			if ebit, ok := is.Value(models.OperatingProfitEBIT, year); ok {
				opex, hasOpex := is.Value(models.OperatingExpenses, year)
				other, _ := is.Value(models.OtherOperatingIncomeExpense, year)
				base, hasBase := gp, hasGP
				if !hasBase && hasRev && hasCOGS {
					base, hasBase = revenue+cogs, true
				}
				if hasBase && hasOpex {
					checks = append(checks, newCheck("operating_profit_ebit", models.SectionIncome, year, base+opex+other, ebit, tolerance))
				}
			}

			ni, hasNI := is.Value(models.NetIncome, year)
			ebt, hasEBT := is.Value(models.ProfitBeforeTaxEBT, year)
			tax, hasTax := is.Value(models.IncomeTaxExpense, year)
			if hasNI && hasEBT && hasTax {
				checks = append(checks, newCheck("net_income", models.SectionIncome, year, ebt+tax, ni, tolerance))
			}
		}
	}

	if bs, ok := in.Statement(models.SectionBalance); ok {
		for _, year := range bs.Years() {
			ta, hasTA := bs.Value(models.TotalAssets, year)
			tl, hasTL := bs.Value(models.TotalLiabilities, year)
			eq, hasEq := bs.Value(models.ShareholdersEquity, year)
			if hasTA && hasTL && hasEq {
				checks = append(checks, newCheck("total_assets", models.SectionBalance, year, tl+eq, ta, tolerance))
			}
		}
	}

	return checks
}
