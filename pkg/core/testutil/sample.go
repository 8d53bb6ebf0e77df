// Package testutil carries the reference statement set shared by package tests.
package testutil

import (
	"blended_valuation/pkg/models"
)

// SampleRawInput returns the documented two-year retail SME sample in raw form.
// Figures as reported: expenses and payments positive, capex signed.
func SampleRawInput() models.RawInput {
	return models.RawInput{
		CompanyName: "Sample Retail Co",
		Currency:    "INR",
		Sector:      "Retail",
		IncomeStatement: map[string]any{
			"revenue_sales":         years(683795, 700075),
			"cogs":                  years(523940, 529105),
			"operating_expenses":    years(131218, 143983),
			"operating_profit_ebit": years(29798, 34473),
			"interest_expense":      years(8768, 8078),
			"interest_income":       years(16706, 4562),
			"net_income":            years(51407, 35964),
		},
		BalanceSheet: map[string]any{
			"cash_equivalents":    years(48586, 17623),
			"accounts_receivable": years(36473, 78674),
			"inventory":           years(256002, 243959),
			"ppe":                 years(67605, 71747),
			"accounts_payable":    years(186078, 163061),
			"shareholders_equity": years(305119, 326417),
		},
		CashFlowStatement: map[string]any{
			"cash_flow_from_operations": years(26952, -2917),
			"capital_expenditures":      years(-9171, -13084),
			"taxes_paid":                years(34112, 40093),
			"interest_paid":             years(8427, 6895),
		},
	}
}

// Without returns a copy of raw with the given sections removed.
func Without(raw models.RawInput, sections ...models.Section) models.RawInput {
	for _, s := range sections {
		switch s {
		case models.SectionIncome:
			raw.IncomeStatement = nil
		case models.SectionBalance:
			raw.BalanceSheet = nil
		case models.SectionCashFlow:
			raw.CashFlowStatement = nil
		}
	}
	return raw
}

func years(fy2022, fy2023 float64) map[string]any {
	return map[string]any{"2022": fy2022, "2023": fy2023}
}
