// Package models defines the typed financial statement schema consumed by the valuation engine.
package models

import (
	"sort"
)

// Section identifies one of the three financial statements.
type Section string

const (
	SectionIncome   Section = "income_statement"
	SectionBalance  Section = "balance_sheet"
	SectionCashFlow Section = "cash_flow_statement"
)

// Sections lists every statement section in canonical order.
var Sections = []Section{SectionIncome, SectionBalance, SectionCashFlow}

// Units declares the scale the caller reported figures in.
type Units string

const (
	UnitsOnes      Units = "units"
	UnitsThousands Units = "thousands"
	UnitsMillions  Units = "millions"
)

// Multiplier converts reported figures into absolute currency units.
func (u Units) Multiplier() float64 {
	switch u {
	case UnitsThousands:
		return 1_000
	case UnitsMillions:
		return 1_000_000
	default:
		return 1
	}
}

// =============================================================================
// SERIES AND STATEMENTS
// =============================================================================

// Series maps a fiscal year to a reported value.
type Series map[int]float64

// Years returns the fiscal years of the series in ascending order.
func (s Series) Years() []int {
	years := make([]int, 0, len(s))
	for y := range s {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Latest returns the most recent year and its value.
func (s Series) Latest() (int, float64, bool) {
	years := s.Years()
	if len(years) == 0 {
		return 0, 0, false
	}
	y := years[len(years)-1]
	return y, s[y], true
}

// FinancialStatement maps canonical line items to their yearly values.
type FinancialStatement map[LineItem]Series

// Value returns the value of item for year.
func (fs FinancialStatement) Value(item LineItem, year int) (float64, bool) {
	series, ok := fs[item]
	if !ok {
		return 0, false
	}
	v, ok := series[year]
	return v, ok
}

// Has reports whether item carries at least one year.
func (fs FinancialStatement) Has(item LineItem) bool {
	return len(fs[item]) > 0
}

// Years returns the union of fiscal years across all line items, ascending.
func (fs FinancialStatement) Years() []int {
	seen := make(map[int]bool)
	for _, series := range fs {
		for y := range series {
			seen[y] = true
		}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// LatestYear returns the most recent fiscal year present in the statement.
func (fs FinancialStatement) LatestYear() (int, bool) {
	years := fs.Years()
	if len(years) == 0 {
		return 0, false
	}
	return years[len(years)-1], true
}

// =============================================================================
// ENGINE INPUT
// =============================================================================

// RawInput is the caller-supplied document before validation.
// Sections are left untyped so the validator can report malformed shapes field by field.
type RawInput struct {
	IncomeStatement   any    `json:"income_statement,omitempty"`
	BalanceSheet      any    `json:"balance_sheet,omitempty"`
	CashFlowStatement any    `json:"cash_flow_statement,omitempty"`
	CompanyName       string `json:"company_name,omitempty"`
	Currency          string `json:"currency,omitempty"`
	Sector            string `json:"sector,omitempty"`
	Units             Units  `json:"units,omitempty"`
}

// Section returns the raw payload of a statement section.
func (r RawInput) Section(s Section) any {
	switch s {
	case SectionIncome:
		return r.IncomeStatement
	case SectionBalance:
		return r.BalanceSheet
	case SectionCashFlow:
		return r.CashFlowStatement
	}
	return nil
}

// ValuationInput is the validated, sign-normalized and scaled input to the engine.
// Only sections with at least one usable line item are present in Statements.
type ValuationInput struct {
	Statements  map[Section]FinancialStatement `json:"statements"`
	Years       []int                          `json:"years"`
	CompanyName string                         `json:"company_name,omitempty"`
	Currency    string                         `json:"currency,omitempty"`
	Sector      string                         `json:"sector,omitempty"`
	Units       Units                          `json:"units,omitempty"`
	Warnings    []string                       `json:"warnings,omitempty"`
}

// Statement returns a usable statement section.
func (in *ValuationInput) Statement(s Section) (FinancialStatement, bool) {
	if in == nil {
		return nil, false
	}
	fs, ok := in.Statements[s]
	if !ok || len(fs) == 0 {
		return nil, false
	}
	return fs, true
}

// HasSection reports whether the section is usable.
func (in *ValuationInput) HasSection(s Section) bool {
	_, ok := in.Statement(s)
	return ok
}

// CommonYears returns the fiscal years present in every one of the given sections.
func (in *ValuationInput) CommonYears(sections ...Section) []int {
	var common map[int]bool
	for _, s := range sections {
		fs, ok := in.Statement(s)
		if !ok {
			return nil
		}
		years := make(map[int]bool)
		for _, y := range fs.Years() {
			if common == nil || common[y] {
				years[y] = true
			}
		}
		common = years
	}
	out := make([]int, 0, len(common))
	for y := range common {
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}
