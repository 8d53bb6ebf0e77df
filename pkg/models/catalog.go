package models

import (
	"strings"
)

// LineItem is a canonical line-item key.
type LineItem string

// Income statement items.
const (
	RevenueSales                LineItem = "revenue_sales"
	COGS                        LineItem = "cogs"
	GrossProfit                 LineItem = "gross_profit"
	OperatingExpenses           LineItem = "operating_expenses"
	OtherOperatingIncomeExpense LineItem = "other_operating_income_expense"
	OperatingProfitEBIT         LineItem = "operating_profit_ebit"
	DepreciationAmortization    LineItem = "depreciation_amortization"
	InterestExpense             LineItem = "interest_expense"
	InterestIncome              LineItem = "interest_income"
	ForeignExchangeGainsLosses  LineItem = "foreign_exchange_gains_losses"
	ProfitBeforeTaxEBT          LineItem = "profit_before_tax_ebt"
	IncomeTaxExpense            LineItem = "income_tax_expense"
	NetIncome                   LineItem = "net_income"
)

// Balance sheet items.
const (
	CashEquivalents        LineItem = "cash_equivalents"
	AccountsReceivable     LineItem = "accounts_receivable"
	Inventory              LineItem = "inventory"
	OtherCurrentAssets     LineItem = "other_current_assets"
	PPE                    LineItem = "ppe"
	IntangibleAssets       LineItem = "intangible_assets"
	OtherNonCurrentAssets  LineItem = "other_non_current_assets"
	TotalAssets            LineItem = "total_assets"
	AccountsPayable        LineItem = "accounts_payable"
	ShortTermDebt          LineItem = "short_term_debt"
	LongTermDebt           LineItem = "long_term_debt"
	DeferredTaxLiabilities LineItem = "deferred_tax_liabilities"
	OtherLiabilities       LineItem = "other_liabilities"
	TotalLiabilities       LineItem = "total_liabilities"
	ShareholdersEquity     LineItem = "shareholders_equity"
)

// Cash flow statement items.
const (
	CashFlowFromOperations  LineItem = "cash_flow_from_operations"
	CapitalExpenditures     LineItem = "capital_expenditures"
	ChangesInWorkingCapital LineItem = "changes_in_working_capital"
	FreeCashFlow            LineItem = "free_cash_flow"
	InterestPaid            LineItem = "interest_paid"
	TaxesPaid               LineItem = "taxes_paid"
	DividendsPaid           LineItem = "dividends_paid"
)

// SignConvention states how a line item's sign is normalized at ingestion.
type SignConvention int

const (
	// SignAsReported keeps the caller's sign (profits, equity, signed adjustments).
	SignAsReported SignConvention = iota
	// SignOutflow forces the value negative (expenses and cash outflows).
	SignOutflow
	// SignMagnitude forces the value positive (balance sheet positions).
	SignMagnitude
)

// ItemDef describes a recognized line item.
type ItemDef struct {
	Key     LineItem
	Section Section
	Sign    SignConvention
	Aliases []string
}

// Catalog is the fixed schema of recognized line items.
var Catalog = []ItemDef{
	{RevenueSales, SectionIncome, SignAsReported, []string{"revenue", "sales", "total_revenue"}},
	{COGS, SectionIncome, SignOutflow, []string{"cost_of_goods_sold", "cost_of_sales"}},
	{GrossProfit, SectionIncome, SignAsReported, nil},
	{OperatingExpenses, SectionIncome, SignOutflow, []string{"opex"}},
	{OtherOperatingIncomeExpense, SectionIncome, SignAsReported, nil},
	{OperatingProfitEBIT, SectionIncome, SignAsReported, []string{"ebit", "operating_income", "operating_profit"}},
	{DepreciationAmortization, SectionIncome, SignOutflow, []string{"depreciation", "d_and_a"}},
	{InterestExpense, SectionIncome, SignOutflow, nil},
	{InterestIncome, SectionIncome, SignAsReported, nil},
	{ForeignExchangeGainsLosses, SectionIncome, SignAsReported, nil},
	{ProfitBeforeTaxEBT, SectionIncome, SignAsReported, []string{"ebt", "profit_before_tax", "income_before_tax"}},
	{IncomeTaxExpense, SectionIncome, SignOutflow, []string{"tax_expense"}},
	{NetIncome, SectionIncome, SignAsReported, []string{"net_profit"}},

	{CashEquivalents, SectionBalance, SignMagnitude, []string{"cash", "cash_and_equivalents"}},
	{AccountsReceivable, SectionBalance, SignMagnitude, []string{"receivables"}},
	{Inventory, SectionBalance, SignMagnitude, []string{"inventories"}},
	{OtherCurrentAssets, SectionBalance, SignMagnitude, nil},
	{PPE, SectionBalance, SignMagnitude, []string{"ppe_net", "property_plant_equipment"}},
	{IntangibleAssets, SectionBalance, SignMagnitude, nil},
	{OtherNonCurrentAssets, SectionBalance, SignMagnitude, nil},
	{TotalAssets, SectionBalance, SignMagnitude, nil},
	{AccountsPayable, SectionBalance, SignMagnitude, []string{"payables"}},
	{ShortTermDebt, SectionBalance, SignMagnitude, nil},
	{LongTermDebt, SectionBalance, SignMagnitude, nil},
	{DeferredTaxLiabilities, SectionBalance, SignMagnitude, nil},
	{OtherLiabilities, SectionBalance, SignMagnitude, nil},
	{TotalLiabilities, SectionBalance, SignMagnitude, nil},
	{ShareholdersEquity, SectionBalance, SignAsReported, []string{"total_equity", "equity"}},

	{CashFlowFromOperations, SectionCashFlow, SignAsReported, []string{"operating_cash_flow", "cfo"}},
	{CapitalExpenditures, SectionCashFlow, SignOutflow, []string{"capex"}},
	{ChangesInWorkingCapital, SectionCashFlow, SignAsReported, nil},
	{FreeCashFlow, SectionCashFlow, SignAsReported, []string{"fcf"}},
	{InterestPaid, SectionCashFlow, SignOutflow, nil},
	{TaxesPaid, SectionCashFlow, SignOutflow, nil},
	{DividendsPaid, SectionCashFlow, SignOutflow, nil},
}

var lookup = buildLookup()

func buildLookup() map[Section]map[string]ItemDef {
	m := make(map[Section]map[string]ItemDef)
	for _, def := range Catalog {
		if m[def.Section] == nil {
			m[def.Section] = make(map[string]ItemDef)
		}
		m[def.Section][string(def.Key)] = def
		for _, alias := range def.Aliases {
			m[def.Section][alias] = def
		}
	}
	return m
}

// ResolveItem maps a caller key (canonical or alias, any case) to its definition within a section.
func ResolveItem(section Section, key string) (ItemDef, bool) {
	norm := strings.ToLower(strings.TrimSpace(key))
	norm = strings.NewReplacer(" ", "_", "-", "_", "&", "_and_").Replace(norm)
	def, ok := lookup[section][norm]
	return def, ok
}

// Normalize applies the item's sign convention to v.
func (s ItemDef) Normalize(v float64) float64 {
	switch s.Sign {
	case SignOutflow:
		if v > 0 {
			return -v
		}
	case SignMagnitude:
		if v < 0 {
			return -v
		}
	}
	return v
}
