package valuation

import (
	"blended_valuation/pkg/models"
	"fmt"
)

// Asset-based method labels.
const (
	NAVReportedTotals = "reported_totals"
	NAVBookEquity     = "book_equity"
	NAVMixed          = "totals_and_components"
	NAVReconstructed  = "reconstructed"
)

// Side bases for the asset and liability totals used.
const (
	BasisReported   = "reported_total"
	BasisComponents = "components"
	BasisNone       = "none"
)

var (
	navAssetItems = []models.LineItem{
		models.CashEquivalents, models.AccountsReceivable, models.Inventory, models.OtherCurrentAssets,
		models.PPE, models.IntangibleAssets, models.OtherNonCurrentAssets,
	}
	navLiabilityItems = []models.LineItem{
		models.AccountsPayable, models.ShortTermDebt, models.LongTermDebt,
		models.DeferredTaxLiabilities, models.OtherLiabilities,
	}
)

// AssetDetails lists the components of the net asset value.
type AssetDetails struct {
	Year             int                         `json:"year"`
	Method           string                      `json:"method"`
	NetAssetValue    float64                     `json:"net_asset_value"`
	AssetsBasis      string                      `json:"assets_basis"`
	LiabilitiesBasis string                      `json:"liabilities_basis"`
	TotalAssets      *float64                    `json:"total_assets,omitempty"`
	TotalLiabilities *float64                    `json:"total_liabilities,omitempty"`
	BookEquity       *float64                    `json:"shareholders_equity,omitempty"`
	Assets           map[models.LineItem]float64 `json:"asset_components,omitempty"`
	Liabilities      map[models.LineItem]float64 `json:"liability_components,omitempty"`
	ReconstructedNAV *float64                    `json:"reconstructed_nav,omitempty"`
}

// navSide is one side of the balance sheet: a reported total, else the sum of its sub-items.
type navSide struct {
	value      float64
	basis      string
	components float64
}

func buildSide(bs models.FinancialStatement, year int, total models.LineItem, items []models.LineItem) (navSide, map[models.LineItem]float64) {
	var components map[models.LineItem]float64
	var sum float64
	for _, item := range items {
		if v, ok := bs.Value(item, year); ok {
			if components == nil {
				components = make(map[models.LineItem]float64)
			}
			components[item] = v
			sum += v
		}
	}

	if v, ok := bs.Value(total, year); ok {
		return navSide{value: v, basis: BasisReported, components: sum}, components
	}
	if len(components) > 0 {
		return navSide{value: sum, basis: BasisComponents, components: sum}, components
	}
	return navSide{basis: BasisNone}, nil
}

// CalculateAssetBased computes net asset value for the latest balance sheet year.
//
// FORMULA: NAV = Total Assets - Total Liabilities
//
// Each side is its reported total, else the sum of its sub-items. Both totals reported wins.
// Otherwise shareholders' equity is the book floor, since A - L = E by identity and sub-item
// sums are usually partial. Without equity, NAV uses whatever each side provides; a balance
// sheet with no liability figures counts liabilities as zero.
func CalculateAssetBased(in *models.ValuationInput) MethodologyResult {
	const method = models.MethodAssetBased

	bs, ok := in.Statement(models.SectionBalance)
	if !ok {
		return Unavailable(method, "balance sheet missing")
	}
	year, ok := bs.LatestYear()
	if !ok {
		return Unavailable(method, "balance sheet has no fiscal year")
	}

	d := &AssetDetails{Year: year}
	if v, ok := bs.Value(models.TotalAssets, year); ok {
		d.TotalAssets = &v
	}
	if v, ok := bs.Value(models.TotalLiabilities, year); ok {
		d.TotalLiabilities = &v
	}
	if v, ok := bs.Value(models.ShareholdersEquity, year); ok {
		d.BookEquity = &v
	}

	assets, assetItems := buildSide(bs, year, models.TotalAssets, navAssetItems)
	liabilities, liabilityItems := buildSide(bs, year, models.TotalLiabilities, navLiabilityItems)
	d.Assets, d.Liabilities = assetItems, liabilityItems
	d.AssetsBasis, d.LiabilitiesBasis = assets.basis, liabilities.basis

	if len(assetItems) > 0 {
		nav := assets.components - liabilities.components
		d.ReconstructedNAV = &nav
	}

	switch {
	case assets.basis == BasisReported && liabilities.basis == BasisReported:
		d.Method = NAVReportedTotals
		d.NetAssetValue = assets.value - liabilities.value
	case d.BookEquity != nil:
		d.Method = NAVBookEquity
		d.NetAssetValue = *d.BookEquity
	case assets.basis != BasisNone:
		d.Method = NAVReconstructed
		if assets.basis == BasisReported || liabilities.basis == BasisReported {
			d.Method = NAVMixed
		}
		d.NetAssetValue = assets.value - liabilities.value
	default:
		return Unavailable(method, fmt.Sprintf("balance sheet for %d has no asset figures", year))
	}

	return Available(method, d.NetAssetValue, d)
}
