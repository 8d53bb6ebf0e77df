package calc

import (
	"blended_valuation/pkg/models"
	"sort"
)

// SignFlip records a value whose sign was changed during normalization.
type SignFlip struct {
	Item models.LineItem
	Year int
	From float64
	To   float64
}

// NormalizeSigns applies the catalog sign convention to every value of a statement in place.
// Expenses and cash outflows end up negative, balance sheet positions positive, everything
// else is left as reported. Call this once after ingestion and before calculation.
func NormalizeSigns(section models.Section, fs models.FinancialStatement) []SignFlip {
	var flips []SignFlip
	items := make([]string, 0, len(fs))
	for item := range fs {
		items = append(items, string(item))
	}
	sort.Strings(items)

	for _, key := range items {
		item := models.LineItem(key)
		def, ok := models.ResolveItem(section, key)
		if !ok {
			continue
		}
		series := fs[item]
		for _, year := range series.Years() {
			v := series[year]
			n := def.Normalize(v)
			if n != v {
				series[year] = n
				flips = append(flips, SignFlip{Item: item, Year: year, From: v, To: n})
			}
		}
	}
	return flips
}

// Scale multiplies every value of a statement in place.
func Scale(fs models.FinancialStatement, multiplier float64) {
	if multiplier == 1 {
		return
	}
	for _, series := range fs {
		for y, v := range series {
			series[y] = v * multiplier
		}
	}
}
