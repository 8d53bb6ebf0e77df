package valuation

import (
	"blended_valuation/pkg/core/assumption"
	"blended_valuation/pkg/core/calc"
	"blended_valuation/pkg/models"
	"fmt"
	"math"
)

// =============================================================================
// BLENDING
// =============================================================================

// Range is the spread of methodology estimates around the blended value.
type Range struct {
	Low  float64 `json:"low"`
	Mid  float64 `json:"mid"`
	High float64 `json:"high"`
}

// BlendedValuation is the weighted combination of the available estimates.
// Weights holds the renormalized weights actually applied (0 for skipped methods).
type BlendedValuation struct {
	FinalEstimatedValue float64                        `json:"final_estimated_value"`
	Range               Range                          `json:"valuation_range"`
	Weights             map[models.Methodology]float64 `json:"weights"`
	ConfiguredWeights   map[models.Methodology]float64 `json:"configured_weights"`
	EqualWeighted       bool                           `json:"equal_weighted,omitempty"`
	Contributing        []models.Methodology           `json:"contributing"`
}

// Blend combines methodology results with configured weights.
//
// FORMULA: Mid = Σ w'ᵢ × EVᵢ over available methods, w'ᵢ = wᵢ / Σ w_available
//
// Low and High are the minimum and maximum available estimates. When every available
// method has weight 0 they share the weight equally. Returns *ProcessingError when no
// method is available.
func Blend(results []MethodologyResult, weights assumption.Weights) (BlendedValuation, error) {
	byMethod := make(map[models.Methodology]MethodologyResult, len(results))
	for _, r := range results {
		byMethod[r.Method] = r
	}

	bv := BlendedValuation{
		Weights:           make(map[models.Methodology]float64, len(models.Methodologies)),
		ConfiguredWeights: make(map[models.Methodology]float64, len(models.Methodologies)),
	}
	reasons := make(map[models.Methodology]string)
	var values []float64
	var total float64

	for _, m := range models.Methodologies {
		bv.ConfiguredWeights[m] = weights.Of(m)
		bv.Weights[m] = 0
		r, ok := byMethod[m]
		if !ok {
			reasons[m] = "not evaluated"
			continue
		}
		if !r.IsAvailable() {
			reasons[m] = r.Reason
			continue
		}
		bv.Contributing = append(bv.Contributing, m)
		values = append(values, r.EnterpriseValue)
		total += weightOf(weights, m)
	}

	if len(bv.Contributing) == 0 {
		return BlendedValuation{}, &ProcessingError{Reasons: reasons}
	}

	var mid float64
	for _, m := range bv.Contributing {
		w := weightOf(weights, m) / total
		if total <= 0 {
			w = 1 / float64(len(bv.Contributing))
			bv.EqualWeighted = true
		}
		bv.Weights[m] = w
		mid += w * byMethod[m].EnterpriseValue
	}

	low, high := calc.MinMax(values)
	mid = calc.Clamp(mid, low, high)
	if math.IsNaN(mid) {
		return BlendedValuation{}, fmt.Errorf("blended value is not a number")
	}

	bv.Range = Range{Low: low, Mid: mid, High: high}
	bv.FinalEstimatedValue = mid
	return bv, nil
}

// weightOf treats negative weights as 0.
func weightOf(w assumption.Weights, m models.Methodology) float64 {
	return math.Max(0, w.Of(m))
}

// =============================================================================
// ANCHOR BAND GUARD
// =============================================================================

// GuardResult is the advisory sanity check of the blended value against sector anchors.
// It never alters the blended value. SuggestedValue is the blend clamped into the band.
type GuardResult struct {
	EarningsBasis  string  `json:"earnings_basis,omitempty"`
	AnchorValue    float64 `json:"anchor_value,omitempty"` // earnings × sector EV/EBITDA
	AnchorLow      float64 `json:"anchor_low,omitempty"`
	AnchorHigh     float64 `json:"anchor_high,omitempty"`
	SalesLow       float64 `json:"sales_low,omitempty"`
	SalesHigh      float64 `json:"sales_high,omitempty"`
	BandLow        float64 `json:"band_low"`
	BandHigh       float64 `json:"band_high"`
	BandSource     string  `json:"band_source"` // intersection, anchor or sales
	WithinBand     bool    `json:"within_band"`
	SuggestedValue float64 `json:"suggested_value"`
}

// CheckAnchorBand compares the blend with the EV/EBITDA anchor band (anchor ± pct) and the
// EV/Sales band. The intersection is used when it is non-empty, else whichever band exists
// with the anchor band taking precedence. Returns nil when neither band can be built.
func CheckAnchorBand(bv BlendedValuation, in *models.ValuationInput, a assumption.Assumptions) *GuardResult {
	is, ok := in.Statement(models.SectionIncome)
	if !ok {
		return nil
	}
	year, ok := is.LatestYear()
	if !ok {
		return nil
	}
	multiples, _ := a.Comps.MultiplesFor(in.Sector)
	g := &GuardResult{}

	earnings, hasAnchor := EarningsBasis(is, year)
	hasAnchor = hasAnchor && earnings.Value > 0
	if hasAnchor {
		g.EarningsBasis = earnings.Basis
		g.AnchorValue = earnings.Value * multiples.EVEBITDA
		g.AnchorLow = g.AnchorValue * (1 - a.Guard.AnchorBandPct)
		g.AnchorHigh = g.AnchorValue * (1 + a.Guard.AnchorBandPct)
	}
	revenue, hasSales := is.Value(models.RevenueSales, year)
	hasSales = hasSales && revenue > 0
	if hasSales {
		g.SalesLow = revenue * a.Guard.EVSalesLow
		g.SalesHigh = revenue * a.Guard.EVSalesHigh
	}

	switch {
	case hasAnchor && hasSales && math.Max(g.AnchorLow, g.SalesLow) <= math.Min(g.AnchorHigh, g.SalesHigh):
		g.BandLow, g.BandHigh, g.BandSource = math.Max(g.AnchorLow, g.SalesLow), math.Min(g.AnchorHigh, g.SalesHigh), "intersection"
	case hasAnchor:
		g.BandLow, g.BandHigh, g.BandSource = g.AnchorLow, g.AnchorHigh, "anchor"
	case hasSales:
		g.BandLow, g.BandHigh, g.BandSource = g.SalesLow, g.SalesHigh, "sales"
	default:
		return nil
	}

	v := bv.FinalEstimatedValue
	g.WithinBand = v >= g.BandLow && v <= g.BandHigh
	g.SuggestedValue = calc.Clamp(v, g.BandLow, g.BandHigh)
	return g
}
