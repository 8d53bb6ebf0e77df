package valuation

import (
	"blended_valuation/pkg/core/assumption"
	"blended_valuation/pkg/core/calc"
	"math"
)

// Scenario is one discount-rate / terminal-growth pair of the sensitivity grid.
type Scenario struct {
	DiscountRate    float64 `json:"discount_rate"`
	TerminalGrowth  float64 `json:"terminal_growth_rate"`
	EnterpriseValue float64 `json:"enterprise_value"`
	ImpliedMultiple float64 `json:"implied_multiple"`
	Delta           float64 `json:"delta"` // |implied - target|
}

// SensitivityGrid holds every evaluated scenario and the one selected.
type SensitivityGrid struct {
	TargetMultiple float64    `json:"target_multiple"`
	Scenarios      []Scenario `json:"scenarios"`
	Selected       Scenario   `json:"selected"`
}

// RunSensitivity discounts fixed projections over {r-step, r, r+step} × {g-step, g, g+step}
// and selects the scenario whose implied EV/EBITDA is closest to the target multiple.
// Ties go to the lower discount rate, then the higher terminal growth.
// Pairs with r <= g are skipped. Returns nil when no pair is valid.
func RunSensitivity(projected []float64, r, g float64, cfg assumption.SensitivityConfig, earnings, target float64) *SensitivityGrid {
	if len(projected) == 0 || earnings <= 0 {
		return nil
	}
	rates := []float64{r - cfg.RateStep, r, r + cfg.RateStep}
	growths := []float64{g - cfg.GrowthStep, g, g + cfg.GrowthStep}
	final := projected[len(projected)-1]

	grid := &SensitivityGrid{TargetMultiple: target}
	best := -1
	for _, ri := range rates {
		if ri <= 0 {
			continue
		}
		pvFCF := calc.PresentValueOfCashFlows(projected, ri)
		for _, gj := range growths {
			tv, ok := calc.TerminalValueGordonGrowth(final, ri, gj)
			if !ok {
				continue
			}
			ev := pvFCF + calc.PresentValue(tv, ri, len(projected))
			implied := ev / earnings
			s := Scenario{
				DiscountRate:    ri,
				TerminalGrowth:  gj,
				EnterpriseValue: ev,
				ImpliedMultiple: implied,
				Delta:           math.Abs(implied - target),
			}
			grid.Scenarios = append(grid.Scenarios, s)
			if best < 0 || better(s, grid.Scenarios[best]) {
				best = len(grid.Scenarios) - 1
			}
		}
	}
	if best < 0 {
		return nil
	}
	grid.Selected = grid.Scenarios[best]
	return grid
}

// better orders scenarios by delta, then lower rate, then higher growth.
func better(a, b Scenario) bool {
	if a.Delta != b.Delta {
		return a.Delta < b.Delta
	}
	if a.DiscountRate != b.DiscountRate {
		return a.DiscountRate < b.DiscountRate
	}
	return a.TerminalGrowth > b.TerminalGrowth
}
