package assumption

import (
	"fmt"
	"math"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

// SectorRetail is the sector key carried in the default multiples table.
const SectorRetail = "Retail"

// weightSumTolerance bounds the rounding slack allowed on the weight sum.
const weightSumTolerance = 1e-6

var validate = validator.New()

// =============================================================================
// DEFAULTS
// =============================================================================

// Defaults returns the calibrated SME assumption set.
//
// Cost of capital: rf 7.58%, ERP 5%, CRP 4%, beta 1.0, fallback WACC 13.58%.
// Terminal growth 3.5%. Retail precedent multiples 6.5x EBITDA and 0.9x sales.
// Blend weights DCF 60%, transaction comps 25%, asset-based 15%.
func Defaults() Assumptions {
	return Assumptions{
		Engine: EngineConfig{Parallel: true},
		Weights: Weights{
			DCF:              0.60,
			TransactionComps: 0.25,
			AssetBased:       0.15,
		},
		DCF: DCFConfig{
			ProjectionYears:     5,
			DefaultDiscountRate: 0.1358,
			TerminalGrowthRate:  0.035,
			TerminalPolicy:      TerminalPolicyClamp,
			MinSpread:           0.01,
			DefaultGrowthRate:   0,
			MinGrowthRate:       -0.10,
			MaxGrowthRate:       0.25,
			FadeToTerminal:      true,
			Sensitivity: SensitivityConfig{
				Enabled:    false,
				RateStep:   0.01,
				GrowthStep: 0.01,
			},
		},
		Capital: CapitalConfig{
			RiskFreeRate:        0.0758,
			EquityRiskPremium:   0.05,
			CountryRiskPremium:  0.04,
			Beta:                1.0,
			NormalizedTaxRate:   0.15,
			MinEffectiveTaxRate: 0.05,
			MaxEffectiveTaxRate: 0.35,
			MinCostOfDebt:       0.02,
			MaxCostOfDebt:       0.25,
		},
		Comps: CompsConfig{
			Mode:             CompsModePrimary,
			DefaultMultiples: Multiples{EVEBITDA: 6.5, EVSales: 0.9},
			MultiplesBySector: map[string]Multiples{
				SectorRetail: {EVEBITDA: 6.5, EVSales: 0.9},
			},
			PreferEBITDA: true,
		},
		Guard: GuardConfig{
			Enabled:       true,
			AnchorBandPct: 0.15,
			EVSalesLow:    0.7,
			EVSalesHigh:   1.1,
		},
		Validation: ValidationConfig{
			StrictSections:     false,
			IntegrityTolerance: 0.01,
		},
		Report: ReportConfig{Decimals: 0},
	}
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads a YAML assumptions file over the defaults and validates the result.
// An empty path returns the defaults.
func Load(path string) (Assumptions, error) {
	a := Defaults()
	if path == "" {
		return a, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Assumptions{}, fmt.Errorf("failed to read assumptions %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Assumptions, error) {
	a := Defaults()
	if err := yaml.Unmarshal(data, &a); err != nil {
		return Assumptions{}, fmt.Errorf("failed to parse assumptions: %w", err)
	}
	if err := a.Validate(); err != nil {
		return Assumptions{}, err
	}
	return a, nil
}

// Validate checks field ranges and cross-field constraints.
func (a Assumptions) Validate() error {
	if err := validate.Struct(a); err != nil {
		return fmt.Errorf("invalid assumptions: %w", err)
	}
	if sum := a.Weights.Sum(); math.Abs(sum-1) > weightSumTolerance {
		return fmt.Errorf("invalid assumptions: weights sum to %.6f, want 1", sum)
	}
	if a.DCF.MinGrowthRate > a.DCF.MaxGrowthRate {
		return fmt.Errorf("invalid assumptions: min_growth_rate %.4f exceeds max_growth_rate %.4f",
			a.DCF.MinGrowthRate, a.DCF.MaxGrowthRate)
	}
	if a.Capital.MinCostOfDebt > a.Capital.MaxCostOfDebt {
		return fmt.Errorf("invalid assumptions: min_cost_of_debt exceeds max_cost_of_debt")
	}
	if a.Capital.MinEffectiveTaxRate > a.Capital.MaxEffectiveTaxRate {
		return fmt.Errorf("invalid assumptions: min_effective_tax_rate exceeds max_effective_tax_rate")
	}
	if a.Guard.EVSalesLow > a.Guard.EVSalesHigh {
		return fmt.Errorf("invalid assumptions: ev_sales_low exceeds ev_sales_high")
	}
	return nil
}

// YAML renders the assumption set in the file format Load accepts.
func (a Assumptions) YAML() ([]byte, error) {
	return yaml.Marshal(a)
}
