// Package assumption holds the static configuration the valuation engine evaluates against:
// methodology weights, default multiples, discount-rate and growth assumptions.
// Defaults reproduce the deterministic SME model the engine was calibrated on.
package assumption

import (
	"blended_valuation/pkg/models"
	"strings"
)

// =============================================================================
// ASSUMPTION SET
// =============================================================================

// Assumptions is the complete configuration object passed into the engine.
type Assumptions struct {
	Engine     EngineConfig     `yaml:"engine" json:"engine"`
	Weights    Weights          `yaml:"weights" json:"weights"`
	DCF        DCFConfig        `yaml:"dcf" json:"dcf"`
	Capital    CapitalConfig    `yaml:"capital" json:"capital"`
	Comps      CompsConfig      `yaml:"comps" json:"comps"`
	Guard      GuardConfig      `yaml:"guard" json:"guard"`
	Validation ValidationConfig `yaml:"validation" json:"validation"`
	Report     ReportConfig     `yaml:"report" json:"report"`
}

// EngineConfig controls evaluation scheduling.
type EngineConfig struct {
	Parallel bool `yaml:"parallel" json:"parallel"` // Run the three estimators concurrently
}

// Weights maps each methodology to its blend weight. Must be non-negative and sum to 1.
type Weights struct {
	DCF              float64 `yaml:"dcf" json:"dcf" validate:"gte=0,lte=1"`
	TransactionComps float64 `yaml:"transaction_comps" json:"transaction_comps" validate:"gte=0,lte=1"`
	AssetBased       float64 `yaml:"asset_based" json:"asset_based" validate:"gte=0,lte=1"`
}

// Of returns the configured weight of a methodology.
func (w Weights) Of(m models.Methodology) float64 {
	switch m {
	case models.MethodDCF:
		return w.DCF
	case models.MethodTransactionComps:
		return w.TransactionComps
	case models.MethodAssetBased:
		return w.AssetBased
	}
	return 0
}

// Sum returns the total configured weight.
func (w Weights) Sum() float64 {
	return w.DCF + w.TransactionComps + w.AssetBased
}

// Terminal value policies when the discount rate does not exceed terminal growth.
const (
	TerminalPolicyClamp  = "clamp"
	TerminalPolicyReject = "reject"
)

// DCFConfig holds discounted cash flow assumptions.
type DCFConfig struct {
	ProjectionYears     int               `yaml:"projection_years" json:"projection_years" validate:"min=1,max=30"`
	DiscountRate        float64           `yaml:"discount_rate" json:"discount_rate" validate:"gte=0,lt=1"` // 0 = derive from capital structure
	DefaultDiscountRate float64           `yaml:"default_discount_rate" json:"default_discount_rate" validate:"gt=0,lt=1"`
	TerminalGrowthRate  float64           `yaml:"terminal_growth_rate" json:"terminal_growth_rate" validate:"gt=-1,lt=1"`
	TerminalPolicy      string            `yaml:"terminal_policy" json:"terminal_policy" validate:"oneof=clamp reject"`
	MinSpread           float64           `yaml:"min_spread" json:"min_spread" validate:"gt=0,lt=1"` // r - g floor when clamping
	DefaultGrowthRate   float64           `yaml:"default_growth_rate" json:"default_growth_rate" validate:"gt=-1,lt=1"`
	MinGrowthRate       float64           `yaml:"min_growth_rate" json:"min_growth_rate" validate:"gt=-1,lt=1"`
	MaxGrowthRate       float64           `yaml:"max_growth_rate" json:"max_growth_rate" validate:"gt=-1,lt=1"`
	FadeToTerminal      bool              `yaml:"fade_to_terminal" json:"fade_to_terminal"`
	Sensitivity         SensitivityConfig `yaml:"sensitivity" json:"sensitivity"`
}

// SensitivityConfig enables the discount-rate × terminal-growth grid.
type SensitivityConfig struct {
	Enabled    bool    `yaml:"enabled" json:"enabled"`
	RateStep   float64 `yaml:"rate_step" json:"rate_step" validate:"gte=0,lt=1"`
	GrowthStep float64 `yaml:"growth_step" json:"growth_step" validate:"gte=0,lt=1"`
}

// CapitalConfig holds cost-of-capital inputs used to derive the discount rate.
type CapitalConfig struct {
	RiskFreeRate        float64 `yaml:"risk_free_rate" json:"risk_free_rate" validate:"gte=0,lt=1"`
	EquityRiskPremium   float64 `yaml:"equity_risk_premium" json:"equity_risk_premium" validate:"gte=0,lt=1"`
	CountryRiskPremium  float64 `yaml:"country_risk_premium" json:"country_risk_premium" validate:"gte=0,lt=1"`
	Beta                float64 `yaml:"beta" json:"beta" validate:"gte=0,lte=5"`
	NormalizedTaxRate   float64 `yaml:"normalized_tax_rate" json:"normalized_tax_rate" validate:"gte=0,lt=1"`
	MinEffectiveTaxRate float64 `yaml:"min_effective_tax_rate" json:"min_effective_tax_rate" validate:"gte=0,lt=1"`
	MaxEffectiveTaxRate float64 `yaml:"max_effective_tax_rate" json:"max_effective_tax_rate" validate:"gte=0,lt=1"`
	MinCostOfDebt       float64 `yaml:"min_cost_of_debt" json:"min_cost_of_debt" validate:"gte=0,lt=1"`
	MaxCostOfDebt       float64 `yaml:"max_cost_of_debt" json:"max_cost_of_debt" validate:"gt=0,lt=1"`
}

// Comparable estimate modes.
const (
	CompsModePrimary = "primary" // EBIT/EBITDA basis preferred, revenue as fallback
	CompsModeMedian  = "median"  // lower median of the earnings and revenue estimates
)

// Multiples holds enterprise-value multiples for one sector.
type Multiples struct {
	EVEBITDA float64 `yaml:"ev_ebitda" json:"ev_ebitda" validate:"gt=0"`
	EVSales  float64 `yaml:"ev_sales" json:"ev_sales" validate:"gt=0"`
}

// CompsConfig holds precedent transaction assumptions.
type CompsConfig struct {
	Mode              string               `yaml:"mode" json:"mode" validate:"oneof=primary median"`
	DefaultMultiples  Multiples            `yaml:"default_multiples" json:"default_multiples"`
	MultiplesBySector map[string]Multiples `yaml:"multiples_by_sector" json:"multiples_by_sector" validate:"dive"`
	PreferEBITDA      bool                 `yaml:"prefer_ebitda" json:"prefer_ebitda"` // add back D&A when reported
}

// GuardConfig holds the advisory anchor-band check applied to the blended value.
type GuardConfig struct {
	Enabled       bool    `yaml:"enabled" json:"enabled"`
	AnchorBandPct float64 `yaml:"anchor_band_pct" json:"anchor_band_pct" validate:"gte=0,lt=1"`
	EVSalesLow    float64 `yaml:"ev_sales_low" json:"ev_sales_low" validate:"gte=0"`
	EVSalesHigh   float64 `yaml:"ev_sales_high" json:"ev_sales_high" validate:"gte=0"`
}

// ValidationConfig controls input validation strictness.
type ValidationConfig struct {
	StrictSections     bool    `yaml:"strict_sections" json:"strict_sections"` // Missing section is a validation error
	IntegrityTolerance float64 `yaml:"integrity_tolerance" json:"integrity_tolerance" validate:"gte=0,lt=1"`
}

// ReportConfig controls report assembly.
type ReportConfig struct {
	Decimals int32 `yaml:"decimals" json:"decimals" validate:"gte=0,lte=6"`
}

// MultiplesFor returns the multiples for a sector, falling back to the defaults.
// The second return value names the source ("sector:<name>" or "default").
func (c CompsConfig) MultiplesFor(sector string) (Multiples, string) {
	sector = strings.TrimSpace(sector)
	if sector == "" {
		return c.DefaultMultiples, "default"
	}
	if m, ok := c.MultiplesBySector[sector]; ok {
		return m, "sector:" + sector
	}
	for name, m := range c.MultiplesBySector {
		if strings.EqualFold(name, sector) {
			return m, "sector:" + name
		}
	}
	return c.DefaultMultiples, "default"
}
