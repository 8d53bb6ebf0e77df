// Package report assembles the valuation outcome into the caller-facing document
// and renders it as JSON, Markdown or HTML.
package report

import (
	"blended_valuation/pkg/core/analysis"
	"blended_valuation/pkg/core/assumption"
	"blended_valuation/pkg/core/valuation"
	"blended_valuation/pkg/models"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var reportNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("blended_valuation/report"))

// Report is the assembled valuation document.
type Report struct {
	ReportID            string    `json:"report_id"`
	CompanyName         string    `json:"company_name,omitempty"`
	Currency            string    `json:"currency,omitempty"`
	Sector              string    `json:"sector,omitempty"`
	Units               string    `json:"units,omitempty"`
	FiscalYears         []int     `json:"fiscal_years"`
	FinalEstimatedValue float64   `json:"final_estimated_value"`
	ValuationRange      Range     `json:"valuation_range"`
	Breakdown           Breakdown `json:"methodology_breakdown"`

	Weights       map[models.Methodology]float64 `json:"weights"`
	EqualWeighted bool                           `json:"equal_weighted,omitempty"`
	Guard         *Guard                         `json:"guard,omitempty"`
	Analysis      *analysis.Analysis             `json:"financial_analysis,omitempty"`
	Warnings      []string                       `json:"warnings"`

	decimals int32
}

// Range mirrors valuation.Range after rounding.
type Range struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
	Mid  float64 `json:"mid"`
}

// Breakdown holds one entry per methodology, in reporting order.
type Breakdown struct {
	DCF              Entry `json:"dcf"`
	TransactionComps Entry `json:"transaction_comps"`
	AssetBased       Entry `json:"asset_based"`
}

// Entries returns the breakdown in reporting order.
func (b *Breakdown) Entries() []*Entry {
	return []*Entry{&b.DCF, &b.TransactionComps, &b.AssetBased}
}

// Entry is one methodology's contribution. EnterpriseValue is nil when unavailable.
type Entry struct {
	Method           models.Methodology `json:"-"`
	Label            string             `json:"label"`
	Status           valuation.Status   `json:"status"`
	EnterpriseValue  *float64           `json:"enterprise_value"`
	Weight           float64            `json:"weight"`
	ConfiguredWeight float64            `json:"configured_weight"`
	Reason           string             `json:"reason,omitempty"`
	Details          any                `json:"details,omitempty"`
}

// Guard is the rounded advisory anchor band check.
type Guard struct {
	BandLow        float64 `json:"band_low"`
	BandHigh       float64 `json:"band_high"`
	BandSource     string  `json:"band_source"`
	EarningsBasis  string  `json:"earnings_basis,omitempty"`
	WithinBand     bool    `json:"within_band"`
	SuggestedValue float64 `json:"suggested_value"`
}

// Options controls report assembly.
type Options struct {
	Decimals int32
}

// OptionsFrom maps the report section of the assumptions.
func OptionsFrom(cfg assumption.ReportConfig) Options {
	return Options{Decimals: cfg.Decimals}
}

// Assemble builds the report from an evaluation outcome. Values are rounded half away
// from zero to opts.Decimals places; methodology details are reported unrounded.
func Assemble(out *valuation.Outcome, opts Options) (*Report, error) {
	if out == nil || out.Input == nil {
		return nil, fmt.Errorf("assemble report: no outcome")
	}
	id, err := ReportID(out.Input, out.Assumptions)
	if err != nil {
		return nil, err
	}

	in := out.Input
	bv := out.Blend
	r := &Report{
		ReportID:            id.String(),
		CompanyName:         in.CompanyName,
		Currency:            in.Currency,
		Sector:              in.Sector,
		Units:               string(in.Units),
		FiscalYears:         append([]int{}, in.Years...),
		FinalEstimatedValue: round(bv.FinalEstimatedValue, opts.Decimals),
		ValuationRange: Range{
			Low:  round(bv.Range.Low, opts.Decimals),
			High: round(bv.Range.High, opts.Decimals),
			Mid:  round(bv.Range.Mid, opts.Decimals),
		},
		Weights:       make(map[models.Methodology]float64, len(models.Methodologies)),
		EqualWeighted: bv.EqualWeighted,
		Analysis:      analysis.Analyze(in),
		Warnings:      append([]string{}, in.Warnings...),
		decimals:      opts.Decimals,
	}

	for i, entry := range r.Breakdown.Entries() {
		m := models.Methodologies[i]
		res, ok := out.Result(m)
		if !ok {
			res = valuation.Unavailable(m, "not evaluated")
		}
		*entry = Entry{
			Method:           m,
			Label:            m.Label(),
			Status:           res.Status,
			Weight:           bv.Weights[m],
			ConfiguredWeight: bv.ConfiguredWeights[m],
			Reason:           res.Reason,
			Details:          res.Details,
		}
		if res.IsAvailable() {
			ev := round(res.EnterpriseValue, opts.Decimals)
			entry.EnterpriseValue = &ev
		}
		r.Weights[m] = entry.Weight
	}

	if g := out.Guard; g != nil {
		r.Guard = &Guard{
			BandLow:        round(g.BandLow, opts.Decimals),
			BandHigh:       round(g.BandHigh, opts.Decimals),
			BandSource:     g.BandSource,
			EarningsBasis:  g.EarningsBasis,
			WithinBand:     g.WithinBand,
			SuggestedValue: round(g.SuggestedValue, opts.Decimals),
		}
	}
	return r, nil
}

// ReportID derives a deterministic identifier from the normalized input and assumptions.
func ReportID(in *models.ValuationInput, a assumption.Assumptions) (uuid.UUID, error) {
	canonical, err := json.Marshal(struct {
		Input       *models.ValuationInput `json:"input"`
		Assumptions assumption.Assumptions `json:"assumptions"`
	}{in, a})
	if err != nil {
		return uuid.Nil, fmt.Errorf("canonical report payload: %w", err)
	}
	return uuid.NewSHA1(reportNamespace, canonical), nil
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
