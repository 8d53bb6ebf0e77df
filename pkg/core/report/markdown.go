package report

import (
	"blended_valuation/pkg/core/analysis"
	"blended_valuation/pkg/core/valuation"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// RenderMarkdown formats the report as a Markdown document.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	title := r.CompanyName
	if title == "" {
		title = "Unnamed Company"
	}
	sb.WriteString(fmt.Sprintf("# Valuation Report: %s\n\n", title))
	sb.WriteString(fmt.Sprintf("**Report ID:** `%s`\n", r.ReportID))
	if r.Currency != "" {
		sb.WriteString(fmt.Sprintf("**Currency:** %s\n", r.Currency))
	}
	if r.Sector != "" {
		sb.WriteString(fmt.Sprintf("**Sector:** %s\n", r.Sector))
	}
	if len(r.FiscalYears) > 0 {
		sb.WriteString(fmt.Sprintf("**Fiscal Years:** %d to %d\n", r.FiscalYears[0], r.FiscalYears[len(r.FiscalYears)-1]))
	}
	sb.WriteString("\n")

	sb.WriteString("## Blended Valuation\n\n")
	sb.WriteString(fmt.Sprintf("**Final Estimated Value:** %s\n\n", r.money(r.FinalEstimatedValue)))
	sb.WriteString("| Low | Mid | High |\n")
	sb.WriteString("|-----|-----|------|\n")
	sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n\n",
		r.money(r.ValuationRange.Low), r.money(r.ValuationRange.Mid), r.money(r.ValuationRange.High)))
	if r.EqualWeighted {
		sb.WriteString("All contributing methodologies carried zero weight; they were weighted equally.\n\n")
	}

	sb.WriteString("## Methodology Breakdown\n\n")
	sb.WriteString("| Methodology | Status | Enterprise Value | Weight | Configured Weight | Note |\n")
	sb.WriteString("|-------------|--------|------------------|--------|-------------------|------|\n")
	for _, e := range r.Breakdown.Entries() {
		ev := "n/a"
		if e.EnterpriseValue != nil {
			ev = r.money(*e.EnterpriseValue)
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s |\n",
			e.Label, e.Status, ev, pct(e.Weight), pct(e.ConfiguredWeight), escapeCell(e.Reason)))
	}
	sb.WriteString("\n")

	for _, e := range r.Breakdown.Entries() {
		writeDetails(&sb, r, e)
	}

	if g := r.Guard; g != nil {
		sb.WriteString("## Sector Anchor Check\n\n")
		sb.WriteString(fmt.Sprintf("Band (%s): %s to %s\n\n", g.BandSource, r.money(g.BandLow), r.money(g.BandHigh)))
		if g.WithinBand {
			sb.WriteString("The blended value falls inside the band.\n\n")
		} else {
			sb.WriteString(fmt.Sprintf("The blended value falls outside the band. Nearest value inside it: %s\n\n", r.money(g.SuggestedValue)))
		}
	}

	if r.Analysis != nil {
		writeAnalysis(&sb, r, r.Analysis)
	}

	if len(r.Warnings) > 0 {
		sb.WriteString("## Warnings\n\n")
		for _, w := range r.Warnings {
			sb.WriteString(fmt.Sprintf("- %s\n", w))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func writeDetails(sb *strings.Builder, r *Report, e *Entry) {
	switch d := e.Details.(type) {
	case *valuation.DCFDetails:
		sb.WriteString(fmt.Sprintf("### %s\n\n", e.Label))
		sb.WriteString(fmt.Sprintf("- Discount rate: %s (%s)\n", pct(d.DiscountRate.Rate), d.DiscountRate.Source))
		sb.WriteString(fmt.Sprintf("- Growth rate: %s (%s)\n", pct(d.GrowthRate), d.GrowthSource))
		sb.WriteString(fmt.Sprintf("- Terminal growth: %s\n", pct(d.TerminalGrowth)))
		sb.WriteString(fmt.Sprintf("- Base free cash flow: %s\n", r.money(d.BaseFCF)))
		sb.WriteString(fmt.Sprintf("- PV of projected cash flows: %s\n", r.money(d.PresentValueFCF)))
		sb.WriteString(fmt.Sprintf("- PV of terminal value: %s\n", r.money(d.PresentValueTV)))
		if d.ImpliedMultipleBasis != "" {
			sb.WriteString(fmt.Sprintf("- Implied EV/%s: %.2fx\n", strings.ToUpper(d.ImpliedMultipleBasis), d.ImpliedEVEBITDA))
		}
		writeNotes(sb, d.Notes)
	case *valuation.CompsDetails:
		sb.WriteString(fmt.Sprintf("### %s\n\n", e.Label))
		sb.WriteString(fmt.Sprintf("- Fiscal year: %d\n", d.Year))
		sb.WriteString(fmt.Sprintf("- Basis: %s\n", d.Basis))
		sb.WriteString(fmt.Sprintf("- Multiples: %.2fx EV/EBITDA, %.2fx EV/Sales (%s)\n", d.EVEBITDA, d.EVSales, d.MultipleSource))
		writeNotes(sb, d.Notes)
	case *valuation.AssetDetails:
		sb.WriteString(fmt.Sprintf("### %s\n\n", e.Label))
		sb.WriteString(fmt.Sprintf("- Fiscal year: %d\n", d.Year))
		sb.WriteString(fmt.Sprintf("- Method: %s\n", strings.ReplaceAll(d.Method, "_", " ")))
		sb.WriteString(fmt.Sprintf("- Net asset value: %s\n", r.money(d.NetAssetValue)))
		sb.WriteString(fmt.Sprintf("- Assets from: %s; liabilities from: %s\n",
			strings.ReplaceAll(d.AssetsBasis, "_", " "), strings.ReplaceAll(d.LiabilitiesBasis, "_", " ")))
	default:
		return
	}
	sb.WriteString("\n")
}

// ratioRow is one line of the financial ratios table.
type ratioRow struct {
	label  string
	value  func(analysis.Ratios) *float64
	format func(float64) string
}

func writeAnalysis(sb *strings.Builder, r *Report, a *analysis.Analysis) {
	days := func(v float64) string { return fmt.Sprintf("%.1f", v) }
	rows := []ratioRow{
		{"Gross margin", func(x analysis.Ratios) *float64 { return x.GrossMargin }, pct},
		{"EBITDA margin", func(x analysis.Ratios) *float64 { return x.EBITDAMargin }, pct},
		{"EBIT margin", func(x analysis.Ratios) *float64 { return x.EBITMargin }, pct},
		{"Net margin", func(x analysis.Ratios) *float64 { return x.NetMargin }, pct},
		{"Revenue growth", func(x analysis.Ratios) *float64 { return x.RevenueGrowth }, pct},
		{"DSO (days)", func(x analysis.Ratios) *float64 { return x.DSO }, days},
		{"DIO (days)", func(x analysis.Ratios) *float64 { return x.DIO }, days},
		{"DPO (days)", func(x analysis.Ratios) *float64 { return x.DPO }, days},
		{"Cash conversion cycle (days)", func(x analysis.Ratios) *float64 { return x.CCC }, days},
		{"Net working capital", func(x analysis.Ratios) *float64 { return x.NWC }, r.money},
		{"Change in NWC", func(x analysis.Ratios) *float64 { return x.DeltaNWC }, r.money},
		{"Capex % of revenue", func(x analysis.Ratios) *float64 { return x.CapexPercent }, pct},
		{"D&A % of revenue", func(x analysis.Ratios) *float64 { return x.DAPercent }, pct},
	}

	sb.WriteString("## Financial Ratios\n\n")
	sb.WriteString("| Metric |")
	for _, y := range a.Years {
		sb.WriteString(fmt.Sprintf(" %d |", y.Year))
	}
	sb.WriteString("\n|--------|")
	for range a.Years {
		sb.WriteString("------|")
	}
	sb.WriteString("\n")

	for _, row := range rows {
		cells := make([]string, len(a.Years))
		present := false
		for i, y := range a.Years {
			cells[i] = "n/a"
			if v := row.value(y); v != nil {
				cells[i] = row.format(*v)
				present = true
			}
		}
		if !present {
			continue
		}
		sb.WriteString(fmt.Sprintf("| %s | %s |\n", row.label, strings.Join(cells, " | ")))
	}
	sb.WriteString("\n")

	if a.RevenueCAGR != nil {
		sb.WriteString(fmt.Sprintf("- Revenue CAGR: %s\n", pct(*a.RevenueCAGR)))
	}
	writeNotes(sb, a.Notes)
	sb.WriteString("\n")
}

func writeNotes(sb *strings.Builder, notes []string) {
	for _, n := range notes {
		sb.WriteString(fmt.Sprintf("- Note: %s\n", n))
	}
}

func (r *Report) money(v float64) string {
	s := humanize.CommafWithDigits(v, int(r.decimals))
	if r.Currency != "" {
		return s + " " + r.Currency
	}
	return s
}

func pct(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

// escapeCell keeps pipes from splitting a table cell.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
