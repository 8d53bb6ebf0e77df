package report

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"blended_valuation/pkg/core/assumption"
	"blended_valuation/pkg/core/logging"
	"blended_valuation/pkg/core/testutil"
	"blended_valuation/pkg/core/valuation"
	"blended_valuation/pkg/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evaluate(t *testing.T, a assumption.Assumptions, raw models.RawInput) *valuation.Outcome {
	t.Helper()
	out, err := valuation.NewEngine(a, logging.NewSilentLogger()).EvaluateRaw(context.Background(), raw)
	require.NoError(t, err)
	return out
}

func sampleReport(t *testing.T) *Report {
	t.Helper()
	a := assumption.Defaults()
	r, err := Assemble(evaluate(t, a, testutil.SampleRawInput()), OptionsFrom(a.Report))
	require.NoError(t, err)
	return r
}

// =============================================================================
// ASSEMBLY
// =============================================================================

func TestAssemble_Sample(t *testing.T) {
	r := sampleReport(t)

	assert.Equal(t, 110330.0, r.FinalEstimatedValue)
	assert.Equal(t, Range{Low: 8914, High: 326417, Mid: 110330}, r.ValuationRange)
	assert.Equal(t, "Sample Retail Co", r.CompanyName)
	assert.Equal(t, "INR", r.Currency)
	assert.Equal(t, []int{2022, 2023}, r.FiscalYears)

	entries := r.Breakdown.Entries()
	for i, m := range models.Methodologies {
		assert.Equal(t, m, entries[i].Method)
		assert.Equal(t, valuation.StatusAvailable, entries[i].Status)
		require.NotNil(t, entries[i].EnterpriseValue)
		assert.Equal(t, entries[i].Weight, r.Weights[m])
	}
	assert.Equal(t, 8914.0, *r.Breakdown.DCF.EnterpriseValue)
	assert.Equal(t, 224075.0, *r.Breakdown.TransactionComps.EnterpriseValue)
	assert.Equal(t, 326417.0, *r.Breakdown.AssetBased.EnterpriseValue)
	assert.Equal(t, 0.6, r.Breakdown.DCF.Weight)
	assert.IsType(t, &valuation.DCFDetails{}, r.Breakdown.DCF.Details)

	require.NotNil(t, r.Guard)
	assert.Equal(t, 190463.0, r.Guard.BandLow)
	assert.Equal(t, 257686.0, r.Guard.BandHigh)
	assert.False(t, r.Guard.WithinBand)
}

func TestAssemble_Decimals(t *testing.T) {
	a := assumption.Defaults()
	r, err := Assemble(evaluate(t, a, testutil.SampleRawInput()), Options{Decimals: 2})
	require.NoError(t, err)
	assert.Equal(t, 110329.74, r.FinalEstimatedValue)
	assert.Equal(t, 8914.28, r.ValuationRange.Low)
}

func TestAssemble_UnavailableMethodology(t *testing.T) {
	a := assumption.Defaults()
	out := evaluate(t, a, testutil.Without(testutil.SampleRawInput(), models.SectionCashFlow))
	r, err := Assemble(out, OptionsFrom(a.Report))
	require.NoError(t, err)

	dcf := r.Breakdown.DCF
	assert.Equal(t, valuation.StatusUnavailable, dcf.Status)
	assert.Nil(t, dcf.EnterpriseValue)
	assert.Equal(t, "cash flow statement missing", dcf.Reason)
	assert.Equal(t, 0.0, dcf.Weight)
	assert.Equal(t, 0.6, dcf.ConfiguredWeight)
	assert.InDelta(t, 0.625, r.Breakdown.TransactionComps.Weight, 1e-12)
	assert.InDelta(t, 0.375, r.Breakdown.AssetBased.Weight, 1e-12)
	assert.NotEmpty(t, r.Warnings)
}

func TestAssemble_EqualSplitWeightsSumToOne(t *testing.T) {
	out := evaluate(t, assumption.Defaults(), testutil.SampleRawInput())
	results := []valuation.MethodologyResult{
		valuation.Available(models.MethodDCF, 100, nil),
		valuation.Available(models.MethodTransactionComps, 200, nil),
		valuation.Available(models.MethodAssetBased, 300, nil),
	}
	bv, err := valuation.Blend(results, assumption.Weights{})
	require.NoError(t, err)
	require.True(t, bv.EqualWeighted)

	out.Results, out.Blend = results, bv
	r, err := Assemble(out, Options{})
	require.NoError(t, err)

	var sum float64
	for _, e := range r.Breakdown.Entries() {
		assert.Equal(t, 1.0/3, e.Weight)
		sum += e.Weight
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
	assert.Equal(t, 200.0, r.FinalEstimatedValue)
}

func TestAssemble_NilOutcome(t *testing.T) {
	_, err := Assemble(nil, Options{})
	assert.Error(t, err)
}

func TestReportID(t *testing.T) {
	a := assumption.Defaults()
	first := sampleReport(t)
	second := sampleReport(t)
	assert.Equal(t, first.ReportID, second.ReportID)

	id, err := uuid.Parse(first.ReportID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(5), id.Version())

	a.Weights = assumption.Weights{DCF: 0.5, TransactionComps: 0.25, AssetBased: 0.25}
	other, err := Assemble(evaluate(t, a, testutil.SampleRawInput()), OptionsFrom(a.Report))
	require.NoError(t, err)
	assert.NotEqual(t, first.ReportID, other.ReportID)
}

func TestRound(t *testing.T) {
	tests := []struct {
		v      float64
		places int32
		want   float64
	}{
		{2.5, 0, 3},
		{-2.5, 0, -3},
		{1.005, 2, 1.01},
		{110329.741, 0, 110330},
		{0.1234565, 6, 0.123457},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, round(tt.v, tt.places), "round(%v, %d)", tt.v, tt.places)
	}
}

// =============================================================================
// RENDERING
// =============================================================================

func TestRenderJSON_Shape(t *testing.T) {
	a := assumption.Defaults()
	out := evaluate(t, a, testutil.Without(testutil.SampleRawInput(), models.SectionBalance))
	r, err := Assemble(out, OptionsFrom(a.Report))
	require.NoError(t, err)

	data, err := RenderJSON(r)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	for _, key := range []string{"report_id", "final_estimated_value", "valuation_range", "methodology_breakdown", "weights", "warnings"} {
		assert.Contains(t, doc, key)
	}

	rng := doc["valuation_range"].(map[string]any)
	assert.ElementsMatch(t, []string{"low", "mid", "high"}, keys(rng))

	breakdown := doc["methodology_breakdown"].(map[string]any)
	assert.ElementsMatch(t, []string{"dcf", "transaction_comps", "asset_based"}, keys(breakdown))

	asset := breakdown["asset_based"].(map[string]any)
	assert.Equal(t, "unavailable", asset["status"])
	assert.Contains(t, asset, "enterprise_value")
	assert.Nil(t, asset["enterprise_value"])
	assert.Equal(t, "balance sheet missing", asset["reason"])

	dcf := breakdown["dcf"].(map[string]any)
	assert.Equal(t, "available", dcf["status"])
	assert.Contains(t, dcf, "details")

	fa := doc["financial_analysis"].(map[string]any)
	years := fa["years"].([]any)
	require.Len(t, years, 2)
	latest := years[1].(map[string]any)
	assert.Equal(t, 2023.0, latest["year"])
	assert.Contains(t, latest, "gross_margin")
	assert.NotContains(t, latest, "ebitda_margin")
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestRenderMarkdown(t *testing.T) {
	md := RenderMarkdown(sampleReport(t))

	assert.True(t, strings.HasPrefix(md, "# Valuation Report: Sample Retail Co\n"))
	assert.Contains(t, md, "**Final Estimated Value:** 110,330 INR")
	assert.Contains(t, md, "| 8,914 INR | 110,330 INR | 326,417 INR |")
	assert.Contains(t, md, "| Discounted Cash Flow | available | 8,914 INR | 60.00% | 60.00% |")
	assert.Contains(t, md, "- Discount rate: 13.58% (default)")
	assert.Contains(t, md, "- Method: book equity")
	assert.Contains(t, md, "- Assets from: components; liabilities from: components")
	assert.Contains(t, md, "## Sector Anchor Check")
	assert.Contains(t, md, "## Financial Ratios")
	assert.Contains(t, md, "| Metric | 2022 | 2023 |")
	assert.Contains(t, md, "| Gross margin | 23.38% | 24.42% |")
	assert.Contains(t, md, "| Revenue growth | n/a | 2.38% |")
	assert.Contains(t, md, "| Net working capital | 106,397 INR | 159,572 INR |")
	assert.Contains(t, md, "- Revenue CAGR: 2.38%")
	assert.NotContains(t, md, "EBITDA margin")
	assert.Contains(t, md, "## Warnings")
}

func TestRenderMarkdown_EscapesReasonPipes(t *testing.T) {
	r := sampleReport(t)
	r.Breakdown.DCF.Reason = "a | b"
	assert.Contains(t, RenderMarkdown(r), `a \| b`)
}

func TestRenderHTML(t *testing.T) {
	page, err := RenderHTML(sampleReport(t))
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	require.NoError(t, err)

	assert.Equal(t, "Valuation Report: Sample Retail Co", doc.Find("title").Text())
	assert.Equal(t, "Valuation Report: Sample Retail Co", doc.Find("h1").First().Text())
	require.Equal(t, 3, doc.Find("table").Length())

	rows := doc.Find("table").Eq(1).Find("tbody tr")
	require.Equal(t, 3, rows.Length())
	var labels []string
	rows.Each(func(_ int, s *goquery.Selection) {
		labels = append(labels, strings.TrimSpace(s.Find("td").First().Text()))
	})
	assert.Equal(t, []string{"Discounted Cash Flow", "Precedent Transaction Comparables", "Asset-Based Valuation"}, labels)
	assert.Equal(t, "8,914 INR", strings.TrimSpace(rows.First().Find("td").Eq(2).Text()))

	ratios := doc.Find("table").Eq(2)
	assert.Equal(t, 11, ratios.Find("tbody tr").Length())
	first := ratios.Find("tbody tr").First().Find("td")
	assert.Equal(t, "Gross margin", strings.TrimSpace(first.Eq(0).Text()))
	assert.Equal(t, "24.42%", strings.TrimSpace(first.Eq(2).Text()))
}

func TestRenderHTML_EscapesCompanyName(t *testing.T) {
	a := assumption.Defaults()
	raw := testutil.SampleRawInput()
	raw.CompanyName = "<script>alert(1)</script>"
	r, err := Assemble(evaluate(t, a, raw), OptionsFrom(a.Report))
	require.NoError(t, err)

	page, err := RenderHTML(r)
	require.NoError(t, err)
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	require.NoError(t, err)
	assert.Equal(t, 0, doc.Find("script").Length())
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{"md", FormatMarkdown, false},
		{"markdown", FormatMarkdown, false},
		{" html ", FormatHTML, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRender(t *testing.T) {
	r := sampleReport(t)
	for _, f := range []Format{FormatJSON, FormatMarkdown, FormatHTML} {
		var buf bytes.Buffer
		require.NoError(t, Render(&buf, r, f), f)
		assert.NotEmpty(t, buf.String())
	}

	var buf bytes.Buffer
	assert.Error(t, Render(&buf, r, Format("pdf")))
}
