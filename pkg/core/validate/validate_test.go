package validate

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"blended_valuation/pkg/core/assumption"
	"blended_valuation/pkg/core/testutil"
	"blended_valuation/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultOptions() Options {
	return OptionsFrom(assumption.Defaults().Validation)
}

func requireValidationError(t *testing.T, err error) *ValidationError {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "want *ValidationError, got %v", err)
	return verr
}

// =============================================================================
// SAMPLE INPUT
// =============================================================================

func TestValidateInput_Sample(t *testing.T) {
	in, err := ValidateInput(testutil.SampleRawInput(), defaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []int{2022, 2023}, in.Years)
	assert.Equal(t, "Sample Retail Co", in.CompanyName)
	assert.Equal(t, "INR", in.Currency)
	assert.Equal(t, models.UnitsOnes, in.Units)
	for _, s := range models.Sections {
		assert.True(t, in.HasSection(s), s)
	}

	is, _ := in.Statement(models.SectionIncome)
	assert.Equal(t, -523940.0, is[models.COGS][2022])
	assert.Equal(t, -8078.0, is[models.InterestExpense][2023])
	assert.Equal(t, 700075.0, is[models.RevenueSales][2023])

	cf, _ := in.Statement(models.SectionCashFlow)
	assert.Equal(t, -13084.0, cf[models.CapitalExpenditures][2023])
	assert.Equal(t, -2917.0, cf[models.CashFlowFromOperations][2023])
	assert.Equal(t, -40093.0, cf[models.TaxesPaid][2023])

	bs, _ := in.Statement(models.SectionBalance)
	assert.Equal(t, 163061.0, bs[models.AccountsPayable][2023])
	assert.Equal(t, 326417.0, bs[models.ShareholdersEquity][2023])
}

func TestValidateInput_DoesNotMutateRaw(t *testing.T) {
	raw := testutil.SampleRawInput()
	_, err := ValidateInput(raw, defaultOptions())
	require.NoError(t, err)

	cogs := raw.IncomeStatement.(map[string]any)["cogs"].(map[string]any)
	assert.Equal(t, 523940.0, cogs["2022"])
}

// =============================================================================
// SIGN CONVENTION
// =============================================================================

func TestValidateInput_CapexSignConvention(t *testing.T) {
	tests := []struct {
		name  string
		capex any
	}{
		{"reported as outflow", -13084.0},
		{"reported as magnitude", 13084.0},
		{"reported as string magnitude", "13,084"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := models.RawInput{
				CashFlowStatement: map[string]any{
					"cash_flow_from_operations": map[string]any{"2023": 50000.0},
					"capex":                     map[string]any{"2023": tt.capex},
				},
			}
			in, err := ValidateInput(raw, defaultOptions())
			require.NoError(t, err)
			cf, _ := in.Statement(models.SectionCashFlow)
			assert.Equal(t, -13084.0, cf[models.CapitalExpenditures][2023])
		})
	}
}

func TestValidateInput_SignWarningsAggregated(t *testing.T) {
	in, err := ValidateInput(testutil.SampleRawInput(), defaultOptions())
	require.NoError(t, err)

	var cogs []string
	for _, w := range in.Warnings {
		if strings.HasPrefix(w, "income_statement.cogs: sign normalized") {
			cogs = append(cogs, w)
		}
	}
	require.Len(t, cogs, 1)
	assert.Contains(t, cogs[0], "2022, 2023")
}

// =============================================================================
// SECTIONS
// =============================================================================

func TestValidateInput_MissingSections(t *testing.T) {
	t.Run("one missing is skipped", func(t *testing.T) {
		raw := testutil.Without(testutil.SampleRawInput(), models.SectionBalance)
		in, err := ValidateInput(raw, defaultOptions())
		require.NoError(t, err)
		assert.False(t, in.HasSection(models.SectionBalance))
		assert.True(t, in.HasSection(models.SectionIncome))
		assert.Contains(t, strings.Join(in.Warnings, "\n"), "balance_sheet: section missing")
	})

	t.Run("strict mode rejects", func(t *testing.T) {
		raw := testutil.Without(testutil.SampleRawInput(), models.SectionBalance)
		opts := defaultOptions()
		opts.StrictSections = true
		_, err := ValidateInput(raw, opts)
		verr := requireValidationError(t, err)
		assert.Equal(t, []string{"balance_sheet"}, verr.Paths())
	})

	t.Run("all missing rejects", func(t *testing.T) {
		_, err := ValidateInput(models.RawInput{CompanyName: "Empty"}, defaultOptions())
		verr := requireValidationError(t, err)
		assert.Equal(t, []string{"income_statement", "balance_sheet", "cash_flow_statement"}, verr.Paths())
	})

	t.Run("present but empty is unusable", func(t *testing.T) {
		raw := testutil.SampleRawInput()
		raw.BalanceSheet = map[string]any{"unknown_item": map[string]any{"2023": 1.0}}
		in, err := ValidateInput(raw, defaultOptions())
		require.NoError(t, err)
		assert.False(t, in.HasSection(models.SectionBalance))
		joined := strings.Join(in.Warnings, "\n")
		assert.Contains(t, joined, "balance_sheet.unknown_item: unknown line item ignored")
		assert.Contains(t, joined, "balance_sheet: no usable line items")
	})
}

// =============================================================================
// MALFORMED VALUES
// =============================================================================

func TestValidateInput_MalformedValues(t *testing.T) {
	raw := testutil.SampleRawInput()
	is := raw.IncomeStatement.(map[string]any)
	is["revenue_sales"] = map[string]any{"2022": "n/a", "2023": 700075.0}
	is["net_income"] = map[string]any{"last year": 1.0}
	is["cogs"] = []any{1.0, 2.0}
	raw.Units = "billions"

	_, err := ValidateInput(raw, defaultOptions())
	verr := requireValidationError(t, err)

	assert.ElementsMatch(t, []string{
		"units",
		"income_statement.cogs",
		"income_statement.net_income.last year",
		"income_statement.revenue_sales.2022",
	}, verr.Paths())
	assert.Contains(t, verr.Error(), "validation failed (4 issue(s))")
}

func TestValidateInput_SectionNotObject(t *testing.T) {
	raw := testutil.SampleRawInput()
	raw.BalanceSheet = "see attached"
	_, err := ValidateInput(raw, defaultOptions())
	verr := requireValidationError(t, err)
	require.Len(t, verr.Issues, 1)
	assert.Equal(t, "balance_sheet", verr.Issues[0].Path)
	assert.Contains(t, verr.Issues[0].Reason, "got string")
}

func TestValidateInput_NullsAndAliases(t *testing.T) {
	raw := models.RawInput{
		IncomeStatement: map[string]any{
			"Revenue":       map[string]any{"FY2022": 100.0, "FY2023": nil},
			"revenue_sales": map[string]any{"2022": 120.0},
			"EBIT":          nil,
		},
		Units: models.UnitsThousands,
	}
	in, err := ValidateInput(raw, defaultOptions())
	require.NoError(t, err)

	is, ok := in.Statement(models.SectionIncome)
	require.True(t, ok)
	// Canonical key wins the conflicting year; the null year is absent.
	assert.Equal(t, models.Series{2022: 120000}, is[models.RevenueSales])
	assert.False(t, is.Has(models.OperatingProfitEBIT))
	assert.Contains(t, strings.Join(in.Warnings, "\n"), "alias of revenue_sales ignored")
}

func TestValidateInput_JSONNumbers(t *testing.T) {
	var section map[string]any
	dec := json.NewDecoder(strings.NewReader(`{"cash_flow_from_operations": {"2023": 1234.5}}`))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&section))

	in, err := ValidateInput(models.RawInput{CashFlowStatement: section}, defaultOptions())
	require.NoError(t, err)
	cf, _ := in.Statement(models.SectionCashFlow)
	assert.Equal(t, 1234.5, cf[models.CashFlowFromOperations][2023])
}

func TestValidateInput_YearCoverageWarning(t *testing.T) {
	raw := testutil.SampleRawInput()
	raw.BalanceSheet = map[string]any{"shareholders_equity": map[string]any{"2023": 326417.0}}
	in, err := ValidateInput(raw, defaultOptions())
	require.NoError(t, err)
	assert.Contains(t, strings.Join(in.Warnings, "\n"), "balance_sheet: covers years [2023] of [2022 2023]")
	assert.Equal(t, []int{2023}, in.CommonYears(models.SectionIncome, models.SectionBalance))
}

// =============================================================================
// SCALARS
// =============================================================================

func TestParseYear(t *testing.T) {
	tests := []struct {
		key    string
		want   int
		wantOK bool
	}{
		{"2023", 2023, true},
		{" FY2023 ", 2023, true},
		{"fy 2021", 2021, true},
		{"23", 0, false},
		{"2023-24", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseYear(tt.key)
		assert.Equal(t, tt.wantOK, ok, tt.key)
		assert.Equal(t, tt.want, got, tt.key)
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name        string
		in          any
		want        float64
		wantPresent bool
		wantOK      bool
	}{
		{"float", 1.5, 1.5, true, true},
		{"int", 7, 7, true, true},
		{"json number", json.Number("-2917"), -2917, true, true},
		{"grouped string", " 1,234.5 ", 1234.5, true, true},
		{"null", nil, 0, false, true},
		{"empty string", "", 0, false, true},
		{"bool", true, 0, true, false},
		{"word", "twelve", 0, true, false},
		{"object", map[string]any{}, 0, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, present, ok := ParseNumber(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantPresent, present)
			assert.Equal(t, tt.want, got)
		})
	}
}
