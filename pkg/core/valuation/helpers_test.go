package valuation

import (
	"testing"

	"blended_valuation/pkg/core/assumption"
	"blended_valuation/pkg/core/testutil"
	"blended_valuation/pkg/core/validate"
	"blended_valuation/pkg/models"

	"github.com/stretchr/testify/require"
)

const (
	sampleDCF   = 8914.276860570353
	sampleComps = 224074.5
	sampleNAV   = 326417.0
	sampleMid   = 110329.74111634221
)

// validated normalizes raw with default validation options.
func validated(t *testing.T, raw models.RawInput) *models.ValuationInput {
	t.Helper()
	in, err := validate.ValidateInput(raw, validate.OptionsFrom(assumption.Defaults().Validation))
	require.NoError(t, err)
	return in
}

func sampleInput(t *testing.T) *models.ValuationInput {
	t.Helper()
	return validated(t, testutil.SampleRawInput())
}

// section returns a raw section of the sample for editing.
func section(raw models.RawInput, s models.Section) map[string]any {
	return raw.Section(s).(map[string]any)
}

func fy(fy2022, fy2023 float64) map[string]any {
	return map[string]any{"2022": fy2022, "2023": fy2023}
}
