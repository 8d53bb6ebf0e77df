// Package validate turns a caller-supplied statement document into a typed ValuationInput.
// Line items are resolved against the catalog once here, values are checked to be numeric,
// signs are normalized and units scaled, so downstream calculators never re-check shapes.
package validate

import (
	"blended_valuation/pkg/core/assumption"
	"blended_valuation/pkg/core/calc"
	"blended_valuation/pkg/models"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Options controls validation strictness.
type Options struct {
	StrictSections     bool    // a missing section is a ValidationError instead of a skipped methodology
	IntegrityTolerance float64 // relative tolerance for accounting identity checks
}

// OptionsFrom builds Options from the validation assumptions.
func OptionsFrom(cfg assumption.ValidationConfig) Options {
	return Options{
		StrictSections:     cfg.StrictSections,
		IntegrityTolerance: cfg.IntegrityTolerance,
	}
}

// =============================================================================
// INPUT VALIDATION
// =============================================================================

// ValidateInput checks shape and numeric content of every section and returns the
// normalized input.
//
// A section that is absent, or present with zero usable line items, is left out of the
// result so the methodologies that need it are skipped. The request fails with a
// *ValidationError when any value is malformed, when no section is usable, or when
// opts.StrictSections is set and any section is missing.
func ValidateInput(raw models.RawInput, opts Options) (*models.ValuationInput, error) {
	in := &models.ValuationInput{
		Statements:  make(map[models.Section]models.FinancialStatement),
		CompanyName: strings.TrimSpace(raw.CompanyName),
		Currency:    strings.ToUpper(strings.TrimSpace(raw.Currency)),
		Sector:      strings.TrimSpace(raw.Sector),
		Units:       raw.Units,
	}
	var issues []Issue

	switch raw.Units {
	case "":
		in.Units = models.UnitsOnes
	case models.UnitsOnes, models.UnitsThousands, models.UnitsMillions:
	default:
		issues = append(issues, Issue{Path: "units", Reason: fmt.Sprintf("unknown units %q (want units, thousands or millions)", raw.Units)})
	}

	var missing []models.Section
	for _, section := range models.Sections {
		payload := raw.Section(section)
		if payload == nil {
			missing = append(missing, section)
			continue
		}
		fs, sectionIssues, warnings := parseSection(section, payload)
		issues = append(issues, sectionIssues...)
		in.Warnings = append(in.Warnings, warnings...)
		if len(fs) == 0 {
			if len(sectionIssues) == 0 {
				in.Warnings = append(in.Warnings, fmt.Sprintf("%s: no usable line items, methodologies depending on it are skipped", section))
			}
			missing = append(missing, section)
			continue
		}
		in.Statements[section] = fs
	}

	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}
	if len(in.Statements) == 0 || (opts.StrictSections && len(missing) > 0) {
		for _, section := range missing {
			issues = append(issues, Issue{Path: string(section), Reason: "section missing or has no usable line items"})
		}
		return nil, &ValidationError{Issues: issues}
	}
	for _, section := range missing {
		if raw.Section(section) == nil {
			in.Warnings = append(in.Warnings, fmt.Sprintf("%s: section missing, methodologies depending on it are skipped", section))
		}
	}

	multiplier := in.Units.Multiplier()
	for _, section := range models.Sections {
		fs, ok := in.Statements[section]
		if !ok {
			continue
		}
		calc.Scale(fs, multiplier)
		in.Warnings = append(in.Warnings, signWarnings(section, calc.NormalizeSigns(section, fs))...)
	}

	in.Years = unionYears(in)
	in.Warnings = append(in.Warnings, yearCoverageWarnings(in)...)

	for _, check := range CheckIntegrity(in, opts.IntegrityTolerance) {
		if !check.Passed {
			in.Warnings = append(in.Warnings, check.Warning())
		}
	}

	return in, nil
}

// parseSection decodes one statement section. Canonical keys take precedence over aliases
// when both supply the same year.
func parseSection(section models.Section, payload any) (models.FinancialStatement, []Issue, []string) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, []Issue{{Path: string(section), Reason: fmt.Sprintf("must be an object of line items, got %s", kindOf(payload))}}, nil
	}

	var issues []Issue
	var warnings []string
	fs := make(models.FinancialStatement)
	canonical := make(map[models.LineItem]bool)

	keys := sortedKeys(obj)

	// Canonical spellings first, aliases second.
	sort.SliceStable(keys, func(i, j int) bool {
		return isCanonical(section, keys[i]) && !isCanonical(section, keys[j])
	})

	for _, key := range keys {
		path := string(section) + "." + key
		def, known := models.ResolveItem(section, key)
		if !known {
			warnings = append(warnings, fmt.Sprintf("%s: unknown line item ignored", path))
			continue
		}
		value := obj[key]
		if value == nil {
			continue
		}
		years, ok := value.(map[string]any)
		if !ok {
			issues = append(issues, Issue{Path: path, Reason: fmt.Sprintf("must be an object of year to value, got %s", kindOf(value))})
			continue
		}

		isCanon := isCanonical(section, key)
		series := fs[def.Key]
		if series == nil {
			series = make(models.Series)
		}
		for _, yearKey := range sortedKeys(years) {
			raw := years[yearKey]
			yearPath := path + "." + yearKey
			year, ok := ParseYear(yearKey)
			if !ok {
				issues = append(issues, Issue{Path: yearPath, Reason: "year key is not a fiscal year"})
				continue
			}
			v, present, ok := ParseNumber(raw)
			if !ok {
				issues = append(issues, Issue{Path: yearPath, Reason: fmt.Sprintf("value is not numeric (%s)", kindOf(raw))})
				continue
			}
			if !present {
				continue
			}
			if _, dup := series[year]; dup {
				if !isCanon && canonical[def.Key] {
					warnings = append(warnings, fmt.Sprintf("%s: alias of %s ignored for %d", yearPath, def.Key, year))
					continue
				}
				issues = append(issues, Issue{Path: yearPath, Reason: fmt.Sprintf("duplicate value for %s", def.Key)})
				continue
			}
			series[year] = v
		}
		if isCanon {
			canonical[def.Key] = true
		}
		if len(series) == 0 {
			warnings = append(warnings, fmt.Sprintf("%s: no values, line item ignored", path))
			continue
		}
		fs[def.Key] = series
	}

	return fs, issues, warnings
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// signWarnings summarizes normalization flips per line item.
func signWarnings(section models.Section, flips []calc.SignFlip) []string {
	var warnings []string
	var years []string
	for i, flip := range flips {
		years = append(years, strconv.Itoa(flip.Year))
		if i == len(flips)-1 || flips[i+1].Item != flip.Item {
			direction := "outflow (negative)"
			if flip.To > 0 {
				direction = "magnitude (positive)"
			}
			warnings = append(warnings, fmt.Sprintf("%s.%s: sign normalized to %s for %s",
				section, flip.Item, direction, strings.Join(years, ", ")))
			years = nil
		}
	}
	return warnings
}

func isCanonical(section models.Section, key string) bool {
	def, ok := models.ResolveItem(section, key)
	return ok && string(def.Key) == key
}

// =============================================================================
// SCALAR PARSING
// =============================================================================

// ParseYear accepts "2023", "FY2023", "fy 2023" and similar fiscal-year keys.
func ParseYear(key string) (int, bool) {
	k := strings.ToUpper(strings.TrimSpace(key))
	k = strings.TrimSpace(strings.TrimPrefix(k, "FY"))
	year, err := strconv.Atoi(k)
	if err != nil || year < 1900 || year > 2200 {
		return 0, false
	}
	return year, true
}

// ParseNumber converts a decoded JSON scalar into a float.
// present is false for null. Numeric strings may carry thousands separators.
func ParseNumber(v any) (value float64, present bool, ok bool) {
	switch n := v.(type) {
	case nil:
		return 0, false, true
	case float64:
		return n, true, isFinite(n)
	case float32:
		return float64(n), true, isFinite(float64(n))
	case int:
		return float64(n), true, true
	case int64:
		return float64(n), true, true
	case int32:
		return float64(n), true, true
	case json.Number:
		f, err := n.Float64()
		return f, true, err == nil && isFinite(f)
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(n), ",", "")
		if s == "" {
			return 0, false, true
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, true, err == nil && isFinite(f)
	}
	return 0, true, false
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case float64, float32, int, int32, int64, json.Number:
		return "number"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	}
	return fmt.Sprintf("%T", v)
}

// =============================================================================
// YEAR COVERAGE
// =============================================================================

func unionYears(in *models.ValuationInput) []int {
	seen := make(map[int]bool)
	for _, fs := range in.Statements {
		for _, y := range fs.Years() {
			seen[y] = true
		}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// yearCoverageWarnings flags statements whose year sets differ from the union.
func yearCoverageWarnings(in *models.ValuationInput) []string {
	var warnings []string
	for _, section := range models.Sections {
		fs, ok := in.Statement(section)
		if !ok {
			continue
		}
		years := fs.Years()
		if len(years) != len(in.Years) {
			warnings = append(warnings, fmt.Sprintf("%s: covers years %v of %v, multi-year figures use common years only",
				section, years, in.Years))
		}
	}
	return warnings
}
