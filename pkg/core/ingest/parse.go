// Package ingest decodes a valuation request document into models.RawInput.
//
// Documents are decoded with a fallback chain so hand-edited and machine-generated inputs
// are accepted alike:
//  1. Standard JSON
//  2. Hjson (comments, unquoted keys, optional and trailing commas)
//  3. JSON repair (code fences, truncated documents), accepted only when every
//     repaired number matches a literal in the source text
//
// Numbers are kept as json.Number on every path.
package ingest

import (
	"blended_valuation/pkg/core/validate"
	"blended_valuation/pkg/models"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// Strategy names the decoder that accepted a document.
type Strategy string

const (
	StrategyJSON   Strategy = "json"
	StrategyRepair Strategy = "repair"
	StrategyHJSON  Strategy = "hjson"
)

// DefaultMaxBytes bounds a request document.
const DefaultMaxBytes = 8 << 20

// Result is a decoded document.
type Result struct {
	Raw      models.RawInput
	Strategy Strategy
	Warnings []string
}

// known top-level keys; everything else is ignored with a warning.
var topLevelKeys = map[string]bool{
	string(models.SectionIncome):   true,
	string(models.SectionBalance):  true,
	string(models.SectionCashFlow): true,
	"company_name":                 true,
	"currency":                     true,
	"sector":                       true,
	"units":                        true,
}

// =============================================================================
// PARSING
// =============================================================================

// Parse decodes a document, trying each strategy in turn.
// An undecodable document is reported as a *validate.ValidationError at path "$".
func Parse(data []byte) (*Result, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, documentError("document is empty")
	}

	doc, strategy, err := smartDecode(string(data))
	if err != nil {
		return nil, err
	}

	raw, warnings, err := toRawInput(doc)
	if err != nil {
		return nil, err
	}
	if strategy != StrategyJSON {
		warnings = append([]string{fmt.Sprintf("input is not strict JSON, decoded with %s fallback", strategy)}, warnings...)
	}
	return &Result{Raw: raw, Strategy: strategy, Warnings: warnings}, nil
}

// ParseReader reads at most maxBytes from r and parses it. maxBytes <= 0 uses DefaultMaxBytes.
func ParseReader(r io.Reader, maxBytes int64) (*Result, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, documentError(fmt.Sprintf("document exceeds %d bytes", maxBytes))
	}
	return Parse(data)
}

// smartDecode tries strict JSON, then Hjson, then repaired JSON.
func smartDecode(input string) (map[string]any, Strategy, error) {
	doc, strictErr := decodeStrict(input)
	if strictErr == nil {
		return doc, StrategyJSON, nil
	}

	if doc, err := decodeHJSON(input); err == nil {
		return doc, StrategyHJSON, nil
	}

	if repaired, err := jsonrepair.RepairJSON(input); err == nil {
		if doc, err := decodeStrict(repaired); err == nil && numbersPreserved(input, doc) {
			return doc, StrategyRepair, nil
		}
	}

	return nil, "", documentError(fmt.Sprintf("not a JSON object: %v", strictErr))
}

// decodeHJSON decodes an Hjson object, keeping numbers as json.Number.
func decodeHJSON(input string) (map[string]any, error) {
	opts := hjson.DefaultDecoderOptions()
	opts.UseJSONNumber = true

	var doc map[string]any
	if err := hjson.UnmarshalWithOptions([]byte(input), &doc, opts); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("document is null")
	}
	return doc, nil
}

// =============================================================================
// NUMERIC FIDELITY
// =============================================================================

var numberLiteral = regexp.MustCompile(`-?\d+(?:\.\d+)?(?:[eE][+-]?\d+)?`)

// numbersPreserved reports whether every number in doc equals some numeric literal in source.
// The repair decoder parses decimals at float32 precision, so a repaired figure that no
// longer matches the text it came from is rejected.
func numbersPreserved(source string, doc any) bool {
	literals := make(map[float64]bool)
	for _, lit := range numberLiteral.FindAllString(source, -1) {
		if v, err := strconv.ParseFloat(lit, 64); err == nil {
			literals[v] = true
		}
	}
	return walkNumbers(doc, func(n json.Number) bool {
		v, err := strconv.ParseFloat(n.String(), 64)
		return err == nil && literals[v]
	})
}

func walkNumbers(v any, ok func(json.Number) bool) bool {
	switch t := v.(type) {
	case json.Number:
		return ok(t)
	case map[string]any:
		for _, child := range t {
			if !walkNumbers(child, ok) {
				return false
			}
		}
	case []any:
		for _, child := range t {
			if !walkNumbers(child, ok) {
				return false
			}
		}
	}
	return true
}

// decodeStrict decodes exactly one JSON object, keeping numbers as json.Number.
func decodeStrict(input string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(input))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("document is null")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after the top-level object")
	}
	return doc, nil
}

// toRawInput maps a decoded object onto RawInput.
func toRawInput(doc map[string]any) (models.RawInput, []string, error) {
	var raw models.RawInput
	var issues []validate.Issue
	var warnings []string

	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !topLevelKeys[k] {
			warnings = append(warnings, fmt.Sprintf("%s: unknown top-level field ignored", k))
		}
	}

	raw.IncomeStatement = doc[string(models.SectionIncome)]
	raw.BalanceSheet = doc[string(models.SectionBalance)]
	raw.CashFlowStatement = doc[string(models.SectionCashFlow)]

	text := func(key string) string {
		v, ok := doc[key]
		if !ok || v == nil {
			return ""
		}
		s, ok := v.(string)
		if !ok {
			issues = append(issues, validate.Issue{Path: key, Reason: "must be a string"})
		}
		return s
	}
	raw.CompanyName = text("company_name")
	raw.Currency = text("currency")
	raw.Sector = text("sector")
	raw.Units = models.Units(strings.ToLower(strings.TrimSpace(text("units"))))

	if len(issues) > 0 {
		return models.RawInput{}, nil, &validate.ValidationError{Issues: issues}
	}
	return raw, warnings, nil
}

func documentError(reason string) error {
	return &validate.ValidationError{Issues: []validate.Issue{{Path: "$", Reason: reason}}}
}
