package valuation

import (
	"blended_valuation/pkg/models"
	"fmt"
	"math"
	"strings"
)

// Status tags a methodology outcome.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusUnavailable Status = "unavailable"
)

// MethodologyResult is the outcome of one estimator. An unavailable result carries
// only a reason; its EnterpriseValue is meaningless and never read by the blender.
type MethodologyResult struct {
	Method          models.Methodology `json:"method"`
	Status          Status             `json:"status"`
	EnterpriseValue float64            `json:"enterprise_value"`
	Reason          string             `json:"reason,omitempty"`
	Details         any                `json:"details,omitempty"` // *DCFDetails, *CompsDetails or *AssetDetails
}

// Available builds a successful result. A non-finite value is converted to unavailable.
func Available(method models.Methodology, ev float64, details any) MethodologyResult {
	if math.IsNaN(ev) || math.IsInf(ev, 0) {
		return Unavailable(method, "computed enterprise value is not finite")
	}
	return MethodologyResult{
		Method:          method,
		Status:          StatusAvailable,
		EnterpriseValue: ev,
		Details:         details,
	}
}

// Unavailable builds a skipped result.
func Unavailable(method models.Methodology, reason string) MethodologyResult {
	return MethodologyResult{Method: method, Status: StatusUnavailable, Reason: reason}
}

// IsAvailable reports whether the methodology produced a value.
func (r MethodologyResult) IsAvailable() bool {
	return r.Status == StatusAvailable
}

// ProcessingError is returned when no methodology could run.
type ProcessingError struct {
	Reasons map[models.Methodology]string
}

func (e *ProcessingError) Error() string {
	parts := make([]string, 0, len(models.Methodologies))
	for _, m := range models.Methodologies {
		if reason, ok := e.Reasons[m]; ok {
			parts = append(parts, fmt.Sprintf("%s: %s", m, reason))
		}
	}
	return "no valuation methodology could run: " + strings.Join(parts, "; ")
}
