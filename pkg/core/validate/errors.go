package validate

import (
	"fmt"
	"strings"
)

// Issue is one malformed or missing field.
type Issue struct {
	Path   string `json:"path"`   // e.g. income_statement.revenue_sales.2023
	Reason string `json:"reason"`
}

func (i Issue) String() string {
	return i.Path + ": " + i.Reason
}

// ValidationError reports malformed or missing input. It is returned before any computation runs.
type ValidationError struct {
	Issues []Issue `json:"issues"`
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.String())
	}
	return fmt.Sprintf("validation failed (%d issue(s)): %s", len(e.Issues), strings.Join(parts, "; "))
}

// Paths returns the offending field paths in report order.
func (e *ValidationError) Paths() []string {
	paths := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		paths[i] = issue.Path
	}
	return paths
}
