package valueobject

import (
	"fmt"
	"strings"
)

// Priority represents the urgency tier of a task
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"

	// PriorityAll is only meaningful inside a TaskFilter
	PriorityAll Priority = "All"
)

// Priorities lists every assignable priority in sort order
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// ParsePriority parses a priority name case-insensitively
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "h":
		return PriorityHigh, nil
	case "medium", "med", "m":
		return PriorityMedium, nil
	case "low", "l":
		return PriorityLow, nil
	default:
		return "", fmt.Errorf("invalid priority %q: must be one of High, Medium, Low", s)
	}
}

// IsValid reports whether p is an assignable priority
func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Rank orders priorities High < Medium < Low. Unknown values sort last.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// Key returns the lower-cased name used in statistics output
func (p Priority) Key() string {
	return strings.ToLower(string(p))
}

func (p Priority) String() string {
	return string(p)
}
