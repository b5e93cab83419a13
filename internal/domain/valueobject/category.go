package valueobject

import (
	"fmt"
	"strings"
)

// Category groups tasks by area of life
type Category string

const (
	CategoryWork     Category = "Work"
	CategoryPersonal Category = "Personal"
	CategoryUrgent   Category = "Urgent"

	// CategoryAll is only meaningful inside a TaskFilter
	CategoryAll Category = "All"
)

// Categories lists every assignable category
var Categories = []Category{CategoryWork, CategoryPersonal, CategoryUrgent}

// ParseCategory parses a category name case-insensitively
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "work":
		return CategoryWork, nil
	case "personal":
		return CategoryPersonal, nil
	case "urgent":
		return CategoryUrgent, nil
	default:
		return "", fmt.Errorf("invalid category %q: must be one of Work, Personal, Urgent", s)
	}
}

// IsValid reports whether c is an assignable category
func (c Category) IsValid() bool {
	switch c {
	case CategoryWork, CategoryPersonal, CategoryUrgent:
		return true
	}
	return false
}

// Key returns the lower-cased name used in statistics output
func (c Category) Key() string {
	return strings.ToLower(string(c))
}

func (c Category) String() string {
	return string(c)
}
