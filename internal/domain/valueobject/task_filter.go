package valueobject

// TaskFilter narrows a task list. Every field is optional: the zero value,
// CategoryAll/PriorityAll, an empty query and a nil Completed impose no
// constraint on their dimension.
type TaskFilter struct {
	Category    Category
	Priority    Priority
	SearchQuery string
	Completed   *bool
}

// ConstrainsCategory reports whether the filter restricts categories
func (f TaskFilter) ConstrainsCategory() bool {
	return f.Category != "" && f.Category != CategoryAll
}

// ConstrainsPriority reports whether the filter restricts priorities
func (f TaskFilter) ConstrainsPriority() bool {
	return f.Priority != "" && f.Priority != PriorityAll
}

// IsEmpty reports whether the filter lets every task through
func (f TaskFilter) IsEmpty() bool {
	return !f.ConstrainsCategory() && !f.ConstrainsPriority() && f.SearchQuery == "" && f.Completed == nil
}

// WithCompleted returns a copy of f restricted to the given completion state
func (f TaskFilter) WithCompleted(completed bool) TaskFilter {
	f.Completed = &completed
	return f
}
