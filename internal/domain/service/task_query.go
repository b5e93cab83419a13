package service

import (
	"sort"
	"strings"
	"time"

	"mtasks/internal/domain/entity"
	"mtasks/internal/domain/valueobject"
	"mtasks/pkg/dateutil"
)

// FilterTasks returns the tasks matching every active constraint of filter,
// in their original order. The input slice is not modified.
func FilterTasks(tasks []*entity.Task, filter valueobject.TaskFilter) []*entity.Task {
	query := strings.ToLower(filter.SearchQuery)

	result := make([]*entity.Task, 0, len(tasks))
	for _, task := range tasks {
		if query != "" && !matchesQuery(task, query) {
			continue
		}
		if filter.ConstrainsCategory() && task.Category() != filter.Category {
			continue
		}
		if filter.ConstrainsPriority() && task.Priority() != filter.Priority {
			continue
		}
		if filter.Completed != nil && task.Completed() != *filter.Completed {
			continue
		}
		result = append(result, task)
	}
	return result
}

func matchesQuery(task *entity.Task, query string) bool {
	if strings.Contains(strings.ToLower(task.Title()), query) {
		return true
	}
	return strings.Contains(strings.ToLower(task.Description()), query)
}

// SortTasks returns a sorted copy of tasks: incomplete before complete, then
// due date (earliest first, undated last), then priority, then newest first.
// Remaining ties fall back to the task ID.
func SortTasks(tasks []*entity.Task) []*entity.Task {
	sorted := make([]*entity.Task, len(tasks))
	copy(sorted, tasks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return taskLess(sorted[i], sorted[j])
	})
	return sorted
}

func taskLess(a, b *entity.Task) bool {
	if a.Completed() != b.Completed() {
		return !a.Completed()
	}

	aDue, bDue := a.DueDate(), b.DueDate()
	switch {
	case aDue != nil && bDue == nil:
		return true
	case aDue == nil && bDue != nil:
		return false
	case aDue != nil && bDue != nil && !aDue.Equal(*bDue):
		return aDue.Before(*bDue)
	}

	if a.Priority().Rank() != b.Priority().Rank() {
		return a.Priority().Rank() < b.Priority().Rank()
	}

	if !a.CreatedAt().Equal(b.CreatedAt()) {
		return a.CreatedAt().After(b.CreatedAt())
	}

	return a.ID() < b.ID()
}

// IsOverdue reports whether task is past due as of the current local date
func IsOverdue(task *entity.Task) bool {
	return IsOverdueAt(task, time.Now())
}

// IsOverdueAt reports whether task is past due at now. Only the calendar date
// counts, so a task due today is never overdue.
func IsOverdueAt(task *entity.Task, now time.Time) bool {
	if task == nil || task.Completed() {
		return false
	}
	due := task.DueDate()
	if due == nil {
		return false
	}
	return dateutil.DayBefore(*due, now)
}
