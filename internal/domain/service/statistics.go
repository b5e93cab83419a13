package service

import (
	"math"
	"time"

	"mtasks/internal/domain/entity"
	"mtasks/internal/domain/valueobject"
)

// Statistics summarises a task collection
type Statistics struct {
	Total                int
	Completed            int
	Pending              int
	CompletionRate       float64
	OverdueCount         int
	PriorityDistribution map[string]int
	CategoryDistribution map[string]int
}

// ComputeStatistics derives statistics for tasks as of now. Every priority
// and category key is present even when its count is zero.
func ComputeStatistics(tasks []*entity.Task, now time.Time) Statistics {
	stats := Statistics{
		Total:                len(tasks),
		PriorityDistribution: make(map[string]int, len(valueobject.Priorities)),
		CategoryDistribution: make(map[string]int, len(valueobject.Categories)),
	}
	for _, p := range valueobject.Priorities {
		stats.PriorityDistribution[p.Key()] = 0
	}
	for _, c := range valueobject.Categories {
		stats.CategoryDistribution[c.Key()] = 0
	}

	for _, task := range tasks {
		if task.Completed() {
			stats.Completed++
		}
		if IsOverdueAt(task, now) {
			stats.OverdueCount++
		}
		if task.Priority().IsValid() {
			stats.PriorityDistribution[task.Priority().Key()]++
		}
		if task.Category().IsValid() {
			stats.CategoryDistribution[task.Category().Key()]++
		}
	}

	stats.Pending = stats.Total - stats.Completed
	if stats.Total > 0 {
		rate := float64(stats.Completed) / float64(stats.Total)
		stats.CompletionRate = math.Round(rate*100) / 100
	}
	return stats
}
