package dto

import (
	"time"

	"mtasks/internal/domain/entity"
	"mtasks/internal/domain/service"
)

// TaskToDTO converts a task to its DTO. Derived fields are computed at now
// with the given palette.
func TaskToDTO(task *entity.Task, palette service.PriorityPalette, now time.Time) TaskDTO {
	subTasks := task.SubTasks()
	var subDTOs []SubTaskDTO
	if len(subTasks) > 0 {
		subDTOs = make([]SubTaskDTO, len(subTasks))
		for i, st := range subTasks {
			subDTOs[i] = SubTaskDTO{ID: st.ID, Title: st.Title, Completed: st.Completed}
		}
	}

	return TaskDTO{
		ID:            task.ID(),
		Title:         task.Title(),
		Description:   task.Description(),
		Category:      task.Category().String(),
		Priority:      task.Priority().String(),
		PriorityColor: palette.Color(task.Priority()),
		DueDate:       task.DueDate(),
		Completed:     task.Completed(),
		CompletedAt:   task.CompletedAt(),
		IsOverdue:     service.IsOverdueAt(task, now),
		CreatedAt:     task.CreatedAt(),
		UpdatedAt:     task.UpdatedAt(),
		SubTasks:      subDTOs,
	}
}

// TasksToDTOs converts tasks to DTOs keeping their order
func TasksToDTOs(tasks []*entity.Task, palette service.PriorityPalette, now time.Time) []TaskDTO {
	result := make([]TaskDTO, 0, len(tasks))
	for _, task := range tasks {
		result = append(result, TaskToDTO(task, palette, now))
	}
	return result
}

// StatisticsToDTO converts statistics to their DTO
func StatisticsToDTO(stats service.Statistics) StatisticsDTO {
	out := StatisticsDTO{
		Total:                stats.Total,
		Completed:            stats.Completed,
		Pending:              stats.Pending,
		CompletionRate:       stats.CompletionRate,
		OverdueCount:         stats.OverdueCount,
		PriorityDistribution: make(map[string]int, len(stats.PriorityDistribution)),
		CategoryDistribution: make(map[string]int, len(stats.CategoryDistribution)),
	}
	for k, n := range stats.PriorityDistribution {
		out.PriorityDistribution[k] = n
	}
	for k, n := range stats.CategoryDistribution {
		out.CategoryDistribution[k] = n
	}
	return out
}
