package task

import (
	"context"
	"fmt"
	"strings"

	"mtasks/internal/application/dto"
	"mtasks/internal/domain/service"
	"mtasks/internal/domain/valueobject"
)

// ListTasksUseCase handles listing the current user's tasks
type ListTasksUseCase struct {
	store   TaskStore
	palette service.PriorityPalette
}

// NewListTasksUseCase creates a new ListTasksUseCase
func NewListTasksUseCase(store TaskStore, palette service.PriorityPalette) *ListTasksUseCase {
	return &ListTasksUseCase{
		store:   store,
		palette: palette,
	}
}

// Execute loads, filters and sorts the tasks
func (uc *ListTasksUseCase) Execute(ctx context.Context, req dto.ListTasksRequest) ([]dto.TaskDTO, error) {
	filter, err := BuildFilter(req)
	if err != nil {
		return nil, err
	}

	tasks, err := uc.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	tasks = service.SortTasks(service.FilterTasks(tasks, filter))
	return dto.TasksToDTOs(tasks, uc.palette, uc.store.Now()), nil
}

// BuildFilter converts a list request to a task filter. "all" and empty
// values leave a dimension unconstrained.
func BuildFilter(req dto.ListTasksRequest) (valueobject.TaskFilter, error) {
	filter := valueobject.TaskFilter{
		SearchQuery: req.Search,
		Completed:   req.Completed,
	}

	if c := strings.TrimSpace(req.Category); c != "" && !strings.EqualFold(c, string(valueobject.CategoryAll)) {
		category, err := valueobject.ParseCategory(c)
		if err != nil {
			return filter, fmt.Errorf("invalid filter: %w", err)
		}
		filter.Category = category
	}
	if p := strings.TrimSpace(req.Priority); p != "" && !strings.EqualFold(p, string(valueobject.PriorityAll)) {
		priority, err := valueobject.ParsePriority(p)
		if err != nil {
			return filter, fmt.Errorf("invalid filter: %w", err)
		}
		filter.Priority = priority
	}
	return filter, nil
}
