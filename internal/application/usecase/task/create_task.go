package task

import (
	"context"
	"fmt"

	"mtasks/internal/application/dto"
	"mtasks/internal/domain/entity"
	"mtasks/internal/domain/service"
	"mtasks/internal/domain/valueobject"
)

// CreateTaskUseCase handles creating a new task
type CreateTaskUseCase struct {
	store   TaskStore
	palette service.PriorityPalette
}

// NewCreateTaskUseCase creates a new CreateTaskUseCase
func NewCreateTaskUseCase(store TaskStore, palette service.PriorityPalette) *CreateTaskUseCase {
	return &CreateTaskUseCase{store: store, palette: palette}
}

// Execute creates a task from the request
func (uc *CreateTaskUseCase) Execute(ctx context.Context, req dto.CreateTaskRequest) (dto.TaskDTO, error) {
	draft := entity.TaskDraft{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
	}

	if req.Category != "" {
		category, err := valueobject.ParseCategory(req.Category)
		if err != nil {
			return dto.TaskDTO{}, fmt.Errorf("%w: %v", entity.ErrInvalidCategory, err)
		}
		draft.Category = category
	}
	if req.Priority != "" {
		priority, err := valueobject.ParsePriority(req.Priority)
		if err != nil {
			return dto.TaskDTO{}, fmt.Errorf("%w: %v", entity.ErrInvalidPriority, err)
		}
		draft.Priority = priority
	}
	for _, title := range req.SubTasks {
		draft.SubTasks = append(draft.SubTasks, entity.SubTask{Title: title})
	}

	task, err := uc.store.Create(ctx, draft)
	if err != nil {
		return dto.TaskDTO{}, err
	}
	return dto.TaskToDTO(task, uc.palette, uc.store.Now()), nil
}
