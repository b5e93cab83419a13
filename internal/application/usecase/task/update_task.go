package task

import (
	"context"
	"fmt"

	"mtasks/internal/application/dto"
	"mtasks/internal/domain/entity"
	"mtasks/internal/domain/valueobject"
)

// UpdateTaskUseCase handles partial task updates
type UpdateTaskUseCase struct {
	store TaskStore
}

// NewUpdateTaskUseCase creates a new UpdateTaskUseCase
func NewUpdateTaskUseCase(store TaskStore) *UpdateTaskUseCase {
	return &UpdateTaskUseCase{store: store}
}

// Execute applies the request to the task with the given ID
func (uc *UpdateTaskUseCase) Execute(ctx context.Context, id string, req dto.UpdateTaskRequest) error {
	patch := entity.TaskPatch{
		Title:        req.Title,
		Description:  req.Description,
		DueDate:      req.DueDate,
		ClearDueDate: req.ClearDueDate,
		Completed:    req.Completed,
	}

	if req.Category != nil {
		category, err := valueobject.ParseCategory(*req.Category)
		if err != nil {
			return fmt.Errorf("%w: %v", entity.ErrInvalidCategory, err)
		}
		patch.Category = &category
	}
	if req.Priority != nil {
		priority, err := valueobject.ParsePriority(*req.Priority)
		if err != nil {
			return fmt.Errorf("%w: %v", entity.ErrInvalidPriority, err)
		}
		patch.Priority = &priority
	}

	if patch.IsEmpty() {
		return fmt.Errorf("%w: nothing to update", entity.ErrRequiredField)
	}
	return uc.store.Update(ctx, id, patch)
}
