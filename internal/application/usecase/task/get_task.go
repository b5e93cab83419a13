package task

import (
	"context"

	"mtasks/internal/application/dto"
	"mtasks/internal/domain/service"
)

// GetTaskUseCase handles reading a single task
type GetTaskUseCase struct {
	store   TaskStore
	palette service.PriorityPalette
}

// NewGetTaskUseCase creates a new GetTaskUseCase
func NewGetTaskUseCase(store TaskStore, palette service.PriorityPalette) *GetTaskUseCase {
	return &GetTaskUseCase{store: store, palette: palette}
}

// Execute returns the task with the given ID
func (uc *GetTaskUseCase) Execute(ctx context.Context, id string) (dto.TaskDTO, error) {
	task, err := uc.store.Get(ctx, id)
	if err != nil {
		return dto.TaskDTO{}, err
	}
	return dto.TaskToDTO(task, uc.palette, uc.store.Now()), nil
}
