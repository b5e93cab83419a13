package task

import (
	"context"

	"mtasks/internal/application/dto"
	"mtasks/internal/domain/service"
)

// ToggleTaskUseCase flips a task between open and completed
type ToggleTaskUseCase struct {
	store   TaskStore
	palette service.PriorityPalette
}

// NewToggleTaskUseCase creates a new ToggleTaskUseCase
func NewToggleTaskUseCase(store TaskStore, palette service.PriorityPalette) *ToggleTaskUseCase {
	return &ToggleTaskUseCase{store: store, palette: palette}
}

// Execute toggles the task and returns its new state
func (uc *ToggleTaskUseCase) Execute(ctx context.Context, id string) (dto.TaskDTO, error) {
	if err := uc.store.ToggleCompletion(ctx, id); err != nil {
		return dto.TaskDTO{}, err
	}
	task, err := uc.store.Get(ctx, id)
	if err != nil {
		return dto.TaskDTO{}, err
	}
	return dto.TaskToDTO(task, uc.palette, uc.store.Now()), nil
}
