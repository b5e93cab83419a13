package task

import (
	"context"

	"mtasks/internal/application/dto"
)

// AddSubTaskUseCase appends a subtask to a task
type AddSubTaskUseCase struct {
	store TaskStore
}

// NewAddSubTaskUseCase creates a new AddSubTaskUseCase
func NewAddSubTaskUseCase(store TaskStore) *AddSubTaskUseCase {
	return &AddSubTaskUseCase{store: store}
}

// Execute adds an incomplete subtask titled title to the task
func (uc *AddSubTaskUseCase) Execute(ctx context.Context, taskID, title string) (dto.SubTaskDTO, error) {
	sub, err := uc.store.AddSubTask(ctx, taskID, title)
	if err != nil {
		return dto.SubTaskDTO{}, err
	}
	return dto.SubTaskDTO{ID: sub.ID, Title: sub.Title, Completed: sub.Completed}, nil
}

// ToggleSubTaskUseCase flips a subtask between open and completed
type ToggleSubTaskUseCase struct {
	store TaskStore
}

// NewToggleSubTaskUseCase creates a new ToggleSubTaskUseCase
func NewToggleSubTaskUseCase(store TaskStore) *ToggleSubTaskUseCase {
	return &ToggleSubTaskUseCase{store: store}
}

// Execute toggles the subtask
func (uc *ToggleSubTaskUseCase) Execute(ctx context.Context, taskID, subTaskID string) error {
	return uc.store.ToggleSubTask(ctx, taskID, subTaskID)
}
