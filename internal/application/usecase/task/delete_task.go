package task

import "context"

// DeleteTaskUseCase handles deleting a task
type DeleteTaskUseCase struct {
	store TaskStore
}

// NewDeleteTaskUseCase creates a new DeleteTaskUseCase
func NewDeleteTaskUseCase(store TaskStore) *DeleteTaskUseCase {
	return &DeleteTaskUseCase{store: store}
}

// Execute deletes the task with the given ID
func (uc *DeleteTaskUseCase) Execute(ctx context.Context, id string) error {
	return uc.store.Delete(ctx, id)
}
