package task

import (
	"context"
	"time"

	"mtasks/internal/domain/entity"
)

// TaskStore is the task gateway the use cases work against.
// adapter.TaskStore implements it.
type TaskStore interface {
	Create(ctx context.Context, draft entity.TaskDraft) (*entity.Task, error)
	Update(ctx context.Context, id string, patch entity.TaskPatch) error
	Delete(ctx context.Context, id string) error
	ToggleCompletion(ctx context.Context, id string) error
	AddSubTask(ctx context.Context, id, title string) (entity.SubTask, error)
	ToggleSubTask(ctx context.Context, id, subTaskID string) error
	Get(ctx context.Context, id string) (*entity.Task, error)
	Load(ctx context.Context) ([]*entity.Task, error)
	Now() time.Time
}
