package adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"mtasks/internal/domain/entity"
	"mtasks/internal/domain/repository"
	"mtasks/internal/domain/service"
	"mtasks/internal/infrastructure/persistence/mapper"
)

// TaskStore keeps the current user's tasks in step with the backing store and
// turns user intents into record mutations. The backing store is
// authoritative: mutations do not touch local state, the next snapshot does.
type TaskStore struct {
	repo       repository.TaskRepository
	identity   repository.IdentityProvider
	validation *service.ValidationService
	logger     zerolog.Logger
	now        func() time.Time
}

// NewTaskStore creates a new TaskStore
func NewTaskStore(
	repo repository.TaskRepository,
	identity repository.IdentityProvider,
	validation *service.ValidationService,
	logger zerolog.Logger,
) *TaskStore {
	return &TaskStore{
		repo:       repo,
		identity:   identity,
		validation: validation,
		logger:     logger.With().Str("component", "task_store").Logger(),
		now:        time.Now,
	}
}

// Create validates the draft and pushes a new record for the current user.
// Nothing is written when the user is signed out or the draft is invalid.
func (s *TaskStore) Create(ctx context.Context, draft entity.TaskDraft) (*entity.Task, error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.validation.ValidateDraft(draft, now); err != nil {
		return nil, err
	}
	draft.SubTasks = withSubTaskIDs(draft.SubTasks)

	task, err := entity.NewTask(draft, user.ID, now)
	if err != nil {
		return nil, err
	}

	id, err := s.repo.Push(ctx, user.ID, mapper.TaskToFields(task))
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	if err := task.AssignID(id); err != nil {
		return nil, err
	}

	s.logger.Debug().Str("task_id", id).Msg("task created")
	return task, nil
}

// Update applies a partial update. updatedAt is always refreshed and
// completedAt follows a change of the completed flag.
func (s *TaskStore) Update(ctx context.Context, id string, patch entity.TaskPatch) error {
	user, err := s.currentUser(ctx)
	if err != nil {
		return err
	}
	if err := s.validation.ValidatePatch(patch); err != nil {
		return err
	}
	patch.SubTasks = withSubTaskIDs(patch.SubTasks)
	if err := entity.ValidateSubTasks(patch.SubTasks); err != nil {
		return err
	}

	current, err := s.get(ctx, user.ID, id)
	if err != nil {
		return err
	}

	if err := s.repo.Update(ctx, user.ID, id, mapper.PatchToFields(patch, current, s.now())); err != nil {
		return fmt.Errorf("failed to update task %s: %w", id, err)
	}
	s.logger.Debug().Str("task_id", id).Msg("task updated")
	return nil
}

// Delete removes a task
func (s *TaskStore) Delete(ctx context.Context, id string) error {
	user, err := s.currentUser(ctx)
	if err != nil {
		return err
	}
	if err := s.repo.Remove(ctx, user.ID, id); err != nil {
		return fmt.Errorf("failed to delete task %s: %w", id, err)
	}
	s.logger.Debug().Str("task_id", id).Msg("task deleted")
	return nil
}

// ToggleCompletion flips the completed flag of a task
func (s *TaskStore) ToggleCompletion(ctx context.Context, id string) error {
	task, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	completed := !task.Completed()
	return s.Update(ctx, id, entity.TaskPatch{Completed: &completed})
}

// AddSubTask appends an incomplete subtask and returns it
func (s *TaskStore) AddSubTask(ctx context.Context, id, title string) (entity.SubTask, error) {
	if err := s.validation.ValidateSubTaskTitle(title); err != nil {
		return entity.SubTask{}, err
	}
	task, err := s.Get(ctx, id)
	if err != nil {
		return entity.SubTask{}, err
	}

	sub, err := entity.NewSubTask(uuid.NewString(), title)
	if err != nil {
		return entity.SubTask{}, err
	}
	subTasks := append(task.SubTasks(), sub)
	if err := s.Update(ctx, id, entity.TaskPatch{SubTasks: subTasks}); err != nil {
		return entity.SubTask{}, err
	}
	return sub, nil
}

// ToggleSubTask flips the completed flag of one subtask
func (s *TaskStore) ToggleSubTask(ctx context.Context, id, subTaskID string) error {
	task, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if _, err := task.SubTask(subTaskID); err != nil {
		return fmt.Errorf("subtask %s: %w", subTaskID, err)
	}

	subTasks := task.SubTasks()
	for i := range subTasks {
		if subTasks[i].ID == subTaskID {
			subTasks[i].Completed = !subTasks[i].Completed
		}
	}
	return s.Update(ctx, id, entity.TaskPatch{SubTasks: subTasks})
}

// Get reads one task of the current user
func (s *TaskStore) Get(ctx context.Context, id string) (*entity.Task, error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.get(ctx, user.ID, id)
}

// Load reads every task of the current user once. Malformed records are
// skipped.
func (s *TaskStore) Load(ctx context.Context) ([]*entity.Task, error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	records, err := s.repo.List(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	return s.toTasks(user.ID, records), nil
}

// Now returns the store's clock reading
func (s *TaskStore) Now() time.Time {
	return s.now()
}

func (s *TaskStore) get(ctx context.Context, userID, id string) (*entity.Task, error) {
	fields, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get task %s: %w", id, err)
	}
	return mapper.FieldsToTask(id, fields)
}

func (s *TaskStore) currentUser(ctx context.Context) (*entity.User, error) {
	user, err := s.identity.CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, entity.ErrNotAuthenticated) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to resolve current user: %w", err)
	}
	if user == nil {
		return nil, entity.ErrNotAuthenticated
	}
	return user, nil
}

func (s *TaskStore) toTasks(userID string, records []repository.Record) []*entity.Task {
	tasks := mapper.RecordsToTasks(records, func(id string, err error) {
		s.logger.Warn().Err(err).Str("task_id", id).Msg("skipping malformed task record")
	})

	owned := tasks[:0]
	for _, task := range tasks {
		if task.UserID() != userID {
			s.logger.Warn().Err(entity.ErrTaskOwnerMismatch).Str("task_id", task.ID()).Msg("skipping task record")
			continue
		}
		owned = append(owned, task)
	}
	return owned
}

func withSubTaskIDs(subTasks []entity.SubTask) []entity.SubTask {
	if subTasks == nil {
		return nil
	}
	out := make([]entity.SubTask, len(subTasks))
	for i, st := range subTasks {
		if st.ID == "" {
			st.ID = uuid.NewString()
		}
		out[i] = st
	}
	return out
}
