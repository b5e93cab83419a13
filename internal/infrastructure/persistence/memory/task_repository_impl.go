package memory

import (
	"context"
	"fmt"
	"sync"

	"mtasks/internal/domain/entity"
	"mtasks/internal/domain/repository"
	"mtasks/internal/infrastructure/persistence/pushid"
	"mtasks/internal/infrastructure/persistence/watch"
)

// TaskRepositoryImpl keeps task records in process memory
type TaskRepositoryImpl struct {
	mu    sync.RWMutex
	users map[string]map[string]repository.Fields // userID -> taskID -> record
	hub   *watch.Hub
	newID func() string
}

// NewTaskRepository creates an empty in-memory repository
func NewTaskRepository() *TaskRepositoryImpl {
	return &TaskRepositoryImpl{
		users: make(map[string]map[string]repository.Fields),
		hub:   watch.NewHub(),
		newID: pushid.New,
	}
}

// Push stores a new record
func (r *TaskRepositoryImpl) Push(ctx context.Context, userID string, fields repository.Fields) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id := r.newID()

	r.mu.Lock()
	if _, exists := r.users[userID]; !exists {
		r.users[userID] = make(map[string]repository.Fields)
	}
	set, _ := fields.Split()
	r.users[userID][id] = set
	r.mu.Unlock()

	r.hub.Notify(userID)
	return id, nil
}

// Update merges fields into an existing record
func (r *TaskRepositoryImpl) Update(ctx context.Context, userID, taskID string, fields repository.Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	current, exists := r.users[userID][taskID]
	if !exists {
		r.mu.Unlock()
		return fmt.Errorf("task %s: %w", taskID, entity.ErrTaskNotFound)
	}
	r.users[userID][taskID] = current.Merge(fields)
	r.mu.Unlock()

	r.hub.Notify(userID)
	return nil
}

// Remove deletes a record
func (r *TaskRepositoryImpl) Remove(ctx context.Context, userID, taskID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	if _, exists := r.users[userID][taskID]; !exists {
		r.mu.Unlock()
		return fmt.Errorf("task %s: %w", taskID, entity.ErrTaskNotFound)
	}
	delete(r.users[userID], taskID)
	if len(r.users[userID]) == 0 {
		delete(r.users, userID)
	}
	r.mu.Unlock()

	r.hub.Notify(userID)
	return nil
}

// Get returns a copy of a single record
func (r *TaskRepositoryImpl) Get(ctx context.Context, userID, taskID string) (repository.Fields, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	fields, exists := r.users[userID][taskID]
	if !exists {
		return nil, fmt.Errorf("task %s: %w", taskID, entity.ErrTaskNotFound)
	}
	return fields.Clone(), nil
}

// List returns copies of every record of a user ordered by ID
func (r *TaskRepositoryImpl) List(ctx context.Context, userID string) ([]repository.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]repository.Record, 0, len(r.users[userID]))
	for id, fields := range r.users[userID] {
		records = append(records, repository.Record{ID: id, Fields: fields.Clone()})
	}
	repository.SortRecords(records)
	return records, nil
}

// Watch streams snapshots of a user's records
func (r *TaskRepositoryImpl) Watch(ctx context.Context, userID string) (<-chan repository.Snapshot, error) {
	signals, unsubscribe := r.hub.Subscribe(userID)
	load := func(ctx context.Context) ([]repository.Record, error) {
		return r.List(ctx, userID)
	}
	return watch.Stream(ctx, userID, load, signals, nil, unsubscribe), nil
}
