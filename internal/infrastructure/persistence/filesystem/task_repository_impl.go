package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"mtasks/internal/domain/entity"
	"mtasks/internal/domain/repository"
	"mtasks/internal/infrastructure/persistence/mapper"
	"mtasks/internal/infrastructure/persistence/pushid"
	"mtasks/internal/infrastructure/persistence/watch"
	"mtasks/internal/infrastructure/serialization"
	"mtasks/pkg/filesystem"
)

const defaultDebounce = 75 * time.Millisecond

// TaskRepositoryImpl stores each task as <root>/<userID>/<taskID>/task.md
// with the record in YAML frontmatter and the description as the body
type TaskRepositoryImpl struct {
	pathBuilder *PathBuilder
	logger      zerolog.Logger
	debounce    time.Duration
}

// NewTaskRepository creates a new filesystem-based task repository
func NewTaskRepository(tasksPath string, logger zerolog.Logger) *TaskRepositoryImpl {
	return &TaskRepositoryImpl{
		pathBuilder: NewPathBuilder(tasksPath),
		logger:      logger.With().Str("component", "fs-store").Logger(),
		debounce:    defaultDebounce,
	}
}

// Push writes a new task file
func (r *TaskRepositoryImpl) Push(ctx context.Context, userID string, fields repository.Fields) (string, error) {
	if err := validateSegment("user id", userID); err != nil {
		return "", err
	}
	id := pushid.New()
	set, _ := fields.Split()
	if err := r.write(userID, id, set); err != nil {
		return "", err
	}
	return id, nil
}

// Update merges fields into an existing task file
func (r *TaskRepositoryImpl) Update(ctx context.Context, userID, taskID string, fields repository.Fields) error {
	current, err := r.Get(ctx, userID, taskID)
	if err != nil {
		return err
	}
	return r.write(userID, taskID, current.Merge(fields))
}

// Remove deletes a task directory
func (r *TaskRepositoryImpl) Remove(ctx context.Context, userID, taskID string) error {
	if err := r.validate(userID, taskID); err != nil {
		return err
	}
	dir := r.pathBuilder.TaskDir(userID, taskID)
	exists, err := filesystem.Exists(dir)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("task %s: %w", taskID, entity.ErrTaskNotFound)
	}
	return filesystem.RemoveDir(dir)
}

// Get reads a single task file
func (r *TaskRepositoryImpl) Get(ctx context.Context, userID, taskID string) (repository.Fields, error) {
	if err := r.validate(userID, taskID); err != nil {
		return nil, err
	}
	return r.read(userID, taskID)
}

// List reads every task file of a user. Unreadable files are skipped.
func (r *TaskRepositoryImpl) List(ctx context.Context, userID string) ([]repository.Record, error) {
	if err := validateSegment("user id", userID); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(r.pathBuilder.UserDir(userID))
	if errors.Is(err, os.ErrNotExist) {
		return []repository.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read tasks directory: %w", err)
	}

	records := make([]repository.Record, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || validateSegment("task id", entry.Name()) != nil {
			continue
		}
		fields, err := r.read(userID, entry.Name())
		if err != nil {
			r.logger.Warn().Err(err).Str("task_id", entry.Name()).Msg("skipping unreadable task")
			continue
		}
		records = append(records, repository.Record{ID: entry.Name(), Fields: fields})
	}
	repository.SortRecords(records)
	return records, nil
}

// Watch streams snapshots, reloading whenever the user's directory tree
// changes. Bursts of events are debounced.
func (r *TaskRepositoryImpl) Watch(ctx context.Context, userID string) (<-chan repository.Snapshot, error) {
	if err := validateSegment("user id", userID); err != nil {
		return nil, err
	}
	userDir := r.pathBuilder.UserDir(userID)
	if err := filesystem.EnsureDir(userDir, 0755); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := r.addTree(watcher, userDir); err != nil {
		watcher.Close()
		return nil, err
	}

	signals := make(chan struct{}, 1)
	failures := make(chan error, 1)
	watchCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.pumpEvents(watchCtx, watcher, userDir, signals, failures)
	}()

	release := func() {
		cancel()
		<-done
		watcher.Close()
	}
	load := func(ctx context.Context) ([]repository.Record, error) {
		return r.List(ctx, userID)
	}
	return watch.Stream(ctx, userID, load, signals, failures, release), nil
}

// pumpEvents turns fsnotify events into debounced change signals. Watcher
// errors force a reload since events may have been dropped. If the watcher
// shuts down while ctx is still live, ErrWatchClosed is sent on failures.
func (r *TaskRepositoryImpl) pumpEvents(ctx context.Context, watcher *fsnotify.Watcher, userDir string, signals chan<- struct{}, failures chan<- error) {
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	lost := func() {
		if ctx.Err() != nil {
			return
		}
		r.logger.Error().Str("path", userDir).Msg("file watcher stopped")
		select {
		case failures <- fmt.Errorf("file watcher on %s: %w", userDir, repository.ErrWatchClosed):
		default:
		}
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				lost()
				return
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watcher.Add(event.Name); err != nil {
						r.logger.Warn().Err(err).Str("path", event.Name).Msg("failed to watch task directory")
					}
				}
			}
			timer.Reset(r.debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				lost()
				return
			}
			r.logger.Warn().Err(err).Str("path", userDir).Msg("file watcher error")
			timer.Reset(r.debounce)

		case <-timer.C:
			select {
			case signals <- struct{}{}:
			default:
			}
		}
	}
}

func (r *TaskRepositoryImpl) addTree(watcher *fsnotify.Watcher, userDir string) error {
	if err := watcher.Add(userDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", userDir, err)
	}
	entries, err := os.ReadDir(userDir)
	if err != nil {
		return fmt.Errorf("failed to read tasks directory: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := watcher.Add(filepath.Join(userDir, entry.Name())); err != nil {
			return fmt.Errorf("failed to watch task directory: %w", err)
		}
	}
	return nil
}

func (r *TaskRepositoryImpl) read(userID, taskID string) (repository.Fields, error) {
	data, err := os.ReadFile(r.pathBuilder.TaskFile(userID, taskID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("task %s: %w", taskID, entity.ErrTaskNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read task file: %w", err)
	}

	doc, err := serialization.ParseFrontmatter(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse task %s: %w", taskID, err)
	}

	fields := repository.Fields(doc.Frontmatter)
	if doc.Content != "" {
		fields[mapper.FieldDescription] = doc.Content
	}
	return fields, nil
}

func (r *TaskRepositoryImpl) write(userID, taskID string, fields repository.Fields) error {
	header := make(map[string]any, len(fields))
	for k, v := range fields {
		if k != mapper.FieldDescription {
			header[k] = v
		}
	}
	description, _ := fields[mapper.FieldDescription].(string)

	data, err := serialization.SerializeFrontmatter(header, description)
	if err != nil {
		return err
	}
	if err := filesystem.SafeWrite(r.pathBuilder.TaskFile(userID, taskID), data, 0644); err != nil {
		return fmt.Errorf("failed to save task %s: %w", taskID, err)
	}
	return nil
}

func (r *TaskRepositoryImpl) validate(userID, taskID string) error {
	if err := validateSegment("user id", userID); err != nil {
		return err
	}
	return validateSegment("task id", taskID)
}
