package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"mtasks/internal/domain/entity"
	"mtasks/internal/domain/repository"
	"mtasks/internal/infrastructure/persistence/pushid"
	"mtasks/internal/infrastructure/persistence/watch"
)

const defaultPollInterval = 500 * time.Millisecond

// TaskRepositoryImpl stores task records as JSON rows in SQLite
type TaskRepositoryImpl struct {
	db           *sql.DB
	hub          *watch.Hub
	logger       zerolog.Logger
	pollInterval time.Duration
}

// NewTaskRepository creates a repository over an open database
func NewTaskRepository(db *sql.DB, logger zerolog.Logger) *TaskRepositoryImpl {
	return &TaskRepositoryImpl{
		db:           db,
		hub:          watch.NewHub(),
		logger:       logger.With().Str("component", "sqlite-store").Logger(),
		pollInterval: defaultPollInterval,
	}
}

// Push inserts a new record
func (r *TaskRepositoryImpl) Push(ctx context.Context, userID string, fields repository.Fields) (string, error) {
	set, _ := fields.Split()
	data, err := json.Marshal(set)
	if err != nil {
		return "", fmt.Errorf("failed to encode task: %w", err)
	}

	id := pushid.New()
	_, err = r.db.ExecContext(ctx,
		"INSERT INTO tasks (user_id, task_id, fields_json, updated_at) VALUES (?, ?, ?, ?)",
		userID, id, string(data), time.Now().UnixMilli())
	if err != nil {
		return "", fmt.Errorf("failed to insert task: %w", err)
	}

	r.hub.Notify(userID)
	return id, nil
}

// Update merges fields into an existing record inside a transaction
func (r *TaskRepositoryImpl) Update(ctx context.Context, userID, taskID string, fields repository.Fields) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := getFields(ctx, tx, userID, taskID)
	if err != nil {
		return err
	}

	data, err := json.Marshal(current.Merge(fields))
	if err != nil {
		return fmt.Errorf("failed to encode task: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE tasks SET fields_json = ?, updated_at = ? WHERE user_id = ? AND task_id = ?",
		string(data), time.Now().UnixMilli(), userID, taskID)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit task update: %w", err)
	}

	r.hub.Notify(userID)
	return nil
}

// Remove deletes a record
func (r *TaskRepositoryImpl) Remove(ctx context.Context, userID, taskID string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM tasks WHERE user_id = ? AND task_id = ?", userID, taskID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("task %s: %w", taskID, entity.ErrTaskNotFound)
	}

	r.hub.Notify(userID)
	return nil
}

// Get returns a single record
func (r *TaskRepositoryImpl) Get(ctx context.Context, userID, taskID string) (repository.Fields, error) {
	return getFields(ctx, r.db, userID, taskID)
}

// List returns every record of a user ordered by ID
func (r *TaskRepositoryImpl) List(ctx context.Context, userID string) ([]repository.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT task_id, fields_json FROM tasks WHERE user_id = ? ORDER BY task_id", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	records := make([]repository.Record, 0)
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		fields, err := decodeFields(data)
		if err != nil {
			r.logger.Warn().Err(err).Str("task_id", id).Msg("skipping undecodable task")
			continue
		}
		records = append(records, repository.Record{ID: id, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tasks: %w", err)
	}
	return records, nil
}

// Watch streams snapshots. Writes through this repository wake watchers
// directly; writes from other processes are picked up by polling
// PRAGMA data_version on a dedicated connection.
func (r *TaskRepositoryImpl) Watch(ctx context.Context, userID string) (<-chan repository.Snapshot, error) {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open watch connection: %w", err)
	}
	version, err := dataVersion(ctx, conn)
	if err != nil {
		conn.Close()
		return nil, err
	}

	local, unsubscribe := r.hub.Subscribe(userID)
	signals := make(chan struct{}, 1)
	failures := make(chan error, 1)
	pollCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(r.pollInterval)
		defer ticker.Stop()

		signal := func() {
			select {
			case signals <- struct{}{}:
			default:
			}
		}

		// failing is set from the first failed poll until one succeeds
		failing := false
		for {
			select {
			case <-pollCtx.Done():
				return
			case <-local:
				signal()
			case <-ticker.C:
				v, err := dataVersion(pollCtx, conn)
				if err != nil {
					if pollCtx.Err() != nil {
						return
					}
					r.logger.Warn().Err(err).Msg("failed to poll data version")
					if !failing {
						failing = true
						select {
						case failures <- err:
						default:
						}
					}
					continue
				}
				if failing || v != version {
					failing = false
					version = v
					signal()
				}
			}
		}
	}()

	release := func() {
		cancel()
		<-done
		unsubscribe()
		conn.Close()
	}
	load := func(ctx context.Context) ([]repository.Record, error) {
		return r.List(ctx, userID)
	}
	return watch.Stream(ctx, userID, load, signals, failures, release), nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getFields(ctx context.Context, q queryer, userID, taskID string) (repository.Fields, error) {
	var data string
	err := q.QueryRowContext(ctx,
		"SELECT fields_json FROM tasks WHERE user_id = ? AND task_id = ?", userID, taskID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("task %s: %w", taskID, entity.ErrTaskNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	return decodeFields(data)
}

func decodeFields(data string) (repository.Fields, error) {
	var fields repository.Fields
	if err := json.Unmarshal([]byte(data), &fields); err != nil {
		return nil, fmt.Errorf("failed to decode task: %w", err)
	}
	if fields == nil {
		fields = repository.Fields{}
	}
	return fields, nil
}

func dataVersion(ctx context.Context, conn *sql.Conn) (int64, error) {
	var v int64
	if err := conn.QueryRowContext(ctx, "PRAGMA data_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read data version: %w", err)
	}
	return v, nil
}
