package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/rueidis"
	"github.com/rs/zerolog"

	"mtasks/internal/domain/entity"
	"mtasks/internal/domain/repository"
	"mtasks/internal/infrastructure/persistence/pushid"
	"mtasks/internal/infrastructure/persistence/watch"
)

const (
	keyPrefix        = "mtasks:tasks:"
	channelPrefix    = "mtasks:changes:"
	maxUpdateRetries = 5
)

// compareAndSet replaces a hash field only if it still holds the value the
// caller read, then publishes the change
var compareAndSet = rueidis.NewLuaScript(`
local cur = redis.call('HGET', KEYS[1], ARGV[1])
if not cur then return 0 end
if cur ~= ARGV[2] then return -1 end
redis.call('HSET', KEYS[1], ARGV[1], ARGV[3])
redis.call('PUBLISH', KEYS[2], ARGV[1])
return 1
`)

// Options configures the redis connection
type Options struct {
	Address  string
	Username string
	Password string
	DB       int
}

// TaskRepositoryImpl stores each user's tasks in one hash, field = task ID,
// value = JSON record. Every mutation is published on the user's channel.
type TaskRepositoryImpl struct {
	client rueidis.Client
	logger zerolog.Logger
}

// Connect creates a client and checks the server is reachable
func Connect(ctx context.Context, opts Options) (rueidis.Client, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{opts.Address},
		Username:     opts.Username,
		Password:     opts.Password,
		SelectDB:     opts.DB,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Address, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Do(pingCtx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// NewTaskRepository creates a repository over a connected client
func NewTaskRepository(client rueidis.Client, logger zerolog.Logger) *TaskRepositoryImpl {
	return &TaskRepositoryImpl{
		client: client,
		logger: logger.With().Str("component", "redis-store").Logger(),
	}
}

func tasksKey(userID string) string {
	return keyPrefix + userID
}

func changesChannel(userID string) string {
	return channelPrefix + userID
}

// Push stores a new record
func (r *TaskRepositoryImpl) Push(ctx context.Context, userID string, fields repository.Fields) (string, error) {
	set, _ := fields.Split()
	data, err := json.Marshal(set)
	if err != nil {
		return "", fmt.Errorf("failed to encode task: %w", err)
	}

	id := pushid.New()
	c := r.client
	for _, resp := range c.DoMulti(ctx,
		c.B().Hset().Key(tasksKey(userID)).FieldValue().FieldValue(id, string(data)).Build(),
		c.B().Publish().Channel(changesChannel(userID)).Message(id).Build(),
	) {
		if err := resp.Error(); err != nil {
			return "", fmt.Errorf("failed to store task: %w", err)
		}
	}
	return id, nil
}

// Update merges fields into an existing record. Concurrent writers are
// detected and the merge is retried.
func (r *TaskRepositoryImpl) Update(ctx context.Context, userID, taskID string, fields repository.Fields) error {
	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		raw, err := r.getRaw(ctx, userID, taskID)
		if err != nil {
			return err
		}
		current, err := decodeFields(raw)
		if err != nil {
			return err
		}
		data, err := json.Marshal(current.Merge(fields))
		if err != nil {
			return fmt.Errorf("failed to encode task: %w", err)
		}

		res, err := compareAndSet.Exec(ctx, r.client,
			[]string{tasksKey(userID), changesChannel(userID)},
			[]string{taskID, raw, string(data)},
		).AsInt64()
		if err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		switch res {
		case 1:
			return nil
		case 0:
			return fmt.Errorf("task %s: %w", taskID, entity.ErrTaskNotFound)
		}
		r.logger.Debug().Str("task_id", taskID).Int("attempt", attempt+1).Msg("concurrent update, retrying")
	}
	return fmt.Errorf("failed to update task %s: too many concurrent writes", taskID)
}

// Remove deletes a record
func (r *TaskRepositoryImpl) Remove(ctx context.Context, userID, taskID string) error {
	c := r.client
	n, err := c.Do(ctx, c.B().Hdel().Key(tasksKey(userID)).Field(taskID).Build()).AsInt64()
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("task %s: %w", taskID, entity.ErrTaskNotFound)
	}
	if err := c.Do(ctx, c.B().Publish().Channel(changesChannel(userID)).Message(taskID).Build()).Error(); err != nil {
		return fmt.Errorf("failed to publish change: %w", err)
	}
	return nil
}

// Get returns a single record
func (r *TaskRepositoryImpl) Get(ctx context.Context, userID, taskID string) (repository.Fields, error) {
	raw, err := r.getRaw(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	return decodeFields(raw)
}

// List returns every record of a user ordered by ID
func (r *TaskRepositoryImpl) List(ctx context.Context, userID string) ([]repository.Record, error) {
	c := r.client
	all, err := c.Do(ctx, c.B().Hgetall().Key(tasksKey(userID)).Build()).AsStrMap()
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	records := make([]repository.Record, 0, len(all))
	for id, raw := range all {
		fields, err := decodeFields(raw)
		if err != nil {
			r.logger.Warn().Err(err).Str("task_id", id).Msg("skipping undecodable task")
			continue
		}
		records = append(records, repository.Record{ID: id, Fields: fields})
	}
	repository.SortRecords(records)
	return records, nil
}

// Watch subscribes to the user's change channel on a dedicated connection
// and reloads the hash on every message
func (r *TaskRepositoryImpl) Watch(ctx context.Context, userID string) (<-chan repository.Snapshot, error) {
	signals := make(chan struct{}, 1)
	signal := func() {
		select {
		case signals <- struct{}{}:
		default:
		}
	}

	dc, closeConn := r.client.Dedicate()
	wait := dc.SetPubSubHooks(rueidis.PubSubHooks{
		OnMessage: func(rueidis.PubSubMessage) { signal() },
		// a reload once the subscription is live covers writes that landed
		// between the first load and the SUBSCRIBE reply
		OnSubscription: func(s rueidis.PubSubSubscription) {
			if s.Kind == "subscribe" {
				signal()
			}
		},
	})

	channel := changesChannel(userID)
	if err := dc.Do(ctx, dc.B().Subscribe().Channel(channel).Build()).Error(); err != nil {
		closeConn()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	failures := make(chan error, 1)
	go func() {
		select {
		case err := <-wait:
			if ctx.Err() != nil {
				return
			}
			if err == nil {
				err = repository.ErrWatchClosed
			}
			r.logger.Warn().Err(err).Str("channel", channel).Msg("subscription ended")
			failures <- fmt.Errorf("subscription to %s lost: %w", channel, err)
		case <-ctx.Done():
		}
	}()

	release := func() {
		unsubCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = dc.Do(unsubCtx, dc.B().Unsubscribe().Channel(channel).Build()).Error()
		closeConn()
	}
	load := func(ctx context.Context) ([]repository.Record, error) {
		return r.List(ctx, userID)
	}
	return watch.Stream(ctx, userID, load, signals, failures, release), nil
}

func (r *TaskRepositoryImpl) getRaw(ctx context.Context, userID, taskID string) (string, error) {
	c := r.client
	raw, err := c.Do(ctx, c.B().Hget().Key(tasksKey(userID)).Field(taskID).Build()).ToString()
	if rueidis.IsRedisNil(err) {
		return "", fmt.Errorf("task %s: %w", taskID, entity.ErrTaskNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to load task: %w", err)
	}
	return raw, nil
}

func decodeFields(raw string) (repository.Fields, error) {
	var fields repository.Fields
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("failed to decode task: %w", err)
	}
	if fields == nil {
		fields = repository.Fields{}
	}
	return fields, nil
}
