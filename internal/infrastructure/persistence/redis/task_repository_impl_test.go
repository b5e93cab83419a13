package redis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"mtasks/internal/domain/entity"
	"mtasks/internal/domain/repository"
	"mtasks/internal/infrastructure/persistence/pushid"
)

// These tests need a live server: MTASKS_TEST_REDIS_ADDR=localhost:6379
func newTestRepo(t *testing.T) *TaskRepositoryImpl {
	t.Helper()
	addr := os.Getenv("MTASKS_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("MTASKS_TEST_REDIS_ADDR not set")
	}
	client, err := Connect(context.Background(), Options{Address: addr})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(client.Close)
	return NewTaskRepository(client, zerolog.Nop())
}

func TestTaskRepository_CRUD(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	repo := newTestRepo(t)
	user := "test-" + pushid.New()
	t.Cleanup(func() {
		c := repo.client
		c.Do(context.Background(), c.B().Del().Key(tasksKey(user)).Build())
	})

	id, err := repo.Push(ctx, user, repository.Fields{"title": "a", "completed": false})
	is.NoErr(err)

	is.NoErr(repo.Update(ctx, user, id, repository.Fields{"completed": true}))
	got, err := repo.Get(ctx, user, id)
	is.NoErr(err)
	is.Equal(got["completed"], true)

	is.True(errors.Is(repo.Update(ctx, user, "missing", repository.Fields{}), entity.ErrTaskNotFound))

	is.NoErr(repo.Remove(ctx, user, id))
	is.True(errors.Is(repo.Remove(ctx, user, id), entity.ErrTaskNotFound))
}

func TestTaskRepository_Watch(t *testing.T) {
	is := is.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	repo := newTestRepo(t)
	user := "test-" + pushid.New()

	ch, err := repo.Watch(ctx, user)
	is.NoErr(err)
	<-ch

	_, err = repo.Push(ctx, user, repository.Fields{"title": "live"})
	is.NoErr(err)

	deadline := time.After(5 * time.Second)
	for {
		select {
		case snap := <-ch:
			if len(snap.Records) == 1 {
				is.NoErr(repo.Remove(ctx, user, snap.Records[0].ID))
				return
			}
		case <-deadline:
			t.Fatal("no snapshot after push")
		}
	}
}
