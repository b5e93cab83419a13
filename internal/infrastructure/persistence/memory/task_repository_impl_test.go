package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matryer/is"
	"mtasks/internal/domain/entity"
	"mtasks/internal/domain/repository"
)

func nextSnapshot(t *testing.T, ch <-chan repository.Snapshot) repository.Snapshot {
	t.Helper()
	select {
	case snap, ok := <-ch:
		if !ok {
			t.Fatal("watch channel closed")
		}
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	return repository.Snapshot{}
}

func TestTaskRepository_CRUD(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	repo := NewTaskRepository()

	id, err := repo.Push(ctx, "u1", repository.Fields{"title": "a", "dueDate": int64(5)})
	is.NoErr(err)
	is.True(id != "")

	is.NoErr(repo.Update(ctx, "u1", id, repository.Fields{"title": "b", "dueDate": repository.DeleteField}))
	got, err := repo.Get(ctx, "u1", id)
	is.NoErr(err)
	is.Equal(got, repository.Fields{"title": "b"})

	_, err = repo.Get(ctx, "u2", id)
	is.True(errors.Is(err, entity.ErrTaskNotFound))

	err = repo.Update(ctx, "u1", "missing", repository.Fields{"title": "x"})
	is.True(errors.Is(err, entity.ErrTaskNotFound))

	is.NoErr(repo.Remove(ctx, "u1", id))
	records, err := repo.List(ctx, "u1")
	is.NoErr(err)
	is.Equal(len(records), 0)
}

func TestTaskRepository_Watch(t *testing.T) {
	is := is.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	repo := NewTaskRepository()

	_, err := repo.Push(ctx, "u1", repository.Fields{"title": "first"})
	is.NoErr(err)

	ch, err := repo.Watch(ctx, "u1")
	is.NoErr(err)

	snap := nextSnapshot(t, ch)
	is.Equal(len(snap.Records), 1)

	_, err = repo.Push(ctx, "u1", repository.Fields{"title": "second"})
	is.NoErr(err)
	snap = nextSnapshot(t, ch)
	is.Equal(len(snap.Records), 2)
	is.True(snap.Records[0].ID < snap.Records[1].ID)

	cancel()
	for range ch {
	}
	is.Equal(repo.hub.Watchers("u1"), 0)
}
