package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"mtasks/internal/domain/entity"
	"mtasks/internal/domain/repository"
)

func newTestRepo(t *testing.T) (*TaskRepositoryImpl, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	repo := NewTaskRepository(db, zerolog.Nop())
	repo.pollInterval = 20 * time.Millisecond
	return repo, path
}

func TestTaskRepository_CRUD(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	id, err := repo.Push(ctx, "u1", repository.Fields{"title": "a", "dueDate": int64(1700000000000)})
	is.NoErr(err)

	got, err := repo.Get(ctx, "u1", id)
	is.NoErr(err)
	is.Equal(got["title"], "a")
	is.Equal(got["dueDate"], float64(1700000000000))

	is.NoErr(repo.Update(ctx, "u1", id, repository.Fields{"dueDate": repository.DeleteField}))
	got, err = repo.Get(ctx, "u1", id)
	is.NoErr(err)
	_, hasDue := got["dueDate"]
	is.True(!hasDue)

	_, err = repo.Get(ctx, "u2", id)
	is.True(errors.Is(err, entity.ErrTaskNotFound))
	is.True(errors.Is(repo.Update(ctx, "u1", "nope", repository.Fields{}), entity.ErrTaskNotFound))

	is.NoErr(repo.Remove(ctx, "u1", id))
	is.True(errors.Is(repo.Remove(ctx, "u1", id), entity.ErrTaskNotFound))
}

func TestTaskRepository_WatchSeesOtherConnections(t *testing.T) {
	is := is.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	repo, path := newTestRepo(t)

	ch, err := repo.Watch(ctx, "u1")
	is.NoErr(err)
	first := <-ch
	is.Equal(len(first.Records), 0)

	otherDB, err := Open(path)
	is.NoErr(err)
	defer otherDB.Close()
	other := NewTaskRepository(otherDB, zerolog.Nop())
	_, err = other.Push(ctx, "u1", repository.Fields{"title": "from elsewhere"})
	is.NoErr(err)

	deadline := time.After(5 * time.Second)
	for {
		select {
		case snap := <-ch:
			if len(snap.Records) == 1 {
				is.Equal(snap.Records[0].Fields["title"], "from elsewhere")
				return
			}
		case <-deadline:
			t.Fatal("watcher did not observe the external write")
		}
	}
}
