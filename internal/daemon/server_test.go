package daemon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"mtasks/internal/domain/entity"
	"mtasks/internal/domain/repository"
	"mtasks/internal/infrastructure/persistence/memory"
)

func startServer(t *testing.T) *Client {
	t.Helper()
	dir, err := os.MkdirTemp("", "mtasksd")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	socket := filepath.Join(dir, "d.sock")

	server := NewServer(memory.NewTaskRepository(), socket, zerolog.Nop())
	if err := server.Listen(); err != nil {
		t.Fatalf("listen: %v", err)
	}
	go server.Serve()
	t.Cleanup(func() { server.Stop() })

	return NewClient(socket)
}

func TestClient_RoundTrip(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	client := startServer(t)

	is.NoErr(client.Ping(ctx))

	id, err := client.Push(ctx, "u1", repository.Fields{"title": "a", "dueDate": int64(42)})
	is.NoErr(err)
	is.True(id != "")

	is.NoErr(client.Update(ctx, "u1", id, repository.Fields{"title": "b", "dueDate": repository.DeleteField}))

	fields, err := client.Get(ctx, "u1", id)
	is.NoErr(err)
	is.Equal(fields, repository.Fields{"title": "b"})

	records, err := client.List(ctx, "u1")
	is.NoErr(err)
	is.Equal(len(records), 1)

	is.NoErr(client.Remove(ctx, "u1", id))
	_, err = client.Get(ctx, "u1", id)
	is.True(errors.Is(err, entity.ErrTaskNotFound))
}

func TestClient_Watch(t *testing.T) {
	is := is.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client := startServer(t)

	ch, err := client.Watch(ctx, "u1")
	is.NoErr(err)

	first := <-ch
	is.NoErr(first.Err)
	is.Equal(len(first.Records), 0)

	_, err = client.Push(ctx, "u1", repository.Fields{"title": "pushed"})
	is.NoErr(err)

	select {
	case snap := <-ch:
		is.NoErr(snap.Err)
		is.Equal(len(snap.Records), 1)
		is.Equal(snap.Records[0].Fields["title"], "pushed")
	case <-time.After(3 * time.Second):
		t.Fatal("no snapshot after push")
	}

	cancel()
	for range ch {
	}
}
