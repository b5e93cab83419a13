package watch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matryer/is"
	"mtasks/internal/domain/repository"
)

func TestHub_SubscribeNotify(t *testing.T) {
	is := is.New(t)
	hub := NewHub()

	ch, unsubscribe := hub.Subscribe("u1")
	is.Equal(hub.Watchers("u1"), 1)

	hub.Notify("u1")
	hub.Notify("u1") // coalesced
	hub.Notify("u2")

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected a signal")
	}
	select {
	case <-ch:
		t.Fatal("signals should be coalesced")
	default:
	}

	unsubscribe()
	unsubscribe()
	is.Equal(hub.Watchers("u1"), 0)
}

func TestStream(t *testing.T) {
	is := is.New(t)
	ctx, cancel := context.WithCancel(context.Background())

	var calls atomic.Int32
	load := func(context.Context) ([]repository.Record, error) {
		if calls.Add(1) == 2 {
			return nil, errors.New("boom")
		}
		return []repository.Record{{ID: "a"}}, nil
	}
	signals := make(chan struct{}, 1)
	released := make(chan struct{})

	out := Stream(ctx, "u1", load, signals, nil, func() { close(released) })

	snap := <-out
	is.NoErr(snap.Err)
	is.Equal(snap.UserID, "u1")
	is.Equal(len(snap.Records), 1)

	signals <- struct{}{}
	snap = <-out
	is.True(snap.Err != nil)
	is.Equal(len(snap.Records), 0)

	signals <- struct{}{}
	snap = <-out
	is.NoErr(snap.Err)

	cancel()
	for range out {
	}
	<-released
}

func TestStream_ReportsFailures(t *testing.T) {
	is := is.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	load := func(context.Context) ([]repository.Record, error) {
		return []repository.Record{{ID: "a"}}, nil
	}
	signals := make(chan struct{}, 1)
	failures := make(chan error, 1)
	out := Stream(ctx, "u1", load, signals, failures, nil)

	<-out

	lost := errors.New("connection lost")
	failures <- lost
	snap := <-out
	is.True(errors.Is(snap.Err, lost))
	is.Equal(snap.UserID, "u1")
	is.Equal(len(snap.Records), 0)

	// a closed failures channel is ignored and signals still reload
	close(failures)
	signals <- struct{}{}
	snap = <-out
	is.NoErr(snap.Err)
	is.Equal(len(snap.Records), 1)
}

func TestStream_ClosedSignalsEndStream(t *testing.T) {
	is := is.New(t)
	load := func(context.Context) ([]repository.Record, error) { return nil, nil }
	signals := make(chan struct{})
	released := make(chan struct{})

	out := Stream(context.Background(), "u1", load, signals, nil, func() { close(released) })
	<-out
	close(signals)

	_, ok := <-out
	is.True(!ok)
	<-released
}
