package adapter

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"mtasks/internal/domain/entity"
	"mtasks/internal/domain/repository"
	"mtasks/internal/domain/service"
	"mtasks/internal/domain/valueobject"
	"mtasks/internal/infrastructure/persistence/memory"
)

var fixedNow = time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC)

type fakeIdentity struct {
	mu       sync.Mutex
	user     *entity.User
	watchers []chan *entity.User
}

func (f *fakeIdentity) CurrentUser(ctx context.Context) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.user == nil {
		return nil, entity.ErrNotAuthenticated
	}
	return f.user, nil
}

func (f *fakeIdentity) WatchAuthState(ctx context.Context) (<-chan *entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan *entity.User, 8)
	ch <- f.user
	f.watchers = append(f.watchers, ch)
	return ch, nil
}

func (f *fakeIdentity) set(user *entity.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.user = user
	for _, ch := range f.watchers {
		ch <- user
	}
}

type countingRepo struct {
	repository.TaskRepository
	writes atomic.Int32
}

func (r *countingRepo) Push(ctx context.Context, userID string, fields repository.Fields) (string, error) {
	r.writes.Add(1)
	return r.TaskRepository.Push(ctx, userID, fields)
}

func (r *countingRepo) Update(ctx context.Context, userID, taskID string, fields repository.Fields) error {
	r.writes.Add(1)
	return r.TaskRepository.Update(ctx, userID, taskID, fields)
}

func newTestStore(user *entity.User) (*TaskStore, *countingRepo, *fakeIdentity) {
	repo := &countingRepo{TaskRepository: memory.NewTaskRepository()}
	ident := &fakeIdentity{user: user}
	store := NewTaskStore(repo, ident, service.NewValidationService(), zerolog.Nop())
	store.now = func() time.Time { return fixedNow }
	return store, repo, ident
}

var alice = &entity.User{ID: "alice", Email: "alice@example.com"}

func TestTaskStore_CreateRequiresUser(t *testing.T) {
	is := is.New(t)
	store, repo, _ := newTestStore(nil)

	_, err := store.Create(context.Background(), entity.TaskDraft{Title: "Buy groceries"})
	is.True(errors.Is(err, entity.ErrNotAuthenticated))
	is.Equal(repo.writes.Load(), int32(0))
}

func TestTaskStore_CreateValidatesBeforeWriting(t *testing.T) {
	is := is.New(t)
	store, repo, _ := newTestStore(alice)
	ctx := context.Background()

	_, err := store.Create(ctx, entity.TaskDraft{Title: "  "})
	is.True(errors.Is(err, entity.ErrEmptyTaskTitle))

	past := fixedNow.AddDate(0, 0, -2)
	_, err = store.Create(ctx, entity.TaskDraft{Title: "late", DueDate: &past})
	is.True(errors.Is(err, entity.ErrDueDateInPast))

	is.Equal(repo.writes.Load(), int32(0))
}

func TestTaskStore_CreateOmitsAbsentFields(t *testing.T) {
	is := is.New(t)
	store, repo, _ := newTestStore(alice)
	ctx := context.Background()

	task, err := store.Create(ctx, entity.TaskDraft{Title: "Buy groceries"})
	is.NoErr(err)
	is.True(task.ID() != "")
	is.Equal(task.UserID(), "alice")

	fields, err := repo.Get(ctx, "alice", task.ID())
	is.NoErr(err)
	for _, key := range []string{"description", "dueDate", "completedAt", "subTasks"} {
		_, ok := fields[key]
		is.True(!ok) // absent optional field persisted
	}
	is.Equal(fields["completed"], false)
	is.Equal(fields["createdAt"], fixedNow.UnixMilli())
}

func TestTaskStore_ToggleCompletion(t *testing.T) {
	is := is.New(t)
	store, repo, _ := newTestStore(alice)
	ctx := context.Background()

	task, err := store.Create(ctx, entity.TaskDraft{Title: "Report", Priority: valueobject.PriorityHigh})
	is.NoErr(err)

	later := fixedNow.Add(time.Hour)
	store.now = func() time.Time { return later }

	is.NoErr(store.ToggleCompletion(ctx, task.ID()))
	got, err := store.Get(ctx, task.ID())
	is.NoErr(err)
	is.True(got.Completed())
	is.True(got.CompletedAt().Equal(later))
	is.True(got.UpdatedAt().Equal(later))

	is.NoErr(store.ToggleCompletion(ctx, task.ID()))
	fields, err := repo.Get(ctx, "alice", task.ID())
	is.NoErr(err)
	_, ok := fields["completedAt"]
	is.True(!ok)
	is.Equal(fields["completed"], false)
}

func TestTaskStore_UpdateMissingTask(t *testing.T) {
	is := is.New(t)
	store, _, _ := newTestStore(alice)

	title := "x"
	err := store.Update(context.Background(), "missing", entity.TaskPatch{Title: &title})
	is.True(errors.Is(err, entity.ErrTaskNotFound))
}

func TestTaskStore_UpdateRejectsInvalidPatch(t *testing.T) {
	is := is.New(t)
	store, repo, _ := newTestStore(alice)
	ctx := context.Background()

	task, err := store.Create(ctx, entity.TaskDraft{Title: "x"})
	is.NoErr(err)
	writes := repo.writes.Load()

	blank := ""
	err = store.Update(ctx, task.ID(), entity.TaskPatch{Title: &blank})
	is.True(errors.Is(err, entity.ErrEmptyTaskTitle))
	is.Equal(repo.writes.Load(), writes)
}

func TestTaskStore_UpdateRejectsDuplicateSubTaskIDs(t *testing.T) {
	is := is.New(t)
	store, repo, _ := newTestStore(alice)
	ctx := context.Background()

	task, err := store.Create(ctx, entity.TaskDraft{Title: "Move house"})
	is.NoErr(err)
	writes := repo.writes.Load()

	err = store.Update(ctx, task.ID(), entity.TaskPatch{SubTasks: []entity.SubTask{
		{ID: "x", Title: "Pack books"},
		{ID: "x", Title: "Pack plates"},
	}})
	is.True(errors.Is(err, entity.ErrDuplicateSubTaskID))

	err = store.Update(ctx, task.ID(), entity.TaskPatch{SubTasks: []entity.SubTask{
		{ID: "  ", Title: "Pack books"},
	}})
	is.True(errors.Is(err, entity.ErrInvalidSubTaskID))
	is.Equal(repo.writes.Load(), writes)

	// the task is still readable
	tasks, err := store.Load(ctx)
	is.NoErr(err)
	is.Equal(len(tasks), 1)
	_, err = store.Get(ctx, task.ID())
	is.NoErr(err)

	// blank IDs are filled in and do not collide
	is.NoErr(store.Update(ctx, task.ID(), entity.TaskPatch{SubTasks: []entity.SubTask{
		{Title: "Pack books"},
		{Title: "Pack plates"},
	}}))
	got, err := store.Get(ctx, task.ID())
	is.NoErr(err)
	is.Equal(len(got.SubTasks()), 2)
}

func TestTaskStore_SubTasks(t *testing.T) {
	is := is.New(t)
	store, _, _ := newTestStore(alice)
	ctx := context.Background()

	task, err := store.Create(ctx, entity.TaskDraft{Title: "Move house"})
	is.NoErr(err)

	sub, err := store.AddSubTask(ctx, task.ID(), "Pack books")
	is.NoErr(err)
	is.True(sub.ID != "")

	is.NoErr(store.ToggleSubTask(ctx, task.ID(), sub.ID))
	got, err := store.Get(ctx, task.ID())
	is.NoErr(err)
	done, total := got.SubTaskProgress()
	is.Equal(done, 1)
	is.Equal(total, 1)

	err = store.ToggleSubTask(ctx, task.ID(), "nope")
	is.True(errors.Is(err, entity.ErrSubTaskNotFound))
}

func TestTaskStore_LoadSkipsMalformedRecords(t *testing.T) {
	is := is.New(t)
	store, repo, _ := newTestStore(alice)
	ctx := context.Background()

	_, err := store.Create(ctx, entity.TaskDraft{Title: "good"})
	is.NoErr(err)
	_, err = repo.Push(ctx, "alice", repository.Fields{"title": "bad", "priority": "Critical", "userId": "alice"})
	is.NoErr(err)

	tasks, err := store.Load(ctx)
	is.NoErr(err)
	is.Equal(len(tasks), 1)
	is.Equal(tasks[0].Title(), "good")
}

func waitForState(t *testing.T, sub *Subscription, match func(State) bool) State {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case state, ok := <-sub.Updates():
			if !ok {
				t.Fatal("updates closed")
			}
			if match(state) {
				return state
			}
		case <-deadline:
			t.Fatalf("timed out, last state %+v", sub.Current())
		}
	}
}

func TestSubscription_FollowsAuthAndSnapshots(t *testing.T) {
	is := is.New(t)
	store, _, ident := newTestStore(nil)
	ctx := context.Background()

	sub, err := store.Subscribe(ctx)
	is.NoErr(err)
	defer sub.Close()

	waitForState(t, sub, func(s State) bool { return !s.SignedIn() && !s.Loading })

	ident.set(alice)
	state := waitForState(t, sub, func(s State) bool { return s.SignedIn() && !s.Loading })
	is.Equal(len(state.Tasks), 0)

	_, err = store.Create(ctx, entity.TaskDraft{Title: "Buy groceries"})
	is.NoErr(err)
	state = waitForState(t, sub, func(s State) bool { return len(s.Tasks) == 1 })
	is.Equal(state.Tasks[0].Title(), "Buy groceries")
	is.Equal(sub.Current().Tasks[0].Title(), "Buy groceries")

	ident.set(nil)
	state = waitForState(t, sub, func(s State) bool { return !s.SignedIn() })
	is.Equal(len(state.Tasks), 0)
}

type failingRepo struct {
	repository.TaskRepository
	snapshots chan repository.Snapshot
}

func (r *failingRepo) Watch(ctx context.Context, userID string) (<-chan repository.Snapshot, error) {
	return r.snapshots, nil
}

func TestSubscription_ErrorKeepsLastTasks(t *testing.T) {
	is := is.New(t)
	repo := &failingRepo{TaskRepository: memory.NewTaskRepository(), snapshots: make(chan repository.Snapshot, 2)}
	store := NewTaskStore(repo, &fakeIdentity{user: alice}, service.NewValidationService(), zerolog.Nop())

	repo.snapshots <- repository.Snapshot{UserID: "alice", Records: []repository.Record{{
		ID: "t1",
		Fields: repository.Fields{
			"title": "Report", "category": "Work", "priority": "High",
			"completed": false, "userId": "alice", "createdAt": int64(1), "updatedAt": int64(1),
		},
	}}}
	repo.snapshots <- repository.Snapshot{UserID: "alice", Err: errors.New("permission denied")}

	sub, err := store.Subscribe(context.Background())
	is.NoErr(err)

	state := waitForState(t, sub, func(s State) bool { return s.Err != nil })
	is.Equal(state.Err.Error(), "permission denied")
	is.Equal(len(state.Tasks), 1)

	sub.Close()
	_, ok := <-sub.Updates()
	for ok {
		_, ok = <-sub.Updates()
	}
}

func TestSubscription_ClosedWatchIsReported(t *testing.T) {
	is := is.New(t)
	repo := &failingRepo{TaskRepository: memory.NewTaskRepository(), snapshots: make(chan repository.Snapshot, 1)}
	store := NewTaskStore(repo, &fakeIdentity{user: alice}, service.NewValidationService(), zerolog.Nop())

	repo.snapshots <- repository.Snapshot{UserID: "alice", Records: []repository.Record{{
		ID: "t1",
		Fields: repository.Fields{
			"title": "Report", "category": "Work", "priority": "High",
			"completed": false, "userId": "alice", "createdAt": int64(1), "updatedAt": int64(1),
		},
	}}}

	sub, err := store.Subscribe(context.Background())
	is.NoErr(err)
	defer sub.Close()

	waitForState(t, sub, func(s State) bool { return len(s.Tasks) == 1 })

	// the backend gives up without an error snapshot
	close(repo.snapshots)

	state := waitForState(t, sub, func(s State) bool { return s.Err != nil })
	is.True(errors.Is(state.Err, repository.ErrWatchClosed))
	is.True(errors.Is(sub.Current().Err, repository.ErrWatchClosed))
	is.Equal(len(state.Tasks), 1)
	is.Equal(state.UserID, "alice")
}

func TestSubscription_ClosedWatchKeepsEarlierError(t *testing.T) {
	is := is.New(t)
	repo := &failingRepo{TaskRepository: memory.NewTaskRepository(), snapshots: make(chan repository.Snapshot, 1)}
	store := NewTaskStore(repo, &fakeIdentity{user: alice}, service.NewValidationService(), zerolog.Nop())

	lost := errors.New("daemon subscription lost: EOF")
	repo.snapshots <- repository.Snapshot{UserID: "alice", Err: lost}
	close(repo.snapshots)

	sub, err := store.Subscribe(context.Background())
	is.NoErr(err)
	defer sub.Close()

	state := waitForState(t, sub, func(s State) bool { return s.Err != nil })
	is.Equal(state.Err, lost)

	// the close after an error snapshot does not replace it
	time.Sleep(20 * time.Millisecond)
	is.Equal(sub.Current().Err, lost)
}
