package adapter

import (
	"context"
	"sync"
	"time"

	"mtasks/internal/domain/entity"
	"mtasks/internal/domain/repository"
)

// State is what a subscriber sees of the current user's tasks
type State struct {
	// UserID is empty while signed out
	UserID string
	Tasks  []*entity.Task
	// Loading is set from sign-in until the first snapshot arrives
	Loading bool
	// Err holds the last subscription failure. Tasks keep their last
	// known value while it is set.
	Err error
	At  time.Time
}

// SignedIn reports whether the state belongs to an authenticated user
func (s State) SignedIn() bool {
	return s.UserID != ""
}

// Subscription is a live view of the current user's tasks. It follows auth
// state: tasks are watched only while a user is signed in.
type Subscription struct {
	store   *TaskStore
	updates chan State
	cancel  context.CancelFunc
	done    chan struct{}

	mu    sync.RWMutex
	state State
}

// Subscribe starts a live subscription. Callers must Close it.
func (s *TaskStore) Subscribe(ctx context.Context) (*Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	auth, err := s.identity.WatchAuthState(ctx)
	if err != nil {
		cancel()
		return nil, err
	}

	sub := &Subscription{
		store:   s,
		updates: make(chan State, 1),
		cancel:  cancel,
		done:    make(chan struct{}),
		state:   State{Loading: true, At: s.now()},
	}
	go sub.run(ctx, auth)
	return sub, nil
}

// Updates delivers each new state. Only the latest unread state is kept.
// The channel is closed after Close.
func (sub *Subscription) Updates() <-chan State {
	return sub.updates
}

// Current returns the latest state
func (sub *Subscription) Current() State {
	sub.mu.RLock()
	defer sub.mu.RUnlock()
	return sub.state
}

// Close stops the subscription and waits for it to release the backing
// store watch.
func (sub *Subscription) Close() {
	sub.cancel()
	<-sub.done
}

func (sub *Subscription) run(ctx context.Context, auth <-chan *entity.User) {
	defer close(sub.done)
	defer close(sub.updates)

	var (
		snapshots   <-chan repository.Snapshot
		stopWatch   context.CancelFunc = func() {}
		currentUser string
	)
	defer func() { stopWatch() }()

	for {
		select {
		case <-ctx.Done():
			return

		case user, ok := <-auth:
			if !ok {
				return
			}
			userID := ""
			if user != nil {
				userID = user.ID
			}
			if userID == currentUser && snapshots != nil {
				continue
			}

			stopWatch()
			stopWatch = func() {}
			snapshots = nil
			currentUser = userID

			if userID == "" {
				sub.publish(State{})
				continue
			}

			watchCtx, cancel := context.WithCancel(ctx)
			ch, err := sub.store.repo.Watch(watchCtx, userID)
			if err != nil {
				cancel()
				sub.store.logger.Error().Err(err).Str("user_id", userID).Msg("failed to watch tasks")
				sub.publish(State{UserID: userID, Err: err})
				continue
			}
			stopWatch = cancel
			snapshots = ch
			sub.publish(State{UserID: userID, Loading: true})

		case snap, ok := <-snapshots:
			if !ok {
				snapshots = nil
				stopWatch()
				stopWatch = func() {}
				if ctx.Err() != nil || currentUser == "" {
					continue
				}
				// keep the last tasks on screen; an error already shown says more
				prev := sub.Current()
				if prev.Err == nil {
					sub.store.logger.Warn().Str("user_id", currentUser).Msg("task watch closed")
					sub.publish(State{UserID: currentUser, Tasks: prev.Tasks, Err: repository.ErrWatchClosed})
				}
				continue
			}
			if snap.UserID != "" && snap.UserID != currentUser {
				continue
			}

			if snap.Err != nil {
				sub.store.logger.Warn().Err(snap.Err).Str("user_id", currentUser).Msg("task subscription error")
				prev := sub.Current()
				sub.publish(State{UserID: currentUser, Tasks: prev.Tasks, Err: snap.Err})
				continue
			}
			sub.publish(State{
				UserID: currentUser,
				Tasks:  sub.store.toTasks(currentUser, snap.Records),
			})
		}
	}
}

// publish replaces the state and offers it to the reader, dropping an
// unread older state. Only run calls it.
func (sub *Subscription) publish(state State) {
	state.At = sub.store.now()

	sub.mu.Lock()
	sub.state = state
	sub.mu.Unlock()

	select {
	case <-sub.updates:
	default:
	}
	sub.updates <- state
}
