package watch

import (
	"context"
	"sync"

	"mtasks/internal/domain/repository"
)

// Hub fans change signals out to the watchers of each user
type Hub struct {
	mu          sync.Mutex
	subscribers map[string]map[chan struct{}]struct{} // userID -> signal channels
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan struct{}]struct{}),
	}
}

// Subscribe registers a watcher for userID. The returned channel receives a
// value whenever Notify is called; pending signals are coalesced.
func (h *Hub) Subscribe(userID string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	if _, exists := h.subscribers[userID]; !exists {
		h.subscribers[userID] = make(map[chan struct{}]struct{})
	}
	h.subscribers[userID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if subs, exists := h.subscribers[userID]; exists {
				delete(subs, ch)
				if len(subs) == 0 {
					delete(h.subscribers, userID)
				}
			}
		})
	}
	return ch, unsubscribe
}

// Notify signals every watcher of userID without blocking
func (h *Hub) Notify(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subscribers[userID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// NotifyAll signals every watcher of every user
func (h *Hub) NotifyAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, subs := range h.subscribers {
		for ch := range subs {
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	}
}

// Watchers returns how many watchers are registered for userID
func (h *Hub) Watchers(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers[userID])
}

// Loader reads the full collection of one user
type Loader func(ctx context.Context) ([]repository.Record, error)

// Stream emits a snapshot from load immediately and after every signal. An
// error received on failures is emitted as an error snapshot; the stream keeps
// running so a later signal can bring it back. A nil failures channel is never
// read. The returned channel is closed and release is called once ctx is done
// or signals is closed.
func Stream(ctx context.Context, userID string, load Loader, signals <-chan struct{}, failures <-chan error, release func()) <-chan repository.Snapshot {
	out := make(chan repository.Snapshot, 1)

	go func() {
		defer close(out)
		if release != nil {
			defer release()
		}

		send := func(snap repository.Snapshot) bool {
			select {
			case out <- snap:
				return true
			case <-ctx.Done():
				return false
			}
		}
		emit := func() bool {
			records, err := load(ctx)
			if ctx.Err() != nil {
				return false
			}
			snap := repository.Snapshot{UserID: userID, Records: records, Err: err}
			if err != nil {
				snap.Records = nil
			}
			return send(snap)
		}

		if !emit() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-signals:
				if !ok {
					return
				}
				if !emit() {
					return
				}
			case err, ok := <-failures:
				if !ok {
					failures = nil
					continue
				}
				if !send(repository.Snapshot{UserID: userID, Err: err}) {
					return
				}
			}
		}
	}()

	return out
}
