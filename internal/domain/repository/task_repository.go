package repository

import (
	"context"
	"errors"
	"sort"
)

// Fields is a flat task record as held by a backing store. Timestamps are
// epoch milliseconds.
type Fields map[string]any

type deleteMarker struct{}

// DeleteField, used as a value in an Update, removes the key from the record
var DeleteField any = deleteMarker{}

// IsDelete reports whether v is the DeleteField marker
func IsDelete(v any) bool {
	_, ok := v.(deleteMarker)
	return ok
}

// Clone returns a shallow copy of f
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Merge returns a copy of f with update applied. Keys mapped to DeleteField
// are removed.
func (f Fields) Merge(update Fields) Fields {
	out := f.Clone()
	for k, v := range update {
		if IsDelete(v) {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out
}

// Split separates the keys to set from the keys to delete
func (f Fields) Split() (Fields, []string) {
	set := make(Fields, len(f))
	var deletes []string
	for k, v := range f {
		if IsDelete(v) {
			deletes = append(deletes, k)
			continue
		}
		set[k] = v
	}
	sort.Strings(deletes)
	return set, deletes
}

// ErrWatchClosed reports a watch that ended while its caller still wanted
// updates
var ErrWatchClosed = errors.New("task watch closed unexpectedly")

// Record is one task as stored, keyed by its store-assigned ID
type Record struct {
	ID     string
	Fields Fields
}

// Snapshot is the complete task collection of one user at a point in time.
// Err is set when the collection could not be read; Records is then empty.
type Snapshot struct {
	UserID  string
	Records []Record
	Err     error
}

// SortRecords orders records by ID
func SortRecords(records []Record) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].ID < records[j].ID
	})
}

// TaskRepository is the backing store for task records, laid out per user
// and then per task ID
type TaskRepository interface {
	// Push stores a new record and returns the ID assigned to it
	Push(ctx context.Context, userID string, fields Fields) (string, error)

	// Update merges fields into an existing record
	Update(ctx context.Context, userID, taskID string, fields Fields) error

	// Remove deletes a record
	Remove(ctx context.Context, userID, taskID string) error

	// Get returns a single record
	Get(ctx context.Context, userID, taskID string) (Fields, error)

	// List returns every record of a user ordered by ID
	List(ctx context.Context, userID string) ([]Record, error)

	// Watch emits the full collection immediately and again after every
	// change. The channel is closed once ctx is done.
	Watch(ctx context.Context, userID string) (<-chan Snapshot, error)
}
