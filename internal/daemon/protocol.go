package daemon

import "mtasks/internal/domain/repository"

// Request types
const (
	RequestPush        = "push"
	RequestUpdate      = "update"
	RequestRemove      = "remove"
	RequestGet         = "get"
	RequestList        = "list"
	RequestSubscribe   = "subscribe"
	RequestUnsubscribe = "unsubscribe"
	RequestPing        = "ping"
)

// Notification types
const (
	NotificationSnapshot = "snapshot"
)

// Error codes carried in Response.Code
const (
	CodeNotFound = "not_found"
)

// Request represents a client request to the daemon
type Request struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Response represents a daemon response to the client
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Notification is pushed to subscribed connections
type Notification struct {
	Type    string   `json:"type"`
	UserID  string   `json:"user_id"`
	Records []Record `json:"records"`
	Error   string   `json:"error,omitempty"`
}

// Record is a task record on the wire
type Record struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// PushPayload contains data for storing a new record
type PushPayload struct {
	UserID string         `json:"user_id"`
	Fields map[string]any `json:"fields"`
}

// UpdatePayload contains a partial record update. Deleted keys travel
// separately because the delete marker has no JSON form.
type UpdatePayload struct {
	UserID string         `json:"user_id"`
	TaskID string         `json:"task_id"`
	Set    map[string]any `json:"set,omitempty"`
	Delete []string       `json:"delete,omitempty"`
}

// TaskPayload addresses a single record
type TaskPayload struct {
	UserID string `json:"user_id"`
	TaskID string `json:"task_id"`
}

// UserPayload addresses a user's collection
type UserPayload struct {
	UserID string `json:"user_id"`
}

// PushResult is the data of a successful push
type PushResult struct {
	ID string `json:"id"`
}

func toWireRecords(records []repository.Record) []Record {
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		out = append(out, Record{ID: rec.ID, Fields: rec.Fields})
	}
	return out
}

func fromWireRecords(records []Record) []repository.Record {
	out := make([]repository.Record, 0, len(records))
	for _, rec := range records {
		fields := repository.Fields(rec.Fields)
		if fields == nil {
			fields = repository.Fields{}
		}
		out = append(out, repository.Record{ID: rec.ID, Fields: fields})
	}
	return out
}

// toUpdatePayload splits delete markers out of an update
func toUpdatePayload(userID, taskID string, fields repository.Fields) UpdatePayload {
	set, deletes := fields.Split()
	return UpdatePayload{UserID: userID, TaskID: taskID, Set: set, Delete: deletes}
}

// Fields rebuilds the update with delete markers
func (p UpdatePayload) Fields() repository.Fields {
	fields := make(repository.Fields, len(p.Set)+len(p.Delete))
	for k, v := range p.Set {
		fields[k] = v
	}
	for _, k := range p.Delete {
		fields[k] = repository.DeleteField
	}
	return fields
}
