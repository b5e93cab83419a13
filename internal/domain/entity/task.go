package entity

import (
	"strings"
	"time"

	"mtasks/internal/domain/valueobject"
	"mtasks/pkg/dateutil"
)

// Task represents a user-owned to-do item
type Task struct {
	id          string
	title       string
	description string
	category    valueobject.Category
	priority    valueobject.Priority
	dueDate     *time.Time
	completed   bool
	completedAt *time.Time
	userID      string
	createdAt   time.Time
	updatedAt   time.Time
	subTasks    []SubTask
}

// TaskDraft holds the user-supplied fields of a task that does not exist yet
type TaskDraft struct {
	Title       string
	Description string
	Category    valueobject.Category
	Priority    valueobject.Priority
	DueDate     *time.Time
	SubTasks    []SubTask
}

// TaskPatch describes a partial update. Nil fields are left unchanged.
type TaskPatch struct {
	Title        *string
	Description  *string
	Category     *valueobject.Category
	Priority     *valueobject.Priority
	DueDate      *time.Time
	ClearDueDate bool
	Completed    *bool
	SubTasks     []SubTask
}

// IsEmpty reports whether the patch changes nothing
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Category == nil && p.Priority == nil &&
		p.DueDate == nil && !p.ClearDueDate && p.Completed == nil && p.SubTasks == nil
}

// TaskState is the full field set of a task, used to rebuild a Task from storage
type TaskState struct {
	ID          string
	Title       string
	Description string
	Category    valueobject.Category
	Priority    valueobject.Priority
	DueDate     *time.Time
	Completed   bool
	CompletedAt *time.Time
	UserID      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	SubTasks    []SubTask
}

// NewTask creates a task for userID from a draft. The ID stays empty until
// the backing store assigns one through AssignID.
func NewTask(draft TaskDraft, userID string, now time.Time) (*Task, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrMissingTaskOwner
	}
	if strings.TrimSpace(draft.Title) == "" {
		return nil, ErrEmptyTaskTitle
	}
	category := draft.Category
	if category == "" {
		category = valueobject.CategoryPersonal
	}
	if !category.IsValid() {
		return nil, ErrInvalidCategory
	}
	priority := draft.Priority
	if priority == "" {
		priority = valueobject.PriorityMedium
	}
	if !priority.IsValid() {
		return nil, ErrInvalidPriority
	}
	if draft.DueDate != nil && dateutil.DayBefore(*draft.DueDate, now) {
		return nil, ErrDueDateInPast
	}
	if err := ValidateSubTasks(draft.SubTasks); err != nil {
		return nil, err
	}

	return &Task{
		title:       draft.Title,
		description: draft.Description,
		category:    category,
		priority:    priority,
		dueDate:     copyTime(draft.DueDate),
		userID:      userID,
		createdAt:   now,
		updatedAt:   now,
		subTasks:    copySubTasks(draft.SubTasks),
	}, nil
}

// RestoreTask rebuilds a task from persisted state. A completion timestamp
// that disagrees with the completed flag is normalised: a completed task
// without one takes its update time, an open task drops it.
func RestoreTask(state TaskState) (*Task, error) {
	if strings.TrimSpace(state.ID) == "" {
		return nil, ErrInvalidTaskID
	}
	if strings.TrimSpace(state.UserID) == "" {
		return nil, ErrMissingTaskOwner
	}
	if strings.TrimSpace(state.Title) == "" {
		return nil, ErrEmptyTaskTitle
	}
	if !state.Category.IsValid() {
		return nil, ErrInvalidCategory
	}
	if !state.Priority.IsValid() {
		return nil, ErrInvalidPriority
	}
	if err := ValidateSubTasks(state.SubTasks); err != nil {
		return nil, err
	}

	completedAt := copyTime(state.CompletedAt)
	switch {
	case state.Completed && completedAt == nil:
		at := state.UpdatedAt
		completedAt = &at
	case !state.Completed:
		completedAt = nil
	}

	return &Task{
		id:          state.ID,
		title:       state.Title,
		description: state.Description,
		category:    state.Category,
		priority:    state.Priority,
		dueDate:     copyTime(state.DueDate),
		completed:   state.Completed,
		completedAt: completedAt,
		userID:      state.UserID,
		createdAt:   state.CreatedAt,
		updatedAt:   state.UpdatedAt,
		subTasks:    copySubTasks(state.SubTasks),
	}, nil
}

// AssignID sets the store-assigned identifier. It can only happen once.
func (t *Task) AssignID(id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidTaskID
	}
	if t.id != "" {
		return ErrTaskIDAssigned
	}
	t.id = id
	return nil
}

// State returns a copy of every field of the task
func (t *Task) State() TaskState {
	return TaskState{
		ID:          t.id,
		Title:       t.title,
		Description: t.description,
		Category:    t.category,
		Priority:    t.priority,
		DueDate:     t.DueDate(),
		Completed:   t.completed,
		CompletedAt: t.CompletedAt(),
		UserID:      t.userID,
		CreatedAt:   t.createdAt,
		UpdatedAt:   t.updatedAt,
		SubTasks:    t.SubTasks(),
	}
}

// ID returns the task ID
func (t *Task) ID() string {
	return t.id
}

// Title returns the task title
func (t *Task) Title() string {
	return t.title
}

// Description returns the task description
func (t *Task) Description() string {
	return t.description
}

// Category returns the task category
func (t *Task) Category() valueobject.Category {
	return t.category
}

// Priority returns the task priority
func (t *Task) Priority() valueobject.Priority {
	return t.priority
}

// DueDate returns the task due date
func (t *Task) DueDate() *time.Time {
	return copyTime(t.dueDate)
}

// HasDueDate reports whether a due date is set
func (t *Task) HasDueDate() bool {
	return t.dueDate != nil
}

// Completed reports whether the task is done
func (t *Task) Completed() bool {
	return t.completed
}

// CompletedAt returns when the task was completed
func (t *Task) CompletedAt() *time.Time {
	return copyTime(t.completedAt)
}

// UserID returns the owner of the task
func (t *Task) UserID() string {
	return t.userID
}

// CreatedAt returns when the task was created
func (t *Task) CreatedAt() time.Time {
	return t.createdAt
}

// UpdatedAt returns when the task was last modified
func (t *Task) UpdatedAt() time.Time {
	return t.updatedAt
}

// SubTasks returns a copy of the task's subtasks in insertion order
func (t *Task) SubTasks() []SubTask {
	return copySubTasks(t.subTasks)
}

// SubTask looks up a subtask by ID
func (t *Task) SubTask(id string) (SubTask, error) {
	for _, st := range t.subTasks {
		if st.ID == id {
			return st, nil
		}
	}
	return SubTask{}, ErrSubTaskNotFound
}

// SubTaskProgress returns how many subtasks are done out of the total
func (t *Task) SubTaskProgress() (done, total int) {
	for _, st := range t.subTasks {
		if st.Completed {
			done++
		}
	}
	return done, len(t.subTasks)
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
