package mapper

import (
	"fmt"
	"time"

	"mtasks/internal/domain/entity"
	"mtasks/internal/domain/repository"
	"mtasks/internal/domain/valueobject"
)

// Record field names
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldCategory    = "category"
	FieldPriority    = "priority"
	FieldDueDate     = "dueDate"
	FieldCompleted   = "completed"
	FieldCompletedAt = "completedAt"
	FieldUserID      = "userId"
	FieldCreatedAt   = "createdAt"
	FieldUpdatedAt   = "updatedAt"
	FieldSubTasks    = "subTasks"

	subTaskID        = "id"
	subTaskTitle     = "title"
	subTaskCompleted = "completed"
)

// TaskToFields converts a task to its stored record. Optional fields without
// a value are left out entirely; the ID is the record key and is not stored.
func TaskToFields(task *entity.Task) repository.Fields {
	fields := repository.Fields{
		FieldTitle:     task.Title(),
		FieldCategory:  task.Category().String(),
		FieldPriority:  task.Priority().String(),
		FieldCompleted: task.Completed(),
		FieldUserID:    task.UserID(),
		FieldCreatedAt: task.CreatedAt().UnixMilli(),
		FieldUpdatedAt: task.UpdatedAt().UnixMilli(),
	}

	if task.Description() != "" {
		fields[FieldDescription] = task.Description()
	}
	if due := task.DueDate(); due != nil {
		fields[FieldDueDate] = due.UnixMilli()
	}
	if at := task.CompletedAt(); at != nil {
		fields[FieldCompletedAt] = at.UnixMilli()
	}
	if subTasks := task.SubTasks(); len(subTasks) > 0 {
		fields[FieldSubTasks] = subTasksToFields(subTasks)
	}

	return fields
}

// PatchToFields converts a patch to a partial record update against the
// task's current state. updatedAt is always refreshed; completedAt follows
// the completed flag. Cleared optional fields become DeleteField.
func PatchToFields(patch entity.TaskPatch, current *entity.Task, now time.Time) repository.Fields {
	fields := repository.Fields{
		FieldUpdatedAt: now.UnixMilli(),
	}

	if patch.Title != nil {
		fields[FieldTitle] = *patch.Title
	}
	if patch.Description != nil {
		if *patch.Description == "" {
			fields[FieldDescription] = repository.DeleteField
		} else {
			fields[FieldDescription] = *patch.Description
		}
	}
	if patch.Category != nil {
		fields[FieldCategory] = patch.Category.String()
	}
	if patch.Priority != nil {
		fields[FieldPriority] = patch.Priority.String()
	}
	switch {
	case patch.ClearDueDate:
		fields[FieldDueDate] = repository.DeleteField
	case patch.DueDate != nil:
		fields[FieldDueDate] = patch.DueDate.UnixMilli()
	}
	if patch.Completed != nil {
		fields[FieldCompleted] = *patch.Completed
		switch {
		case !*patch.Completed:
			fields[FieldCompletedAt] = repository.DeleteField
		case current == nil || !current.Completed():
			fields[FieldCompletedAt] = now.UnixMilli()
		}
	}
	if patch.SubTasks != nil {
		if len(patch.SubTasks) == 0 {
			fields[FieldSubTasks] = repository.DeleteField
		} else {
			fields[FieldSubTasks] = subTasksToFields(patch.SubTasks)
		}
	}

	return fields
}

// FieldsToTask rebuilds a task from a stored record
func FieldsToTask(id string, fields repository.Fields) (*entity.Task, error) {
	category, err := valueobject.ParseCategory(getString(fields, FieldCategory))
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", id, entity.ErrInvalidCategory)
	}
	priority, err := valueobject.ParsePriority(getString(fields, FieldPriority))
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", id, entity.ErrInvalidPriority)
	}
	subTasks, err := getSubTasks(fields, FieldSubTasks)
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", id, err)
	}

	state := entity.TaskState{
		ID:          id,
		Title:       getString(fields, FieldTitle),
		Description: getString(fields, FieldDescription),
		Category:    category,
		Priority:    priority,
		DueDate:     getTime(fields, FieldDueDate),
		Completed:   getBool(fields, FieldCompleted),
		CompletedAt: getTime(fields, FieldCompletedAt),
		UserID:      getString(fields, FieldUserID),
		SubTasks:    subTasks,
	}
	if t := getTime(fields, FieldCreatedAt); t != nil {
		state.CreatedAt = *t
	}
	if t := getTime(fields, FieldUpdatedAt); t != nil {
		state.UpdatedAt = *t
	} else {
		state.UpdatedAt = state.CreatedAt
	}

	task, err := entity.RestoreTask(state)
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", id, err)
	}
	return task, nil
}

// RecordsToTasks converts records to tasks. Records that cannot be converted
// are skipped and reported through skipped.
func RecordsToTasks(records []repository.Record, skipped func(id string, err error)) []*entity.Task {
	tasks := make([]*entity.Task, 0, len(records))
	for _, rec := range records {
		task, err := FieldsToTask(rec.ID, rec.Fields)
		if err != nil {
			if skipped != nil {
				skipped(rec.ID, err)
			}
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks
}

func subTasksToFields(subTasks []entity.SubTask) []any {
	out := make([]any, 0, len(subTasks))
	for _, st := range subTasks {
		out = append(out, map[string]any{
			subTaskID:        st.ID,
			subTaskTitle:     st.Title,
			subTaskCompleted: st.Completed,
		})
	}
	return out
}
