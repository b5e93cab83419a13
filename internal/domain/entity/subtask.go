package entity

import "strings"

// SubTask is a checklist item attached to a task. It has no due date or
// priority of its own.
type SubTask struct {
	ID        string
	Title     string
	Completed bool
}

// NewSubTask creates an incomplete subtask
func NewSubTask(id, title string) (SubTask, error) {
	if strings.TrimSpace(id) == "" {
		return SubTask{}, ErrInvalidSubTaskID
	}
	if strings.TrimSpace(title) == "" {
		return SubTask{}, ErrEmptySubTaskTitle
	}
	return SubTask{ID: id, Title: title}, nil
}

// ValidateSubTasks checks that every subtask has an ID and a title and that
// IDs are unique within the list
func ValidateSubTasks(subTasks []SubTask) error {
	seen := make(map[string]struct{}, len(subTasks))
	for _, st := range subTasks {
		if strings.TrimSpace(st.ID) == "" {
			return ErrInvalidSubTaskID
		}
		if strings.TrimSpace(st.Title) == "" {
			return ErrEmptySubTaskTitle
		}
		if _, dup := seen[st.ID]; dup {
			return ErrDuplicateSubTaskID
		}
		seen[st.ID] = struct{}{}
	}
	return nil
}

func copySubTasks(subTasks []SubTask) []SubTask {
	if len(subTasks) == 0 {
		return []SubTask{}
	}
	out := make([]SubTask, len(subTasks))
	copy(out, subTasks)
	return out
}
