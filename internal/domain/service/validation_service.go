package service

import (
	"fmt"
	"strings"
	"time"

	"mtasks/internal/domain/entity"
	"mtasks/internal/domain/valueobject"
	"mtasks/pkg/dateutil"
)

const (
	maxTaskTitleLength    = 200
	maxSubTaskTitleLength = 200
)

// ValidationService checks user input before it reaches the backing store
type ValidationService struct{}

// NewValidationService creates a new ValidationService
func NewValidationService() *ValidationService {
	return &ValidationService{}
}

// ValidateTaskTitle validates a task title
func (s *ValidationService) ValidateTaskTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return entity.ErrEmptyTaskTitle
	}
	if len(title) > maxTaskTitleLength {
		return fmt.Errorf("task title too long (max %d characters): %w", maxTaskTitleLength, entity.ErrRequiredField)
	}
	return nil
}

// ValidateSubTaskTitle validates a subtask title
func (s *ValidationService) ValidateSubTaskTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return entity.ErrEmptySubTaskTitle
	}
	if len(title) > maxSubTaskTitleLength {
		return fmt.Errorf("subtask title too long (max %d characters): %w", maxSubTaskTitleLength, entity.ErrRequiredField)
	}
	return nil
}

// ValidateDueDate rejects due dates whose calendar date is before today
func (s *ValidationService) ValidateDueDate(due *time.Time, now time.Time) error {
	if due == nil {
		return nil
	}
	if dateutil.DayBefore(*due, now) {
		return entity.ErrDueDateInPast
	}
	return nil
}

// ValidateCategory validates an assignable category
func (s *ValidationService) ValidateCategory(c valueobject.Category) error {
	if !c.IsValid() {
		return entity.ErrInvalidCategory
	}
	return nil
}

// ValidatePriority validates an assignable priority
func (s *ValidationService) ValidatePriority(p valueobject.Priority) error {
	if !p.IsValid() {
		return entity.ErrInvalidPriority
	}
	return nil
}

// ValidateDraft validates every user-supplied field of a new task
func (s *ValidationService) ValidateDraft(draft entity.TaskDraft, now time.Time) error {
	if err := s.ValidateTaskTitle(draft.Title); err != nil {
		return err
	}
	if draft.Category != "" {
		if err := s.ValidateCategory(draft.Category); err != nil {
			return err
		}
	}
	if draft.Priority != "" {
		if err := s.ValidatePriority(draft.Priority); err != nil {
			return err
		}
	}
	for _, st := range draft.SubTasks {
		if err := s.ValidateSubTaskTitle(st.Title); err != nil {
			return err
		}
	}
	return s.ValidateDueDate(draft.DueDate, now)
}

// ValidatePatch validates the fields a patch sets. Past due dates are
// accepted on update so existing overdue tasks stay editable.
func (s *ValidationService) ValidatePatch(patch entity.TaskPatch) error {
	if patch.Title != nil {
		if err := s.ValidateTaskTitle(*patch.Title); err != nil {
			return err
		}
	}
	if patch.Category != nil {
		if err := s.ValidateCategory(*patch.Category); err != nil {
			return err
		}
	}
	if patch.Priority != nil {
		if err := s.ValidatePriority(*patch.Priority); err != nil {
			return err
		}
	}
	// blank IDs are assigned by the store; the rest must not repeat
	seen := make(map[string]struct{}, len(patch.SubTasks))
	for _, st := range patch.SubTasks {
		if err := s.ValidateSubTaskTitle(st.Title); err != nil {
			return err
		}
		if st.ID == "" {
			continue
		}
		if _, dup := seen[st.ID]; dup {
			return entity.ErrDuplicateSubTaskID
		}
		seen[st.ID] = struct{}{}
	}
	return nil
}
