package entity

import "errors"

var (
	// Task errors
	ErrTaskNotFound      = errors.New("task not found")
	ErrEmptyTaskTitle    = errors.New("task title cannot be empty")
	ErrInvalidTaskID     = errors.New("invalid task ID")
	ErrTaskIDAssigned    = errors.New("task ID already assigned")
	ErrTaskOwnerMismatch = errors.New("task belongs to another user")
	ErrMissingTaskOwner  = errors.New("task owner is required")

	// Subtask errors
	ErrSubTaskNotFound    = errors.New("subtask not found")
	ErrEmptySubTaskTitle  = errors.New("subtask title cannot be empty")
	ErrDuplicateSubTaskID = errors.New("duplicate subtask ID")
	ErrInvalidSubTaskID   = errors.New("invalid subtask ID")

	// Validation errors
	ErrInvalidPriority = errors.New("invalid priority value")
	ErrInvalidCategory = errors.New("invalid category value")
	ErrInvalidDate     = errors.New("invalid date")
	ErrRequiredField   = errors.New("required field is missing")
	ErrDueDateInPast   = errors.New("due date cannot be in the past")

	// Identity errors
	ErrNotAuthenticated   = errors.New("user not authenticated")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserAlreadyExists  = errors.New("an account with this email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrInvalidResetToken  = errors.New("invalid or expired password reset token")
)
