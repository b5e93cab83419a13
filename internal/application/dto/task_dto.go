package dto

import "time"

// TaskDTO represents a task data transfer object
type TaskDTO struct {
	ID            string       `json:"id" yaml:"id"`
	Title         string       `json:"title" yaml:"title"`
	Description   string       `json:"description,omitempty" yaml:"description,omitempty"`
	Category      string       `json:"category" yaml:"category"`
	Priority      string       `json:"priority" yaml:"priority"`
	PriorityColor string       `json:"priority_color" yaml:"priority_color"`
	DueDate       *time.Time   `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	Completed     bool         `json:"completed" yaml:"completed"`
	CompletedAt   *time.Time   `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	IsOverdue     bool         `json:"is_overdue" yaml:"is_overdue"`
	CreatedAt     time.Time    `json:"created_at" yaml:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" yaml:"updated_at"`
	SubTasks      []SubTaskDTO `json:"subtasks,omitempty" yaml:"subtasks,omitempty"`
}

// SubTaskDTO represents a subtask data transfer object
type SubTaskDTO struct {
	ID        string `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	Completed bool   `json:"completed" yaml:"completed"`
}

// StatisticsDTO represents aggregate task counts
type StatisticsDTO struct {
	Total                int            `json:"total" yaml:"total"`
	Completed            int            `json:"completed" yaml:"completed"`
	Pending              int            `json:"pending" yaml:"pending"`
	CompletionRate       float64        `json:"completion_rate" yaml:"completion_rate"`
	OverdueCount         int            `json:"overdue_count" yaml:"overdue_count"`
	PriorityDistribution map[string]int `json:"priority_distribution" yaml:"priority_distribution"`
	CategoryDistribution map[string]int `json:"category_distribution" yaml:"category_distribution"`
}

// ListTasksRequest narrows and orders a task listing. Empty fields do not
// constrain the result.
type ListTasksRequest struct {
	Category  string `json:"category,omitempty"`
	Priority  string `json:"priority,omitempty"`
	Search    string `json:"search,omitempty"`
	Completed *bool  `json:"completed,omitempty"`
}

// CreateTaskRequest represents a request to create a task
type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	SubTasks    []string   `json:"subtasks,omitempty"`
}

// UpdateTaskRequest represents a request to update a task
type UpdateTaskRequest struct {
	Title        *string    `json:"title,omitempty"`
	Description  *string    `json:"description,omitempty"`
	Category     *string    `json:"category,omitempty"`
	Priority     *string    `json:"priority,omitempty"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	ClearDueDate bool       `json:"clear_due_date,omitempty"`
	Completed    *bool      `json:"completed,omitempty"`
}
