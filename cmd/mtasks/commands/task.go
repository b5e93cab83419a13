package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"mtasks/cmd/mtasks/output"
	"mtasks/internal/application/dto"
	"mtasks/internal/domain/entity"
	"mtasks/pkg/dateutil"
)

// taskCmd represents the task command
var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
	Long: `Manage your tasks - create, update, toggle, delete and query them.

Each task has a title, optional description, a category (Work, Personal,
Urgent), a priority (High, Medium, Low), an optional due date and a list of
subtasks. Task IDs can be given in full or as the short form printed by
'task list'.

Examples:
  # List all tasks
  mtasks task list

  # Create a new task
  mtasks task create --title "Quarterly report" --category work --priority high --due 2026-12-01

  # Mark a task done (or open again)
  mtasks task toggle 56789abc

  # Delete a task
  mtasks task delete 56789abc --force`,
}

// taskListCmd lists tasks
var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Long: `List tasks with optional filtering.

Tasks are shown open first, then by due date (tasks without one last), then
by priority and newest first.

Output formats:
  text - Human-readable list (default)
  json - JSON output for scripting
  yaml - YAML output
  id   - One task ID per line

Examples:
  # List everything
  mtasks task list

  # Search title and description
  mtasks task list --search groceries

  # High priority work that is still open
  mtasks task list --category work --priority high --pending

  # Toggle every pending urgent task
  mtasks task list --category urgent --pending -o id | xargs -n1 mtasks task toggle`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := getContext()
		defer cancel()

		category, _ := cmd.Flags().GetString("category")
		priority, _ := cmd.Flags().GetString("priority")
		search, _ := cmd.Flags().GetString("search")
		completedOnly, _ := cmd.Flags().GetBool("completed")
		pendingOnly, _ := cmd.Flags().GetBool("pending")

		req := dto.ListTasksRequest{Category: category, Priority: priority, Search: search}
		switch {
		case completedOnly && pendingOnly:
			return fmt.Errorf("--completed and --pending cannot be combined")
		case completedOnly:
			req.Completed = ptr(true)
		case pendingOnly:
			req.Completed = ptr(false)
		}

		tasks, err := container.ListTasksUseCase.Execute(ctx, req)
		if err != nil {
			return err
		}

		if formatter.IsStructured() || formatter.Format() == output.FormatID {
			return formatter.Print(tasks)
		}

		if len(tasks) == 0 {
			printer.Info("No tasks found")
			return nil
		}
		for _, task := range tasks {
			printer.Task(task)
		}
		printer.Subtle("\n%d task(s)", len(tasks))
		return nil
	},
}

// taskShowCmd shows one task in detail
var taskShowCmd = &cobra.Command{
	Use:     "show <task-id>",
	Aliases: []string{"get"},
	Short:   "Show task details",
	Long: `Show every field of a task, including its subtasks.

Examples:
  mtasks task show 56789abc
  mtasks task show 56789abc -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := getContext()
		defer cancel()

		args, err := resolveArgs(args, 1)
		if err != nil {
			return err
		}
		id, err := resolveTaskID(ctx, args[0])
		if err != nil {
			return err
		}

		task, err := container.GetTaskUseCase.Execute(ctx, id)
		if err != nil {
			return err
		}
		if formatter.IsStructured() {
			return formatter.Print(task)
		}

		printer.Header(task.Title)
		printer.Println("ID:          %s", task.ID)
		printer.Println("Category:    %s", task.Category)
		printer.Println("Priority:    %s", task.Priority)
		status := "open"
		if task.Completed {
			status = "done"
			if task.CompletedAt != nil {
				status += " (" + task.CompletedAt.Format("2006-01-02 15:04") + ")"
			}
		}
		printer.Println("Status:      %s", status)
		if task.DueDate != nil {
			due := task.DueDate.Format(dateutil.DayLayout)
			if task.IsOverdue {
				due += " (overdue)"
			}
			printer.Println("Due:         %s", due)
		}
		printer.Println("Created:     %s", task.CreatedAt.Format("2006-01-02 15:04"))
		printer.Println("Updated:     %s", task.UpdatedAt.Format("2006-01-02 15:04"))

		if task.Description != "" {
			printer.Println("")
			printer.Bold("Description:")
			printer.Println("%s", task.Description)
		}
		if len(task.SubTasks) > 0 {
			printer.Println("")
			printer.Bold("Subtasks:")
			for _, st := range task.SubTasks {
				check := "[ ]"
				if st.Completed {
					check = "[x]"
				}
				printer.Println("  %s %s  %s", check, st.Title, output.ShortID(st.ID))
			}
		}
		return nil
	},
}

// taskCreateCmd creates a task
var taskCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new task",
	Long: `Create a new task.

Without --title (or with --edit) your $EDITOR opens on a task template. The
YAML header holds category, priority and due date, the first '# ' heading is
the title and the rest is the description.

Examples:
  # Create with flags
  mtasks task create --title "Buy groceries"
  mtasks task create --title "Report" --category work --priority high --due tomorrow

  # With subtasks
  mtasks task create --title "Move house" --subtask "Pack books" --subtask "Book van"

  # Write it in the editor
  mtasks task create`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := getContext()
		defer cancel()

		title, _ := cmd.Flags().GetString("title")
		description, _ := cmd.Flags().GetString("description")
		category, _ := cmd.Flags().GetString("category")
		priority, _ := cmd.Flags().GetString("priority")
		dueStr, _ := cmd.Flags().GetString("due")
		subTasks, _ := cmd.Flags().GetStringArray("subtask")
		useEditor, _ := cmd.Flags().GetBool("edit")

		if title == "" || useEditor {
			draft, err := editTaskDraft(taskTemplate{
				Title:       title,
				Description: description,
				Category:    category,
				Priority:    priority,
				Due:         dueStr,
			})
			if err != nil {
				return err
			}
			title, description = draft.Title, draft.Description
			category, priority, dueStr = draft.Category, draft.Priority, draft.Due
		}

		due, err := parseDue(dueStr)
		if err != nil {
			return err
		}

		task, err := container.CreateTaskUseCase.Execute(ctx, dto.CreateTaskRequest{
			Title:       title,
			Description: description,
			Category:    category,
			Priority:    priority,
			DueDate:     due,
			SubTasks:    subTasks,
		})
		if err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}

		if formatter.IsStructured() || formatter.Format() == output.FormatID {
			return formatter.Print(task)
		}
		printer.Success("Created task: %s - %s", output.ShortID(task.ID), task.Title)
		printer.Info("Category: %s, Priority: %s", task.Category, task.Priority)
		if task.DueDate != nil {
			printer.Info("Due: %s", task.DueDate.Format(dateutil.DayLayout))
		}
		return nil
	},
}

// taskUpdateCmd updates a task
var taskUpdateCmd = &cobra.Command{
	Use:   "update <task-id>",
	Short: "Update a task",
	Long: `Update fields of a task. Only the given flags change.

Past due dates are accepted here so overdue tasks stay editable.

Examples:
  mtasks task update 56789abc --title "Quarterly report v2"
  mtasks task update 56789abc --priority low --due 2026-12-24
  mtasks task update 56789abc --clear-due
  mtasks task update 56789abc --edit
  mtasks task update 56789abc --description ""`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := getContext()
		defer cancel()

		args, err := resolveArgs(args, 1)
		if err != nil {
			return err
		}
		id, err := resolveTaskID(ctx, args[0])
		if err != nil {
			return err
		}

		if edit, _ := cmd.Flags().GetBool("edit"); edit {
			return editTask(ctx, id)
		}

		var req dto.UpdateTaskRequest
		flags := cmd.Flags()
		if flags.Changed("title") {
			v, _ := flags.GetString("title")
			req.Title = &v
		}
		if flags.Changed("description") {
			v, _ := flags.GetString("description")
			req.Description = &v
		}
		if flags.Changed("category") {
			v, _ := flags.GetString("category")
			req.Category = &v
		}
		if flags.Changed("priority") {
			v, _ := flags.GetString("priority")
			req.Priority = &v
		}
		if flags.Changed("due") {
			v, _ := flags.GetString("due")
			due, err := parseDue(v)
			if err != nil {
				return err
			}
			req.DueDate = due
		}
		req.ClearDueDate, _ = flags.GetBool("clear-due")
		if req.ClearDueDate && req.DueDate != nil {
			return fmt.Errorf("--due and --clear-due cannot be combined")
		}

		if err := container.UpdateTaskUseCase.Execute(ctx, id, req); err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		printer.Success("Updated task %s", output.ShortID(id))
		return nil
	},
}

// editTask opens the task in $EDITOR and applies whatever changed
func editTask(ctx context.Context, id string) error {
	current, err := container.GetTaskUseCase.Execute(ctx, id)
	if err != nil {
		return err
	}

	before := templateFromTask(current)
	after, err := editTaskDraft(before)
	if err != nil {
		return err
	}
	req, err := updateFromTemplates(before, after)
	if err != nil {
		return err
	}
	if isEmptyUpdate(req) {
		printer.Info("No changes")
		return nil
	}

	if err := container.UpdateTaskUseCase.Execute(ctx, id, req); err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	printer.Success("Updated task %s", output.ShortID(id))
	return nil
}

// taskToggleCmd toggles completion
var taskToggleCmd = &cobra.Command{
	Use:     "toggle <task-id>",
	Aliases: []string{"done"},
	Short:   "Toggle a task between open and done",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := getContext()
		defer cancel()

		args, err := resolveArgs(args, 1)
		if err != nil {
			return err
		}
		id, err := resolveTaskID(ctx, args[0])
		if err != nil {
			return err
		}

		task, err := container.ToggleTaskUseCase.Execute(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to toggle task: %w", err)
		}
		if formatter.IsStructured() {
			return formatter.Print(task)
		}
		if task.Completed {
			printer.Success("Completed %s - %s", output.ShortID(task.ID), task.Title)
		} else {
			printer.Success("Reopened %s - %s", output.ShortID(task.ID), task.Title)
		}
		return nil
	},
}

// taskDeleteCmd deletes a task
var taskDeleteCmd = &cobra.Command{
	Use:   "delete <task-id>",
	Short: "Delete a task",
	Long: `Delete a task permanently.

Examples:
  # Delete with confirmation
  mtasks task delete 56789abc

  # Delete without confirmation
  mtasks task delete 56789abc --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := getContext()
		defer cancel()

		args, err := resolveArgs(args, 1)
		if err != nil {
			return err
		}
		id, err := resolveTaskID(ctx, args[0])
		if err != nil {
			return err
		}

		force, _ := cmd.Flags().GetBool("force")
		if !force {
			task, err := container.GetTaskUseCase.Execute(ctx, id)
			if err != nil {
				return err
			}
			printer.Warning("About to delete task: %s - %s", output.ShortID(task.ID), task.Title)
			printer.Warning("This action cannot be undone!")
			if !confirm("\nType 'yes' to confirm: ") {
				printer.Info("Deletion cancelled")
				return nil
			}
		}

		if err := container.DeleteTaskUseCase.Execute(ctx, id); err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
		printer.Success("Deleted task %s", output.ShortID(id))
		return nil
	},
}

// taskSubTaskCmd groups subtask commands
var taskSubTaskCmd = &cobra.Command{
	Use:   "subtask",
	Short: "Manage subtasks",
}

var taskSubTaskAddCmd = &cobra.Command{
	Use:   "add <task-id> <title>",
	Short: "Add a subtask",
	Long: `Append an open subtask to a task.

Examples:
  mtasks task subtask add 56789abc "Pack books"`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := getContext()
		defer cancel()

		id, err := resolveTaskID(ctx, args[0])
		if err != nil {
			return err
		}
		title := strings.Join(args[1:], " ")

		sub, err := container.AddSubTaskUseCase.Execute(ctx, id, title)
		if err != nil {
			return fmt.Errorf("failed to add subtask: %w", err)
		}
		if formatter.IsStructured() {
			return formatter.Print(sub)
		}
		printer.Success("Added subtask %s - %s", output.ShortID(sub.ID), sub.Title)
		return nil
	},
}

var taskSubTaskToggleCmd = &cobra.Command{
	Use:   "toggle <task-id> <subtask-id>",
	Short: "Toggle a subtask",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := getContext()
		defer cancel()

		id, err := resolveTaskID(ctx, args[0])
		if err != nil {
			return err
		}
		subID, err := resolveSubTaskID(ctx, id, args[1])
		if err != nil {
			return err
		}

		if err := container.ToggleSubTaskUseCase.Execute(ctx, id, subID); err != nil {
			return fmt.Errorf("failed to toggle subtask: %w", err)
		}
		printer.Success("Toggled subtask %s", output.ShortID(subID))
		return nil
	},
}

// resolveSubTaskID accepts a full subtask ID or a unique suffix of one
func resolveSubTaskID(ctx context.Context, taskID, arg string) (string, error) {
	task, err := container.TaskStore.Get(ctx, taskID)
	if err != nil {
		return "", err
	}
	var matches []string
	for _, st := range task.SubTasks() {
		if st.ID == arg {
			return st.ID, nil
		}
		if strings.HasSuffix(st.ID, arg) {
			matches = append(matches, st.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("subtask %s: %w", arg, entity.ErrSubTaskNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("subtask ID %q is ambiguous (%d matches)", arg, len(matches))
	}
}

func ptr[T any](v T) *T {
	return &v
}

// parseDue parses a --due value. Empty means no due date.
func parseDue(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	due, err := dateutil.ParseDay(s, time.Now(), time.Local)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidDate, err)
	}
	return &due, nil
}

func init() {
	rootCmd.AddCommand(taskCmd)

	// Add subcommands
	taskCmd.AddCommand(taskListCmd)
	taskCmd.AddCommand(taskShowCmd)
	taskCmd.AddCommand(taskCreateCmd)
	taskCmd.AddCommand(taskUpdateCmd)
	taskCmd.AddCommand(taskToggleCmd)
	taskCmd.AddCommand(taskDeleteCmd)
	taskCmd.AddCommand(taskSubTaskCmd)
	taskSubTaskCmd.AddCommand(taskSubTaskAddCmd)
	taskSubTaskCmd.AddCommand(taskSubTaskToggleCmd)

	// taskListCmd flags
	taskListCmd.Flags().String("category", "", "Filter by category (work, personal, urgent, all)")
	taskListCmd.Flags().String("priority", "", "Filter by priority (high, medium, low, all)")
	taskListCmd.Flags().StringP("search", "s", "", "Case-insensitive search in title and description")
	taskListCmd.Flags().Bool("completed", false, "Show only completed tasks")
	taskListCmd.Flags().Bool("pending", false, "Show only open tasks")

	// taskCreateCmd flags
	taskCreateCmd.Flags().StringP("title", "t", "", "Task title (opens editor if omitted)")
	taskCreateCmd.Flags().StringP("description", "d", "", "Task description")
	taskCreateCmd.Flags().String("category", "", "Category: work, personal, urgent (default personal)")
	taskCreateCmd.Flags().StringP("priority", "p", "", "Priority: high, medium, low (default medium)")
	taskCreateCmd.Flags().String("due", "", "Due date (YYYY-MM-DD, today or tomorrow)")
	taskCreateCmd.Flags().StringArray("subtask", nil, "Subtask title (repeatable)")
	taskCreateCmd.Flags().BoolP("edit", "e", false, "Open editor")

	// taskUpdateCmd flags
	taskUpdateCmd.Flags().StringP("title", "t", "", "New title")
	taskUpdateCmd.Flags().StringP("description", "d", "", "New description (empty removes it)")
	taskUpdateCmd.Flags().String("category", "", "Category: work, personal, urgent")
	taskUpdateCmd.Flags().StringP("priority", "p", "", "Priority: high, medium, low")
	taskUpdateCmd.Flags().String("due", "", "Due date (YYYY-MM-DD, today or tomorrow)")
	taskUpdateCmd.Flags().Bool("clear-due", false, "Remove the due date")
	taskUpdateCmd.Flags().BoolP("edit", "e", false, "Edit the task in $EDITOR")

	// taskDeleteCmd flags
	taskDeleteCmd.Flags().BoolP("force", "f", false, "Delete without confirmation")
}
