package commands

import (
	"time"

	"github.com/spf13/cobra"
	"mtasks/internal/application/adapter"
	"mtasks/internal/application/dto"
	"mtasks/internal/domain/service"
	"mtasks/internal/domain/valueobject"
)

// watchCmd prints every snapshot pushed by the store
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow task changes live",
	Long: `Print the task list every time the store pushes a change, until
interrupted. Changes made from another terminal, the TUI or another machine
sharing the same store show up here.

Examples:
  mtasks watch
  mtasks watch --pending
  mtasks watch -o json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := getContext()
		defer cancel()

		pendingOnly, _ := cmd.Flags().GetBool("pending")
		filter := valueobject.TaskFilter{}
		if pendingOnly {
			filter = filter.WithCompleted(false)
		}

		sub, err := container.TaskStore.Subscribe(ctx)
		if err != nil {
			return err
		}
		defer sub.Close()

		for {
			select {
			case <-ctx.Done():
				return nil
			case state, ok := <-sub.Updates():
				if !ok {
					return nil
				}
				if err := printState(state, filter); err != nil {
					return err
				}
			}
		}
	},
}

func printState(state adapter.State, filter valueobject.TaskFilter) error {
	if state.Loading {
		return nil
	}

	tasks := service.SortTasks(service.FilterTasks(state.Tasks, filter))
	dtos := dto.TasksToDTOs(tasks, container.Palette, time.Now())

	if formatter.IsStructured() {
		type snapshot struct {
			At    time.Time     `json:"at" yaml:"at"`
			Error string        `json:"error,omitempty" yaml:"error,omitempty"`
			Tasks []dto.TaskDTO `json:"tasks" yaml:"tasks"`
		}
		snap := snapshot{At: state.At, Tasks: dtos}
		if state.Err != nil {
			snap.Error = state.Err.Error()
		}
		return formatter.Print(snap)
	}

	printer.Header("%s", state.At.Format("15:04:05"))
	switch {
	case state.Err != nil:
		printer.Warning("sync error: %v", state.Err)
	case !state.SignedIn():
		printer.Warning("signed out")
		return nil
	}
	if len(dtos) == 0 {
		printer.Info("No tasks")
	}
	for _, task := range dtos {
		printer.Task(task)
	}
	printer.Println("")
	return nil
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().Bool("pending", false, "Show only open tasks")
}
