package commands

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"mtasks/tui"
	"mtasks/tui/style"
)

// tuiCmd represents the tui command
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal user interface",
	Long: `Launch the interactive TUI (Terminal User Interface) for your tasks.

The list updates live as tasks change, including changes made from other
terminals sharing the same store.

Keyboard shortcuts (configurable under keybindings):
  ↑/k        - Move to task above
  ↓/j        - Move to task below
  space/x    - Toggle completion
  d          - Delete selected task (press twice)
  /          - Search titles and descriptions
  c          - Cycle category filter
  p          - Cycle priority filter
  f          - Cycle all / pending / done
  esc        - Clear search
  q/Ctrl+C   - Quit application

Examples:
  # Launch TUI
  mtasks tui

  # Launch TUI (shorthand - default command)
  mtasks`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := getContext()
		defer cancel()

		if _, err := container.Identity.CurrentUser(ctx); err != nil {
			return err
		}

		// Initialize styles and keybindings from config
		style.InitStyles(cfg)
		tui.InitKeybindings(cfg)

		sub, err := container.TaskStore.Subscribe(ctx)
		if err != nil {
			return fmt.Errorf("failed to subscribe to tasks: %w", err)
		}
		defer sub.Close()

		m := tui.NewModel(ctx, container, sub.Updates())

		p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
		if _, err := p.Run(); err != nil && ctx.Err() == nil {
			return fmt.Errorf("error running TUI: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
