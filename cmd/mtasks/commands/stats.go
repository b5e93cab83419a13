package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"mtasks/internal/domain/valueobject"
)

// statsCmd prints completion statistics
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show task statistics",
	Long: `Show totals, completion rate, overdue count and the distribution of
tasks over priorities and categories.

Examples:
  mtasks stats
  mtasks stats -o json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := getContext()
		defer cancel()

		stats, err := container.GetStatisticsUseCase.Execute(ctx)
		if err != nil {
			return err
		}
		if formatter.IsStructured() {
			return formatter.Print(stats)
		}

		printer.Header("Statistics")
		printer.Println("Total:       %d", stats.Total)
		printer.Println("Completed:   %d", stats.Completed)
		printer.Println("Pending:     %d", stats.Pending)
		printer.Println("Completion:  %.0f%%", stats.CompletionRate*100)
		printer.Println("Overdue:     %d", stats.OverdueCount)

		var rows [][]string
		for _, p := range valueobject.Priorities {
			rows = append(rows, []string{"priority", p.String(), fmt.Sprint(stats.PriorityDistribution[p.Key()])})
		}
		for _, c := range valueobject.Categories {
			rows = append(rows, []string{"category", c.String(), fmt.Sprint(stats.CategoryDistribution[c.Key()])})
		}
		printer.Println("")
		printer.Table([]string{"DIMENSION", "VALUE", "TASKS"}, rows)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
