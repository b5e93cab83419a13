package commands

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"mtasks/cmd/mtasks/output"
	"mtasks/internal/di"
	"mtasks/internal/domain/entity"
	"mtasks/internal/infrastructure/config"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"

	// Global flags
	outputFormat string
	configPath   string
	quiet        bool

	// Shared instances
	cfg       *config.Config
	container *di.Container
	cleanup   = func() {}
	printer   *output.Printer
	formatter *output.Formatter
)

// skipContainer marks commands that run without loading config or storage
const skipContainer = "skip-container"

var multiSpaceRE = regexp.MustCompile(`\s{2,}`)
var taskIDLikeRE = regexp.MustCompile(`^[0-9a-fA-F-]{8,}$`)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mtasks",
	Short: "Personal task manager with live sync",
	Long: `mtasks is a personal task manager for the terminal.

Features:
  - Tasks with categories, priorities, due dates and subtasks
  - Filtering, search and completion statistics
  - Live updates from the configured store (files, SQLite, Redis or the daemon)
  - Interactive TUI and comprehensive CLI

Examples:
  # Launch interactive TUI
  mtasks
  mtasks tui

  # Sign in
  mtasks auth login --email me@example.com

  # Create a new task
  mtasks task create --title "Buy groceries" --category personal --due tomorrow

  # List pending work tasks
  mtasks task list --category work --pending

  # Toggle a task
  mtasks task toggle 56789abc`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		format, err := output.ParseFormat(outputFormat)
		if err != nil {
			return err
		}
		formatter = output.NewFormatter(format, os.Stdout)
		printer = output.DefaultPrinter()
		printer.SetQuiet(quiet)

		if _, ok := cmd.Annotations[skipContainer]; ok {
			return nil
		}

		container, cleanup, err = di.InitializeContainer(di.ConfigPath(configPath))
		if err != nil {
			return fmt.Errorf("failed to initialize: %w", err)
		}
		cfg = container.Config
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		cleanup()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		cleanup()
		output.ErrorPrinter().Error("%v", friendlyError(err))
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "Output format: text, json, yaml, id")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")

	// Version flag
	rootCmd.Flags().BoolP("version", "v", false, "Show version information")

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		showVersion, _ := cmd.Flags().GetBool("version")
		if showVersion {
			printVersion()
			return nil
		}
		if len(args) > 0 {
			return cmd.Help()
		}
		return tuiCmd.RunE(cmd, args)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("mtasks version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Built:      %s\n", BuildDate)
}

// getContext returns a context cancelled by SIGINT or SIGTERM
func getContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// friendlyError adds a hint to errors a user can act on
func friendlyError(err error) error {
	switch {
	case errors.Is(err, entity.ErrNotAuthenticated):
		return fmt.Errorf("%w (sign in with: mtasks auth login)", err)
	case errors.Is(err, entity.ErrTaskNotFound):
		return fmt.Errorf("%w (list tasks with: mtasks task list)", err)
	default:
		return err
	}
}

// resolveTaskID accepts a full task ID or a unique suffix of one, as printed
// by task list
func resolveTaskID(ctx context.Context, arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", fmt.Errorf("task ID is required")
	}

	if _, err := container.TaskStore.Get(ctx, arg); err == nil {
		return arg, nil
	} else if !errors.Is(err, entity.ErrTaskNotFound) {
		return "", err
	}

	tasks, err := container.TaskStore.Load(ctx)
	if err != nil {
		return "", err
	}
	var matches []string
	for _, task := range tasks {
		if strings.HasSuffix(task.ID(), arg) {
			matches = append(matches, task.ID())
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("task %s: %w", arg, entity.ErrTaskNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("task ID %q is ambiguous (%d matches)", arg, len(matches))
	}
}

func resolveArgs(args []string, expected int) ([]string, error) {
	if len(args) >= expected {
		return args, nil
	}

	pipedArgs, err := readPipedArgs(expected)
	if err != nil {
		return nil, err
	}

	needed := expected - len(args)
	available := len(args) + len(pipedArgs)
	if len(pipedArgs) < needed {
		return nil, fmt.Errorf("accepts %d arg(s), received %d", expected, available)
	}

	resolved := append([]string{}, pipedArgs[:needed]...)
	resolved = append(resolved, args...)
	return resolved, nil
}

func readPipedArgs(expected int) ([]string, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return nil, err
	}
	if (stat.Mode() & os.ModeCharDevice) != 0 {
		return nil, nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, err
	}

	return extractArgsFromInput(data, expected), nil
}

// extractArgsFromInput picks the most structured line of piped input and
// splits it into arguments
func extractArgsFromInput(data []byte, expected int) []string {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	bestScore := -1
	var best []string

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tokens, score := parsePipedLine(line, expected)
		if len(tokens) < expected {
			continue
		}

		if score > bestScore {
			bestScore = score
			best = tokens
		}
	}

	if len(best) == 0 {
		return nil
	}
	return best
}

func parsePipedLine(line string, expected int) ([]string, int) {
	if strings.Contains(line, "\t") {
		return splitFields(line, func(r rune) bool { return r == '\t' }), 3
	}
	if multiSpaceRE.MatchString(line) {
		return multiSpaceRE.Split(line, -1), 2
	}

	fields := strings.Fields(line)
	if expected == 1 && len(fields) > 1 {
		if taskIDLikeRE.MatchString(fields[0]) {
			return []string{fields[0]}, 2
		}
		return []string{line}, 1
	}

	return fields, 1
}

func splitFields(input string, split func(rune) bool) []string {
	fields := strings.FieldsFunc(input, split)
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		if field == "" {
			continue
		}
		out = append(out, field)
	}
	return out
}
