package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"mtasks/cmd/mtasks/output"
	"mtasks/internal/infrastructure/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage mtasks configuration settings.

Configuration is stored in YAML format at:
  ~/.config/mtasks/config.yml

Values from a .env file in the working directory and MTASKS_* environment
variables override the file (for example MTASKS_STORAGE_BACKEND=sqlite).

Examples:
  # Show current configuration
  mtasks config show

  # Edit config in editor
  mtasks config edit

  # Show config file location
  mtasks config path

  # Reset config to defaults
  mtasks config reset`,
}

// configShowCmd shows the current configuration
var configShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Show current configuration",
	Annotations: map[string]string{skipContainer: ""},
	Long: `Show the effective configuration, environment overrides included.

Examples:
  # Show in YAML format (default)
  mtasks config show

  # Show in JSON format
  mtasks config show --output json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		loader, err := newConfigLoader()
		if err != nil {
			return err
		}
		loaded, err := loader.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		loaded.Identity.TokenSecret = "<redacted>"
		if loaded.Mail.Password != "" {
			loaded.Mail.Password = "<redacted>"
		}
		if loaded.Storage.Redis.Password != "" {
			loaded.Storage.Redis.Password = "<redacted>"
		}

		if formatter.Format() == output.FormatJSON {
			return formatter.Print(loaded)
		}
		return output.NewFormatter(output.FormatYAML, os.Stdout).Print(loaded)
	},
}

// configEditCmd opens the config file in an editor
var configEditCmd = &cobra.Command{
	Use:         "edit",
	Short:       "Edit config in editor",
	Annotations: map[string]string{skipContainer: ""},
	Long: `Open the configuration file in your default editor.

The editor is determined by the EDITOR environment variable (default: vi).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		loader, err := newConfigLoader()
		if err != nil {
			return err
		}
		if _, err := loader.Load(); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		editor := os.Getenv("EDITOR")
		if editor == "" {
			editor = "vi"
		}
		printer.Info("Opening config file: %s", loader.GetConfigPath())

		editorCmd := buildEditorCommand(editor, loader.GetConfigPath(), 0)
		cleanup, err := attachEditorIO(editorCmd)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := editorCmd.Run(); err != nil {
			return fmt.Errorf("failed to run editor: %w", err)
		}
		printer.Success("Config file edited")
		return nil
	},
}

// configPathCmd shows the config file path
var configPathCmd = &cobra.Command{
	Use:         "path",
	Short:       "Show config file location",
	Annotations: map[string]string{skipContainer: ""},
	RunE: func(cmd *cobra.Command, args []string) error {
		loader, err := newConfigLoader()
		if err != nil {
			return err
		}
		fmt.Println(loader.GetConfigPath())
		return nil
	},
}

// configResetCmd resets the config to defaults
var configResetCmd = &cobra.Command{
	Use:         "reset",
	Short:       "Reset config to defaults",
	Annotations: map[string]string{skipContainer: ""},
	Long: `Reset the configuration to default values.

WARNING: This will overwrite your current configuration, including the
token secret, which signs you out.

Examples:
  # Reset config (with confirmation)
  mtasks config reset

  # Reset without confirmation
  mtasks config reset --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		loader, err := newConfigLoader()
		if err != nil {
			return err
		}

		if !force {
			printer.Warning("About to reset configuration to defaults")
			printer.Warning("Current config: %s", loader.GetConfigPath())
			printer.Warning("This action cannot be undone!")
			if !confirm("\nType 'yes' to confirm: ") {
				printer.Info("Reset cancelled")
				return nil
			}
		}

		if _, err := loader.Reset(); err != nil {
			return fmt.Errorf("failed to reset config: %w", err)
		}
		printer.Success("Config reset: %s", loader.GetConfigPath())
		return nil
	},
}

func newConfigLoader() (*config.Loader, error) {
	if configPath != "" {
		return config.NewLoaderFrom(configPath)
	}
	return config.NewLoader()
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configResetCmd)

	configResetCmd.Flags().Bool("force", false, "Reset without confirmation")
}
