package commands

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"mtasks/internal/domain/entity"
)

// passwordEnv lets scripts pass a password without a prompt
const passwordEnv = "MTASKS_PASSWORD"

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage your account and session",
	Long: `Register, sign in and out, and reset your password.

Tasks are stored per account; every task command works on the signed-in
account's tasks.

Examples:
  mtasks auth register --email me@example.com
  mtasks auth login --email me@example.com
  mtasks auth whoami
  mtasks auth forgot-password --email me@example.com
  mtasks auth reset-password --token <token>`,
}

var authRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := getContext()
		defer cancel()

		email, err := emailFlag(cmd)
		if err != nil {
			return err
		}
		password, err := readPassword("Password:")
		if err != nil {
			return err
		}

		user, err := container.Identity.Register(ctx, email, password)
		if err != nil {
			return err
		}
		printer.Success("Registered and signed in as %s", user.Email)
		return nil
	},
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := getContext()
		defer cancel()

		email, err := emailFlag(cmd)
		if err != nil {
			return err
		}
		password, err := readPassword("Password:")
		if err != nil {
			return err
		}

		user, err := container.Identity.Login(ctx, email, password)
		if err != nil {
			return err
		}
		printer.Success("Signed in as %s", user.Email)
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := getContext()
		defer cancel()

		if err := container.Identity.Logout(ctx); err != nil {
			return err
		}
		printer.Success("Signed out")
		return nil
	},
}

var authWhoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := getContext()
		defer cancel()

		user, err := container.Identity.CurrentUser(ctx)
		if errors.Is(err, entity.ErrNotAuthenticated) {
			printer.Info("Not signed in")
			return nil
		}
		if err != nil {
			return err
		}

		if formatter.IsStructured() {
			return formatter.Print(map[string]any{
				"id":         user.ID,
				"email":      user.Email,
				"created_at": user.CreatedAt,
			})
		}
		printer.Println("%s", user.Email)
		printer.Subtle("id: %s", user.ID)
		return nil
	},
}

var authForgotPasswordCmd = &cobra.Command{
	Use:   "forgot-password",
	Short: "Email a password reset token",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := getContext()
		defer cancel()

		email, err := emailFlag(cmd)
		if err != nil {
			return err
		}
		if err := container.Identity.SendPasswordReset(ctx, email); err != nil {
			return err
		}
		printer.Success("Password reset sent to %s", email)
		if cfg.Mail.Host == "" {
			printer.Info("No mail server is configured; the message was written to the log")
		}
		return nil
	},
}

var authResetPasswordCmd = &cobra.Command{
	Use:   "reset-password",
	Short: "Choose a new password with a reset token",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := getContext()
		defer cancel()

		token, _ := cmd.Flags().GetString("token")
		if token == "" {
			var err error
			if token, err = prompt("Reset token:", false); err != nil {
				return err
			}
		}
		password, err := readPassword("New password:")
		if err != nil {
			return err
		}

		if err := container.Identity.ResetPassword(ctx, token, password); err != nil {
			return err
		}
		printer.Success("Password changed. Sign in with: mtasks auth login")
		return nil
	},
}

func emailFlag(cmd *cobra.Command) (string, error) {
	email, _ := cmd.Flags().GetString("email")
	if email != "" {
		return email, nil
	}
	return prompt("Email:", false)
}

func readPassword(label string) (string, error) {
	if password, ok := os.LookupEnv(passwordEnv); ok {
		return password, nil
	}
	return prompt(label, true)
}

func init() {
	rootCmd.AddCommand(authCmd)

	authCmd.AddCommand(authRegisterCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authWhoamiCmd)
	authCmd.AddCommand(authForgotPasswordCmd)
	authCmd.AddCommand(authResetPasswordCmd)

	for _, c := range []*cobra.Command{authRegisterCmd, authLoginCmd, authForgotPasswordCmd} {
		c.Flags().String("email", "", "Account email address")
	}
	authResetPasswordCmd.Flags().String("token", "", "Reset token from the email")
}
