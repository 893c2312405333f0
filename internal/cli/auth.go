package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/agrilink-hq/agrilink-client/internal/auth"
	"github.com/spf13/cobra"
)

func newLoginCommand() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and carry over any guest cart and wishlist",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, app *App, cmd *cobra.Command, _ []string) error {
			if email == "" {
				email = prompt(cmd, "email: ")
			}
			if password == "" {
				password = prompt(cmd, "password: ")
			}

			current, report, err := app.Auth.Login(ctx, auth.LoginInput{Email: email, Password: password})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s\n", current.Email)
			if report.Attempted() {
				fmt.Fprintf(cmd.OutOrStdout(), "carried over %d cart item(s) and %d wishlist listing(s)\n",
					report.CartMigrated, report.WishlistMigrated)
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	return cmd
}

func newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out of the current session",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, app *App, cmd *cobra.Command, _ []string) error {
			if !app.Authenticated() {
				fmt.Fprintln(cmd.OutOrStdout(), "not signed in")
				return nil
			}
			if err := app.Auth.Logout(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		}),
	}
}

func newRegisterCommand() *cobra.Command {
	var input auth.RegisterInput

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, app *App, cmd *cobra.Command, _ []string) error {
			user, err := app.Auth.Register(ctx, input)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "account created for %s, run `agrilink login` to sign in\n", user.Email)
			return nil
		}),
	}

	cmd.Flags().StringVar(&input.Name, "name", "", "display name")
	cmd.Flags().StringVar(&input.Email, "email", "", "account email")
	cmd.Flags().StringVar(&input.Password, "password", "", "account password")
	cmd.Flags().StringVar(&input.Role, "role", "BUYER", "account role (BUYER or FARMER)")
	return cmd
}

func prompt(cmd *cobra.Command, label string) string {
	fmt.Fprint(cmd.OutOrStdout(), label)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}
