package cli

import (
	"context"

	"github.com/agrilink-hq/agrilink-client/pkg/config"
	"github.com/agrilink-hq/agrilink-client/pkg/logger"
	"github.com/spf13/cobra"
)

// NewRootCommand creates the root command for the AgriLink CLI.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "agrilink",
		Short:         "AgriLink - farm-to-table marketplace client",
		Long:          "Browse listings, manage your cart and wishlist as a guest, and carry everything into your account when you log in.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.AddCommand(newBrowseCommand())
	cmd.AddCommand(newListingCommand())
	cmd.AddCommand(newCartCommand())
	cmd.AddCommand(newWishlistCommand())
	cmd.AddCommand(newLoginCommand())
	cmd.AddCommand(newLogoutCommand())
	cmd.AddCommand(newRegisterCommand())
	cmd.AddCommand(newOrdersCommand())
	cmd.AddCommand(newInboxCommand())
	cmd.AddCommand(newFarmCommand())

	return cmd
}

func newAppFromEnv(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New(logger.Options{
		ServiceName: "agrilink",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	return NewApp(ctx, cfg, log)
}

// withApp wires an App for the duration of one command run.
func withApp(run func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		app, err := newAppFromEnv(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = app.Close() }()
		return run(ctx, app, cmd, args)
	}
}
