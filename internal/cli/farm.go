package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newFarmCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "farm",
		Short: "Farm profiles and advisories",
	}
	cmd.AddCommand(newFarmProfileCommand())
	cmd.AddCommand(newFarmWeatherCommand())
	return cmd
}

func newFarmProfileCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "profile <farmer-id>",
		Short: "Show a farm's public profile",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
			profile, err := app.Farm.Profile(ctx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s", profile.FarmName)
			if profile.Verified {
				fmt.Fprint(out, " (verified)")
			}
			fmt.Fprintf(out, "\nrun by %s, %s\n", profile.OwnerName, profile.Location)
			fmt.Fprintf(out, "%d listings, rated %.1f, member since %s\n",
				profile.ListingCount, profile.AverageRating, profile.MemberSince.Format("January 2006"))
			if profile.Bio != "" {
				fmt.Fprintf(out, "\n%s\n", profile.Bio)
			}
			return nil
		}),
	}
}

func newFarmWeatherCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "weather <farmer-id>",
		Short: "Show the weather advisory for a farm",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
			advisory, err := app.Farm.Weather(ctx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %s\n", advisory.Location, advisory.Summary)
			fmt.Fprintf(out, "%.0f-%.0f C, %.0f%% chance of rain\n",
				advisory.TempMinC, advisory.TempMaxC, advisory.RainChance*100)
			if advisory.Advisory != "" {
				fmt.Fprintf(out, "advisory: %s\n", advisory.Advisory)
			}
			return nil
		}),
	}
}
