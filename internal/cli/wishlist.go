package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/agrilink-hq/agrilink-client/internal/guest"
	"github.com/spf13/cobra"
)

func newWishlistCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wishlist",
		Short: "Manage saved listings (guest or signed in)",
	}
	cmd.AddCommand(newWishlistShowCommand())
	cmd.AddCommand(newWishlistToggleCommand())
	cmd.AddCommand(newWishlistRemoveCommand())
	return cmd
}

func newWishlistShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "List saved listings",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, app *App, cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

			if app.Authenticated() {
				entries, err := app.Wishlist.List(ctx)
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					fmt.Fprintln(out, "your wishlist is empty")
					return nil
				}
				fmt.Fprintln(w, "ID\tPRODUCT\tPRICE\tSELLER")
				for _, entry := range entries {
					fmt.Fprintf(w, "%s\t%s\t%s/%s\t%s\n",
						entry.ListingID, entry.ListingTitle, entry.Price.StringFixed(2), entry.Unit, entry.SellerName)
				}
				return w.Flush()
			}

			entries := app.Guest.Wishlist()
			if len(entries) == 0 {
				fmt.Fprintln(out, "your wishlist is empty")
				return nil
			}
			fmt.Fprintln(w, "ID\tPRODUCT\tPRICE\tSELLER")
			for _, entry := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s/%s\t%s\n",
					entry.ListingID, entry.ProductName, entry.Price.StringFixed(2), entry.Unit, entry.SellerName)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintln(out, "\n(guest wishlist, log in to keep it)")
			return nil
		}),
	}
}

func newWishlistToggleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <listing-id>",
		Short: "Save a listing, or unsave it if already saved",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
			if app.Authenticated() {
				saved, err := app.Wishlist.Contains(ctx, args[0])
				if err != nil {
					return err
				}
				if saved {
					if err := app.Wishlist.Remove(ctx, args[0]); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), "removed from wishlist")
					return nil
				}
				if err := app.Wishlist.AddItem(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "saved to wishlist")
				return nil
			}

			listing, err := app.Catalog.Get(ctx, args[0])
			if err != nil {
				return err
			}
			added := app.Guest.ToggleWishlist(guest.Listing{
				ID:                listing.ID,
				Title:             listing.Title,
				Price:             listing.Price,
				Unit:              listing.Unit,
				ImageURL:          listing.ImageURL,
				SellerID:          listing.SellerID,
				SellerName:        listing.SellerName,
				AvailableQuantity: listing.AvailableQuantity,
			})
			if added {
				fmt.Fprintln(cmd.OutOrStdout(), "saved to wishlist")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "removed from wishlist")
			}
			return nil
		}),
	}
}

func newWishlistRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <listing-id>",
		Short: "Remove a saved listing",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
			if app.Authenticated() {
				return app.Wishlist.Remove(ctx, args[0])
			}
			app.Guest.RemoveFromWishlist(args[0])
			fmt.Fprintln(cmd.OutOrStdout(), "removed from wishlist")
			return nil
		}),
	}
}
