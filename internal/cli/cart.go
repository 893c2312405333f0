package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/agrilink-hq/agrilink-client/internal/cart"
	"github.com/agrilink-hq/agrilink-client/internal/guest"
	"github.com/spf13/cobra"
)

func newCartCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage your cart (guest or signed in)",
	}
	cmd.AddCommand(newCartShowCommand())
	cmd.AddCommand(newCartAddCommand())
	cmd.AddCommand(newCartUpdateCommand())
	cmd.AddCommand(newCartRemoveCommand())
	cmd.AddCommand(newCartClearCommand())
	return cmd
}

func newCartShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the cart contents",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, app *App, cmd *cobra.Command, _ []string) error {
			if app.Authenticated() {
				view, err := app.Cart.Get(ctx)
				if err != nil {
					return err
				}
				return printServerCart(cmd, view)
			}
			return printGuestCart(cmd, app.Guest.Cart())
		}),
	}
}

func newCartAddCommand() *cobra.Command {
	var quantity int

	cmd := &cobra.Command{
		Use:   "add <listing-id>",
		Short: "Add a listing to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
			listing, err := app.Catalog.Get(ctx, args[0])
			if err != nil {
				return err
			}

			if app.Authenticated() {
				err := app.Cart.AddItem(ctx, guest.CartItemPayload{
					ListingID:         listing.ID,
					SellerID:          listing.SellerID,
					Quantity:          quantity,
					UnitPrice:         listing.Price,
					ListingTitle:      listing.Title,
					ListingImageURL:   listing.ImageURL,
					Unit:              listing.Unit,
					AvailableQuantity: listing.AvailableQuantity,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added %d x %s to your cart\n", quantity, listing.Title)
				return nil
			}

			updated := app.Guest.AddToCart(guest.Listing{
				ID:                listing.ID,
				Title:             listing.Title,
				Price:             listing.Price,
				Unit:              listing.Unit,
				ImageURL:          listing.ImageURL,
				SellerID:          listing.SellerID,
				SellerName:        listing.SellerName,
				AvailableQuantity: listing.AvailableQuantity,
			}, quantity)
			fmt.Fprintf(cmd.OutOrStdout(), "added %s, cart now holds %d item(s)\n", listing.Title, updated.TotalItems)
			return nil
		}),
	}

	cmd.Flags().IntVarP(&quantity, "quantity", "q", 1, "quantity to add")
	return cmd
}

func newCartUpdateCommand() *cobra.Command {
	var quantity int

	cmd := &cobra.Command{
		Use:   "update <listing-id>",
		Short: "Change a line's quantity (0 removes it)",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
			if app.Authenticated() {
				if quantity <= 0 {
					return app.Cart.RemoveItem(ctx, args[0])
				}
				return app.Cart.UpdateItem(ctx, args[0], quantity)
			}
			updated := app.Guest.UpdateCartLine(args[0], quantity)
			fmt.Fprintf(cmd.OutOrStdout(), "cart now holds %d item(s)\n", updated.TotalItems)
			return nil
		}),
	}

	cmd.Flags().IntVarP(&quantity, "quantity", "q", 1, "new quantity")
	return cmd
}

func newCartRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <listing-id>",
		Short: "Remove a line from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
			if app.Authenticated() {
				return app.Cart.RemoveItem(ctx, args[0])
			}
			updated := app.Guest.RemoveFromCart(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "cart now holds %d item(s)\n", updated.TotalItems)
			return nil
		}),
	}
}

func newCartClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, app *App, cmd *cobra.Command, _ []string) error {
			if app.Authenticated() {
				return app.Cart.Clear(ctx)
			}
			app.Guest.ClearCart()
			fmt.Fprintln(cmd.OutOrStdout(), "cart cleared")
			return nil
		}),
	}
}

func printGuestCart(cmd *cobra.Command, cart guest.Cart) error {
	out := cmd.OutOrStdout()
	if len(cart.Items) == 0 {
		fmt.Fprintln(out, "your cart is empty")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRODUCT\tQTY\tPRICE\tSUBTOTAL")
	for _, line := range cart.Items {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s/%s\t%s\n",
			line.ListingID, line.ProductName, line.Quantity,
			line.UnitPrice.StringFixed(2), line.Unit, line.Subtotal.StringFixed(2))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d item(s), total %s (guest cart, log in to keep it)\n", cart.TotalItems, cart.TotalAmount.StringFixed(2))
	return nil
}

func printServerCart(cmd *cobra.Command, view cart.View) error {
	out := cmd.OutOrStdout()
	if len(view.Items) == 0 {
		fmt.Fprintln(out, "your cart is empty")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRODUCT\tQTY\tPRICE\tSUBTOTAL")
	for _, item := range view.Items {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s/%s\t%s\n",
			item.ListingID, item.ListingTitle, item.Quantity,
			item.UnitPrice.StringFixed(2), item.Unit, item.Subtotal.StringFixed(2))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d item(s), total %s\n", view.TotalItems, view.TotalAmount.StringFixed(2))
	return nil
}
