package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/agrilink-hq/agrilink-client/internal/orders"
	"github.com/spf13/cobra"
)

func newOrdersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Place and track orders (requires login)",
	}
	cmd.AddCommand(newOrdersListCommand())
	cmd.AddCommand(newOrdersPlaceCommand())
	cmd.AddCommand(newOrdersShowCommand())
	cmd.AddCommand(newOrderTransitionCommand("confirm", "Confirm a pending order (seller)", (*orders.Client).Confirm))
	cmd.AddCommand(newOrderTransitionCommand("ship", "Mark a confirmed order as shipped (seller)", (*orders.Client).Ship))
	cmd.AddCommand(newOrderTransitionCommand("deliver", "Mark a shipped order as delivered (buyer)", (*orders.Client).Deliver))
	cmd.AddCommand(newOrderTransitionCommand("cancel", "Cancel an order that has not shipped", (*orders.Client).Cancel))
	return cmd
}

func newOrdersListCommand() *cobra.Command {
	var asSeller bool
	var page int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your orders",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, app *App, cmd *cobra.Command, _ []string) error {
			if err := requireLogin(app); err != nil {
				return err
			}

			list := app.Orders.ListAsBuyer
			if asSeller {
				list = app.Orders.ListAsSeller
			}
			pageResult, err := list(ctx, page)
			if err != nil {
				return err
			}
			if len(pageResult.Content) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no orders yet")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tSELLER\tTOTAL\tPLACED")
			for _, order := range pageResult.Content {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					order.ID, order.Status, order.SellerName,
					order.TotalAmount.StringFixed(2), order.CreatedAt.Format("2006-01-02"))
			}
			return w.Flush()
		}),
	}

	cmd.Flags().BoolVar(&asSeller, "as-seller", false, "show orders placed against your farm")
	cmd.Flags().IntVar(&page, "page", 0, "result page (zero based)")
	return cmd
}

func newOrdersPlaceCommand() *cobra.Command {
	var input orders.CreateInput

	cmd := &cobra.Command{
		Use:   "place",
		Short: "Check out the current cart",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, app *App, cmd *cobra.Command, _ []string) error {
			if err := requireLogin(app); err != nil {
				return err
			}
			placed, err := app.Orders.Create(ctx, input)
			if err != nil {
				return err
			}
			for _, order := range placed {
				fmt.Fprintf(cmd.OutOrStdout(), "order %s placed with %s, total %s\n",
					order.ID, order.SellerName, order.TotalAmount.StringFixed(2))
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&input.Address, "address", "", "delivery address")
	cmd.Flags().StringVar(&input.Phone, "phone", "", "contact phone")
	cmd.Flags().StringVar(&input.DeliveryNote, "note", "", "delivery note")
	return cmd
}

func newOrdersShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <order-id>",
		Short: "Show one order",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
			if err := requireLogin(app); err != nil {
				return err
			}
			order, err := app.Orders.Get(ctx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "order %s (%s)\nseller: %s\naddress: %s\n\n", order.ID, order.Status, order.SellerName, order.Address)
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PRODUCT\tQTY\tPRICE\tSUBTOTAL")
			for _, line := range order.Lines {
				fmt.Fprintf(w, "%s\t%d\t%s/%s\t%s\n",
					line.ListingTitle, line.Quantity, line.UnitPrice.StringFixed(2), line.Unit, line.Subtotal.StringFixed(2))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\ntotal %s\n", order.TotalAmount.StringFixed(2))
			return nil
		}),
	}
}

func newOrderTransitionCommand(action, short string, call func(*orders.Client, context.Context, string) (orders.Order, error)) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <order-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
			if err := requireLogin(app); err != nil {
				return err
			}
			order, err := call(app.Orders, ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "order %s is now %s\n", order.ID, order.Status)
			return nil
		}),
	}
}

func requireLogin(app *App) error {
	if !app.Authenticated() {
		return fmt.Errorf("this command requires login, run `agrilink login` first")
	}
	return nil
}
