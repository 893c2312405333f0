package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/agrilink-hq/agrilink-client/internal/catalog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newBrowseCommand() *cobra.Command {
	var (
		category string
		organic  bool
		maxPrice string
		page     int
		size     int
	)

	cmd := &cobra.Command{
		Use:   "browse [query]",
		Short: "Search marketplace listings",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
			params := catalog.SearchParams{
				Category: category,
				Organic:  organic,
				Page:     page,
				Size:     size,
			}
			if len(args) == 1 {
				params.Query = args[0]
			}
			if maxPrice != "" {
				price, err := decimal.NewFromString(maxPrice)
				if err != nil {
					return fmt.Errorf("invalid --max-price %q", maxPrice)
				}
				params.MaxPrice = price
			}

			result, err := app.Catalog.Search(ctx, params)
			if err != nil {
				return err
			}
			if len(result.Content) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no listings found")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tPRICE\tSELLER\tSTOCK")
			for _, listing := range result.Content {
				fmt.Fprintf(w, "%s\t%s\t%s/%s\t%s\t%d\n",
					listing.ID, listing.Title, listing.Price.StringFixed(2), listing.Unit,
					listing.SellerName, listing.AvailableQuantity)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\npage %d of %d (%d listings)\n", page+1, result.TotalPages, result.TotalElements)
			return nil
		}),
	}

	cmd.Flags().StringVar(&category, "category", "", "filter by category slug")
	cmd.Flags().BoolVar(&organic, "organic", false, "only organic listings")
	cmd.Flags().StringVar(&maxPrice, "max-price", "", "maximum unit price")
	cmd.Flags().IntVar(&page, "page", 0, "result page (zero based)")
	cmd.Flags().IntVar(&size, "size", 0, "page size")
	return cmd
}

func newListingCommand() *cobra.Command {
	var withReviews bool

	cmd := &cobra.Command{
		Use:   "listing <id>",
		Short: "Show one listing in detail",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
			listing, err := app.Catalog.Get(ctx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n%s\n\n", listing.Title, strings.Repeat("=", len(listing.Title)))
			fmt.Fprintf(out, "price:     %s/%s\n", listing.Price.StringFixed(2), listing.Unit)
			fmt.Fprintf(out, "seller:    %s (%s)\n", listing.SellerName, listing.SellerID)
			fmt.Fprintf(out, "stock:     %d %s\n", listing.AvailableQuantity, listing.Unit)
			fmt.Fprintf(out, "category:  %s\n", listing.Category)
			if listing.Organic {
				fmt.Fprintln(out, "organic:   yes")
			}
			if listing.Location != "" {
				fmt.Fprintf(out, "location:  %s\n", listing.Location)
			}
			fmt.Fprintf(out, "rating:    %.1f (%d reviews)\n", listing.AverageRating, listing.ReviewCount)
			if listing.Description != "" {
				fmt.Fprintf(out, "\n%s\n", listing.Description)
			}

			if !withReviews {
				return nil
			}
			reviews, err := app.Catalog.Reviews(ctx, listing.ID, 0)
			if err != nil {
				return err
			}
			fmt.Fprintln(out)
			for _, review := range reviews.Content {
				fmt.Fprintf(out, "  %s (%d/5): %s\n", review.AuthorName, review.Rating, review.Comment)
			}
			return nil
		}),
	}

	cmd.Flags().BoolVar(&withReviews, "reviews", false, "include recent reviews")
	return cmd
}
