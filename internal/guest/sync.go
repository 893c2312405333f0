package guest

import (
	"context"
	"fmt"
	"time"

	"github.com/agrilink-hq/agrilink-client/pkg/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

// CartItemPayload is the denormalized line shipped to the server cart
// during migration.
type CartItemPayload struct {
	ListingID         string          `json:"listingId"`
	SellerID          string          `json:"sellerId"`
	Quantity          int             `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unitPrice"`
	ListingTitle      string          `json:"listingTitle"`
	ListingImageURL   string          `json:"listingImageUrl,omitempty"`
	Unit              string          `json:"unit"`
	AvailableQuantity int             `json:"availableQuantity"`
}

// CartTarget is the authenticated server cart the migration replays into.
type CartTarget interface {
	AddItem(ctx context.Context, payload CartItemPayload) error
}

// WishlistTarget is the authenticated server wishlist.
type WishlistTarget interface {
	AddItem(ctx context.Context, listingID string) error
}

// Notifier surfaces aggregate migration outcomes to the user.
type Notifier interface {
	Success(ctx context.Context, msg string)
	Warn(ctx context.Context, msg string)
}

// ItemKind labels which aggregate a migration result belongs to.
type ItemKind string

const (
	ItemKindCart     ItemKind = "cart"
	ItemKindWishlist ItemKind = "wishlist"
)

// ItemResult is the outcome of one replayed item.
type ItemResult struct {
	Kind      ItemKind
	ListingID string
	Err       error
}

// Report summarizes one migration run. The caller decides what to do
// with partial failures; the local store has already been cleared.
type Report struct {
	Results           []ItemResult
	CartAttempted     int
	CartMigrated      int
	WishlistAttempted int
	WishlistMigrated  int
}

// Attempted reports whether the run issued any requests.
func (r Report) Attempted() bool {
	return r.CartAttempted > 0 || r.WishlistAttempted > 0
}

// Failed returns the per-item failures.
func (r Report) Failed() []ItemResult {
	var failed []ItemResult
	for _, result := range r.Results {
		if result.Err != nil {
			failed = append(failed, result)
		}
	}
	return failed
}

// Err combines all per-item failures, nil when everything migrated.
func (r Report) Err() error {
	var combined error
	for _, result := range r.Results {
		if result.Err != nil {
			combined = multierr.Append(combined, fmt.Errorf("%s %s: %w", result.Kind, result.ListingID, result.Err))
		}
	}
	return combined
}

// MigratorParams groups the migrator dependencies.
type MigratorParams struct {
	Guest       *Service
	Cart        CartTarget
	Wishlist    WishlistTarget
	Notifier    Notifier
	Log         *logger.Logger
	ItemTimeout time.Duration
}

// Migrator replays guest-held cart and wishlist intent into the
// authenticated user's server-side state, once per login.
//
// The batch is deliberately best-effort: items are attempted
// sequentially in insertion order, one failure never aborts the rest,
// and the local store is cleared unconditionally once every attempt has
// settled. Keeping partially migrated state around would risk duplicate
// replay on the next login, and the user has no per-item recovery path.
type Migrator struct {
	guest       *Service
	cart        CartTarget
	wishlist    WishlistTarget
	notifier    Notifier
	log         *logger.Logger
	itemTimeout time.Duration
}

func NewMigrator(params MigratorParams) (*Migrator, error) {
	if params.Guest == nil {
		return nil, fmt.Errorf("guest service is required")
	}
	if params.Cart == nil {
		return nil, fmt.Errorf("cart target is required")
	}
	if params.Wishlist == nil {
		return nil, fmt.Errorf("wishlist target is required")
	}
	return &Migrator{
		guest:       params.Guest,
		cart:        params.Cart,
		wishlist:    params.Wishlist,
		notifier:    params.Notifier,
		log:         params.Log,
		itemTimeout: params.ItemTimeout,
	}, nil
}

// Run executes the migration. When no guest data exists it returns an
// empty report without touching the network.
func (m *Migrator) Run(ctx context.Context) Report {
	if !m.guest.HasAnyGuestData() {
		return Report{}
	}

	cart := m.guest.Cart()
	wishlist := m.guest.Wishlist()
	report := Report{
		CartAttempted:     len(cart.Items),
		WishlistAttempted: len(wishlist),
	}

	for _, line := range cart.Items {
		err := m.withItemTimeout(ctx, func(itemCtx context.Context) error {
			return m.cart.AddItem(itemCtx, CartItemPayload{
				ListingID:         line.ListingID,
				SellerID:          line.SellerID,
				Quantity:          line.Quantity,
				UnitPrice:         line.UnitPrice,
				ListingTitle:      line.ProductName,
				ListingImageURL:   line.ImageURL,
				Unit:              line.Unit,
				AvailableQuantity: line.AvailableQuantity,
			})
		})
		if err != nil {
			m.logItemFailure(ctx, ItemKindCart, line.ListingID, err)
		} else {
			report.CartMigrated++
		}
		report.Results = append(report.Results, ItemResult{Kind: ItemKindCart, ListingID: line.ListingID, Err: err})
	}

	for _, entry := range wishlist {
		err := m.withItemTimeout(ctx, func(itemCtx context.Context) error {
			return m.wishlist.AddItem(itemCtx, entry.ListingID)
		})
		if err != nil {
			m.logItemFailure(ctx, ItemKindWishlist, entry.ListingID, err)
		} else {
			report.WishlistMigrated++
		}
		report.Results = append(report.Results, ItemResult{Kind: ItemKindWishlist, ListingID: entry.ListingID, Err: err})
	}

	// Cleared regardless of per-item outcomes: every item has had its
	// one attempt.
	m.guest.ClearCart()
	m.guest.ClearWishlist()

	m.notify(ctx, report)
	return report
}

func (m *Migrator) withItemTimeout(ctx context.Context, fn func(context.Context) error) error {
	if m.itemTimeout <= 0 {
		return fn(ctx)
	}
	itemCtx, cancel := context.WithTimeout(ctx, m.itemTimeout)
	defer cancel()
	return fn(itemCtx)
}

func (m *Migrator) notify(ctx context.Context, report Report) {
	if m.notifier == nil {
		return
	}
	if report.CartAttempted > 0 {
		m.notifier.Success(ctx, fmt.Sprintf("%d item(s) added to your cart from your guest session", report.CartMigrated))
	}
	if report.WishlistAttempted > 0 {
		m.notifier.Success(ctx, fmt.Sprintf("%d listing(s) added to your wishlist from your guest session", report.WishlistMigrated))
	}
	if len(report.Failed()) > 0 {
		m.notifier.Warn(ctx, "some guest items could not be carried over")
	}
}

func (m *Migrator) logItemFailure(ctx context.Context, kind ItemKind, listingID string, err error) {
	if m.log == nil {
		return
	}
	entry := m.log.WithListingID(ctx, listingID)
	m.log.Error(entry, fmt.Sprintf("guest %s item migration failed", kind), err)
}
