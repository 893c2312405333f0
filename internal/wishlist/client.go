package wishlist

import (
	"context"
	"fmt"
	"time"

	"github.com/agrilink-hq/agrilink-client/internal/guest"
	"github.com/agrilink-hq/agrilink-client/pkg/envelope"
	pkgerrors "github.com/agrilink-hq/agrilink-client/pkg/errors"
	"github.com/agrilink-hq/agrilink-client/pkg/rest"
	"github.com/shopspring/decimal"
)

// Entry is one saved listing on the authenticated wishlist.
type Entry struct {
	ListingID    string          `json:"listingId"`
	ListingTitle string          `json:"listingTitle"`
	Price        decimal.Decimal `json:"price"`
	Unit         string          `json:"unit"`
	ImageURL     string          `json:"imageUrl,omitempty"`
	SellerID     string          `json:"sellerId"`
	SellerName   string          `json:"sellerName"`
	AddedAt      time.Time       `json:"addedAt"`
}

// Client wraps the marketplace wishlist endpoints. It satisfies
// guest.WishlistTarget so the login migration can replay into it.
type Client struct {
	api *rest.Client
}

func NewClient(api *rest.Client) (*Client, error) {
	if api == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rest client is required")
	}
	return &Client{api: api}, nil
}

var _ guest.WishlistTarget = (*Client)(nil)

// AddItem saves a listing by id. The server keeps wishlists as sets, so
// a conflict on an already-saved listing counts as success.
func (c *Client) AddItem(ctx context.Context, listingID string) error {
	if listingID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "listing id is required")
	}
	_, err := c.api.Post(ctx, fmt.Sprintf("wishlist/%s", listingID), nil)
	if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeConflict {
		return nil
	}
	return err
}

// Remove drops a listing from the wishlist. Removing an absent listing
// is fine.
func (c *Client) Remove(ctx context.Context, listingID string) error {
	_, err := c.api.Delete(ctx, fmt.Sprintf("wishlist/%s", listingID))
	if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
		return nil
	}
	return err
}

// List fetches the full wishlist.
func (c *Client) List(ctx context.Context) ([]Entry, error) {
	raw, err := c.api.Get(ctx, "wishlist", nil)
	if err != nil {
		return nil, err
	}
	entries, err := envelope.DecodeData[[]Entry](raw)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// Contains reports whether a listing is saved, for the heart toggle on
// listing cards.
func (c *Client) Contains(ctx context.Context, listingID string) (bool, error) {
	entries, err := c.List(ctx)
	if err != nil {
		return false, err
	}
	for _, entry := range entries {
		if entry.ListingID == listingID {
			return true, nil
		}
	}
	return false, nil
}
