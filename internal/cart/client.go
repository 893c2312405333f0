package cart

import (
	"context"
	"fmt"

	"github.com/agrilink-hq/agrilink-client/internal/guest"
	"github.com/agrilink-hq/agrilink-client/pkg/envelope"
	pkgerrors "github.com/agrilink-hq/agrilink-client/pkg/errors"
	"github.com/agrilink-hq/agrilink-client/pkg/rest"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is one line of the authenticated server-side cart.
type Item struct {
	ID                string          `json:"id"`
	ListingID         string          `json:"listingId"`
	SellerID          string          `json:"sellerId"`
	ListingTitle      string          `json:"listingTitle"`
	ListingImageURL   string          `json:"listingImageUrl,omitempty"`
	Unit              string          `json:"unit"`
	Quantity          int             `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unitPrice"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	AvailableQuantity int             `json:"availableQuantity"`
}

// View is the server cart aggregate.
type View struct {
	Items       []Item          `json:"items"`
	TotalItems  int             `json:"totalItems"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// Client wraps the order service's cart endpoints. It satisfies
// guest.CartTarget so the login migration can replay into it.
type Client struct {
	api *rest.Client
}

func NewClient(api *rest.Client) (*Client, error) {
	if api == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rest client is required")
	}
	return &Client{api: api}, nil
}

var _ guest.CartTarget = (*Client)(nil)

// AddItem creates one cart line from the denormalized listing snapshot.
// Each call carries a fresh idempotency key so a retried migration item
// cannot double-insert.
func (c *Client) AddItem(ctx context.Context, payload guest.CartItemPayload) error {
	if payload.ListingID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "listing id is required")
	}
	if payload.Quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	_, err := c.api.PostIdempotent(ctx, "cart/items", payload, uuid.NewString())
	return err
}

// Get fetches the authenticated cart.
func (c *Client) Get(ctx context.Context) (View, error) {
	raw, err := c.api.Get(ctx, "cart", nil)
	if err != nil {
		return View{}, err
	}
	view, err := envelope.DecodeData[View](raw)
	if err != nil {
		return View{}, err
	}
	if view.Items == nil {
		view.Items = []Item{}
	}
	return view, nil
}

// UpdateItem sets the quantity for an existing line.
func (c *Client) UpdateItem(ctx context.Context, listingID string, quantity int) error {
	if listingID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "listing id is required")
	}
	body := map[string]int{"quantity": quantity}
	_, err := c.api.Put(ctx, fmt.Sprintf("cart/items/%s", listingID), body)
	return err
}

// RemoveItem deletes a line. A line that is already gone is fine.
func (c *Client) RemoveItem(ctx context.Context, listingID string) error {
	_, err := c.api.Delete(ctx, fmt.Sprintf("cart/items/%s", listingID))
	if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
		return nil
	}
	return err
}

// Clear empties the server cart.
func (c *Client) Clear(ctx context.Context) error {
	_, err := c.api.Delete(ctx, "cart")
	return err
}

// Count returns the badge count for the header, zero on a missing cart.
func (c *Client) Count(ctx context.Context) (int, error) {
	view, err := c.Get(ctx)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			return 0, nil
		}
		return 0, err
	}
	return view.TotalItems, nil
}
