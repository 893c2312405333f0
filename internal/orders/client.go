package orders

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/agrilink-hq/agrilink-client/pkg/envelope"
	pkgerrors "github.com/agrilink-hq/agrilink-client/pkg/errors"
	"github.com/agrilink-hq/agrilink-client/pkg/rest"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the order lifecycle state as reported by the backend.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

// Line is one listing within an order.
type Line struct {
	ListingID    string          `json:"listingId"`
	ListingTitle string          `json:"listingTitle"`
	Unit         string          `json:"unit"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

// Order is the buyer/seller view of a placed order.
type Order struct {
	ID           string          `json:"id"`
	BuyerID      string          `json:"buyerId"`
	SellerID     string          `json:"sellerId"`
	SellerName   string          `json:"sellerName"`
	Status       Status          `json:"status"`
	Lines        []Line          `json:"lines"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	DeliveryNote string          `json:"deliveryNote,omitempty"`
	Address      string          `json:"address"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// CreateInput places an order from the server-side cart.
type CreateInput struct {
	Address      string `json:"address" validate:"required,min=5"`
	Phone        string `json:"phone" validate:"required,min=6"`
	DeliveryNote string `json:"deliveryNote" validate:"max=500"`
}

// Client wraps the order service endpoints.
type Client struct {
	api      *rest.Client
	validate *validator.Validate
}

func NewClient(api *rest.Client) (*Client, error) {
	if api == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rest client is required")
	}
	return &Client{api: api, validate: validator.New()}, nil
}

// Create checks out the current cart into one order per seller. The
// idempotency key guards against a double-submitted checkout form.
func (c *Client) Create(ctx context.Context, input CreateInput) ([]Order, error) {
	if err := c.validate.Struct(input); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid checkout")
	}
	raw, err := c.api.PostIdempotent(ctx, "orders", input, uuid.NewString())
	if err != nil {
		return nil, err
	}
	placed, err := envelope.DecodeData[[]Order](raw)
	if err != nil {
		return nil, err
	}
	return placed, nil
}

// Get fetches one order.
func (c *Client) Get(ctx context.Context, orderID string) (Order, error) {
	if orderID == "" {
		return Order{}, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	raw, err := c.api.Get(ctx, fmt.Sprintf("orders/%s", orderID), nil)
	if err != nil {
		return Order{}, err
	}
	return envelope.DecodeData[Order](raw)
}

// ListAsBuyer pages through the caller's purchase history.
func (c *Client) ListAsBuyer(ctx context.Context, page int) (envelope.Page[Order], error) {
	return c.list(ctx, "orders/buyer", page)
}

// ListAsSeller pages through orders placed against the caller's farm.
func (c *Client) ListAsSeller(ctx context.Context, page int) (envelope.Page[Order], error) {
	return c.list(ctx, "orders/seller", page)
}

func (c *Client) list(ctx context.Context, path string, page int) (envelope.Page[Order], error) {
	values := url.Values{}
	if page > 0 {
		values.Set("page", strconv.Itoa(page))
	}
	raw, err := c.api.Get(ctx, path, values)
	if err != nil {
		return envelope.Page[Order]{}, err
	}
	return envelope.DecodePage[Order](raw)
}

// Confirm moves a pending order to confirmed (seller action).
func (c *Client) Confirm(ctx context.Context, orderID string) (Order, error) {
	return c.transition(ctx, orderID, "confirm")
}

// Ship marks a confirmed order as shipped (seller action).
func (c *Client) Ship(ctx context.Context, orderID string) (Order, error) {
	return c.transition(ctx, orderID, "ship")
}

// Deliver marks a shipped order as delivered (buyer action).
func (c *Client) Deliver(ctx context.Context, orderID string) (Order, error) {
	return c.transition(ctx, orderID, "deliver")
}

// Cancel cancels an order that has not shipped yet.
func (c *Client) Cancel(ctx context.Context, orderID string) (Order, error) {
	return c.transition(ctx, orderID, "cancel")
}

func (c *Client) transition(ctx context.Context, orderID, action string) (Order, error) {
	if orderID == "" {
		return Order{}, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	raw, err := c.api.Post(ctx, fmt.Sprintf("orders/%s/%s", orderID, action), nil)
	if err != nil {
		return Order{}, err
	}
	return envelope.DecodeData[Order](raw)
}
