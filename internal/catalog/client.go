package catalog

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
	"github.com/shopspring/decimal"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ListingSummary is the card view served in search results.
type ListingSummary struct {
	ID                string          `json:"id"`
	Title             string          `json:"title"`
	Price             decimal.Decimal `json:"price"`
	Unit              string          `json:"unit"`
	ImageURL          string          `json:"imageUrl,omitempty"`
	Category          string          `json:"category"`
	SellerID          string          `json:"sellerId"`
	SellerName        string          `json:"sellerName"`
	AvailableQuantity int             `json:"availableQuantity"`
	Organic           bool            `json:"organic"`
	AverageRating     float64         `json:"averageRating"`
}

// Listing is the full detail view.
type Listing struct {
	ListingSummary
	Description string    `json:"description"`
	HarvestDate time.Time `json:"harvestDate,omitempty"`
	Location    string    `json:"location,omitempty"`
	ReviewCount int       `json:"reviewCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Category is a marketplace category with its listing count.
type Category struct {
	Slug         string `json:"slug"`
	Name         string `json:"name"`
	ListingCount int    `json:"listingCount"`
}

// Review is a buyer review on a listing.
type Review struct {
	ID         string    `json:"id"`
	ListingID  string    `json:"listingId"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ReviewInput is the payload for submitting a review.
type ReviewInput struct {
	ListingID string `json:"listingId" validate:"required"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment" validate:"max=2000"`
}

// SearchParams narrows a listing search. Zero values mean no filter.
type SearchParams struct {
	Query    string
	Category string
	Organic  bool
	MaxPrice decimal.Decimal
	Page     int
	Size     int
}

func (p SearchParams) values() url.Values {
	values := url.Values{}
	if p.Query != "" {
		values.Set("q", p.Query)
	}
	if p.Category != "" {
		values.Set("category", p.Category)
	}
	if p.Organic {
		values.Set("organic", "true")
	}
	if p.MaxPrice.IsPositive() {
		values.Set("maxPrice", p.MaxPrice.String())
	}
	if p.Page > 0 {
		values.Set("page", strconv.Itoa(p.Page))
	}
	size := p.Size
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	values.Set("size", strconv.Itoa(size))
	return values
}

// Client wraps the marketplace catalog endpoints.
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

// Search returns a page of listing cards matching the filters.
func (c *Client) Search(ctx context.Context, params SearchParams) (envelope.Page[ListingSummary], error) {
	raw, err := c.api.Get(ctx, "marketplace/listings", params.values())
	if err != nil {
		return envelope.Page[ListingSummary]{}, err
	}
	return envelope.DecodePage[ListingSummary](raw)
}

// Get fetches one listing's detail view.
func (c *Client) Get(ctx context.Context, listingID string) (Listing, error) {
	if listingID == "" {
		return Listing{}, pkgerrors.New(pkgerrors.CodeValidation, "listing id is required")
	}
	raw, err := c.api.Get(ctx, fmt.Sprintf("marketplace/listings/%s", listingID), nil)
	if err != nil {
		return Listing{}, err
	}
	return envelope.DecodeData[Listing](raw)
}

// Categories lists the marketplace categories.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	raw, err := c.api.Get(ctx, "marketplace/categories", nil)
	if err != nil {
		return nil, err
	}
	categories, err := envelope.DecodeData[[]Category](raw)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []Category{}
	}
	return categories, nil
}

// Reviews returns a page of reviews for a listing.
func (c *Client) Reviews(ctx context.Context, listingID string, page int) (envelope.Page[Review], error) {
	if listingID == "" {
		return envelope.Page[Review]{}, pkgerrors.New(pkgerrors.CodeValidation, "listing id is required")
	}
	values := url.Values{}
	if page > 0 {
		values.Set("page", strconv.Itoa(page))
	}
	raw, err := c.api.Get(ctx, fmt.Sprintf("marketplace/listings/%s/reviews", listingID), values)
	if err != nil {
		return envelope.Page[Review]{}, err
	}
	return envelope.DecodePage[Review](raw)
}

// SubmitReview validates and posts a review, returning the stored copy.
func (c *Client) SubmitReview(ctx context.Context, input ReviewInput) (Review, error) {
	if err := c.validate.Struct(input); err != nil {
		return Review{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid review")
	}
	raw, err := c.api.Post(ctx, fmt.Sprintf("marketplace/listings/%s/reviews", input.ListingID), input)
	if err != nil {
		return Review{}, err
	}
	return envelope.DecodeData[Review](raw)
}
