package guest

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DefaultUnit is applied when a listing carries no sale unit.
	DefaultUnit = "kg"
	// DefaultAvailableQuantity is the advisory stock cap assumed when the
	// caller did not supply one. It is never enforced in this layer.
	DefaultAvailableQuantity = 9999
)

// Listing is the denormalized product snapshot callers hand to the
// mutation API. It mirrors what a listing card renders.
type Listing struct {
	ID                string
	Title             string
	Price             decimal.Decimal
	Unit              string
	ImageURL          string
	SellerID          string
	SellerName        string
	AvailableQuantity int
}

// CartLine is one listing held in the guest cart. ListingID is the
// identity key; at most one line exists per listing.
type CartLine struct {
	ListingID         string          `json:"listingId"`
	ProductName       string          `json:"productName"`
	UnitPrice         decimal.Decimal `json:"unitPrice"`
	Quantity          int             `json:"quantity"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	Unit              string          `json:"unit"`
	ImageURL          string          `json:"imageUrl,omitempty"`
	SellerID          string          `json:"sellerId"`
	SellerName        string          `json:"sellerName"`
	AvailableQuantity int             `json:"availableQuantity"`
}

// Cart is the guest cart aggregate. TotalItems and TotalAmount are
// derived and recomputed on every mutation, never lazily.
type Cart struct {
	Items       []CartLine      `json:"items"`
	TotalItems  int             `json:"totalItems"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// EmptyCart returns the zero-value aggregate used for absent or corrupt
// stored state.
func EmptyCart() Cart {
	return Cart{
		Items:       []CartLine{},
		TotalItems:  0,
		TotalAmount: decimal.Zero,
	}
}

// WishlistEntry is one saved listing. Entries form a set keyed by
// ListingID.
type WishlistEntry struct {
	ListingID   string          `json:"listingId"`
	ProductName string          `json:"productName"`
	Price       decimal.Decimal `json:"price"`
	Unit        string          `json:"unit"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	SellerID    string          `json:"sellerId"`
	SellerName  string          `json:"sellerName"`
	AddedAt     time.Time       `json:"addedAt"`
}

func recompute(cart *Cart) {
	totalItems := 0
	totalAmount := decimal.Zero
	for i := range cart.Items {
		line := &cart.Items[i]
		line.Subtotal = line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		totalItems += line.Quantity
		totalAmount = totalAmount.Add(line.Subtotal)
	}
	cart.TotalItems = totalItems
	cart.TotalAmount = totalAmount
}
