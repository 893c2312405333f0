package guest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/agrilink-hq/agrilink-client/pkg/logger"
)

// Service is the only mutation path into guest cart/wishlist state. It
// owns the aggregate invariants: derived totals are recomputed from
// scratch on every write, and no two cart lines share a listing ID.
//
// Mutations never fail observably. A storage write that errors leaves
// the persisted snapshot stale until the next write, which is an
// accepted degradation for non-monetary guest state; the failure is
// logged and swallowed.
type Service struct {
	store Store
	log   *logger.Logger
	now   func() time.Time
}

func NewService(store Store, log *logger.Logger) *Service {
	return &Service{
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// Cart returns the persisted cart, or the zero-value aggregate when the
// stored snapshot is absent or unparsable.
func (s *Service) Cart() Cart {
	raw, ok := s.store.Get(cartKey)
	if !ok {
		return EmptyCart()
	}
	var cart Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		// Corrupt state reads as empty; it gets overwritten on the
		// next mutation.
		return EmptyCart()
	}
	if cart.Items == nil {
		cart.Items = []CartLine{}
	}
	return cart
}

// Wishlist returns the persisted wishlist, empty on absence or corruption.
func (s *Service) Wishlist() []WishlistEntry {
	raw, ok := s.store.Get(wishlistKey)
	if !ok {
		return []WishlistEntry{}
	}
	var entries []WishlistEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return []WishlistEntry{}
	}
	if entries == nil {
		entries = []WishlistEntry{}
	}
	return entries
}

// AddToCart merges the listing into the cart: an existing line gains
// quantity, a new line is appended in add order. Quantities below one
// default to one.
func (s *Service) AddToCart(listing Listing, quantity int) Cart {
	if quantity < 1 {
		quantity = 1
	}
	cart := s.Cart()

	merged := false
	for i := range cart.Items {
		if cart.Items[i].ListingID == listing.ID {
			cart.Items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		unit := strings.TrimSpace(listing.Unit)
		if unit == "" {
			unit = DefaultUnit
		}
		available := listing.AvailableQuantity
		if available <= 0 {
			available = DefaultAvailableQuantity
		}
		cart.Items = append(cart.Items, CartLine{
			ListingID:         listing.ID,
			ProductName:       listing.Title,
			UnitPrice:         listing.Price,
			Quantity:          quantity,
			Unit:              unit,
			ImageURL:          listing.ImageURL,
			SellerID:          listing.SellerID,
			SellerName:        listing.SellerName,
			AvailableQuantity: available,
		})
	}

	recompute(&cart)
	s.writeCart(cart)
	return cart
}

// UpdateCartLine sets the quantity for a line; zero or below removes it.
func (s *Service) UpdateCartLine(listingID string, quantity int) Cart {
	cart := s.Cart()

	if quantity <= 0 {
		return s.removeLine(cart, listingID)
	}
	for i := range cart.Items {
		if cart.Items[i].ListingID == listingID {
			cart.Items[i].Quantity = quantity
			break
		}
	}
	recompute(&cart)
	s.writeCart(cart)
	return cart
}

// RemoveFromCart drops the line for the listing if present.
func (s *Service) RemoveFromCart(listingID string) Cart {
	return s.removeLine(s.Cart(), listingID)
}

func (s *Service) removeLine(cart Cart, listingID string) Cart {
	kept := cart.Items[:0]
	for _, line := range cart.Items {
		if line.ListingID != listingID {
			kept = append(kept, line)
		}
	}
	cart.Items = kept
	recompute(&cart)
	s.writeCart(cart)
	return cart
}

// ClearCart resets the cart to its zero value.
func (s *Service) ClearCart() {
	s.writeCart(EmptyCart())
}

// ToggleWishlist flips membership for the listing and returns the new
// state: true when the listing is now saved.
func (s *Service) ToggleWishlist(listing Listing) bool {
	entries := s.Wishlist()
	for i, entry := range entries {
		if entry.ListingID == listing.ID {
			s.writeWishlist(append(entries[:i], entries[i+1:]...))
			return false
		}
	}
	s.writeWishlist(append(entries, s.newEntry(listing)))
	return true
}

// AddToWishlist inserts the listing unless it is already saved.
func (s *Service) AddToWishlist(listing Listing) {
	entries := s.Wishlist()
	for _, entry := range entries {
		if entry.ListingID == listing.ID {
			return
		}
	}
	s.writeWishlist(append(entries, s.newEntry(listing)))
}

// RemoveFromWishlist drops the entry for the listing if present.
func (s *Service) RemoveFromWishlist(listingID string) {
	entries := s.Wishlist()
	kept := entries[:0]
	for _, entry := range entries {
		if entry.ListingID != listingID {
			kept = append(kept, entry)
		}
	}
	s.writeWishlist(kept)
}

// ClearWishlist resets the wishlist to empty.
func (s *Service) ClearWishlist() {
	s.writeWishlist([]WishlistEntry{})
}

// HasAnyGuestData reports whether a login has anything to migrate.
func (s *Service) HasAnyGuestData() bool {
	if len(s.Cart().Items) > 0 {
		return true
	}
	return len(s.Wishlist()) > 0
}

// OnCartChange registers an observer for cart writes, e.g. a cart-count
// badge. The callback receives the full new aggregate.
func (s *Service) OnCartChange(fn func(Cart)) (cancel func()) {
	return s.store.Subscribe(func(event Event) {
		if event.Key != cartKey {
			return
		}
		var cart Cart
		if event.Value == nil || json.Unmarshal(event.Value, &cart) != nil {
			cart = EmptyCart()
		}
		fn(cart)
	})
}

// OnWishlistChange registers an observer for wishlist writes.
func (s *Service) OnWishlistChange(fn func([]WishlistEntry)) (cancel func()) {
	return s.store.Subscribe(func(event Event) {
		if event.Key != wishlistKey {
			return
		}
		var entries []WishlistEntry
		if event.Value == nil || json.Unmarshal(event.Value, &entries) != nil {
			entries = []WishlistEntry{}
		}
		fn(entries)
	})
}

func (s *Service) newEntry(listing Listing) WishlistEntry {
	unit := strings.TrimSpace(listing.Unit)
	if unit == "" {
		unit = DefaultUnit
	}
	return WishlistEntry{
		ListingID:   listing.ID,
		ProductName: listing.Title,
		Price:       listing.Price,
		Unit:        unit,
		ImageURL:    listing.ImageURL,
		SellerID:    listing.SellerID,
		SellerName:  listing.SellerName,
		AddedAt:     s.now(),
	}
}

func (s *Service) writeCart(cart Cart) {
	raw, err := json.Marshal(cart)
	if err != nil {
		s.logWriteFailure("cart", err)
		return
	}
	if err := s.store.Set(cartKey, raw); err != nil {
		s.logWriteFailure("cart", err)
	}
}

func (s *Service) writeWishlist(entries []WishlistEntry) {
	raw, err := json.Marshal(entries)
	if err != nil {
		s.logWriteFailure("wishlist", err)
		return
	}
	if err := s.store.Set(wishlistKey, raw); err != nil {
		s.logWriteFailure("wishlist", err)
	}
}

func (s *Service) logWriteFailure(aggregate string, err error) {
	if s.log == nil {
		return
	}
	s.log.Error(context.Background(), fmt.Sprintf("guest %s write failed, local state is stale", aggregate), err)
}
