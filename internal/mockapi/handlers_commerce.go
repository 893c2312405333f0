package mockapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func withUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxUserKey{}, userID)
}

func userFrom(ctx context.Context) string {
	userID, _ := ctx.Value(ctxUserKey{}).(string)
	return userID
}

func (h *handlers) cartFor(userID string) *serverCart {
	cart, ok := h.store.carts[userID]
	if !ok {
		cart = &serverCart{Items: []cartItem{}, TotalAmount: decimal.Zero}
		h.store.carts[userID] = cart
	}
	return cart
}

func (h *handlers) getCart(w http.ResponseWriter, r *http.Request) {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	writeSuccess(w, h.cartFor(userFrom(r.Context())))
}

func (h *handlers) addCartItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ListingID         string          `json:"listingId"`
		SellerID          string          `json:"sellerId"`
		Quantity          int             `json:"quantity"`
		UnitPrice         decimal.Decimal `json:"unitPrice"`
		ListingTitle      string          `json:"listingTitle"`
		ListingImageURL   string          `json:"listingImageUrl"`
		Unit              string          `json:"unit"`
		AvailableQuantity int             `json:"availableQuantity"`
	}
	if err := decodeBody(r, &body); err != nil || body.ListingID == "" || body.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "listingId and a positive quantity are required")
		return
	}

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	// Replays of the same idempotency key are acknowledged without a
	// second insert.
	if key := r.Header.Get("Idempotency-Key"); key != "" {
		if h.store.seenIdemKeys[key] {
			writeSuccess(w, h.cartFor(userFrom(r.Context())))
			return
		}
		h.store.seenIdemKeys[key] = true
	}

	cart := h.cartFor(userFrom(r.Context()))
	merged := false
	for i := range cart.Items {
		if cart.Items[i].ListingID == body.ListingID {
			cart.Items[i].Quantity += body.Quantity
			merged = true
			break
		}
	}
	if !merged {
		cart.Items = append(cart.Items, cartItem{
			ID:                uuid.NewString(),
			ListingID:         body.ListingID,
			SellerID:          body.SellerID,
			ListingTitle:      body.ListingTitle,
			ListingImageURL:   body.ListingImageURL,
			Unit:              body.Unit,
			Quantity:          body.Quantity,
			UnitPrice:         body.UnitPrice,
			AvailableQuantity: body.AvailableQuantity,
		})
	}
	recomputeCart(cart)
	writeCreated(w, cart)
}

func (h *handlers) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := decodeBody(r, &body); err != nil || body.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "a positive quantity is required")
		return
	}

	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	cart := h.cartFor(userFrom(r.Context()))
	listingID := chi.URLParam(r, "listingID")
	for i := range cart.Items {
		if cart.Items[i].ListingID == listingID {
			cart.Items[i].Quantity = body.Quantity
			recomputeCart(cart)
			writeSuccess(w, cart)
			return
		}
	}
	writeError(w, http.StatusNotFound, "NOT_FOUND", "no such cart line")
}

func (h *handlers) removeCartItem(w http.ResponseWriter, r *http.Request) {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	cart := h.cartFor(userFrom(r.Context()))
	listingID := chi.URLParam(r, "listingID")
	for i := range cart.Items {
		if cart.Items[i].ListingID == listingID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			recomputeCart(cart)
			writeSuccess(w, cart)
			return
		}
	}
	writeError(w, http.StatusNotFound, "NOT_FOUND", "no such cart line")
}

func (h *handlers) clearCart(w http.ResponseWriter, r *http.Request) {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	cart := h.cartFor(userFrom(r.Context()))
	cart.Items = []cartItem{}
	recomputeCart(cart)
	writeSuccess(w, cart)
}

func (h *handlers) getWishlist(w http.ResponseWriter, r *http.Request) {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	entries := h.store.wishlists[userFrom(r.Context())]
	if entries == nil {
		entries = []wishlistEntry{}
	}
	writeSuccess(w, entries)
}

func (h *handlers) addWishlistEntry(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "listingID")

	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	item := h.store.findListing(listingID)
	if item == nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no such listing")
		return
	}
	userID := userFrom(r.Context())
	for _, entry := range h.store.wishlists[userID] {
		if entry.ListingID == listingID {
			writeError(w, http.StatusConflict, "CONFLICT", "listing already wishlisted")
			return
		}
	}
	entry := wishlistEntry{
		ListingID:    item.ID,
		ListingTitle: item.Title,
		Price:        item.Price,
		Unit:         item.Unit,
		ImageURL:     item.ImageURL,
		SellerID:     item.SellerID,
		SellerName:   item.SellerName,
		AddedAt:      time.Now(),
	}
	h.store.wishlists[userID] = append(h.store.wishlists[userID], entry)
	writeCreated(w, entry)
}

func (h *handlers) removeWishlistEntry(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "listingID")

	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	userID := userFrom(r.Context())
	entries := h.store.wishlists[userID]
	for i, entry := range entries {
		if entry.ListingID == listingID {
			h.store.wishlists[userID] = append(entries[:i], entries[i+1:]...)
			writeSuccess(w, struct{}{})
			return
		}
	}
	writeError(w, http.StatusNotFound, "NOT_FOUND", "listing not wishlisted")
}

func (h *handlers) createOrders(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Address      string `json:"address"`
		Phone        string `json:"phone"`
		DeliveryNote string `json:"deliveryNote"`
	}
	if err := decodeBody(r, &body); err != nil || body.Address == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "a delivery address is required")
		return
	}

	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	userID := userFrom(r.Context())
	cart := h.cartFor(userID)
	if len(cart.Items) == 0 {
		writeError(w, http.StatusConflict, "CONFLICT", "cart is empty")
		return
	}

	// One order per seller, in cart order.
	var sellerOrder []string
	bySeller := map[string][]cartItem{}
	for _, item := range cart.Items {
		if _, ok := bySeller[item.SellerID]; !ok {
			sellerOrder = append(sellerOrder, item.SellerID)
		}
		bySeller[item.SellerID] = append(bySeller[item.SellerID], item)
	}

	var placed []*order
	now := time.Now()
	for _, sellerID := range sellerOrder {
		items := bySeller[sellerID]
		placedOrder := &order{
			ID:           "O-" + uuid.NewString()[:8],
			BuyerID:      userID,
			SellerID:     sellerID,
			SellerName:   sellerID,
			Status:       "PENDING",
			Address:      body.Address,
			DeliveryNote: body.DeliveryNote,
			TotalAmount:  decimal.Zero,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if seller := h.store.userByID(sellerID); seller != nil {
			placedOrder.SellerName = seller.Name
		}
		for _, item := range items {
			line := orderLine{
				ListingID:    item.ListingID,
				ListingTitle: item.ListingTitle,
				Unit:         item.Unit,
				Quantity:     item.Quantity,
				UnitPrice:    item.UnitPrice,
				Subtotal:     item.Subtotal,
			}
			placedOrder.Lines = append(placedOrder.Lines, line)
			placedOrder.TotalAmount = placedOrder.TotalAmount.Add(line.Subtotal)
		}
		h.store.orders[userID] = append(h.store.orders[userID], placedOrder)
		placed = append(placed, placedOrder)
	}

	cart.Items = []cartItem{}
	recomputeCart(cart)
	writeCreated(w, placed)
}

func (h *handlers) listBuyerOrders(w http.ResponseWriter, r *http.Request) {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	list := h.store.orders[userFrom(r.Context())]
	if list == nil {
		list = []*order{}
	}
	writeWrappedPage(w, list, 1, int64(len(list)))
}

func (h *handlers) listSellerOrders(w http.ResponseWriter, r *http.Request) {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	sellerID := userFrom(r.Context())
	matched := []*order{}
	for _, buyerOrders := range h.store.orders {
		for _, candidate := range buyerOrders {
			if candidate.SellerID == sellerID {
				matched = append(matched, candidate)
			}
		}
	}
	writeWrappedPage(w, matched, 1, int64(len(matched)))
}

func (h *handlers) getOrder(w http.ResponseWriter, r *http.Request) {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	if found := h.findOrder(chi.URLParam(r, "orderID")); found != nil {
		writeSuccess(w, found)
		return
	}
	writeError(w, http.StatusNotFound, "NOT_FOUND", "no such order")
}

var orderTransitions = map[string]struct {
	from []string
	to   string
}{
	"confirm": {from: []string{"PENDING"}, to: "CONFIRMED"},
	"ship":    {from: []string{"CONFIRMED"}, to: "SHIPPED"},
	"deliver": {from: []string{"SHIPPED"}, to: "DELIVERED"},
	"cancel":  {from: []string{"PENDING", "CONFIRMED"}, to: "CANCELLED"},
}

func (h *handlers) transitionOrder(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")
	transition, ok := orderTransitions[action]
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "unknown order action")
		return
	}

	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	found := h.findOrder(chi.URLParam(r, "orderID"))
	if found == nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no such order")
		return
	}
	for _, from := range transition.from {
		if found.Status == from {
			found.Status = transition.to
			found.UpdatedAt = time.Now()
			writeSuccess(w, found)
			return
		}
	}
	writeError(w, http.StatusConflict, "CONFLICT", "order is "+found.Status+", cannot "+action)
}

func (h *handlers) findOrder(orderID string) *order {
	for _, buyerOrders := range h.store.orders {
		for _, candidate := range buyerOrders {
			if candidate.ID == orderID {
				return candidate
			}
		}
	}
	return nil
}
