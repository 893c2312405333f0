package mockapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/agrilink-hq/agrilink-client/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	tokenSecret = "agrilink-mock-secret"
	tokenTTL    = time.Hour
	pageSize    = 20
)

// NewRouter builds the mock gateway. Routes mirror the production API
// the client speaks: /api/v1/auth, /marketplace, /cart, /wishlist,
// /orders, /messages, /farms.
func NewRouter(store *Store, log *logger.Logger) http.Handler {
	h := &handlers{store: store, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", h.login)
		r.Post("/auth/register", h.register)
		r.Post("/auth/refresh", h.refresh)
		r.Post("/auth/logout", h.noContentOK)
		r.Post("/auth/password-reset/request", h.noContentOK)
		r.Post("/auth/password-reset/confirm", h.noContentOK)

		r.Get("/marketplace/listings", h.searchListings)
		r.Get("/marketplace/listings/{listingID}", h.getListing)
		r.Get("/marketplace/listings/{listingID}/reviews", h.listReviews)
		r.Get("/marketplace/categories", h.listCategories)

		r.Get("/farms/{farmerID}", h.farmProfile)
		r.Get("/farms/{farmerID}/weather", h.farmWeather)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)

			r.Post("/marketplace/listings/{listingID}/reviews", h.submitReview)

			r.Get("/cart", h.getCart)
			r.Post("/cart/items", h.addCartItem)
			r.Put("/cart/items/{listingID}", h.updateCartItem)
			r.Delete("/cart/items/{listingID}", h.removeCartItem)
			r.Delete("/cart", h.clearCart)

			r.Get("/wishlist", h.getWishlist)
			r.Post("/wishlist/{listingID}", h.addWishlistEntry)
			r.Delete("/wishlist/{listingID}", h.removeWishlistEntry)

			r.Post("/orders", h.createOrders)
			r.Get("/orders/buyer", h.listBuyerOrders)
			r.Get("/orders/seller", h.listSellerOrders)
			r.Get("/orders/{orderID}", h.getOrder)
			r.Post("/orders/{orderID}/{action}", h.transitionOrder)

			r.Get("/messages/conversations", h.listConversations)
			r.Get("/messages/conversations/{conversationID}", h.listMessages)
			r.Post("/messages/conversations/{conversationID}", h.sendMessage)
			r.Post("/messages/conversations", h.startConversation)
			r.Get("/messages/unread-count", h.unreadCount)
		})
	})

	return r
}

type handlers struct {
	store *Store
	log   *logger.Logger
}

type ctxUserKey struct{}

func (h *handlers) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.log != nil {
			ctx := h.log.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))
			h.log.Debug(h.log.WithEndpoint(ctx, r.URL.Path), r.Method+" "+r.URL.Path)
		}
		next.ServeHTTP(w, r)
	})
}

func (h *handlers) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
			return
		}
		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(strings.TrimPrefix(header, "Bearer "), claims, func(*jwt.Token) (any, error) {
			return []byte(tokenSecret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
			return
		}
		sub, err := claims.GetSubject()
		if err != nil || sub == "" {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "token has no subject")
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), sub)))
	})
}

func (h *handlers) noContentOK(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, struct{}{})
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "malformed login body")
		return
	}

	h.store.mu.Lock()
	account := h.store.userByEmail(body.Email)
	h.store.mu.Unlock()
	if account == nil || account.Password != body.Password {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid email or password")
		return
	}

	token, err := signToken(account.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "token signing failed")
		return
	}
	writeSuccess(w, map[string]any{
		"accessToken":  token,
		"refreshToken": "refresh-" + uuid.NewString(),
		"user": map[string]string{
			"id":    account.ID,
			"name":  account.Name,
			"email": account.Email,
			"role":  account.Role,
		},
	})
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "malformed registration body")
		return
	}

	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	if h.store.userByEmail(body.Email) != nil {
		writeError(w, http.StatusConflict, "CONFLICT", "email already registered")
		return
	}
	account := &user{
		ID:       "u-" + uuid.NewString(),
		Name:     body.Name,
		Email:    strings.ToLower(strings.TrimSpace(body.Email)),
		Password: body.Password,
		Role:     body.Role,
	}
	h.store.users[account.Email] = account
	writeCreated(w, map[string]string{
		"id":    account.ID,
		"name":  account.Name,
		"email": account.Email,
		"role":  account.Role,
	})
}

func (h *handlers) refresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := decodeBody(r, &body); err != nil || !strings.HasPrefix(body.RefreshToken, "refresh-") {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid refresh token")
		return
	}
	// The mock does not track refresh token ownership; hand back a demo
	// session so local flows keep working.
	h.store.mu.Lock()
	account := h.store.userByEmail("demo@agrilink.test")
	h.store.mu.Unlock()
	token, err := signToken(account.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "token signing failed")
		return
	}
	writeSuccess(w, map[string]any{
		"accessToken":  token,
		"refreshToken": "refresh-" + uuid.NewString(),
	})
}

func (h *handlers) searchListings(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := strings.ToLower(query.Get("q"))
	category := query.Get("category")
	organicOnly := query.Get("organic") == "true"
	maxPrice, hasMaxPrice := decimal.Zero, false
	if raw := query.Get("maxPrice"); raw != "" {
		if parsed, err := decimal.NewFromString(raw); err == nil {
			maxPrice, hasMaxPrice = parsed, true
		}
	}

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	var matched []*listing
	for _, item := range sortedByNewest(h.store.listings) {
		if q != "" && !strings.Contains(strings.ToLower(item.Title), q) &&
			!strings.Contains(strings.ToLower(item.Description), q) {
			continue
		}
		if category != "" && item.Category != category {
			continue
		}
		if organicOnly && !item.Organic {
			continue
		}
		if hasMaxPrice && item.Price.GreaterThan(maxPrice) {
			continue
		}
		matched = append(matched, item)
	}

	page, size := pageParams(r)
	start := page * size
	if start > len(matched) {
		start = len(matched)
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}
	content := matched[start:end]
	if content == nil {
		content = []*listing{}
	}

	totalPages := (len(matched) + size - 1) / size
	writePage(w, content, totalPages, int64(len(matched)))
}

func (h *handlers) getListing(w http.ResponseWriter, r *http.Request) {
	h.store.mu.Lock()
	item := h.store.findListing(chi.URLParam(r, "listingID"))
	h.store.mu.Unlock()
	if item == nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no such listing")
		return
	}
	writeSuccess(w, item)
}

func (h *handlers) listCategories(w http.ResponseWriter, _ *http.Request) {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	counts := map[string]int{}
	for _, item := range h.store.listings {
		counts[item.Category]++
	}
	var out []map[string]any
	for _, slug := range categories {
		out = append(out, map[string]any{
			"slug":         slug,
			"name":         strings.ToUpper(slug[:1]) + slug[1:],
			"listingCount": counts[slug],
		})
	}
	writeSuccess(w, out)
}

func (h *handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "listingID")
	h.store.mu.Lock()
	reviews := h.store.reviews[listingID]
	h.store.mu.Unlock()
	if reviews == nil {
		reviews = []review{}
	}
	writeWrappedPage(w, reviews, 1, int64(len(reviews)))
}

func (h *handlers) submitReview(w http.ResponseWriter, r *http.Request) {
	listingID := chi.URLParam(r, "listingID")
	var body struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := decodeBody(r, &body); err != nil || body.Rating < 1 || body.Rating > 5 {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "rating must be between 1 and 5")
		return
	}

	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	item := h.store.findListing(listingID)
	if item == nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no such listing")
		return
	}
	author := h.store.userByID(userFrom(r.Context()))
	stored := review{
		ID:         uuid.NewString(),
		ListingID:  listingID,
		AuthorID:   author.ID,
		AuthorName: author.Name,
		Rating:     body.Rating,
		Comment:    body.Comment,
		CreatedAt:  time.Now(),
	}
	h.store.reviews[listingID] = append(h.store.reviews[listingID], stored)
	item.ReviewCount++
	writeCreated(w, stored)
}

func signToken(userID string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(tokenSecret))
}

func pageParams(r *http.Request) (page, size int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 0 {
		page = 0
	}
	size, _ = strconv.Atoi(r.URL.Query().Get("size"))
	if size <= 0 || size > 100 {
		size = pageSize
	}
	return page, size
}
