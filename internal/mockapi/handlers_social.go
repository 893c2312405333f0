package mockapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (h *handlers) listConversations(w http.ResponseWriter, r *http.Request) {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	conversations := h.store.conversations[userFrom(r.Context())]
	out := []map[string]any{}
	for _, thread := range conversations {
		view := map[string]any{
			"id":          thread.ID,
			"peerId":      thread.PeerID,
			"peerName":    thread.PeerName,
			"unreadCount": 0,
		}
		if thread.ListingID != "" {
			view["listingId"] = thread.ListingID
			view["listingTitle"] = thread.ListingTitle
		}
		unread := 0
		for _, msg := range thread.Messages {
			if !msg.Read && msg.SenderID == thread.PeerID {
				unread++
			}
		}
		view["unreadCount"] = unread
		if n := len(thread.Messages); n > 0 {
			view["lastMessage"] = thread.Messages[n-1].Body
			view["lastMessageAt"] = thread.Messages[n-1].SentAt
		}
		out = append(out, view)
	}
	writeSuccess(w, out)
}

func (h *handlers) listMessages(w http.ResponseWriter, r *http.Request) {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	thread := h.findConversation(userFrom(r.Context()), chi.URLParam(r, "conversationID"))
	if thread == nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no such conversation")
		return
	}
	for i := range thread.Messages {
		thread.Messages[i].Read = true
	}
	writeWrappedPage(w, thread.Messages, 1, int64(len(thread.Messages)))
}

func (h *handlers) sendMessage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Body string `json:"body"`
	}
	if err := decodeBody(r, &body); err != nil || strings.TrimSpace(body.Body) == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "a message body is required")
		return
	}

	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	userID := userFrom(r.Context())
	thread := h.findConversation(userID, chi.URLParam(r, "conversationID"))
	if thread == nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no such conversation")
		return
	}
	sent := message{
		ID:             uuid.NewString(),
		ConversationID: thread.ID,
		SenderID:       userID,
		Body:           body.Body,
		Read:           true,
		SentAt:         time.Now(),
	}
	thread.Messages = append(thread.Messages, sent)
	writeCreated(w, sent)
}

func (h *handlers) startConversation(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SellerID  string `json:"sellerId"`
		ListingID string `json:"listingId"`
		Body      string `json:"body"`
	}
	if err := decodeBody(r, &body); err != nil || body.SellerID == "" || strings.TrimSpace(body.Body) == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "sellerId and a message body are required")
		return
	}

	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	userID := userFrom(r.Context())

	seller := h.store.userByID(body.SellerID)
	if seller == nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no such seller")
		return
	}

	// Reuse an existing thread with the same seller and listing.
	var thread *conversation
	for _, candidate := range h.store.conversations[userID] {
		if candidate.PeerID == body.SellerID && candidate.ListingID == body.ListingID {
			thread = candidate
			break
		}
	}
	if thread == nil {
		thread = &conversation{
			ID:       "C-" + uuid.NewString()[:8],
			PeerID:   seller.ID,
			PeerName: seller.Name,
		}
		if item := h.store.findListing(body.ListingID); item != nil {
			thread.ListingID = item.ID
			thread.ListingTitle = item.Title
		}
		h.store.conversations[userID] = append(h.store.conversations[userID], thread)
	}
	thread.Messages = append(thread.Messages, message{
		ID:             uuid.NewString(),
		ConversationID: thread.ID,
		SenderID:       userID,
		Body:           body.Body,
		Read:           true,
		SentAt:         time.Now(),
	})

	view := map[string]any{
		"id":            thread.ID,
		"peerId":        thread.PeerID,
		"peerName":      thread.PeerName,
		"lastMessage":   body.Body,
		"lastMessageAt": time.Now(),
		"unreadCount":   0,
	}
	if thread.ListingID != "" {
		view["listingId"] = thread.ListingID
		view["listingTitle"] = thread.ListingTitle
	}
	writeCreated(w, view)
}

func (h *handlers) unreadCount(w http.ResponseWriter, r *http.Request) {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	total := 0
	for _, thread := range h.store.conversations[userFrom(r.Context())] {
		for _, msg := range thread.Messages {
			if !msg.Read && msg.SenderID == thread.PeerID {
				total++
			}
		}
	}
	writeSuccess(w, map[string]int{"count": total})
}

func (h *handlers) findConversation(userID, conversationID string) *conversation {
	for _, candidate := range h.store.conversations[userID] {
		if candidate.ID == conversationID {
			return candidate
		}
	}
	return nil
}

func (h *handlers) farmProfile(w http.ResponseWriter, r *http.Request) {
	farmerID := chi.URLParam(r, "farmerID")

	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	seller := h.store.userByID(farmerID)
	if seller == nil || seller.Role != "FARMER" {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no such farm")
		return
	}

	listingCount := 0
	ratingSum, ratingN := 0.0, 0
	location := ""
	for _, item := range h.store.listings {
		if item.SellerID != farmerID {
			continue
		}
		listingCount++
		ratingSum += item.AverageRating
		ratingN++
		location = item.Location
	}
	average := 0.0
	if ratingN > 0 {
		average = ratingSum / float64(ratingN)
	}

	writeSuccess(w, map[string]any{
		"id":            seller.ID,
		"farmName":      seller.Name,
		"ownerName":     seller.Name,
		"location":      location,
		"verified":      listingCount > 5,
		"averageRating": average,
		"listingCount":  listingCount,
		"memberSince":   time.Now().Add(-400 * 24 * time.Hour),
	})
}

func (h *handlers) farmWeather(w http.ResponseWriter, r *http.Request) {
	farmerID := chi.URLParam(r, "farmerID")

	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	seller := h.store.userByID(farmerID)
	if seller == nil || seller.Role != "FARMER" {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no such farm")
		return
	}

	location := "Upcountry"
	for _, item := range h.store.listings {
		if item.SellerID == farmerID {
			location = item.Location
			break
		}
	}
	writeSuccess(w, map[string]any{
		"location":    location,
		"summary":     "partly cloudy with afternoon showers",
		"tempMinC":    16.0,
		"tempMaxC":    27.0,
		"rainChance":  0.45,
		"advisory":    "good window for transplanting before the rain",
		"generatedAt": time.Now(),
	})
}
