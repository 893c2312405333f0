package messaging

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/agrilink-hq/agrilink-client/pkg/envelope"
	pkgerrors "github.com/agrilink-hq/agrilink-client/pkg/errors"
	"github.com/agrilink-hq/agrilink-client/pkg/rest"
)

// Conversation is one buyer-seller thread, usually rooted at a listing.
type Conversation struct {
	ID            string    `json:"id"`
	ListingID     string    `json:"listingId,omitempty"`
	ListingTitle  string    `json:"listingTitle,omitempty"`
	PeerID        string    `json:"peerId"`
	PeerName      string    `json:"peerName"`
	LastMessage   string    `json:"lastMessage"`
	LastMessageAt time.Time `json:"lastMessageAt"`
	UnreadCount   int       `json:"unreadCount"`
}

// Message is one entry in a conversation.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	Body           string    `json:"body"`
	Read           bool      `json:"read"`
	SentAt         time.Time `json:"sentAt"`
}

// Client wraps the messaging service endpoints.
type Client struct {
	api *rest.Client
}

func NewClient(api *rest.Client) (*Client, error) {
	if api == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rest client is required")
	}
	return &Client{api: api}, nil
}

// Conversations lists the caller's threads, most recent first.
func (c *Client) Conversations(ctx context.Context) ([]Conversation, error) {
	raw, err := c.api.Get(ctx, "messages/conversations", nil)
	if err != nil {
		return nil, err
	}
	conversations, err := envelope.DecodeData[[]Conversation](raw)
	if err != nil {
		return nil, err
	}
	if conversations == nil {
		conversations = []Conversation{}
	}
	return conversations, nil
}

// Messages pages through one conversation, oldest first within the page.
func (c *Client) Messages(ctx context.Context, conversationID string, page int) (envelope.Page[Message], error) {
	if conversationID == "" {
		return envelope.Page[Message]{}, pkgerrors.New(pkgerrors.CodeValidation, "conversation id is required")
	}
	values := url.Values{}
	if page > 0 {
		values.Set("page", strconv.Itoa(page))
	}
	raw, err := c.api.Get(ctx, fmt.Sprintf("messages/conversations/%s", conversationID), values)
	if err != nil {
		return envelope.Page[Message]{}, err
	}
	return envelope.DecodePage[Message](raw)
}

// Send posts a message into an existing conversation.
func (c *Client) Send(ctx context.Context, conversationID, body string) (Message, error) {
	if conversationID == "" {
		return Message{}, pkgerrors.New(pkgerrors.CodeValidation, "conversation id is required")
	}
	if strings.TrimSpace(body) == "" {
		return Message{}, pkgerrors.New(pkgerrors.CodeValidation, "message body is required")
	}
	payload := map[string]string{"body": body}
	raw, err := c.api.Post(ctx, fmt.Sprintf("messages/conversations/%s", conversationID), payload)
	if err != nil {
		return Message{}, err
	}
	return envelope.DecodeData[Message](raw)
}

// Start opens (or reuses) a conversation with a seller about a listing.
func (c *Client) Start(ctx context.Context, sellerID, listingID, body string) (Conversation, error) {
	if sellerID == "" {
		return Conversation{}, pkgerrors.New(pkgerrors.CodeValidation, "seller id is required")
	}
	if strings.TrimSpace(body) == "" {
		return Conversation{}, pkgerrors.New(pkgerrors.CodeValidation, "message body is required")
	}
	payload := map[string]string{"sellerId": sellerID, "listingId": listingID, "body": body}
	raw, err := c.api.Post(ctx, "messages/conversations", payload)
	if err != nil {
		return Conversation{}, err
	}
	return envelope.DecodeData[Conversation](raw)
}

// UnreadCount returns the inbox badge count.
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	raw, err := c.api.Get(ctx, "messages/unread-count", nil)
	if err != nil {
		return 0, err
	}
	count, err := envelope.DecodeData[struct {
		Count int `json:"count"`
	}](raw)
	if err != nil {
		return 0, err
	}
	return count.Count, nil
}
