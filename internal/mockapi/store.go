package mockapi

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store is the in-memory world the mock backend serves. It exists so
// the CLI and the client tests have a realistic backend to talk to
// without any infrastructure.
type Store struct {
	mu sync.Mutex

	users         map[string]*user
	listings      []*listing
	reviews       map[string][]review
	carts         map[string]*serverCart
	wishlists     map[string][]wishlistEntry
	orders        map[string][]*order
	conversations map[string][]*conversation
	seenIdemKeys  map[string]bool
}

type user struct {
	ID       string
	Name     string
	Email    string
	Password string
	Role     string
}

type listing struct {
	ID                string          `json:"id"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	Price             decimal.Decimal `json:"price"`
	Unit              string          `json:"unit"`
	ImageURL          string          `json:"imageUrl"`
	Category          string          `json:"category"`
	SellerID          string          `json:"sellerId"`
	SellerName        string          `json:"sellerName"`
	AvailableQuantity int             `json:"availableQuantity"`
	Organic           bool            `json:"organic"`
	Location          string          `json:"location"`
	AverageRating     float64         `json:"averageRating"`
	ReviewCount       int             `json:"reviewCount"`
	CreatedAt         time.Time       `json:"createdAt"`
}

type review struct {
	ID         string    `json:"id"`
	ListingID  string    `json:"listingId"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"createdAt"`
}

type cartItem struct {
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

type serverCart struct {
	Items       []cartItem      `json:"items"`
	TotalItems  int             `json:"totalItems"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

type wishlistEntry struct {
	ListingID    string          `json:"listingId"`
	ListingTitle string          `json:"listingTitle"`
	Price        decimal.Decimal `json:"price"`
	Unit         string          `json:"unit"`
	ImageURL     string          `json:"imageUrl,omitempty"`
	SellerID     string          `json:"sellerId"`
	SellerName   string          `json:"sellerName"`
	AddedAt      time.Time       `json:"addedAt"`
}

type orderLine struct {
	ListingID    string          `json:"listingId"`
	ListingTitle string          `json:"listingTitle"`
	Unit         string          `json:"unit"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

type order struct {
	ID           string          `json:"id"`
	BuyerID      string          `json:"buyerId"`
	SellerID     string          `json:"sellerId"`
	SellerName   string          `json:"sellerName"`
	Status       string          `json:"status"`
	Lines        []orderLine     `json:"lines"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	DeliveryNote string          `json:"deliveryNote,omitempty"`
	Address      string          `json:"address"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

type message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	Body           string    `json:"body"`
	Read           bool      `json:"read"`
	SentAt         time.Time `json:"sentAt"`
}

type conversation struct {
	ID           string    `json:"id"`
	ListingID    string    `json:"listingId,omitempty"`
	ListingTitle string    `json:"listingTitle,omitempty"`
	PeerID       string    `json:"peerId"`
	PeerName     string    `json:"peerName"`
	Messages     []message `json:"-"`
}

var categories = []string{"vegetables", "fruits", "dairy", "grains", "honey", "herbs"}

// NewStore seeds a deterministic marketplace: a handful of farms, a
// few dozen listings, and one known buyer account for manual testing.
func NewStore(seed uint64) *Store {
	faker := gofakeit.New(seed)

	s := &Store{
		users:         map[string]*user{},
		reviews:       map[string][]review{},
		carts:         map[string]*serverCart{},
		wishlists:     map[string][]wishlistEntry{},
		orders:        map[string][]*order{},
		conversations: map[string][]*conversation{},
		seenIdemKeys:  map[string]bool{},
	}

	buyer := &user{
		ID:       "u-demo",
		Name:     "Demo Buyer",
		Email:    "demo@agrilink.test",
		Password: "demo-password",
		Role:     "BUYER",
	}
	s.users[buyer.Email] = buyer

	type farmSeed struct {
		id   string
		name string
	}
	var farms []farmSeed
	for i := 0; i < 6; i++ {
		farm := farmSeed{
			id:   fmt.Sprintf("F%d", i+1),
			name: faker.Company() + " Farm",
		}
		farms = append(farms, farm)
		seller := &user{
			ID:       farm.id,
			Name:     farm.name,
			Email:    fmt.Sprintf("farm%d@agrilink.test", i+1),
			Password: "demo-password",
			Role:     "FARMER",
		}
		s.users[seller.Email] = seller
	}

	units := []string{"kg", "bunch", "litre", "jar", "dozen"}
	for i := 0; i < 48; i++ {
		farm := farms[i%len(farms)]
		price := decimal.NewFromFloat(faker.Price(1, 40)).Round(2)
		item := &listing{
			ID:                fmt.Sprintf("L%d", i+1),
			Title:             faker.Vegetable(),
			Description:       faker.Sentence(12),
			Price:             price,
			Unit:              units[i%len(units)],
			ImageURL:          fmt.Sprintf("https://img.agrilink.test/listings/L%d.jpg", i+1),
			Category:          categories[i%len(categories)],
			SellerID:          farm.id,
			SellerName:        farm.name,
			AvailableQuantity: faker.Number(5, 200),
			Organic:           i%3 == 0,
			Location:          faker.City(),
			AverageRating:     float64(faker.Number(30, 50)) / 10,
			ReviewCount:       faker.Number(0, 40),
			CreatedAt:         time.Now().Add(-time.Duration(faker.Number(1, 90)) * 24 * time.Hour),
		}
		s.listings = append(s.listings, item)

		for r := 0; r < 2; r++ {
			s.reviews[item.ID] = append(s.reviews[item.ID], review{
				ID:         uuid.NewString(),
				ListingID:  item.ID,
				AuthorID:   uuid.NewString(),
				AuthorName: faker.Name(),
				Rating:     faker.Number(3, 5),
				Comment:    faker.Sentence(8),
				CreatedAt:  time.Now().Add(-time.Duration(faker.Number(1, 30)) * 24 * time.Hour),
			})
		}
	}

	return s
}

func (s *Store) findListing(id string) *listing {
	for _, item := range s.listings {
		if item.ID == id {
			return item
		}
	}
	return nil
}

func (s *Store) userByEmail(email string) *user {
	return s.users[strings.ToLower(strings.TrimSpace(email))]
}

func (s *Store) userByID(id string) *user {
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func recomputeCart(cart *serverCart) {
	cart.TotalItems = 0
	cart.TotalAmount = decimal.Zero
	for i := range cart.Items {
		cart.Items[i].Subtotal = cart.Items[i].UnitPrice.Mul(decimal.NewFromInt(int64(cart.Items[i].Quantity)))
		cart.TotalItems += cart.Items[i].Quantity
		cart.TotalAmount = cart.TotalAmount.Add(cart.Items[i].Subtotal)
	}
}

func sortedByNewest(items []*listing) []*listing {
	out := make([]*listing, len(items))
	copy(out, items)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}
