package farm

import (
	"context"
	"fmt"
	"time"

	"github.com/agrilink-hq/agrilink-client/pkg/envelope"
	pkgerrors "github.com/agrilink-hq/agrilink-client/pkg/errors"
	"github.com/agrilink-hq/agrilink-client/pkg/rest"
)

// Profile is a farmer's public storefront page.
type Profile struct {
	ID            string    `json:"id"`
	FarmName      string    `json:"farmName"`
	OwnerName     string    `json:"ownerName"`
	Bio           string    `json:"bio,omitempty"`
	Location      string    `json:"location"`
	AvatarURL     string    `json:"avatarUrl,omitempty"`
	Verified      bool      `json:"verified"`
	AverageRating float64   `json:"averageRating"`
	ListingCount  int       `json:"listingCount"`
	MemberSince   time.Time `json:"memberSince"`
}

// WeatherAdvisory is the planting/harvest guidance panel shown on a
// farm dashboard.
type WeatherAdvisory struct {
	Location    string    `json:"location"`
	Summary     string    `json:"summary"`
	TempMinC    float64   `json:"tempMinC"`
	TempMaxC    float64   `json:"tempMaxC"`
	RainChance  float64   `json:"rainChance"`
	Advisory    string    `json:"advisory"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Client wraps the farm profile and advisory endpoints.
type Client struct {
	api *rest.Client
}

func NewClient(api *rest.Client) (*Client, error) {
	if api == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rest client is required")
	}
	return &Client{api: api}, nil
}

// Profile fetches a farmer's public profile.
func (c *Client) Profile(ctx context.Context, farmerID string) (Profile, error) {
	if farmerID == "" {
		return Profile{}, pkgerrors.New(pkgerrors.CodeValidation, "farmer id is required")
	}
	raw, err := c.api.Get(ctx, fmt.Sprintf("farms/%s", farmerID), nil)
	if err != nil {
		return Profile{}, err
	}
	return envelope.DecodeData[Profile](raw)
}

// Weather fetches the advisory for a farm's registered location.
func (c *Client) Weather(ctx context.Context, farmerID string) (WeatherAdvisory, error) {
	if farmerID == "" {
		return WeatherAdvisory{}, pkgerrors.New(pkgerrors.CodeValidation, "farmer id is required")
	}
	raw, err := c.api.Get(ctx, fmt.Sprintf("farms/%s/weather", farmerID), nil)
	if err != nil {
		return WeatherAdvisory{}, err
	}
	return envelope.DecodeData[WeatherAdvisory](raw)
}
