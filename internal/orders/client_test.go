package orders

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	pkgerrors "github.com/agrilink-hq/agrilink-client/pkg/errors"
	"github.com/agrilink-hq/agrilink-client/pkg/rest"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func newTestClient(t *testing.T, rt roundTripFunc) *Client {
	t.Helper()
	api, err := rest.NewClient("http://api.test/api/v1", rest.WithHTTPClient(&http.Client{Transport: rt}))
	require.NoError(t, err)
	client, err := NewClient(api)
	require.NoError(t, err)
	return client
}

func TestCreateValidatesBeforeNetwork(t *testing.T) {
	client := newTestClient(t, func(*http.Request) (*http.Response, error) {
		t.Fatal("unexpected network call")
		return nil, nil
	})

	_, err := client.Create(context.Background(), CreateInput{Address: "abc"})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestCreateCarriesIdempotencyKeyAndSplitsPerSeller(t *testing.T) {
	var captured *http.Request
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		captured = req
		return jsonResponse(http.StatusCreated, `{
			"success": true,
			"data": [
				{"id":"O1","sellerId":"S1","status":"PENDING","totalAmount":"150"},
				{"id":"O2","sellerId":"S2","status":"PENDING","totalAmount":"40"}
			]
		}`), nil
	})

	placed, err := client.Create(context.Background(), CreateInput{
		Address: "12 Market Road, Arusha",
		Phone:   "+255700000001",
	})
	require.NoError(t, err)
	require.Equal(t, "/api/v1/orders", captured.URL.Path)
	require.NotEmpty(t, captured.Header.Get("Idempotency-Key"))
	require.Len(t, placed, 2)
	require.Equal(t, StatusPending, placed[0].Status)
}

func TestListAsBuyerSetsPageParam(t *testing.T) {
	var captured *http.Request
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		captured = req
		return jsonResponse(http.StatusOK, `{"content":[],"totalPages":0,"totalElements":0}`), nil
	})

	_, err := client.ListAsBuyer(context.Background(), 3)
	require.NoError(t, err)
	require.Equal(t, "/api/v1/orders/buyer", captured.URL.Path)
	require.Equal(t, "3", captured.URL.Query().Get("page"))
}

func TestTransitionsPostToActionPaths(t *testing.T) {
	tests := []struct {
		name string
		call func(*Client, context.Context, string) (Order, error)
		path string
	}{
		{"confirm", (*Client).Confirm, "/api/v1/orders/O1/confirm"},
		{"ship", (*Client).Ship, "/api/v1/orders/O1/ship"},
		{"deliver", (*Client).Deliver, "/api/v1/orders/O1/deliver"},
		{"cancel", (*Client).Cancel, "/api/v1/orders/O1/cancel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured *http.Request
			client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
				captured = req
				return jsonResponse(http.StatusOK, `{"success":true,"data":{"id":"O1","status":"CONFIRMED"}}`), nil
			})

			order, err := tt.call(client, context.Background(), "O1")
			require.NoError(t, err)
			require.Equal(t, http.MethodPost, captured.Method)
			require.Equal(t, tt.path, captured.URL.Path)
			require.Equal(t, "O1", order.ID)
		})
	}
}

func TestTransitionRequiresOrderID(t *testing.T) {
	client := newTestClient(t, func(*http.Request) (*http.Response, error) {
		t.Fatal("unexpected network call")
		return nil, nil
	})
	_, err := client.Confirm(context.Background(), "")
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestInvalidTransitionSurfacesConflict(t *testing.T) {
	client := newTestClient(t, func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusConflict, `{"success":false,"message":"order already shipped"}`), nil
	})

	_, err := client.Cancel(context.Background(), "O1")
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))
	require.Contains(t, err.Error(), "order already shipped")
}
