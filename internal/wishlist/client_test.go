package wishlist

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

func TestAddItemPostsListingPath(t *testing.T) {
	var captured *http.Request
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		captured = req
		return jsonResponse(http.StatusCreated, `{"success":true,"data":{}}`), nil
	})

	require.NoError(t, client.AddItem(context.Background(), "L1"))
	require.Equal(t, http.MethodPost, captured.Method)
	require.Equal(t, "/api/v1/wishlist/L1", captured.URL.Path)
}

func TestAddItemTreatsConflictAsSaved(t *testing.T) {
	client := newTestClient(t, func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusConflict, `{"success":false,"message":"already wishlisted"}`), nil
	})
	require.NoError(t, client.AddItem(context.Background(), "L1"))
}

func TestAddItemRequiresListingID(t *testing.T) {
	client := newTestClient(t, func(*http.Request) (*http.Response, error) {
		t.Fatal("unexpected network call")
		return nil, nil
	})
	err := client.AddItem(context.Background(), "")
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestRemoveToleratesMissingEntry(t *testing.T) {
	client := newTestClient(t, func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusNotFound, `{"success":false,"message":"not saved"}`), nil
	})
	require.NoError(t, client.Remove(context.Background(), "L404"))
}

func TestListDecodesEntries(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		require.Equal(t, "/api/v1/wishlist", req.URL.Path)
		return jsonResponse(http.StatusOK, `{
			"success": true,
			"data": [
				{"listingId":"L1","listingTitle":"Heirloom Tomatoes","price":"4.50","unit":"kg"},
				{"listingId":"L2","listingTitle":"Raw Honey","price":"12","unit":"jar"}
			]
		}`), nil
	})

	entries, err := client.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "Heirloom Tomatoes", entries[0].ListingTitle)
}

func TestListNormalizesNullData(t *testing.T) {
	client := newTestClient(t, func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"success":true,"data":null}`), nil
	})

	entries, err := client.List(context.Background())
	require.NoError(t, err)
	require.NotNil(t, entries)
	require.Empty(t, entries)
}

func TestContains(t *testing.T) {
	client := newTestClient(t, func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"success":true,"data":[{"listingId":"L1"}]}`), nil
	})

	saved, err := client.Contains(context.Background(), "L1")
	require.NoError(t, err)
	require.True(t, saved)

	saved, err = client.Contains(context.Background(), "L2")
	require.NoError(t, err)
	require.False(t, saved)
}
