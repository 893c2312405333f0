package messaging

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

func TestConversationsDecodeAndNormalize(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		require.Equal(t, "/api/v1/messages/conversations", req.URL.Path)
		return jsonResponse(http.StatusOK, `{
			"success": true,
			"data": [{"id":"C1","peerName":"Mama Neema Farm","unreadCount":2}]
		}`), nil
	})

	conversations, err := client.Conversations(context.Background())
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	require.Equal(t, 2, conversations[0].UnreadCount)
}

func TestSendValidatesBody(t *testing.T) {
	client := newTestClient(t, func(*http.Request) (*http.Response, error) {
		t.Fatal("unexpected network call")
		return nil, nil
	})

	_, err := client.Send(context.Background(), "C1", "   ")
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	_, err = client.Send(context.Background(), "", "hello")
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestSendPostsToConversation(t *testing.T) {
	var captured *http.Request
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		captured = req
		return jsonResponse(http.StatusCreated, `{"success":true,"data":{"id":"M1","conversationId":"C1","body":"is this still available?"}}`), nil
	})

	msg, err := client.Send(context.Background(), "C1", "is this still available?")
	require.NoError(t, err)
	require.Equal(t, "/api/v1/messages/conversations/C1", captured.URL.Path)
	require.Equal(t, "M1", msg.ID)
}

func TestStartRequiresSellerAndBody(t *testing.T) {
	client := newTestClient(t, func(*http.Request) (*http.Response, error) {
		t.Fatal("unexpected network call")
		return nil, nil
	})

	_, err := client.Start(context.Background(), "", "L1", "hi")
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	_, err = client.Start(context.Background(), "S1", "L1", "")
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestUnreadCount(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		require.Equal(t, "/api/v1/messages/unread-count", req.URL.Path)
		return jsonResponse(http.StatusOK, `{"success":true,"data":{"count":7}}`), nil
	})

	count, err := client.UnreadCount(context.Background())
	require.NoError(t, err)
	require.Equal(t, 7, count)
}
