package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	pkgerrors "github.com/agrilink-hq/agrilink-client/pkg/errors"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

type staticTokens string

func (s staticTokens) AccessToken(context.Context) string { return string(s) }

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestClientSetsHeadersAndBuildsURL(t *testing.T) {
	var captured *http.Request
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		captured = req
		return jsonResponse(http.StatusOK, `{"success":true,"data":{}}`), nil
	})

	client, err := NewClient("http://api.test/api/v1/",
		WithHTTPClient(&http.Client{Transport: rt}),
		WithTokenSource(staticTokens("tok-abc")),
		WithUserAgent("agrilink-test/0.1"),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	query := url.Values{"page": []string{"2"}}
	if _, err := client.Get(context.Background(), "/marketplace/listings", query); err != nil {
		t.Fatalf("get: %v", err)
	}

	if captured.URL.String() != "http://api.test/api/v1/marketplace/listings?page=2" {
		t.Fatalf("unexpected URL %q", captured.URL.String())
	}
	if got := captured.Header.Get("Authorization"); got != "Bearer tok-abc" {
		t.Fatalf("unexpected auth header %q", got)
	}
	if captured.Header.Get("X-Request-ID") == "" {
		t.Fatalf("request id header missing")
	}
	if got := captured.Header.Get("User-Agent"); got != "agrilink-test/0.1" {
		t.Fatalf("unexpected user agent %q", got)
	}
}

func TestClientPostMarshalsBodyAndIdempotencyKey(t *testing.T) {
	var captured *http.Request
	var capturedBody map[string]any
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		captured = req
		raw, err := io.ReadAll(req.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		if err := json.Unmarshal(raw, &capturedBody); err != nil {
			t.Fatalf("unmarshal body: %v", err)
		}
		return jsonResponse(http.StatusCreated, `{"success":true,"data":{}}`), nil
	})

	client, err := NewClient("http://api.test", WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	payload := map[string]any{"listingId": "L1", "quantity": 2}
	if _, err := client.PostIdempotent(context.Background(), "cart/items", payload, "key-1"); err != nil {
		t.Fatalf("post: %v", err)
	}

	if captured.Header.Get("Content-Type") != "application/json" {
		t.Fatalf("content type missing")
	}
	if captured.Header.Get("Idempotency-Key") != "key-1" {
		t.Fatalf("idempotency key missing")
	}
	if capturedBody["listingId"] != "L1" {
		t.Fatalf("unexpected body %v", capturedBody)
	}
}

func TestClientMapsErrorStatuses(t *testing.T) {
	tests := []struct {
		status int
		body   string
		code   pkgerrors.Code
		msg    string
	}{
		{http.StatusUnauthorized, `{"success":false,"message":"token expired"}`, pkgerrors.CodeUnauthorized, "token expired"},
		{http.StatusNotFound, `{"error":{"code":"NOT_FOUND","message":"no such listing"}}`, pkgerrors.CodeNotFound, "no such listing"},
		{http.StatusBadGateway, ``, pkgerrors.CodeDependency, "Bad Gateway"},
	}

	for _, tt := range tests {
		rt := roundTripFunc(func(*http.Request) (*http.Response, error) {
			return jsonResponse(tt.status, tt.body), nil
		})
		client, err := NewClient("http://api.test", WithHTTPClient(&http.Client{Transport: rt}))
		if err != nil {
			t.Fatalf("new client: %v", err)
		}

		_, err = client.Get(context.Background(), "/orders", nil)
		if err == nil {
			t.Fatalf("status %d expected error", tt.status)
		}
		if got := pkgerrors.CodeOf(err); got != tt.code {
			t.Fatalf("status %d expected code %s got %s", tt.status, tt.code, got)
		}
		if !strings.Contains(err.Error(), tt.msg) {
			t.Fatalf("status %d expected message %q in %q", tt.status, tt.msg, err.Error())
		}
	}
}

func TestClientRejectsEmptyBaseURL(t *testing.T) {
	if _, err := NewClient("   "); err == nil {
		t.Fatal("expected error for blank base URL")
	}
}

func TestClientTransportFailure(t *testing.T) {
	rt := roundTripFunc(func(*http.Request) (*http.Response, error) {
		return nil, io.ErrUnexpectedEOF
	})
	client, err := NewClient("http://api.test", WithHTTPClient(&http.Client{Transport: rt}))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.Delete(context.Background(), "/wishlist/L1")
	if err == nil {
		t.Fatal("expected transport error")
	}
	if pkgerrors.CodeOf(err) != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency code, got %s", pkgerrors.CodeOf(err))
	}
}
