package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/agrilink-hq/agrilink-client/internal/guest"
	"github.com/agrilink-hq/agrilink-client/internal/session"
	pkgerrors "github.com/agrilink-hq/agrilink-client/pkg/errors"
	"github.com/agrilink-hq/agrilink-client/pkg/rest"
	"github.com/golang-jwt/jwt/v5"
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

type countingMigrator struct {
	runs   int
	report guest.Report
}

func (m *countingMigrator) Run(context.Context) guest.Report {
	m.runs++
	return m.report
}

func signedToken(t *testing.T, expiry time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u-1",
		ExpiresAt: jwt.NewNumericDate(expiry),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func newTestService(t *testing.T, rt roundTripFunc, migrator Migrator) (*Service, *session.Manager) {
	t.Helper()
	api, err := rest.NewClient("http://api.test/api/v1", rest.WithHTTPClient(&http.Client{Transport: rt}))
	require.NoError(t, err)
	sessions, err := session.NewManager(guest.NewMemoryStore(), nil)
	require.NoError(t, err)
	svc, err := NewService(ServiceParams{API: api, Sessions: sessions, Migrator: migrator})
	require.NoError(t, err)
	return svc, sessions
}

func TestLoginStoresSessionAndRunsMigrationOnce(t *testing.T) {
	expiry := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signedToken(t, expiry)

	migrator := &countingMigrator{report: guest.Report{CartAttempted: 1, CartMigrated: 1}}
	svc, sessions := newTestService(t, func(req *http.Request) (*http.Response, error) {
		require.Equal(t, "/api/v1/auth/login", req.URL.Path)
		body := fmt.Sprintf(`{
			"success": true,
			"data": {
				"accessToken": %q,
				"refreshToken": "refresh-1",
				"user": {"id":"u-1","name":"Ana","email":"ana@example.com","role":"BUYER"}
			}
		}`, token)
		return jsonResponse(http.StatusOK, body), nil
	}, migrator)

	current, report, err := svc.Login(context.Background(), LoginInput{Email: "ana@example.com", Password: "hunter22"})
	require.NoError(t, err)

	require.Equal(t, 1, migrator.runs)
	require.Equal(t, 1, report.CartMigrated)

	require.Equal(t, "u-1", current.UserID)
	require.True(t, current.ExpiresAt.Equal(expiry))
	require.Equal(t, "refresh-1", current.RefreshToken)

	stored := sessions.Current()
	require.NotNil(t, stored)
	require.Equal(t, token, stored.AccessToken)
}

func TestLoginValidatesInputWithoutNetwork(t *testing.T) {
	migrator := &countingMigrator{}
	svc, _ := newTestService(t, func(*http.Request) (*http.Response, error) {
		t.Fatal("unexpected network call")
		return nil, nil
	}, migrator)

	_, _, err := svc.Login(context.Background(), LoginInput{Email: "not-an-email", Password: "x"})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
	require.Zero(t, migrator.runs)
}

func TestLoginFailureSkipsMigration(t *testing.T) {
	migrator := &countingMigrator{}
	svc, sessions := newTestService(t, func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusUnauthorized, `{"success":false,"message":"bad credentials"}`), nil
	}, migrator)

	_, _, err := svc.Login(context.Background(), LoginInput{Email: "ana@example.com", Password: "wrong"})
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err))
	require.Zero(t, migrator.runs)
	require.Nil(t, sessions.Current())
}

func TestLoginWithoutMigratorStillSucceeds(t *testing.T) {
	token := signedToken(t, time.Now().Add(time.Hour))
	svc, _ := newTestService(t, func(*http.Request) (*http.Response, error) {
		body := fmt.Sprintf(`{"success":true,"data":{"accessToken":%q,"user":{"id":"u-1"}}}`, token)
		return jsonResponse(http.StatusOK, body), nil
	}, nil)

	_, report, err := svc.Login(context.Background(), LoginInput{Email: "ana@example.com", Password: "hunter22"})
	require.NoError(t, err)
	require.False(t, report.Attempted())
}

func TestLoginToleratesOpaqueToken(t *testing.T) {
	svc, sessions := newTestService(t, func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"success":true,"data":{"accessToken":"opaque-token","user":{"id":"u-1"}}}`), nil
	}, nil)

	current, _, err := svc.Login(context.Background(), LoginInput{Email: "ana@example.com", Password: "hunter22"})
	require.NoError(t, err)
	require.True(t, current.ExpiresAt.IsZero())
	require.Equal(t, "opaque-token", sessions.AccessToken(context.Background()))
}

func TestRegisterValidates(t *testing.T) {
	svc, _ := newTestService(t, func(*http.Request) (*http.Response, error) {
		t.Fatal("unexpected network call")
		return nil, nil
	}, nil)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "short",
		Role:     "BUYER",
	})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	_, err = svc.Register(context.Background(), RegisterInput{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "long-enough-pass",
		Role:     "ADMIN",
	})
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestRefreshUpdatesStoredSession(t *testing.T) {
	newToken := signedToken(t, time.Now().Add(2*time.Hour))
	var capturedBody map[string]string
	svc, sessions := newTestService(t, func(req *http.Request) (*http.Response, error) {
		require.Equal(t, "/api/v1/auth/refresh", req.URL.Path)
		raw, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &capturedBody))
		body := fmt.Sprintf(`{"success":true,"data":{"accessToken":%q,"refreshToken":"refresh-2"}}`, newToken)
		return jsonResponse(http.StatusOK, body), nil
	}, nil)

	require.NoError(t, sessions.Set(session.Session{
		AccessToken:  "old-token",
		RefreshToken: "refresh-1",
		UserID:       "u-1",
	}))

	require.NoError(t, svc.Refresh(context.Background()))
	require.Equal(t, "refresh-1", capturedBody["refreshToken"])

	stored := sessions.Current()
	require.Equal(t, newToken, stored.AccessToken)
	require.Equal(t, "refresh-2", stored.RefreshToken)
	require.False(t, stored.ExpiresAt.IsZero())
}

func TestRefreshWithoutSessionFails(t *testing.T) {
	svc, _ := newTestService(t, func(*http.Request) (*http.Response, error) {
		t.Fatal("unexpected network call")
		return nil, nil
	}, nil)

	err := svc.Refresh(context.Background())
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err))
}

func TestLogoutClearsSessionEvenWhenServerFails(t *testing.T) {
	svc, sessions := newTestService(t, func(*http.Request) (*http.Response, error) {
		return nil, io.ErrUnexpectedEOF
	}, nil)

	require.NoError(t, sessions.Set(session.Session{AccessToken: "tok"}))
	require.NoError(t, svc.Logout(context.Background()))
	require.Nil(t, sessions.Current())
}
