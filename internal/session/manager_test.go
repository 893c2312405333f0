package session

import (
	"context"
	"testing"
	"time"

	"github.com/agrilink-hq/agrilink-client/internal/guest"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestManagerPersistsAcrossRestart(t *testing.T) {
	store := guest.NewMemoryStore()

	first, err := NewManager(store, nil)
	require.NoError(t, err)
	require.Nil(t, first.Current())
	require.Empty(t, first.AccessToken(context.Background()))

	require.NoError(t, first.Set(Session{
		AccessToken: "tok-1",
		UserID:      "u-1",
		Email:       "ana@example.com",
		ExpiresAt:   time.Now().Add(time.Hour),
	}))

	second, err := NewManager(store, nil)
	require.NoError(t, err)
	require.NotNil(t, second.Current())
	require.Equal(t, "u-1", second.Current().UserID)
	require.Equal(t, "tok-1", second.AccessToken(context.Background()))
}

func TestManagerClear(t *testing.T) {
	store := guest.NewMemoryStore()
	manager, err := NewManager(store, nil)
	require.NoError(t, err)

	require.NoError(t, manager.Set(Session{AccessToken: "tok"}))
	require.True(t, manager.Authenticated())

	require.NoError(t, manager.Clear())
	require.False(t, manager.Authenticated())

	reopened, err := NewManager(store, nil)
	require.NoError(t, err)
	require.Nil(t, reopened.Current())
}

func TestManagerCorruptSessionReadsAsLoggedOut(t *testing.T) {
	store := guest.NewMemoryStore()
	require.NoError(t, store.Set("agrilink_session", []byte("{broken")))

	manager, err := NewManager(store, nil)
	require.NoError(t, err)
	require.Nil(t, manager.Current())
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()
	require.False(t, Session{}.Expired(now))
	require.False(t, Session{ExpiresAt: now.Add(time.Minute)}.Expired(now))
	require.True(t, Session{ExpiresAt: now.Add(-time.Minute)}.Expired(now))
}

func TestExpiryFromToken(t *testing.T) {
	expiry := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u-1",
		ExpiresAt: jwt.NewNumericDate(expiry),
	})
	signed, err := token.SignedString([]byte("any-secret"))
	require.NoError(t, err)

	got, err := ExpiryFromToken(signed)
	require.NoError(t, err)
	require.True(t, got.Equal(expiry))
}

func TestExpiryFromTokenRejectsGarbage(t *testing.T) {
	_, err := ExpiryFromToken("not.a.jwt")
	require.Error(t, err)
}
