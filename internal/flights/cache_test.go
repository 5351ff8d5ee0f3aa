package flights_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nudem-backend/internal/flights"
)

func TestCachedToken_IsValid(t *testing.T) {
	// Nil and empty tokens are never valid
	var nilToken *flights.CachedToken
	assert.False(t, nilToken.IsValid())
	assert.False(t, (&flights.CachedToken{}).IsValid())

	// Fresh token
	fresh := &flights.CachedToken{Token: "abc", ExpiresAt: time.Now().Add(30 * time.Minute)}
	assert.True(t, fresh.IsValid())

	// Expired token
	expired := &flights.CachedToken{Token: "abc", ExpiresAt: time.Now().Add(-time.Minute)}
	assert.False(t, expired.IsValid())

	// Inside the expiry buffer the token is treated as stale already
	almostExpired := &flights.CachedToken{Token: "abc", ExpiresAt: time.Now().Add(30 * time.Second)}
	assert.False(t, almostExpired.IsValid())
}

func TestMemoryTokenCache(t *testing.T) {
	cache := flights.NewMemoryTokenCache()
	ctx := context.Background()

	// Empty cache yields no token
	cached, err := cache.GetToken(ctx)
	assert.NoError(t, err)
	assert.Nil(t, cached)

	require.NoError(t, cache.SetToken(ctx, "token-1", 1800))

	cached, err = cache.GetToken(ctx)
	assert.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, "token-1", cached.Token)

	// A token expiring within the buffer is not returned
	require.NoError(t, cache.SetToken(ctx, "token-2", 10))
	cached, err = cache.GetToken(ctx)
	assert.NoError(t, err)
	assert.Nil(t, cached)
}
