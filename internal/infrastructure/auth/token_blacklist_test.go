package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryTokenBlacklist(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	newBlacklist := func() *InMemoryTokenBlacklist {
		b := NewInMemoryTokenBlacklist()
		b.now = func() time.Time { return now }
		return b
	}

	t.Run("unknown user is not invalidated", func(t *testing.T) {
		invalidated, err := newBlacklist().IsUserTokenInvalidated(ctx, "user-1", now.Add(-time.Hour))
		require.NoError(t, err)
		assert.False(t, invalidated)
	})

	t.Run("tokens issued before invalidation are rejected", func(t *testing.T) {
		b := newBlacklist()
		require.NoError(t, b.InvalidateUserTokens(ctx, "user-1", 24*time.Hour))

		invalidated, err := b.IsUserTokenInvalidated(ctx, "user-1", now.Add(-time.Second))
		require.NoError(t, err)
		assert.True(t, invalidated)

		invalidated, err = b.IsUserTokenInvalidated(ctx, "user-2", now.Add(-time.Second))
		require.NoError(t, err)
		assert.False(t, invalidated, "other users are unaffected")
	})

	t.Run("tokens issued in the same second or later survive", func(t *testing.T) {
		b := newBlacklist()
		require.NoError(t, b.InvalidateUserTokens(ctx, "user-1", 24*time.Hour))

		invalidated, err := b.IsUserTokenInvalidated(ctx, "user-1", now)
		require.NoError(t, err)
		assert.False(t, invalidated)

		invalidated, err = b.IsUserTokenInvalidated(ctx, "user-1", now.Add(time.Minute))
		require.NoError(t, err)
		assert.False(t, invalidated)
	})

	t.Run("entry expires after ttl", func(t *testing.T) {
		b := newBlacklist()
		require.NoError(t, b.InvalidateUserTokens(ctx, "user-1", time.Hour))

		b.now = func() time.Time { return now.Add(2 * time.Hour) }
		invalidated, err := b.IsUserTokenInvalidated(ctx, "user-1", now.Add(-time.Minute))
		require.NoError(t, err)
		assert.False(t, invalidated)
	})
}
