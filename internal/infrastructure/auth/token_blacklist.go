package auth

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/smartfertilizer/backend/internal/infrastructure/config"
)

// TokenBlacklist invalidates bearer tokens before they expire.
// A user-level entry rejects every token issued before the recorded time.
type TokenBlacklist interface {
	// InvalidateUserTokens rejects all of the user's tokens issued before now.
	// ttl should cover the longest token lifetime.
	InvalidateUserTokens(ctx context.Context, userID string, ttl time.Duration) error

	// IsUserTokenInvalidated reports whether a token issued at issuedAt was revoked
	IsUserTokenInvalidated(ctx context.Context, userID string, issuedAt time.Time) (bool, error)
}

const blacklistKeyPrefix = "sf:token:revoked:user:"

// RedisTokenBlacklist stores invalidation timestamps in Redis so every
// instance sees them.
type RedisTokenBlacklist struct {
	client *redis.Client
}

// NewRedisTokenBlacklist connects to Redis and verifies the connection
func NewRedisTokenBlacklist(cfg config.RedisConfig) (*RedisTokenBlacklist, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis for token blacklist: %w", err)
	}
	return &RedisTokenBlacklist{client: client}, nil
}

// NewRedisTokenBlacklistWithClient wraps an existing client
func NewRedisTokenBlacklistWithClient(client *redis.Client) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{client: client}
}

// InvalidateUserTokens implements TokenBlacklist
func (b *RedisTokenBlacklist) InvalidateUserTokens(ctx context.Context, userID string, ttl time.Duration) error {
	if err := b.client.Set(ctx, blacklistKeyPrefix+userID, time.Now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to invalidate user tokens: %w", err)
	}
	return nil
}

// IsUserTokenInvalidated implements TokenBlacklist
func (b *RedisTokenBlacklist) IsUserTokenInvalidated(ctx context.Context, userID string, issuedAt time.Time) (bool, error) {
	raw, err := b.client.Get(ctx, blacklistKeyPrefix+userID).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check user token invalidation: %w", err)
	}

	invalidatedAt, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("failed to parse invalidation timestamp: %w", err)
	}
	// iat has second precision; a token minted in the same second as the
	// reset is the fresh login that follows it.
	return issuedAt.Unix() < invalidatedAt, nil
}

// Close closes the Redis client
func (b *RedisTokenBlacklist) Close() error {
	return b.client.Close()
}

var _ TokenBlacklist = (*RedisTokenBlacklist)(nil)

// InMemoryTokenBlacklist is the single-instance fallback used when Redis is
// disabled, and in tests.
type InMemoryTokenBlacklist struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	invalidatedAt time.Time
	expiresAt     time.Time
}

// NewInMemoryTokenBlacklist creates an empty in-memory blacklist
func NewInMemoryTokenBlacklist() *InMemoryTokenBlacklist {
	return &InMemoryTokenBlacklist{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// InvalidateUserTokens implements TokenBlacklist
func (b *InMemoryTokenBlacklist) InvalidateUserTokens(_ context.Context, userID string, ttl time.Duration) error {
	now := b.now()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[userID] = memoryEntry{invalidatedAt: now, expiresAt: now.Add(ttl)}
	return nil
}

// IsUserTokenInvalidated implements TokenBlacklist
func (b *InMemoryTokenBlacklist) IsUserTokenInvalidated(_ context.Context, userID string, issuedAt time.Time) (bool, error) {
	b.mu.RLock()
	entry, ok := b.entries[userID]
	b.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if b.now().After(entry.expiresAt) {
		b.mu.Lock()
		delete(b.entries, userID)
		b.mu.Unlock()
		return false, nil
	}
	return issuedAt.Unix() < entry.invalidatedAt.Unix(), nil
}

var _ TokenBlacklist = (*InMemoryTokenBlacklist)(nil)
