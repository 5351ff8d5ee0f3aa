package flights

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	// tokenKey is the key used to store the aggregator token in Redis.
	tokenKey = "flight_api_token"
	// tokenExpiryBuffer is how long before actual expiry a token is treated
	// as stale, in seconds.
	tokenExpiryBuffer = 60
)

// CachedToken is an aggregator bearer token with its expiry time.
type CachedToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsValid checks the token against expiry with a buffer for clock skew and
// in-flight requests.
func (t *CachedToken) IsValid() bool {
	if t == nil || t.Token == "" {
		return false
	}
	return time.Now().Add(tokenExpiryBuffer * time.Second).Before(t.ExpiresAt)
}

// TokenCache holds the aggregator token between requests. Injected so the
// client is testable and safe when the service runs as multiple instances.
type TokenCache interface {
	GetToken(ctx context.Context) (*CachedToken, error)
	SetToken(ctx context.Context, token string, expiresIn int) error
}

// RedisTokenCache shares the token across process instances.
type RedisTokenCache struct {
	Client *redis.Client
}

func NewRedisTokenCache(client *redis.Client) *RedisTokenCache {
	return &RedisTokenCache{Client: client}
}

func (c *RedisTokenCache) GetToken(ctx context.Context) (*CachedToken, error) {
	if c.Client == nil {
		return nil, fmt.Errorf("redis client not initialized")
	}

	tokenJSON, err := c.Client.Get(ctx, tokenKey).Result()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get token from Redis: %w", err)
	}

	var cached CachedToken
	if err := json.Unmarshal([]byte(tokenJSON), &cached); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached token: %w", err)
	}
	if !cached.IsValid() {
		return nil, nil
	}
	return &cached, nil
}

func (c *RedisTokenCache) SetToken(ctx context.Context, token string, expiresIn int) error {
	if c.Client == nil {
		return fmt.Errorf("redis client not initialized")
	}

	cached := &CachedToken{
		Token:     token,
		ExpiresAt: time.Now().Add(time.Duration(expiresIn) * time.Second),
	}
	tokenJSON, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("failed to marshal cached token: %w", err)
	}

	ttl := time.Duration(expiresIn+tokenExpiryBuffer) * time.Second
	if err := c.Client.Set(ctx, tokenKey, tokenJSON, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store token in Redis: %w", err)
	}
	return nil
}

// MemoryTokenCache is the single-instance fallback when Redis is disabled.
type MemoryTokenCache struct {
	mu     sync.Mutex
	cached *CachedToken
}

func NewMemoryTokenCache() *MemoryTokenCache {
	return &MemoryTokenCache{}
}

func (c *MemoryTokenCache) GetToken(ctx context.Context) (*CachedToken, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.cached.IsValid() {
		return nil, nil
	}
	cached := *c.cached
	return &cached, nil
}

func (c *MemoryTokenCache) SetToken(ctx context.Context, token string, expiresIn int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cached = &CachedToken{
		Token:     token,
		ExpiresAt: time.Now().Add(time.Duration(expiresIn) * time.Second),
	}
	return nil
}
