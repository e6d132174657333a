package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/chaladshare/client-go/pkg/config"
	"github.com/chaladshare/client-go/pkg/logging"
)

const sessionKey = "chaladshare:session"

// ErrDisabled is returned when store operations are attempted but the
// store is disabled
var ErrDisabled = fmt.Errorf("session store is disabled")

// Sessions keeps the login cookie in Redis so consecutive CLI invocations
// share one backend session instead of logging in every time.
type Sessions struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a Redis-backed session store. Returns (nil, nil) when the
// store is disabled; a nil *Sessions is safe to use.
func New(cfg *config.RedisConfig) (*Sessions, error) {
	if !cfg.Enabled {
		logging.GetLogger().Debug("Session store disabled")
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logging.GetLogger().Info("Session store connected")

	return &Sessions{
		client: client,
		ttl:    cfg.SessionTTL,
	}, nil
}

// LoadSession returns the saved session cookie value, "" when absent
func (s *Sessions) LoadSession(ctx context.Context) (string, error) {
	if s == nil || s.client == nil {
		return "", nil
	}
	value, err := s.client.Get(ctx, sessionKey).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load session: %w", err)
	}
	return value, nil
}

// SaveSession stores the session cookie value with the configured TTL
func (s *Sessions) SaveSession(ctx context.Context, value string) error {
	if s == nil || s.client == nil {
		return ErrDisabled
	}
	return s.client.Set(ctx, sessionKey, value, s.ttl).Err()
}

// ClearSession removes the saved session
func (s *Sessions) ClearSession(ctx context.Context) error {
	if s == nil || s.client == nil {
		return ErrDisabled
	}
	return s.client.Del(ctx, sessionKey).Err()
}

// Close closes the Redis connection
func (s *Sessions) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

// Health checks the Redis connection
func (s *Sessions) Health(ctx context.Context) error {
	if s == nil || s.client == nil {
		return ErrDisabled
	}
	return s.client.Ping(ctx).Err()
}
