package session

import (
	"context"
	"fmt"
	"time"

	"github.com/jurisconnect/console/internal/observability"
	"github.com/redis/go-redis/v9"
)

// RedisTokenStore is the volatile tier for multi-instance deployments.
// Tokens expire with the configured session TTL. A nil client degrades to
// an empty tier: reads miss, writes no-op.
type RedisTokenStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisTokenStore(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisTokenStore {
	if prefix == "" {
		prefix = "console_session_token"
	}
	return &RedisTokenStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisTokenStore) SetToken(ctx context.Context, sid, token string) error {
	if s.client == nil {
		return nil
	}
	if err := s.client.Set(ctx, s.key(sid), token, s.ttl).Err(); err != nil {
		observability.RecordSessionStoreOperation(ctx, "volatile", "set", "error")
		return err
	}
	observability.RecordSessionStoreOperation(ctx, "volatile", "set", "success")
	return nil
}

func (s *RedisTokenStore) Token(ctx context.Context, sid string) (string, error) {
	if s.client == nil {
		return "", nil
	}
	tok, err := s.client.Get(ctx, s.key(sid)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		observability.RecordSessionStoreOperation(ctx, "volatile", "get", "error")
		return "", err
	}
	return tok, nil
}

func (s *RedisTokenStore) DeleteToken(ctx context.Context, sid string) error {
	if s.client == nil {
		return nil
	}
	if err := s.client.Del(ctx, s.key(sid)).Err(); err != nil {
		observability.RecordSessionStoreOperation(ctx, "volatile", "delete", "error")
		return err
	}
	observability.RecordSessionStoreOperation(ctx, "volatile", "delete", "success")
	return nil
}

func (s *RedisTokenStore) key(sid string) string {
	return fmt.Sprintf("%s:%s", s.prefix, sid)
}
