package cache

import (
	"context"
	"errors"
	"time"

	"wouldyourather/internal/observability"

	"github.com/redis/go-redis/v9"
)

// ErrNoRedis is returned by SessionStore when no client is configured.
var ErrNoRedis = errors.New("redis client not configured")

// SessionStore keeps revoked session ids until their tokens would have expired anyway.
type SessionStore struct {
	rdb *redis.Client
}

// NewSessionStore returns a SessionStore backed by rdb. A nil client is allowed.
func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb}
}

// Revoke marks jti as revoked for ttl.
func (s *SessionStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if s.rdb == nil {
		return ErrNoRedis
	}
	ctx, span := observability.TraceRedisOperation(ctx, "session.revoke")
	defer span.End()

	if err := s.rdb.Set(ctx, BlacklistKey(jti), "1", ttl).Err(); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// IsRevoked reports whether jti was revoked.
func (s *SessionStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if s.rdb == nil {
		return false, ErrNoRedis
	}
	ctx, span := observability.TraceRedisOperation(ctx, "session.is_revoked")
	defer span.End()

	n, err := s.rdb.Exists(ctx, BlacklistKey(jti)).Result()
	if err != nil {
		span.RecordError(err)
		return false, err
	}
	return n > 0, nil
}
