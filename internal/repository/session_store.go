package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned when no refresh session record exists for
// a user.
var ErrSessionNotFound = errors.New("refresh session not found")

const refreshTokenKeyPrefix = "refresh_token:"

// SessionStore tracks the single currently-valid refresh token per user.
// Save overwrites any prior record, so at most one refresh token verifies
// against the store at any time.
type SessionStore interface {
	Save(ctx context.Context, userID, refreshToken string) error
	Get(ctx context.Context, userID string) (string, error)
	Delete(ctx context.Context, userID string) error
}

type redisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore returns a Redis-backed implementation with the given
// record TTL.
func NewSessionStore(client *redis.Client, ttl time.Duration) SessionStore {
	return &redisSessionStore{client: client, ttl: ttl}
}

func (s *redisSessionStore) Save(ctx context.Context, userID, refreshToken string) error {
	return s.client.Set(ctx, sessionKey(userID), refreshToken, s.ttl).Err()
}

func (s *redisSessionStore) Get(ctx context.Context, userID string) (string, error) {
	val, err := s.client.Get(ctx, sessionKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrSessionNotFound
		}
		return "", err
	}
	return val, nil
}

func (s *redisSessionStore) Delete(ctx context.Context, userID string) error {
	// DEL of an absent key is a no-op, which keeps revocation idempotent.
	return s.client.Del(ctx, sessionKey(userID)).Err()
}

func sessionKey(userID string) string {
	return fmt.Sprintf("%s%s", refreshTokenKeyPrefix, userID)
}
