package session

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("session")

// redisStore persists sessions in Redis under session:<id> with a TTL equal
// to the token lifetime, so the store expires sessions on its own.
type redisStore struct {
	codec *TokenCodec
	rdb   *redis.Client
}

// NewRedisStore creates a Redis-backed session store signing tokens with the
// given secret.
func NewRedisStore(rdb *redis.Client, secret string) Store {
	return &redisStore{
		codec: NewTokenCodec(secret),
		rdb:   rdb,
	}
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

func (s *redisStore) Create(ctx context.Context, userID int64) (string, error) {
	ctx, span := tracer.Start(ctx, "SessionStore.Create")
	defer span.End()

	sessionID := uuid.New().String()
	token, err := s.codec.Issue(sessionID, userID)
	if err != nil {
		return "", err
	}

	if err := s.rdb.Set(ctx, sessionKey(sessionID), userID, Lifetime).Err(); err != nil {
		return "", fmt.Errorf("failed to persist session: %w", err)
	}
	return token, nil
}

func (s *redisStore) Resolve(ctx context.Context, token string) (int64, bool, error) {
	ctx, span := tracer.Start(ctx, "SessionStore.Resolve")
	defer span.End()

	sessionID, err := s.codec.Decode(token)
	if err != nil {
		return 0, false, nil
	}

	val, err := s.rdb.Get(ctx, sessionKey(sessionID)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to look up session: %w", err)
	}

	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt session record %q: %w", sessionID, err)
	}
	return userID, true, nil
}

func (s *redisStore) Destroy(ctx context.Context, token string) error {
	ctx, span := tracer.Start(ctx, "SessionStore.Destroy")
	defer span.End()

	sessionID, err := s.codec.Decode(token)
	if err != nil {
		return nil
	}

	if err := s.rdb.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
