package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"foodgram/pkg/config"
	"foodgram/pkg/lib/logger/sl"

	goredis "github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "foodgram:revoked:"

type cmdable interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd
	Exists(ctx context.Context, keys ...string) *goredis.IntCmd
	Ping(ctx context.Context) *goredis.StatusCmd
}

// TokenStore keeps the ids of revoked access tokens until they would have
// expired anyway.
type TokenStore struct {
	log    *slog.Logger
	client cmdable
	closer func() error
}

func New(ctx context.Context, log *slog.Logger, cfg config.RedisConfig) (*TokenStore, error) {
	const op = "database.redis.New"

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		log.With("op", op).Error("Error connect to redis", sl.Err(err))
		client.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &TokenStore{
		log:    log,
		client: client,
		closer: client.Close,
	}, nil
}

func NewWithParams(log *slog.Logger, client cmdable) *TokenStore {
	return &TokenStore{
		log:    log,
		client: client,
		closer: func() error { return nil },
	}
}

func (s *TokenStore) Close() error {
	return s.closer()
}

func (s *TokenStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Revoke marks the token id as revoked for ttl. A non-positive ttl means the
// token has already expired and nothing is stored.
func (s *TokenStore) Revoke(ctx context.Context, tokenId string, ttl time.Duration) error {
	const op = "database.redis.Revoke"
	log := s.log.With("op", op)

	if ttl <= 0 {
		return nil
	}

	if err := s.client.Set(ctx, revokedKeyPrefix+tokenId, 1, ttl).Err(); err != nil {
		log.Error("Failed to revoke token", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *TokenStore) IsRevoked(ctx context.Context, tokenId string) (bool, error) {
	const op = "database.redis.IsRevoked"
	log := s.log.With("op", op)

	n, err := s.client.Exists(ctx, revokedKeyPrefix+tokenId).Result()
	if err != nil {
		log.Error("Failed to check token", sl.Err(err))
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return n > 0, nil
}
