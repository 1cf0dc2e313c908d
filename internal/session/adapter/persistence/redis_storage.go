package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"workly-web/internal/session/domain/repository"
	apperrors "workly-web/internal/shared/errors"
	"workly-web/internal/shared/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var _ repository.SessionStorage = (*RedisStorage)(nil)

// RedisStorage keeps each session under prefix+key with a TTL.
type RedisStorage struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger logger.Logger
}

// NewRedisStorage creates a Redis backed storage. A zero ttl stores without expiry.
func NewRedisStorage(client *redis.Client, prefix string, ttl time.Duration, log logger.Logger) *RedisStorage {
	if log == nil {
		log = logger.Default()
	}
	return &RedisStorage{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: log.WithComponent("session_redis_storage"),
	}
}

func (r *RedisStorage) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrSessionNotFound, key)
	}
	if err != nil {
		r.logger.WithFields(logger.ZapFields(zap.String("key", key), zap.Error(err))).Error("Failed to load session from Redis")
		return nil, fmt.Errorf("failed to load session %s: %w", key, err)
	}
	return data, nil
}

func (r *RedisStorage) Save(ctx context.Context, key string, data []byte) error {
	if err := r.client.Set(ctx, r.prefix+key, data, r.ttl).Err(); err != nil {
		r.logger.WithFields(logger.ZapFields(zap.String("key", key), zap.Error(err))).Error("Failed to save session to Redis")
		return fmt.Errorf("failed to save session %s: %w", key, err)
	}
	return nil
}

func (r *RedisStorage) Remove(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to remove session %s: %w", key, err)
	}
	return nil
}
