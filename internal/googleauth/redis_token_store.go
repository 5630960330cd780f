package googleauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/JJulme/manito/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisTokenKeyPrefix = "manito:fcm_access_token:"

var _ TokenStore = (*RedisTokenStore)(nil)

// RedisTokenStore shares access tokens between relay instances.
type RedisTokenStore struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisTokenStore(client *redis.Client, logger *zap.Logger) *RedisTokenStore {
	return &RedisTokenStore{
		client: client,
		logger: logger.Named("redis_token_store"),
	}
}

func (s *RedisTokenStore) Get(ctx context.Context, key string) (models.AccessToken, bool, error) {
	raw, err := s.client.Get(ctx, redisTokenKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.AccessToken{}, false, nil
		}
		return models.AccessToken{}, false, fmt.Errorf("failed to get access token from redis: %w", err)
	}

	var token models.AccessToken
	if err := json.Unmarshal(raw, &token); err != nil {
		s.logger.Warn("Discarding undecodable cached token", zap.String("key", key), zap.Error(err))
		return models.AccessToken{}, false, nil
	}
	return token, true, nil
}

// Set stores the token with a TTL matching its remaining lifetime. Expired tokens are not stored.
func (s *RedisTokenStore) Set(ctx context.Context, key string, token models.AccessToken) error {
	ttl := time.Until(token.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode access token: %w", err)
	}
	if err := s.client.Set(ctx, redisTokenKeyPrefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store access token in redis: %w", err)
	}
	s.logger.Debug("Access token cached", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}
