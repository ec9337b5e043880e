package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"foodgram/internal/microservices/http-api/models"

	"github.com/redis/go-redis/v9"
)

// RedisTokenStore keeps active tokens as expiring keys, one per token id.
type RedisTokenStore struct {
	client *redis.Client
}

// NewRedisClient connects to redis and verifies the connection.
func NewRedisClient(addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

func tokenKey(tokenID string) string {
	return "auth:token:" + tokenID
}

func (s *RedisTokenStore) Save(ctx context.Context, token *models.AuthToken) error {
	ttl := time.Until(token.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("save token: already expired")
	}
	if err := s.client.Set(ctx, tokenKey(token.ID), strconv.FormatInt(token.UserID, 10), ttl).Err(); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (s *RedisTokenStore) IsActive(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, tokenKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("check token: %w", err)
	}
	return n > 0, nil
}

func (s *RedisTokenStore) Revoke(ctx context.Context, tokenID string) error {
	n, err := s.client.Del(ctx, tokenKey(tokenID)).Result()
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("revoke token: %w", ErrNotFound)
	}
	return nil
}
