// Package cache is a thin Redis wrapper used for best-effort caching of
// collaborator results.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	// Get returns "" with a nil error on a cache miss.
	Get(ctx context.Context, key string) (string, error)
	GenerateKey(operation, key string) string
}

type redisCache struct {
	client    *redis.Client
	namespace string
}

func NewRedisCache(addr, namespace string) Cache {
	return &redisCache{
		client:    redis.NewClient(&redis.Options{Addr: addr}),
		namespace: namespace,
	}
}

func (r redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r redisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (r redisCache) GenerateKey(operation, key string) string {
	return fmt.Sprintf("%s:%s:%s", r.namespace, operation, key)
}
