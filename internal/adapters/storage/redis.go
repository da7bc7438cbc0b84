package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures the Redis backend.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// RedisBlob stores each key as a Redis string under Prefix+key.
type RedisBlob struct {
	client *redis.Client
	prefix string
}

// NewRedisBlob connects and pings the server.
func NewRedisBlob(ctx context.Context, opts RedisOptions) (*RedisBlob, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis storage: %w", err)
	}
	return &RedisBlob{client: client, prefix: opts.Prefix}, nil
}

func (r *RedisBlob) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (r *RedisBlob) Put(ctx context.Context, key string, value []byte) error {
	if !validKey(key) {
		return ErrInvalidKey
	}
	return r.client.Set(ctx, r.prefix+key, value, 0).Err()
}

func (r *RedisBlob) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}

func (r *RedisBlob) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisBlob) Close() error { return r.client.Close() }
func (r *RedisBlob) Name() string { return BackendRedis }
