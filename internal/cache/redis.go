package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RedisClient struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisClient: ttl — сколько живёт ключ идемпотентности
func NewRedisClient(addr, password string, db int, ttl time.Duration, log *zap.Logger) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("Redis connected successfully", zap.String("addr", addr))
	return NewFromClient(rdb, ttl, log), nil
}

func NewFromClient(rdb *redis.Client, ttl time.Duration, log *zap.Logger) *RedisClient {
	return &RedisClient{client: rdb, ttl: ttl, log: log}
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

// Reserve занимает ключ запроса через SETNX; false — такой запрос уже был
func (r *RedisClient) Reserve(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, "idem:"+key, "1", r.ttl).Result()
	if err != nil {
		r.log.Warn("idempotency reserve failed", zap.String("key", key), zap.Error(err))
		return false, err
	}
	return ok, nil
}

// Release освобождает ключ, если запрос не удалось выполнить
func (r *RedisClient) Release(ctx context.Context, key string) error {
	return r.client.Del(ctx, "idem:"+key).Err()
}
