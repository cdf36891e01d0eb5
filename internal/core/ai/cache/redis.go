package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"aiharu-api/internal/core/ai"
	"aiharu-api/internal/infrastructure/config"
	"aiharu-api/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	backendRedis = "redis"
	keyPrefix    = "aiharu:ai:response:"
)

// RedisStore 以 Redis 儲存 AI 響應，多個實例共用
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore 連線 Redis 並確認可用
func NewRedisStore(cfg *config.RedisConfig, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("快取管理員已初始化",
		zap.String("backend", backendRedis),
		zap.String("addr", cfg.Addr),
		zap.Duration("存活時間", ttl),
	)
	return NewRedisStoreWithClient(client, ttl), nil
}

// NewRedisStoreWithClient 使用既有的 client
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Get 獲取快取
func (s *RedisStore) Get(ctx context.Context, prompt, imageData string) (*ai.Response, error) {
	data, err := s.client.Get(ctx, keyPrefix+Key(prompt, imageData)).Bytes()
	if errors.Is(err, redis.Nil) {
		common.LogCacheMiss(backendRedis)
		return nil, common.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cache: %w", err)
	}

	var resp ai.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache: %w", err)
	}
	common.LogCacheHit(backendRedis)
	resp.CacheHit = true
	return &resp, nil
}

// Set 設置快取
func (s *RedisStore) Set(ctx context.Context, prompt, imageData string, resp *ai.Response) error {
	if resp == nil {
		return nil
	}
	value := *resp
	value.CacheHit = false
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+Key(prompt, imageData), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Ping 檢查 Redis 連線
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close 關閉連線
func (s *RedisStore) Close() error {
	return s.client.Close()
}
