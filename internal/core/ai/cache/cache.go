package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"aiharu-api/internal/core/ai"
	"aiharu-api/internal/infrastructure/config"
	"aiharu-api/internal/pkg/common"
)

// Store AI 響應快取；未命中時回傳 common.ErrCacheMiss
type Store interface {
	Get(ctx context.Context, prompt, imageData string) (*ai.Response, error)
	Set(ctx context.Context, prompt, imageData string, resp *ai.Response) error
	Close() error
}

// New 依設定建立快取；停用時回傳 nil
func New(cfg *config.Config) (Store, error) {
	if !cfg.Cache.Enabled {
		common.LogInfo("快取已停用")
		return nil, nil
	}
	switch cfg.Cache.Backend {
	case "memory":
		return NewMemoryStore(&cfg.Cache), nil
	case "redis":
		store, err := NewRedisStore(&cfg.Redis, cfg.Cache.TTL)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported cache backend %q", cfg.Cache.Backend)
	}
}

// Key 以 prompt 與圖片內容的雜湊組成快取鍵
func Key(prompt, imageData string) string {
	if imageData == "" {
		return "text:" + hashString(prompt)
	}
	return "multimodal:" + hashString(prompt) + ":" + hashString(imageData)
}

func hashString(s string) string {
	hash := sha256.Sum256([]byte(s))
	return hex.EncodeToString(hash[:])
}
