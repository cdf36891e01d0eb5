package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"aiharu-api/internal/core/ai"
	"aiharu-api/internal/core/ai/cache"
	"aiharu-api/internal/core/ai/provider"
	"aiharu-api/internal/core/ai/queue"
	"aiharu-api/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ImageProcessor 將輸入圖片統一為 data URI
type ImageProcessor interface {
	ProcessImage(ctx context.Context, imageData string) (string, error)
}

// Service AI 服務：快取 → 合併相同請求 → 隊列 → 提供者
type Service struct {
	provider provider.Provider
	cache    cache.Store
	queue    *queue.Manager
	images   ImageProcessor
	group    singleflight.Group
	timeout  time.Duration
}

// NewService 創建 AI 服務；store 為 nil 時不使用快取
func NewService(p provider.Provider, store cache.Store, q *queue.Manager, images ImageProcessor) *Service {
	return &Service{
		provider: p,
		cache:    store,
		queue:    q,
		images:   images,
	}
}

// SetCallTimeout 設定合併後共用呼叫的時限，0 表示不限
func (s *Service) SetCallTimeout(d time.Duration) {
	s.timeout = d
}

// Model 目前使用的模型
func (s *Service) Model() string {
	return s.provider.GetModel()
}

// ProcessRequest 統一對外方法
func (s *Service) ProcessRequest(ctx context.Context, prompt string, imageData string) (*ai.Response, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, common.NewValidationError("prompt is required")
	}

	var processed string
	if imageData != "" {
		var err error
		processed, err = s.images.ProcessImage(ctx, imageData)
		if err != nil {
			return nil, err
		}
	}

	// 快取鍵忽略空白差異
	cacheKey := strings.Join(strings.Fields(prompt), " ")

	if s.cache != nil {
		resp, err := s.cache.Get(ctx, cacheKey, processed)
		if err == nil {
			return resp, nil
		}
		if !errors.Is(err, common.ErrCacheMiss) {
			common.LogWarn("讀取快取失敗", zap.Error(err))
		}
	}

	ch := s.group.DoChan(cache.Key(cacheKey, processed), func() (interface{}, error) {
		// 共用呼叫不隨任一呼叫者取消
		callCtx := context.WithoutCancel(ctx)
		if s.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(callCtx, s.timeout)
			defer cancel()
		}

		resp, err := s.queue.Submit(callCtx, func(ctx context.Context) (*ai.Response, error) {
			return s.provider.Generate(ctx, &provider.Request{Prompt: prompt, ImageData: processed})
		})
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.Set(callCtx, cacheKey, processed, resp); err != nil {
				common.LogWarn("寫入快取失敗", zap.Error(err))
			}
		}
		return resp, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.Err != nil {
		return nil, res.Err
	}
	resp := *res.Val.(*ai.Response)
	if res.Shared {
		common.LogDebug("合併相同 AI 請求", zap.String("model", resp.Model))
	}
	return &resp, nil
}
