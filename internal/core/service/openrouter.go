package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"aiharu-api/internal/core/ai"
	"aiharu-api/internal/core/ai/provider"
	"aiharu-api/internal/infrastructure/config"
	"aiharu-api/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// OpenRouterService OpenRouter 服務
type OpenRouterService struct {
	config *config.OpenRouterConfig
	client *resty.Client
}

var _ provider.Provider = (*OpenRouterService)(nil)

// NewOpenRouterService 創建 OpenRouter 服務
func NewOpenRouterService(cfg *config.OpenRouterConfig) *OpenRouterService {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("HTTP-Referer", "https://aiharu.app").
		SetHeader("X-Title", "Aiharu Meal Analysis").
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
		})

	return &OpenRouterService{
		config: cfg,
		client: client,
	}
}

// GetModel 目前使用的模型
func (s *OpenRouterService) GetModel() string {
	return s.config.Model
}

// Generate 發送文字與（可選）圖片，回傳第一個 choice 的內容
func (s *OpenRouterService) Generate(ctx context.Context, req *provider.Request) (*ai.Response, error) {
	content := []common.ChatContent{common.TextContent(strings.TrimSpace(req.Prompt))}
	if req.ImageData != "" {
		url := req.ImageData
		if !strings.HasPrefix(url, "data:image/") {
			url = "data:image/jpeg;base64," + url
		}
		content = append(content, common.ImageContent(url))
		common.LogDebug("OpenRouter 附加圖片", zap.Int("image_url_len", len(url)))
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = s.config.MaxTokens
	}
	body := common.ChatRequest{
		Model:       s.config.Model,
		Messages:    []common.ChatMessage{{Role: "user", Content: content}},
		MaxTokens:   maxTokens,
		Temperature: 0.2,
	}

	var result common.ChatResponse
	start := time.Now()
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		Post("/chat/completions")
	if err != nil {
		common.LogAICall(s.config.Model, time.Since(start), err)
		return nil, common.ErrAIServiceError.Wrap(fmt.Errorf("failed to send request to OpenRouter: %w", err))
	}

	if resp.StatusCode() != http.StatusOK {
		err := fmt.Errorf("OpenRouter API returned %d: %s", resp.StatusCode(), truncate(resp.String(), 512))
		common.LogAICall(s.config.Model, time.Since(start), err)
		if resp.StatusCode() == http.StatusTooManyRequests {
			return nil, common.ErrTooManyRequests.Wrap(err)
		}
		return nil, common.ErrAIServiceError.Wrap(err)
	}

	if len(result.Choices) == 0 || strings.TrimSpace(result.Choices[0].Message.Content) == "" {
		err := fmt.Errorf("no choices in OpenRouter response")
		common.LogAICall(s.config.Model, time.Since(start), err)
		return nil, common.ErrAIServiceError.Wrap(err)
	}
	common.LogAICall(s.config.Model, time.Since(start), nil)

	model := result.Model
	if model == "" {
		model = s.config.Model
	}
	return &ai.Response{
		Content: result.Choices[0].Message.Content,
		Model:   model,
		Usage: ai.Usage{
			PromptTokens:     result.Usage.PromptTokens,
			CompletionTokens: result.Usage.CompletionTokens,
			TotalTokens:      result.Usage.TotalTokens,
		},
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
