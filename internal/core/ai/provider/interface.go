package provider

import (
	"context"

	"aiharu-api/internal/core/ai"
)

// Request 發送到 AI 提供者的請求；ImageData 為 data URI，可為空
type Request struct {
	Prompt    string
	ImageData string
	MaxTokens int
}

// Provider 定義 AI 提供者介面
type Provider interface {
	// Generate 生成 AI 響應
	Generate(ctx context.Context, req *Request) (*ai.Response, error)

	// GetModel 獲取當前使用的模型名稱
	GetModel() string
}
