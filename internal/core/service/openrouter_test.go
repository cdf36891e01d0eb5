package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"aiharu-api/internal/core/ai/provider"
	"aiharu-api/internal/infrastructure/config"
	"aiharu-api/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(url string, retries int) *OpenRouterService {
	return NewOpenRouterService(&config.OpenRouterConfig{
		APIKey:     "sk-test",
		BaseURL:    url,
		Model:      "test/model",
		MaxTokens:  256,
		Timeout:    5 * time.Second,
		RetryCount: retries,
	})
}

func TestGenerate_SendsVisionRequest(t *testing.T) {
	var got common.ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","model":"test/model","choices":[{"message":{"role":"assistant","content":"#### 1. 분석"}}],"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`))
	}))
	defer srv.Close()

	resp, err := newTestService(srv.URL, 0).Generate(context.Background(), &provider.Request{
		Prompt:    "분석해 주세요",
		ImageData: "QUJD",
	})

	require.NoError(t, err)
	assert.Equal(t, "#### 1. 분석", resp.Content)
	assert.Equal(t, 15, resp.Usage.TotalTokens)

	assert.Equal(t, "test/model", got.Model)
	assert.Equal(t, 256, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	require.Len(t, got.Messages[0].Content, 2)
	assert.Equal(t, "text", got.Messages[0].Content[0].Type)
	assert.Equal(t, "data:image/jpeg;base64,QUJD", got.Messages[0].Content[1].ImageURL.URL)
}

func TestGenerate_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	resp, err := newTestService(srv.URL, 2).Generate(context.Background(), &provider.Request{Prompt: "hi"})

	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, "test/model", resp.Model)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGenerate_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"bad key"}`))
	}))
	defer srv.Close()

	_, err := newTestService(srv.URL, 0).Generate(context.Background(), &provider.Request{Prompt: "hi"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrAIServiceError))
	assert.Contains(t, err.Error(), "401")
}

func TestGenerate_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := newTestService(srv.URL, 0).Generate(context.Background(), &provider.Request{Prompt: "hi"})

	assert.True(t, errors.Is(err, common.ErrAIServiceError))
}
