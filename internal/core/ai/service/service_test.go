package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"aiharu-api/internal/core/ai"
	"aiharu-api/internal/core/ai/cache"
	"aiharu-api/internal/core/ai/provider"
	"aiharu-api/internal/core/ai/queue"
	"aiharu-api/internal/infrastructure/config"
	"aiharu-api/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	calls int32
	delay time.Duration
	err   error
	last  *provider.Request
	mu    sync.Mutex
}

func (f *fakeProvider) Generate(ctx context.Context, req *provider.Request) (*ai.Response, error) {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	f.last = req
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &ai.Response{Content: "답변:" + req.Prompt, Model: "fake"}, nil
}

func (f *fakeProvider) GetModel() string { return "fake" }

type passImages struct{}

func (passImages) ProcessImage(_ context.Context, data string) (string, error) {
	if data == "bad" {
		return "", common.ErrInvalidImage
	}
	return "data:image/jpeg;base64," + data, nil
}

func newTestService(t *testing.T, p *fakeProvider, withCache bool) *Service {
	t.Helper()
	q := queue.NewManager(config.QueueConfig{Workers: 2, MaxSize: 10})
	t.Cleanup(q.Close)

	var store cache.Store
	if withCache {
		m := cache.NewMemoryStore(&config.CacheConfig{MaxSize: 10, TTL: time.Hour})
		t.Cleanup(func() { _ = m.Close() })
		store = m
	}
	return NewService(p, store, q, passImages{})
}

func TestProcessRequest_CachesResponse(t *testing.T) {
	p := &fakeProvider{}
	s := newTestService(t, p, true)

	first, err := s.ProcessRequest(context.Background(), "식단 분석", "QUJD")
	require.NoError(t, err)
	assert.False(t, first.CacheHit)
	assert.Equal(t, "data:image/jpeg;base64,QUJD", p.last.ImageData)

	second, err := s.ProcessRequest(context.Background(), "  식단   분석 ", "QUJD")
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Content, second.Content)
	assert.Equal(t, int32(1), atomic.LoadInt32(&p.calls))
}

func TestProcessRequest_CoalescesConcurrentCalls(t *testing.T) {
	p := &fakeProvider{delay: 50 * time.Millisecond}
	s := newTestService(t, p, false)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := s.ProcessRequest(context.Background(), "같은 요청", "")
			assert.NoError(t, err)
			assert.Equal(t, "답변:같은 요청", resp.Content)
		}()
	}
	wg.Wait()

	assert.Less(t, atomic.LoadInt32(&p.calls), int32(5))
}

func TestProcessRequest_CallerCancelDoesNotFailOthers(t *testing.T) {
	p := &fakeProvider{delay: 200 * time.Millisecond}
	s := newTestService(t, p, false)

	short, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	var shortErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, shortErr = s.ProcessRequest(short, "같은 식단", "")
	}()
	time.Sleep(5 * time.Millisecond)

	resp, err := s.ProcessRequest(context.Background(), "같은 식단", "")
	<-done

	require.NoError(t, err)
	assert.Equal(t, "답변:같은 식단", resp.Content)
	assert.ErrorIs(t, shortErr, context.DeadlineExceeded)
	assert.Equal(t, int32(1), atomic.LoadInt32(&p.calls))
}

func TestProcessRequest_CallTimeout(t *testing.T) {
	p := &fakeProvider{delay: 200 * time.Millisecond}
	s := newTestService(t, p, false)
	s.SetCallTimeout(20 * time.Millisecond)

	_, err := s.ProcessRequest(context.Background(), "느린 요청", "")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestProcessRequest_Errors(t *testing.T) {
	s := newTestService(t, &fakeProvider{err: common.ErrAIServiceError}, false)

	_, err := s.ProcessRequest(context.Background(), "", "")
	assert.True(t, common.IsValidationError(err))

	_, err = s.ProcessRequest(context.Background(), "p", "bad")
	assert.True(t, errors.Is(err, common.ErrInvalidImage))

	_, err = s.ProcessRequest(context.Background(), "p", "")
	assert.True(t, errors.Is(err, common.ErrAIServiceError))
}
