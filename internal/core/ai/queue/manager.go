package queue

import (
	"context"
	"sync"
	"sync/atomic"

	"aiharu-api/internal/core/ai"
	"aiharu-api/internal/infrastructure/config"
	"aiharu-api/internal/pkg/common"

	"go.uber.org/zap"
)

// Job 在 worker 上執行的 AI 請求
type Job func(ctx context.Context) (*ai.Response, error)

type request struct {
	ctx    context.Context
	job    Job
	result chan Result
}

// Result 處理結果
type Result struct {
	Response *ai.Response
	Error    error
}

// Status 隊列狀態
type Status struct {
	QueueLength    int   `json:"queue_length"`
	ProcessedCount int64 `json:"processed_count"`
	MaxQueueSize   int   `json:"max_queue_size"`
	Workers        int   `json:"workers"`
}

// Manager 以固定數量的 worker 處理 AI 請求，限制同時對上游的呼叫數
type Manager struct {
	queue     chan *request
	done      chan struct{}
	workers   int
	maxSize   int
	processed int64
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewManager 創建隊列並啟動 worker
func NewManager(cfg config.QueueConfig) *Manager {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	maxSize := cfg.MaxSize
	if maxSize <= 0 {
		maxSize = workers
	}

	m := &Manager{
		queue:   make(chan *request, maxSize),
		done:    make(chan struct{}),
		workers: workers,
		maxSize: maxSize,
	}
	for i := 0; i < workers; i++ {
		m.wg.Add(1)
		go m.worker()
	}
	common.LogInfo("AI 隊列已啟動", zap.Int("workers", workers), zap.Int("max_queue_size", maxSize))
	return m
}

// Submit 將請求加入隊列並等待結果；隊列已滿時立即回傳 ErrServiceUnavailable
func (m *Manager) Submit(ctx context.Context, job Job) (*ai.Response, error) {
	select {
	case <-m.done:
		return nil, common.ErrServiceUnavailable
	default:
	}

	req := &request{ctx: ctx, job: job, result: make(chan Result, 1)}
	select {
	case m.queue <- req:
	default:
		common.LogWarn("AI 隊列已滿", zap.Int("queue_length", len(m.queue)))
		return nil, common.ErrServiceUnavailable
	}

	select {
	case res := <-req.result:
		return res.Response, res.Error
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-m.done:
		return nil, common.ErrServiceUnavailable
	}
}

func (m *Manager) worker() {
	defer m.wg.Done()
	for {
		select {
		case <-m.done:
			return
		case req := <-m.queue:
			if err := req.ctx.Err(); err != nil {
				req.result <- Result{Error: err}
				continue
			}
			resp, err := req.job(req.ctx)
			atomic.AddInt64(&m.processed, 1)
			req.result <- Result{Response: resp, Error: err}
		}
	}
}

// GetQueueStatus 獲取隊列狀態
func (m *Manager) GetQueueStatus() *Status {
	return &Status{
		QueueLength:    len(m.queue),
		ProcessedCount: atomic.LoadInt64(&m.processed),
		MaxQueueSize:   m.maxSize,
		Workers:        m.workers,
	}
}

// Close 停止 worker，等待進行中的請求結束
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
		m.wg.Wait()
	})
}
