package cache

import (
	"context"
	"sync"
	"time"

	"aiharu-api/internal/core/ai"
	"aiharu-api/internal/infrastructure/config"
	"aiharu-api/internal/pkg/common"

	"go.uber.org/zap"
)

const backendMemory = "memory"

// MemoryStore 程序內快取，容量滿時淘汰最少使用的項目
type MemoryStore struct {
	config *config.CacheConfig
	mu     sync.Mutex
	store  map[string]cacheEntry
	stats  cacheStats
	done   chan struct{}
	once   sync.Once
}

type cacheEntry struct {
	value       ai.Response
	expiresAt   time.Time
	lastAccess  time.Time
	accessCount int
}

type cacheStats struct {
	hits      int64
	misses    int64
	evictions int64
}

// NewMemoryStore 創建程序內快取並啟動過期清理
func NewMemoryStore(cfg *config.CacheConfig) *MemoryStore {
	m := &MemoryStore{
		config: cfg,
		store:  make(map[string]cacheEntry),
		done:   make(chan struct{}),
	}

	if cfg.CleanupInterval > 0 {
		go m.startCleanup()
	}

	common.LogInfo("快取管理員已初始化",
		zap.String("backend", backendMemory),
		zap.Int("最大容量", cfg.MaxSize),
		zap.Duration("存活時間", cfg.TTL),
	)
	return m
}

// Get 獲取快取
func (m *MemoryStore) Get(_ context.Context, prompt, imageData string) (*ai.Response, error) {
	key := Key(prompt, imageData)

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.store[key]
	if !ok {
		m.stats.misses++
		common.LogCacheMiss(backendMemory)
		return nil, common.ErrCacheMiss
	}
	if time.Now().After(entry.expiresAt) {
		delete(m.store, key)
		m.stats.evictions++
		m.stats.misses++
		common.LogCacheMiss(backendMemory)
		return nil, common.ErrCacheMiss
	}

	entry.lastAccess = time.Now()
	entry.accessCount++
	m.store[key] = entry
	m.stats.hits++
	common.LogCacheHit(backendMemory)

	resp := entry.value
	resp.CacheHit = true
	return &resp, nil
}

// Set 設置快取
func (m *MemoryStore) Set(_ context.Context, prompt, imageData string, resp *ai.Response) error {
	if resp == nil {
		return nil
	}
	key := Key(prompt, imageData)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.store[key]; !exists && len(m.store) >= m.config.MaxSize {
		m.cleanup()
		if len(m.store) >= m.config.MaxSize {
			m.evictLRU()
		}
		if len(m.store) >= m.config.MaxSize {
			common.LogWarn("快取已滿", zap.Int("目前容量", len(m.store)))
			return common.ErrCacheFull
		}
	}

	now := time.Now()
	value := *resp
	value.CacheHit = false
	m.store[key] = cacheEntry{
		value:      value,
		expiresAt:  now.Add(m.config.TTL),
		lastAccess: now,
	}
	return nil
}

// Len 目前項目數
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.store)
}

// GetStats 獲取快取統計信息
func (m *MemoryStore) GetStats() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	ratio := 0.0
	if total := m.stats.hits + m.stats.misses; total > 0 {
		ratio = float64(m.stats.hits) / float64(total)
	}
	return map[string]interface{}{
		"size":      len(m.store),
		"max_size":  m.config.MaxSize,
		"hits":      m.stats.hits,
		"misses":    m.stats.misses,
		"evictions": m.stats.evictions,
		"hit_ratio": ratio,
	}
}

// Close 停止清理並清空快取
func (m *MemoryStore) Close() error {
	m.once.Do(func() { close(m.done) })

	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = make(map[string]cacheEntry)
	common.LogInfo("快取管理員已關閉",
		zap.Int64("命中次數", m.stats.hits),
		zap.Int64("未命中次數", m.stats.misses),
		zap.Int64("淘汰次數", m.stats.evictions),
	)
	return nil
}

func (m *MemoryStore) startCleanup() {
	ticker := time.NewTicker(m.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			m.cleanup()
			m.mu.Unlock()
		case <-m.done:
			return
		}
	}
}

// cleanup 移除過期項目，呼叫端需持有鎖
func (m *MemoryStore) cleanup() int {
	now := time.Now()
	count := 0
	for key, entry := range m.store {
		if now.After(entry.expiresAt) {
			delete(m.store, key)
			count++
		}
	}
	m.stats.evictions += int64(count)
	if count > 0 {
		common.LogDebug("清理過期快取", zap.Int("count", count), zap.Int("remaining_size", len(m.store)))
	}
	return count
}

// evictLRU 淘汰存取次數最少、最久未使用的項目，呼叫端需持有鎖
func (m *MemoryStore) evictLRU() {
	var oldestKey string
	var oldestAccess time.Time
	lowestCount := 0

	for key, entry := range m.store {
		if oldestKey == "" ||
			entry.accessCount < lowestCount ||
			(entry.accessCount == lowestCount && entry.lastAccess.Before(oldestAccess)) {
			oldestKey = key
			oldestAccess = entry.lastAccess
			lowestCount = entry.accessCount
		}
	}

	if oldestKey != "" {
		delete(m.store, oldestKey)
		m.stats.evictions++
	}
}
