package middleware

import (
	"sync"
	"time"

	"aiharu-api/internal/pkg/common"

	"go.uber.org/zap"
)

// Pruner 可定期清理的狀態
type Pruner interface {
	Prune() int
}

// StartJanitor 定期清理限流與去重的過期狀態，回傳停止函式
func StartJanitor(interval time.Duration, pruners ...Pruner) func() {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				removed := 0
				for _, p := range pruners {
					removed += p.Prune()
				}
				if removed > 0 {
					common.LogDebug("清理中間件狀態", zap.Int("removed", removed))
				}
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}
