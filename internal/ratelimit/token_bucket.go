package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

/*
單機 token bucket, 背景 goroutine 定期補充
請使用 defer 呼叫 Stop()
*/
type TokenBucket struct {
	LimiterConfig
	current      atomic.Int64
	lastRefilled atomic.Int64
	cancel       chan struct{}
	once         sync.Once
}

func NewTokenBucket(config *LimiterConfig) *TokenBucket {
	t := &TokenBucket{
		cancel: make(chan struct{}),
	}

	if config != nil {
		t.LimiterConfig = config.normalize()
	} else {
		t.LimiterConfig = GetDefaultLimiterConfig()
	}

	t.current.Store(int64(t.Capacity))
	t.lastRefilled.Store(time.Now().UnixNano())
	go t.background()
	return t
}

func (t *TokenBucket) Allow(ctx context.Context) bool {
	for {
		current := t.current.Load()
		if current <= 0 {
			return false
		}
		if t.current.CompareAndSwap(current, current-1) {
			return true
		}
	}
}

func (t *TokenBucket) countNewTokens(current int64, elapsed time.Duration) int64 {
	newTokens := current + int64(elapsed.Seconds()*t.RatePS)
	if newTokens > int64(t.Capacity) {
		newTokens = int64(t.Capacity)
	}
	return newTokens
}

func (t *TokenBucket) background() {
	ticker := time.NewTicker(t.RefillRate)
	defer ticker.Stop()

	for {
		select {
		case <-t.cancel:
			return
		case <-ticker.C:
			t.refill(time.Now().UnixNano())
		}
	}
}

// refill 未滿一個 token 的時間保留到下一輪
func (t *TokenBucket) refill(now int64) {
	for {
		last := t.lastRefilled.Load()
		current := t.current.Load()
		newTokens := t.countNewTokens(current, time.Duration(now-last))
		if newTokens == current && current < int64(t.Capacity) {
			return
		}
		if t.current.CompareAndSwap(current, newTokens) {
			t.lastRefilled.Store(now)
			return
		}
	}
}

func (t *TokenBucket) Stop() {
	t.once.Do(func() {
		close(t.cancel)
	})
}

var _ Limiter = (*TokenBucket)(nil)
