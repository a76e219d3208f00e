package db

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type IStore interface {
	Querier
	ExecTx(ctx context.Context, fn func(*Queries) error) error
}

type StoreOption func(*Store)

// WithMaxRetries 可重試錯誤最多重跑幾次交易
func WithMaxRetries(n int) StoreOption {
	return func(s *Store) {
		if n >= 0 {
			s.maxRetries = n
		}
	}
}

// WithBackoff 第一次重試前的等待時間, 之後每次加倍
func WithBackoff(d time.Duration) StoreOption {
	return func(s *Store) {
		if d > 0 {
			s.backoff = d
		}
	}
}

// Store 結構用來管理數據庫連接和交易
type Store struct {
	*Queries
	db         *gorm.DB
	maxRetries int
	backoff    time.Duration
}

func NewStore(dao *DbDao, opts ...StoreOption) *Store {
	s := &Store{
		Queries:    New(dao.DB),
		db:         dao.DB,
		maxRetries: 3,
		backoff:    20 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ExecTx 執行一個交易, fn 內所有操作共用同一個 tx
// 使用資料庫預設隔離級別 (postgres 為 read committed)
// fn 回傳錯誤則整個交易回滾; IsRetryable 的錯誤會在退避後重跑 fn
func (s *Store) ExecTx(ctx context.Context, fn func(*Queries) error) error {
	var err error
	wait := s.backoff
	for attempt := 0; ; attempt++ {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(New(tx))
		})
		if err == nil || !IsRetryable(err) || attempt >= s.maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("tx retry canceled: %w", ctx.Err())
		case <-time.After(wait):
		}
		wait *= 2
	}
	if err != nil && IsRetryable(err) {
		return fmt.Errorf("tx retries exhausted after %d attempts: %w", s.maxRetries+1, err)
	}
	return err
}

var _ IStore = (*Store)(nil)
