package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/util"
	"github.com/rs/zerolog/log"
)

// EventPublisher 送出 outbox 事件, 全部成功才回傳 nil
type EventPublisher interface {
	Publish(ctx context.Context, rows []model.OutboxEvent) error
}

type OutboxMetrics interface {
	EventsSent(n int)
}

// OutboxRelay 定期把尚未送出的 outbox 事件送到 publisher
// 送出後才標記, 失敗的批次下一輪重送 (at-least-once)
type OutboxRelay struct {
	store         db.IStore
	publisher     EventPublisher
	metrics       OutboxMetrics
	interval      time.Duration
	batchSize     int
	isRunning     atomic.Bool
	mu            sync.Mutex
	stopCtxCancel context.CancelFunc
	done          chan struct{}
}

func NewOutboxRelay(store db.IStore, publisher EventPublisher, metrics OutboxMetrics, interval time.Duration, batchSize int) *OutboxRelay {
	if store == nil {
		panic("outbox relay dependency store is nil")
	}
	if util.IsNil(publisher) {
		panic("outbox relay dependency publisher is nil")
	}
	if util.IsNil(metrics) {
		metrics = nil
	}
	if interval <= 0 {
		interval = time.Second
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &OutboxRelay{
		store:     store,
		publisher: publisher,
		metrics:   metrics,
		interval:  interval,
		batchSize: batchSize,
	}
}

func (o *OutboxRelay) Start() error {
	if !o.isRunning.CompareAndSwap(false, true) {
		return fmt.Errorf("outbox relay is already running")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	o.mu.Lock()
	o.stopCtxCancel = cancel
	o.done = done
	o.mu.Unlock()

	go func() {
		defer close(done)
		defer o.isRunning.Store(false)

		ticker := time.NewTicker(o.interval)
		defer ticker.Stop()
		for {
			if _, err := o.Drain(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("outbox relay failed")
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return nil
}

func (o *OutboxRelay) Stop(timeout time.Duration) error {
	o.mu.Lock()
	cancel, done := o.stopCtxCancel, o.done
	o.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		log.Error().Msg("time out for stop outbox relay")
		return fmt.Errorf("outbox relay stop timeout after %s", timeout)
	}
}

// Drain 連續送出直到沒有待送事件
func (o *OutboxRelay) Drain(ctx context.Context) (int, error) {
	total := 0
	for {
		n, err := o.RelayOnce(ctx)
		total += n
		if err != nil || n < o.batchSize {
			return total, err
		}
	}
}

// RelayOnce 送出一個批次, 回傳送出筆數
func (o *OutboxRelay) RelayOnce(ctx context.Context) (int, error) {
	rows, err := o.store.FetchPendingOutbox(ctx, o.batchSize)
	if err != nil {
		return 0, fmt.Errorf("fetch pending outbox: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	if err := o.publisher.Publish(ctx, rows); err != nil {
		return 0, fmt.Errorf("publish outbox events: %w", err)
	}

	ids := make([]int64, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	// 已送出的事件即使 ctx 被取消也要標記
	if err := o.store.MarkOutboxSent(context.WithoutCancel(ctx), ids, time.Now().UTC()); err != nil {
		return 0, fmt.Errorf("mark outbox sent: %w", err)
	}

	if o.metrics != nil {
		o.metrics.EventsSent(len(rows))
	}
	log.Debug().Int("count", len(rows)).Msg("outbox events relayed")
	return len(rows), nil
}

// LogPublisher 沒有設定 kafka 時把事件寫到 log
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, rows []model.OutboxEvent) error {
	for _, row := range rows {
		log.Info().
			Str("event_id", row.EventID).
			Str("event_type", row.EventType).
			Str("key", row.Key).
			RawJSON("payload", []byte(row.Payload)).
			Msg("domain event")
	}
	return nil
}

var _ BackGroundService = (*OutboxRelay)(nil)
