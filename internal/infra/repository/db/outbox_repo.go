package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model/event"
)

// Create - 事件與狀態異動同交易寫入
func (q *Queries) InsertOutboxEvent(ctx context.Context, evt event.Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal outbox event: %w", err)
	}
	row := model.OutboxEvent{
		EventID:   evt.GetID(),
		EventType: string(evt.Type()),
		Key:       evt.PartitionKey(),
		Payload:   string(payload),
		CreatedAt: time.Now().UTC(),
	}
	return q.db.WithContext(ctx).Create(&row).Error
}

// Read - 尚未送出的事件, 依寫入順序
func (q *Queries) FetchPendingOutbox(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	var rows []model.OutboxEvent
	err := q.db.WithContext(ctx).
		Where("sent_at IS NULL").
		Order("id").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// Update - 標記已送出
func (q *Queries) MarkOutboxSent(ctx context.Context, ids []int64, sentAt time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return q.db.WithContext(ctx).Model(&model.OutboxEvent{}).
		Where("id IN ?", ids).
		Update("sent_at", sentAt).Error
}
