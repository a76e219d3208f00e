package kafka

import (
	"context"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
)

// EventPublisher 把 outbox 資料列送到 kafka
// key 為聚合 id, 同一商品/訂單的事件保持順序
type EventPublisher struct {
	producer Producer
}

func NewEventPublisher(producer Producer) *EventPublisher {
	if producer == nil {
		panic("event publisher dependency producer is nil")
	}
	return &EventPublisher{producer: producer}
}

func (p *EventPublisher) Publish(ctx context.Context, rows []model.OutboxEvent) error {
	msgs := make([]Message, 0, len(rows))
	for _, row := range rows {
		msgs = append(msgs, Message{
			Key:   []byte(row.Key),
			Value: []byte(row.Payload),
			Headers: []Header{
				{Key: "event_type", Value: []byte(row.EventType)},
				{Key: "event_id", Value: []byte(row.EventID)},
			},
			Time: row.CreatedAt,
		})
	}
	return p.producer.Produce(ctx, msgs)
}

func (p *EventPublisher) Close() error {
	return p.producer.Close()
}
