package event

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EventType string

const (
	CartItemReservedEventName EventType = "CartItemReserved"
	CartItemReleasedEventName EventType = "CartItemReleased"
	OrderPlacedEventName      EventType = "OrderPlaced"
	ReviewDeletedEventName    EventType = "ReviewDeleted"
	StockAdjustedEventName    EventType = "StockAdjusted"
	ProductCreatedEventName   EventType = "ProductCreated"
	ProductUpdatedEventName   EventType = "ProductUpdated"
	ProductDeletedEventName   EventType = "ProductDeleted"
)

type Event interface {
	Type() EventType
	GetID() string
	// PartitionKey 決定 kafka 分區, 同一使用者/商品的事件保持順序
	PartitionKey() string
}

type BaseEvent struct {
	EventID     string    `json:"eventId"`
	AggregateID string    `json:"aggregateId"`
	CreatedAt   time.Time `json:"createdAt"`
	EventType   EventType `json:"eventType"`
}

func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		EventID:     uuid.NewString(),
		AggregateID: aggregateID,
		CreatedAt:   time.Now().UTC(),
		EventType:   eventType,
	}
}

func (e *BaseEvent) GetID() string {
	return e.EventID
}

func (e *BaseEvent) Type() EventType {
	return e.EventType
}

func (e *BaseEvent) PartitionKey() string {
	return e.AggregateID
}

type CartItemReservedEvent struct {
	BaseEvent
	Username   string `json:"username"`
	CartLineID int64  `json:"cart_line_id"`
	ProductID  int64  `json:"product_id"`
	Quantity   int64  `json:"quantity"`
}

type CartItemReleasedEvent struct {
	BaseEvent
	Username   string `json:"username"`
	CartLineID int64  `json:"cart_line_id"`
	ProductID  int64  `json:"product_id"`
	Quantity   int64  `json:"quantity"`
}

type OrderPlacedItem struct {
	ProductID int64           `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type OrderPlacedEvent struct {
	BaseEvent
	Username string            `json:"username"`
	OrderID  int64             `json:"order_id"`
	Total    decimal.Decimal   `json:"total"`
	Items    []OrderPlacedItem `json:"items"`
}

type ReviewDeletedEvent struct {
	BaseEvent
	ReviewID  int64  `json:"review_id"`
	ProductID int64  `json:"product_id"`
	DeletedBy string `json:"deleted_by"`
}

type StockAdjustedEvent struct {
	BaseEvent
	ProductID int64  `json:"product_id"`
	Delta     int64  `json:"delta"`
	Stock     int64  `json:"stock"`
	AdjustBy  string `json:"adjust_by"`
}

// ProductChangedEvent 管理員新增/修改/刪除商品
type ProductChangedEvent struct {
	BaseEvent
	ProductID int64           `json:"product_id"`
	Code      string          `json:"code,omitempty"`
	Title     string          `json:"title,omitempty"`
	Price     decimal.Decimal `json:"price"`
	ChangedBy string          `json:"changed_by"`
}
