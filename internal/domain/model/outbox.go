package model

import "time"

// OutboxEvent 與狀態異動同一個交易寫入, 由 relay 非同步送出
type OutboxEvent struct {
	ID        int64      `gorm:"primaryKey;autoIncrement"`
	EventID   string     `gorm:"not null;type:varchar(64);uniqueIndex"`
	EventType string     `gorm:"not null;type:varchar(64)"`
	Key       string     `gorm:"not null;type:varchar(255)"`
	Payload   string     `gorm:"not null;type:text"`
	CreatedAt time.Time  `gorm:"not null"`
	SentAt    *time.Time `gorm:"index"`
}

func (OutboxEvent) TableName() string {
	return "outbox_events"
}
