package model

import "time"

type Review struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"not null;type:varchar(100)" json:"username"`
	ProductID int64     `gorm:"not null;index" json:"product_id"`
	Content   string    `gorm:"not null;type:text" json:"content"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (Review) TableName() string {
	return "reviews"
}
