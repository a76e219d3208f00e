package model

import (
	"github.com/shopspring/decimal"
)

// CartLine 購物車明細, 同時是一筆硬保留: 加入時庫存已扣除
type CartLine struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string `gorm:"not null;type:varchar(100);uniqueIndex:idx_cart_user_product" json:"username"`
	ProductID int64  `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"product_id"`
	Quantity  int64  `gorm:"not null;check:chk_cart_quantity,quantity >= 1" json:"quantity"`
	BaseModel
}

func (CartLine) TableName() string {
	return "cart"
}

// CartLineView 購物車明細加上商品資訊, 供顯示用
type CartLineView struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Stock     int64           `json:"stock"`
}
