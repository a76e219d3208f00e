package model

import (
	"github.com/shopspring/decimal"
)

// Order 建立後不再修改
type Order struct {
	ID         int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Username   string          `gorm:"not null;type:varchar(100);index" json:"username"`
	Total      decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"total"`
	OrderItems []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	BaseModel
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem Price 為結帳當下的價格快照
type OrderItem struct {
	OrderID   int64           `gorm:"primaryKey;autoIncrement:false" json:"order_id"`
	ProductID int64           `gorm:"primaryKey;autoIncrement:false" json:"product_id"`
	Quantity  int64           `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"price"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

func (i OrderItem) Amount() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(i.Quantity))
}

// OrderItemView 訂單明細加上商品標題與圖片
type OrderItemView struct {
	ProductID int64           `json:"product_id"`
	Title     string          `json:"title"`
	Image     string          `json:"image"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}
