package model

import (
	"github.com/shopspring/decimal"
)

// Product 商品目錄與庫存
// Stock 只能透過 ledger 的原子更新異動
type Product struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Code        string          `gorm:"not null;type:varchar(100);uniqueIndex" json:"code"`
	Title       string          `gorm:"not null;type:varchar(255)" json:"title"`
	Price       decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"price"`
	Description string          `gorm:"not null;type:text;default:''" json:"description"`
	Category    string          `gorm:"not null;type:varchar(100);default:''" json:"category"`
	Image       string          `gorm:"not null;type:text;default:''" json:"image"`
	Stock       int64           `gorm:"not null;default:0;check:chk_products_stock,stock >= 0" json:"stock"`
	CartLines   []CartLine      `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT" json:"-"`
	OrderItems  []OrderItem     `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT" json:"-"`
	Reviews     []Review        `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT" json:"-"`
	BaseModel
}

func (Product) TableName() string {
	return "products"
}

// CatalogColumns 目錄同步時允許覆寫的欄位, 不包含 stock
var CatalogColumns = []string{"title", "price", "description", "category", "image", "updated_at"}
