package db

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Create - 建立訂單主檔, 明細另外寫入
func (q *Queries) CreateOrder(ctx context.Context, order *model.Order) error {
	return q.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error
}

// Create - 批次寫入訂單明細
func (q *Queries) CreateOrderItems(ctx context.Context, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return q.db.WithContext(ctx).Create(&items).Error
}

// Read - 根據ID查詢訂單, 含明細
func (q *Queries) GetOrder(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	err := q.db.WithContext(ctx).Preload("OrderItems").Where("id = ?", id).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// Read - 使用者訂單, 新到舊
func (q *Queries) ListOrdersByUsername(ctx context.Context, username string) ([]model.Order, error) {
	orders := []model.Order{}
	err := q.db.WithContext(ctx).
		Where("username = ?", username).
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	return orders, err
}

// Read - 訂單明細帶商品標題與圖片, 價格為下單時快照
func (q *Queries) ListOrderItemViews(ctx context.Context, orderID int64) ([]model.OrderItemView, error) {
	var count int64
	if err := q.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", orderID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrOrderNotFound
	}

	views := []model.OrderItemView{}
	err := q.db.WithContext(ctx).
		Table("order_items AS oi").
		Select("oi.product_id, p.title, p.image, oi.quantity, oi.price").
		Joins("JOIN products AS p ON p.id = oi.product_id").
		Where("oi.order_id = ?", orderID).
		Order("oi.product_id").
		Scan(&views).Error
	if err != nil {
		return nil, err
	}
	return views, nil
}
