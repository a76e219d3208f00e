package db

import (
	"context"
	"errors"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Upsert - 同一使用者同一商品只有一列, 已存在則累加數量
// 只處理購物車列, 庫存保留由呼叫端在同一交易內完成
func (q *Queries) UpsertCartLine(ctx context.Context, username string, productID, quantity int64) (*model.CartLine, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	line := model.CartLine{
		Username:  username,
		ProductID: productID,
		Quantity:  quantity,
	}
	err := q.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "username"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity":   gorm.Expr("cart.quantity + ?", quantity),
				"updated_at": time.Now(),
			}),
		}).
		Create(&line).Error
	if err != nil {
		return nil, err
	}

	var saved model.CartLine
	err = q.db.WithContext(ctx).
		Where("username = ? AND product_id = ?", username, productID).
		First(&saved).Error
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// Read - 根據ID查詢購物車列
func (q *Queries) GetCartLine(ctx context.Context, id int64) (*model.CartLine, error) {
	var line model.CartLine
	err := q.db.WithContext(ctx).Where("id = ?", id).First(&line).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartLineNotFound
		}
		return nil, err
	}
	return &line, nil
}

// Delete - 刪除屬於 username 的購物車列
func (q *Queries) DeleteCartLine(ctx context.Context, id int64, username string) error {
	res := q.db.WithContext(ctx).
		Where("id = ? AND username = ?", id, username).
		Delete(&model.CartLine{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCartLineNotFound
	}
	return nil
}

// Delete - 結帳用, 只刪除數量與讀取時一致的列
// 被併發修改或刪除時回傳 ErrCartChanged
func (q *Queries) DeleteCartLineIfUnchanged(ctx context.Context, id, quantity int64) error {
	res := q.db.WithContext(ctx).
		Where("id = ? AND quantity = ?", id, quantity).
		Delete(&model.CartLine{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 1 {
		return ErrCartChanged
	}
	return nil
}

// Read - 使用者購物車, 帶商品目前資訊
func (q *Queries) ListCartLines(ctx context.Context, username string) ([]model.CartLineView, error) {
	views := []model.CartLineView{}
	err := q.db.WithContext(ctx).
		Table("cart AS c").
		Select("c.id, c.product_id, c.quantity, p.title, p.price, p.image, p.stock").
		Joins("JOIN products AS p ON p.id = c.product_id").
		Where("c.username = ?", username).
		Order("c.id").
		Scan(&views).Error
	if err != nil {
		return nil, err
	}
	return views, nil
}
