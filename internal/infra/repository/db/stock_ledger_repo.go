package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"gorm.io/gorm"
)

/*
庫存帳本
所有 stock 異動都是單一條件式 UPDATE, 判斷與寫入在同一句 SQL 完成
不提供先讀再寫的介面
*/

// Update - 保留庫存, stock >= quantity 才扣除
func (q *Queries) ReserveStock(ctx context.Context, productID, quantity int64) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	res := q.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return fmt.Errorf("reserve stock: %w", res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}
	return q.missOrInsufficient(ctx, productID, ErrStockNotEnough)
}

// Update - 釋放庫存
func (q *Queries) ReleaseStock(ctx context.Context, productID, quantity int64) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	res := q.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", productID).
		Update("stock", gorm.Expr("stock + ?", quantity))
	if res.Error != nil {
		return fmt.Errorf("release stock: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// Update - 管理員調整庫存, 調整後不得小於 0, 回傳調整後庫存
func (q *Queries) AdjustStock(ctx context.Context, productID, delta int64) (int64, error) {
	if delta != 0 {
		res := q.db.WithContext(ctx).Model(&model.Product{}).
			Where("id = ? AND stock + ? >= 0", productID, delta).
			Update("stock", gorm.Expr("stock + ?", delta))
		if res.Error != nil {
			return 0, fmt.Errorf("adjust stock: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return 0, q.missOrInsufficient(ctx, productID, ErrStockNegative)
		}
	}
	return q.GetStock(ctx, productID)
}

// Read - 目前可用庫存
func (q *Queries) GetStock(ctx context.Context, productID int64) (int64, error) {
	var product model.Product
	err := q.db.WithContext(ctx).Select("id", "stock").Where("id = ?", productID).Take(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrProductNotFound
		}
		return 0, err
	}
	return product.Stock, nil
}

// 條件式更新沒有命中時, 區分商品不存在還是條件不成立
func (q *Queries) missOrInsufficient(ctx context.Context, productID int64, insufficient error) error {
	var count int64
	if err := q.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrProductNotFound
	}
	return insufficient
}
