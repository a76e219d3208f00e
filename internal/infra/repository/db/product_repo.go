package db

import (
	"context"
	"errors"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Read - 根據ID查詢商品
func (q *Queries) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	err := q.db.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

// Read - 查詢所有商品
func (q *Queries) ListProducts(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := q.db.WithContext(ctx).Order("id").Find(&products).Error
	return products, err
}

// Upsert - 目錄同步, 以 code 為鍵
// 新商品帶入初始庫存; 既有商品只覆寫描述性欄位, 不碰 stock
func (q *Queries) UpsertProducts(ctx context.Context, products []model.Product) (int, error) {
	if len(products) == 0 {
		return 0, nil
	}
	err := q.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns(model.CatalogColumns),
		}).
		CreateInBatches(products, 100).Error
	if err != nil {
		return 0, err
	}
	return len(products), nil
}

// Create - 管理員新增商品, 初始庫存由呼叫端決定
func (q *Queries) CreateProduct(ctx context.Context, product *model.Product) error {
	return q.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error
}

// Update - 只覆寫描述性欄位, stock 只能透過 ledger 異動
func (q *Queries) UpdateProductDetails(ctx context.Context, product *model.Product) error {
	product.UpdatedAt = time.Now()
	res := q.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", product.ID).
		Select(model.CatalogColumns).
		Updates(product)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// Delete - 仍被購物車、訂單明細或評論引用時回傳 ErrProductInUse
func (q *Queries) DeleteProduct(ctx context.Context, id int64) error {
	res := q.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Product{})
	if res.Error != nil {
		if IsForeignKeyViolation(res.Error) {
			return ErrProductInUse
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}
