package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/RoyceAzure/lab/storefront/internal/authz"
	"github.com/RoyceAzure/lab/storefront/internal/catalog"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model/event"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/apperr"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/util"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var (
	ErrProductTitleRequired = apperr.New(apperr.ValidationCode, "product title is required")
	ErrProductPriceNegative = apperr.New(apperr.ValidationCode, "product price cannot be negative")
	ErrProductStockNegative = apperr.New(apperr.ValidationCode, "product stock cannot be negative")
)

// ProductInput 管理員新增或修改商品
// Stock 只在新增時使用, 修改一律忽略
type ProductInput struct {
	Code        string
	Title       string
	Price       decimal.Decimal
	Description string
	Category    string
	Image       string
	Stock       *int64
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return ErrProductTitleRequired
	}
	if in.Price.IsNegative() {
		return ErrProductPriceNegative
	}
	if in.Stock != nil && *in.Stock < 0 {
		return ErrProductStockNegative
	}
	return nil
}

// ProductLister 商品清單讀取, 可以是資料庫或快取裝飾器
type ProductLister interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
}

type ICatalogService interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	Sync(ctx context.Context, caller authz.Identity) (int, error)
	SyncFrom(ctx context.Context, source catalog.Source) (int, error)
	Create(ctx context.Context, caller authz.Identity, in ProductInput) (*model.Product, error)
	Update(ctx context.Context, caller authz.Identity, id int64, in ProductInput) (*model.Product, error)
	Delete(ctx context.Context, caller authz.Identity, id int64) error
}

type CatalogService struct {
	store        db.IStore
	lister       ProductLister
	invalidator  CatalogInvalidator
	source       catalog.Source
	initialStock int64
}

// NewCatalogService lister 為 nil 時直接讀資料庫
func NewCatalogService(store db.IStore, lister ProductLister, invalidator CatalogInvalidator, source catalog.Source, initialStock int64) *CatalogService {
	if store == nil {
		panic("catalog service dependency store is nil")
	}
	if util.IsNil(lister) {
		lister = store
	}
	if util.IsNil(invalidator) {
		invalidator = nil
	}
	if util.IsNil(source) {
		source = nil
	}
	return &CatalogService{
		store:        store,
		lister:       lister,
		invalidator:  invalidator,
		source:       source,
		initialStock: initialStock,
	}
}

func (c *CatalogService) ListProducts(ctx context.Context) ([]model.Product, error) {
	products, err := c.lister.ListProducts(ctx)
	if err != nil {
		return nil, toAppErr(err)
	}
	return products, nil
}

// GetProduct 直接讀資料庫, 庫存為即時值
func (c *CatalogService) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	product, err := c.store.GetProduct(ctx, id)
	if err != nil {
		return nil, toAppErr(err)
	}
	return product, nil
}

// Sync 管理員觸發, 從設定的來源同步
func (c *CatalogService) Sync(ctx context.Context, caller authz.Identity) (int, error) {
	if !authz.CanManageCatalog(caller) {
		return 0, ErrForbidden
	}
	if c.source == nil {
		return 0, apperr.New(apperr.InvalidOperationCode, "no catalog source configured")
	}
	return c.SyncFrom(ctx, c.source)
}

// SyncFrom 以 code upsert 商品
// 新商品帶入初始庫存, 既有商品只更新描述欄位, 庫存維持不變
func (c *CatalogService) SyncFrom(ctx context.Context, source catalog.Source) (int, error) {
	items, err := source.Fetch(ctx)
	if err != nil {
		return 0, apperr.Internal(fmt.Errorf("catalog source %s: %w", source.Name(), err))
	}

	var n int
	err = c.store.ExecTx(ctx, func(q *db.Queries) error {
		var err error
		n, err = q.UpsertProducts(ctx, catalog.ToProducts(items, c.initialStock))
		return err
	})
	if err != nil {
		return 0, toAppErr(err)
	}

	c.invalidate(ctx)
	log.Info().Str("source", source.Name()).Int("count", n).Msg("catalog synced")
	return n, nil
}

// Create 管理員新增商品, 未給 code 時產生一個, 未給庫存時使用初始庫存
func (c *CatalogService) Create(ctx context.Context, caller authz.Identity, in ProductInput) (*model.Product, error) {
	if !authz.CanManageCatalog(caller) {
		return nil, ErrForbidden
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	product := &model.Product{
		Code:        strings.TrimSpace(in.Code),
		Title:       strings.TrimSpace(in.Title),
		Price:       in.Price,
		Description: in.Description,
		Category:    in.Category,
		Image:       in.Image,
		Stock:       c.initialStock,
	}
	if product.Code == "" {
		product.Code = "manual-" + uuid.NewString()
	}
	if in.Stock != nil {
		product.Stock = *in.Stock
	}

	err := c.store.ExecTx(ctx, func(q *db.Queries) error {
		if err := q.CreateProduct(ctx, product); err != nil {
			return err
		}
		return q.InsertOutboxEvent(ctx, newProductChangedEvent(event.ProductCreatedEventName, product, caller))
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperr.Newf(apperr.DuplicateCode, "product code %q already exists", product.Code)
		}
		return nil, toAppErr(err)
	}

	c.invalidate(ctx)
	log.Info().Int64("product_id", product.ID).Str("code", product.Code).Str("by", caller.Username).Msg("product created")
	return product, nil
}

// Update 只修改描述性欄位, 庫存不變, 既有訂單明細的價格快照不受影響
func (c *CatalogService) Update(ctx context.Context, caller authz.Identity, id int64, in ProductInput) (*model.Product, error) {
	if !authz.CanManageCatalog(caller) {
		return nil, ErrForbidden
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var product *model.Product
	err := c.store.ExecTx(ctx, func(q *db.Queries) error {
		err := q.UpdateProductDetails(ctx, &model.Product{
			ID:          id,
			Title:       strings.TrimSpace(in.Title),
			Price:       in.Price,
			Description: in.Description,
			Category:    in.Category,
			Image:       in.Image,
		})
		if err != nil {
			return err
		}
		if product, err = q.GetProduct(ctx, id); err != nil {
			return err
		}
		return q.InsertOutboxEvent(ctx, newProductChangedEvent(event.ProductUpdatedEventName, product, caller))
	})
	if err != nil {
		return nil, toAppErr(err)
	}

	c.invalidate(ctx)
	log.Info().Int64("product_id", id).Str("by", caller.Username).Msg("product updated")
	return product, nil
}

// Delete 管理員刪除商品
// 錯誤:
//   - NotFoundCode: 商品不存在
//   - InvalidOperationCode: 仍在購物車、訂單明細或評論中
func (c *CatalogService) Delete(ctx context.Context, caller authz.Identity, id int64) error {
	if !authz.CanManageCatalog(caller) {
		return ErrForbidden
	}

	err := c.store.ExecTx(ctx, func(q *db.Queries) error {
		if err := q.DeleteProduct(ctx, id); err != nil {
			return err
		}
		return q.InsertOutboxEvent(ctx, newProductChangedEvent(event.ProductDeletedEventName, &model.Product{ID: id}, caller))
	})
	if err != nil {
		return toAppErr(err)
	}

	c.invalidate(ctx)
	log.Info().Int64("product_id", id).Str("by", caller.Username).Msg("product deleted")
	return nil
}

func (c *CatalogService) invalidate(ctx context.Context) {
	if c.invalidator == nil {
		return
	}
	if err := c.invalidator.InvalidateCatalog(ctx); err != nil {
		log.Warn().Err(err).Msg("invalidate catalog cache failed")
	}
}

func newProductChangedEvent(name event.EventType, product *model.Product, caller authz.Identity) *event.ProductChangedEvent {
	return &event.ProductChangedEvent{
		BaseEvent: event.NewBaseEvent(name, strconv.FormatInt(product.ID, 10)),
		ProductID: product.ID,
		Code:      product.Code,
		Title:     product.Title,
		Price:     product.Price,
		ChangedBy: caller.Username,
	}
}

var _ ICatalogService = (*CatalogService)(nil)
