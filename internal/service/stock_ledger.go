package service

import (
	"context"
	"strconv"

	"github.com/RoyceAzure/lab/storefront/internal/authz"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model/event"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/util"
	"github.com/rs/zerolog/log"
)

type IStockLedger interface {
	Reserve(ctx context.Context, q db.Querier, productID, quantity int64) error
	Release(ctx context.Context, q db.Querier, productID, quantity int64) error
	Adjust(ctx context.Context, caller authz.Identity, productID, delta int64) (int64, error)
	Available(ctx context.Context, productID int64) (int64, error)
}

// StockLedger 庫存唯一的寫入入口
// Reserve/Release 在呼叫端傳入的交易範圍內執行, 與購物車列的異動一起提交或回滾
type StockLedger struct {
	store   db.IStore
	metrics Metrics
	catalog CatalogInvalidator
}

func NewStockLedger(store db.IStore, metrics Metrics, catalog CatalogInvalidator) *StockLedger {
	if store == nil {
		panic("stock ledger dependency store is nil")
	}
	if util.IsNil(metrics) {
		metrics = noopMetrics{}
	}
	if util.IsNil(catalog) {
		catalog = nil
	}
	return &StockLedger{store: store, metrics: metrics, catalog: catalog}
}

// Reserve 原子扣除庫存, q 通常是 ExecTx 內的交易
// 錯誤:
//   - ConflictCode: 庫存不足
//   - InvalidOperationCode: quantity < 1
//   - NotFoundCode: 商品不存在
func (s *StockLedger) Reserve(ctx context.Context, q db.Querier, productID, quantity int64) error {
	err := q.ReserveStock(ctx, productID, quantity)
	if err != nil {
		appErr := toAppErr(err)
		if appErr == ErrInsufficientStock {
			s.metrics.StockConflict()
		}
		return appErr
	}
	return nil
}

// Release 歸還庫存
func (s *StockLedger) Release(ctx context.Context, q db.Querier, productID, quantity int64) error {
	return toAppErr(q.ReleaseStock(ctx, productID, quantity))
}

// Adjust 管理員補貨或盤損, 回傳調整後庫存
func (s *StockLedger) Adjust(ctx context.Context, caller authz.Identity, productID, delta int64) (int64, error) {
	if !authz.CanManageCatalog(caller) {
		return 0, ErrForbidden
	}

	var stock int64
	err := s.store.ExecTx(ctx, func(q *db.Queries) error {
		var err error
		stock, err = q.AdjustStock(ctx, productID, delta)
		if err != nil {
			return err
		}
		return q.InsertOutboxEvent(ctx, &event.StockAdjustedEvent{
			BaseEvent: event.NewBaseEvent(event.StockAdjustedEventName, strconv.FormatInt(productID, 10)),
			ProductID: productID,
			Delta:     delta,
			Stock:     stock,
			AdjustBy:  caller.Username,
		})
	})
	if err != nil {
		return 0, toAppErr(err)
	}

	if s.catalog != nil {
		if err := s.catalog.InvalidateCatalog(ctx); err != nil {
			log.Warn().Err(err).Int64("product_id", productID).Msg("invalidate catalog cache failed")
		}
	}
	log.Info().Int64("product_id", productID).Int64("delta", delta).Int64("stock", stock).Str("by", caller.Username).Msg("stock adjusted")
	return stock, nil
}

func (s *StockLedger) Available(ctx context.Context, productID int64) (int64, error) {
	stock, err := s.store.GetStock(ctx, productID)
	if err != nil {
		return 0, toAppErr(err)
	}
	return stock, nil
}

var _ IStockLedger = (*StockLedger)(nil)
