package service

import (
	"context"

	"github.com/RoyceAzure/lab/storefront/internal/authz"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model/event"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/rs/zerolog/log"
)

type ICartService interface {
	AddItem(ctx context.Context, caller authz.Identity, productID, quantity int64) (*model.CartLine, error)
	RemoveItem(ctx context.Context, caller authz.Identity, cartLineID int64) error
	GetCart(ctx context.Context, username string) ([]model.CartLineView, error)
}

/*
購物車即保留
加入時在同一個交易內先扣庫存再寫購物車列, 移除時刪列並歸還庫存
*/
type CartService struct {
	store  db.IStore
	ledger *StockLedger
}

func NewCartService(store db.IStore, metrics Metrics) *CartService {
	if store == nil {
		panic("cart service dependency store is nil")
	}
	return &CartService{store: store, ledger: NewStockLedger(store, metrics, nil)}
}

// AddItem 加入購物車, 同商品已存在則累加, 只保留本次增加的數量
// 錯誤:
//   - ValidationCode: quantity < 1
//   - ConflictCode: 庫存不足, 不做任何異動
//   - NotFoundCode: 商品不存在
//   - ForbiddenCode: 未提供呼叫者
//   - NotFoundCode: 呼叫者沒有使用者資料
func (c *CartService) AddItem(ctx context.Context, caller authz.Identity, productID, quantity int64) (*model.CartLine, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if caller.IsZero() {
		return nil, ErrForbidden
	}

	var line *model.CartLine
	err := c.store.ExecTx(ctx, func(q *db.Queries) error {
		if err := c.ledger.Reserve(ctx, q, productID, quantity); err != nil {
			return err
		}

		var err error
		line, err = q.UpsertCartLine(ctx, caller.Username, productID, quantity)
		if err != nil {
			return err
		}

		return q.InsertOutboxEvent(ctx, &event.CartItemReservedEvent{
			BaseEvent:  event.NewBaseEvent(event.CartItemReservedEventName, caller.Username),
			Username:   caller.Username,
			CartLineID: line.ID,
			ProductID:  productID,
			Quantity:   quantity,
		})
	})
	if err != nil {
		// 商品已在扣庫存時確認存在, 外鍵失敗只可能是使用者不存在
		if db.IsForeignKeyViolation(err) {
			return nil, ErrUserNotFound
		}
		return nil, toAppErr(err)
	}

	log.Debug().Str("username", caller.Username).Int64("product_id", productID).Int64("quantity", quantity).Msg("cart item reserved")
	return line, nil
}

// RemoveItem 移除購物車列並歸還庫存
// 錯誤:
//   - NotFoundCode: 購物車列不存在
//   - ForbiddenCode: 不是呼叫者的購物車
func (c *CartService) RemoveItem(ctx context.Context, caller authz.Identity, cartLineID int64) error {
	err := c.store.ExecTx(ctx, func(q *db.Queries) error {
		line, err := q.GetCartLine(ctx, cartLineID)
		if err != nil {
			return err
		}
		if !authz.CanModifyCartLine(caller, *line) {
			return ErrForbidden
		}

		// 帶上 username 條件, 防止讀取後被其他交易刪除
		if err := q.DeleteCartLine(ctx, line.ID, line.Username); err != nil {
			return err
		}
		if err := c.ledger.Release(ctx, q, line.ProductID, line.Quantity); err != nil {
			return err
		}

		return q.InsertOutboxEvent(ctx, &event.CartItemReleasedEvent{
			BaseEvent:  event.NewBaseEvent(event.CartItemReleasedEventName, line.Username),
			Username:   line.Username,
			CartLineID: line.ID,
			ProductID:  line.ProductID,
			Quantity:   line.Quantity,
		})
	})
	if err != nil {
		return toAppErr(err)
	}

	log.Debug().Str("username", caller.Username).Int64("cart_line_id", cartLineID).Msg("cart item released")
	return nil
}

// GetCart 純讀取, 不影響庫存
func (c *CartService) GetCart(ctx context.Context, username string) ([]model.CartLineView, error) {
	lines, err := c.store.ListCartLines(ctx, username)
	if err != nil {
		return nil, toAppErr(err)
	}
	return lines, nil
}

var _ ICartService = (*CartService)(nil)
