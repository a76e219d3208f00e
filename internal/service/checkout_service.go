package service

import (
	"context"
	"errors"
	"strconv"

	"github.com/RoyceAzure/lab/storefront/internal/authz"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model/event"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/apperr"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/util"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var ErrCheckoutInProgress = apperr.New(apperr.DuplicateCode, "checkout with this idempotency key is in progress")

// IdempotencyStore 結帳冪等鍵
type IdempotencyStore interface {
	// Claim 取得 key 的執行權, 若已完成則回傳先前的 orderID
	Claim(ctx context.Context, key string) (orderID int64, claimed bool, err error)
	Complete(ctx context.Context, key string, orderID int64) error
	Release(ctx context.Context, key string) error
}

type ICheckoutService interface {
	Checkout(ctx context.Context, caller authz.Identity) (*model.Order, error)
	CheckoutWithKey(ctx context.Context, caller authz.Identity, idempotencyKey string) (*model.Order, error)
}

type CheckoutService struct {
	store       db.IStore
	idempotency IdempotencyStore
	metrics     Metrics
}

func NewCheckoutService(store db.IStore, idempotency IdempotencyStore, metrics Metrics) *CheckoutService {
	if store == nil {
		panic("checkout service dependency store is nil")
	}
	if util.IsNil(metrics) {
		metrics = noopMetrics{}
	}
	if util.IsNil(idempotency) {
		idempotency = nil
	}
	return &CheckoutService{store: store, idempotency: idempotency, metrics: metrics}
}

/*
Checkout 將購物車轉為訂單, 整段在同一個交易內:
 1. 讀取購物車列與目前價格, 沒有任何列回傳 EmptyCart 且不寫入
 2. 以 decimal 計算總額
 3. 寫入訂單
 4. 寫入訂單明細, 價格為快照
 5. 只刪除步驟 1 讀到的列, 數量不一致代表被併發修改, 整個交易重跑
 6. 寫入 OrderPlaced outbox 事件

庫存在加入購物車時已扣除, 這裡不再異動
*/
func (s *CheckoutService) Checkout(ctx context.Context, caller authz.Identity) (*model.Order, error) {
	if caller.IsZero() {
		return nil, ErrForbidden
	}

	var order *model.Order
	err := s.store.ExecTx(ctx, func(q *db.Queries) error {
		lines, err := q.ListCartLines(ctx, caller.Username)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		order = &model.Order{
			Username: caller.Username,
			Total:    CalculateCartTotal(lines),
		}
		if err := q.CreateOrder(ctx, order); err != nil {
			return err
		}

		items := make([]model.OrderItem, 0, len(lines))
		for _, line := range lines {
			items = append(items, model.OrderItem{
				OrderID:   order.ID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Price:     line.Price,
			})
		}
		if err := q.CreateOrderItems(ctx, items); err != nil {
			return err
		}
		order.OrderItems = items

		for _, line := range lines {
			if err := q.DeleteCartLineIfUnchanged(ctx, line.ID, line.Quantity); err != nil {
				return err
			}
		}

		return q.InsertOutboxEvent(ctx, newOrderPlacedEvent(order))
	})
	if err != nil {
		if errors.Is(err, ErrEmptyCart) {
			s.metrics.CheckoutOutcome(CheckoutOutcomeEmpty)
			return nil, ErrEmptyCart
		}
		s.metrics.CheckoutOutcome(CheckoutOutcomeFailed)
		log.Error().Err(err).Str("username", caller.Username).Msg("checkout failed")
		return nil, apperr.As(toAppErr(err))
	}

	s.metrics.CheckoutOutcome(CheckoutOutcomeSuccess)
	log.Info().Str("username", caller.Username).Int64("order_id", order.ID).Str("total", order.Total.StringFixed(2)).Msg("order placed")
	return order, nil
}

// CheckoutWithKey 相同 key 重送時回傳同一張訂單, 不重複建立
func (s *CheckoutService) CheckoutWithKey(ctx context.Context, caller authz.Identity, idempotencyKey string) (*model.Order, error) {
	if idempotencyKey == "" || s.idempotency == nil {
		return s.Checkout(ctx, caller)
	}
	if caller.IsZero() {
		return nil, ErrForbidden
	}

	key := caller.Username + ":" + idempotencyKey
	orderID, claimed, err := s.idempotency.Claim(ctx, key)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !claimed {
		if orderID == 0 {
			s.metrics.CheckoutOutcome(CheckoutOutcomeDuplicate)
			return nil, ErrCheckoutInProgress
		}
		order, err := s.store.GetOrder(ctx, orderID)
		if err != nil {
			return nil, toAppErr(err)
		}
		s.metrics.CheckoutOutcome(CheckoutOutcomeReplay)
		return order, nil
	}

	order, err := s.Checkout(ctx, caller)
	if err != nil {
		// 失敗時釋放, 讓客戶端可以用同一個 key 重試
		if relErr := s.idempotency.Release(context.WithoutCancel(ctx), key); relErr != nil {
			log.Warn().Err(relErr).Str("key", key).Msg("release idempotency key failed")
		}
		return nil, err
	}
	if err := s.idempotency.Complete(context.WithoutCancel(ctx), key, order.ID); err != nil {
		log.Warn().Err(err).Str("key", key).Int64("order_id", order.ID).Msg("complete idempotency key failed")
	}
	return order, nil
}

// CalculateCartTotal 總額 = Σ 單價 × 數量
func CalculateCartTotal(lines []model.CartLineView) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Price.Mul(decimal.NewFromInt(line.Quantity)))
	}
	return total
}

func newOrderPlacedEvent(order *model.Order) *event.OrderPlacedEvent {
	items := make([]event.OrderPlacedItem, 0, len(order.OrderItems))
	for _, item := range order.OrderItems {
		items = append(items, event.OrderPlacedItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	evt := &event.OrderPlacedEvent{
		BaseEvent: event.NewBaseEvent(event.OrderPlacedEventName, strconv.FormatInt(order.ID, 10)),
		Username:  order.Username,
		OrderID:   order.ID,
		Total:     order.Total,
		Items:     items,
	}
	return evt
}

var _ ICheckoutService = (*CheckoutService)(nil)
