package service

import (
	"context"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
)

type IOrderService interface {
	ListOrders(ctx context.Context, username string) ([]model.Order, error)
	GetOrderItems(ctx context.Context, orderID int64) ([]model.OrderItemView, error)
}

// OrderService 訂單唯讀查詢, 訂單只由 checkout 建立
type OrderService struct {
	store db.IStore
}

func NewOrderService(store db.IStore) *OrderService {
	if store == nil {
		panic("order service dependency store is nil")
	}
	return &OrderService{store: store}
}

func (o *OrderService) ListOrders(ctx context.Context, username string) ([]model.Order, error) {
	orders, err := o.store.ListOrdersByUsername(ctx, username)
	if err != nil {
		return nil, toAppErr(err)
	}
	return orders, nil
}

func (o *OrderService) GetOrderItems(ctx context.Context, orderID int64) ([]model.OrderItemView, error) {
	items, err := o.store.ListOrderItemViews(ctx, orderID)
	if err != nil {
		return nil, toAppErr(err)
	}
	return items, nil
}

var _ IOrderService = (*OrderService)(nil)
