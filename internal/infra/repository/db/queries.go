package db

import (
	"context"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model/event"
	"gorm.io/gorm"
)

// Querier 所有資料存取操作, 可在交易內外使用
type Querier interface {
	// stock ledger
	ReserveStock(ctx context.Context, productID, quantity int64) error
	ReleaseStock(ctx context.Context, productID, quantity int64) error
	AdjustStock(ctx context.Context, productID, delta int64) (int64, error)
	GetStock(ctx context.Context, productID int64) (int64, error)

	// product
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	UpsertProducts(ctx context.Context, products []model.Product) (int, error)
	CreateProduct(ctx context.Context, product *model.Product) error
	UpdateProductDetails(ctx context.Context, product *model.Product) error
	DeleteProduct(ctx context.Context, id int64) error

	// cart
	UpsertCartLine(ctx context.Context, username string, productID, quantity int64) (*model.CartLine, error)
	GetCartLine(ctx context.Context, id int64) (*model.CartLine, error)
	DeleteCartLine(ctx context.Context, id int64, username string) error
	DeleteCartLineIfUnchanged(ctx context.Context, id, quantity int64) error
	ListCartLines(ctx context.Context, username string) ([]model.CartLineView, error)

	// order
	CreateOrder(ctx context.Context, order *model.Order) error
	CreateOrderItems(ctx context.Context, items []model.OrderItem) error
	GetOrder(ctx context.Context, id int64) (*model.Order, error)
	ListOrdersByUsername(ctx context.Context, username string) ([]model.Order, error)
	ListOrderItemViews(ctx context.Context, orderID int64) ([]model.OrderItemView, error)

	// review
	CreateReview(ctx context.Context, review *model.Review) error
	GetReview(ctx context.Context, id int64) (*model.Review, error)
	ListReviewsByProduct(ctx context.Context, productID int64) ([]model.Review, error)
	DeleteReview(ctx context.Context, id int64) error

	// user
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	CountAdmins(ctx context.Context) (int64, error)

	// outbox
	InsertOutboxEvent(ctx context.Context, evt event.Event) error
	FetchPendingOutbox(ctx context.Context, limit int) ([]model.OutboxEvent, error)
	MarkOutboxSent(ctx context.Context, ids []int64, sentAt time.Time) error
}

// Queries 包一個 *gorm.DB, 可能是連線池或交易
type Queries struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Queries {
	return &Queries{db: db}
}

var _ Querier = (*Queries)(nil)
