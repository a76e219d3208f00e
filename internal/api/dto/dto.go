package dto

import "github.com/shopspring/decimal"

type AddCartItemDTO struct {
	Username  string `json:"username"`
	ProductID int64  `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type AddCartItemResponse struct {
	Message    string `json:"message"`
	CartLineID int64  `json:"cart_line_id"`
}

// CallerDTO 只帶呼叫者帳號的 body (刪除、結帳、同步)
type CallerDTO struct {
	Username string `json:"username"`
}

type CheckoutResponse struct {
	Message string `json:"message"`
	OrderID int64  `json:"orderId"`
}

type AddReviewDTO struct {
	Username  string `json:"username"`
	ProductID int64  `json:"product_id"`
	Content   string `json:"content"`
}

type IDResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

// ProductDTO 管理員新增/修改商品, stock 只在新增時生效
type ProductDTO struct {
	Username    string          `json:"username"`
	Code        string          `json:"code"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Stock       *int64          `json:"stock,omitempty"`
}

type AdjustStockDTO struct {
	Username string `json:"username"`
	Delta    int64  `json:"delta"`
}

type AdjustStockResponse struct {
	Message string `json:"message"`
	Stock   int64  `json:"stock"`
}

type SyncResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

type RegisterDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	Message  string `json:"message"`
	Username string `json:"username"`
	Role     string `json:"role"`
}
