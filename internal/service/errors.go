package service

import (
	"errors"

	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/apperr"
)

var (
	ErrInsufficientStock = apperr.New(apperr.ConflictCode, "insufficient stock")
	ErrEmptyCart         = apperr.New(apperr.EmptyCartCode, "cart is empty")
	ErrInvalidQuantity   = apperr.New(apperr.ValidationCode, "quantity must be a positive integer")
	ErrProductNotFound   = apperr.New(apperr.NotFoundCode, "product not found")
	ErrCartLineNotFound  = apperr.New(apperr.NotFoundCode, "cart line not found")
	ErrOrderNotFound     = apperr.New(apperr.NotFoundCode, "order not found")
	ErrReviewNotFound    = apperr.New(apperr.NotFoundCode, "review not found")
	ErrUserNotFound      = apperr.New(apperr.NotFoundCode, "user not found")
	ErrUserExists        = apperr.New(apperr.DuplicateCode, "username already taken")
	ErrForbidden         = apperr.New(apperr.ForbiddenCode, "forbidden")
	ErrStockNegative     = apperr.New(apperr.InvalidOperationCode, "stock cannot go below zero")
	ErrInvalidOperation  = apperr.New(apperr.InvalidOperationCode, "quantity must be at least 1")
	ErrProductInUse      = apperr.New(apperr.InvalidOperationCode, "product is still in a cart, an order or a review")
	ErrInvalidReference  = apperr.New(apperr.InvalidOperationCode, "referenced record does not exist")
)

// toAppErr 將 repository 錯誤轉成對外的錯誤分類
func toAppErr(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, db.ErrStockNotEnough):
		return ErrInsufficientStock
	case errors.Is(err, db.ErrStockNegative):
		return ErrStockNegative
	case errors.Is(err, db.ErrInvalidQuantity):
		return ErrInvalidOperation
	case errors.Is(err, db.ErrProductInUse):
		return ErrProductInUse
	case errors.Is(err, db.ErrProductNotFound):
		return ErrProductNotFound
	case errors.Is(err, db.ErrCartLineNotFound):
		return ErrCartLineNotFound
	case errors.Is(err, db.ErrOrderNotFound):
		return ErrOrderNotFound
	case errors.Is(err, db.ErrReviewNotFound):
		return ErrReviewNotFound
	case errors.Is(err, db.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, db.ErrUserExists):
		return ErrUserExists
	case db.IsForeignKeyViolation(err):
		return ErrInvalidReference
	}
	return apperr.Internal(err)
}
