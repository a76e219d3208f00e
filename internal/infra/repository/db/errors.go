package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrProductNotFound 商品不存在
	ErrProductNotFound = errors.New("product not found")
	// ErrProductInUse 仍被購物車、訂單明細或評論引用, 不能刪除
	ErrProductInUse = errors.New("product is still referenced")
	// ErrStockNotEnough 商品庫存不足
	ErrStockNotEnough = errors.New("product stock not enough")
	// ErrStockNegative 調整後庫存會小於 0
	ErrStockNegative = errors.New("stock adjustment would go negative")
	// ErrInvalidQuantity 數量必須 >= 1
	ErrInvalidQuantity = errors.New("quantity must be at least 1")

	ErrCartLineNotFound = errors.New("cart line not found")
	// ErrCartChanged 結帳期間購物車被其他請求異動, 可重試
	ErrCartChanged = errors.New("cart changed during checkout")

	ErrOrderNotFound  = errors.New("order not found")
	ErrReviewNotFound = errors.New("review not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrUserExists     = errors.New("user already exists")
)

const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
)

// IsRetryable 交易因併發衝突中止, 重新執行整個交易即可
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrCartChanged) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
	}
	return false
}

// IsUniqueViolation postgres 23505 或 gorm 轉譯後的 ErrDuplicatedKey
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	// sqlite
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func IsForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}
	// sqlite
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
