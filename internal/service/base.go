package service

import (
	"context"
	"time"
)

type BackGroundService interface {
	Start() error
	Stop(timeout time.Duration) error
}

// Metrics 領域事件計數, 由 metrics 套件實作
type Metrics interface {
	StockConflict()
	CheckoutOutcome(outcome string)
}

const (
	CheckoutOutcomeSuccess   = "success"
	CheckoutOutcomeEmpty     = "empty_cart"
	CheckoutOutcomeReplay    = "replay"
	CheckoutOutcomeFailed    = "failed"
	CheckoutOutcomeDuplicate = "in_progress"
)

type noopMetrics struct{}

func (noopMetrics) StockConflict() {}
func (noopMetrics) CheckoutOutcome(string) {}

// CatalogInvalidator 商品資料異動後清除快取
type CatalogInvalidator interface {
	InvalidateCatalog(ctx context.Context) error
}
