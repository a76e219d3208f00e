// Package catalog 外部商品目錄來源, 只提供描述性資料與初始庫存
package catalog

import (
	"context"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/shopspring/decimal"
)

type Item struct {
	Code        string
	Title       string
	Price       decimal.Decimal
	Description string
	Category    string
	Image       string
	// InitialStock 只在商品第一次建立時使用, nil 則使用預設值
	InitialStock *int64
}

type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]Item, error)
}

// ToProducts 轉為 model.Product, 未指定庫存的使用 defaultStock
func ToProducts(items []Item, defaultStock int64) []model.Product {
	products := make([]model.Product, 0, len(items))
	for _, item := range items {
		stock := defaultStock
		if item.InitialStock != nil {
			stock = *item.InitialStock
		}
		products = append(products, model.Product{
			Code:        item.Code,
			Title:       item.Title,
			Price:       item.Price.Round(2),
			Description: item.Description,
			Category:    item.Category,
			Image:       item.Image,
			Stock:       stock,
		})
	}
	return products
}
