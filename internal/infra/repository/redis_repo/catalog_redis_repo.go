package redis_repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/redis/go-redis/v9"
)

const catalogListKey = "catalog:products:list"

type ICatalogRedisRepository interface {
	// GetProducts 快取未命中回傳 ok=false
	GetProducts(ctx context.Context) (products []model.Product, ok bool, err error)
	SetProducts(ctx context.Context, products []model.Product) error
	DeleteProducts(ctx context.Context) error
}

type CatalogRedisRepo struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewCatalogRedisRepo(client *redis.Client, prefix string, ttl time.Duration) *CatalogRedisRepo {
	return &CatalogRedisRepo{client: client, prefix: prefix, ttl: ttl}
}

func (c *CatalogRedisRepo) key() string {
	if c.prefix == "" {
		return catalogListKey
	}
	return fmt.Sprintf("%s:%s", c.prefix, catalogListKey)
}

func (c *CatalogRedisRepo) GetProducts(ctx context.Context) ([]model.Product, bool, error) {
	data, err := c.client.Get(ctx, c.key()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var products []model.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, false, fmt.Errorf("decode cached catalog: %w", err)
	}
	return products, true, nil
}

func (c *CatalogRedisRepo) SetProducts(ctx context.Context, products []model.Product) error {
	data, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(), data, c.ttl).Err()
}

func (c *CatalogRedisRepo) DeleteProducts(ctx context.Context) error {
	return c.client.Del(ctx, c.key()).Err()
}

var _ ICatalogRedisRepository = (*CatalogRedisRepo)(nil)
