package redis_decorator

import (
	"context"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/redis_repo"
	"github.com/rs/zerolog/log"
)

type productLister interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
}

/*
商品清單 cache-aside
redis 錯誤不影響讀取, 直接回資料庫
清單中的庫存僅供顯示, 實際保留一律以資料庫為準
*/
type CacheAsideCatalogRepo struct {
	db    productLister
	redis redis_repo.ICatalogRedisRepository
}

func NewCacheAsideCatalogRepo(db productLister, redis redis_repo.ICatalogRedisRepository) *CacheAsideCatalogRepo {
	return &CacheAsideCatalogRepo{db: db, redis: redis}
}

func (c *CacheAsideCatalogRepo) ListProducts(ctx context.Context) ([]model.Product, error) {
	products, ok, err := c.redis.GetProducts(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("read catalog cache failed")
	}
	if ok {
		return products, nil
	}

	products, err = c.db.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.redis.SetProducts(ctx, products); err != nil {
		log.Warn().Err(err).Msg("write catalog cache failed")
	}
	return products, nil
}

func (c *CacheAsideCatalogRepo) InvalidateCatalog(ctx context.Context) error {
	return c.redis.DeleteProducts(ctx)
}
