package service

import (
	"context"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/catalog"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db/dbtest"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/redis_decorator"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/redis_repo"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/apperr"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type staticSource struct {
	items []catalog.Item
}

func (s *staticSource) Name() string { return "static" }

func (s *staticSource) Fetch(ctx context.Context) ([]catalog.Item, error) {
	return s.items, nil
}

type CatalogServiceTestSuite struct {
	suite.Suite
	store   *db.Store
	dao     *db.DbDao
	mr      *miniredis.Miniredis
	source  *staticSource
	catalog *CatalogService
	ledger  *StockLedger
}

func (suite *CatalogServiceTestSuite) SetupTest() {
	suite.store, suite.dao = dbtest.NewStore(suite.T())
	dbtest.SeedUser(suite.T(), suite.store, "alice", model.RoleUser)

	suite.mr = miniredis.RunT(suite.T())
	client := redis.NewClient(&redis.Options{Addr: suite.mr.Addr()})
	suite.T().Cleanup(func() { client.Close() })
	cache := redis_decorator.NewCacheAsideCatalogRepo(suite.store, redis_repo.NewCatalogRedisRepo(client, "", time.Minute))

	suite.source = &staticSource{items: []catalog.Item{
		{Code: "feed-1", Title: "Backpack", Price: decimal.RequireFromString("109.95")},
		{Code: "feed-2", Title: "Shirt", Price: decimal.RequireFromString("22.3")},
	}}
	suite.catalog = NewCatalogService(suite.store, cache, cache, suite.source, 20)
	suite.ledger = NewStockLedger(suite.store, nil, cache)
}

func (suite *CatalogServiceTestSuite) TestSyncInsertsWithInitialStockThenKeepsStock() {
	ctx := context.Background()

	n, err := suite.catalog.Sync(ctx, root)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 2, n)

	products, err := suite.catalog.ListProducts(ctx)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), products, 2)
	require.EqualValues(suite.T(), 20, products[0].Stock)

	cart := NewCartService(suite.store, nil)
	_, err = cart.AddItem(ctx, alice, products[0].ID, 4)
	require.NoError(suite.T(), err)

	suite.source.items[0].Title = "Backpack v2"
	_, err = suite.catalog.Sync(ctx, root)
	require.NoError(suite.T(), err)

	got, err := suite.catalog.GetProduct(ctx, products[0].ID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), "Backpack v2", got.Title)
	require.EqualValues(suite.T(), 16, got.Stock)
}

func (suite *CatalogServiceTestSuite) TestListProductsIsCachedAndInvalidated() {
	ctx := context.Background()
	_, err := suite.catalog.SyncFrom(ctx, suite.source)
	require.NoError(suite.T(), err)

	products, err := suite.catalog.ListProducts(ctx)
	require.NoError(suite.T(), err)
	require.True(suite.T(), suite.mr.Exists("catalog:products:list"))

	// 管理員調整庫存會清除快取
	stock, err := suite.ledger.Adjust(ctx, root, products[0].ID, 5)
	require.NoError(suite.T(), err)
	require.EqualValues(suite.T(), 25, stock)
	require.False(suite.T(), suite.mr.Exists("catalog:products:list"))

	products, err = suite.catalog.ListProducts(ctx)
	require.NoError(suite.T(), err)
	require.EqualValues(suite.T(), 25, products[0].Stock)
}

func (suite *CatalogServiceTestSuite) TestSyncAndAdjustRequireAdmin() {
	ctx := context.Background()

	_, err := suite.catalog.Sync(ctx, alice)
	require.True(suite.T(), apperr.IsCode(err, apperr.ForbiddenCode))

	_, err = suite.ledger.Adjust(ctx, alice, 1, 5)
	require.True(suite.T(), apperr.IsCode(err, apperr.ForbiddenCode))
}

func (suite *CatalogServiceTestSuite) TestAdjustRejectsNegative() {
	ctx := context.Background()
	_, err := suite.catalog.SyncFrom(ctx, suite.source)
	require.NoError(suite.T(), err)
	products, err := suite.catalog.ListProducts(ctx)
	require.NoError(suite.T(), err)

	_, err = suite.ledger.Adjust(ctx, root, products[0].ID, -21)
	require.True(suite.T(), apperr.IsCode(err, apperr.InvalidOperationCode))

	stock, err := suite.ledger.Available(ctx, products[0].ID)
	require.NoError(suite.T(), err)
	require.EqualValues(suite.T(), 20, stock)
}

func (suite *CatalogServiceTestSuite) TestLedgerReserveRelease() {
	ctx := context.Background()
	p := dbtest.SeedProduct(suite.T(), suite.dao, "solo", "1.00", 1)

	require.True(suite.T(), apperr.IsCode(suite.ledger.Reserve(ctx, suite.store, p, 0), apperr.InvalidOperationCode))
	require.NoError(suite.T(), suite.ledger.Reserve(ctx, suite.store, p, 1))
	require.True(suite.T(), apperr.IsCode(suite.ledger.Reserve(ctx, suite.store, p, 1), apperr.ConflictCode))
	require.NoError(suite.T(), suite.ledger.Release(ctx, suite.store, p, 1))
	require.True(suite.T(), apperr.IsCode(suite.ledger.Release(ctx, suite.store, p, -2), apperr.InvalidOperationCode))

	stock, err := suite.ledger.Available(ctx, p)
	require.NoError(suite.T(), err)
	require.EqualValues(suite.T(), 1, stock)
}

// 交易回滾時 ledger 的扣除一起回滾
func (suite *CatalogServiceTestSuite) TestLedgerReserveInsideRolledBackTx() {
	ctx := context.Background()
	p := dbtest.SeedProduct(suite.T(), suite.dao, "tx", "1.00", 3)

	err := suite.store.ExecTx(ctx, func(q *db.Queries) error {
		if err := suite.ledger.Reserve(ctx, q, p, 2); err != nil {
			return err
		}
		return ErrEmptyCart
	})
	require.ErrorIs(suite.T(), err, ErrEmptyCart)
	require.EqualValues(suite.T(), 3, dbtest.Stock(suite.T(), suite.store, p))
}

func (suite *CatalogServiceTestSuite) TestCreateUpdateDeleteProduct() {
	ctx := context.Background()
	stock := int64(4)
	_, err := suite.catalog.ListProducts(ctx)
	require.NoError(suite.T(), err)
	require.True(suite.T(), suite.mr.Exists("catalog:products:list"))

	created, err := suite.catalog.Create(ctx, root, ProductInput{
		Title: "Lamp",
		Price: decimal.RequireFromString("15.50"),
		Stock: &stock,
	})
	require.NoError(suite.T(), err)
	require.NotZero(suite.T(), created.ID)
	require.NotEmpty(suite.T(), created.Code)
	require.EqualValues(suite.T(), 4, dbtest.Stock(suite.T(), suite.store, created.ID))
	require.False(suite.T(), suite.mr.Exists("catalog:products:list"))

	// 未給庫存時使用初始庫存
	other, err := suite.catalog.Create(ctx, root, ProductInput{Code: "chair", Title: "Chair", Price: decimal.RequireFromString("30")})
	require.NoError(suite.T(), err)
	require.EqualValues(suite.T(), 20, other.Stock)

	_, err = suite.catalog.Create(ctx, root, ProductInput{Code: "chair", Title: "Chair 2", Price: decimal.RequireFromString("1")})
	require.True(suite.T(), apperr.IsCode(err, apperr.DuplicateCode))

	// 修改不影響庫存, 即使帶了 stock
	ignored := int64(999)
	updated, err := suite.catalog.Update(ctx, root, created.ID, ProductInput{
		Title:    "Desk Lamp",
		Price:    decimal.RequireFromString("17.00"),
		Category: "home",
		Stock:    &ignored,
	})
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), "Desk Lamp", updated.Title)
	require.Equal(suite.T(), "home", updated.Category)
	require.True(suite.T(), decimal.RequireFromString("17").Equal(updated.Price))
	require.EqualValues(suite.T(), 4, updated.Stock)

	_, err = suite.catalog.Update(ctx, root, 9999, ProductInput{Title: "x", Price: decimal.Zero})
	require.True(suite.T(), apperr.IsCode(err, apperr.NotFoundCode))

	require.NoError(suite.T(), suite.catalog.Delete(ctx, root, created.ID))
	_, err = suite.catalog.GetProduct(ctx, created.ID)
	require.True(suite.T(), apperr.IsCode(err, apperr.NotFoundCode))
	require.True(suite.T(), apperr.IsCode(suite.catalog.Delete(ctx, root, created.ID), apperr.NotFoundCode))
}

func (suite *CatalogServiceTestSuite) TestProductValidationAndAuthorization() {
	ctx := context.Background()
	price := decimal.RequireFromString("1.00")

	_, err := suite.catalog.Create(ctx, alice, ProductInput{Title: "x", Price: price})
	require.True(suite.T(), apperr.IsCode(err, apperr.ForbiddenCode))
	_, err = suite.catalog.Update(ctx, alice, 1, ProductInput{Title: "x", Price: price})
	require.True(suite.T(), apperr.IsCode(err, apperr.ForbiddenCode))
	require.True(suite.T(), apperr.IsCode(suite.catalog.Delete(ctx, alice, 1), apperr.ForbiddenCode))

	_, err = suite.catalog.Create(ctx, root, ProductInput{Title: "  ", Price: price})
	require.ErrorIs(suite.T(), err, ErrProductTitleRequired)
	_, err = suite.catalog.Create(ctx, root, ProductInput{Title: "x", Price: decimal.RequireFromString("-1")})
	require.ErrorIs(suite.T(), err, ErrProductPriceNegative)
	negative := int64(-1)
	_, err = suite.catalog.Create(ctx, root, ProductInput{Title: "x", Price: price, Stock: &negative})
	require.ErrorIs(suite.T(), err, ErrProductStockNegative)
}

// 仍在購物車或有評論的商品不能刪除
func (suite *CatalogServiceTestSuite) TestDeleteReferencedProduct() {
	ctx := context.Background()
	inCart := dbtest.SeedProduct(suite.T(), suite.dao, "in-cart", "5.00", 5)
	reviewed := dbtest.SeedProduct(suite.T(), suite.dao, "reviewed", "5.00", 5)

	_, err := NewCartService(suite.store, nil).AddItem(ctx, alice, inCart, 1)
	require.NoError(suite.T(), err)
	_, err = NewReviewService(suite.store).Add(ctx, alice, reviewed, "nice")
	require.NoError(suite.T(), err)

	for _, id := range []int64{inCart, reviewed} {
		err = suite.catalog.Delete(ctx, root, id)
		require.True(suite.T(), apperr.IsCode(err, apperr.InvalidOperationCode), "product %d: %v", id, err)
		require.ErrorIs(suite.T(), err, ErrProductInUse)

		_, err = suite.catalog.GetProduct(ctx, id)
		require.NoError(suite.T(), err)
	}
	require.EqualValues(suite.T(), 4, dbtest.Stock(suite.T(), suite.store, inCart))
}

func TestCatalogServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CatalogServiceTestSuite))
}
