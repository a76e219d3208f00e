package db

import (
	"context"
	"testing"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ProductRepoTestSuite struct {
	suite.Suite
	store *Store
}

func (suite *ProductRepoTestSuite) SetupTest() {
	suite.store = NewStore(newTestDao(suite.T()))
}

func (suite *ProductRepoTestSuite) TestUpsertProducts_InsertThenUpdateKeepsStock() {
	ctx := context.Background()

	n, err := suite.store.UpsertProducts(ctx, []model.Product{
		{Code: "A", Title: "Alpha", Price: decimal.RequireFromString("10.00"), Stock: 5, Category: "c1"},
		{Code: "B", Title: "Beta", Price: decimal.RequireFromString("2.50"), Stock: 7, Category: "c2"},
	})
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 2, n)

	products, err := suite.store.ListProducts(ctx)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), products, 2)
	alpha := products[0]
	require.Equal(suite.T(), "Alpha", alpha.Title)

	// 使用者保留了 2 件
	require.NoError(suite.T(), suite.store.ReserveStock(ctx, alpha.ID, 2))

	// 再次同步, 新的標題價格與不同的初始庫存
	_, err = suite.store.UpsertProducts(ctx, []model.Product{
		{Code: "A", Title: "Alpha v2", Price: decimal.RequireFromString("12.00"), Stock: 100, Category: "c1"},
	})
	require.NoError(suite.T(), err)

	got, err := suite.store.GetProduct(ctx, alpha.ID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), "Alpha v2", got.Title)
	require.True(suite.T(), decimal.RequireFromString("12").Equal(got.Price))
	require.EqualValues(suite.T(), 3, got.Stock)
}

func (suite *ProductRepoTestSuite) TestGetProduct_NotFound() {
	_, err := suite.store.GetProduct(context.Background(), 42)
	require.ErrorIs(suite.T(), err, ErrProductNotFound)
}

func (suite *ProductRepoTestSuite) TestUpsertProducts_Empty() {
	n, err := suite.store.UpsertProducts(context.Background(), nil)
	require.NoError(suite.T(), err)
	require.Zero(suite.T(), n)
}

func (suite *ProductRepoTestSuite) TestUpdateProductDetails_KeepsStock() {
	ctx := context.Background()
	p := seedProduct(suite.T(), suite.store.Queries, "U", "3.00", 9)

	err := suite.store.UpdateProductDetails(ctx, &model.Product{
		ID:    p.ID,
		Title: "Renamed",
		Price: decimal.RequireFromString("4.25"),
		Stock: 0,
	})
	require.NoError(suite.T(), err)

	got, err := suite.store.GetProduct(ctx, p.ID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), "Renamed", got.Title)
	require.Equal(suite.T(), "U", got.Code)
	require.True(suite.T(), decimal.RequireFromString("4.25").Equal(got.Price))
	require.EqualValues(suite.T(), 9, got.Stock)

	err = suite.store.UpdateProductDetails(ctx, &model.Product{ID: 404, Title: "x"})
	require.ErrorIs(suite.T(), err, ErrProductNotFound)
}

func (suite *ProductRepoTestSuite) TestDeleteProduct() {
	ctx := context.Background()
	free := seedProduct(suite.T(), suite.store.Queries, "FREE", "1.00", 1)
	used := seedProduct(suite.T(), suite.store.Queries, "USED", "1.00", 1)
	seedUser(suite.T(), suite.store.Queries, "alice", model.RoleUser)
	_, err := suite.store.UpsertCartLine(ctx, "alice", used.ID, 1)
	require.NoError(suite.T(), err)

	require.NoError(suite.T(), suite.store.DeleteProduct(ctx, free.ID))
	require.ErrorIs(suite.T(), suite.store.DeleteProduct(ctx, free.ID), ErrProductNotFound)

	require.ErrorIs(suite.T(), suite.store.DeleteProduct(ctx, used.ID), ErrProductInUse)
	_, err = suite.store.GetProduct(ctx, used.ID)
	require.NoError(suite.T(), err)
}

func TestProductRepoTestSuite(t *testing.T) {
	suite.Run(t, new(ProductRepoTestSuite))
}
