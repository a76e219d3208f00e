// Package dbtest 提供測試用的記憶體資料庫
package dbtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// NewStore 建立已 migrate 的 sqlite 記憶體資料庫, 測試結束自動關閉
func NewStore(t testing.TB, opts ...db.StoreOption) (*db.Store, *db.DbDao) {
	t.Helper()
	conn, err := db.GetSqliteConn(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)

	dao := db.NewDbDao(conn)
	require.NoError(t, dao.InitMigrate())
	t.Cleanup(func() {
		_ = dao.Close()
	})
	return db.NewStore(dao, opts...), dao
}

func SeedUser(t testing.TB, store db.IStore, username string, role model.Role) {
	t.Helper()
	require.NoError(t, store.CreateUser(context.Background(), &model.User{
		Username:     username,
		PasswordHash: "test",
		Role:         role,
	}))
}

// SeedProduct 建立商品並回傳 id
func SeedProduct(t testing.TB, dao *db.DbDao, code, price string, stock int64) int64 {
	t.Helper()
	p := model.Product{
		Code:  code,
		Title: "product " + code,
		Price: decimal.RequireFromString(price),
		Image: "https://img/" + code,
		Stock: stock,
	}
	require.NoError(t, dao.Omit("CartLines", "OrderItems", "Reviews").Create(&p).Error)
	return p.ID
}

func Stock(t testing.TB, store db.IStore, productID int64) int64 {
	t.Helper()
	stock, err := store.GetStock(context.Background(), productID)
	require.NoError(t, err)
	return stock
}

func Count(t testing.TB, dao *db.DbDao, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, dao.Table(table).Count(&n).Error)
	return n
}
