package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// newTestDao 每個測試一個獨立的記憶體資料庫
func newTestDao(t *testing.T) *DbDao {
	t.Helper()
	conn, err := GetSqliteConn(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)

	dao := NewDbDao(conn)
	require.NoError(t, dao.InitMigrate())
	t.Cleanup(func() {
		_ = dao.Close()
	})
	return dao
}

func seedUser(t *testing.T, q *Queries, username string, role model.Role) *model.User {
	t.Helper()
	user := &model.User{Username: username, PasswordHash: "x", Role: role}
	require.NoError(t, q.CreateUser(context.Background(), user))
	return user
}

func seedProduct(t *testing.T, q *Queries, code string, price string, stock int64) *model.Product {
	t.Helper()
	_, err := q.UpsertProducts(context.Background(), []model.Product{{
		Code:  code,
		Title: "product " + code,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	}})
	require.NoError(t, err)

	var p model.Product
	require.NoError(t, q.db.Where("code = ?", code).First(&p).Error)
	return &p
}
