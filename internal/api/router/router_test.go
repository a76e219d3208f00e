package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/api"
	"github.com/RoyceAzure/lab/storefront/internal/api/dto"
	"github.com/RoyceAzure/lab/storefront/internal/api/handler"
	m "github.com/RoyceAzure/lab/storefront/internal/api/middleware"
	"github.com/RoyceAzure/lab/storefront/internal/authz"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db/dbtest"
	"github.com/RoyceAzure/lab/storefront/internal/metrics"
	"github.com/RoyceAzure/lab/storefront/internal/ratelimit"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RouterTestSuite struct {
	suite.Suite
	store    *db.Store
	dao      *db.DbDao
	users    *service.UserService
	metrics  *metrics.ServerMetrics
	verifier *m.TokenVerifier
	p1       int64
}

func (suite *RouterTestSuite) SetupTest() {
	suite.store, suite.dao = dbtest.NewStore(suite.T())
	suite.users = service.NewUserService(suite.store)
	suite.metrics = metrics.NewServerMetrics("test")
	suite.verifier = m.NewTokenVerifier("secret")
	suite.p1 = dbtest.SeedProduct(suite.T(), suite.dao, "p1", "10.00", 5)

	created, err := suite.users.EnsureBootstrapAdmin(context.Background(), "root", "rootpass")
	require.NoError(suite.T(), err)
	require.True(suite.T(), created)
}

func (suite *RouterTestSuite) newRouter(requireToken bool, limiter ratelimit.Limiter) *chi.Mux {
	callers := handler.NewCallerResolver(suite.users, requireToken)
	ledger := service.NewStockLedger(suite.store, suite.metrics, nil)
	server := api.NewServer(
		handler.NewCartHandler(service.NewCartService(suite.store, suite.metrics), callers),
		handler.NewCheckoutHandler(service.NewCheckoutService(suite.store, nil, suite.metrics), callers),
		handler.NewOrderHandler(service.NewOrderService(suite.store)),
		handler.NewReviewHandler(service.NewReviewService(suite.store), callers),
		handler.NewProductHandler(service.NewCatalogService(suite.store, nil, nil, nil, 20), ledger, callers),
		handler.NewUserHandler(suite.users),
	)

	opts := Options{
		Limiter:        limiter,
		Observer:       suite.metrics,
		MetricsHandler: suite.metrics.Handler(),
	}
	if requireToken {
		opts.Verifier = suite.verifier
	}
	return SetupRouter(server, opts)
}

func do(h http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (suite *RouterTestSuite) register(h http.Handler, username string) {
	rec := do(h, http.MethodPost, "/api/register", dto.RegisterDTO{Username: username, Password: "secret1"})
	require.Equal(suite.T(), http.StatusCreated, rec.Code, rec.Body.String())
}

func (suite *RouterTestSuite) TestCartCheckoutOrderFlow() {
	t := suite.T()
	h := suite.newRouter(false, nil)
	suite.register(h, "alice")

	rec := do(h, http.MethodPost, "/api/cart", dto.AddCartItemDTO{Username: "alice", ProductID: suite.p1, Quantity: 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	added := decode[dto.AddCartItemResponse](t, rec)
	require.NotZero(t, added.CartLineID)

	rec = do(h, http.MethodGet, "/api/cart/alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	lines := decode[[]model.CartLineView](t, rec)
	require.Len(t, lines, 1)
	require.EqualValues(t, 2, lines[0].Quantity)
	require.EqualValues(t, 3, dbtest.Stock(t, suite.store, suite.p1))

	rec = do(h, http.MethodPost, "/api/checkout", dto.CallerDTO{Username: "alice"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	placed := decode[dto.CheckoutResponse](t, rec)
	require.NotZero(t, placed.OrderID)

	rec = do(h, http.MethodGet, "/api/orders/alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	orders := decode[[]model.Order](t, rec)
	require.Len(t, orders, 1)
	require.Equal(t, "20", orders[0].Total.String())

	rec = do(h, http.MethodGet, fmt.Sprintf("/api/orders/details/%d", placed.OrderID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode[[]model.OrderItemView](t, rec)
	require.Len(t, items, 1)
	require.Equal(t, "product p1", items[0].Title)

	// 購物車已清空, 庫存不因結帳變動
	rec = do(h, http.MethodPost, "/api/checkout", dto.CallerDTO{Username: "alice"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "cart is empty", decode[map[string]string](t, rec)["error"])
	require.EqualValues(t, 3, dbtest.Stock(t, suite.store, suite.p1))

	rec = do(h, http.MethodGet, "/api/orders/details/999", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func (suite *RouterTestSuite) TestCartErrors() {
	t := suite.T()
	h := suite.newRouter(false, nil)
	suite.register(h, "alice")
	suite.register(h, "bob")

	rec := do(h, http.MethodPost, "/api/cart", dto.AddCartItemDTO{Username: "alice", ProductID: suite.p1, Quantity: 6})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "insufficient stock", decode[map[string]string](t, rec)["error"])

	rec = do(h, http.MethodPost, "/api/cart", dto.AddCartItemDTO{Username: "alice", ProductID: suite.p1, Quantity: 0})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h, http.MethodPost, "/api/cart", dto.AddCartItemDTO{Username: "ghost", ProductID: suite.p1, Quantity: 1})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(h, http.MethodPost, "/api/cart", dto.AddCartItemDTO{Username: "alice", ProductID: 999, Quantity: 1})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(h, http.MethodPost, "/api/cart", dto.AddCartItemDTO{Username: "alice", ProductID: suite.p1, Quantity: 1})
	require.Equal(t, http.StatusOK, rec.Code)
	lineID := decode[dto.AddCartItemResponse](t, rec).CartLineID

	// 別人的購物車列
	rec = do(h, http.MethodDelete, fmt.Sprintf("/api/cart/%d", lineID), dto.CallerDTO{Username: "bob"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(h, http.MethodDelete, fmt.Sprintf("/api/cart/%d", lineID), dto.CallerDTO{Username: "alice"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 5, dbtest.Stock(t, suite.store, suite.p1))

	rec = do(h, http.MethodDelete, fmt.Sprintf("/api/cart/%d", lineID), dto.CallerDTO{Username: "alice"})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(h, http.MethodDelete, "/api/cart/abc", dto.CallerDTO{Username: "alice"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func (suite *RouterTestSuite) TestReviewsAndAdmin() {
	t := suite.T()
	h := suite.newRouter(false, nil)
	suite.register(h, "alice")
	suite.register(h, "bob")

	rec := do(h, http.MethodPost, "/api/reviews", dto.AddReviewDTO{Username: "alice", ProductID: suite.p1, Content: "great"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	reviewID := decode[dto.IDResponse](t, rec).ID

	rec = do(h, http.MethodGet, fmt.Sprintf("/api/reviews/%d", suite.p1), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]model.Review](t, rec), 1)

	rec = do(h, http.MethodDelete, fmt.Sprintf("/api/reviews/%d", reviewID), dto.CallerDTO{Username: "bob"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	// 管理員可以刪除任何評論
	rec = do(h, http.MethodDelete, fmt.Sprintf("/api/reviews/%d", reviewID), dto.CallerDTO{Username: "root"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(h, http.MethodPatch, fmt.Sprintf("/api/products/%d/stock", suite.p1), dto.AdjustStockDTO{Username: "alice", Delta: 5})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(h, http.MethodPatch, fmt.Sprintf("/api/products/%d/stock", suite.p1), dto.AdjustStockDTO{Username: "root", Delta: 5})
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 10, decode[dto.AdjustStockResponse](t, rec).Stock)

	rec = do(h, http.MethodGet, fmt.Sprintf("/api/products/%d", suite.p1), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 10, decode[model.Product](t, rec).Stock)

	rec = do(h, http.MethodPost, "/api/register", dto.RegisterDTO{Username: "alice", Password: "secret1"})
	require.Equal(t, http.StatusConflict, rec.Code)
}

func (suite *RouterTestSuite) TestBearerIdentity() {
	t := suite.T()
	h := suite.newRouter(true, nil)
	suite.register(h, "alice")

	body := dto.AddCartItemDTO{ProductID: suite.p1, Quantity: 1}
	rec := do(h, http.MethodPost, "/api/cart", body)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(h, http.MethodPost, "/api/cart", body, "Authorization", "Bearer not-a-token")
	require.Equal(t, http.StatusForbidden, rec.Code)

	token, err := suite.verifier.CreateToken(authz.Identity{Username: "alice", Role: model.RoleUser}, time.Minute)
	require.NoError(t, err)
	auth := "Bearer " + token

	rec = do(h, http.MethodPost, "/api/cart", body, "Authorization", auth)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// token 身分與 body 不一致
	body.Username = "root"
	rec = do(h, http.MethodPost, "/api/cart", body, "Authorization", auth)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(h, http.MethodPost, "/api/checkout", nil, "Authorization", auth)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

// 簽章正確但帳號未註冊
func (suite *RouterTestSuite) TestBearerIdentityUnknownUser() {
	t := suite.T()
	h := suite.newRouter(true, nil)

	token, err := suite.verifier.CreateToken(authz.Identity{Username: "carol", Role: model.RoleUser}, time.Minute)
	require.NoError(t, err)
	auth := "Bearer " + token

	rec := do(h, http.MethodPost, "/api/cart", dto.AddCartItemDTO{ProductID: suite.p1, Quantity: 1}, "Authorization", auth)
	require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	require.EqualValues(t, 5, dbtest.Stock(t, suite.store, suite.p1))

	rec = do(h, http.MethodPost, "/api/reviews", dto.AddReviewDTO{ProductID: suite.p1, Content: "hi"}, "Authorization", auth)
	require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
}

// token 內宣稱 admin, 但資料庫角色是一般使用者
func (suite *RouterTestSuite) TestBearerRoleComesFromUsers() {
	t := suite.T()
	h := suite.newRouter(true, nil)
	suite.register(h, "alice")

	token, err := suite.verifier.CreateToken(authz.Identity{Username: "alice", Role: model.RoleAdmin}, time.Minute)
	require.NoError(t, err)

	rec := do(h, http.MethodPatch, fmt.Sprintf("/api/products/%d/stock", suite.p1), dto.AdjustStockDTO{Delta: 5}, "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func (suite *RouterTestSuite) TestProductAdmin() {
	t := suite.T()
	h := suite.newRouter(false, nil)
	suite.register(h, "alice")

	lamp := dto.ProductDTO{Username: "root", Title: "Lamp", Price: decimal.RequireFromString("8.00")}
	rec := do(h, http.MethodPost, "/api/products", dto.ProductDTO{Username: "alice", Title: "Lamp", Price: lamp.Price})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(h, http.MethodPost, "/api/products", dto.ProductDTO{Username: "root", Price: lamp.Price})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h, http.MethodPost, "/api/products", lamp)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	lampID := decode[dto.IDResponse](t, rec).ID
	require.NotZero(t, lampID)

	rec = do(h, http.MethodGet, fmt.Sprintf("/api/products/%d", lampID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 20, decode[model.Product](t, rec).Stock)

	// 先成交一張 10.00 的訂單
	rec = do(h, http.MethodPost, "/api/cart", dto.AddCartItemDTO{Username: "alice", ProductID: suite.p1, Quantity: 1})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(h, http.MethodPost, "/api/checkout", dto.CallerDTO{Username: "alice"})
	require.Equal(t, http.StatusOK, rec.Code)
	orderID := decode[dto.CheckoutResponse](t, rec).OrderID

	// 改價只影響之後的訂單, 庫存不變
	rec = do(h, http.MethodPatch, fmt.Sprintf("/api/products/%d", suite.p1), dto.ProductDTO{Username: "root", Title: "p1 v2", Price: decimal.RequireFromString("12.50")})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(h, http.MethodGet, fmt.Sprintf("/api/products/%d", suite.p1), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	p1 := decode[model.Product](t, rec)
	require.Equal(t, "p1 v2", p1.Title)
	require.True(t, decimal.RequireFromString("12.50").Equal(p1.Price))
	require.EqualValues(t, 4, p1.Stock)

	rec = do(h, http.MethodGet, fmt.Sprintf("/api/orders/details/%d", orderID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode[[]model.OrderItemView](t, rec)
	require.Len(t, items, 1)
	require.True(t, decimal.RequireFromString("10.00").Equal(items[0].Price))

	rec = do(h, http.MethodPatch, "/api/products/999", dto.ProductDTO{Username: "root", Title: "x", Price: decimal.Zero})
	require.Equal(t, http.StatusNotFound, rec.Code)

	// 在購物車中的商品不能刪除
	rec = do(h, http.MethodPost, "/api/cart", dto.AddCartItemDTO{Username: "alice", ProductID: lampID, Quantity: 1})
	require.Equal(t, http.StatusOK, rec.Code)
	lineID := decode[dto.AddCartItemResponse](t, rec).CartLineID

	rec = do(h, http.MethodDelete, fmt.Sprintf("/api/products/%d", lampID), dto.CallerDTO{Username: "root"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, service.ErrProductInUse.Msg, decode[map[string]string](t, rec)["error"])

	rec = do(h, http.MethodDelete, fmt.Sprintf("/api/products/%d", lampID), dto.CallerDTO{Username: "alice"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(h, http.MethodDelete, fmt.Sprintf("/api/cart/%d", lineID), dto.CallerDTO{Username: "alice"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(h, http.MethodDelete, fmt.Sprintf("/api/products/%d", lampID), dto.CallerDTO{Username: "root"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(h, http.MethodDelete, fmt.Sprintf("/api/products/%d", lampID), dto.CallerDTO{Username: "root"})
	require.Equal(t, http.StatusNotFound, rec.Code)

	// 有訂單明細的商品同樣不能刪除
	rec = do(h, http.MethodDelete, fmt.Sprintf("/api/products/%d", suite.p1), dto.CallerDTO{Username: "root"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func (suite *RouterTestSuite) TestRateLimitAndOps() {
	t := suite.T()
	bucket := ratelimit.NewTokenBucket(&ratelimit.LimiterConfig{Capacity: 1, RatePS: 1, RefillRate: time.Hour})
	defer bucket.Stop()
	h := suite.newRouter(false, bucket)

	suite.register(h, "alice")
	rec := do(h, http.MethodPost, "/api/register", dto.RegisterDTO{Username: "bob", Password: "secret1"})
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	// 讀取路由不限流
	rec = do(h, http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(h, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `storefront_test_http_requests_total{handler="/api/register",status="429"} 1`)
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}
