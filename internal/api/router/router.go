package router

import (
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api"
	m "github.com/RoyceAzure/lab/storefront/internal/api/middleware"
	"github.com/RoyceAzure/lab/storefront/internal/api/response"
	"github.com/RoyceAzure/lab/storefront/internal/ratelimit"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type Options struct {
	Logger   *zerolog.Logger
	Verifier *m.TokenVerifier
	// Limiter 只套用在寫入路由
	Limiter        ratelimit.Limiter
	Observer       m.RequestObserver
	MetricsHandler http.Handler
}

func SetupRouter(server *api.Server, opts Options) *chi.Mux {
	r := chi.NewRouter()

	// 全局中間件
	r.Use(m.RequestIdMiddleware)
	r.Use(middleware.RealIP)
	r.Use(m.LoggerMiddleware(opts.Logger))
	r.Use(m.RecoverMiddleware)
	r.Use(m.MetricsMiddleware(opts.Observer))
	r.Use(m.AuthPayloadMiddleware(opts.Verifier))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		response.SuccessJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if opts.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", opts.MetricsHandler)
	}

	limited := m.NewRateLimitMiddleware(opts.Limiter)

	r.Route("/api", func(r chi.Router) {
		// 讀取
		r.Group(func(r chi.Router) {
			r.Get("/cart/{username}", server.CartHandler.GetCart)
			r.Get("/orders/{username}", server.OrderHandler.ListOrders)
			r.Get("/orders/details/{id}", server.OrderHandler.GetOrderItems)
			r.Get("/reviews/{productId}", server.ReviewHandler.List)
			r.Get("/products", server.ProductHandler.List)
			r.Get("/products/{id}", server.ProductHandler.Get)
		})

		// 寫入
		r.Group(func(r chi.Router) {
			r.Use(limited)
			r.Post("/cart", server.CartHandler.AddItem)
			r.Delete("/cart/{id}", server.CartHandler.RemoveItem)
			r.Post("/checkout", server.CheckoutHandler.Checkout)
			r.Post("/reviews", server.ReviewHandler.Add)
			r.Delete("/reviews/{id}", server.ReviewHandler.Delete)
			r.Post("/products", server.ProductHandler.Create)
			r.Patch("/products/{id}", server.ProductHandler.Update)
			r.Delete("/products/{id}", server.ProductHandler.Delete)
			r.Post("/products/sync", server.ProductHandler.Sync)
			r.Patch("/products/{id}/stock", server.ProductHandler.AdjustStock)
			r.Post("/register", server.UserHandler.Register)
		})
	})

	return r
}
