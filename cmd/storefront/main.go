package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/api"
	"github.com/RoyceAzure/lab/storefront/internal/api/handler"
	"github.com/RoyceAzure/lab/storefront/internal/api/router"
	"github.com/RoyceAzure/lab/storefront/internal/appcontext"
	"github.com/RoyceAzure/lab/storefront/internal/config"
	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		log.Error().Err(err).Msg("storefront exited with error")
		os.Exit(1)
	}
}

func run() error {
	app, err := appcontext.NewApplicationContext(config.GetConfig())
	if err != nil {
		return err
	}
	defer app.Shutdown(constants.DefaultShutdownTimeout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Bootstrap(ctx); err != nil {
		return err
	}

	// 初始化 handler
	callers := handler.NewCallerResolver(app.UserService, app.TokenVerifier != nil)
	server := api.NewServer(
		handler.NewCartHandler(app.CartService, callers),
		handler.NewCheckoutHandler(app.CheckoutService, callers),
		handler.NewOrderHandler(app.OrderService),
		handler.NewReviewHandler(app.ReviewService, callers),
		handler.NewProductHandler(app.CatalogService, app.StockLedger, callers),
		handler.NewUserHandler(app.UserService),
	)

	r := router.SetupRouter(server, router.Options{
		Logger:         &app.Logger,
		Verifier:       app.TokenVerifier,
		Limiter:        app.Limiter,
		Observer:       app.Metrics,
		MetricsHandler: app.Metrics.Handler(),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", app.Cf.ServerPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if err := app.OutboxRelay.Start(); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.DefaultShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		log.Info().Msg("Server gracefully stopped")
		return nil
	})

	return g.Wait()
}
