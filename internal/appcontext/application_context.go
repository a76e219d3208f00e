package appcontext

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	m "github.com/RoyceAzure/lab/storefront/internal/api/middleware"
	"github.com/RoyceAzure/lab/storefront/internal/catalog"
	"github.com/RoyceAzure/lab/storefront/internal/config"
	"github.com/RoyceAzure/lab/storefront/internal/infra/kafka"
	"github.com/RoyceAzure/lab/storefront/internal/infra/redisclient"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/redis_decorator"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/redis_repo"
	"github.com/RoyceAzure/lab/storefront/internal/logger"
	"github.com/RoyceAzure/lab/storefront/internal/metrics"
	"github.com/RoyceAzure/lab/storefront/internal/ratelimit"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type ApplicationContext struct {
	Cf      *config.Config
	Logger  zerolog.Logger
	DbDao   *db.DbDao
	Store   *db.Store
	Redis   *redis.Client
	Metrics *metrics.ServerMetrics

	TokenVerifier *m.TokenVerifier
	Limiter       ratelimit.Limiter
	localBucket   *ratelimit.TokenBucket
	logWriter     *logger.KafkaWriter
	eventProducer kafka.Producer

	StockLedger     *service.StockLedger
	CartService     *service.CartService
	CheckoutService *service.CheckoutService
	OrderService    *service.OrderService
	ReviewService   *service.ReviewService
	UserService     *service.UserService
	CatalogService  *service.CatalogService
	OutboxRelay     *service.OutboxRelay

	shutdownOnce sync.Once
}

func NewApplicationContext(cf *config.Config) (*ApplicationContext, error) {
	if cf == nil {
		return nil, errors.New("config is nil")
	}
	app := ApplicationContext{
		Cf: cf,
	}

	if err := app.Init(); err != nil {
		app.Shutdown(5 * time.Second)
		return nil, err
	}
	return &app, nil
}

func (app *ApplicationContext) Init() error {
	steps := []func() error{
		app.setUpLogger,
		app.setUpDbConn,
		app.setUpRedis,
		app.setUpMetrics,
		app.setUpTokenVerifier,
		app.setUpLimiter,
		app.setUpServices,
		app.setUpOutboxRelay,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func (app *ApplicationContext) setUpLogger() error {
	brokers := app.Cf.KafkaBrokerList()
	if app.Cf.LogKafkaTopic != "" && len(brokers) > 0 {
		cfg := kafka.DefaultConfig()
		cfg.Brokers = brokers
		cfg.Topic = app.Cf.LogKafkaTopic
		// log 不需要等所有副本
		cfg.RequiredAcks = 1
		p, err := kafka.NewProducer(cfg)
		if err != nil {
			return fmt.Errorf("setup kafka log writer: %w", err)
		}
		app.logWriter = logger.NewKafkaWriter(p)
	}

	if app.logWriter != nil {
		app.Logger = logger.New(app.Cf.LogLevel, app.Cf.ModulerName, app.logWriter)
	} else {
		app.Logger = logger.New(app.Cf.LogLevel, app.Cf.ModulerName)
	}
	log.Info().Str("db_driver", app.Cf.DbDriver).Str("port", app.Cf.ServerPort).Msg("logger ready")
	return nil
}

func (app *ApplicationContext) setUpDbConn() error {
	log.Info().Msg("Start setup database connection")
	var conn *gorm.DB
	var err error
	switch app.Cf.DbDriver {
	case db.DriverSqlite:
		conn, err = db.GetSqliteConn(app.Cf.SqlitePath)
	case db.DriverPostgres, "":
		conn, err = db.GetDbConn(app.Cf.DbName, app.Cf.DbHost, app.Cf.DbPort, app.Cf.DbUser, app.Cf.DbPas)
	default:
		err = fmt.Errorf("unsupported db driver %q", app.Cf.DbDriver)
	}
	if err != nil {
		return err
	}

	app.DbDao = db.NewDbDao(conn)
	if err := app.DbDao.InitMigrate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	app.Store = db.NewStore(app.DbDao, db.WithMaxRetries(app.Cf.CheckoutMaxRetries))
	log.Info().Msg("Finish setup database connection")
	return nil
}

// setUpRedis 沒有設定 REDIS_ADDR 時不使用快取與冪等鍵
func (app *ApplicationContext) setUpRedis() error {
	if app.Cf.RedisAddr == "" {
		log.Warn().Msg("REDIS_ADDR not set, catalog cache and idempotency keys disabled")
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := redisclient.GetRedisClient(ctx, app.Cf.RedisAddr,
		redisclient.WithPassword(app.Cf.RedisPassword),
		redisclient.WithDB(app.Cf.RedisDB),
	)
	if err != nil {
		return fmt.Errorf("setup redis: %w", err)
	}
	app.Redis = client
	return nil
}

func (app *ApplicationContext) setUpMetrics() error {
	app.Metrics = metrics.NewServerMetrics("api")
	return nil
}

func (app *ApplicationContext) setUpTokenVerifier() error {
	if app.Cf.AuthTokenKey != "" {
		app.TokenVerifier = m.NewTokenVerifier(app.Cf.AuthTokenKey)
	}
	return nil
}

func (app *ApplicationContext) setUpLimiter() error {
	cfg := &ratelimit.LimiterConfig{
		Key:      "storefront:mutations",
		Capacity: app.Cf.RateLimitCapacity,
		RatePS:   app.Cf.RateLimitRate,
	}
	if app.Redis != nil {
		app.Limiter = ratelimit.NewRsTokenBucket(app.Redis, cfg)
		return nil
	}
	app.localBucket = ratelimit.NewTokenBucket(cfg)
	app.Limiter = app.localBucket
	return nil
}

func (app *ApplicationContext) setUpServices() error {
	var lister service.ProductLister
	var invalidator service.CatalogInvalidator
	var idempotency service.IdempotencyStore
	if app.Redis != nil {
		cache := redis_decorator.NewCacheAsideCatalogRepo(app.Store, redis_repo.NewCatalogRedisRepo(app.Redis, app.Cf.ModulerName, app.Cf.CatalogCacheTTL))
		lister, invalidator = cache, cache
		idempotency = redis_repo.NewIdempotencyRedisRepo(app.Redis, app.Cf.IdempotencyTTL, redis_repo.WithPendingTTL(app.Cf.IdempotencyPending))
	}

	app.StockLedger = service.NewStockLedger(app.Store, app.Metrics, invalidator)
	app.CartService = service.NewCartService(app.Store, app.Metrics)
	app.CheckoutService = service.NewCheckoutService(app.Store, idempotency, app.Metrics)
	app.OrderService = service.NewOrderService(app.Store)
	app.ReviewService = service.NewReviewService(app.Store)
	app.UserService = service.NewUserService(app.Store)
	app.CatalogService = service.NewCatalogService(app.Store, lister, invalidator, app.CatalogSource(), app.Cf.CatalogInitialStock)
	return nil
}

// CatalogSource 種子檔優先, 其次外部 feed
func (app *ApplicationContext) CatalogSource() catalog.Source {
	switch {
	case app.Cf.CatalogSeedFile != "":
		return catalog.NewYAMLFile(app.Cf.CatalogSeedFile)
	case app.Cf.CatalogFeedURL != "":
		return catalog.NewHTTPFeed(app.Cf.CatalogFeedURL, &http.Client{Timeout: 30 * time.Second})
	}
	return nil
}

func (app *ApplicationContext) setUpOutboxRelay() error {
	var publisher service.EventPublisher = service.LogPublisher{}
	if brokers := app.Cf.KafkaBrokerList(); len(brokers) > 0 {
		cfg := kafka.DefaultConfig()
		cfg.Brokers = brokers
		cfg.Topic = app.Cf.KafkaEventTopic
		p, err := kafka.NewProducer(cfg)
		if err != nil {
			return fmt.Errorf("setup event producer: %w", err)
		}
		app.eventProducer = p
		publisher = kafka.NewEventPublisher(p)
	}
	app.OutboxRelay = service.NewOutboxRelay(app.Store, publisher, app.Metrics, app.Cf.OutboxPollInterval, app.Cf.OutboxBatchSize)
	return nil
}

// Bootstrap 建立初始管理員並同步商品目錄, 同步失敗只記錄
func (app *ApplicationContext) Bootstrap(ctx context.Context) error {
	created, err := app.UserService.EnsureBootstrapAdmin(ctx, app.Cf.AdminUsername, app.Cf.AdminPassword)
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	if created {
		log.Info().Str("username", app.Cf.AdminUsername).Msg("bootstrap admin created")
	}

	source := app.CatalogSource()
	if source == nil {
		return nil
	}
	n, err := app.CatalogService.SyncFrom(ctx, source)
	if err != nil {
		log.Error().Err(err).Str("source", source.Name()).Msg("startup catalog sync failed")
		return nil
	}
	log.Info().Int("count", n).Str("source", source.Name()).Msg("startup catalog sync done")
	return nil
}

// Shutdown 依相反順序釋放資源, 可重複呼叫
func (app *ApplicationContext) Shutdown(timeout time.Duration) {
	app.shutdownOnce.Do(func() { app.shutdown(timeout) })
}

func (app *ApplicationContext) shutdown(timeout time.Duration) {
	if app.OutboxRelay != nil {
		if err := app.OutboxRelay.Stop(timeout); err != nil {
			log.Error().Err(err).Msg("stop outbox relay")
		}
	}
	if app.localBucket != nil {
		app.localBucket.Stop()
	}
	if app.eventProducer != nil {
		if err := app.eventProducer.Close(); err != nil {
			log.Error().Err(err).Msg("close event producer")
		}
	}
	if app.Redis != nil {
		redisclient.CloseAll()
	}
	if app.DbDao != nil {
		if err := app.DbDao.Close(); err != nil {
			log.Error().Err(err).Msg("close database")
		}
	}
	if app.logWriter != nil {
		// 之後的 log 只寫 stdout
		log.Logger = logger.New(app.Cf.LogLevel, app.Cf.ModulerName)
		if err := app.logWriter.Close(); err != nil {
			log.Error().Err(err).Msg("close kafka log writer")
		}
	}
}
