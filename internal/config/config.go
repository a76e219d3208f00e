package config

import (
	"errors"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	viper "github.com/spf13/viper"
)

/*
把 init 跟 read 分開
init : 設置 viper watch 與 onConfigChange
read : 一般讀取, 需要使用讀寫鎖
*/
var configSingleton *ConfigSingleTon
var muonce sync.Once

const ConfigPathEnv = "STOREFRONT_CONFIG"

type ConfigSingleTon struct {
	Config *Config
	mu     sync.RWMutex
}

type Config struct {
	ModulerName string `mapstructure:"MODULER_NAME"`
	ServerPort  string `mapstructure:"SERVER_PORT"`

	DbDriver   string `mapstructure:"DB_DRIVER"`
	SqlitePath string `mapstructure:"SQLITE_PATH"`
	DbName     string `mapstructure:"POSTGRES_DB"`
	DbHost     string `mapstructure:"POSTGRES_HOST"`
	DbPort     string `mapstructure:"POSTGRES_PORT"`
	DbUser     string `mapstructure:"POSTGRES_USER"`
	DbPas      string `mapstructure:"POSTGRES_PASSWORD"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	KafkaBrokers    string `mapstructure:"KAFKA_BROKERS"`
	KafkaEventTopic string `mapstructure:"KAFKA_EVENT_TOPIC"`

	LogLevel      string `mapstructure:"LOG_LEVEL"`
	LogKafkaTopic string `mapstructure:"LOG_KAFKA_TOPIC"`

	AuthTokenKey  string `mapstructure:"AUTH_TOKEN_KEY"`
	AdminUsername string `mapstructure:"ADMIN_USERNAME"`
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`

	CatalogFeedURL      string        `mapstructure:"CATALOG_FEED_URL"`
	CatalogSeedFile     string        `mapstructure:"CATALOG_SEED_FILE"`
	CatalogInitialStock int64         `mapstructure:"CATALOG_INITIAL_STOCK"`
	CatalogCacheTTL     time.Duration `mapstructure:"CATALOG_CACHE_TTL"`

	CheckoutMaxRetries int           `mapstructure:"CHECKOUT_MAX_RETRIES"`
	IdempotencyTTL     time.Duration `mapstructure:"IDEMPOTENCY_TTL"`
	IdempotencyPending time.Duration `mapstructure:"IDEMPOTENCY_PENDING_TTL"`

	RateLimitCapacity int     `mapstructure:"RATE_LIMIT_CAPACITY"`
	RateLimitRate     float64 `mapstructure:"RATE_LIMIT_RATE"`

	OutboxPollInterval time.Duration `mapstructure:"OUTBOX_POLL_INTERVAL"`
	OutboxBatchSize    int           `mapstructure:"OUTBOX_BATCH_SIZE"`
}

// KafkaBrokerList KAFKA_BROKERS 以逗號分隔
func (c *Config) KafkaBrokerList() []string {
	brokers := make([]string, 0)
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func GetConfig() *Config {
	initConfig()
	configSingleton.mu.RLock()
	defer configSingleton.mu.RUnlock()
	return configSingleton.Config
}

func initConfig() {
	muonce.Do(func() {
		configSingleton = &ConfigSingleTon{}
		path := os.Getenv(ConfigPathEnv)
		if path == "" {
			path = ".env"
		}

		v := viper.New()
		cf, err := load(v, path)
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("error read config")
		}
		configSingleton.Config = cf

		if _, err := os.Stat(path); err != nil {
			return
		}
		v.OnConfigChange(func(e fsnotify.Event) {
			cf, err := load(v, path)
			if err != nil {
				log.Error().Err(err).Str("file", e.Name).Msg("failed to reload config file, keep previous")
				return
			}
			configSingleton.mu.Lock()
			configSingleton.Config = cf
			configSingleton.mu.Unlock()
			log.Info().Str("file", e.Name).Msg("config reloaded")
		})
		v.WatchConfig()
	})
}

/*
LoadConfig 單純回傳錯誤, 由外部決定要不要 Fatal
檔案不存在時只讀環境變數
*/
func LoadConfig(path string) (*Config, error) {
	return load(viper.New(), path)
}

func load(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
		}
	}

	cf := &Config{}
	if err := v.Unmarshal(cf); err != nil {
		return nil, err
	}
	return cf, nil
}

// AutomaticEnv 只會覆蓋 viper 已知的 key, 所有欄位都要有預設值
func setDefaults(v *viper.Viper) {
	v.SetDefault("MODULER_NAME", "storefront")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("SQLITE_PATH", "storefront.db")
	v.SetDefault("POSTGRES_DB", "storefront")
	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_USER", "postgres")
	v.SetDefault("POSTGRES_PASSWORD", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_EVENT_TOPIC", "storefront.events")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_KAFKA_TOPIC", "")
	v.SetDefault("AUTH_TOKEN_KEY", "")
	v.SetDefault("ADMIN_USERNAME", "")
	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("CATALOG_FEED_URL", "")
	v.SetDefault("CATALOG_SEED_FILE", "")
	v.SetDefault("CATALOG_INITIAL_STOCK", 20)
	v.SetDefault("CATALOG_CACHE_TTL", "5m")
	v.SetDefault("CHECKOUT_MAX_RETRIES", 3)
	v.SetDefault("IDEMPOTENCY_TTL", "24h")
	v.SetDefault("IDEMPOTENCY_PENDING_TTL", "1m")
	v.SetDefault("RATE_LIMIT_CAPACITY", 100)
	v.SetDefault("RATE_LIMIT_RATE", 50)
	v.SetDefault("OUTBOX_POLL_INTERVAL", "1s")
	v.SetDefault("OUTBOX_BATCH_SIZE", 100)
}
