package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Backends de almacenamiento soportados.
const (
	StoreMongo    = "mongo"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreFile     = "file"
)

type Config struct {
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	HTTPPort string `envconfig:"HTTP_PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile  string `envconfig:"LOG_FILE"`

	CatalogStore string `envconfig:"CATALOG_STORE" default:"mongo"`
	CartStore    string `envconfig:"CART_STORE" default:"mongo"`

	MongoURI    string `envconfig:"MONGO_URI" default:"mongodb://127.0.0.1:27017"`
	MongoDB     string `envconfig:"MONGO_DB" default:"hexashop"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"./hexashop.db"`
	PostgresDSN string `envconfig:"DATABASE_URL"`
	DataDir     string `envconfig:"DATA_DIR" default:"./data"`
	PublicDir   string `envconfig:"PUBLIC_DIR" default:"./public"`

	RedisAddr string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	CacheTTL  time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	UseKafka     bool     `envconfig:"USE_KAFKA" default:"false"`
	KafkaBrokers []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	KafkaTopic   string   `envconfig:"KAFKA_TOPIC" default:"catalog-events"`
	KafkaGroup   string   `envconfig:"KAFKA_GROUP" default:"hexashop-analytics"`

	ClickHouseAddr  string        `envconfig:"CLICKHOUSE_ADDR"`
	ClickHouseDB    string        `envconfig:"CLICKHOUSE_DB" default:"default"`
	AnalyticsFlush  time.Duration `envconfig:"ANALYTICS_FLUSH" default:"5s"`
	AnalyticsBatch  int           `envconfig:"ANALYTICS_BATCH" default:"100"`
	LiveBufferSize  int           `envconfig:"LIVE_BUFFER" default:"16"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// LoadConfig lee un .env opcional y después las variables de entorno.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // el .env es opcional

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.CatalogStore = strings.ToLower(strings.TrimSpace(c.CatalogStore))
	c.CartStore = strings.ToLower(strings.TrimSpace(c.CartStore))
	if c.CatalogStore == "" {
		c.CatalogStore = StoreMongo
	}
	if c.CartStore == "" {
		c.CartStore = StoreMongo
	}

	switch c.CatalogStore {
	case StoreMongo, StoreSQLite, StoreFile:
	case StorePostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("config: DATABASE_URL is required when CATALOG_STORE=%s", StorePostgres)
		}
	default:
		return fmt.Errorf("config: unknown CATALOG_STORE %q", c.CatalogStore)
	}

	switch c.CartStore {
	case StoreMongo, StoreFile:
	default:
		return fmt.Errorf("config: unknown CART_STORE %q", c.CartStore)
	}

	// Ambos alimentan un time.NewTicker, que no admite intervalos <= 0.
	if c.CacheTTL <= 0 {
		return fmt.Errorf("config: CACHE_TTL must be positive, got %s", c.CacheTTL)
	}
	if c.AnalyticsFlush <= 0 {
		return fmt.Errorf("config: ANALYTICS_FLUSH must be positive, got %s", c.AnalyticsFlush)
	}
	if c.AnalyticsBatch <= 0 {
		return fmt.Errorf("config: ANALYTICS_BATCH must be positive, got %d", c.AnalyticsBatch)
	}

	if c.LiveBufferSize <= 0 {
		c.LiveBufferSize = 16
	}
	return nil
}

// AnalyticsEnabled indica si hay ClickHouse configurado.
func (c *Config) AnalyticsEnabled() bool {
	return c.ClickHouseAddr != ""
}
