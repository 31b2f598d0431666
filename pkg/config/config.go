package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	Session  SessionConfig
	Payment  PaymentConfig
	Shipping ShippingConfig
	Tax      TaxConfig
	Rates    RateLimitConfig
	Lists    ListsConfig
	Features FeatureFlagsConfig
	GCP      GCPConfig
	PubSub   PubSubConfig
	Outbox   OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"STOREFRONT_DB_DSN"`
	Driver string `envconfig:"STOREFRONT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"STOREFRONT_DB_HOST"`
	LegacyPort     int    `envconfig:"STOREFRONT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STOREFRONT_DB_USER"`
	LegacyPassword string `envconfig:"STOREFRONT_DB_PASSWORD"`
	LegacyName     string `envconfig:"STOREFRONT_DB_NAME"`
	LegacySSLMode  string `envconfig:"STOREFRONT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOREFRONT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOREFRONT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// SessionConfig controls verification of customer session tokens. Tokens are
// minted by the identity platform; this service only verifies them.
type SessionConfig struct {
	JWTSecret string `envconfig:"STOREFRONT_SESSION_JWT_SECRET" required:"true"`
	JWTIssuer string `envconfig:"STOREFRONT_SESSION_JWT_ISSUER" default:"lumencart"`
}

type PaymentConfig struct {
	APIKey     string `envconfig:"STOREFRONT_PAYMENT_API_KEY"`
	Env        string `envconfig:"STOREFRONT_PAYMENT_ENV" default:"test"`
	SuccessURL string `envconfig:"STOREFRONT_PAYMENT_SUCCESS_URL" default:"https://shop.lumencart.dev/checkout/return"`
	CancelURL  string `envconfig:"STOREFRONT_PAYMENT_CANCEL_URL" default:"https://shop.lumencart.dev/checkout"`
}

// Environment returns the normalized payment environment (test/live).
func (p PaymentConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(p.Env))
	if env == "" {
		return "test"
	}
	return env
}

type ShippingConfig struct {
	StandardCents int `envconfig:"STOREFRONT_SHIPPING_STANDARD_CENTS" default:"599"`
	ExpressCents  int `envconfig:"STOREFRONT_SHIPPING_EXPRESS_CENTS" default:"1499"`
	PickupCents   int `envconfig:"STOREFRONT_SHIPPING_PICKUP_CENTS" default:"0"`
}

// TaxConfig is the flat sales tax applied to the discounted subtotal,
// expressed in basis points.
type TaxConfig struct {
	RateBPS int `envconfig:"STOREFRONT_TAX_RATE_BPS" default:"0"`
}

type RateLimitConfig struct {
	SearchPerMinute int64 `envconfig:"STOREFRONT_RATE_SEARCH_PER_MINUTE" default:"60"`
}

type ListsConfig struct {
	RecentlyViewedCap int `envconfig:"STOREFRONT_LIST_RECENTLY_VIEWED_CAP" default:"20"`
	ComparisonCap     int `envconfig:"STOREFRONT_LIST_COMPARISON_CAP" default:"4"`
	SearchHistoryCap  int `envconfig:"STOREFRONT_LIST_SEARCH_HISTORY_CAP" default:"10"`
	SearchAlertsCap   int `envconfig:"STOREFRONT_LIST_SEARCH_ALERTS_CAP" default:"10"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"STOREFRONT_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"STOREFRONT_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"STOREFRONT_PUBSUB_ORDERS_TOPIC" default:"lc-order-events"`
	OrdersSubscription string `envconfig:"STOREFRONT_PUBSUB_ORDERS_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"STOREFRONT_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"STOREFRONT_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"STOREFRONT_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
