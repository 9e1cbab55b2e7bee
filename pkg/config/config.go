package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Checkout     CheckoutConfig
	Paystack     PaystackConfig
	PayPal       PayPalConfig
	Webhooks     WebhooksConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Checkout.ShippingFee.IsNegative() {
		return nil, fmt.Errorf("shipping fee must not be negative")
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" default:"8000"`
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
	DSN string `envconfig:"STOREFRONT_DB_DSN" required:"true"`

	MaxOpenConns    int           `envconfig:"STOREFRONT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOREFRONT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREFRONT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL" required:"true"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type CheckoutConfig struct {
	// ShippingFee is the flat per-line fee added to every order.
	ShippingFee   decimal.Decimal `envconfig:"STOREFRONT_SHIPPING_FEE" default:"10"`
	TxRefAttempts int             `envconfig:"STOREFRONT_TXREF_ATTEMPTS" default:"10"`
}

type PaystackConfig struct {
	SecretKey string `envconfig:"STOREFRONT_PAYSTACK_SECRET_KEY" required:"true"`
	PublicKey string `envconfig:"STOREFRONT_PAYSTACK_PUBLIC_KEY"`
}

type PayPalConfig struct {
	ClientID      string        `envconfig:"STOREFRONT_PAYPAL_CLIENT_ID"`
	ClientSecret  string        `envconfig:"STOREFRONT_PAYPAL_CLIENT_SECRET"`
	WebhookID     string        `envconfig:"STOREFRONT_PAYPAL_WEBHOOK_ID" required:"true"`
	AuthURL       string        `envconfig:"STOREFRONT_PAYPAL_AUTH_URL" default:"https://api-m.paypal.com/v1/oauth2/token"`
	VerifyURL     string        `envconfig:"STOREFRONT_PAYPAL_VERIFY_URL" default:"https://api-m.paypal.com/v1/notifications/verify-webhook-signature"`
	VerifyTimeout time.Duration `envconfig:"STOREFRONT_PAYPAL_VERIFY_TIMEOUT" default:"5s"`
}

type WebhooksConfig struct {
	IdempotencyTTL time.Duration `envconfig:"STOREFRONT_WEBHOOK_IDEMPOTENCY_TTL" default:"72h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"STOREFRONT_AUTO_MIGRATE" default:"false"`
}
