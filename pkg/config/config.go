package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "bolajon"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Checkout     CheckoutConfig
	Boundary     BoundaryConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.DB.DSN == "" {
		return nil, fmt.Errorf("BOLAJON_DB_DSN is required")
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BOLAJON_APP_ENV" required:"true"`
	Port         string `envconfig:"BOLAJON_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"BOLAJON_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BOLAJON_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// ServiceConfig carries per-process metadata set at boot, not from env.
type ServiceConfig struct {
	Kind string `ignored:"true"`
}

type DBConfig struct {
	DSN             string        `envconfig:"BOLAJON_DB_DSN"`
	MaxOpenConns    int           `envconfig:"BOLAJON_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"BOLAJON_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"BOLAJON_DB_CONN_MAX_LIFETIME" default:"30m"`
	ConnMaxIdleTime time.Duration `envconfig:"BOLAJON_DB_CONN_MAX_IDLE_TIME" default:"5m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BOLAJON_REDIS_URL"`
	Address      string        `envconfig:"BOLAJON_REDIS_ADDR"`
	Password     string        `envconfig:"BOLAJON_REDIS_PASSWORD"`
	DB           int           `envconfig:"BOLAJON_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BOLAJON_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BOLAJON_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BOLAJON_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BOLAJON_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BOLAJON_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"BOLAJON_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"BOLAJON_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"BOLAJON_JWT_EXPIRATION_MINUTES" default:"60"`
	SessionTTLMinutes int    `envconfig:"BOLAJON_SESSION_TTL_MINUTES" default:"43200"`
}

// SessionTTL returns the server-side session lifetime.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

// CheckoutConfig holds the checkout policy knobs. Money values are whole
// units of the base currency (UZS has no minor unit).
type CheckoutConfig struct {
	ApprovalThreshold int64         `envconfig:"BOLAJON_CHECKOUT_APPROVAL_THRESHOLD" default:"100000"`
	ParentPINHash     string        `envconfig:"BOLAJON_CHECKOUT_PARENT_PIN_HASH"`
	ShippingFlat      int64         `envconfig:"BOLAJON_CHECKOUT_SHIPPING_FLAT" default:"0"`
	MaxItemQty        int           `envconfig:"BOLAJON_CHECKOUT_MAX_ITEM_QTY" default:"99"`
	SubmitRetries     int           `envconfig:"BOLAJON_CHECKOUT_SUBMIT_RETRIES" default:"3"`
	SubmitTimeout     time.Duration `envconfig:"BOLAJON_CHECKOUT_SUBMIT_TIMEOUT" default:"30s"`
	SessionTTL        time.Duration `envconfig:"BOLAJON_CHECKOUT_SESSION_TTL" default:"24h"`
	GuestCartTTL      time.Duration `envconfig:"BOLAJON_GUEST_CART_TTL" default:"720h"`
	PINAttemptLimit   int           `envconfig:"BOLAJON_CHECKOUT_PIN_ATTEMPT_LIMIT" default:"5"`
	PINAttemptWindow  time.Duration `envconfig:"BOLAJON_CHECKOUT_PIN_ATTEMPT_WINDOW" default:"15m"`
}

// BoundaryConfig points at the external order-creation service.
type BoundaryConfig struct {
	OrderServiceURL string        `envconfig:"BOLAJON_ORDER_SERVICE_URL"`
	RequestTimeout  time.Duration `envconfig:"BOLAJON_ORDER_SERVICE_TIMEOUT" default:"30s"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"BOLAJON_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"BOLAJON_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"BOLAJON_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic string `envconfig:"BOLAJON_PUBSUB_ORDERS_TOPIC" default:"bj-order-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"BOLAJON_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"BOLAJON_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"BOLAJON_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"BOLAJON_AUTO_MIGRATE" default:"false"`
}
