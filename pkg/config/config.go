package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "STOREFRONT"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv        = "STOREFRONT_APP_ENV"
	EnvPort          = "STOREFRONT_APP_PORT"
	EnvLogLevel      = "STOREFRONT_LOG_LEVEL"
	EnvCatalogURL    = "STOREFRONT_CATALOG_BASE_URL"
	EnvRedisURL      = "STOREFRONT_REDIS_URL"
	EnvSessionSecret = "STOREFRONT_SESSION_SECRET"
	EnvCheckoutDelay = "STOREFRONT_CHECKOUT_DELAY"
	EnvCORSOrigins   = "STOREFRONT_CORS_ORIGINS"
	EnvTracingOn     = "STOREFRONT_TRACING_ENABLED"
)

type Config struct {
	App      AppConfig
	Catalog  CatalogConfig
	Redis    RedisConfig
	Cart     CartConfig
	Session  SessionConfig
	Checkout CheckoutConfig
	CORS     CORSConfig
	Tracing  TracingConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Catalog.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Tracing.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"STOREFRONT_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type CatalogConfig struct {
	BaseURL string        `envconfig:"STOREFRONT_CATALOG_BASE_URL" default:"https://dummyjson.com"`
	Timeout time.Duration `envconfig:"STOREFRONT_CATALOG_TIMEOUT" default:"10s"`

	BreakerEnabled      bool          `envconfig:"STOREFRONT_CATALOG_BREAKER_ENABLED" default:"true"`
	BreakerMinRequests  uint32        `envconfig:"STOREFRONT_CATALOG_BREAKER_MIN_REQUESTS" default:"3"`
	BreakerFailureRatio float64       `envconfig:"STOREFRONT_CATALOG_BREAKER_FAILURE_RATIO" default:"0.6"`
	BreakerOpenTimeout  time.Duration `envconfig:"STOREFRONT_CATALOG_BREAKER_OPEN_TIMEOUT" default:"30s"`
}

func (c CatalogConfig) validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("%s must not be empty", EnvCatalogURL)
	}
	if c.BreakerFailureRatio <= 0 || c.BreakerFailureRatio > 1 {
		return errors.New("catalog breaker failure ratio must be in (0, 1]")
	}
	return nil
}

// RedisConfig is optional; an empty URL and address keeps carts in process memory.
type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type CartConfig struct {
	TTL time.Duration `envconfig:"STOREFRONT_CART_TTL" default:"24h"`
}

type SessionConfig struct {
	Secret     string        `envconfig:"STOREFRONT_SESSION_SECRET" required:"true"`
	Issuer     string        `envconfig:"STOREFRONT_SESSION_ISSUER" default:"storefront"`
	TTL        time.Duration `envconfig:"STOREFRONT_SESSION_TTL" default:"720h"`
	CookieName string        `envconfig:"STOREFRONT_SESSION_COOKIE" default:"sf_session"`
}

type CheckoutConfig struct {
	Delay time.Duration `envconfig:"STOREFRONT_CHECKOUT_DELAY" default:"2s"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"STOREFRONT_CORS_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

// TracingConfig controls OTLP trace export. Tracing is off unless enabled.
type TracingConfig struct {
	Enabled     bool    `envconfig:"STOREFRONT_TRACING_ENABLED" default:"false"`
	Endpoint    string  `envconfig:"STOREFRONT_TRACING_ENDPOINT" default:"localhost:4318"`
	Insecure    bool    `envconfig:"STOREFRONT_TRACING_INSECURE" default:"true"`
	ServiceName string  `envconfig:"STOREFRONT_TRACING_SERVICE_NAME" default:"storefront-backend"`
	SampleRatio float64 `envconfig:"STOREFRONT_TRACING_SAMPLE_RATIO" default:"1"`
}

func (t TracingConfig) validate() error {
	if !t.Enabled {
		return nil
	}
	if strings.TrimSpace(t.Endpoint) == "" {
		return errors.New("tracing endpoint must not be empty when tracing is enabled")
	}
	if t.SampleRatio < 0 || t.SampleRatio > 1 {
		return errors.New("tracing sample ratio must be in [0, 1]")
	}
	return nil
}
