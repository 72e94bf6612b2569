package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const EnvPrefix = "MILLETMART"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

// Environment variable names referenced by tests and deployment manifests.
const (
	EnvAppEnv      = "MILLETMART_APP_ENV"
	EnvPort        = "MILLETMART_APP_PORT"
	EnvDBDSN       = "MILLETMART_DB_DSN"
	EnvDBHost      = "MILLETMART_DB_HOST"
	EnvDBUser      = "MILLETMART_DB_USER"
	EnvDBName      = "MILLETMART_DB_NAME"
	EnvRedisURL    = "MILLETMART_REDIS_URL"
	EnvAdminKey    = "MILLETMART_ADMIN_KEY"
	EnvMemoryStore = "MILLETMART_USE_MEMORY_STORE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	Admin         AdminConfig
	Password      PasswordConfig
	Pricing       PricingConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if !cfg.FeatureFlags.UseMemoryStore {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	if err := cfg.Pricing.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MILLETMART_APP_ENV" required:"true"`
	Port         string `envconfig:"MILLETMART_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MILLETMART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MILLETMART_LOG_WARN_STACK" default:"false"`

	CORSOrigins []string `envconfig:"MILLETMART_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MILLETMART_DB_DSN"`
	Driver string `envconfig:"MILLETMART_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MILLETMART_DB_HOST"`
	LegacyPort     int    `envconfig:"MILLETMART_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MILLETMART_DB_USER"`
	LegacyPassword string `envconfig:"MILLETMART_DB_PASSWORD"`
	LegacyName     string `envconfig:"MILLETMART_DB_NAME"`
	LegacySSLMode  string `envconfig:"MILLETMART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MILLETMART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MILLETMART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MILLETMART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MILLETMART_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	RetryAttempts  int           `envconfig:"MILLETMART_DB_RETRY_ATTEMPTS" default:"3"`
	RetryBaseDelay time.Duration `envconfig:"MILLETMART_DB_RETRY_BASE_DELAY" default:"250ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MILLETMART_REDIS_URL" required:"true"`
	Address      string        `envconfig:"MILLETMART_REDIS_ADDR"`
	Password     string        `envconfig:"MILLETMART_REDIS_PASSWORD"`
	DB           int           `envconfig:"MILLETMART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MILLETMART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MILLETMART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MILLETMART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MILLETMART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MILLETMART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// AdminConfig carries the shared-secret key and session parameters for the
// admin surface. The key grants admin access without a login session and is
// intended for non-interactive callers.
type AdminConfig struct {
	Key         string        `envconfig:"MILLETMART_ADMIN_KEY" required:"true"`
	SessionTTL  time.Duration `envconfig:"MILLETMART_ADMIN_SESSION_TTL" default:"24h"`
	TOTPIssuer  string        `envconfig:"MILLETMART_ADMIN_TOTP_ISSUER" default:"MilletMart"`
	CookieName  string        `envconfig:"MILLETMART_ADMIN_COOKIE_NAME" default:"admin_token"`
	TokenHeader string        `envconfig:"MILLETMART_ADMIN_TOKEN_HEADER" default:"X-Admin-Token"`
	KeyHeader   string        `envconfig:"MILLETMART_ADMIN_KEY_HEADER" default:"X-Admin-Key"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MILLETMART_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MILLETMART_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MILLETMART_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MILLETMART_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MILLETMART_ARGON_KEY_LEN" default:"32"`
}

// PricingConfig exposes the cart summary knobs. Values are decimal strings so
// money never round-trips through floats.
type PricingConfig struct {
	FreeShippingThreshold string `envconfig:"MILLETMART_FREE_SHIPPING_THRESHOLD" default:"1000"`
	ShippingFee           string `envconfig:"MILLETMART_SHIPPING_FEE" default:"50"`
	TaxRate               string `envconfig:"MILLETMART_TAX_RATE" default:"0.05"`
}

func (p PricingConfig) validate() error {
	for name, raw := range map[string]string{
		"free shipping threshold": p.FreeShippingThreshold,
		"shipping fee":            p.ShippingFee,
		"tax rate":                p.TaxRate,
	} {
		if _, err := decimal.NewFromString(raw); err != nil {
			return fmt.Errorf("pricing %s %q is not a valid decimal: %w", name, raw, err)
		}
	}
	return nil
}

// Threshold returns the parsed free-shipping threshold.
func (p PricingConfig) Threshold() decimal.Decimal {
	d, _ := decimal.NewFromString(p.FreeShippingThreshold)
	return d
}

// Fee returns the parsed flat shipping fee.
func (p PricingConfig) Fee() decimal.Decimal {
	d, _ := decimal.NewFromString(p.ShippingFee)
	return d
}

// Rate returns the parsed tax rate.
func (p PricingConfig) Rate() decimal.Decimal {
	d, _ := decimal.NewFromString(p.TaxRate)
	return d
}

type AuthRateLimitConfig struct {
	LoginWindow  time.Duration `envconfig:"MILLETMART_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginIPLimit int           `envconfig:"MILLETMART_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"10"`
}

type FeatureFlagsConfig struct {
	UseMemoryStore bool `envconfig:"MILLETMART_USE_MEMORY_STORE" default:"false"`
	AutoMigrate    bool `envconfig:"MILLETMART_AUTO_MIGRATE" default:"false"`
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
