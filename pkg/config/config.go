package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "S4"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "S4_DB_DSN"
	EnvDBHost = "S4_DB_HOST"
	EnvDBUser = "S4_DB_USER"
	EnvDBName = "S4_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Auth         AuthConfig
	Commerce     CommerceConfig
	Stripe       StripeConfig
	Medusa       MedusaConfig
	Email        EmailConfig
	Site         SiteConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"S4_APP_ENV" required:"true"`
	Port         string `envconfig:"S4_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"S4_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"S4_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"S4_DB_DSN"`
	Driver string `envconfig:"S4_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"S4_DB_HOST"`
	LegacyPort     int    `envconfig:"S4_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"S4_DB_USER"`
	LegacyPassword string `envconfig:"S4_DB_PASSWORD"`
	LegacyName     string `envconfig:"S4_DB_NAME"`
	LegacySSLMode  string `envconfig:"S4_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"S4_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"S4_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"S4_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"S4_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"S4_REDIS_URL" required:"true"`
	Address      string        `envconfig:"S4_REDIS_ADDR"`
	Password     string        `envconfig:"S4_REDIS_PASSWORD"`
	DB           int           `envconfig:"S4_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"S4_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"S4_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"S4_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"S4_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"S4_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// AuthConfig verifies bearer tokens minted by the identity provider. The
// service never issues tokens itself; it only validates the shared-secret
// HS256 signature and reads the subject/email claims.
type AuthConfig struct {
	JWTSecret  string `envconfig:"S4_AUTH_JWT_SECRET"`
	Disabled   bool   `envconfig:"S4_AUTH_DISABLED" default:"false"`
	DemoUserID string `envconfig:"S4_AUTH_DEMO_USER_ID" default:"demo-user"`
	DemoEmail  string `envconfig:"S4_AUTH_DEMO_EMAIL" default:"demo@s4trading.com"`
}

type CommerceConfig struct {
	Backend string `envconfig:"S4_COMMERCE_BACKEND" default:"direct"`
}

type StripeConfig struct {
	APIKey        string `envconfig:"S4_STRIPE_API_KEY"`
	WebhookSecret string `envconfig:"S4_STRIPE_WEBHOOK_SECRET"`
	Env           string `envconfig:"S4_STRIPE_ENV" default:"test"`
	Currency      string `envconfig:"S4_STRIPE_CURRENCY" default:"aed"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type MedusaConfig struct {
	BaseURL        string        `envconfig:"S4_MEDUSA_BASE_URL"`
	AdminAPIKey    string        `envconfig:"S4_MEDUSA_ADMIN_API_KEY"`
	AdminAuthMode  string        `envconfig:"S4_MEDUSA_ADMIN_AUTH_MODE" default:"auto"`
	PublishableKey string        `envconfig:"S4_MEDUSA_PUBLISHABLE_KEY"`
	RegionID       string        `envconfig:"S4_MEDUSA_REGION_ID"`
	SalesChannelID string        `envconfig:"S4_MEDUSA_SALES_CHANNEL_ID"`
	CountryCode    string        `envconfig:"S4_MEDUSA_COUNTRY_CODE" default:"ae"`
	RequestTimeout time.Duration `envconfig:"S4_MEDUSA_REQUEST_TIMEOUT" default:"15s"`
}

type EmailConfig struct {
	Provider string `envconfig:"S4_EMAIL_PROVIDER" default:"resend"`
	APIKey   string `envconfig:"S4_EMAIL_API_KEY"`
	From     string `envconfig:"S4_EMAIL_FROM" default:"S4 Trading <orders@s4trading.com>"`
	ReplyTo  string `envconfig:"S4_EMAIL_REPLY_TO"`
}

type SiteConfig struct {
	PublicURL string `envconfig:"S4_SITE_PUBLIC_URL" default:"https://shop.s4trading.com"`
}

type RateLimitConfig struct {
	CheckoutWindow time.Duration `envconfig:"S4_RATE_LIMIT_CHECKOUT_WINDOW" default:"1m"`
	CheckoutLimit  int64         `envconfig:"S4_RATE_LIMIT_CHECKOUT_LIMIT" default:"10"`
	LeadWindow     time.Duration `envconfig:"S4_RATE_LIMIT_LEAD_WINDOW" default:"1m"`
	LeadLimit      int64         `envconfig:"S4_RATE_LIMIT_LEAD_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"S4_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"S4_AUTO_MIGRATE" default:"false"`
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
