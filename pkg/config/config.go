package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Session      SessionConfig
	Pricing      PricingConfig
	Checkout     CheckoutConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Sendgrid     SendgridConfig
	BigQuery     BigQueryConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Pricing.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ATTARHOUSE_APP_ENV" required:"true"`
	Port         string `envconfig:"ATTARHOUSE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ATTARHOUSE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ATTARHOUSE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ATTARHOUSE_DB_DSN"`
	Driver string `envconfig:"ATTARHOUSE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ATTARHOUSE_DB_HOST"`
	LegacyPort     int    `envconfig:"ATTARHOUSE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ATTARHOUSE_DB_USER"`
	LegacyPassword string `envconfig:"ATTARHOUSE_DB_PASSWORD"`
	LegacyName     string `envconfig:"ATTARHOUSE_DB_NAME"`
	LegacySSLMode  string `envconfig:"ATTARHOUSE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ATTARHOUSE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ATTARHOUSE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ATTARHOUSE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ATTARHOUSE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ATTARHOUSE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ATTARHOUSE_REDIS_ADDR"`
	Password     string        `envconfig:"ATTARHOUSE_REDIS_PASSWORD"`
	DB           int           `envconfig:"ATTARHOUSE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ATTARHOUSE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ATTARHOUSE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ATTARHOUSE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ATTARHOUSE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ATTARHOUSE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// SessionConfig governs the lifetime of browser-session state (cart, wishlist
// cursor) kept in Redis.
type SessionConfig struct {
	CartTTL time.Duration `envconfig:"ATTARHOUSE_SESSION_CART_TTL" default:"24h"`
}

// PricingConfig carries every rate the pricing engine needs. The two shipping
// thresholds that diverged between the cart and checkout surfaces are unified
// into a single mid-tier value here.
type PricingConfig struct {
	FreeShippingThreshold    decimal.Decimal `envconfig:"ATTARHOUSE_PRICING_FREE_SHIPPING_THRESHOLD" default:"30000"`
	ReducedShippingThreshold decimal.Decimal `envconfig:"ATTARHOUSE_PRICING_REDUCED_SHIPPING_THRESHOLD" default:"6000"`
	ReducedShippingFee       decimal.Decimal `envconfig:"ATTARHOUSE_PRICING_REDUCED_SHIPPING_FEE" default:"600"`
	StandardShippingFee      decimal.Decimal `envconfig:"ATTARHOUSE_PRICING_STANDARD_SHIPPING_FEE" default:"250"`

	// Coupons maps code to discount percent, e.g. "SAVE10:10,DIS10:10".
	Coupons string `envconfig:"ATTARHOUSE_PRICING_COUPONS" default:"SAVE10:10,DIS10:10"`

	// DonationPercents enumerates the selectable donation percentages.
	DonationPercents []int `envconfig:"ATTARHOUSE_PRICING_DONATION_PERCENTS" default:"2,3,4,5,6"`

	GiftThreshold decimal.Decimal `envconfig:"ATTARHOUSE_PRICING_GIFT_THRESHOLD" default:"10000"`
}

// CouponTable parses the configured coupon string into a code -> percent map.
// Codes are stored upper-cased so lookups can be case-insensitive.
func (p PricingConfig) CouponTable() (map[string]decimal.Decimal, error) {
	table := map[string]decimal.Decimal{}
	for _, entry := range strings.Split(p.Coupons, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid coupon entry %q", entry)
		}
		code := strings.ToUpper(strings.TrimSpace(parts[0]))
		if code == "" {
			return nil, fmt.Errorf("invalid coupon entry %q", entry)
		}
		percent, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid coupon percent in %q: %w", entry, err)
		}
		table[code] = percent
	}
	return table, nil
}

func (p PricingConfig) validate() error {
	if p.ReducedShippingThreshold.GreaterThan(p.FreeShippingThreshold) {
		return fmt.Errorf("reduced shipping threshold exceeds free shipping threshold")
	}
	if p.StandardShippingFee.IsNegative() || p.ReducedShippingFee.IsNegative() {
		return fmt.Errorf("shipping fees must be non-negative")
	}
	if len(p.DonationPercents) == 0 {
		return fmt.Errorf("at least one donation percent is required")
	}
	if _, err := p.CouponTable(); err != nil {
		return err
	}
	return nil
}

type CheckoutConfig struct {
	SubmitLockTTL     time.Duration `envconfig:"ATTARHOUSE_CHECKOUT_SUBMIT_LOCK_TTL" default:"30s"`
	SubmissionTimeout time.Duration `envconfig:"ATTARHOUSE_CHECKOUT_SUBMISSION_TIMEOUT" default:"15s"`
	OrderNumberPrefix string        `envconfig:"ATTARHOUSE_CHECKOUT_ORDER_NUMBER_PREFIX" default:"ORD-"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"ATTARHOUSE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"ATTARHOUSE_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"ATTARHOUSE_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"ATTARHOUSE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"ATTARHOUSE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic           string `envconfig:"ATTARHOUSE_PUBSUB_ORDERS_TOPIC" default:"attarhouse-order-events"`
	OrdersSubscription    string `envconfig:"ATTARHOUSE_PUBSUB_ORDERS_SUBSCRIPTION"`
	AnalyticsSubscription string `envconfig:"ATTARHOUSE_PUBSUB_ANALYTICS_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"ATTARHOUSE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"ATTARHOUSE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"ATTARHOUSE_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type BigQueryConfig struct {
	Dataset     string `envconfig:"ATTARHOUSE_BIGQUERY_DATASET" default:"attarhouse_analytics"`
	OrdersTable string `envconfig:"ATTARHOUSE_BIGQUERY_ORDERS_TABLE" default:"order_placed_events"`
}

type SendgridConfig struct {
	APIKey      string `envconfig:"ATTARHOUSE_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"ATTARHOUSE_SENDGRID_FROM_EMAIL"`
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
