package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix scopes every environment variable consumed by the service.
const EnvPrefix = "ovenline"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Cart         CartConfig
	Stripe       StripeConfig
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
	Env          string `envconfig:"OVENLINE_APP_ENV" required:"true"`
	Port         string `envconfig:"OVENLINE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"OVENLINE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"OVENLINE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"OVENLINE_DB_DSN"`
	Driver string `envconfig:"OVENLINE_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"OVENLINE_DB_HOST"`
	Port     int    `envconfig:"OVENLINE_DB_PORT" default:"5432"`
	User     string `envconfig:"OVENLINE_DB_USER"`
	Password string `envconfig:"OVENLINE_DB_PASSWORD"`
	Name     string `envconfig:"OVENLINE_DB_NAME"`
	SSLMode  string `envconfig:"OVENLINE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"OVENLINE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"OVENLINE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"OVENLINE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"OVENLINE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"OVENLINE_REDIS_URL" required:"true"`
	Password     string        `envconfig:"OVENLINE_REDIS_PASSWORD"`
	DB           int           `envconfig:"OVENLINE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"OVENLINE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"OVENLINE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"OVENLINE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"OVENLINE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"OVENLINE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"OVENLINE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"OVENLINE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"OVENLINE_JWT_EXPIRATION_MINUTES" default:"60"`
	SessionTTLMinutes int    `envconfig:"OVENLINE_SESSION_TTL_MINUTES" default:"43200"`
}

// SessionTTL returns the redis session TTL configured in minutes.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"OVENLINE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"OVENLINE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"OVENLINE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"OVENLINE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"OVENLINE_ARGON_KEY_LEN" default:"32"`
}

type CartConfig struct {
	TTL          time.Duration `envconfig:"OVENLINE_CART_TTL" default:"72h"`
	GSTRateBasis int           `envconfig:"OVENLINE_CART_GST_RATE_BASIS" default:"500"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"OVENLINE_AUTO_MIGRATE" default:"false"`
}

type StripeConfig struct {
	APIKey        string `envconfig:"OVENLINE_STRIPE_API_KEY"`
	WebhookSecret string `envconfig:"OVENLINE_STRIPE_WEBHOOK_SECRET"`
	Env           string `envconfig:"OVENLINE_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	parts := map[string]string{
		"OVENLINE_DB_HOST": db.Host,
		"OVENLINE_DB_USER": db.User,
		"OVENLINE_DB_NAME": db.Name,
	}
	for _, key := range []string{"OVENLINE_DB_HOST", "OVENLINE_DB_USER", "OVENLINE_DB_NAME"} {
		if parts[key] == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either OVENLINE_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
