package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// MinSigningKeyBytes is the smallest HMAC-SHA256 key accepted at startup.
const MinSigningKeyBytes = 32

// ErrSigningKeyInvalid is returned when AUTH_JWT_SECRET is missing, not base64 or too short.
var ErrSigningKeyInvalid = errors.New("config: invalid signing key")

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Notification NotificationConfig
	RateLimit    RateLimitConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name           string        `env:"APP_NAME" envDefault:"resume-service"`
	Env            string        `env:"APP_ENV" envDefault:"development"`
	Host           string        `env:"APP_HOST" envDefault:"0.0.0.0"`
	Port           string        `env:"APP_PORT" envDefault:"8080"`
	Version        string        `env:"APP_VERSION" envDefault:"dev"`
	RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"30s"`
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string        `env:"POSTGRES_DSN"`
	MaxConns       int32         `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
	MinConns       int32         `env:"POSTGRES_MIN_CONNS" envDefault:"2"`
	RunMigrations  bool          `env:"POSTGRES_RUN_MIGRATIONS" envDefault:"true"`
	MigrationsDir  string        `env:"POSTGRES_MIGRATIONS_DIR" envDefault:"migrations"`
	ConnMaxIdle    time.Duration `env:"POSTGRES_CONN_MAX_IDLE" envDefault:"30s"`
	ConnMaxLife    time.Duration `env:"POSTGRES_CONN_MAX_LIFE" envDefault:"5m"`
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	// JWTSecret is base64 encoded key material.
	JWTSecret       string        `env:"AUTH_JWT_SECRET"`
	AccessTokenTTL  time.Duration `env:"AUTH_ACCESS_TOKEN_TTL" envDefault:"1h"`
	RefreshTokenTTL time.Duration `env:"AUTH_REFRESH_TOKEN_TTL" envDefault:"336h"`
	ClockSkew       time.Duration `env:"AUTH_CLOCK_SKEW" envDefault:"60s"`
	ResetCodeTTL    time.Duration `env:"AUTH_RESET_CODE_TTL" envDefault:"3m"`
	BcryptCost      int           `env:"AUTH_BCRYPT_COST" envDefault:"12"`
	CookieSecure    bool          `env:"AUTH_COOKIE_SECURE" envDefault:"false"`
	PublicPaths     []string      `env:"AUTH_PUBLIC_PATHS" envSeparator:"," envDefault:"/auth/,/health,/metrics,/docs,/swagger"`
}

// NotificationConfig controls out-of-band notification delivery.
type NotificationConfig struct {
	EmailFrom string `env:"NOTIFY_EMAIL_FROM" envDefault:"noreply@example.com"`
	Workers   int    `env:"NOTIFY_WORKERS" envDefault:"2"`
	QueueSize int    `env:"NOTIFY_QUEUE_SIZE" envDefault:"128"`
}

// RateLimitConfig bounds unauthenticated credential endpoints per client IP.
type RateLimitConfig struct {
	PerMinute  int           `env:"RATE_LIMIT_PER_MINUTE" envDefault:"10"`
	Burst      int           `env:"RATE_LIMIT_BURST" envDefault:"5"`
	MaxClients int           `env:"RATE_LIMIT_MAX_CLIENTS" envDefault:"10000"`
	IdleTTL    time.Duration `env:"RATE_LIMIT_IDLE_TTL" envDefault:"10m"`
}

// Load reads configuration from the environment, after applying envFile (or .env) when present.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		_ = godotenv.Load()
	} else if err := godotenv.Load(envFile); err != nil {
		return nil, fmt.Errorf("load env file %s: %w", envFile, err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if _, err := cfg.Auth.SigningKey(); err != nil {
		return nil, err
	}
	if cfg.Auth.AccessTokenTTL <= 0 || cfg.Auth.RefreshTokenTTL <= 0 || cfg.Auth.ResetCodeTTL <= 0 {
		return nil, errors.New("config: token and reset code TTLs must be positive")
	}
	if cfg.Auth.ClockSkew < 0 {
		return nil, errors.New("config: AUTH_CLOCK_SKEW must not be negative")
	}
	return &cfg, nil
}

// SigningKey decodes the HMAC key material.
func (a AuthConfig) SigningKey() ([]byte, error) {
	raw := strings.TrimSpace(a.JWTSecret)
	if raw == "" {
		return nil, fmt.Errorf("%w: AUTH_JWT_SECRET is required", ErrSigningKeyInvalid)
	}
	key, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		key, err = base64.RawStdEncoding.DecodeString(raw)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: AUTH_JWT_SECRET must be base64: %v", ErrSigningKeyInvalid, err)
	}
	if len(key) < MinSigningKeyBytes {
		return nil, fmt.Errorf("%w: need at least %d bytes, got %d", ErrSigningKeyInvalid, MinSigningKeyBytes, len(key))
	}
	return key, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}
