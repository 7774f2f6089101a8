package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends accepted by STORAGE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Authentication modes accepted by AUTH_MODE.
const (
	AuthModeMock     = "mock"
	AuthModeAccounts = "accounts"
)

// DefaultClientTokenSecret signs client cookies when AUTH_CLIENT_TOKEN_SECRET
// is unset. It is only accepted in development environments.
const DefaultClientTokenSecret = "dev-secret"

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Storage  StorageConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Session  SessionConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                   string
	Env                    string
	Host                   string
	Port                   string
	Version                string
	RequestTimeoutSeconds  int
	ShutdownTimeoutSeconds int
}

// StorageConfig selects where persisted user records live.
type StorageConfig struct {
	Backend     string
	SQLitePath  string
	KeyPrefix   string
	RecordTTLHr int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	Mode                string
	ClientTokenSecret   string
	ClientTokenTTLHours int
	BcryptCost          int
	LoginAttemptsPerMin int
}

// SessionConfig controls the browser-facing session cookie and uploads.
type SessionConfig struct {
	CookieName      string
	CookieSecure    bool
	MaxPictureBytes int64
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                   getEnv("APP_NAME", "popx-account-portal"),
			Env:                    getEnv("APP_ENV", "development"),
			Host:                   getEnv("APP_HOST", "0.0.0.0"),
			Port:                   getEnv("APP_PORT", "8080"),
			Version:                getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds:  getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			ShutdownTimeoutSeconds: getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 10),
		},
		Storage: StorageConfig{
			Backend:     strings.ToLower(getEnv("STORAGE_BACKEND", BackendMemory)),
			SQLitePath:  getEnv("STORAGE_SQLITE_PATH", "popx.db"),
			KeyPrefix:   getEnv("STORAGE_KEY_PREFIX", "popx"),
			RecordTTLHr: getEnvAsInt("STORAGE_RECORD_TTL_HOURS", 0),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			Mode:                strings.ToLower(getEnv("AUTH_MODE", AuthModeMock)),
			ClientTokenSecret:   getEnv("AUTH_CLIENT_TOKEN_SECRET", DefaultClientTokenSecret),
			ClientTokenTTLHours: getEnvAsInt("AUTH_CLIENT_TOKEN_TTL_HOURS", 24*30),
			BcryptCost:          getEnvAsInt("AUTH_BCRYPT_COST", 12),
			LoginAttemptsPerMin: getEnvAsInt("AUTH_LOGIN_ATTEMPTS_PER_MINUTE", 10),
		},
		Session: SessionConfig{
			CookieName:      getEnv("SESSION_COOKIE_NAME", "popx_client"),
			CookieSecure:    getEnvAsBool("SESSION_COOKIE_SECURE", false),
			MaxPictureBytes: int64(getEnvAsInt("SESSION_MAX_PICTURE_BYTES", 2<<20)),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unknown backend or mode names, missing DSNs and the
// default cookie secret outside development.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendSQLite, BackendRedis:
	case BackendPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("POSTGRES_DSN must be set when STORAGE_BACKEND=%s", BackendPostgres)
		}
	default:
		return fmt.Errorf("invalid STORAGE_BACKEND %q", c.Storage.Backend)
	}

	switch c.Auth.Mode {
	case AuthModeMock, AuthModeAccounts:
	default:
		return fmt.Errorf("invalid AUTH_MODE %q", c.Auth.Mode)
	}

	if !c.App.IsDevelopment() && c.Auth.ClientTokenSecret == DefaultClientTokenSecret {
		return fmt.Errorf("AUTH_CLIENT_TOKEN_SECRET must be set when APP_ENV=%s", c.App.Env)
	}

	if c.Session.CookieName == "" {
		return fmt.Errorf("SESSION_COOKIE_NAME must not be empty")
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// ShutdownTimeout returns how long graceful shutdown may take.
func (a AppConfig) ShutdownTimeout() time.Duration {
	if a.ShutdownTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(a.ShutdownTimeoutSeconds) * time.Second
}

// IsDevelopment reports whether the service runs in a local environment.
func (a AppConfig) IsDevelopment() bool {
	switch strings.ToLower(a.Env) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

// RecordTTL returns the expiry applied to persisted records, zero for none.
func (s StorageConfig) RecordTTL() time.Duration {
	if s.RecordTTLHr <= 0 {
		return 0
	}
	return time.Duration(s.RecordTTLHr) * time.Hour
}

// ClientTokenTTL returns the lifetime of the client cookie token.
func (a AuthConfig) ClientTokenTTL() time.Duration {
	if a.ClientTokenTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(a.ClientTokenTTLHours) * time.Hour
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
