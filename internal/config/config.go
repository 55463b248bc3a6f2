package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
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
	Level       string
	Format      string
	Development bool
}

// AuthConfig carries key material and token parameters. Keys are
// base64-encoded; see cmd/keygen.
type AuthConfig struct {
	SigningPublicKey     string
	SigningPrivateKey    string
	EncryptionPublicKey  string
	EncryptionPrivateKey string

	TokenIssuer         string
	TokenAudience       string
	TransportAudience   string
	SessionTTLHours     int
	TransportTTLSeconds int

	PasswordScheme      string
	DefaultPrivileges   []string
	CookieName          string
	CookieSecure        bool
	ReplayWindowSeconds int
}

// Load reads configuration from environment variables, applying defaults
// where possible. Missing key material is an error: the process must not
// start without it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "campus-auth"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
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
			Level:       getEnv("LOG_LEVEL", "info"),
			Format:      getEnv("LOG_FORMAT", "json"),
			Development: getEnv("APP_ENV", "development") == "development",
		},
		Auth: AuthConfig{
			SigningPublicKey:     os.Getenv("AUTH_SIGNING_PUBLIC_KEY"),
			SigningPrivateKey:    os.Getenv("AUTH_SIGNING_PRIVATE_KEY"),
			EncryptionPublicKey:  os.Getenv("AUTH_ENCRYPTION_PUBLIC_KEY"),
			EncryptionPrivateKey: os.Getenv("AUTH_ENCRYPTION_PRIVATE_KEY"),
			TokenIssuer:          getEnv("AUTH_TOKEN_ISSUER", "campus-auth"),
			TokenAudience:        getEnv("AUTH_TOKEN_AUDIENCE", "campus"),
			TransportAudience:    getEnv("AUTH_TRANSPORT_AUDIENCE", "campus-edge"),
			SessionTTLHours:      getEnvAsInt("AUTH_SESSION_TTL_HOURS", 2880),
			TransportTTLSeconds:  getEnvAsInt("AUTH_TRANSPORT_TTL_SECONDS", 10),
			PasswordScheme:       getEnv("AUTH_PASSWORD_SCHEME", "sha256"),
			DefaultPrivileges:    getEnvAsList("AUTH_DEFAULT_PRIVILEGES"),
			CookieName:           getEnv("AUTH_COOKIE_NAME", "campus_session"),
			CookieSecure:         getEnvAsBool("AUTH_COOKIE_SECURE", true),
			ReplayWindowSeconds:  getEnvAsInt("AUTH_PAYLOAD_REPLAY_TTL_SECONDS", 300),
		},
	}

	if err := cfg.Auth.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (a AuthConfig) validate() error {
	var missing []string
	for name, val := range map[string]string{
		"AUTH_SIGNING_PUBLIC_KEY":     a.SigningPublicKey,
		"AUTH_SIGNING_PRIVATE_KEY":    a.SigningPrivateKey,
		"AUTH_ENCRYPTION_PUBLIC_KEY":  a.EncryptionPublicKey,
		"AUTH_ENCRYPTION_PRIVATE_KEY": a.EncryptionPrivateKey,
	} {
		if val == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return fmt.Errorf("missing key material: %s", strings.Join(missing, ", "))
	}
	if a.SessionTTLHours <= 0 || a.TransportTTLSeconds <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	if a.TransportAudience == a.TokenAudience {
		return errors.New("transport and session tokens need distinct audiences")
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

// SessionTTL is the lifetime of session tokens.
func (a AuthConfig) SessionTTL() time.Duration {
	return time.Duration(a.SessionTTLHours) * time.Hour
}

// TransportTTL is the lifetime of edge transport tokens.
func (a AuthConfig) TransportTTL() time.Duration {
	return time.Duration(a.TransportTTLSeconds) * time.Second
}

// ReplayWindow is how long a consumed signed payload is remembered.
func (a AuthConfig) ReplayWindow() time.Duration {
	return time.Duration(a.ReplayWindowSeconds) * time.Second
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

func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
