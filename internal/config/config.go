package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// MaxBcryptCost caps the hashing work factor regardless of configuration so a
// misconfigured cost cannot stall every login.
const MaxBcryptCost = 12

// ErrMissingJWTSecret is returned when no signing secret is configured. The
// service must refuse to start rather than sign sessions with an empty key.
var ErrMissingJWTSecret = errors.New("AUTH_JWT_SECRET is required")

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Mailer    MailerConfig
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
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret                 string
	SessionTTLHours           int
	BcryptCost                int
	CompareTimeoutSeconds     int
	RequireEmailVerification  bool
	VerificationOTPTTLMinutes int
}

// RateLimitConfig tunes the sliding-window gate in front of the auth routes.
type RateLimitConfig struct {
	Requests      int
	WindowSeconds int
}

// MailerConfig holds outbound email settings. An empty SMTPHost selects the
// log-only sender.
type MailerConfig struct {
	SMTPHost string
	SMTPPort string
	Username string
	Password string
	From     string
}

// Load reads configuration from environment variables, applying defaults where
// possible. The JWT secret has no default: signing sessions with a guessable
// key is worse than not starting.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	secret := os.Getenv("AUTH_JWT_SECRET")
	if secret == "" {
		return nil, ErrMissingJWTSecret
	}

	cost := getEnvAsInt("AUTH_BCRYPT_COST", 10)
	if cost > MaxBcryptCost {
		cost = MaxBcryptCost
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "taskboard-service"),
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
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:                 secret,
			SessionTTLHours:           getEnvAsInt("AUTH_SESSION_TTL_HOURS", 168),
			BcryptCost:                cost,
			CompareTimeoutSeconds:     getEnvAsInt("AUTH_COMPARE_TIMEOUT_SECONDS", 10),
			RequireEmailVerification:  getEnvAsBool("AUTH_REQUIRE_EMAIL_VERIFICATION", false),
			VerificationOTPTTLMinutes: getEnvAsInt("AUTH_OTP_TTL_MINUTES", 1440),
		},
		RateLimit: RateLimitConfig{
			Requests:      getEnvAsInt("RATE_LIMIT_REQUESTS", 20),
			WindowSeconds: getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		},
		Mailer: MailerConfig{
			SMTPHost: os.Getenv("SMTP_HOST"),
			SMTPPort: getEnv("SMTP_PORT", "587"),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnv("SMTP_FROM", "noreply@example.com"),
		},
	}

	return cfg, nil
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

// IsProduction reports whether production cookie rules apply.
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

// SessionTTL returns the session token lifetime.
func (c AuthConfig) SessionTTL() time.Duration {
	if c.SessionTTLHours <= 0 {
		return 168 * time.Hour
	}
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// CompareTimeout returns the password verification deadline.
func (c AuthConfig) CompareTimeout() time.Duration {
	if c.CompareTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.CompareTimeoutSeconds) * time.Second
}

// OTPTTL returns the verification code lifetime.
func (c AuthConfig) OTPTTL() time.Duration {
	if c.VerificationOTPTTLMinutes <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.VerificationOTPTTLMinutes) * time.Minute
}

// Window returns the rate-limit window duration.
func (r RateLimitConfig) Window() time.Duration {
	if r.WindowSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(r.WindowSeconds) * time.Second
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
