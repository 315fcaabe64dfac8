package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Redis     RedisConfig
	Stripe    StripeConfig
	Resend    ResendConfig
	Order     OrderConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name                    string
	Version                 string
	Environment             string
	AppDeploymentUrl        string
	AppEmailVerificationKey string
}

type ServerConfig struct {
	Port            string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	SecretKey string
	TTL       time.Duration
}

type RedisConfig struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

type StripeConfig struct {
	StripeSecretKey string
	StripeBaseUrl   string
	Currency        string
	Timeout         time.Duration
}

type ResendConfig struct {
	ResendBaseUrl     string
	ResendApiKey      string
	ResendSenderEmail string
	ResendSenderName  string
}

type OrderConfig struct {
	PendingTTL    time.Duration
	SweepSchedule string
	SweepBatch    int
}

type AuthConfig struct {
	MaxFailedLogins     int
	LockoutDuration     time.Duration
	VerificationCodeTTL time.Duration
}

type RateLimitConfig struct {
	AuthRate  float64
	AuthBurst int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, errors.New("invalid redis database")
	}

	cfg := &Config{
		App: AppConfig{
			Name:                    getEnv("APP_NAME", "ToutAunClicLa API"),
			Version:                 getEnv("APP_VERSION", "1.0.0"),
			Environment:             getEnv("APP_ENV", "development"),
			AppDeploymentUrl:        getEnv("APP_DEPLOYMENT_URL", "http://localhost:8080"),
			AppEmailVerificationKey: getEnv("APP_EMAIL_VERIFICATION_KEY", ""),
		},
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			RequestTimeout:  getDuration("REQUEST_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
			AllowedOrigins:  getList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Name:            getEnv("DB_NAME", "toutaunclicla"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", ""),
			TTL:       getDuration("JWT_TTL", 24*time.Hour),
		},
		Redis: RedisConfig{
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
		},
		Stripe: StripeConfig{
			StripeSecretKey: getEnv("STRIPE_SECRET_KEY", ""),
			StripeBaseUrl:   getEnv("STRIPE_BASE_URL", "https://api.stripe.com"),
			Currency:        getEnv("STRIPE_CURRENCY", "eur"),
			Timeout:         getDuration("STRIPE_TIMEOUT", 15*time.Second),
		},
		Resend: ResendConfig{
			ResendBaseUrl:     getEnv("RESEND_BASE_URL", "https://api.resend.com"),
			ResendApiKey:      getEnv("RESEND_API_KEY", ""),
			ResendSenderEmail: getEnv("RESEND_SENDER_EMAIL", "no-reply@toutaunclicla.com"),
			ResendSenderName:  getEnv("RESEND_SENDER_NAME", "ToutAunClicLa"),
		},
		Order: OrderConfig{
			PendingTTL:    getDuration("ORDER_PENDING_TTL", 15*time.Minute),
			SweepSchedule: getEnv("ORDER_SWEEP_SCHEDULE", "@every 1m"),
			SweepBatch:    getInt("ORDER_SWEEP_BATCH", 100),
		},
		Auth: AuthConfig{
			MaxFailedLogins:     getInt("MAX_FAILED_LOGINS", 5),
			LockoutDuration:     getDuration("LOCKOUT_DURATION", 15*time.Minute),
			VerificationCodeTTL: getDuration("VERIFICATION_CODE_TTL", 15*time.Minute),
		},
		RateLimit: RateLimitConfig{
			AuthRate:  getFloat("AUTH_RATE_LIMIT", 5),
			AuthBurst: getInt("AUTH_RATE_BURST", 10),
		},
	}

	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("missing jwt secret")
	}

	if cfg.App.AppEmailVerificationKey == "" {
		return nil, errors.New("missing app email verification key")
	}

	switch len(cfg.App.AppEmailVerificationKey) {
	case 16, 24, 32:
	default:
		return nil, errors.New("app email verification key must be 16, 24 or 32 bytes")
	}

	if cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	if cfg.Stripe.StripeSecretKey == "" {
		return nil, errors.New("missing stripe secret key")
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}

	return defaultVal
}

func getFloat(key string, defaultVal float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}

	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}

	return defaultVal
}

func getList(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}

	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}
