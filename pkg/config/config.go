package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string
	Timezone  string

	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	CORS         CORSConfig
	Log          LogConfig
	Roles        RolesConfig
	Availability AvailabilityConfig
	Waitlist     WaitlistConfig
	Notify       NotifyConfig
	RateLimit    RateLimitConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds the verification parameters for tokens issued by the identity provider.
type JWTConfig struct {
	Secret string
	Issuer string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// RolesConfig lists the e-mail addresses granted elevated roles. Loaded once at startup.
type RolesConfig struct {
	AdminEmails  []string
	BarberEmails []string
}

// AvailabilityConfig tunes slot computation and caching.
type AvailabilityConfig struct {
	CacheEnabled     bool
	CacheTTL         time.Duration
	MaxBatchDates    int
	FetchConcurrency int
}

// WaitlistConfig governs offer lifetime and the expiry sweep.
type WaitlistConfig struct {
	OfferTTL      time.Duration
	SweepInterval time.Duration
}

// NotifyConfig configures the waitlist offer dispatch queue.
type NotifyConfig struct {
	Channel    string
	Workers    int
	Retries    int
	RatePerSec float64
	Burst      int
}

// RateLimitConfig bounds public endpoint traffic per client.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.Timezone = v.GetString("SHOP_TIMEZONE")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
		Issuer: v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Roles = RolesConfig{
		AdminEmails:  lowerAll(splitAndTrim(v.GetString("ADMIN_EMAILS"))),
		BarberEmails: lowerAll(splitAndTrim(v.GetString("BARBER_EMAILS"))),
	}

	cfg.Availability = AvailabilityConfig{
		CacheEnabled:     v.GetBool("ENABLE_AVAILABILITY_CACHE"),
		CacheTTL:         parseDuration(v.GetString("AVAILABILITY_CACHE_TTL"), time.Minute),
		MaxBatchDates:    positiveOr(v.GetInt("AVAILABILITY_MAX_BATCH_DATES"), 62),
		FetchConcurrency: positiveOr(v.GetInt("AVAILABILITY_FETCH_CONCURRENCY"), 4),
	}

	cfg.Waitlist = WaitlistConfig{
		OfferTTL:      parseDuration(v.GetString("WAITLIST_OFFER_TTL"), 30*time.Minute),
		SweepInterval: parseDuration(v.GetString("WAITLIST_SWEEP_INTERVAL"), time.Minute),
	}

	cfg.Notify = NotifyConfig{
		Channel:    v.GetString("NOTIFY_CHANNEL"),
		Workers:    positiveOr(v.GetInt("NOTIFY_WORKERS"), 2),
		Retries:    positiveOr(v.GetInt("NOTIFY_RETRIES"), 3),
		RatePerSec: v.GetFloat64("NOTIFY_RATE_PER_SEC"),
		Burst:      positiveOr(v.GetInt("NOTIFY_BURST"), 10),
	}

	cfg.RateLimit = RateLimitConfig{
		RPS:   v.GetFloat64("RATE_LIMIT_RPS"),
		Burst: positiveOr(v.GetInt("RATE_LIMIT_BURST"), 20),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("SHOP_TIMEZONE", "Europe/Rome")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "barbershop")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ADMIN_EMAILS", "")
	v.SetDefault("BARBER_EMAILS", "")

	v.SetDefault("ENABLE_AVAILABILITY_CACHE", false)
	v.SetDefault("AVAILABILITY_CACHE_TTL", "1m")
	v.SetDefault("AVAILABILITY_MAX_BATCH_DATES", 62)
	v.SetDefault("AVAILABILITY_FETCH_CONCURRENCY", 4)

	v.SetDefault("WAITLIST_OFFER_TTL", "30m")
	v.SetDefault("WAITLIST_SWEEP_INTERVAL", "1m")

	v.SetDefault("NOTIFY_CHANNEL", "waitlist:offers")
	v.SetDefault("NOTIFY_WORKERS", 2)
	v.SetDefault("NOTIFY_RETRIES", 3)
	v.SetDefault("NOTIFY_RATE_PER_SEC", 5)
	v.SetDefault("NOTIFY_BURST", 10)

	v.SetDefault("RATE_LIMIT_RPS", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)
}

// Location resolves the shop timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	if c == nil || c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func positiveOr(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

func lowerAll(values []string) []string {
	for i := range values {
		values[i] = strings.ToLower(values[i])
	}
	return values
}
