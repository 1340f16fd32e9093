// Package config loads application configuration from environment
// variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/rental-store/internal/database"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable.
type Config struct {
	Env  string // application environment (e.g. "dev", "prod")
	Port string // HTTP port to listen on

	DB               database.Options
	DBAcquireTimeout time.Duration // wait for a pooled connection per unit of work

	JWTSecret  string        // secret used to sign access tokens
	AccessTTL  time.Duration // access token lifetime
	BcryptCost int           // bcrypt cost for staff passwords

	AMQPURL      string // RabbitMQ broker; empty disables event publishing
	EventLogPath string // file the consumer appends events to

	LogLevel  string
	LogFormat string // "json" | "console"

	Redis     RedisConfig
	RateLimit RateLimitConfig
}

// Load reads a .env file from the working directory when one exists, then
// reads the environment. Every missing or malformed required variable is
// reported in the returned error.
func Load() (Config, error) {
	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}
	return FromEnv()
}

// ConsumerConfig is the subset the event consumer needs.
type ConsumerConfig struct {
	AMQPURL      string
	EventLogPath string
	LogLevel     string
	LogFormat    string
}

// LoadConsumer is Load for the event consumer. Only the broker URL is
// required.
func LoadConsumer() (ConsumerConfig, error) {
	if err := loadDotEnv(); err != nil {
		return ConsumerConfig{}, err
	}
	cfg := ConsumerConfig{
		AMQPURL:      envStr("RABBITMQ_URL", os.Getenv("AMQP_URL")),
		EventLogPath: envStr("EVENT_LOG_PATH", "logs/rental.log"),
		LogLevel:     envStr("LOG_LEVEL", "info"),
		LogFormat:    envStr("LOG_FORMAT", "json"),
	}
	if cfg.AMQPURL == "" {
		return ConsumerConfig{}, errors.New("missing required env var: RABBITMQ_URL")
	}
	return cfg, nil
}

// loadDotEnv applies ./.env without overriding variables already set.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() (Config, error) {
	r := &reader{}
	cfg := Config{
		Env:  envStr("APP_ENV", "dev"),
		Port: envStr("APP_PORT", "8080"),
		DB: database.Options{
			User:            r.must("DB_USER"),
			Pass:            os.Getenv("DB_PASS"),
			Host:            r.must("DB_HOST"),
			Port:            envStr("DB_PORT", "3306"),
			Name:            r.must("DB_NAME"),
			MaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: envDur("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		DBAcquireTimeout: envDur("DB_ACQUIRE_TIMEOUT", database.DefaultAcquireTimeout),
		JWTSecret:        r.must("JWT_SECRET"),
		AccessTTL:        time.Duration(r.mustInt("ACCESS_TOKEN_TTL_MIN")) * time.Minute,
		BcryptCost:       envInt("BCRYPT_COST", 12),
		AMQPURL:          envStr("RABBITMQ_URL", os.Getenv("AMQP_URL")),
		EventLogPath:     envStr("EVENT_LOG_PATH", "logs/rental.log"),
		LogLevel:         envStr("LOG_LEVEL", "info"),
		LogFormat:        envStr("LOG_FORMAT", "json"),
		Redis:            LoadRedisConfig(),
		RateLimit:        LoadRateLimitConfig(),
	}
	if cfg.AccessTTL <= 0 && r.err == nil {
		r.err = errors.New("ACCESS_TOKEN_TTL_MIN must be positive")
	}
	if r.err != nil {
		return Config{}, r.err
	}
	return cfg, nil
}

// reader collects every missing or malformed required variable.
type reader struct {
	err error
}

func (r *reader) must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		r.err = errors.Join(r.err, fmt.Errorf("missing required env var: %s", key))
	}
	return v
}

func (r *reader) mustInt(key string) int {
	s := r.must(key)
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		r.err = errors.Join(r.err, fmt.Errorf("invalid int for %s: %q", key, s))
	}
	return n
}
