package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Booking  BookingConfig
	Payment  PaymentConfig
	JWT      JWTConfig
	Mail     MailConfig
}

type AppConfig struct {
	Environment string
}

type ServerConfig struct {
	Addr string
}

type PostgresConfig struct {
	URL string
}

type RedisConfig struct {
	Addr string
}

// BookingConfig holds the reservation timing and retry settings.
type BookingConfig struct {
	HoldWindow       time.Duration
	LockTimeout      time.Duration
	StatementTimeout time.Duration
	ReserveTimeout   time.Duration
	MaxRetries       int
	SweepInterval    time.Duration
	AttemptLimit     int
	AttemptWindow    time.Duration
}

type PaymentConfig struct {
	// KeySecret is shared with the payment gateway to sign callbacks.
	KeySecret string
}

type JWTConfig struct {
	Secret string
}

// MailConfig is optional. Without an API key notifications are only logged.
type MailConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// Load reads configuration from the environment, with an optional .env file
// in the working directory.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading .env: %w", err)
		}
	}

	return load(v)
}

// LoadWithPath reads configuration from the given env file, overridden by the environment.
func LoadWithPath(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{}
	bindConfig(v, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENVIRONMENT", "development")
	v.SetDefault("SERVER_ADDR", ":8080")
	v.SetDefault("REDIS_ADDR", "localhost:6379")

	v.SetDefault("HOLD_WINDOW", "10m")
	v.SetDefault("RESERVE_LOCK_TIMEOUT", "3s")
	v.SetDefault("RESERVE_STATEMENT_TIMEOUT", "5s")
	v.SetDefault("RESERVE_TIMEOUT", "8s")
	v.SetDefault("RESERVE_MAX_RETRIES", 5)
	v.SetDefault("SWEEP_INTERVAL", "1m")
	v.SetDefault("RESERVE_ATTEMPT_LIMIT", 20)
	v.SetDefault("RESERVE_ATTEMPT_WINDOW", "10m")

	v.SetDefault("MAIL_FROM_NAME", "Concert Tickets")
}

func bindConfig(v *viper.Viper, cfg *Config) {
	cfg.App.Environment = v.GetString("APP_ENVIRONMENT")
	cfg.Server.Addr = v.GetString("SERVER_ADDR")
	cfg.Postgres.URL = v.GetString("POSTGRES_URL")
	cfg.Redis.Addr = v.GetString("REDIS_ADDR")

	cfg.Booking.HoldWindow = v.GetDuration("HOLD_WINDOW")
	cfg.Booking.LockTimeout = v.GetDuration("RESERVE_LOCK_TIMEOUT")
	cfg.Booking.StatementTimeout = v.GetDuration("RESERVE_STATEMENT_TIMEOUT")
	cfg.Booking.ReserveTimeout = v.GetDuration("RESERVE_TIMEOUT")
	cfg.Booking.MaxRetries = v.GetInt("RESERVE_MAX_RETRIES")
	cfg.Booking.SweepInterval = v.GetDuration("SWEEP_INTERVAL")
	cfg.Booking.AttemptLimit = v.GetInt("RESERVE_ATTEMPT_LIMIT")
	cfg.Booking.AttemptWindow = v.GetDuration("RESERVE_ATTEMPT_WINDOW")

	cfg.Payment.KeySecret = v.GetString("PAYMENT_KEY_SECRET")
	cfg.JWT.Secret = v.GetString("JWT_SECRET")

	cfg.Mail.APIKey = v.GetString("MAILERSEND_API_KEY")
	cfg.Mail.FromEmail = v.GetString("MAIL_FROM_EMAIL")
	cfg.Mail.FromName = v.GetString("MAIL_FROM_NAME")
}

func (c *Config) Validate() error {
	if c.Postgres.URL == "" {
		return errors.New("POSTGRES_URL is required")
	}
	if c.Redis.Addr == "" {
		return errors.New("REDIS_ADDR is required")
	}
	if c.Payment.KeySecret == "" {
		return errors.New("PAYMENT_KEY_SECRET is required")
	}
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Mail.APIKey != "" && c.Mail.FromEmail == "" {
		return errors.New("MAIL_FROM_EMAIL is required when MAILERSEND_API_KEY is set")
	}

	durations := map[string]time.Duration{
		"HOLD_WINDOW":               c.Booking.HoldWindow,
		"RESERVE_LOCK_TIMEOUT":      c.Booking.LockTimeout,
		"RESERVE_STATEMENT_TIMEOUT": c.Booking.StatementTimeout,
		"RESERVE_TIMEOUT":           c.Booking.ReserveTimeout,
		"SWEEP_INTERVAL":            c.Booking.SweepInterval,
		"RESERVE_ATTEMPT_WINDOW":    c.Booking.AttemptWindow,
	}
	for key, d := range durations {
		if d <= 0 {
			return fmt.Errorf("%s must be a positive duration", key)
		}
	}

	if c.Booking.MaxRetries <= 0 {
		return errors.New("RESERVE_MAX_RETRIES must be positive")
	}
	if c.Booking.AttemptLimit <= 0 {
		return errors.New("RESERVE_ATTEMPT_LIMIT must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}
