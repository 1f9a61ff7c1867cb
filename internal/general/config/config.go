package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	Database struct {
		Host     string
		Port     int
		User     string
		Password string
		Name     string // YAML key: "database"
	}
	RabbitMQ struct {
		Host     string
		Port     int
		User     string
		Password string
	}
	Redis struct {
		Host     string
		Port     int
		Password string
	}
	Services struct {
		RideServicePort         int
		BookingServicePort      int
		NotificationServicePort int
		RideServiceURL          string
		UserServiceURL          string
	}
	JWT struct {
		SecretKey string `yaml:"secret_key"`
	}
	Outbox struct {
		PollIntervalMS  int
		BatchSize       int
		MaxRetries      int
		ClaimTTLSeconds int
	}
	Booking struct {
		RPCTimeoutMS          int
		CompensationAttempts  int
		CompensationBackoffMS int
	}
}

// LoadFromFile loads config from a YAML file to a Config struct, applies defaults, and validates required fields.
func LoadFromFile(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := parseYAML(file, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Convenience accessors for duration-typed settings.

func (c *Config) OutboxPollInterval() time.Duration {
	return time.Duration(c.Outbox.PollIntervalMS) * time.Millisecond
}

func (c *Config) OutboxClaimTTL() time.Duration {
	return time.Duration(c.Outbox.ClaimTTLSeconds) * time.Second
}

func (c *Config) BookingRPCTimeout() time.Duration {
	return time.Duration(c.Booking.RPCTimeoutMS) * time.Millisecond
}

func (c *Config) CompensationBackoff() time.Duration {
	return time.Duration(c.Booking.CompensationBackoffMS) * time.Millisecond
}

// applyDefaults sets safe defaults for some fields.
func applyDefaults(cfg *Config) {
	// Database
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}

	// RabbitMQ
	if cfg.RabbitMQ.Host == "" {
		cfg.RabbitMQ.Host = "localhost"
	}
	if cfg.RabbitMQ.Port == 0 {
		cfg.RabbitMQ.Port = 5672
	}

	// Redis
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}

	// Services
	if cfg.Services.RideServicePort == 0 {
		cfg.Services.RideServicePort = 3000
	}
	if cfg.Services.BookingServicePort == 0 {
		cfg.Services.BookingServicePort = 3001
	}
	if cfg.Services.NotificationServicePort == 0 {
		cfg.Services.NotificationServicePort = 3002
	}
	if cfg.Services.RideServiceURL == "" {
		cfg.Services.RideServiceURL = fmt.Sprintf("http://localhost:%d", cfg.Services.RideServicePort)
	}
	if cfg.Services.UserServiceURL == "" {
		cfg.Services.UserServiceURL = "http://localhost:3003"
	}

	// Outbox
	if cfg.Outbox.PollIntervalMS == 0 {
		cfg.Outbox.PollIntervalMS = 500
	}
	if cfg.Outbox.BatchSize == 0 {
		cfg.Outbox.BatchSize = 50
	}
	if cfg.Outbox.MaxRetries == 0 {
		cfg.Outbox.MaxRetries = 10
	}
	if cfg.Outbox.ClaimTTLSeconds == 0 {
		cfg.Outbox.ClaimTTLSeconds = 30
	}

	// Booking saga
	if cfg.Booking.RPCTimeoutMS == 0 {
		cfg.Booking.RPCTimeoutMS = 5000
	}
	if cfg.Booking.CompensationAttempts == 0 {
		cfg.Booking.CompensationAttempts = 3
	}
	if cfg.Booking.CompensationBackoffMS == 0 {
		cfg.Booking.CompensationBackoffMS = 200
	}

	if cfg.JWT.SecretKey == "" {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			// fallback: time-based bytes
			key = []byte(fmt.Sprintf("%d", time.Now().UnixNano()))
		}
		cfg.JWT.SecretKey = base64.StdEncoding.EncodeToString(key)
	}
}

// validate checks required fields and basic ranges.
func (c *Config) validate() error {
	var problems []string

	// DB
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		problems = append(problems, "database.port must be in 1..65535")
	}
	if c.Database.User == "" {
		problems = append(problems, "database.user is required")
	}
	if c.Database.Password == "" {
		problems = append(problems, "database.password is required")
	}
	if c.Database.Name == "" {
		problems = append(problems, "database.name is required")
	}

	// RabbitMQ
	if c.RabbitMQ.Port <= 0 || c.RabbitMQ.Port > 65535 {
		problems = append(problems, "rabbitmq.port must be in 1..65535")
	}
	if c.RabbitMQ.User == "" {
		problems = append(problems, "rabbitmq.user is required")
	}
	if c.RabbitMQ.Password == "" {
		problems = append(problems, "rabbitmq.password is required")
	}

	// Redis
	if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
		problems = append(problems, "redis.port must be in 1..65535")
	}

	// Services
	if c.Services.RideServicePort <= 0 || c.Services.RideServicePort > 65535 {
		problems = append(problems, "services.ride_service must be in 1..65535")
	}
	if c.Services.BookingServicePort <= 0 || c.Services.BookingServicePort > 65535 {
		problems = append(problems, "services.booking_service must be in 1..65535")
	}
	if c.Services.NotificationServicePort <= 0 || c.Services.NotificationServicePort > 65535 {
		problems = append(problems, "services.notification_service must be in 1..65535")
	}

	// Outbox
	if c.Outbox.BatchSize < 1 {
		problems = append(problems, "outbox.batch_size must be positive")
	}
	if c.Outbox.MaxRetries < 1 {
		problems = append(problems, "outbox.max_retries must be positive")
	}

	// Booking saga
	if c.Booking.CompensationAttempts < 1 {
		problems = append(problems, "booking.compensation_attempts must be positive")
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
