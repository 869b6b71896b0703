package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config defines swap service configuration.
type Config struct {
	HTTP struct {
		Port string `yaml:"port" env:"SWAP_HTTP_PORT"`
	} `yaml:"http"`
	Database struct {
		DSN string `yaml:"dsn" env:"SWAP_POSTGRES_DSN"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr" env:"SWAP_REDIS_ADDR"`
		Password string `yaml:"password" env:"SWAP_REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"SWAP_REDIS_DB"`
	} `yaml:"redis"`
	Auth struct {
		JWTSecret string `yaml:"jwtSecret" env:"SWAP_JWT_SECRET"`
	} `yaml:"auth"`
	Swap struct {
		SessionTTL  int `yaml:"sessionTtlSeconds" env:"SWAP_SESSION_TTL"`
		ExpirySweep int `yaml:"expirySweepSeconds" env:"SWAP_EXPIRY_SWEEP"`
	} `yaml:"swap"`
	Booking struct {
		BaseURL        string `yaml:"baseUrl" env:"BOOKING_SERVICE_URL"`
		TimeoutSeconds int    `yaml:"timeoutSeconds" env:"BOOKING_SERVICE_TIMEOUT"`
	} `yaml:"booking"`
}

// Load reads configuration via the shared loader and applies defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = "8084"
	cfg.Swap.SessionTTL = 900
	cfg.Swap.ExpirySweep = 30
	cfg.Booking.TimeoutSeconds = 5

	if err := loadInto(cfg); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return nil, errors.New("config: database dsn required")
	}
	if strings.TrimSpace(cfg.Redis.Addr) == "" {
		return nil, errors.New("config: redis addr required")
	}
	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return nil, errors.New("config: jwt secret required")
	}
	if strings.TrimSpace(cfg.Booking.BaseURL) == "" {
		return nil, errors.New("config: booking service url required")
	}
	return cfg, nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = "8084"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// SessionTTL returns the active swap session lifetime.
func (c *Config) SessionTTL() time.Duration {
	if c.Swap.SessionTTL <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(c.Swap.SessionTTL) * time.Second
}

// ExpirySweepInterval returns how often the janitor scans for expired sessions.
func (c *Config) ExpirySweepInterval() time.Duration {
	if c.Swap.ExpirySweep <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Swap.ExpirySweep) * time.Second
}

// BookingTimeout returns the booking client request timeout.
func (c *Config) BookingTimeout() time.Duration {
	if c.Booking.TimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.Booking.TimeoutSeconds) * time.Second
}
