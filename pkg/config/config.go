package config

import (
	"fmt"
	"time"
)

// Config holds the full runtime configuration of the listing bot.
type Config struct {
	AppEnv string `mapstructure:"app_env"`

	Bot      BotConfig      `mapstructure:"bot" validate:"required"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Session  SessionConfig  `mapstructure:"session"`
	Images   ImagesConfig   `mapstructure:"images"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Sentry   SentryConfig   `mapstructure:"sentry"`
	Admin    AdminConfig    `mapstructure:"admin"`
}

// BotConfig configures the Telegram transport.
type BotConfig struct {
	Token           string        `mapstructure:"token" validate:"required"`
	PollTimeout     time.Duration `mapstructure:"poll_timeout"`
	DefaultLanguage string        `mapstructure:"default_language"`
}

// ServerConfig configures the observability HTTP server.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig configures the PostgreSQL connection.
type DatabaseConfig struct {
	Host          string `mapstructure:"host" validate:"required"`
	Port          string `mapstructure:"port" validate:"required"`
	User          string `mapstructure:"user" validate:"required"`
	Password      string `mapstructure:"password" validate:"required"`
	Name          string `mapstructure:"name" validate:"required"`
	SSLMode       string `mapstructure:"ssl_mode"`
	MigrationsDir string `mapstructure:"migrations_dir"`
}

// DSN returns the PostgreSQL connection string.
func (c DatabaseConfig) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, sslMode,
	)
}

// RedisConfig configures the Redis connection used for sessions and locks.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	PoolTimeout  time.Duration `mapstructure:"pool_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	MaxRetries   int           `mapstructure:"max_retries"`
}

// SessionConfig configures conversation session lifetimes.
type SessionConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// ImagesConfig configures listing photo storage.
type ImagesConfig struct {
	Dir string `mapstructure:"dir"`
}

// LoggerConfig configures structured logging output.
type LoggerConfig struct {
	Level  string           `mapstructure:"level"`
	Format string           `mapstructure:"format"`
	File   LoggerFileConfig `mapstructure:"file"`
}

// LoggerFileConfig configures rotating file output.
type LoggerFileConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// SentryConfig configures error reporting.
type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// AdminConfig lists the Telegram ids granted the admin role at startup.
type AdminConfig struct {
	IDs []int64 `mapstructure:"ids"`
}
