// Package config provides configuration management for the ZED Insights engine.
package config

import (
	"fmt"
	"time"
)

// Cache backends
const (
	CacheBackendMemory   = "memory"
	CacheBackendFile     = "file"
	CacheBackendPostgres = "postgres"
)

// Config represents the complete application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app" validate:"required"`
	Source   SourceConfig   `mapstructure:"source" validate:"required"`
	Cache    CacheConfig    `mapstructure:"cache" validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	Refresh  RefreshConfig  `mapstructure:"refresh" validate:"required"`
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// SourceConfig represents the remote record table configuration
type SourceConfig struct {
	URL             string  `mapstructure:"url" validate:"required,url"`
	Token           string  `mapstructure:"token"`
	TimeoutSeconds  int     `mapstructure:"timeout_seconds" validate:"required,gt=0,lte=300"`
	CacheTTLMinutes int     `mapstructure:"cache_ttl_minutes" validate:"required,gt=0"`
	MaxRetries      int     `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RateLimit       float64 `mapstructure:"rate_limit" validate:"required,gt=0"`
}

// CacheConfig represents snapshot cache configuration
type CacheConfig struct {
	Backend  string `mapstructure:"backend" validate:"required,cachebackend"`
	Key      string `mapstructure:"key" validate:"required"`
	FilePath string `mapstructure:"file_path" validate:"required_if=Backend file"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
}

// RefreshConfig represents scheduled refresh configuration
type RefreshConfig struct {
	Schedule   string `mapstructure:"schedule" validate:"required,cron"`
	RunOnStart bool   `mapstructure:"run_on_start"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Port       int `mapstructure:"port" validate:"required,min=1,max=65535"`
	HealthPort int `mapstructure:"health_port" validate:"required,min=1,max=65535"`
}

// MetricsConfig represents metrics configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required_if=Enabled true"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// CacheTTL returns the snapshot time-to-live
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Source.CacheTTLMinutes) * time.Minute
}

// FetchTimeout returns the bound on a single remote fetch
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Source.TimeoutSeconds) * time.Second
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
