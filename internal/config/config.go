// Package config loads runtime settings for the ispora server.
package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Config is the full runtime configuration.
type Config struct {
	Server      ServerConfig      `koanf:"server"`
	Database    DatabaseConfig    `koanf:"database"`
	Auth        AuthConfig        `koanf:"auth"`
	Log         LogConfig         `koanf:"log"`
	CORS        CORSConfig        `koanf:"cors"`
	Maintenance MaintenanceConfig `koanf:"maintenance"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	AllowSubnet     string        `koanf:"allow_subnet"` // CIDR; empty allows every source
	RequestTimeout  time.Duration `koanf:"request_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig locates the SQLite file.
type DatabaseConfig struct {
	Path string `koanf:"path"`
}

// AuthConfig holds the developer access key.
type AuthConfig struct {
	DevKey string `koanf:"dev_key"`
}

// LogConfig controls level and file rotation.
type LogConfig struct {
	Level      string `koanf:"level"`
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
	Compress   bool   `koanf:"compress"`
}

// CORSConfig lists browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// MaintenanceConfig schedules periodic database upkeep. An empty schedule
// disables it.
type MaintenanceConfig struct {
	Schedule string `koanf:"schedule"`
}

// Addr returns host:port for the listener.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, fmt.Sprint(c.Server.Port))
}

// Subnet parses Server.AllowSubnet. It returns nil when no restriction is set.
func (c *Config) Subnet() (*net.IPNet, error) {
	if strings.TrimSpace(c.Server.AllowSubnet) == "" {
		return nil, nil
	}
	_, ipNet, err := net.ParseCIDR(c.Server.AllowSubnet)
	if err != nil {
		return nil, fmt.Errorf("invalid allow_subnet %q: %w", c.Server.AllowSubnet, err)
	}
	return ipNet, nil
}

// Validate checks values that would otherwise fail late at startup.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Auth.DevKey == "" {
		return fmt.Errorf("auth.dev_key is required")
	}
	switch c.Log.Level {
	case "trace", "debug", "info":
	default:
		return fmt.Errorf("log.level must be trace, debug or info, got %q", c.Log.Level)
	}
	if _, err := c.Subnet(); err != nil {
		return err
	}
	if c.Maintenance.Schedule != "" {
		if _, err := cron.ParseStandard(c.Maintenance.Schedule); err != nil {
			return fmt.Errorf("invalid maintenance.schedule %q: %w", c.Maintenance.Schedule, err)
		}
	}
	return nil
}
