package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Fetch   FetchConfig   `mapstructure:"fetch"`
	Store   StoreConfig   `mapstructure:"store"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Cart    CartConfig    `mapstructure:"cart"`
	Receipt ReceiptConfig `mapstructure:"receipt"`
	Log     LogConfig     `mapstructure:"log"`
}

// ServerConfig holds HTTP API configuration
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// CatalogConfig holds catalog source configuration
type CatalogConfig struct {
	DefaultURL      string   `mapstructure:"default_url"`
	StaleMarkers    []string `mapstructure:"stale_markers"`
	RefreshSchedule string   `mapstructure:"refresh_schedule"`
	LoadOnStart     bool     `mapstructure:"load_on_start"`
}

// FetchConfig holds download behaviour for remote catalogs
type FetchConfig struct {
	Timeout                  time.Duration `mapstructure:"timeout"`
	EnterpriseAttemptTimeout time.Duration `mapstructure:"enterprise_attempt_timeout"`
	OverallTimeout           time.Duration `mapstructure:"overall_timeout"`
	MaxRedirects             int           `mapstructure:"max_redirects"`
	MaxRequestsPerSecond     int           `mapstructure:"max_requests_per_second"`
	Accept                   string        `mapstructure:"accept"`
	UserAgent                string        `mapstructure:"user_agent"`
	Proxies                  []string      `mapstructure:"proxies"`
	ProxyTestURL             string        `mapstructure:"proxy_test_url"`
}

// StoreConfig selects where the catalog source URL is persisted
type StoreConfig struct {
	Backend  string `mapstructure:"backend"`
	BoltPath string `mapstructure:"bolt_path"`
	Key      string `mapstructure:"key"`
}

// RedisConfig holds Redis connection details
type RedisConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	Database  int    `mapstructure:"database"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// CartConfig holds pricing configuration
type CartConfig struct {
	TaxRate  float64 `mapstructure:"tax_rate"`
	Currency string  `mapstructure:"currency"`
}

// ReceiptConfig holds receipt rendering configuration
type ReceiptConfig struct {
	DefaultLanguage string `mapstructure:"default_language"`
	NodeID          int64  `mapstructure:"node_id"`
	ShopName        string `mapstructure:"shop_name"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// Load loads configuration from an optional YAML file with .env and
// environment variable overrides
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case "bolt", "redis":
	default:
		return fmt.Errorf("unsupported store backend %q (want bolt or redis)", c.Store.Backend)
	}
	if c.Cart.TaxRate < 0 {
		return fmt.Errorf("cart.tax_rate must not be negative, got %v", c.Cart.TaxRate)
	}
	if c.Fetch.MaxRequestsPerSecond <= 0 {
		return fmt.Errorf("fetch.max_requests_per_second must be positive, got %d", c.Fetch.MaxRequestsPerSecond)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "localhost")

	v.SetDefault("catalog.default_url", "https://docs.google.com/spreadsheets/d/1L4iygFD3mB7jlJNAh97eeBfxkC7VBVYdwkH6Rb7SCMQ/edit?gid=1799151543#gid=1799151543")
	v.SetDefault("catalog.stale_markers", []string{
		"onedrive",
		"excel.cloud.microsoft",
		"1n4Qvos_RZLgex2pxisiJGYjgneDbmujRkJuRE-W0bEM",
		"1mBy447WJ_QUle4MUA-GhZplP8UMowmuSJj6awjki5yQ",
	})
	v.SetDefault("catalog.refresh_schedule", "")
	v.SetDefault("catalog.load_on_start", true)

	v.SetDefault("fetch.timeout", 30*time.Second)
	v.SetDefault("fetch.enterprise_attempt_timeout", 10*time.Second)
	v.SetDefault("fetch.overall_timeout", 30*time.Second)
	v.SetDefault("fetch.max_redirects", 5)
	v.SetDefault("fetch.max_requests_per_second", 5)
	v.SetDefault("fetch.accept", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet, application/vnd.ms-excel, */*")
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	v.SetDefault("fetch.proxies", []string{})
	v.SetDefault("fetch.proxy_test_url", "https://docs.google.com")

	v.SetDefault("store.backend", "bolt")
	v.SetDefault("store.bolt_path", "./sheetpos.db")
	v.SetDefault("store.key", "excelUrl")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.key_prefix", "sheetpos:")

	v.SetDefault("cart.tax_rate", 0.0)
	v.SetDefault("cart.currency", "Rs.")

	v.SetDefault("receipt.default_language", "en")
	v.SetDefault("receipt.node_id", 1)
	v.SetDefault("receipt.shop_name", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
}
