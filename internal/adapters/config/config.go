package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Config represents application configuration
type Config struct {
	Analysis   AnalysisConfig   `envconfig:"ANALYSIS"`
	Store      StoreConfig      `envconfig:"STORE"`
	Database   DatabaseConfig   `envconfig:"DB"`
	ClickHouse ClickHouseConfig `envconfig:"CLICKHOUSE"`
	Redis      RedisConfig      `envconfig:"REDIS"`
	AI         AIConfig         `envconfig:"AI"`
	Telegram   TelegramConfig   `envconfig:"TELEGRAM"`
	Templates  TemplatesConfig  `envconfig:"TEMPLATES"`
	Logging    LoggingConfig    `envconfig:"LOG"`
}

// AnalysisConfig represents analysis window parameters
type AnalysisConfig struct {
	LookbackDays int           `envconfig:"ANALYSIS_LOOKBACK_DAYS" default:"90"`
	Interval     time.Duration `envconfig:"ANALYSIS_INTERVAL" default:"0"`
}

// StoreConfig selects the result store backend
type StoreConfig struct {
	Driver     string `envconfig:"STORE_DRIVER" default:"postgres"` // postgres or sqlite3
	SQLitePath string `envconfig:"STORE_SQLITE_PATH" default:"menu_analytics.db"`
	Migrate    bool   `envconfig:"STORE_MIGRATE" default:"true"`
}

// DatabaseConfig represents database connection parameters
type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"menu_analytics"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
}

// ClickHouseConfig represents the optional event warehouse
type ClickHouseConfig struct {
	Enabled  bool   `envconfig:"CLICKHOUSE_ENABLED" default:"false"`
	Host     string `envconfig:"CLICKHOUSE_HOST" default:"localhost"`
	Port     int    `envconfig:"CLICKHOUSE_PORT" default:"9000"`
	Database string `envconfig:"CLICKHOUSE_DATABASE" default:"default"`
	User     string `envconfig:"CLICKHOUSE_USER" default:"default"`
	Password string `envconfig:"CLICKHOUSE_PASSWORD"`
}

// RedisConfig represents redis connection used for window locks and run tracking
type RedisConfig struct {
	Enabled  bool          `envconfig:"REDIS_ENABLED" default:"false"`
	Host     string        `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int           `envconfig:"REDIS_PORT" default:"6379"`
	Password string        `envconfig:"REDIS_PASSWORD"`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	LockTTL  time.Duration `envconfig:"REDIS_LOCK_TTL" default:"10m"`
}

// AIConfig represents AI provider configurations
type AIConfig struct {
	Gemini  AIProviderConfig `envconfig:"GEMINI"`
	OpenAI  AIProviderConfig `envconfig:"OPENAI"`
	Claude  AIProviderConfig `envconfig:"CLAUDE"`
	Timeout time.Duration    `envconfig:"AI_TIMEOUT" default:"30s"`
	Order   []string         `envconfig:"AI_ORDER" default:"gemini,openai,claude"`
}

// AIProviderConfig represents single AI provider configuration
type AIProviderConfig struct {
	APIKey  string `envconfig:"API_KEY"`
	Enabled bool   `envconfig:"ENABLED" default:"false"`
	Model   string `envconfig:"MODEL"`
	BaseURL string `envconfig:"BASE_URL"`
}

// TelegramConfig represents Telegram alert push configuration
type TelegramConfig struct {
	Enabled  bool   `envconfig:"TELEGRAM_ENABLED" default:"false"`
	BotToken string `envconfig:"TELEGRAM_BOT_TOKEN"`
	ChatID   int64  `envconfig:"TELEGRAM_CHAT_ID"`
}

// TemplatesConfig points at a directory overriding the built-in templates
type TemplatesConfig struct {
	Dir string `envconfig:"TEMPLATES_DIR"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
	File  string `envconfig:"LOG_FILE"`
}

// Load reads configuration from .env (if present) and environment variables
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Analysis.LookbackDays < 1 {
		return fmt.Errorf("lookback_days must be at least 1")
	}
	if c.Analysis.Interval < 0 {
		return fmt.Errorf("analysis interval must not be negative")
	}

	switch c.Store.Driver {
	case DriverPostgres:
		if c.Database.Host == "" || c.Database.Name == "" {
			return fmt.Errorf("database host and name are required for postgres store")
		}
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required for sqlite3 store")
		}
	default:
		return fmt.Errorf("unsupported store driver %q", c.Store.Driver)
	}

	if c.AI.Timeout <= 0 {
		return fmt.Errorf("ai timeout must be positive")
	}
	for _, name := range c.AI.Order {
		if _, ok := c.AI.Provider(name); !ok {
			return fmt.Errorf("unknown ai provider %q in order", name)
		}
	}

	if c.Redis.Enabled && c.Redis.LockTTL <= 0 {
		return fmt.Errorf("redis lock ttl must be positive")
	}

	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram bot token is required")
		}
		if c.Telegram.ChatID == 0 {
			return fmt.Errorf("telegram chat_id is required")
		}
	}

	return nil
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// GetDSN returns ClickHouse native protocol connection string
func (c *ClickHouseConfig) GetDSN() string {
	return fmt.Sprintf("clickhouse://%s:%s@%s:%d/%s", c.User, c.Password, c.Host, c.Port, c.Database)
}

// Addr returns host:port of redis
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GetEnabledAIProviders returns enabled provider names in configured order
func (c *AIConfig) GetEnabledAIProviders() []string {
	var providers []string
	for _, name := range c.Order {
		p, ok := c.Provider(name)
		if ok && p.Enabled && p.APIKey != "" {
			providers = append(providers, strings.ToLower(strings.TrimSpace(name)))
		}
	}
	return providers
}

// Provider returns the configuration of a named provider
func (c *AIConfig) Provider(name string) (*AIProviderConfig, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "gemini":
		return &c.Gemini, true
	case "openai":
		return &c.OpenAI, true
	case "claude":
		return &c.Claude, true
	default:
		return nil, false
	}
}
