package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"rate_limiting"`
	AI        AIConfig        `mapstructure:"ai"`
	Glossary  GlossaryConfig  `mapstructure:"glossary"`
	Stocks    StocksConfig    `mapstructure:"stocks"`
	Briefing  BriefingConfig  `mapstructure:"briefing"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DatabaseConfig holds the PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// LoggingConfig holds log level and format.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// CacheConfig holds the optional Redis settings.
type CacheConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig holds verification settings for hosted-auth bearer tokens.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

// RateLimitConfig holds the per-client token bucket settings.
type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	Burst             int `mapstructure:"burst"`
}

// AIConfig holds the provider gateway settings.
type AIConfig struct {
	ProviderCacheTTL time.Duration `mapstructure:"provider_cache_ttl"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout"`
	MaxRetries       int           `mapstructure:"max_retries"`
	RetryBackoff     time.Duration `mapstructure:"retry_backoff"`
	SecretKey        string        `mapstructure:"secret_key"` // 32-byte hex key sealing provider credentials
}

// GlossaryConfig holds the term-detection settings.
type GlossaryConfig struct {
	TermCacheTTL time.Duration `mapstructure:"term_cache_ttl"`
}

// StocksConfig holds the market-data settings.
type StocksConfig struct {
	QuoteBaseURL string        `mapstructure:"quote_base_url"`
	CacheMaxAge  time.Duration `mapstructure:"cache_max_age"`
}

// BriefingConfig holds the morning-briefing settings.
type BriefingConfig struct {
	NewsURL string `mapstructure:"news_url"`
}

// LoadConfig loads configuration from file and environment.
func LoadConfig(configPath string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// setDefaults registers the default value of every setting.
func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "90s") // must outlive a streamed chat
	viper.SetDefault("server.idle_timeout", "60s")

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", "300s")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output", "stdout")

	viper.SetDefault("cache.enabled", false)
	viper.SetDefault("cache.addr", "localhost:6379")
	viper.SetDefault("cache.db", 0)

	viper.SetDefault("auth.issuer", "")

	viper.SetDefault("rate_limiting.requests_per_minute", 60)
	viper.SetDefault("rate_limiting.burst", 10)

	viper.SetDefault("ai.provider_cache_ttl", "5m")
	viper.SetDefault("ai.request_timeout", "60s")
	viper.SetDefault("ai.max_retries", 2)
	viper.SetDefault("ai.retry_backoff", "300ms")

	viper.SetDefault("glossary.term_cache_ttl", "1h")

	viper.SetDefault("stocks.quote_base_url", "https://query1.finance.yahoo.com")
	viper.SetDefault("stocks.cache_max_age", "1h")

	viper.SetDefault("briefing.news_url", "")
}

// validateConfig rejects unusable configurations at startup.
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Database.DBName == "" {
		return fmt.Errorf("database name is required")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true,
	}
	if !validLogLevels[config.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	if config.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}

	if config.AI.ProviderCacheTTL <= 0 {
		return fmt.Errorf("ai.provider_cache_ttl must be positive")
	}
	if config.AI.RequestTimeout <= 0 {
		return fmt.Errorf("ai.request_timeout must be positive")
	}

	return nil
}

// GetAddress returns the listen address.
func (c *ServerConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
