package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	NeverBounce NeverBounceConfig `yaml:"neverbounce" mapstructure:"neverbounce"`
	Anthropic   AnthropicConfig   `yaml:"anthropic" mapstructure:"anthropic"`
	Export      ExportConfig      `yaml:"export" mapstructure:"export"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// CacheConfig configures the two verification-cache tiers.
type CacheConfig struct {
	RemoteURL         string `yaml:"remote_url" mapstructure:"remote_url"`
	LocalPath         string `yaml:"local_path" mapstructure:"local_path"`
	ReprobeSecs       int    `yaml:"reprobe_secs" mapstructure:"reprobe_secs"`
	RemoteTimeoutSecs int    `yaml:"remote_timeout_secs" mapstructure:"remote_timeout_secs"`
}

// NeverBounceConfig holds verification provider settings.
type NeverBounceConfig struct {
	Key         string  `yaml:"key" mapstructure:"key"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	Burst       int     `yaml:"burst" mapstructure:"burst"`
}

// AnthropicConfig holds Anthropic API settings for outreach drafting.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// ExportConfig configures the lead export command.
type ExportConfig struct {
	LedgerPath string `yaml:"ledger_path" mapstructure:"ledger_path"`
	OutputFile string `yaml:"output_file" mapstructure:"output_file"`
	Format     string `yaml:"format" mapstructure:"format"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("cache.remote_url", "http://localhost:3001")
	v.SetDefault("cache.local_path", "leadgen.db")
	v.SetDefault("cache.reprobe_secs", 30)
	v.SetDefault("cache.remote_timeout_secs", 10)
	// Secrets default to empty so LEADGEN_* env values are picked up.
	v.SetDefault("neverbounce.key", "")
	v.SetDefault("anthropic.key", "")
	v.SetDefault("neverbounce.base_url", "https://api.neverbounce.com/v4")
	v.SetDefault("neverbounce.timeout_secs", 30)
	v.SetDefault("neverbounce.rate_per_sec", 5.0)
	v.SetDefault("neverbounce.burst", 3)
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("export.ledger_path", "leadgen.db")
	v.SetDefault("export.output_file", "valid_leads.csv")
	v.SetDefault("export.format", "csv")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
