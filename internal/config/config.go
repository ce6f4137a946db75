// Package config loads relay configuration from file, environment, and
// defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/everstacklabs/relay/internal/alert"
	"github.com/everstacklabs/relay/internal/quota"
)

// Config holds all configuration for the relay.
type Config struct {
	CatalogPath string `mapstructure:"catalog_path"`
	LedgerPath  string `mapstructure:"ledger_path"`
	LogLevel    string `mapstructure:"log_level"`

	Server ServerConfig            `mapstructure:"server"`
	Plans  map[string]quota.Limits `mapstructure:"plans"`
	Tiers  TiersConfig             `mapstructure:"tiers"`
	Alerts alert.Thresholds        `mapstructure:"alerts"`

	CallTimeout string `mapstructure:"call_timeout"`

	OpenAI    ProviderConfig `mapstructure:"openai"`
	Anthropic ProviderConfig `mapstructure:"anthropic"`
	Google    ProviderConfig `mapstructure:"google"`
	Stability ProviderConfig `mapstructure:"stability"`
	Runway    ProviderConfig `mapstructure:"runway"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr      string `mapstructure:"addr"`
	JWTSecret string `mapstructure:"jwt_secret"`
}

// TiersConfig assigns tenants to plans and caps per-unit cost by tier.
type TiersConfig struct {
	Default     string             `mapstructure:"default"`
	Assignments map[string]string  `mapstructure:"assignments"`
	Ceilings    map[string]float64 `mapstructure:"ceilings"`
}

// ProviderConfig holds per-vendor API settings.
type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// Load reads configuration from file, environment, and defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("catalog_path", "")
	v.SetDefault("ledger_path", defaultLedgerPath())
	v.SetDefault("log_level", "info")
	v.SetDefault("call_timeout", "60s")
	v.SetDefault("server.addr", ":8090")
	v.SetDefault("tiers.default", "free")
	v.SetDefault("tiers.ceilings", map[string]float64{"free": 0.01, "premium": 0.05})
	v.SetDefault("alerts.global_daily", 100.0)
	v.SetDefault("alerts.global_monthly", 2000.0)
	v.SetDefault("alerts.expensive_transaction", 1.0)
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("anthropic.base_url", "https://api.anthropic.com/v1")
	v.SetDefault("google.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("stability.base_url", "https://api.stability.ai/v1")
	v.SetDefault("runway.base_url", "https://api.dev.runwayml.com/v1")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/relay")
	}

	// Environment variables
	v.SetEnvPrefix("RELAY")
	v.AutomaticEnv()

	// Bind specific env vars
	_ = v.BindEnv("server.jwt_secret", "RELAY_JWT_SECRET")
	_ = v.BindEnv("openai.api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("openai.base_url", "RELAY_OPENAI_BASE_URL")
	_ = v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("anthropic.base_url", "RELAY_ANTHROPIC_BASE_URL")
	_ = v.BindEnv("google.api_key", "GEMINI_API_KEY")
	_ = v.BindEnv("google.base_url", "RELAY_GOOGLE_BASE_URL")
	_ = v.BindEnv("stability.api_key", "STABILITY_API_KEY")
	_ = v.BindEnv("stability.base_url", "RELAY_STABILITY_BASE_URL")
	_ = v.BindEnv("runway.api_key", "RUNWAY_API_KEY")
	_ = v.BindEnv("runway.base_url", "RELAY_RUNWAY_BASE_URL")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if len(cfg.Plans) == 0 {
		cfg.Plans = quota.DefaultPlans()
	}

	// Resolve catalog path to absolute when set
	if cfg.CatalogPath != "" && !filepath.IsAbs(cfg.CatalogPath) {
		abs, err := filepath.Abs(cfg.CatalogPath)
		if err != nil {
			return nil, fmt.Errorf("resolving catalog path: %w", err)
		}
		cfg.CatalogPath = abs
	}

	return &cfg, nil
}

func defaultLedgerPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "/tmp/relay/ledger.db"
	}
	return filepath.Join(home, ".local", "share", "relay", "ledger.db")
}
