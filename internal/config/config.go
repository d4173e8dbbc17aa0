// Package config loads runtime settings from .critics.yaml, CRITICS_*
// environment variables and CLI flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Provider names.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Config holds all runtime configuration.
type Config struct {
	Provider           string        `mapstructure:"provider"`
	APIKey             string        `mapstructure:"api_key"`
	BaseURL            string        `mapstructure:"base_url"`
	ReviewModel        string        `mapstructure:"review_model"`
	SynthesisModel     string        `mapstructure:"synthesis_model"`
	ReviewMaxTokens    int           `mapstructure:"review_max_tokens"`
	SynthesisMaxTokens int           `mapstructure:"synthesis_max_tokens"`
	HTTPTimeout        time.Duration `mapstructure:"http_timeout"`
	DBPath             string        `mapstructure:"db_path"`
	ListenAddr         string        `mapstructure:"listen_addr"`
	AllowedOrigins     []string      `mapstructure:"allowed_origins"`
	PersonasFile       string        `mapstructure:"personas_file"`
	Verbose            bool          `mapstructure:"verbose"`
}

// providerKeyEnv names the conventional API key variable for each provider.
var providerKeyEnv = map[string]string{
	ProviderAnthropic: "ANTHROPIC_API_KEY",
	ProviderOpenAI:    "OPENAI_API_KEY",
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags. When api_key is
// unset, the provider's conventional variable (ANTHROPIC_API_KEY or
// OPENAI_API_KEY) is used.
func Load() (Config, error) {
	viper.SetDefault("provider", ProviderAnthropic)
	viper.SetDefault("api_key", "")
	viper.SetDefault("base_url", "")
	viper.SetDefault("review_model", "")
	viper.SetDefault("synthesis_model", "")
	viper.SetDefault("review_max_tokens", 1024)
	viper.SetDefault("synthesis_max_tokens", 2048)
	viper.SetDefault("http_timeout", time.Duration(0))
	viper.SetDefault("db_path", defaultDBPath())
	viper.SetDefault("listen_addr", "127.0.0.1:8080")
	viper.SetDefault("allowed_origins", []string{})
	viper.SetDefault("personas_file", "")
	viper.SetDefault("verbose", false)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}

	if cfg.APIKey == "" {
		if env, ok := providerKeyEnv[cfg.Provider]; ok {
			cfg.APIKey = os.Getenv(env)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if _, ok := providerKeyEnv[c.Provider]; !ok {
		return fmt.Errorf("config: unknown provider %q (want %s or %s)", c.Provider, ProviderAnthropic, ProviderOpenAI)
	}
	if c.ReviewMaxTokens <= 0 {
		return fmt.Errorf("config: review_max_tokens must be positive, got %d", c.ReviewMaxTokens)
	}
	if c.SynthesisMaxTokens <= 0 {
		return fmt.Errorf("config: synthesis_max_tokens must be positive, got %d", c.SynthesisMaxTokens)
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("config: http_timeout must not be negative, got %s", c.HTTPTimeout)
	}
	return nil
}

// KeyEnv returns the conventional API key variable for the configured
// provider.
func (c Config) KeyEnv() string {
	return providerKeyEnv[c.Provider]
}

// defaultDBPath is critics.db under the user config directory, or the
// working directory when that cannot be determined.
func defaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "critics.db"
	}
	return filepath.Join(dir, "critics", "critics.db")
}
