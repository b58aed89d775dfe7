package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// StoreConfig points at the hosted document API backing reminder
// persistence.
type StoreConfig struct {
	// BaseURL is the root URL of the document service.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// Token is an optional static bearer token. When empty the token
	// stored in the system keyring for the signed-in user is used.
	Token string `mapstructure:"token" yaml:"token"`
}

// MarketConfig controls the market ticker data source.
type MarketConfig struct {
	// QuotesURL is the endpoint returning the crop quote list as JSON.
	// Empty means the built-in seed quotes are used.
	QuotesURL string `mapstructure:"quotes_url" yaml:"quotes_url"`

	// RefreshSec is how often (in seconds) quotes are refetched.
	RefreshSec int `mapstructure:"refresh_sec" yaml:"refresh_sec"`
}

// AdvisoryConfig configures the IMAP mailbox that receives advisory
// bulletins from the agriculture department.
type AdvisoryConfig struct {
	IMAPHost string `mapstructure:"imap_host" yaml:"imap_host"`
	IMAPPort string `mapstructure:"imap_port" yaml:"imap_port"`
	Username string `mapstructure:"username" yaml:"username"`
	UseTLS   bool   `mapstructure:"use_tls" yaml:"use_tls"`

	// Sender restricts bulletins to mails from this address. Empty
	// accepts any sender.
	Sender string `mapstructure:"sender" yaml:"sender"`

	// PollSec is how often (in seconds) the mailbox is polled.
	PollSec int `mapstructure:"poll_sec" yaml:"poll_sec"`
}

// AIConfig holds settings for the chat assistant integration.
type AIConfig struct {
	Model     string `mapstructure:"model" yaml:"model"`
	MaxTokens int    `mapstructure:"max_tokens" yaml:"max_tokens"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Store    StoreConfig    `mapstructure:"store" yaml:"store"`
	Market   MarketConfig   `mapstructure:"market" yaml:"market"`
	Advisory AdvisoryConfig `mapstructure:"advisory" yaml:"advisory"`
	AI       AIConfig       `mapstructure:"ai" yaml:"ai"`
	Display  DisplayConfig  `mapstructure:"display" yaml:"display"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/farmassist/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "farmassist", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Market: MarketConfig{
			RefreshSec: 300,
		},
		Advisory: AdvisoryConfig{
			IMAPPort: "993",
			UseTLS:   true,
			PollSec:  900,
		},
		AI: AIConfig{
			Model:     "claude-sonnet-4-20250514",
			MaxTokens: 1024,
		},
		Display: DisplayConfig{
			Theme: "default",
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("market.refresh_sec", 300)
	v.SetDefault("advisory.imap_port", "993")
	v.SetDefault("advisory.use_tls", true)
	v.SetDefault("advisory.poll_sec", 900)
	v.SetDefault("ai.model", "claude-sonnet-4-20250514")
	v.SetDefault("ai.max_tokens", 1024)
	v.SetDefault("display.theme", "default")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("store", cfg.Store)
	v.Set("market", cfg.Market)
	v.Set("advisory", cfg.Advisory)
	v.Set("ai", cfg.AI)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
