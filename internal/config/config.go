// Package config handles configuration for chatwidget.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/diogo/chatwidget/internal/models"
)

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style" env:"CHATWIDGET_MARKDOWN_STYLE"`               // glamour style or path to JSON theme
	EnableEmoji      bool   `json:"enable_emoji" env:"CHATWIDGET_MARKDOWN_EMOJI"`        // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines" env:"CHATWIDGET_MARKDOWN_BREAKS"`  // Single line breaks are hard breaks
	TableWrap        bool   `json:"table_wrap" env:"CHATWIDGET_MARKDOWN_TABLE_WRAP"`     // Word wrap in table cells
	InlineTableLinks bool   `json:"inline_table_links" env:"CHATWIDGET_MARKDOWN_INLINE_LINKS"`
}

// Config represents the user configuration
type Config struct {
	BaseURL     string  `json:"base_url" env:"CHATWIDGET_BASE_URL"`
	Model       string  `json:"model" env:"CHATWIDGET_MODEL"`
	Temperature float64 `json:"temperature" env:"CHATWIDGET_TEMPERATURE"`
	// MaxTokens is omitted from requests when zero
	MaxTokens    int    `json:"max_tokens,omitempty" env:"CHATWIDGET_MAX_TOKENS"`
	SystemPrompt string `json:"system_prompt,omitempty" env:"CHATWIDGET_SYSTEM_PROMPT"`
	// SendHistory sends the whole transcript instead of only the latest message
	SendHistory bool `json:"send_history" env:"CHATWIDGET_SEND_HISTORY"`
	// RequestTimeout in seconds; zero waits for the transport
	RequestTimeout  int            `json:"request_timeout,omitempty" env:"CHATWIDGET_REQUEST_TIMEOUT"`
	CopyToClipboard bool           `json:"copy_to_clipboard" env:"CHATWIDGET_COPY_TO_CLIPBOARD"`
	TUITheme        string         `json:"tui_theme,omitempty" env:"CHATWIDGET_TUI_THEME"`
	LogLevel        string         `json:"log_level,omitempty" env:"CHATWIDGET_LOG_LEVEL"`
	LogFile         string         `json:"log_file,omitempty" env:"CHATWIDGET_LOG_FILE"`
	Markdown        MarkdownConfig `json:"markdown"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BaseURL:     models.DefaultBaseURL,
		Model:       models.DefaultModel,
		Temperature: models.DefaultTemperature,
		TUITheme:    "tokyonight",
		LogLevel:    "warn",
		Markdown:    DefaultMarkdownConfig(),
	}
}

// Timeout returns RequestTimeout as a duration
func (c Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// Validate checks value ranges
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url cannot be empty")
	}
	if u, err := url.Parse(c.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("base_url must be an http(s) URL, got %q", c.BaseURL)
	}
	if c.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}
	if c.Temperature < 0 || c.Temperature > models.MaxTemperature {
		return fmt.Errorf("temperature must be between 0 and %.0f, got %g", models.MaxTemperature, c.Temperature)
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("max_tokens cannot be negative, got %d", c.MaxTokens)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout cannot be negative, got %d", c.RequestTimeout)
	}
	return nil
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".chatwidget"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// LoadDotEnv loads variables from .env files into the process environment.
// Missing files are ignored; variables already set are left untouched.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// LoadConfigFile loads defaults merged with the config file, without
// environment overrides
func LoadConfigFile() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	return cfg, nil
}

// LoadConfig loads the configuration from disk and applies CHATWIDGET_*
// environment overrides
func LoadConfig() (Config, error) {
	cfg, err := LoadConfigFile()
	if err != nil {
		return cfg, err
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(configDir, "config.json"), data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
