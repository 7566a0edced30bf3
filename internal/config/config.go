package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/codefionn/codecompanion/internal/consts"
	"github.com/codefionn/codecompanion/internal/provider"
	"github.com/codefionn/codecompanion/internal/secrets"
)

const appName = "codecompanion"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CODECOMPANION_"

// Config represents application configuration
type Config struct {
	Provider          string  `json:"provider"` // google, openai or anthropic
	Model             string  `json:"model,omitempty"`
	APIKey            string  `json:"api_key,omitempty"` // plain or "enc:" encrypted
	ListenAddr        string  `json:"listen_addr"`
	Temperature       float64 `json:"temperature"`
	MaxOutputTokens   int     `json:"max_output_tokens"`
	MaxInputTokens    int     `json:"max_input_tokens"`
	RequestIntervalMs int     `json:"request_interval_ms"` // 0 disables the per-request limit
	TokensPerMinute   int     `json:"tokens_per_minute"`   // 0 disables the token budget
	CacheTTL          int     `json:"cache_ttl_seconds"`   // 0 disables the result cache
	HistoryPath       string  `json:"history_path"`        // empty disables history
	HistoryLimit      int     `json:"history_limit"`
	LogLevel          string  `json:"log_level"` // debug, info, warn, error, none
	LogPath           string  `json:"log_path"`  // "-" for stderr
}

func defaultConfigDir() string {
	if runtime.GOOS == "windows" {
		if appData := strings.TrimSpace(os.Getenv("APPDATA")); appData != "" {
			return filepath.Join(appData, appName)
		}
	}
	if configHome := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); configHome != "" {
		return filepath.Join(configHome, appName)
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", appName)
}

func defaultStateDir() string {
	if runtime.GOOS == "windows" {
		if localAppData := strings.TrimSpace(os.Getenv("LOCALAPPDATA")); localAppData != "" {
			return filepath.Join(localAppData, appName)
		}
	}
	if stateHome := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); stateHome != "" {
		return filepath.Join(stateHome, appName)
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".local", "state", appName)
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	stateDir := defaultStateDir()

	return &Config{
		Provider:          provider.Default,
		ListenAddr:        "localhost:9002",
		Temperature:       consts.DefaultTemperature,
		MaxOutputTokens:   consts.DefaultMaxTokens,
		MaxInputTokens:    consts.DefaultMaxInputTokens,
		RequestIntervalMs: 0,
		TokensPerMinute:   0,
		CacheTTL:          600,
		HistoryPath:       filepath.Join(stateDir, "history.db"),
		HistoryLimit:      consts.DefaultHistoryLimit,
		LogLevel:          "info",
		LogPath:           filepath.Join(stateDir, appName+".log"),
	}
}

// GetConfigPath returns the default config path
func GetConfigPath() string {
	return filepath.Join(defaultConfigDir(), "config.json")
}

// Load builds the configuration from defaults, the file at path (when it
// exists) and CODECOMPANION_* environment variables, in that order. An
// encrypted api_key is opened with CODECOMPANION_SECRETS_PASSWORD.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.fillDefaults()

	if secrets.IsEncrypted(cfg.APIKey) {
		password, ok := lookupEnv("SECRETS_PASSWORD")
		if !ok {
			return nil, fmt.Errorf("api_key is encrypted; set %sSECRETS_PASSWORD", EnvPrefix)
		}
		plain, err := secrets.Decrypt(cfg.APIKey, password)
		if err != nil {
			return nil, fmt.Errorf("decrypt api_key: %w", err)
		}
		cfg.APIKey = plain
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func lookupEnv(name string) (string, bool) {
	value, ok := os.LookupEnv(EnvPrefix + name)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(value), true
}

func (c *Config) applyEnv() {
	overrides := map[string]*string{
		"PROVIDER":     &c.Provider,
		"MODEL":        &c.Model,
		"API_KEY":      &c.APIKey,
		"LISTEN_ADDR":  &c.ListenAddr,
		"HISTORY_PATH": &c.HistoryPath,
		"LOG_LEVEL":    &c.LogLevel,
		"LOG_PATH":     &c.LogPath,
	}
	for name, field := range overrides {
		if value, ok := lookupEnv(name); ok {
			*field = value
		}
	}
}

func (c *Config) fillDefaults() {
	defaults := DefaultConfig()

	c.Provider = provider.Canonical(c.Provider)
	if c.Provider == "" {
		c.Provider = defaults.Provider
	}
	if c.ListenAddr == "" {
		c.ListenAddr = defaults.ListenAddr
	}
	if c.MaxOutputTokens <= 0 {
		c.MaxOutputTokens = defaults.MaxOutputTokens
	}
	if c.MaxInputTokens <= 0 {
		c.MaxInputTokens = defaults.MaxInputTokens
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = defaults.HistoryLimit
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
}

// Validate checks the values that cannot be defaulted.
func (c *Config) Validate() error {
	if err := provider.Validate(c.Provider); err != nil {
		return err
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature %.2f out of range [0, 2]", c.Temperature)
	}
	if c.RequestIntervalMs < 0 || c.TokensPerMinute < 0 || c.CacheTTL < 0 {
		return errors.New("request_interval_ms, tokens_per_minute and cache_ttl_seconds must not be negative")
	}
	return nil
}

// ModelName returns the configured model or the provider default.
func (c *Config) ModelName() string {
	if strings.TrimSpace(c.Model) != "" {
		return strings.TrimSpace(c.Model)
	}
	return provider.DefaultModel(c.Provider)
}

// ResolveAPIKey returns the configured key or the provider's environment key.
func (c *Config) ResolveAPIKey() string {
	return provider.ResolveAPIKey(c.Provider, c.APIKey)
}

// RequestInterval is the minimum spacing between model calls.
func (c *Config) RequestInterval() time.Duration {
	return time.Duration(c.RequestIntervalMs) * time.Millisecond
}

// CacheTTLDuration is how long flow results stay cached.
func (c *Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// Save writes the configuration to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0600)
}
