package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	APIKey          string  `mapstructure:"api_key" yaml:"api_key"`
	BaseURL         string  `mapstructure:"base_url" yaml:"base_url"`
	DefaultModel    string  `mapstructure:"default_model" yaml:"default_model"`
	DefaultProvider string  `mapstructure:"default_provider" yaml:"default_provider"`
	SummaryLanguage string  `mapstructure:"summary_language" yaml:"summary_language"`
	MaxTokens       int     `mapstructure:"max_tokens" yaml:"max_tokens"`
	Temperature     float64 `mapstructure:"temperature" yaml:"temperature"`

	// Dataset handling
	PreviewRows        int    `mapstructure:"preview_rows" yaml:"preview_rows"`
	ThousandsSeparator string `mapstructure:"thousands_separator" yaml:"thousands_separator"`

	// HTTP API and logging
	ServerAddr string `mapstructure:"server_addr" yaml:"server_addr"`
	LogLevel   string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat  string `mapstructure:"log_format" yaml:"log_format"`

	// HTTP/Retry configuration
	HTTPTimeoutSec   int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	RetryMaxAttempts int `mapstructure:"retry_max_attempts" yaml:"retry_max_attempts"`
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms" yaml:"retry_base_delay_ms"`
	RetryMaxDelayMs  int `mapstructure:"retry_max_delay_ms" yaml:"retry_max_delay_ms"`

	// Local runtimes (Ollama)
	OllamaHost string `mapstructure:"ollama_host" yaml:"ollama_host"`
}

var defaults = map[string]any{
	"base_url":            "https://openrouter.ai/api/v1",
	"default_model":       "openai/gpt-4.1-mini",
	"default_provider":    "openrouter",
	"summary_language":    "English",
	"max_tokens":          800,
	"temperature":         0.2,
	"preview_rows":        10,
	"thousands_separator": "",
	"server_addr":         "127.0.0.1:8080",
	"log_level":           "info",
	"log_format":          "console",
	"http_timeout_sec":    60,
	"retry_max_attempts":  3,
	"retry_base_delay_ms": 500,
	"retry_max_delay_ms":  4000,
	"ollama_host":         "http://127.0.0.1:11434",
}

// Keys lists every settable configuration key in sorted order.
func Keys() []string {
	out := []string{"api_key"}
	for k := range defaults {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Dir returns ~/.tabsight.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".tabsight"), nil
}

func defaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Save writes the given configuration to cfgFile, or to
// ~/.tabsight/config.yaml when cfgFile is empty.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := defaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// LoadDotEnv loads a .env file from the working directory if present.
// Variables already set in the environment win.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Flags are applied by the caller.
// OPENROUTER_API_KEY is honored as a fallback for api_key.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("TABSIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("api_key", "TABSIGHT_API_KEY", "OPENROUTER_API_KEY"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}
	for k, d := range defaults {
		v.SetDefault(k, d)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		var notFound viper.ConfigFileNotFoundError
		if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Set parses val for key and stores it on c.
func (c *Global) Set(key, val string) error {
	atoi := func() (int, error) {
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return 0, fmt.Errorf("invalid int for %s: %q", key, val)
		}
		return i, nil
	}
	var err error
	switch key {
	case "api_key":
		c.APIKey = val
	case "base_url":
		c.BaseURL = strings.TrimRight(val, "/")
	case "default_model":
		c.DefaultModel = val
	case "default_provider":
		switch strings.ToLower(val) {
		case "openrouter":
			c.DefaultProvider = "openrouter"
		case "ollama", "local":
			c.DefaultProvider = "ollama"
		default:
			return fmt.Errorf("invalid default_provider: %s (use openrouter or ollama)", val)
		}
	case "summary_language":
		c.SummaryLanguage = val
	case "max_tokens":
		c.MaxTokens, err = atoi()
	case "temperature":
		f, perr := strconv.ParseFloat(val, 64)
		if perr != nil || f < 0 || f > 2 {
			return fmt.Errorf("invalid float for temperature: %q", val)
		}
		c.Temperature = f
	case "preview_rows":
		c.PreviewRows, err = atoi()
	case "thousands_separator":
		if len([]rune(val)) > 1 {
			return fmt.Errorf("thousands_separator must be a single character, got %q", val)
		}
		c.ThousandsSeparator = val
	case "server_addr":
		c.ServerAddr = val
	case "log_level":
		switch strings.ToLower(val) {
		case "debug", "info", "warn", "error":
			c.LogLevel = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", val)
		}
	case "log_format":
		switch strings.ToLower(val) {
		case "console", "json":
			c.LogFormat = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_format: %s (use console or json)", val)
		}
	case "http_timeout_sec":
		c.HTTPTimeoutSec, err = atoi()
	case "retry_max_attempts":
		c.RetryMaxAttempts, err = atoi()
	case "retry_base_delay_ms":
		c.RetryBaseDelayMs, err = atoi()
	case "retry_max_delay_ms":
		c.RetryMaxDelayMs, err = atoi()
	case "ollama_host":
		c.OllamaHost = strings.TrimRight(val, "/")
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return err
}

// HTTPTimeout returns the configured client timeout.
func (c *Global) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSec) * time.Second
}

// RetryDelays returns the configured base and max backoff.
func (c *Global) RetryDelays() (base, ceiling time.Duration) {
	return time.Duration(c.RetryBaseDelayMs) * time.Millisecond, time.Duration(c.RetryMaxDelayMs) * time.Millisecond
}
