// Package config provides configuration management for jirakit
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds the full jirakit configuration. Values come from a
// YAML/JSON file, environment variables (JIRA_URL, JIRA_EMAIL,
// JIRA_API_TOKEN), and command-line overrides, in increasing
// precedence.
type Config struct {
	BaseURL  string `mapstructure:"base_url" yaml:"base_url" json:"base_url" validate:"required,url"`
	Email    string `mapstructure:"email" yaml:"email,omitempty" json:"email,omitempty" validate:"omitempty,email"`
	APIToken string `mapstructure:"api_token" yaml:"api_token,omitempty" json:"api_token,omitempty"`

	// AuthMode selects basic (email+token), bearer (PAT), or connect
	// (Atlassian Connect JWT) authentication.
	AuthMode      string `mapstructure:"auth_mode" yaml:"auth_mode" json:"auth_mode" validate:"oneof=basic bearer connect"`
	ConnectIssuer string `mapstructure:"connect_issuer" yaml:"connect_issuer,omitempty" json:"connect_issuer,omitempty"`
	ConnectSecret string `mapstructure:"connect_secret" yaml:"connect_secret,omitempty" json:"connect_secret,omitempty"`

	TimeoutSeconds int `mapstructure:"timeout_seconds" yaml:"timeout_seconds" json:"timeout_seconds" validate:"gte=1,lte=300"`
	RetryCount     int `mapstructure:"retry_count" yaml:"retry_count" json:"retry_count" validate:"gte=0,lte=10"`

	// Document conversion toggles; passed to the converter as an
	// explicit options value, never read as ambient state.
	ParseMarkdown bool `mapstructure:"parse_markdown" yaml:"parse_markdown" json:"parse_markdown"`
	ParseMentions bool `mapstructure:"parse_mentions" yaml:"parse_mentions" json:"parse_mentions"`

	LogLevel       string `mapstructure:"log_level" yaml:"log_level" json:"log_level" validate:"oneof=debug info warn error"`
	MetricsEnabled bool   `mapstructure:"metrics_enabled" yaml:"metrics_enabled" json:"metrics_enabled"`

	mu        sync.RWMutex
	validator *validator.Validate
	path      string
}

// New creates a configuration populated with defaults
func New() *Config {
	return &Config{
		AuthMode:       "basic",
		TimeoutSeconds: 30,
		RetryCount:     3,
		ParseMarkdown:  true,
		ParseMentions:  true,
		LogLevel:       "info",
		validator:      validator.New(),
	}
}

// Timeout returns the request timeout as a duration
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate validates the configuration. It takes the write lock so
// the lazy validator init is safe under concurrent calls.
func (c *Config) Validate() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.validator == nil {
		c.validator = validator.New()
	}
	if err := c.validator.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.AuthMode == "basic" && (c.Email == "" || c.APIToken == "") {
		return fmt.Errorf("basic auth requires both email and api_token")
	}
	if c.AuthMode == "bearer" && c.APIToken == "" {
		return fmt.Errorf("bearer auth requires api_token")
	}
	if c.AuthMode == "connect" && (c.ConnectIssuer == "" || c.ConnectSecret == "") {
		return fmt.Errorf("connect auth requires connect_issuer and connect_secret")
	}
	return nil
}

// LoadFile loads configuration from a YAML or JSON file, layered over
// the current values.
func (c *Config) LoadFile(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := viper.New()
	v.SetConfigFile(path)
	switch ext := filepath.Ext(path); ext {
	case ".json":
		v.SetConfigType("json")
	case ".yaml", ".yml":
		v.SetConfigType("yaml")
	default:
		return fmt.Errorf("unsupported config file format: %s", ext)
	}

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := v.Unmarshal(c); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	c.path = path
	return nil
}

// LoadEnv layers environment variables over the current values
// (JIRA_URL, JIRA_EMAIL, JIRA_API_TOKEN and friends).
func (c *Config) LoadEnv() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if url := os.Getenv("JIRA_URL"); url != "" {
		c.BaseURL = url
	}
	if email := os.Getenv("JIRA_EMAIL"); email != "" {
		c.Email = email
	}
	if token := os.Getenv("JIRA_API_TOKEN"); token != "" {
		c.APIToken = token
	}
	if mode := os.Getenv("JIRA_AUTH_MODE"); mode != "" {
		c.AuthMode = mode
	}
	if issuer := os.Getenv("JIRA_CONNECT_ISSUER"); issuer != "" {
		c.ConnectIssuer = issuer
	}
	if secret := os.Getenv("JIRA_CONNECT_SECRET"); secret != "" {
		c.ConnectSecret = secret
	}
}

// SaveFile writes the configuration to a YAML file
func (c *Config) SaveFile(path string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// Watch reloads the configuration whenever its backing file changes.
// The callback runs after each successful reload. Watch returns
// immediately; the watcher goroutine stops when stop is closed or the
// watcher fails.
func (c *Config) Watch(callback func(*Config), stop <-chan struct{}) error {
	c.mu.RLock()
	path := c.path
	c.mu.RUnlock()
	if path == "" {
		return fmt.Errorf("no config file loaded, nothing to watch")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch config directory: %w", err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != path || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if err := c.LoadFile(path); err != nil {
					continue
				}
				if err := c.Validate(); err != nil {
					continue
				}
				if callback != nil {
					callback(c)
				}
			case <-watcher.Errors:
				return
			case <-stop:
				return
			}
		}
	}()
	return nil
}

// Redacted returns a copy-safe view for display, with secrets masked
func (c *Config) Redacted() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	masked := "not set"
	if c.APIToken != "" {
		masked = "set"
	}
	return map[string]string{
		"base_url":  c.BaseURL,
		"email":     c.Email,
		"api_token": masked,
		"auth_mode": c.AuthMode,
		"log_level": c.LogLevel,
	}
}
