package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTestConfig() *Config {
	cfg := New()
	cfg.BaseURL = "https://example.atlassian.net"
	cfg.Email = "me@example.com"
	cfg.APIToken = "token"
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := New()
	assert.Equal(t, "basic", cfg.AuthMode)
	assert.Equal(t, 30, cfg.TimeoutSeconds)
	assert.Equal(t, 3, cfg.RetryCount)
	assert.True(t, cfg.ParseMarkdown)
	assert.True(t, cfg.ParseMentions)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, validTestConfig().Validate())
	})

	t.Run("missing base url", func(t *testing.T) {
		cfg := validTestConfig()
		cfg.BaseURL = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("basic auth needs credentials", func(t *testing.T) {
		cfg := validTestConfig()
		cfg.APIToken = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("bearer auth needs token only", func(t *testing.T) {
		cfg := validTestConfig()
		cfg.AuthMode = "bearer"
		cfg.Email = ""
		assert.NoError(t, cfg.Validate())
	})

	t.Run("connect auth needs issuer and secret", func(t *testing.T) {
		cfg := validTestConfig()
		cfg.AuthMode = "connect"
		assert.Error(t, cfg.Validate())

		cfg.ConnectIssuer = "addon"
		cfg.ConnectSecret = "secret"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("bad auth mode", func(t *testing.T) {
		cfg := validTestConfig()
		cfg.AuthMode = "oauth"
		assert.Error(t, cfg.Validate())
	})

	t.Run("timeout bounds", func(t *testing.T) {
		cfg := validTestConfig()
		cfg.TimeoutSeconds = 0
		assert.Error(t, cfg.Validate())
		cfg.TimeoutSeconds = 301
		assert.Error(t, cfg.Validate())
	})
}

func TestSaveAndLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	original := validTestConfig()
	original.LogLevel = "debug"
	original.RetryCount = 5
	require.NoError(t, original.SaveFile(path))

	loaded := New()
	require.NoError(t, loaded.LoadFile(path))
	assert.Equal(t, original.BaseURL, loaded.BaseURL)
	assert.Equal(t, original.Email, loaded.Email)
	assert.Equal(t, "debug", loaded.LogLevel)
	assert.Equal(t, 5, loaded.RetryCount)
	require.NoError(t, loaded.Validate())
}

func TestLoadFileRejectsUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("x = 1"), 0o600))
	assert.Error(t, New().LoadFile(path))
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("JIRA_URL", "https://env.atlassian.net")
	t.Setenv("JIRA_EMAIL", "env@example.com")
	t.Setenv("JIRA_API_TOKEN", "env-token")
	t.Setenv("JIRA_AUTH_MODE", "bearer")

	cfg := New()
	cfg.LoadEnv()
	assert.Equal(t, "https://env.atlassian.net", cfg.BaseURL)
	assert.Equal(t, "env@example.com", cfg.Email)
	assert.Equal(t, "env-token", cfg.APIToken)
	assert.Equal(t, "bearer", cfg.AuthMode)
}

func TestValidateConcurrent(t *testing.T) {
	// zero-value config exercises the lazy validator init under
	// concurrent callers; run with -race
	cfg := &Config{
		BaseURL:        "https://example.atlassian.net",
		Email:          "me@example.com",
		APIToken:       "token",
		AuthMode:       "basic",
		TimeoutSeconds: 30,
		LogLevel:       "info",
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, cfg.Validate())
		}()
	}
	wg.Wait()
}

func TestWatchReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := validTestConfig()
	require.NoError(t, cfg.SaveFile(path))
	require.NoError(t, cfg.LoadFile(path))

	reloaded := make(chan *Config, 1)
	stop := make(chan struct{})
	defer close(stop)
	require.NoError(t, cfg.Watch(func(c *Config) {
		select {
		case reloaded <- c:
		default:
		}
	}, stop))

	updated := validTestConfig()
	updated.LogLevel = "debug"
	require.NoError(t, updated.SaveFile(path))

	select {
	case c := <-reloaded:
		assert.Equal(t, "debug", c.LogLevel)
	case <-time.After(3 * time.Second):
		t.Fatal("config reload callback never fired")
	}
}

func TestWatchRequiresLoadedFile(t *testing.T) {
	assert.Error(t, New().Watch(nil, nil))
}

func TestRedactedMasksSecrets(t *testing.T) {
	cfg := validTestConfig()
	view := cfg.Redacted()
	assert.Equal(t, "set", view["api_token"])
	assert.NotContains(t, view["api_token"], "token")

	cfg.APIToken = ""
	assert.Equal(t, "not set", cfg.Redacted()["api_token"])
}
