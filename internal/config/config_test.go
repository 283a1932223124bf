package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tayloree/bonuscli/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "bonuscli.db", cfg.Store.Path)
	assert.Equal(t, "default", cfg.User)
	assert.Equal(t, 15*time.Second, cfg.Feed.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.InDelta(t, 10.0, cfg.Server.RateLimit, 1e-9)
	assert.Equal(t, 20, cfg.Server.RateBurst)
}

func TestLoad_FileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bonuscli.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  driver: badger
  path: /tmp/offers
user: alice
feed:
  path: bonus.json
  timeout: 30s
log:
  level: debug
`), 0o644))

	t.Setenv("BONUSCLI_USER", "bob")
	t.Setenv("BONUSCLI_LOG_FORMAT", "json")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("db", "", "")
	flags.String("user", "", "")
	require.NoError(t, flags.Parse([]string{"--db", "/tmp/override"}))

	cfg, err := config.Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "badger", cfg.Store.Driver)
	assert.Equal(t, "/tmp/override", cfg.Store.Path, "flag beats file")
	assert.Equal(t, "bob", cfg.User, "env beats file, unset flag does not apply")
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "bonus.json", cfg.Feed.Path)
	assert.Equal(t, 30*time.Second, cfg.Feed.Timeout)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BONUSCLI_STORE_DRIVER", "postgres")
	t.Setenv("BONUSCLI_FEED_URL", "not a url")

	_, err := config.Load("", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver must be one of: sqlite, badger")
	assert.Contains(t, err.Error(), "feed.url must be a valid URL")
}

func TestValidate(t *testing.T) {
	cfg := &config.Config{
		Store:  config.StoreConfig{Driver: "sqlite", Path: "x.db"},
		Feed:   config.FeedConfig{Timeout: time.Second},
		User:   "alice",
		Log:    config.LogConfig{Level: "info", Format: "text"},
		Server: config.ServerConfig{Addr: ":0", RateLimit: 1, RateBurst: 1},
	}
	require.NoError(t, config.Validate(cfg))

	cfg.User = ""
	cfg.Server.RateBurst = 0
	err := config.Validate(cfg)
	require.Error(t, err)
	assert.Equal(t, "server.rate_burst must be at least 1; user is required", err.Error())
}
