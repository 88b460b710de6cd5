package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	config := NewDefaultConfig()
	require.NoError(t, config.Validate())

	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, "webdriver", config.Capture.Driver)
	assert.Equal(t, 4, config.Capture.MaxSessions)
	assert.Equal(t, "/html/body/div[5]/*", config.Capture.ReadySelector)
	assert.Equal(t, 5*time.Second, config.Capture.ReadyTimeout)
	assert.Equal(t, 500*time.Millisecond, config.Capture.ReadyPollEvery)
}

func TestLoadFromFilesOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapdiff.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
environment = "production"

[server]
port = 9090

[capture]
max_sessions = 8
selenium_host = "grid.internal"
`), 0644))

	config, err := LoadFromFiles(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, 8, config.Capture.MaxSessions)
	assert.Equal(t, "grid.internal", config.Capture.SeleniumHost)
	assert.True(t, config.IsProduction())

	// Untouched sections keep their defaults.
	assert.Equal(t, "./assets", config.Assets.Folder)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("SELENIUM_HOST", "selenium.local")
	t.Setenv("SELENIUM_PORT", "4445")
	t.Setenv("SELENIUM_MAX_INSTANCES", "12")
	t.Setenv("ASSETS_FOLDER", "/var/snapdiff/assets")

	config, err := LoadFromFiles()
	require.NoError(t, err)

	assert.Equal(t, 7070, config.Server.Port)
	assert.Equal(t, "selenium.local", config.Capture.SeleniumHost)
	assert.Equal(t, 4445, config.Capture.SeleniumPort)
	assert.Equal(t, 12, config.Capture.MaxSessions)
	assert.Equal(t, "/var/snapdiff/assets", config.Assets.Folder)
}

func TestFlagOverridesBeatConfig(t *testing.T) {
	config := NewDefaultConfig()

	ApplyFlagOverrides(config, 9999, "127.0.0.1")
	assert.Equal(t, 9999, config.Server.Port)
	assert.Equal(t, "127.0.0.1", config.Server.Host)

	ApplyFlagOverrides(config, 0, "")
	assert.Equal(t, 9999, config.Server.Port)
	assert.Equal(t, "127.0.0.1", config.Server.Host)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []func(*Config){
		func(c *Config) { c.Server.Port = 0 },
		func(c *Config) { c.Server.Port = 70000 },
		func(c *Config) { c.Capture.MaxSessions = 0 },
		func(c *Config) { c.Capture.Driver = "firefox" },
		func(c *Config) { c.Assets.Folder = " " },
		func(c *Config) { c.Storage.SQLite.Path = "" },
		func(c *Config) { c.Storage.Badger.Path = "" },
	}

	for i, mutate := range cases {
		config := NewDefaultConfig()
		mutate(config)
		assert.Error(t, config.Validate(), "case %d", i)
	}
}

func TestSeleniumURL(t *testing.T) {
	config := NewDefaultConfig()
	config.Capture.SeleniumHost = "grid"
	config.Capture.SeleniumPort = 4444

	assert.Equal(t, "http://grid:4444/wd/hub", config.Capture.SeleniumURL())
}

func TestLoadFromFilesMissingFileFails(t *testing.T) {
	_, err := LoadFromFiles(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
