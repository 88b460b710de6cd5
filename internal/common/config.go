package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string        `toml:"environment"` // "development" or "production"
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Capture     CaptureConfig `toml:"capture"`
	Assets      AssetsConfig  `toml:"assets"`
	Logging     LoggingConfig `toml:"logging"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	SQLite SQLiteConfig `toml:"sqlite"`
	Badger BadgerConfig `toml:"badger"`
}

// SQLiteConfig represents the relational store configuration
type SQLiteConfig struct {
	Path           string `toml:"path"`             // Database file path
	CacheSizeMB    int    `toml:"cache_size_mb"`    // Page cache size
	BusyTimeoutMS  int    `toml:"busy_timeout_ms"`  // Lock wait before SQLITE_BUSY
	WALMode        bool   `toml:"wal_mode"`         // Enable write-ahead logging
	MaxConnections int    `toml:"max_connections"`  // Pool size
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

// BadgerConfig represents the key/value store configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

// CaptureConfig controls the screenshot pool and its browser endpoint.
type CaptureConfig struct {
	Driver           string        `toml:"driver"`             // "webdriver" (remote Selenium) or "chromedp" (local Chrome)
	SeleniumHost     string        `toml:"selenium_host"`      // WebDriver endpoint host
	SeleniumPort     int           `toml:"selenium_port"`      // WebDriver endpoint port
	MaxSessions      int           `toml:"max_sessions"`       // Hard cap on concurrent browser sessions
	NavigateTimeout  time.Duration `toml:"navigate_timeout"`   // Page load ceiling per descriptor
	ReadySelector    string        `toml:"ready_selector"`     // XPath of the gallery framework's mount marker
	ReadyTimeout     time.Duration `toml:"ready_timeout"`      // Ceiling for the mount marker to appear
	ReadyPollEvery   time.Duration `toml:"ready_poll_every"`   // Poll interval while waiting for the marker
	UserAgent        string        `toml:"user_agent"`         // Browser user agent (chromedp driver only)
}

// AssetsConfig locates the on-disk image tree served at /api/assets.
type AssetsConfig struct {
	Folder string `toml:"folder"`
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs
}

// SeleniumURL returns the remote WebDriver endpoint URL.
func (c *CaptureConfig) SeleniumURL() string {
	return fmt.Sprintf("http://%s:%d/wd/hub", c.SeleniumHost, c.SeleniumPort)
}

// NewDefaultConfig returns the built-in defaults, overridable by files,
// environment and flags in that order.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			SQLite: SQLiteConfig{
				Path:           "./data/snapdiff.db",
				CacheSizeMB:    64,
				BusyTimeoutMS:  5000,
				WALMode:        true,
				MaxConnections: 25,
			},
			Badger: BadgerConfig{
				Path: "./data/jobs",
			},
		},
		Capture: CaptureConfig{
			Driver:          "webdriver",
			SeleniumHost:    "localhost",
			SeleniumPort:    4444,
			MaxSessions:     4,
			NavigateTimeout: 60 * time.Second,
			// Mount marker of the gallery framework's story root. A waiting
			// heuristic, not a contract; override per deployment.
			ReadySelector:  "/html/body/div[5]/*",
			ReadyTimeout:   5 * time.Second,
			ReadyPollEvery: 500 * time.Millisecond,
			UserAgent:      "Snapdiff/1.0",
		},
		Assets: AssetsConfig{
			Folder: "./assets",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05",
		},
	}
}

// LoadFromFiles loads configuration in priority order: defaults, then each
// file (later files override earlier ones), then environment variables.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides maps deployment environment variables onto the config.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("BASE_URL"); v != "" {
		config.Server.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.Port = port
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		config.Storage.SQLite.Path = v
	}
	if v := os.Getenv("JOB_STORE_PATH"); v != "" {
		config.Storage.Badger.Path = v
	}
	if v := os.Getenv("SELENIUM_HOST"); v != "" {
		config.Capture.SeleniumHost = v
	}
	if v := os.Getenv("SELENIUM_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Capture.SeleniumPort = port
		}
	}
	if v := os.Getenv("SELENIUM_MAX_INSTANCES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.Capture.MaxSessions = n
		}
	}
	if v := os.Getenv("ASSETS_FOLDER"); v != "" {
		config.Assets.Folder = v
	}
	if v := os.Getenv("SNAPDIFF_CAPTURE_DRIVER"); v != "" {
		config.Capture.Driver = v
	}
	if v := os.Getenv("SNAPDIFF_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
}

// ApplyFlagOverrides applies command-line flag values (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate rejects configurations the process cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Capture.MaxSessions <= 0 {
		return fmt.Errorf("capture.max_sessions must be greater than 0, got %d", c.Capture.MaxSessions)
	}
	switch c.Capture.Driver {
	case "webdriver", "chromedp":
	default:
		return fmt.Errorf("unknown capture driver %q (expected \"webdriver\" or \"chromedp\")", c.Capture.Driver)
	}
	if strings.TrimSpace(c.Assets.Folder) == "" {
		return fmt.Errorf("assets.folder must not be empty")
	}
	if strings.TrimSpace(c.Storage.SQLite.Path) == "" {
		return fmt.Errorf("storage.sqlite.path must not be empty")
	}
	if strings.TrimSpace(c.Storage.Badger.Path) == "" {
		return fmt.Errorf("storage.badger.path must not be empty")
	}
	return nil
}

// IsProduction returns true when running with production settings
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}
