package config

import (
	"time"

	"github.com/dmitrijs2005/qatrack/internal/flagx"
)

// Config holds runtime settings for the dashboard.
//
// Fields:
//   - ServerURL: base URL of the issue API.
//   - SyncInterval: how often the view is refreshed from the server.
//   - RequestTimeout: upper bound for a single API call.
//   - ExportDir: where CSV/Markdown/HTML reports are written.
//   - ReporterName: default reportedBy for issues filed from the dashboard.
//   - CachePath: SQLite file holding the last synced view; empty disables it.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	ServerURL      string
	SyncInterval   time.Duration
	RequestTimeout time.Duration
	ExportDir      string
	ReporterName   string
	CachePath      string
	LogLevel       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.SyncInterval = 5 * time.Second
	c.RequestTimeout = 3 * time.Second
	c.ExportDir = "."
	c.ReporterName = ""
	c.CachePath = ""
	c.LogLevel = "warn"
}

// LoadConfig constructs a Config, applies defaults, then overlays the
// environment, JSON (if present) and command-line flags. Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := flagx.LoadDotEnv(); err != nil {
		panic(err)
	}
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

func parseEnv(c *Config) {
	flagx.EnvString(&c.ServerURL, "SERVER_URL")
	flagx.EnvDuration(&c.SyncInterval, "SYNC_INTERVAL")
	flagx.EnvDuration(&c.RequestTimeout, "REQUEST_TIMEOUT")
	flagx.EnvString(&c.ExportDir, "EXPORT_DIR")
	flagx.EnvString(&c.ReporterName, "REPORTER")
	flagx.EnvString(&c.CachePath, "CACHE_PATH")
	flagx.EnvString(&c.LogLevel, "DASHBOARD_LOG_LEVEL")
}
