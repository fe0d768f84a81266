package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/qatrack/internal/flagx"
	"github.com/dmitrijs2005/qatrack/internal/timex"
)

// JsonConfig is the on-disk form of Config. Intervals use timex.Duration so
// both "1m" and integer nanoseconds are accepted.
type JsonConfig struct {
	EndpointAddrHTTP     string         `json:"endpoint_addr_http"`
	DatabaseDSN          string         `json:"database_dsn"`
	StoreKind            string         `json:"store"`
	RedisAddr            string         `json:"redis_addr"`
	SubmitLimitPerWindow int            `json:"submit_limit_per_window"`
	SubmitWindow         timex.Duration `json:"submit_window"`
	ShutdownTimeout      timex.Duration `json:"shutdown_timeout"`
	LogLevel             string         `json:"log_level"`
	TracingEnabled       *bool          `json:"tracing_enabled"`
}

// parseJson overlays the file named by -c/-config onto config. Keys that are
// absent or empty keep the current value. A missing or malformed file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.StoreKind, c.StoreKind)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.LogLevel, c.LogLevel)

	if c.SubmitLimitPerWindow > 0 {
		config.SubmitLimitPerWindow = c.SubmitLimitPerWindow
	}
	if c.SubmitWindow.Duration > 0 {
		config.SubmitWindow = c.SubmitWindow.Duration
	}
	if c.ShutdownTimeout.Duration > 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	if c.TracingEnabled != nil {
		config.TracingEnabled = *c.TracingEnabled
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
