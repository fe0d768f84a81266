package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/qatrack/internal/flagx"
	"github.com/dmitrijs2005/qatrack/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "5s" or as integer nanoseconds.
type JsonConfig struct {
	ServerURL      string         `json:"server_url"`
	SyncInterval   timex.Duration `json:"sync_interval"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	ExportDir      string         `json:"export_dir"`
	ReporterName   string         `json:"reporter_name"`
	CachePath      string         `json:"cache_path"`
	LogLevel       string         `json:"log_level"`
}

// parseJson overlays Config with values loaded from the file given by -c or
// -config. Absent keys keep their current value. Panics on read or
// unmarshal errors.
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

	if c.ServerURL != "" {
		config.ServerURL = c.ServerURL
	}
	if c.SyncInterval.Duration > 0 {
		config.SyncInterval = c.SyncInterval.Duration
	}
	if c.RequestTimeout.Duration > 0 {
		config.RequestTimeout = c.RequestTimeout.Duration
	}
	if c.ExportDir != "" {
		config.ExportDir = c.ExportDir
	}
	if c.ReporterName != "" {
		config.ReporterName = c.ReporterName
	}
	if c.CachePath != "" {
		config.CachePath = c.CachePath
	}
	if c.LogLevel != "" {
		config.LogLevel = c.LogLevel
	}
}
