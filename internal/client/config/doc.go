// Package config loads runtime configuration for the dashboard.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. The environment, QATRACK_* variables, optionally seeded from a .env file.
//  3. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-s string     base URL of the issue API
//	-i int        sync interval (seconds)
//	-t duration   per-request timeout
//	-o string     directory for exported reports
//	-u string     name recorded as reportedBy on new issues
//	-cache string path of the local snapshot cache (empty disables it)
//	-log string   log level
//
// # JSON schema
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "sync_interval": "5s",
//	  "request_timeout": "3s",
//	  "export_dir": "./reports",
//	  "reporter_name": "qa-team",
//	  "cache_path": "qatrack.db",
//	  "log_level": "info"
//	}
package config
