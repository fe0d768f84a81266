package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/qatrack/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
// os.Args is filtered with flagx.FilterArgs so unrelated flags are ignored.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-s", "-i", "-t", "-o", "-u", "-cache", "-log"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "s", cfg.ServerURL, "base URL of the issue API")
	syncInterval := fs.Int("i", int(cfg.SyncInterval.Seconds()), "sync interval (in seconds)")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "per-request timeout")
	fs.StringVar(&cfg.ExportDir, "o", cfg.ExportDir, "directory for exported reports")
	fs.StringVar(&cfg.ReporterName, "u", cfg.ReporterName, "reporter name for new issues")
	fs.StringVar(&cfg.CachePath, "cache", cfg.CachePath, "local snapshot cache file")
	fs.StringVar(&cfg.LogLevel, "log", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.SyncInterval = time.Duration(*syncInterval) * time.Second
}
