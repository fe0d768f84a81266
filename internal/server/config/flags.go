package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/qatrack/internal/flagx"
)

// parseFlags populates Config from command-line flags.
//
//	-a string     HTTP bind address (e.g. ":8080")
//	-d string     PostgreSQL DSN
//	-store string storage backend: postgres or memory
//	-redis string Redis address for shared rate limiting
//	-l int        submissions allowed per window and client
//	-w duration   submission window (e.g. "1m")
//	-log string   log level
//	-trace        enable stdout tracing (use -trace=true when other flags follow)
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-store", "-redis", "-l", "-w", "-log", "-trace"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.StoreKind, "store", config.StoreKind, "storage backend (postgres|memory)")
	fs.StringVar(&config.RedisAddr, "redis", config.RedisAddr, "redis address for rate limiting")
	fs.IntVar(&config.SubmitLimitPerWindow, "l", config.SubmitLimitPerWindow, "submissions per window (0 disables limiting)")
	fs.DurationVar(&config.SubmitWindow, "w", config.SubmitWindow, "submission window")
	fs.StringVar(&config.LogLevel, "log", config.LogLevel, "log level")
	fs.BoolVar(&config.TracingEnabled, "trace", config.TracingEnabled, "export traces to stdout")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
