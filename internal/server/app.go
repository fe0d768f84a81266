// Package server wires the issue server together: configuration, logging,
// storage backend, rate limiting, tracing and the REST API, with graceful
// shutdown on SIGINT/SIGTERM.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/qatrack/internal/logging"
	"github.com/dmitrijs2005/qatrack/internal/metrics"
	"github.com/dmitrijs2005/qatrack/internal/server/config"
	"github.com/dmitrijs2005/qatrack/internal/server/ratelimit"
	"github.com/dmitrijs2005/qatrack/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/qatrack/internal/server/rest"
	"github.com/dmitrijs2005/qatrack/internal/server/services"
	"github.com/dmitrijs2005/qatrack/internal/server/store"
	"github.com/dmitrijs2005/qatrack/internal/telemetry"
)

// openPostgres is a seam for tests.
var openPostgres = repomanager.Open

type App struct {
	config   *config.Config
	logger   logging.Logger
	server   *rest.Server
	closers  []func() error
	shutdown func(context.Context) error
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout, logging.ParseLevel(c.LogLevel))
	app := &App{config: c, logger: logger}

	m := metrics.New()

	st, err := app.openStore(ctx)
	if err != nil {
		app.close()
		return nil, err
	}
	svc := services.NewIssueService(store.NewInstrumented(st, m))

	limiter, closeLimiter := ratelimit.New(c.RedisAddr)
	app.closers = append(app.closers, closeLimiter)

	if c.TracingEnabled {
		shutdown, err := telemetry.InitTracer("qatrack-server", os.Stdout)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("tracing init error: %w", err)
		}
		app.shutdown = shutdown
	}

	app.server = rest.NewServer(c.EndpointAddrHTTP, logger, svc, m, rest.SubmitLimit{
		Limiter: limiter,
		Limit:   c.SubmitLimitPerWindow,
		Window:  c.SubmitWindow,
	}, c.ShutdownTimeout)

	return app, nil
}

func (app *App) openStore(ctx context.Context) (store.Store, error) {
	switch app.config.StoreKind {
	case config.StoreMemory:
		app.logger.Warn(ctx, "using in-memory store, data is lost on exit")
		return store.NewMemoryStore(), nil

	case config.StorePostgres, "":
		db, err := openPostgres(ctx, app.config.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		app.closers = append(app.closers, db.Close)

		rm := repomanager.NewPostgresRepositoryManager()
		if err := rm.RunMigrations(ctx, db); err != nil {
			return nil, fmt.Errorf("migrations error: %w", err)
		}
		return store.NewSQLStore(db, rm), nil
	}
	return nil, fmt.Errorf("unknown store %q", app.config.StoreKind)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled, a signal arrives or the HTTP server
// fails, then releases every resource the app opened.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "store", app.config.StoreKind)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.close()
	app.logger.Info(context.Background(), "App stopped")
}

func (app *App) close() {
	ctx := context.Background()
	if app.shutdown != nil {
		if err := app.shutdown(ctx); err != nil {
			app.logger.Error(ctx, "tracer shutdown error", "error", err)
		}
	}
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			app.logger.Error(ctx, "close error", "error", err)
		}
	}
	app.closers = nil
}
