package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/qatrack/internal/client/client"
	"github.com/dmitrijs2005/qatrack/internal/client/config"
	"github.com/dmitrijs2005/qatrack/internal/client/services"
	"github.com/dmitrijs2005/qatrack/internal/client/syncer"
	"github.com/dmitrijs2005/qatrack/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config  *config.Config
	service services.IssueService
	syncer  *syncer.Syncer
	cache   *client.Cache
	logger  logging.Logger
	reader  *bufio.Reader
	out     io.Writer
	nowFn   func() time.Time

	mu   sync.Mutex
	mode Mode
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stderr, logging.ParseLevel(c.LogLevel))

	apiClient := client.NewHTTPClient(c.ServerURL, c.RequestTimeout)
	sy := syncer.New(apiClient, c.SyncInterval, c.RequestTimeout, logger)

	var cache *client.Cache
	if c.CachePath != "" {
		var err error
		cache, err = client.OpenCache(ctx, c.CachePath)
		if err != nil {
			return nil, fmt.Errorf("open cache %s: %w", c.CachePath, err)
		}
		sy.SetCache(cache)
	}

	a := &App{
		config:  c,
		service: services.NewIssueService(apiClient, sy, c.ReporterName, c.ExportDir),
		syncer:  sy,
		cache:   cache,
		logger:  logger,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		nowFn:   time.Now,
	}
	sy.OnChange(func(syncer.Snapshot) { a.setMode(ModeOnline) })

	return a, nil
}

// Run starts background syncing and the connectivity watcher, then blocks in
// the REPL until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	if err := a.syncer.Start(ctx); err != nil {
		return err
	}
	defer a.syncer.Stop()

	watchCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.StartOnlineStatusWatcher(watchCtx, a.config.SyncInterval)
	}()

	printlnFn("QA issue dashboard (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)

	cancel()
	wg.Wait()
	return nil
}

func (a *App) close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn(context.Background(), "failed to close cache", "error", err)
		}
	}
}

func (a *App) currentMode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		printlnFn(warnColor(fmt.Sprintf("Switched to %s mode", mode)))
	}
}

// StartOnlineStatusWatcher pings the server every interval and flips the
// dashboard between online and offline mode.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = syncer.DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
			err := a.service.Ping(pctx)
			cancel()

			if err != nil {
				if ctx.Err() != nil {
					return
				}
				a.logger.Debug(ctx, "ping failed", "error", err)
				a.setMode(ModeOffline)
			} else {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}

// getStatus renders the prompt prefix, e.g. "(online, 12 issues, synced 3s ago)".
func (a *App) getStatus() string {
	snap := a.service.View()

	mode := a.currentMode()
	if mode == "" {
		mode = "connecting"
	}

	return fmt.Sprintf("(%s, %d issues, %s)", mode, len(snap.Issues), sinceText(snap.LastSync, a.nowFn()))
}
