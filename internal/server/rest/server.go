// Package rest exposes the issue service as a JSON API over gin.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/qatrack/internal/issue"
	"github.com/dmitrijs2005/qatrack/internal/logging"
	"github.com/dmitrijs2005/qatrack/internal/metrics"
	"github.com/dmitrijs2005/qatrack/internal/server/ratelimit"
	"github.com/gin-gonic/gin"
)

type IssueService interface {
	List(ctx context.Context) ([]issue.Issue, error)
	Get(ctx context.Context, id string) (issue.Issue, error)
	Create(ctx context.Context, in issue.Input) (issue.Issue, error)
	Update(ctx context.Context, id string, in issue.Input) (issue.Issue, error)
	Delete(ctx context.Context, id string) error
}

// SubmitLimit caps POST and PUT requests per client IP.
type SubmitLimit struct {
	Limiter ratelimit.Limiter
	Limit   int
	Window  time.Duration
}

type Server struct {
	address         string
	issues          IssueService
	logger          logging.Logger
	metrics         *metrics.Metrics
	submit          SubmitLimit
	shutdownTimeout time.Duration
	nowFn           func() time.Time
	engine          *gin.Engine
}

func NewServer(address string, l logging.Logger, svc IssueService, m *metrics.Metrics, submit SubmitLimit, shutdownTimeout time.Duration) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		address:         address,
		issues:          svc,
		logger:          l.With("module", "rest_server"),
		metrics:         m,
		submit:          submit,
		shutdownTimeout: shutdownTimeout,
		nowFn:           time.Now,
		engine:          gin.New(),
	}

	s.engine.Use(gin.Recovery(), s.observe())
	s.registerRoutes()

	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": issue.FormatTime(s.nowFn())})
	})
	s.engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := s.engine.Group("/api")
	api.GET("/issues", s.handleList)
	api.GET("/issues/export", s.handleExport)
	api.GET("/issues/:id", s.handleGet)
	api.POST("/issues", s.rateLimit("create"), s.handleCreate)
	api.PUT("/issues/:id", s.rateLimit("update"), s.handleUpdate)
	api.DELETE("/issues/:id", s.handleDelete)
}

// Run serves until ctx is cancelled and then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{Handler: s.engine, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
