package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// observe logs and counts every request by its route pattern.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)

		s.metrics.ObserveHTTP(c.Request.Method, path, status, elapsed)

		ctx := c.Request.Context()
		if status >= http.StatusInternalServerError {
			s.logger.Warn(ctx, "request", "method", c.Request.Method, "path", path, "status", status, "latency", elapsed)
			return
		}
		s.logger.Debug(ctx, "request", "method", c.Request.Method, "path", path, "status", status, "latency", elapsed)
	}
}

func (s *Server) rateLimit(route string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.submit.Limiter == nil || s.submit.Limit <= 0 {
			c.Next()
			return
		}
		if !s.submit.Limiter.Allow(route+":"+c.ClientIP(), s.submit.Limit, s.submit.Window) {
			s.metrics.RateLimited(route)
			writeError(c, http.StatusTooManyRequests, "Too many submissions, try again later")
			c.Abort()
			return
		}
		c.Next()
	}
}
