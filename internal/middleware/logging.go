package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/picabord/website/shared/metrics"
	"github.com/rs/zerolog"
)

// LoggingMiddleware logs one line per request and feeds the request metrics.
// Routes are reported by their gin pattern so path parameters do not blow up
// label cardinality.
func LoggingMiddleware(logger zerolog.Logger, recorder metrics.Recorder) gin.HandlerFunc {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		recorder.ObserveRequest(c.Request.Method, route, status, duration)

		evt := logger.Info()
		switch {
		case status >= 500:
			evt = logger.Error()
		case status >= 400:
			evt = logger.Warn()
		}
		if len(c.Errors) > 0 {
			evt = evt.Str("errors", c.Errors.String())
		}
		evt.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("route", route).
			Int("status", status).
			Dur("duration", duration).
			Str("remote_addr", c.ClientIP()).
			Msg("HTTP request")
	}
}
