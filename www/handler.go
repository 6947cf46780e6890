package www

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/KOMKZ/radiator-exporter/logger"
	"github.com/KOMKZ/radiator-exporter/openmetrics"
)

// metricsHandler runs one scrape per request. A failed scrape never leaks
// a partial document: the client gets a plain 500 instead.
func metricsHandler(collector Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := collector.Collect(c.Request.Context())
		if err != nil {
			logger.Error("www", "scrape failed", zap.Error(err))
			c.String(http.StatusInternalServerError, "internal server error")
			return
		}
		c.Data(http.StatusOK, openmetrics.MimeType, doc)
	}
}

// methodNotAllowedHandler rejects non-GET requests up front; the backend
// connection must not be touched for them.
func methodNotAllowedHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Allow", http.MethodGet)
		c.String(http.StatusMethodNotAllowed, "method not allowed")
	}
}

// recovery catches handler panics, logs the stack, and answers with the
// same opaque 500 as any other scrape failure.
func recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("www", "panic recovered",
					zap.Any("error", err),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.String("client_ip", c.ClientIP()),
					zap.String("stack", string(debug.Stack())),
				)
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}

// requestLog logs one line per request
func requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("www", "request handled",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
