// Package www serves the scrape endpoint over HTTP.
package www

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/KOMKZ/radiator-exporter/config"
	"github.com/KOMKZ/radiator-exporter/logger"
)

// Collector produces one scrape document per call.
type Collector interface {
	Collect(ctx context.Context) ([]byte, error)
}

// Server wraps the HTTP server around a Gin engine.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	addr       string
}

// NewServer builds the scrape server. GET /metrics is the canonical
// endpoint and GET / an alias; any other method gets 405 with an Allow
// header before the backend is ever touched.
func NewServer(cfg config.WWWConfig, collector Collector) *Server {
	// Route Gin's own log output through the logging manager
	gin.DefaultWriter = logger.NewGinLogWriter("www")
	gin.DefaultErrorWriter = logger.NewGinLogWriter("www")
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	engine.Use(recovery())
	engine.Use(requestLog())

	engine.NoMethod(methodNotAllowedHandler())
	engine.NoRoute(func(c *gin.Context) {
		// Non-GET first: the method is wrong no matter the path.
		if c.Request.Method != http.MethodGet {
			methodNotAllowedHandler()(c)
			return
		}
		c.String(http.StatusNotFound, "not found")
	})

	handler := metricsHandler(collector)
	engine.GET("/metrics", handler)
	engine.GET("/", handler)

	return &Server{
		engine: engine,
		addr:   net.JoinHostPort(cfg.BindAddress, strconv.Itoa(cfg.Port)),
	}
}

// Start brings the server up without blocking; it waits briefly to catch
// immediate bind failures.
func (s *Server) Start() error {
	if err := s.checkPortAvailable(); err != nil {
		return fmt.Errorf("address %s not available: %w", s.addr, err)
	}

	s.httpServer = &http.Server{
		Addr:    s.addr,
		Handler: s.engine,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Debug("www", "🚀 HTTP server starting", zap.String("addr", s.addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// 50ms is enough to surface a port binding error
	select {
	case err := <-errChan:
		logger.Error("www", "❌ HTTP server start failed", zap.Error(err))
		return fmt.Errorf("start HTTP server: %w", err)
	case <-time.After(50 * time.Millisecond):
		logger.Info("www", "✅ HTTP server started", zap.String("addr", s.addr))
		return nil
	}
}

func (s *Server) checkPortAvailable() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	ln.Close()
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	logger.Debug("www", "shutting down HTTP server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown HTTP server: %w", err)
	}
	logger.Debug("www", "✅ HTTP server closed")
	return nil
}

// ShutdownWithTimeout is Shutdown bounded by a fresh deadline.
func (s *Server) ShutdownWithTimeout(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.Shutdown(ctx)
}
