// Package application wires the exporter's components together and
// drives their lifecycle from startup to graceful shutdown.
package application

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/do/v2"
	"go.uber.org/zap"

	"github.com/KOMKZ/radiator-exporter/collector"
	"github.com/KOMKZ/radiator-exporter/config"
	"github.com/KOMKZ/radiator-exporter/logger"
	"github.com/KOMKZ/radiator-exporter/radiator"
	"github.com/KOMKZ/radiator-exporter/www"
)

// shutdownTimeout bounds the HTTP server drain during shutdown.
const shutdownTimeout = 10 * time.Second

// Application owns the component graph: config, logging, the management
// connection, the collector, and the HTTP server.
type Application struct {
	configPath string
	version    string

	cfg      *config.Config
	injector *do.RootScope

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates an application reading its configuration from configPath.
func New(configPath string) *Application {
	ctx, cancel := context.WithCancel(context.Background())
	return &Application{
		configPath: configPath,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// WithVersion sets the version string reported in the startup log.
func (a *Application) WithVersion(version string) *Application {
	a.version = version
	return a
}

// Run starts everything and blocks until a shutdown signal arrives.
func (a *Application) Run() error {
	if err := a.Setup(); err != nil {
		return fmt.Errorf("setup failed: %w", err)
	}

	if err := a.Start(); err != nil {
		a.gracefulShutdown()
		return err
	}

	a.WaitShutdown()
	return a.gracefulShutdown()
}

// Setup loads and validates the configuration, initializes logging, and
// registers all component providers.
func (a *Application) Setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger.InitManager(loggerConfig(cfg.Logger))

	injector := do.New()
	do.ProvideValue(injector, cfg)
	do.Provide(injector, provideClient)
	do.Provide(injector, provideCollector)
	do.Provide(injector, provideServer)
	a.injector = injector

	return nil
}

// Start connects to the management port and brings the HTTP server up.
// A failed initial connection is fatal: an exporter that cannot reach its
// backend at startup is misconfigured, not unlucky.
func (a *Application) Start() error {
	client := do.MustInvoke[*radiator.Client](a.injector)
	if err := client.Connect(a.ctx); err != nil {
		return fmt.Errorf("initial connection failed: %w", err)
	}

	server := do.MustInvoke[*www.Server](a.injector)
	if err := server.Start(); err != nil {
		return err
	}

	fields := []zap.Field{
		zap.String("target", a.cfg.Radiator.Target),
		zap.Int("mgmt_port", a.cfg.Radiator.MgmtPort),
		zap.Int("www_port", a.cfg.WWW.Port),
	}
	if a.version != "" {
		fields = append(fields, zap.String("version", a.version))
	}
	logger.Info("application", "✅ exporter started", fields...)
	return nil
}

// WaitShutdown blocks until SIGINT or SIGTERM. A second signal forces an
// immediate exit.
func (a *Application) WaitShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("application", "shutdown signal received",
			zap.String("signal", sig.String()))
		a.cancel()

		go func() {
			sig := <-quit
			logger.Warn("application", "⚠️  second signal received, forcing exit",
				zap.String("signal", sig.String()))
			os.Exit(1)
		}()
	case <-a.ctx.Done():
		logger.Info("application", "context cancelled, starting graceful shutdown")
	}
}

// Cancel triggers shutdown programmatically (used by tests).
func (a *Application) Cancel() {
	a.cancel()
}

// gracefulShutdown stops components in reverse start order: HTTP server
// first so no scrape is cut off mid-flight, then the management
// connection, then logging.
func (a *Application) gracefulShutdown() error {
	var firstErr error

	if a.injector != nil {
		if server, err := do.Invoke[*www.Server](a.injector); err == nil {
			if err := server.ShutdownWithTimeout(shutdownTimeout); err != nil {
				logger.Error("application", "HTTP server shutdown failed", zap.Error(err))
				firstErr = err
			}
		}
		if client, err := do.Invoke[*radiator.Client](a.injector); err == nil {
			if err := client.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		if err := a.injector.Shutdown(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	logger.Info("application", "✅ exporter stopped")
	logger.CloseAll()
	return firstErr
}

// ============================================
// providers
// ============================================

func provideClient(i do.Injector) (*radiator.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return radiator.NewClient(cfg.Radiator), nil
}

func provideCollector(i do.Injector) (*collector.Collector, error) {
	cfg := do.MustInvoke[*config.Config](i)
	client := do.MustInvoke[*radiator.Client](i)
	return collector.New(client, cfg), nil
}

func provideServer(i do.Injector) (*www.Server, error) {
	cfg := do.MustInvoke[*config.Config](i)
	col := do.MustInvoke[*collector.Collector](i)
	return www.NewServer(cfg.WWW, col), nil
}

// loggerConfig maps the exporter's logger section onto the logging
// manager's own config type.
func loggerConfig(lc config.LoggerConfig) logger.Config {
	return logger.Config{
		Level:         lc.Level,
		Encoding:      lc.Encoding,
		EnableConsole: lc.EnableConsole,
		EnableFile:    lc.EnableFile,
		BaseLogDir:    lc.BaseLogDir,
		MaxSize:       lc.MaxSize,
		MaxBackups:    lc.MaxBackups,
		MaxAge:        lc.MaxAge,
		Compress:      lc.Compress,
	}
}
