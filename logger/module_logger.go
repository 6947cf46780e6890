package logger

import "go.uber.org/zap"

// ModuleLogger is a zap logger bound to one module name.
// Obtained via Manager.GetLogger / logger.GetLogger.
type ModuleLogger struct {
	base   *zap.Logger
	module string
}

// Module returns the module name this logger is bound to
func (l *ModuleLogger) Module() string {
	return l.module
}

// Debug logs a debug message
func (l *ModuleLogger) Debug(msg string, fields ...zap.Field) {
	l.base.Debug(msg, fields...)
}

// Info logs an info message
func (l *ModuleLogger) Info(msg string, fields ...zap.Field) {
	l.base.Info(msg, fields...)
}

// Warn logs a warning
func (l *ModuleLogger) Warn(msg string, fields ...zap.Field) {
	l.base.Warn(msg, fields...)
}

// Error logs an error
func (l *ModuleLogger) Error(msg string, fields ...zap.Field) {
	l.base.Error(msg, fields...)
}

// With returns a logger with preset fields (chainable)
func (l *ModuleLogger) With(fields ...zap.Field) *ModuleLogger {
	return &ModuleLogger{
		base:   l.base.With(fields...),
		module: l.module,
	}
}

// GetZapLogger returns the underlying *zap.Logger
// (for third-party library integration)
func (l *ModuleLogger) GetZapLogger() *zap.Logger {
	return l.base
}
