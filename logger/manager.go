// Package logger provides the logging manager: one zap logger per module
// (radiator, collector, www, …), with optional rotating file output.
package logger

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Manager manages the per-module logger instances
type Manager struct {
	baseConfig Config
	loggers    map[string]*ModuleLogger
	writers    []*lumberjack.Logger // file writers, closed on CloseAll
	mu         sync.RWMutex
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// NewManager creates an independent Manager instance.
// Zero-valued config fields are filled with default values.
func NewManager(cfg Config) *Manager {
	cfg.ApplyDefaults()
	return &Manager{
		baseConfig: cfg,
		loggers:    make(map[string]*ModuleLogger),
	}
}

// InitManager initializes the global logger manager (only once)
func InitManager(cfg Config) {
	managerOnce.Do(func() {
		globalManager = NewManager(cfg)
	})
}

// GetLogger returns the logger for a module, creating it on first use.
// Thread-safe; the returned logger carries a "module" field.
func (m *Manager) GetLogger(module string) *ModuleLogger {
	m.mu.RLock()
	if l, exists := m.loggers[module]; exists {
		m.mu.RUnlock()
		return l
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// double check (avoid concurrent creation)
	if l, exists := m.loggers[module]; exists {
		return l
	}

	base := m.createLogger(module).
		With(zap.String("module", module)).
		WithOptions(zap.AddCallerSkip(1))
	l := &ModuleLogger{base: base, module: module}
	m.loggers[module] = l
	return l
}

// createLogger builds the underlying zap.Logger for one module
func (m *Manager) createLogger(module string) *zap.Logger {
	encoder := createEncoder(m.baseConfig.Encoding)
	level := ParseLevel(m.baseConfig.Level)

	var cores []zapcore.Core
	if m.baseConfig.EnableConsole {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level))
	}
	if m.baseConfig.EnableFile {
		writer, lumber := m.createFileWriter(m.baseConfig.logFilePath(module))
		m.writers = append(m.writers, lumber)
		cores = append(cores, zapcore.NewCore(encoder, writer, level))
	}

	var opts []zap.Option
	if m.baseConfig.EnableCaller {
		opts = append(opts, zap.AddCaller())
	}
	return zap.New(zapcore.NewTee(cores...), opts...)
}

// CloseAll flushes buffers and closes all file handles
// (call on application exit)
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, l := range m.loggers {
		_ = l.base.Sync()
	}
	for _, w := range m.writers {
		_ = w.Close()
	}
	m.loggers = make(map[string]*ModuleLogger)
	m.writers = nil
}

func createEncoder(encoding string) zapcore.Encoder {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		MessageKey:     "msg",
		CallerKey:      "caller",
		StacktraceKey:  "stack",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if encoding == "console" {
		return zapcore.NewConsoleEncoder(encoderConfig)
	}
	return zapcore.NewJSONEncoder(encoderConfig)
}

// createFileWriter creates a rotating file writer
func (m *Manager) createFileWriter(filename string) (zapcore.WriteSyncer, *lumberjack.Logger) {
	_ = os.MkdirAll(filepath.Dir(filename), 0o755)

	lumber := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    m.baseConfig.MaxSize,
		MaxBackups: m.baseConfig.MaxBackups,
		MaxAge:     m.baseConfig.MaxAge,
		Compress:   m.baseConfig.Compress,
		LocalTime:  true,
	}
	return zapcore.AddSync(lumber), lumber
}

// ============================================
// Package-level convenience functions (global manager)
// ============================================

// GetLogger returns the global manager's logger for a module
func GetLogger(module string) *ModuleLogger {
	if globalManager == nil {
		InitManager(DefaultConfig())
	}
	return globalManager.GetLogger(module)
}

// CloseAll closes all loggers of the global manager
func CloseAll() {
	if globalManager == nil {
		return
	}
	globalManager.CloseAll()
}

// Debug logs a debug message for a module
func Debug(module string, msg string, fields ...zap.Field) {
	GetLogger(module).Debug(msg, fields...)
}

// Info logs an info message for a module
func Info(module string, msg string, fields ...zap.Field) {
	GetLogger(module).Info(msg, fields...)
}

// Warn logs a warning for a module
func Warn(module string, msg string, fields ...zap.Field) {
	GetLogger(module).Warn(msg, fields...)
}

// Error logs an error for a module
func Error(module string, msg string, fields ...zap.Field) {
	GetLogger(module).Error(msg, fields...)
}
