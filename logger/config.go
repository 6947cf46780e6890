package logger

import (
	"path/filepath"

	"go.uber.org/zap/zapcore"
)

// Config global logging configuration (shared by all modules)
type Config struct {
	Level         string `mapstructure:"level"`
	Encoding      string `mapstructure:"encoding"` // json or console
	EnableConsole bool   `mapstructure:"enable_console"`
	EnableFile    bool   `mapstructure:"enable_file"`
	BaseLogDir    string `mapstructure:"base_log_dir"`

	// File rotation configuration
	MaxSize    int  `mapstructure:"max_size"` // MB per file
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"` // days
	Compress   bool `mapstructure:"compress"`

	EnableCaller bool `mapstructure:"enable_caller"`
}

// DefaultConfig returns the default logging configuration
func DefaultConfig() Config {
	return Config{
		Level:         "info",
		Encoding:      "json",
		EnableConsole: true,
		EnableFile:    false,
		BaseLogDir:    "logs",
		MaxSize:       100,
		MaxBackups:    3,
		MaxAge:        28,
		Compress:      true,
		EnableCaller:  true,
	}
}

// ApplyDefaults fills zero-valued fields with default values
// (in-place modification)
func (c *Config) ApplyDefaults() {
	defaults := DefaultConfig()

	if c.Level == "" {
		c.Level = defaults.Level
	}
	if c.Encoding == "" {
		c.Encoding = defaults.Encoding
	}
	if c.BaseLogDir == "" {
		c.BaseLogDir = defaults.BaseLogDir
	}
	if c.MaxSize == 0 {
		c.MaxSize = defaults.MaxSize
	}
	if c.MaxBackups == 0 {
		c.MaxBackups = defaults.MaxBackups
	}
	if c.MaxAge == 0 {
		c.MaxAge = defaults.MaxAge
	}
	if !c.EnableConsole && !c.EnableFile {
		c.EnableConsole = true
	}
}

// logFilePath returns the log file path for a module
func (c *Config) logFilePath(module string) string {
	return filepath.Join(c.BaseLogDir, module+".log")
}

// ParseLevel converts a level string to a zapcore level (default info)
func ParseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
