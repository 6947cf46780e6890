package logger

import (
	"strings"
)

// GinLogWriter adapts Gin's text log output onto the logging manager
// (implements io.Writer).
type GinLogWriter struct {
	module string
}

// NewGinLogWriter creates a writer that files Gin's own log lines under
// the given module.
func NewGinLogWriter(module string) *GinLogWriter {
	return &GinLogWriter{module: module}
}

// Write classifies Gin's text lines by their markers and forwards them as
// structured log entries.
func (w *GinLogWriter) Write(p []byte) (n int, err error) {
	msg := strings.TrimSpace(string(p))
	if msg == "" {
		return len(p), nil
	}

	switch {
	case strings.Contains(msg, "[GIN-debug]"):
		Debug(w.module, msg)
	case strings.Contains(msg, "[Recovery]") || strings.Contains(msg, "panic recovered"):
		Error(w.module, msg)
	default:
		Info(w.module, msg)
	}

	return len(p), nil
}
