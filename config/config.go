// Package config defines the exporter configuration model and its loader.
// The configuration is loaded once at startup, validated, and treated as
// immutable for the lifetime of the process.
package config

import (
	"time"

	"github.com/KOMKZ/radiator-exporter/openmetrics"
)

// Config is the top-level exporter configuration
type Config struct {
	WWW              WWWConfig               `mapstructure:"www"`
	Radiator         RadiatorConfig          `mapstructure:"radiator"`
	Logger           LoggerConfig            `mapstructure:"logger"`
	Metrics          []MetricConfig          `mapstructure:"metrics"`
	PerObjectMetrics []PerObjectMetricConfig `mapstructure:"per_object_metrics"`
}

// WWWConfig configures the scrape HTTP endpoint
type WWWConfig struct {
	BindAddress string `mapstructure:"bind_address"` // default "::"
	Port        int    `mapstructure:"port"`         // default 10014
}

// RadiatorConfig configures the management-port connection
type RadiatorConfig struct {
	Target   string `mapstructure:"target"` // default "127.0.0.1"
	MgmtPort int    `mapstructure:"mgmt_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`

	// CommandTimeout bounds one command/response exchange. On expiry the
	// connection is torn down so that a late response cannot be
	// misattributed to a later command. Unset means 10s; a negative value
	// disables the timeout.
	CommandTimeout time.Duration `mapstructure:"command_timeout"`
}

// LoggerConfig configures the logging manager
type LoggerConfig struct {
	Level         string `mapstructure:"level"`    // default "info"
	Encoding      string `mapstructure:"encoding"` // json or console, default "json"
	EnableConsole bool   `mapstructure:"enable_console"`
	EnableFile    bool   `mapstructure:"enable_file"`
	BaseLogDir    string `mapstructure:"base_log_dir"` // default "logs"
	MaxSize       int    `mapstructure:"max_size"`     // MB per file
	MaxBackups    int    `mapstructure:"max_backups"`
	MaxAge        int    `mapstructure:"max_age"` // days
	Compress      bool   `mapstructure:"compress"`
}

// MetricConfig declares one exported metric and the backend statistics
// feeding it
type MetricConfig struct {
	Metric  string         `mapstructure:"metric"`
	Kind    string         `mapstructure:"kind"` // counter or gauge
	Help    string         `mapstructure:"help"`
	Unit    string         `mapstructure:"unit"`
	Samples []SampleConfig `mapstructure:"samples"`
}

// MetricKind maps the configured kind onto the registry's kind
func (m *MetricConfig) MetricKind() openmetrics.MetricKind {
	return openmetrics.MetricKind(m.Kind)
}

// SampleConfig maps one backend statistic onto a sample with literal labels
type SampleConfig struct {
	Labels    map[string]string `mapstructure:"labels"`
	Statistic string            `mapstructure:"statistic"`
}

// PerObjectMetricConfig declares metrics exported once per enumerated
// object of one backend object kind (e.g. every Port)
type PerObjectMetricConfig struct {
	Kind            string         `mapstructure:"kind"`
	IdentifierLabel string         `mapstructure:"identifier_label"`
	Metrics         []MetricConfig `mapstructure:"metrics"`
}

// ApplyDefaults fills zero-valued fields with default values
// (in-place modification)
func (c *Config) ApplyDefaults() {
	if c.WWW.BindAddress == "" {
		c.WWW.BindAddress = "::"
	}
	if c.WWW.Port == 0 {
		c.WWW.Port = 10014
	}
	if c.Radiator.Target == "" {
		c.Radiator.Target = "127.0.0.1"
	}
	if c.Radiator.CommandTimeout == 0 {
		c.Radiator.CommandTimeout = 10 * time.Second
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Logger.Encoding == "" {
		c.Logger.Encoding = "json"
	}
	if c.Logger.BaseLogDir == "" {
		c.Logger.BaseLogDir = "logs"
	}
	if c.Logger.MaxSize == 0 {
		c.Logger.MaxSize = 100
	}
	if c.Logger.MaxBackups == 0 {
		c.Logger.MaxBackups = 3
	}
	if c.Logger.MaxAge == 0 {
		c.Logger.MaxAge = 28
	}
	if !c.Logger.EnableConsole && !c.Logger.EnableFile {
		c.Logger.EnableConsole = true
	}
}
