// Package config provides configuration types for the ABAC decision
// engine: the HTTP/admin listener, audit file persistence, optional
// SQLite durability for attributes and policies, and an optional
// bootstrap seed file.
package config

import "github.com/spf13/viper"

// Config is the top-level configuration for the engine.
type Config struct {
	// Server configures the admin/decision HTTP listener.
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Admin is the hex-encoded (0x-prefixed or bare) 20-byte identifier
	// allowed to write object attributes, author policies, and install
	// an environment verifier.
	Admin string `yaml:"admin" mapstructure:"admin" validate:"required,abac_identifier"`

	// AuditFile configures the file-based audit persistence.
	AuditFile AuditFileConfig `yaml:"audit_file" mapstructure:"audit_file"`

	// Durability optionally backs attributes and policies with a durable
	// SQLite store instead of the in-memory default.
	Durability DurabilityConfig `yaml:"durability" mapstructure:"durability"`

	// Bootstrap optionally seeds attributes and policies at startup.
	Bootstrap BootstrapConfig `yaml:"bootstrap" mapstructure:"bootstrap"`

	// Metrics configures the Prometheus metrics endpoint.
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`

	// Tracing configures the OpenTelemetry trace exporter.
	Tracing TracingConfig `yaml:"tracing" mapstructure:"tracing"`

	// DevMode enables development conveniences: verbose logging and, when
	// none is configured, a default admin identifier and audit directory.
	// It seeds no policies.
	DevMode bool `yaml:"dev_mode" mapstructure:"dev_mode"`
}

// ServerConfig configures the HTTP listener that exposes the decision and
// administration API.
type ServerConfig struct {
	// HTTPAddr is the address to listen on. Defaults to "127.0.0.1:8080".
	HTTPAddr string `yaml:"http_addr" mapstructure:"http_addr" validate:"omitempty,hostname_port"`

	// LogLevel sets the minimum log level: debug, info, warn, or error.
	// Defaults to "info". DevMode=true overrides to "debug".
	LogLevel string `yaml:"log_level" mapstructure:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
}

// AuditFileConfig configures the file-based audit persistence: one JSON
// Lines file per UTC day, no in-day size rotation (decision and
// administrative-mutation volume does not warrant it).
type AuditFileConfig struct {
	// Dir is the directory where audit files are stored. Defaults to
	// "./audit" if empty.
	Dir string `yaml:"dir" mapstructure:"dir"`
	// RetentionDays is the number of days to keep audit files. Defaults to 7.
	RetentionDays int `yaml:"retention_days" mapstructure:"retention_days" validate:"omitempty,min=1"`
	// CacheSize is the number of recent audit records Recent can serve
	// from memory. Defaults to 256.
	CacheSize int `yaml:"cache_size" mapstructure:"cache_size" validate:"omitempty,min=1"`
}

// DurabilityConfig configures the optional SQLite-backed attribute and
// policy stores. When SQLitePath is empty, the engine uses the in-memory
// adapters.
type DurabilityConfig struct {
	// SQLitePath is the filesystem path to the SQLite database file. An
	// empty path disables durability and uses in-memory stores.
	SQLitePath string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// BootstrapConfig optionally points at a YAML seed file describing
// initial subjects, objects, and policies.
type BootstrapConfig struct {
	// SeedFile is the path to a bootstrap seed YAML file. Empty disables
	// seeding.
	SeedFile string `yaml:"seed_file" mapstructure:"seed_file"`
}

// MetricsConfig configures the Prometheus metrics endpoint.
type MetricsConfig struct {
	// Enabled controls whether the metrics endpoint is served. Defaults
	// to true.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Addr is the address the metrics endpoint listens on, separate from
	// the decision API. Defaults to "127.0.0.1:9090".
	Addr string `yaml:"addr" mapstructure:"addr" validate:"omitempty,hostname_port"`
}

// TracingConfig configures the OpenTelemetry trace exporter.
type TracingConfig struct {
	// Enabled controls whether request_access spans are exported.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Exporter selects the trace exporter: "stdout" or "none". Defaults
	// to "stdout" when Enabled.
	Exporter string `yaml:"exporter" mapstructure:"exporter" validate:"omitempty,oneof=stdout none"`
}

// SetDevDefaults applies permissive defaults for development mode. Applied
// before validation so required fields are satisfied when a caller runs
// with only --dev set.
func (c *Config) SetDevDefaults() {
	if !c.DevMode {
		return
	}
	if c.Admin == "" {
		c.Admin = "0x00000000000000000000000000000000000000ad"
	}
	if c.AuditFile.Dir == "" {
		c.AuditFile.Dir = "./audit"
	}
}

// SetDefaults applies sensible default values to the configuration.
func (c *Config) SetDefaults() {
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = "127.0.0.1:8080"
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}

	if c.AuditFile.Dir == "" {
		c.AuditFile.Dir = "./audit"
	}
	if c.AuditFile.RetentionDays == 0 {
		c.AuditFile.RetentionDays = 7
	}
	if c.AuditFile.CacheSize == 0 {
		c.AuditFile.CacheSize = 256
	}

	// Metrics are on by default; only apply when the user hasn't set it
	// explicitly in YAML/env, mirroring viper.IsSet's role for booleans
	// that default to true.
	if !viper.IsSet("metrics.enabled") {
		c.Metrics.Enabled = true
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = "127.0.0.1:9090"
	}

	if c.Tracing.Enabled && c.Tracing.Exporter == "" {
		c.Tracing.Exporter = "stdout"
	}
}
