package config

import (
	"strings"
	"testing"
)

func minimalValidConfig() *Config {
	return &Config{
		Admin: "0x00000000000000000000000000000000000000ad",
		Server: ServerConfig{
			HTTPAddr: "127.0.0.1:8080",
			LogLevel: "info",
		},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
}

func TestValidate_MissingAdmin(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	cfg.Admin = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "Admin") {
		t.Errorf("error = %q, want to contain 'Admin'", err.Error())
	}
}

func TestValidate_MalformedAdminIdentifier(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	cfg.Admin = "not-hex"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "Admin") {
		t.Errorf("error = %q, want to contain 'Admin'", err.Error())
	}
}

func TestValidate_AdminIdentifierWrongWidth(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	cfg.Admin = "0xabcd"

	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() expected error for short identifier, got nil")
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	cfg.Server.LogLevel = "verbose"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "LogLevel") {
		t.Errorf("error = %q, want to contain 'LogLevel'", err.Error())
	}
}

func TestValidate_InvalidHTTPAddr(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	cfg.Server.HTTPAddr = "not-a-host-port"

	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() expected error for malformed http_addr, got nil")
	}
}

func TestValidate_EmptyOptionalSectionsAreValid(t *testing.T) {
	t.Parallel()

	cfg := minimalValidConfig()
	cfg.AuditFile = AuditFileConfig{}
	cfg.Durability = DurabilityConfig{}
	cfg.Bootstrap = BootstrapConfig{}
	cfg.Metrics = MetricsConfig{}
	cfg.Tracing = TracingConfig{}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() with empty optional sections unexpected error: %v", err)
	}
}
