package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig_SetDefaults(t *testing.T) {
	t.Parallel()

	var cfg Config
	cfg.SetDefaults()

	if cfg.Server.HTTPAddr != "127.0.0.1:8080" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, "127.0.0.1:8080")
	}
	if cfg.Server.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.Server.LogLevel, "info")
	}
	if cfg.AuditFile.Dir != "./audit" {
		t.Errorf("AuditFile.Dir = %q, want %q", cfg.AuditFile.Dir, "./audit")
	}
	if cfg.AuditFile.RetentionDays != 7 {
		t.Errorf("RetentionDays = %d, want 7", cfg.AuditFile.RetentionDays)
	}
	if cfg.AuditFile.CacheSize != 256 {
		t.Errorf("CacheSize = %d, want 256", cfg.AuditFile.CacheSize)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should default to true")
	}
	if cfg.Metrics.Addr != "127.0.0.1:9090" {
		t.Errorf("Metrics.Addr = %q, want %q", cfg.Metrics.Addr, "127.0.0.1:9090")
	}
}

func TestConfig_SetDefaults_PreservesExistingValues(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Server:    ServerConfig{HTTPAddr: ":9090", LogLevel: "debug"},
		AuditFile: AuditFileConfig{Dir: "/var/log/abac", RetentionDays: 30},
	}
	cfg.SetDefaults()

	if cfg.Server.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr was overwritten: got %q", cfg.Server.HTTPAddr)
	}
	if cfg.Server.LogLevel != "debug" {
		t.Errorf("LogLevel was overwritten: got %q", cfg.Server.LogLevel)
	}
	if cfg.AuditFile.Dir != "/var/log/abac" {
		t.Errorf("AuditFile.Dir was overwritten: got %q", cfg.AuditFile.Dir)
	}
	if cfg.AuditFile.RetentionDays != 30 {
		t.Errorf("RetentionDays was overwritten: got %d", cfg.AuditFile.RetentionDays)
	}
}

func TestConfig_SetDevDefaults_NoopWhenDisabled(t *testing.T) {
	t.Parallel()

	var cfg Config
	cfg.SetDevDefaults()

	if cfg.Admin != "" {
		t.Errorf("Admin should remain empty when DevMode is false, got %q", cfg.Admin)
	}
	if cfg.AuditFile.Dir != "" {
		t.Errorf("AuditFile.Dir should remain empty when DevMode is false, got %q", cfg.AuditFile.Dir)
	}
}

func TestConfig_SetDevDefaults_SeedsAdminAndAuditDir(t *testing.T) {
	t.Parallel()

	cfg := Config{DevMode: true}
	cfg.SetDevDefaults()

	if cfg.Admin == "" {
		t.Error("expected a dev admin identifier to be set")
	}
	if cfg.AuditFile.Dir == "" {
		t.Error("expected a dev audit dir to be set")
	}
}

func TestFindConfigFileInPaths_EmptyDir(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	got := findConfigFileInPaths([]string{dir})
	if got != "" {
		t.Errorf("findConfigFileInPaths(empty dir) = %q, want empty", got)
	}
}

func TestFindConfigFileInPaths_MatchesYAML(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "abac-gate.yaml")
	_ = os.WriteFile(cfgPath, []byte("server:\n  http_addr: :9090\n"), 0644)

	got := findConfigFileInPaths([]string{dir})
	if got != cfgPath {
		t.Errorf("findConfigFileInPaths = %q, want %q", got, cfgPath)
	}
}

func TestFindConfigFileInPaths_MatchesYML(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "abac-gate.yml")
	_ = os.WriteFile(cfgPath, []byte("server:\n  http_addr: :9090\n"), 0644)

	got := findConfigFileInPaths([]string{dir})
	if got != cfgPath {
		t.Errorf("findConfigFileInPaths = %q, want %q", got, cfgPath)
	}
}

func TestFindConfigFileInPaths_IgnoresNoExtension(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	_ = os.WriteFile(filepath.Join(dir, "abac-gate"), []byte("\x7fELF binary"), 0755)

	got := findConfigFileInPaths([]string{dir})
	if got != "" {
		t.Errorf("findConfigFileInPaths matched binary = %q, want empty", got)
	}
}

func TestFindConfigFileInPaths_PrefersYAMLOverYML(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "abac-gate.yaml")
	ymlPath := filepath.Join(dir, "abac-gate.yml")
	_ = os.WriteFile(yamlPath, []byte("server:\n  http_addr: :8080\n"), 0644)
	_ = os.WriteFile(ymlPath, []byte("server:\n  http_addr: :9090\n"), 0644)

	got := findConfigFileInPaths([]string{dir})
	if got != yamlPath {
		t.Errorf("findConfigFileInPaths = %q, want %q (.yaml preferred)", got, yamlPath)
	}
}
