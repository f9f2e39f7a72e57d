package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/abac-gate/engine/internal/adapter/inbound/httpapi"
	outaudit "github.com/abac-gate/engine/internal/adapter/outbound/audit"
	"github.com/abac-gate/engine/internal/adapter/outbound/memory"
	"github.com/abac-gate/engine/internal/adapter/outbound/sqlite"
	"github.com/abac-gate/engine/internal/config"
	"github.com/abac-gate/engine/internal/domain/attribute"
	"github.com/abac-gate/engine/internal/domain/policy"
	"github.com/abac-gate/engine/internal/service"
	"github.com/abac-gate/engine/internal/tracing"
)

var devMode bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the decision API and seed bootstrap state",
	Long: `Start the ABAC decision engine's HTTP decision API.

Boots the attribute registry, policy catalog, evaluator, and decision
orchestrator behind an HTTP listener, optionally seeds a bootstrap set of
attributes and policies from a YAML file, and exposes Prometheus metrics
and OpenTelemetry traces per the config file.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&devMode, "dev", false, "Enable development mode (verbose logging, relaxed validation)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigRaw()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if devMode {
		cfg.DevMode = true
	}
	cfg.SetDevDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	logLevel := parseLogLevel(cfg.Server.LogLevel)
	if cfg.DevMode {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	admin, err := attribute.IdentifierFromHex(cfg.Admin)
	if err != nil {
		return fmt.Errorf("invalid admin identifier: %w", err)
	}

	attrStore, catalogStore, closeStores, err := buildStores(cfg.Durability)
	if err != nil {
		return fmt.Errorf("failed to build stores: %w", err)
	}
	defer closeStores()

	auditStore, err := outaudit.NewFileAuditStore(outaudit.AuditFileConfig{
		Dir:           cfg.AuditFile.Dir,
		RetentionDays: cfg.AuditFile.RetentionDays,
		CacheSize:     cfg.AuditFile.CacheSize,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to open audit store: %w", err)
	}

	registry := service.NewRegistryService(attrStore, auditStore, admin, logger)
	catalog := service.NewCatalogService(catalogStore, auditStore, admin, logger)
	evaluator := service.NewEvaluatorService(registry, catalog)
	orchestrator, err := service.NewAccessService(catalog, evaluator, auditStore, admin, logger)
	if err != nil {
		return fmt.Errorf("failed to build orchestrator: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), gracefulSignals()...)
	defer stop()

	if cfg.Bootstrap.SeedFile != "" {
		if err := applySeed(ctx, cfg.Bootstrap.SeedFile, admin, registry, catalog, logger); err != nil {
			return fmt.Errorf("failed to apply bootstrap seed: %w", err)
		}
	}

	if err := tracing.Initialize(tracing.Config{Enabled: cfg.Tracing.Enabled, Exporter: cfg.Tracing.Exporter}); err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("GET /metrics", promhttp.Handler())
		metricsServer = &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}
		go func() {
			logger.Info("metrics listening", "addr", cfg.Metrics.Addr)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "error", err)
			}
		}()
	}

	handler := httpapi.NewHandler(orchestrator, registry, logger)
	apiServer := &http.Server{Addr: cfg.Server.HTTPAddr, Handler: handler}
	go func() {
		logger.Info("decision API listening", "addr", cfg.Server.HTTPAddr)
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("decision API server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = apiServer.Shutdown(shutdownCtx)
	if metricsServer != nil {
		_ = metricsServer.Shutdown(shutdownCtx)
	}
	_ = auditStore.Flush(shutdownCtx)
	return auditStore.Close()
}

// buildStores selects the in-memory or SQLite-backed attribute/catalog
// stores depending on whether durability is configured, returning a
// close function that releases any durable resources.
func buildStores(cfg config.DurabilityConfig) (attribute.Store, policy.CatalogStore, func(), error) {
	if cfg.SQLitePath == "" {
		return memory.NewAttributeStore(), memory.NewCatalogStore(), func() {}, nil
	}
	store, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		return nil, nil, nil, err
	}
	return sqlite.NewAttributeStore(store), sqlite.NewCatalogStore(store), func() { _ = store.Close() }, nil
}

// applySeed loads a bootstrap seed file and writes its subjects, objects,
// and policies through the authorized Registry/Catalog ports, using the
// configured admin as the caller.
func applySeed(ctx context.Context, path string, admin attribute.Identifier, registry attribute.Registry, catalog policy.Catalog, logger *slog.Logger) error {
	seed, err := config.LoadSeed(path)
	if err != nil {
		return err
	}

	for _, p := range seed.Subjects {
		id, err := attribute.IdentifierFromHex(p.ID)
		if err != nil {
			return fmt.Errorf("seed subject %s: %w", p.ID, err)
		}
		if err := applyPrincipal(ctx, registry.SetSubjectAttribute, admin, id, p.Attributes); err != nil {
			return fmt.Errorf("seed subject %s: %w", p.ID, err)
		}
	}
	for _, p := range seed.Objects {
		id, err := attribute.IdentifierFromHex(p.ID)
		if err != nil {
			return fmt.Errorf("seed object %s: %w", p.ID, err)
		}
		if err := applyPrincipal(ctx, registry.SetObjectAttribute, admin, id, p.Attributes); err != nil {
			return fmt.Errorf("seed object %s: %w", p.ID, err)
		}
	}
	for _, sp := range seed.Policies {
		resource, err := attribute.IdentifierFromHex(sp.Resource)
		if err != nil {
			return fmt.Errorf("seed policy resource %s: %w", sp.Resource, err)
		}
		action, err := config.ParseAction(sp.Action)
		if err != nil {
			return err
		}
		conditions, err := config.ResolvePolicyConditions(sp)
		if err != nil {
			return err
		}
		id, err := catalog.CreatePolicy(ctx, admin, resource, action, conditions)
		if err != nil {
			return fmt.Errorf("seed policy %s/%s: %w", sp.Resource, sp.Action, err)
		}
		logger.Info("seeded policy", "id", id, "resource", sp.Resource, "action", sp.Action)
	}
	return nil
}

func applyPrincipal(ctx context.Context, set func(ctx context.Context, caller, id attribute.Identifier, key attribute.Key, value attribute.Value) error, admin, id attribute.Identifier, attrs map[string]string) error {
	for name, value := range attrs {
		key := attribute.HashKey(name)
		if err := set(ctx, admin, id, key, config.ParseAttributeValue(value)); err != nil {
			return err
		}
	}
	return nil
}

// parseLogLevel converts a string log level to slog.Level. Returns
// slog.LevelInfo for unrecognized values.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
