// Frauddetect - fraud detection dashboard core.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sourishdey2005/fraud--detection/internal/api"
	"github.com/sourishdey2005/fraud--detection/internal/bus"
	"github.com/sourishdey2005/fraud--detection/internal/cache"
	"github.com/sourishdey2005/fraud--detection/internal/domain"
	"github.com/sourishdey2005/fraud--detection/internal/ocr"
	"github.com/sourishdey2005/fraud--detection/internal/repository"
	"github.com/sourishdey2005/fraud--detection/internal/rules"
	"github.com/sourishdey2005/fraud--detection/internal/worker"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	// Initialize structured logger
	logLevel := slog.LevelInfo
	if os.Getenv("FRAUDDETECT_DEBUG") == "true" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("starting frauddetect",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)

	// Load configuration
	cfg := domain.DefaultConfig()

	// Check for distributed mode via environment
	if os.Getenv("FRAUDDETECT_MODE") == "distributed" {
		cfg = domain.DistributedConfig()
		slog.Info("running in distributed mode")
	}
	applyEnvOverrides(cfg)

	slog.Info("configuration loaded",
		"sessions", cfg.Sessions.Type,
		"repository", cfg.Repository.Driver,
		"eventbus", cfg.EventBus.Type,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		slog.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Initialize session store
	store, err := cache.New(cfg.Sessions)
	if err != nil {
		slog.Error("failed to initialize session store", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("session store initialized", "type", cfg.Sessions.Type)

	// Initialize audit repository
	repo, err := repository.New(cfg.Repository)
	if err != nil {
		slog.Error("failed to initialize repository", "error", err)
		os.Exit(1)
	}
	defer repo.Close()
	slog.Info("repository initialized", "driver", cfg.Repository.Driver)

	// Initialize event bus
	busImpl, err := bus.New(cfg.EventBus)
	if err != nil {
		slog.Error("failed to initialize event bus", "error", err)
		os.Exit(1)
	}
	defer busImpl.Close()
	slog.Info("event bus initialized", "type", cfg.EventBus.Type)

	// Initialize rule engine with the builtin rule set. Additional rules
	// can be loaded via POST /rules.
	engine, err := rules.NewEngine()
	if err != nil {
		slog.Error("failed to initialize rule engine", "error", err)
		os.Exit(1)
	}
	if err := engine.LoadRules(rules.Builtin()); err != nil {
		slog.Error("failed to load builtin rules", "error", err)
		os.Exit(1)
	}
	slog.Info("rule engine initialized", "rules_count", engine.RulesCount())

	// Initialize text extraction. Nil when no endpoint is configured; the
	// image-based verification endpoints report unavailable in that case.
	var extractor ocr.Extractor
	if httpExtractor := ocr.NewHTTPExtractor(cfg.OCR); httpExtractor != nil {
		extractor = httpExtractor
		slog.Info("text extraction initialized", "endpoint", cfg.OCR.Endpoint)
	}

	// Initialize audit worker
	auditWorker := worker.New(busImpl, repo)
	if err := auditWorker.Start(); err != nil {
		slog.Error("failed to start audit worker", "error", err)
		os.Exit(1)
	}
	slog.Info("audit worker started")

	// Initialize server
	srv := api.NewServer(cfg.Server, store, repo, busImpl, engine, extractor, cfg.Validation, Version)

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("frauddetect is ready",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	printBanner(cfg, Version)

	// Wait for shutdown signal
	<-ctx.Done()
	slog.Info("shutting down...")

	auditWorker.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	slog.Info("frauddetect shutdown complete")
}

// applyEnvOverrides applies environment variable overrides for the settings
// that differ most often between deployments.
func applyEnvOverrides(cfg *domain.Config) {
	if v := os.Getenv("FRAUDDETECT_REDIS_ADDR"); v != "" {
		cfg.Sessions.RedisAddr = v
	}
	if v := os.Getenv("FRAUDDETECT_NATS_URL"); v != "" {
		cfg.EventBus.NATSUrl = v
	}
	if v := os.Getenv("FRAUDDETECT_POSTGRES_HOST"); v != "" {
		cfg.Repository.PostgresHost = v
	}
	if v := os.Getenv("FRAUDDETECT_SQLITE_PATH"); v != "" {
		cfg.Repository.SQLitePath = v
	}
	if v := os.Getenv("FRAUDDETECT_OCR_ENDPOINT"); v != "" {
		cfg.OCR.Endpoint = v
	}
	if os.Getenv("FRAUDDETECT_LENIENT_VALIDATORS") == "true" {
		cfg.Validation.StrictTaxID = false
		cfg.Validation.StrictRegistration = false
	}
}

func printBanner(cfg *domain.Config, version string) {
	fmt.Println()
	fmt.Println("  FRAUDDETECT - Fraud Detection Dashboard")
	fmt.Println()
	fmt.Printf("  Version:  %s\n", version)
	fmt.Printf("  Server:   http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Println()
	fmt.Println("  Endpoints:")
	fmt.Println("    POST /register                      - Register a user")
	fmt.Println("    POST /login                         - Log in and start a session")
	fmt.Println("    POST /sessions                      - Start an anonymous session")
	fmt.Println("    GET  /session                       - Full session snapshot")
	fmt.Println("    DELETE /session                     - Log out and discard the session")
	fmt.Println("    POST /transactions                  - Submit a transaction")
	fmt.Println("    GET  /transactions                  - List transactions")
	fmt.Println("    POST /transactions/{index}/validate - Mark a transaction validated")
	fmt.Println("    POST /fraud/scan                    - Run the fraud rules")
	fmt.Println("    GET  /alerts                        - List fraud alerts")
	fmt.Println("    POST /verify/tax-id                 - Verify a tax identifier")
	fmt.Println("    POST /verify/registration           - Verify a registration number")
	fmt.Println("    POST /verify/bank-account           - Verify a bank account")
	fmt.Println("    POST /verify/identity               - Verify an identity document")
	fmt.Println("    POST /verify/qr                     - Link an account from a QR code")
	fmt.Println("    GET  /verification                  - Verification summary")
	fmt.Println("    GET  /rules                         - List fraud rules")
	fmt.Println("    POST /rules                         - Load a fraud rule")
	fmt.Println("    GET  /health                        - Health check")
	fmt.Println()
}
