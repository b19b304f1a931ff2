package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"mercator-hq/webstore/pkg/admission"
	"mercator-hq/webstore/pkg/auth"
	"mercator-hq/webstore/pkg/cart"
	cartstorage "mercator-hq/webstore/pkg/cart/storage"
	"mercator-hq/webstore/pkg/catalog"
	"mercator-hq/webstore/pkg/config"
	"mercator-hq/webstore/pkg/retention"
	"mercator-hq/webstore/pkg/server"
	"mercator-hq/webstore/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the storefront server",
	Long: `Start the storefront server with the specified configuration.

The server listens on the configured address and serves the cart,
checkout and catalog endpoints behind the admission gate.

Examples:
  # Start with default config
  webstore run

  # Start with custom config
  webstore run --config /etc/webstore/config.yaml

  # Override listen address
  webstore run --listen 0.0.0.0:8080

  # Validate config without starting server
  webstore run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Apply flag overrides
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	setupLogging(cfg)

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Webstore v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	// Metrics collector (nil stays safe everywhere it is threaded)
	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.Enabled {
		collector = metrics.NewCollector(cfg.Telemetry.Metrics.Namespace, nil)
	}

	// Cart/order storage
	cartStore, err := buildCartStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize cart storage: %w", err)
	}
	defer cartStore.Close()

	// Product catalog
	catalogStore, err := buildCatalogStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize catalog storage: %w", err)
	}
	defer catalogStore.Close()

	fmt.Printf("✓ Storage initialized (carts: %s, catalog: %s)\n",
		cfg.Storage.Backend, cfg.Catalog.Backend)

	// Session table
	sessions, err := auth.NewSessionValidator(cfg.Auth.Sessions)
	if err != nil {
		return fmt.Errorf("failed to build session table: %w", err)
	}

	// Admission bucket
	bucket := admission.NewTokenBucket(
		cfg.Admission.Capacity,
		cfg.Admission.RefillAmount,
		cfg.Admission.RefillPeriod,
	)

	// Cart pipeline
	service := cart.NewService(cart.ServiceConfig{
		Store:      cartStore,
		Catalog:    catalogStore,
		LockWait:   cfg.Cart.LockWait,
		MaxRetries: cfg.Cart.MaxRetries,
		Metrics:    collector,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Retention scheduler
	if cfg.Retention.Enabled {
		pruner := retention.NewPruner(cartStore, cfg.Retention.MaxCartAge)
		scheduler := retention.NewScheduler(pruner, cfg.Retention.PruneSchedule)
		if err := scheduler.Start(ctx); err != nil {
			return fmt.Errorf("failed to start retention scheduler: %w", err)
		}
		defer scheduler.Stop()
		fmt.Printf("✓ Retention scheduler started (%s)\n", cfg.Retention.PruneSchedule)
	}

	// Config watcher hot-applies admission settings
	watcher, err := config.NewWatcher(cfgFile)
	if err != nil {
		slog.Warn("config watcher unavailable, hot reload disabled", "error", err)
	} else {
		go func() {
			_ = watcher.Watch(ctx, func(fresh *config.Config) {
				bucket.Reconfigure(
					fresh.Admission.Capacity,
					fresh.Admission.RefillAmount,
					fresh.Admission.RefillPeriod,
				)
				slog.Info("admission settings reloaded",
					"capacity", fresh.Admission.Capacity,
					"refill_amount", fresh.Admission.RefillAmount,
					"refill_period", fresh.Admission.RefillPeriod.String(),
				)
			})
		}()
	}

	srv := server.NewServer(&cfg.Server, server.Dependencies{
		Cart:     service,
		Catalog:  catalogStore,
		Sessions: sessions,
		Bucket:   bucket,
		Metrics:  collector,
	})

	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/health\n", cfg.Server.ListenAddress)
	if collector != nil {
		fmt.Printf("✓ Metrics endpoint: http://%s/metrics\n", cfg.Server.ListenAddress)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Start blocks until a signal, context cancellation or server error.
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	fmt.Println("✓ Server stopped")
	return nil
}

// loadConfig loads the configured file, falling back to defaults when the
// default config file is absent.
func loadConfig() (*config.Config, error) {
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		if cfgFile != "config.yaml" {
			return nil, fmt.Errorf("configuration file not found: %s", cfgFile)
		}
		slog.Info("no config file found, using defaults")
		return config.DefaultConfig(), nil
	}
	return config.LoadConfigWithEnvOverrides(cfgFile)
}

func setupLogging(cfg *config.Config) {
	var logLevel slog.Level
	switch cfg.Telemetry.Logging.Level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}

	var handler slog.Handler
	if cfg.Telemetry.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func buildCartStore(cfg *config.Config) (cart.Store, error) {
	switch cfg.Storage.Backend {
	case "sqlite":
		return cartstorage.NewSQLiteStore(cartstorage.SQLiteConfig{
			Path: cfg.Storage.Path,
		})
	case "memory":
		return cartstorage.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Storage.Backend)
	}
}

func buildCatalogStore(cfg *config.Config) (catalog.Store, error) {
	switch cfg.Catalog.Backend {
	case "sqlite":
		return catalog.NewSQLiteStore(catalog.SQLiteConfig{
			Path: cfg.Catalog.Path,
		})
	case "memory":
		return catalog.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported catalog backend: %s", cfg.Catalog.Backend)
	}
}
