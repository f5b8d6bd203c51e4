// Package main is the entry point for the DocNexus API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"docnexus/internal/assets"
	"docnexus/internal/cache"
	"docnexus/internal/config"
	"docnexus/internal/database"
	"docnexus/internal/docgen"
	"docnexus/internal/handlers"
	"docnexus/internal/middleware"
	"docnexus/internal/pdf"
	"docnexus/internal/router"
	"docnexus/internal/storage"
	"docnexus/internal/store"
)

func main() {
	// Structured logger — outputs JSON in production, text in development.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey for the inventory quantity cache.
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()
	inventoryCache := cache.NewInventoryCache(valkeyClient, cache.DefaultInventoryTTL)

	// Initialize data stores.
	templateStore := store.NewTemplateStore(db)
	assetStore := store.NewAssetStore(db)
	documentStore := store.NewDocumentStore(db)
	productStore := store.NewProductStore(db)
	orderStore := store.NewOrderStore(db)

	// Connect to S3-compatible object storage (optional — the API runs
	// without it, with uploads and document generation disabled).
	storageClient, err := storage.New(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3BucketAssets, cfg.S3BucketDocuments,
	)
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	if storageClient != nil {
		slog.Info("s3 storage connected",
			"endpoint", cfg.S3Endpoint,
			"assets_bucket", cfg.S3BucketAssets,
			"documents_bucket", cfg.S3BucketDocuments,
		)
	} else {
		slog.Warn("s3 storage not configured, asset uploads and document generation disabled")
	}

	// Asset resolver and render pipeline.
	var resolver *assets.Resolver
	var assetSource docgen.AssetSource
	if storageClient != nil {
		resolver = assets.NewResolver(assetStore, storageClient, cfg.S3BucketAssets, cfg.MaxAssetBytes)
		assetSource = resolver
	}
	engine := pdf.NewClient(cfg.PDFEngineURL, cfg.PDFEngineTimeout)
	pipeline := docgen.NewPipeline(templateStore, assetSource, engine)

	// Rate limit render endpoints: PDF generation holds an engine slot for
	// seconds at a time.
	renderLimiter := middleware.NewRenderLimiter(30, time.Minute)
	defer renderLimiter.Stop()

	api := handlers.NewAPI(
		templateStore, assetStore, documentStore, productStore, orderStore,
		resolver, pipeline, storageClient, inventoryCache,
	)

	// Set up the Chi router with all middleware and routes.
	r := router.New(api, renderLimiter)

	// Create the HTTP server with sensible timeouts. WriteTimeout must
	// accommodate the PDF engine call on generate endpoints.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.PDFEngineTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
