package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"docfill/internal/catalog"
	"docfill/internal/collect"
	"docfill/internal/config"
	"docfill/internal/database"
	"docfill/internal/database/migration"
	"docfill/internal/gateway"
	handlers "docfill/internal/http/handler"
	"docfill/internal/http/middleware"
	"docfill/internal/logger"
	"docfill/internal/otel"
	"docfill/internal/repository/memory"
	"docfill/internal/repository/postgres"
	"docfill/internal/service"
	"docfill/internal/session"
	"docfill/internal/storage"
	"docfill/internal/validation"
)

// documentTypeCacheTTL bounds how long document type rows are served from memory.
const documentTypeCacheTTL = 5 * time.Minute

// @title Docfill API
// @version 1.0
// @description Conversational document filling: collect, validate and render contract data.
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Printf("unknown timezone %q, using UTC: %v", cfg.Timezone, err)
		loc = time.UTC
	}

	zl := logger.New(cfg.Log, loc)
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, zl)
	if err != nil {
		zl.Fatal("failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(ctx, cfg.Database, zl)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, zl, cfg.Database.Host); err != nil {
		zl.Fatal("failed to migrate database", zap.Error(err))
	}

	// Initialize reusable S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		zl.Fatal("failed to initialize object storage", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	collectMetrics, err := collect.NewMetrics(reg)
	if err != nil {
		zl.Fatal("failed to register collection metrics", zap.Error(err))
	}
	httpMetrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		zl.Fatal("failed to register http metrics", zap.Error(err))
	}

	// Without a gateway every turn takes the deterministic fallback path.
	var gw gateway.Client
	if cfg.Gateway.BaseURL != "" {
		gw = gateway.NewHTTPClient(cfg.Gateway, nil, zl)
	} else {
		zl.Warn("GATEWAY_BASE_URL is not set, conversational turns use deterministic replies")
	}

	cat := catalog.MustNew()
	validator := validation.Default()
	orchestrator := collect.New(cat, validator, gw, collect.Config{
		Timeout:      cfg.Gateway.Timeout(),
		HistoryLimit: cfg.Gateway.HistoryLimit,
	}, collectMetrics, zl)

	// Initialize repositories and services
	svc := service.NewSessionService(service.Deps{
		Catalog:       cat,
		Validator:     validator,
		Orchestrator:  orchestrator,
		DocumentTypes: memory.NewDocumentTypeCache(postgres.NewDocumentTypePostgres(db), documentTypeCacheTTL),
		Sessions:      postgres.NewSessionPostgres(db),
		Artifacts:     postgres.NewArtifactPostgres(db),
		Store:         objStore,
		Locker:        session.NewLocker(),
		Log:           zl,
	})

	app := fiber.New(fiber.Config{
		ErrorHandler:  handlers.ErrorHandler(),
		UnescapePath:  true,
		BodyLimit:     25 << 20,
		ReadTimeout:   30 * time.Second,
		WriteTimeout:  60 * time.Second,
		AppName:       "docfill",
		StrictRouting: false,
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware())
	app.Use(httpMetrics.Handler())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger(zl))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// Register HTTP routes with injected service
	handlers.RegisterRoutes(app, db, svc, zl)

	go func() {
		<-ctx.Done()
		zl.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			zl.Error("shutdown failed", zap.Error(err))
		}
	}()

	addr := ":" + cfg.Port
	zl.Info("listening", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		zl.Fatal("failed to start server", zap.Error(err))
	}
}
