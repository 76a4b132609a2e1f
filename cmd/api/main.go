package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"notesapi/docs"
	"notesapi/internal/auth"
	"notesapi/internal/config"
	"notesapi/internal/database"
	"notesapi/internal/database/migration"
	handlers "notesapi/internal/http/handler"
	"notesapi/internal/http/middleware"
	"notesapi/internal/otel"
	"notesapi/internal/repository/postgres"
	"notesapi/internal/service"
	"notesapi/internal/storage"
)

// @title Notes Library API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	loc := time.UTC

	ctx := context.Background()

	// Initialize OpenTelemetry tracing (no-op when OTEL_SDK_DISABLED=true)
	shutdownTracer, err := otel.Init(ctx, loc)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("failed to shut down tracer: %v", err)
		}
	}()

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, loc, cfg.Database.Host); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// Initialize reusable S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	// Prometheus registry shared by the HTTP middleware and domain counters
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	downloads := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "document_downloads_total",
		Help: "Total number of document downloads served.",
	})
	reg.MustRegister(downloads)

	promMW, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatalf("failed to initialize prometheus middleware: %v", err)
	}

	// Initialize repositories and services
	docRepo := postgres.NewDocumentPostgres(db)
	userRepo := postgres.NewUserPostgres(db)
	analyticsRepo := postgres.NewAnalyticsPostgres(db)

	tokens := auth.NewJWTService(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenExpiryMin)*time.Minute)

	docSvc := service.NewDocumentService(objStore, docRepo, userRepo, downloads)
	analyticsSvc := service.NewAnalyticsService(analyticsRepo)
	authSvc := service.NewAuthService(userRepo, tokens)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		// Leave headroom above the document size cap for multipart framing.
		BodyLimit: int(cfg.Upload.MaxSizeBytes) + 1<<20,
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())
	app.Use(promMW.Handler())

	// Register HTTP routes with injected services
	handlers.RegisterRoutes(app, db, docSvc, analyticsSvc, authSvc, tokens, cfg.Upload)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
