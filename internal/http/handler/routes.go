package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"

	"notesapi/internal/config"
	"notesapi/internal/http/middleware"
	"notesapi/internal/service"
)

// HealthCheck reports readiness by pinging the database.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a simple liveness endpoint.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app. Handlers stay
// thin; the services own the business rules and the verifier resolves bearer
// tokens to requester identities.
func RegisterRoutes(
	app *fiber.App,
	db *sql.DB,
	docSvc service.DocumentService,
	analyticsSvc service.AnalyticsService,
	authSvc service.AuthService,
	verifier middleware.TokenVerifier,
	uploadCfg config.UploadConfig,
) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	auth := app.Group("/auth")
	auth.Post("/register", Register(authSvc))
	auth.Post("/login", Login(authSvc))

	requireAuth := middleware.RequireAuth(verifier)
	optionalAuth := middleware.OptionalAuth(verifier)
	requireAdmin := middleware.RequireAdmin()

	notes := app.Group("/notes")

	// Static segments first: Fiber matches in registration order, so these
	// must precede /notes/:id.
	notes.Post("/upload", requireAuth, UploadDocument(docSvc, uploadCfg))
	notes.Get("/public/feed", PublicFeed(docSvc))
	notes.Get("/me", requireAuth, MyDocuments(docSvc))
	notes.Get("/pending", requireAuth, requireAdmin, PendingDocuments(docSvc))

	notes.Get("/admin/summary", requireAuth, requireAdmin, AdminSummary(analyticsSvc))
	notes.Get("/admin/recent", requireAuth, requireAdmin, AdminRecentUploads(analyticsSvc))
	notes.Get("/admin/top-downloads", requireAuth, requireAdmin, AdminTopDownloads(analyticsSvc))
	notes.Get("/admin/downloads-by-day", requireAuth, requireAdmin, AdminDownloadsByDay(analyticsSvc))

	notes.Get("/", ListDocuments(docSvc))
	notes.Get("/:id", GetDocument(docSvc))
	notes.Patch("/:id", requireAuth, UpdateDocument(docSvc))
	notes.Delete("/:id", requireAuth, DeleteDocument(docSvc))
	notes.Post("/:id/approve", requireAuth, requireAdmin, ApproveDocument(docSvc))
	notes.Post("/:id/reject", requireAuth, requireAdmin, RejectDocument(docSvc))
	notes.Get("/:id/preview", optionalAuth, PreviewDocument(docSvc))
	notes.Get("/:id/download", requireAuth, DownloadDocument(docSvc))
}
