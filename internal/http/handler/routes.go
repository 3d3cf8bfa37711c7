package handler

import (
	"database/sql"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"

	"docfill/docs"
	"docfill/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay thin adapters over service.SessionService.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc service.SessionService, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("http")

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

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

	app.Get("/document-types", ListDocumentTypes(svc, log))
	app.Put("/document-types/:code/template", UploadTemplate(svc, log))

	sessions := app.Group("/sessions")
	sessions.Post("/", StartSession(svc, log))
	sessions.Get("/:id", GetSession(svc, log))
	sessions.Post("/:id/answers", SubmitAnswers(svc, log))
	sessions.Post("/:id/chat", Chat(svc, log))
	sessions.Post("/:id/review", Review(svc, log))
	sessions.Post("/:id/ask", Ask(svc, log))
	sessions.Get("/:id/summary", Summary(svc, log))
	sessions.Post("/:id/generate", Generate(svc, log))
	sessions.Get("/:id/artifacts", ListArtifacts(svc, log))

	app.Get("/artifacts/:id", GetArtifact(svc, log))
	app.Post("/artifacts/:id/signed", AttachSigned(svc, log))
}
