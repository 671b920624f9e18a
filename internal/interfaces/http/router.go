package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Documentos-api/internal/application/document"
	"github.com/jhoicas/Documentos-api/internal/domain/entity"
	"github.com/jhoicas/Documentos-api/internal/infrastructure/realtime"
	"github.com/jhoicas/Documentos-api/pkg/jwt"
	"github.com/jhoicas/Documentos-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Documents   *document.UseCase
	PDF         *document.PDFUseCase
	Sequences   *document.SequenceUseCase
	References  *document.ReferenceUseCase
	Firms       *document.FirmUseCase
	Hub         *realtime.Hub
	Log         *logger.Logger
	JWTSecret   string
	ServiceName string
}

// Roles con permiso de escritura sobre documentos; administrar numeración y
// borrar queda para admin y contador.
var (
	writerRoles  = []string{jwt.RoleAdmin, jwt.RoleAccountant, jwt.RoleSeller}
	managerRoles = []string{jwt.RoleAdmin, jwt.RoleAccountant}
)

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	app.Use(RequestLogger(log.Component("http")))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	write := RequireRole(writerRoles...)
	manage := RequireRole(managerRoles...)

	// Referencias (solo lectura) y contrapartes
	refs := NewReferenceHandler(deps.References, deps.Firms, log)
	api.Get("/currencies", refs.Currencies)
	api.Get("/taxes", refs.Taxes)
	api.Get("/articles", refs.Articles)
	api.Get("/firms", refs.ListFirms)
	api.Post("/firms", write, refs.CreateFirm)

	// Numeración y su canal SSE
	seqs := NewSequenceHandler(deps.Sequences, deps.Hub, log)
	api.Get("/sequences/:kind", seqs.Get)
	api.Put("/sequences/:kind", manage, seqs.Update)
	api.Get("/sequences/:kind/stream", seqs.Stream)

	// Un grupo por tipo de documento: /api/quotations, /api/expense-invoices, ...
	docs := NewDocumentHandler(deps.Documents, deps.PDF, log)
	for _, kind := range entity.Kinds {
		g := api.Group("/" + kind.Path())
		g.Get("/", docs.List(kind))
		g.Post("/", write, docs.Create(kind))
		g.Post("/preview", docs.Preview)
		g.Get("/:id", docs.Get(kind))
		g.Put("/:id", write, docs.Update(kind))
		g.Delete("/:id", manage, docs.Delete(kind))
		g.Get("/:id/actions", docs.Actions(kind))
		g.Post("/:id/actions/:action", write, docs.Transition(kind))
		g.Post("/:id/duplicate", write, docs.Duplicate(kind))
		g.Get("/:id/pdf", docs.PDF(kind))
	}
}

// RequestLogger registra método, ruta, status y duración de cada petición.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error().Err(err)
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
		return err
	}
}
