package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Documentos-api/internal/application/document"
	"github.com/jhoicas/Documentos-api/internal/application/dto"
	"github.com/jhoicas/Documentos-api/internal/domain"
	"github.com/jhoicas/Documentos-api/internal/domain/entity"
	"github.com/jhoicas/Documentos-api/internal/domain/lifecycle"
	"github.com/jhoicas/Documentos-api/pkg/logger"
	"github.com/jhoicas/Documentos-api/pkg/query"
)

// DocumentHandler maneja las peticiones HTTP de cotizaciones y facturas (protegido).
// Cada método devuelve el handler atado a un tipo de documento.
type DocumentHandler struct {
	uc  *document.UseCase
	pdf *document.PDFUseCase
	log *logger.Logger
}

// NewDocumentHandler construye el handler.
func NewDocumentHandler(uc *document.UseCase, pdf *document.PDFUseCase, log *logger.Logger) *DocumentHandler {
	return &DocumentHandler{uc: uc, pdf: pdf, log: log}
}

// Create godoc
// @Summary      Alta de documento
// @Tags         documents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        kind    path   string               true   "quotations | expense-quotations | invoices | expense-invoices"
// @Param        action  query  string               false  "save | draft | validate"
// @Param        body    body   dto.DocumentRequest  true   "cabecera y líneas"
// @Success      201     {object}  dto.DocumentResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      422     {object}  dto.ErrorResponse
// @Router       /api/{kind} [post]
func (h *DocumentHandler) Create(kind entity.DocumentKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		action := lifecycle.ActionSave
		if key := c.Query("action"); key != "" {
			a, ok := lifecycle.ParseAction(key)
			if !ok {
				return writeError(c, h.log, domain.ErrActionNotAllowed)
			}
			action = a
		}
		var in dto.DocumentRequest
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
		out, err := h.uc.Create(c.Context(), GetCompanyID(c), kind, in, action)
		if err != nil {
			return writeError(c, h.log, err)
		}
		return c.Status(fiber.StatusCreated).JSON(out)
	}
}

// List godoc
// @Summary      Listado paginado con filtros
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        kind    path   string    true   "tipo de documento"
// @Param        page    query  int       false  "página (desde 1)"
// @Param        limit   query  int       false  "tamaño de página"
// @Param        sort    query  string    false  "campo,ASC|DESC"
// @Param        filter  query  []string  false  "campo||$op||valor"  collectionFormat(multi)
// @Param        join    query  string    false  "items,currency"
// @Success      200     {object}  dto.ListResponse[dto.DocumentResponse]
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/{kind} [get]
func (h *DocumentHandler) List(kind entity.DocumentKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		params := query.Params{
			Page:  query.Atoi(c.Query("page")),
			Limit: query.Atoi(c.Query("limit")),
			Sort:  c.Query("sort"),
			Join:  c.Query("join"),
		}
		for _, f := range c.Context().QueryArgs().PeekMulti("filter") {
			params.Filters = append(params.Filters, string(f))
		}
		out, err := h.uc.List(c.Context(), GetCompanyID(c), kind, params)
		if err != nil {
			return writeError(c, h.log, err)
		}
		return c.JSON(out)
	}
}

// Get detalle con líneas.
// GET /api/{kind}/:id
func (h *DocumentHandler) Get(kind entity.DocumentKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		out, err := h.uc.Get(c.Context(), GetCompanyID(c), kind, c.Params("id"))
		if err != nil {
			return writeError(c, h.log, err)
		}
		return c.JSON(out)
	}
}

// Update godoc
// @Summary      Edición con control de versión
// @Description  El body debe traer la versión leída; si otro usuario guardó antes responde 409.
// @Tags         documents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path  string               true  "tipo de documento"
// @Param        id    path  string               true  "id del documento"
// @Param        body  body  dto.DocumentRequest  true  "documento completo"
// @Success      200   {object}  dto.DocumentResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/{kind}/{id} [put]
func (h *DocumentHandler) Update(kind entity.DocumentKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in dto.DocumentRequest
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
		out, err := h.uc.Update(c.Context(), GetCompanyID(c), kind, c.Params("id"), in)
		if err != nil {
			return writeError(c, h.log, err)
		}
		return c.JSON(out)
	}
}

// Delete borra el documento si la política lo permite.
// DELETE /api/{kind}/:id
func (h *DocumentHandler) Delete(kind entity.DocumentKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := h.uc.Delete(c.Context(), GetCompanyID(c), kind, c.Params("id")); err != nil {
			return writeError(c, h.log, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// Transition godoc
// @Summary      Transición de estado
// @Tags         documents
// @Produce      json
// @Security     BearerAuth
// @Param        kind    path  string  true  "tipo de documento"
// @Param        id      path  string  true  "id del documento"
// @Param        action  path  string  true  "validate | send | accept | reject | invoice | pay | reset"
// @Success      200     {object}  dto.TransitionResponse
// @Failure      422     {object}  dto.ErrorResponse
// @Router       /api/{kind}/{id}/actions/{action} [post]
func (h *DocumentHandler) Transition(kind entity.DocumentKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		out, err := h.uc.Transition(c.Context(), GetCompanyID(c), kind, c.Params("id"), c.Params("action"))
		if err != nil {
			return writeError(c, h.log, err)
		}
		return c.JSON(out)
	}
}

// Actions devuelve la decisión de render de cada acción para el estado actual.
// GET /api/{kind}/:id/actions
func (h *DocumentHandler) Actions(kind entity.DocumentKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		out, err := h.uc.Actions(c.Context(), GetCompanyID(c), kind, c.Params("id"))
		if err != nil {
			return writeError(c, h.log, err)
		}
		return c.JSON(out)
	}
}

// Duplicate crea un borrador con número nuevo.
// POST /api/{kind}/:id/duplicate?includeItems=true
func (h *DocumentHandler) Duplicate(kind entity.DocumentKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in dto.DuplicateRequest
		if err := c.QueryParser(&in); err != nil {
			return badBody(c)
		}
		out, err := h.uc.Duplicate(c.Context(), GetCompanyID(c), kind, c.Params("id"), in.IncludeItems)
		if err != nil {
			return writeError(c, h.log, err)
		}
		return c.Status(fiber.StatusCreated).JSON(out)
	}
}

// PDF godoc
// @Summary      Descarga la representación imprimible
// @Tags         documents
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        kind  path  string  true  "tipo de documento"
// @Param        id    path  string  true  "id del documento"
// @Success      200
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/{kind}/{id}/pdf [get]
func (h *DocumentHandler) PDF(kind entity.DocumentKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pdfBytes, filename, err := h.pdf.Download(c.Context(), GetCompanyID(c), kind, c.Params("id"))
		if err != nil {
			return writeError(c, h.log, err)
		}
		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
		return c.Send(pdfBytes)
	}
}

// Preview calcula totales sin persistir.
// POST /api/{kind}/preview
func (h *DocumentHandler) Preview(c *fiber.Ctx) error {
	var in dto.PreviewRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Preview(c.Context(), GetCompanyID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
