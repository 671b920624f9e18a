package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Documentos-api/internal/application/document"
	"github.com/jhoicas/Documentos-api/internal/application/dto"
	"github.com/jhoicas/Documentos-api/pkg/logger"
)

// ReferenceHandler datos de referencia: monedas, impuestos, artículos y contrapartes.
type ReferenceHandler struct {
	refs  *document.ReferenceUseCase
	firms *document.FirmUseCase
	log   *logger.Logger
}

// NewReferenceHandler construye el handler.
func NewReferenceHandler(refs *document.ReferenceUseCase, firms *document.FirmUseCase, log *logger.Logger) *ReferenceHandler {
	return &ReferenceHandler{refs: refs, firms: firms, log: log}
}

// Currencies GET /api/currencies
func (h *ReferenceHandler) Currencies(c *fiber.Ctx) error {
	out, err := h.refs.Currencies(c.Context())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Taxes GET /api/taxes
func (h *ReferenceHandler) Taxes(c *fiber.Ctx) error {
	out, err := h.refs.Taxes(c.Context())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Articles GET /api/articles?limit=&offset=
func (h *ReferenceHandler) Articles(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badBody(c)
	}
	out, err := h.refs.Articles(c.Context(), GetCompanyID(c), page)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// ListFirms GET /api/firms?limit=&offset=
func (h *ReferenceHandler) ListFirms(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badBody(c)
	}
	out, err := h.firms.List(c.Context(), GetCompanyID(c), page)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// CreateFirm godoc
// @Summary      Alta de contraparte (cliente o proveedor)
// @Tags         firms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.CreateFirmRequest  true  "nombre e identificación fiscal"
// @Success      201   {object}  dto.FirmResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/firms [post]
func (h *ReferenceHandler) CreateFirm(c *fiber.Ctx) error {
	var in dto.CreateFirmRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.firms.Create(c.Context(), GetCompanyID(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
