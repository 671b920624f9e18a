package http

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/jhoicas/Documentos-api/internal/application/document"
	"github.com/jhoicas/Documentos-api/internal/application/dto"
	"github.com/jhoicas/Documentos-api/internal/domain"
	"github.com/jhoicas/Documentos-api/internal/domain/entity"
	"github.com/jhoicas/Documentos-api/internal/infrastructure/realtime"
	"github.com/jhoicas/Documentos-api/pkg/logger"
)

const keepAliveInterval = 15 * time.Second

// SequenceHandler numeración de documentos y su canal de difusión (SSE).
type SequenceHandler struct {
	uc  *document.SequenceUseCase
	hub *realtime.Hub
	log *logger.Logger
}

// NewSequenceHandler construye el handler.
func NewSequenceHandler(uc *document.SequenceUseCase, hub *realtime.Hub, log *logger.Logger) *SequenceHandler {
	return &SequenceHandler{uc: uc, hub: hub, log: log}
}

// Get estado de la numeración y número que recibirá el próximo documento.
// GET /api/sequences/:kind
func (h *SequenceHandler) Get(c *fiber.Ctx) error {
	kind, ok := entity.KindFromPath(c.Params("kind"))
	if !ok {
		return writeError(c, h.log, domain.ErrNotFound)
	}
	out, err := h.uc.Get(c.Context(), GetCompanyID(c), kind)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Configura la numeración del tipo
// @Description  Cambia prefijo, formato de fecha o contador; el contador solo avanza.
// @Tags         sequences
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path  string               true  "tipo de documento"
// @Param        body  body  dto.SequenceRequest  true  "prefijo, formato y contador"
// @Success      200   {object}  dto.SequenceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/sequences/{kind} [put]
func (h *SequenceHandler) Update(c *fiber.Ctx) error {
	kind, ok := entity.KindFromPath(c.Params("kind"))
	if !ok {
		return writeError(c, h.log, domain.ErrNotFound)
	}
	var in dto.SequenceRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.Context(), GetCompanyID(c), kind, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Stream Server-Sent Events con cada avance de la numeración del tipo.
// El primer evento es el estado actual.
// GET /api/sequences/:kind/stream
func (h *SequenceHandler) Stream(c *fiber.Ctx) error {
	kind, ok := entity.KindFromPath(c.Params("kind"))
	if !ok {
		return writeError(c, h.log, domain.ErrNotFound)
	}
	companyID := GetCompanyID(c)
	current, err := h.uc.Get(c.Context(), companyID, kind)
	if err != nil {
		return writeError(c, h.log, err)
	}
	first, err := json.Marshal(dto.SequenceEvent{Kind: current.Kind, Next: current.Next, Preview: current.Preview})
	if err != nil {
		return writeError(c, h.log, err)
	}

	sub := h.hub.Subscribe(document.SequenceRoom(companyID, kind))
	log := h.log.Component("sse")
	log.Debug().Str("room", sub.Room).Msg("suscriptor conectado")

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer sub.Close()
		defer log.Debug().Str("room", sub.Room).Msg("suscriptor desconectado")

		if writeEvent(w, first) != nil {
			return
		}
		ticker := time.NewTicker(keepAliveInterval)
		defer ticker.Stop()
		for {
			select {
			case msg, ok := <-sub.C:
				if !ok || writeEvent(w, msg) != nil {
					return
				}
			case <-ticker.C:
				if _, err := w.WriteString(": ping\n\n"); err != nil {
					return
				}
				if w.Flush() != nil {
					return
				}
			}
		}
	}))
	return nil
}

func writeEvent(w *bufio.Writer, payload []byte) error {
	if _, err := fmt.Fprintf(w, "event: sequence\ndata: %s\n\n", payload); err != nil {
		return err
	}
	return w.Flush()
}
