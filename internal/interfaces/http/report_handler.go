package http

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Ensamble-api/internal/application/reporting"
	"github.com/jhoicas/Ensamble-api/internal/domain"
	"github.com/jhoicas/Ensamble-api/pkg/logger"
)

// ReportHandler lista de retiro y trazabilidad. Un fallo del reporte nunca afecta al ensamble:
// se registra como advertencia y se responde 503.
type ReportHandler struct {
	picklists    Picklists
	traceability Traceability
	log          *logger.Logger
}

// NewReportHandler construye el handler.
func NewReportHandler(picklists Picklists, traceability Traceability, log *logger.Logger) *ReportHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &ReportHandler{picklists: picklists, traceability: traceability, log: log}
}

// Picklist godoc
// @Summary      Lista de retiro
// @Description  Una página por unidad con los componentes a retirar y su proveedor.
// @Tags         Reportes
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "ID del ensamble"
// @Success      200  {object}  dto.PicklistResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/assemblies/{id}/picklist [get]
func (h *ReportHandler) Picklist(c *fiber.Ctx) error {
	p, err := h.picklists.GetPicklist(c.Context(), c.Params("id"))
	if err != nil {
		return h.reportError(c, err)
	}
	return c.JSON(p)
}

// PicklistPDF lista de retiro imprimible.
// GET /api/assemblies/:id/picklist.pdf
func (h *ReportHandler) PicklistPDF(c *fiber.Ctx) error {
	b, filename, err := h.picklists.PicklistPDF(c.Context(), c.Params("id"))
	if err != nil {
		return h.reportError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(b)
}

// Traceability godoc
// @Summary      Trazabilidad del ensamble
// @Description  Componente, cantidad usada, proveedor y compra de origen por unidad.
// @Tags         Reportes
// @Produce      json
// @Produce      text/csv
// @Security     BearerAuth
// @Param        id      path   string  true   "ID del ensamble"
// @Param        format  query  string  false  "json | csv | xlsx"
// @Success      200  {array}   dto.TraceabilityRowDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/assemblies/{id}/traceability [get]
func (h *ReportHandler) Traceability(c *fiber.Ctx) error {
	id := c.Params("id")
	format := strings.ToLower(strings.TrimSpace(c.Query("format", reporting.FormatJSON)))
	if format == reporting.FormatJSON {
		rows, _, err := h.traceability.Rows(c.Context(), id)
		if err != nil {
			return h.reportError(c, err)
		}
		return c.JSON(rows)
	}
	b, contentType, filename, err := h.traceability.Export(c.Context(), id, format)
	if err != nil {
		return h.reportError(c, err)
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(b)
}

func (h *ReportHandler) reportError(c *fiber.Ctx, err error) error {
	if errors.Is(err, domain.ErrReportUnavailable) {
		h.log.Warn().Err(err).Str("path", c.Path()).Msg("reporte no disponible")
	}
	return writeError(c, err)
}
