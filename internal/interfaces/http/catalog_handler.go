package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Ensamble-api/internal/application/dto"
	domainassembly "github.com/jhoicas/Ensamble-api/internal/domain/assembly"
)

// CatalogHandler lectura de BOMs y disponibilidad por proveedor.
type CatalogHandler struct {
	catalog      Catalog
	availability Availability
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(catalog Catalog, availability Availability) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, availability: availability}
}

// ListBOMs godoc
// @Summary      Listar BOMs
// @Tags         BOM
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query  int  false  "Límite"
// @Param        offset  query  int  false  "Desplazamiento"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/boms [get]
func (h *CatalogHandler) ListBOMs(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.NewError("VALIDATION", "paginación inválida"))
	}
	page.DefaultPage()
	list, err := h.catalog.ListBOMs(c.Context(), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"items": list, "page": dto.PageResponse{Limit: page.Limit, Offset: page.Offset}})
}

// GetBOM BOM con sus componentes.
// GET /api/boms/:id
func (h *CatalogHandler) GetBOM(c *fiber.Ctx) error {
	b, err := h.catalog.GetBOM(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(b)
}

// Availability godoc
// @Summary      Resolver fuentes para una BOM
// @Description  Por componente: cantidad requerida, proveedores con stock suficiente y si el ensamble puede enviarse.
// @Tags         BOM
// @Produce      json
// @Security     BearerAuth
// @Param        id        path   string  true  "ID de la BOM"
// @Param        quantity  query  int     true  "Unidades a ensamblar"
// @Success      200  {object}  dto.AvailabilityResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/boms/{id}/availability [get]
func (h *CatalogHandler) Availability(c *fiber.Ctx) error {
	units, err := domainassembly.ParseUnits(c.Query("quantity", "1"))
	if err != nil {
		return writeError(c, err)
	}
	resp, err := h.availability.ResolveForBOM(c.Context(), c.Params("id"), units)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(resp)
}

// VendorAvailability disponibilidad de un artículo por proveedor (interno primero).
// GET /api/inventory/:id/vendors
func (h *CatalogHandler) VendorAvailability(c *fiber.Ctx) error {
	lots, err := h.availability.VendorAvailability(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(lots)
}
