package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Ensamble-api/internal/application/dto"
)

// IdempotencyHeader header opcional que evita duplicar un ensamble por reintento.
const IdempotencyHeader = "Idempotency-Key"

// AssemblyHandler maneja creación, reversión y consulta de ensambles.
type AssemblyHandler struct {
	creator  AssemblyCreator
	reverser AssemblyReverser
	catalog  Catalog
}

// NewAssemblyHandler construye el handler.
func NewAssemblyHandler(creator AssemblyCreator, reverser AssemblyReverser, catalog Catalog) *AssemblyHandler {
	return &AssemblyHandler{creator: creator, reverser: reverser, catalog: catalog}
}

// Create godoc
// @Summary      Crear ensamble
// @Description  Consume los componentes de la BOM según la fuente elegida y produce el artículo ensamblado en una sola transacción.
// @Tags         Ensambles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header  string                      false  "Llave de idempotencia"
// @Param        body             body    dto.CreateAssemblyRequest  true   "Ensamble"
// @Success      201  {object}  map[string]string
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/assemblies [post]
func (h *AssemblyHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateAssemblyRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	a, err := h.creator.CreateAssemblyFromRequest(c.Context(), GetUserID(c), c.Get(IdempotencyHeader), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": a.ID})
}

// Reverse godoc
// @Summary      Revertir ensamble
// @Description  Devuelve los componentes a sus proveedores de origen, retira el terminado y borra el ensamble.
// @Tags         Ensambles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  dto.ReverseAssemblyRequest  true  "Ensamble a revertir"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/assemblies/reverse [post]
func (h *AssemblyHandler) Reverse(c *fiber.Ctx) error {
	var in dto.ReverseAssemblyRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	return h.reverse(c, in)
}

// Delete revierte el ensamble del path. El body es opcional.
// DELETE /api/assemblies/:id
func (h *AssemblyHandler) Delete(c *fiber.Ctx) error {
	var in dto.ReverseAssemblyRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	in.AssemblyID = c.Params("id")
	return h.reverse(c, in)
}

func (h *AssemblyHandler) reverse(c *fiber.Ctx, in dto.ReverseAssemblyRequest) error {
	if err := h.reverser.ReverseAssemblyFromRequest(c.Context(), GetUserID(c), in); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{})
}

// List lista ensambles, los más recientes primero.
// GET /api/assemblies?limit=&offset=
func (h *AssemblyHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.NewError("VALIDATION", "paginación inválida"))
	}
	page.DefaultPage()
	list, err := h.catalog.ListAssemblies(c.Context(), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"items": list, "page": dto.PageResponse{Limit: page.Limit, Offset: page.Offset}})
}

// GetByID detalle de un ensamble con sus unidades.
// GET /api/assemblies/:id
func (h *AssemblyHandler) GetByID(c *fiber.Ctx) error {
	a, err := h.catalog.GetAssembly(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(a)
}
