package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Ensamble-api/pkg/jwt"
	"github.com/jhoicas/Ensamble-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CreateAssembly  AssemblyCreator
	ReverseAssembly AssemblyReverser
	Catalog         Catalog
	Availability    Availability
	Picklists       Picklists
	Traceability    Traceability
	JWTSecret       string
	APIKeyHash      string
	Logger          *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	// Todas las rutas de /api exigen llave de API y Bearer Token
	api := app.Group("/api", APIKeyMiddleware(deps.APIKeyHash), AuthMiddleware(deps.JWTSecret))
	canAssemble := RequireRole(jwt.RoleAdmin, jwt.RoleProduccion)
	canRead := RequireRole(jwt.RoleAdmin, jwt.RoleProduccion, jwt.RoleConsulta)

	// Ensambles
	assemblies := api.Group("/assemblies")
	assemblyHandler := NewAssemblyHandler(deps.CreateAssembly, deps.ReverseAssembly, deps.Catalog)
	assemblies.Post("/", canAssemble, assemblyHandler.Create)
	assemblies.Post("/reverse", canAssemble, assemblyHandler.Reverse)
	assemblies.Delete("/:id", canAssemble, assemblyHandler.Delete)
	assemblies.Get("/", canRead, assemblyHandler.List)
	assemblies.Get("/:id", canRead, assemblyHandler.GetByID)

	// Reportes del ensamble
	reportHandler := NewReportHandler(deps.Picklists, deps.Traceability, deps.Logger)
	assemblies.Get("/:id/picklist", canRead, reportHandler.Picklist)
	assemblies.Get("/:id/picklist.pdf", canRead, reportHandler.PicklistPDF)
	assemblies.Get("/:id/traceability", canRead, reportHandler.Traceability)

	// BOMs y disponibilidad
	catalogHandler := NewCatalogHandler(deps.Catalog, deps.Availability)
	boms := api.Group("/boms")
	boms.Get("/", canRead, catalogHandler.ListBOMs)
	boms.Get("/:id", canRead, catalogHandler.GetBOM)
	boms.Get("/:id/availability", canRead, catalogHandler.Availability)

	inventory := api.Group("/inventory")
	inventory.Get("/:id/vendors", canRead, catalogHandler.VendorAvailability)
}
