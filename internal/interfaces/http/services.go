package http

import (
	"context"

	"github.com/jhoicas/Ensamble-api/internal/application/dto"
	"github.com/jhoicas/Ensamble-api/internal/domain/entity"
)

// Contratos que los handlers esperan de la capa de aplicación.

// AssemblyCreator crea ensambles desde el body HTTP.
type AssemblyCreator interface {
	CreateAssemblyFromRequest(ctx context.Context, tokenUserID, idempotencyKey string, in dto.CreateAssemblyRequest) (*entity.Assembly, error)
}

// AssemblyReverser revierte ensambles desde el body HTTP.
type AssemblyReverser interface {
	ReverseAssemblyFromRequest(ctx context.Context, tokenUserID string, in dto.ReverseAssemblyRequest) error
}

// Catalog lectura de BOMs y ensambles.
type Catalog interface {
	ListBOMs(ctx context.Context, page dto.PageRequest) ([]dto.BOMResponse, error)
	GetBOM(ctx context.Context, id string) (*dto.BOMResponse, error)
	ListAssemblies(ctx context.Context, page dto.PageRequest) ([]dto.AssemblyResponse, error)
	GetAssembly(ctx context.Context, id string) (*dto.AssemblyResponse, error)
}

// Availability disponibilidad por proveedor y resolvedor de fuentes.
type Availability interface {
	VendorAvailability(ctx context.Context, itemID string) ([]dto.VendorLotDTO, error)
	ResolveForBOM(ctx context.Context, bomID string, units int) (*dto.AvailabilityResponse, error)
}

// Picklists lista de retiro en JSON y PDF.
type Picklists interface {
	GetPicklist(ctx context.Context, assemblyID string) (*dto.PicklistResponse, error)
	PicklistPDF(ctx context.Context, assemblyID string) ([]byte, string, error)
}

// Traceability tabla de trazabilidad en JSON o exportada.
type Traceability interface {
	Rows(ctx context.Context, assemblyID string) ([]dto.TraceabilityRowDTO, *entity.Assembly, error)
	Export(ctx context.Context, assemblyID, format string) ([]byte, string, string, error)
}
