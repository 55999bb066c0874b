package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ComponentSourceRequest fuente elegida para un componente. VendorID nil = fuente interna.
type ComponentSourceRequest struct {
	ComponentID string  `json:"componentId"`
	VendorID    *string `json:"vendorId"`
}

// CreateAssemblyRequest body para POST /api/assemblies.
type CreateAssemblyRequest struct {
	BOMID            string                   `json:"bomId"`
	AssemblyName     string                   `json:"assemblyName"`
	Quantity         int                      `json:"quantity"`
	UserID           string                   `json:"userId"`
	ComponentSources []ComponentSourceRequest `json:"componentSources"`
	PONumber         *string                  `json:"poNumber,omitempty"`
}

// ReverseAssemblyRequest body para POST /api/assemblies/reverse.
type ReverseAssemblyRequest struct {
	AssemblyID string `json:"assemblyId"`
	UserID     string `json:"userId"`
}

// AssemblyUnitDTO unidad producida.
type AssemblyUnitDTO struct {
	ID           string `json:"id"`
	UnitNumber   int    `json:"unitNumber"`
	SerialNumber string `json:"serialNumber"`
}

// AssemblyResponse detalle de un ensamble.
type AssemblyResponse struct {
	ID              string            `json:"id"`
	BOMID           string            `json:"bomId"`
	BOMName         string            `json:"bomName,omitempty"`
	AssembledItemID string            `json:"assembledItemId"`
	AssemblyName    string            `json:"assemblyName"`
	Quantity        int               `json:"quantity"`
	PONumber        *string           `json:"poNumber,omitempty"`
	CreatedBy       string            `json:"createdBy"`
	CreatedAt       time.Time         `json:"createdAt"`
	Units           []AssemblyUnitDTO `json:"units,omitempty"`
}

// VendorLotDTO disponibilidad de un artículo en un proveedor (VendorID nil = interno).
// Available acepta número o texto numérico al decodificar.
type VendorLotDTO struct {
	VendorID   *string         `json:"vendorId"`
	VendorName string          `json:"vendorName"`
	Available  decimal.Decimal `json:"available"`
}

// ComponentAvailabilityDTO resultado del resolvedor para un componente de la BOM.
type ComponentAvailabilityDTO struct {
	ComponentID     string          `json:"componentId"`
	ComponentName   string          `json:"componentName"`
	Unit            string          `json:"unit,omitempty"`
	QuantityPerUnit decimal.Decimal `json:"quantityPerUnit"`
	Required        decimal.Decimal `json:"required"`
	Insufficient    bool            `json:"insufficient"`
	Vendors         []VendorLotDTO  `json:"vendors"`
}

// AvailabilityResponse respuesta de GET /api/boms/:id/availability.
type AvailabilityResponse struct {
	BOMID      string                     `json:"bomId"`
	Quantity   int                        `json:"quantity"`
	CanSubmit  bool                       `json:"canSubmit"`
	Components []ComponentAvailabilityDTO `json:"components"`
}

// BOMItemDTO línea de BOM.
type BOMItemDTO struct {
	ComponentID     string          `json:"componentId"`
	ComponentName   string          `json:"componentName"`
	Unit            string          `json:"unit,omitempty"`
	QuantityPerUnit decimal.Decimal `json:"quantityPerUnit"`
}

// BOMResponse BOM con sus componentes.
type BOMResponse struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	AssembledItemID   string       `json:"assembledItemId"`
	AssembledItemName string       `json:"assembledItemName"`
	Items             []BOMItemDTO `json:"items"`
	CreatedAt         time.Time    `json:"createdAt"`
}
