package dto

import "github.com/shopspring/decimal"

// PicklistLineDTO componente a retirar para armar una unidad.
type PicklistLineDTO struct {
	ComponentID     string          `json:"componentId"`
	ComponentName   string          `json:"componentName"`
	Unit            string          `json:"unit,omitempty"`
	QuantityPerUnit decimal.Decimal `json:"quantityPerUnit"`
	VendorName      string          `json:"vendorName"`
}

// PicklistPageDTO una página imprimible por unidad.
type PicklistPageDTO struct {
	UnitNumber   int               `json:"unitNumber"`
	TotalUnits   int               `json:"totalUnits"`
	SerialNumber string            `json:"serialNumber"`
	Lines        []PicklistLineDTO `json:"lines"`
}

// PicklistResponse lista de retiro completa de un ensamble.
type PicklistResponse struct {
	AssemblyID    string            `json:"assemblyId"`
	AssemblyName  string            `json:"assemblyName"`
	BOMName       string            `json:"bomName"`
	AssembledItem string            `json:"assembledItem"`
	Pages         []PicklistPageDTO `json:"pages"`
}

// TraceabilityRowDTO fila plana de trazabilidad (componente, cantidad, proveedor, compra de origen).
type TraceabilityRowDTO struct {
	UnitNumber     int             `json:"unitNumber"`
	SerialNumber   string          `json:"serialNumber"`
	ComponentID    string          `json:"componentId"`
	ComponentName  string          `json:"componentName"`
	Quantity       decimal.Decimal `json:"quantity"`
	VendorID       *string         `json:"vendorId"`
	VendorName     string          `json:"vendorName"`
	SourcePONumber string          `json:"sourcePoNumber,omitempty"`
}
