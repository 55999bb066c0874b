package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Assembly corrida de ensamble: N unidades de un artículo terminado según una BOM.
// No se edita; solo se crea o se revierte completa.
type Assembly struct {
	ID              string
	BOMID           string
	BOMName         string
	AssembledItemID string // copiado de la BOM al crear; la reversión no depende de la BOM actual
	Name            string
	Quantity        int
	PONumber        string
	CreatedBy       string
	CreatedAt       time.Time
	Units           []AssemblyUnit
}

// AssemblyUnit unidad producida dentro de una corrida (1..N) con su serial.
type AssemblyUnit struct {
	ID           string
	AssemblyID   string
	UnitNumber   int
	SerialNumber string
}

// AssemblyComponentUsage registro de trazabilidad: qué lote de proveedor abasteció
// qué cantidad de un componente para una unidad.
type AssemblyComponentUsage struct {
	ID              string
	AssemblyID      string
	UnitID          string
	UnitNumber      int
	SerialNumber    string
	ComponentItemID string
	ComponentName   string
	VendorID        string // vacío = fuente interna
	VendorName      string
	Quantity        decimal.Decimal
	SourcePONumber  string
}
