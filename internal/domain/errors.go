package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")

	// Ensambles
	ErrMissingSource       = errors.New("componente sin proveedor asignado")
	ErrSelfReferencingBOM  = errors.New("la BOM contiene su propio artículo ensamblado")
	ErrPurchaseOrderClosed = errors.New("la orden de compra no está abierta")

	// Reportes (lista de retiro, trazabilidad): fallos de solo lectura, nunca revierten un ensamble
	ErrReportUnavailable = errors.New("reporte no disponible")
)
