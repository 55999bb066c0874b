package entity

import "time"

// Acciones registradas en la bitácora de actividad.
const (
	ActionAssemblyCreated  = "assembly.created"
	ActionAssemblyReversed = "assembly.reversed"
)

// ActivityLog entrada de la bitácora (append-only).
type ActivityLog struct {
	ID        string
	UserID    string
	Action    string
	Details   map[string]any
	CreatedAt time.Time
}
