package entity

import "time"

// Product representa un insumo o equipo entregable (SKU por tenant).
type Product struct {
	ID          string
	TenantID    string
	SKU         string
	Name        string
	UnitMeasure string
	CreatedAt   time.Time
}
