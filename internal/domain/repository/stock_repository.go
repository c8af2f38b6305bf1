package repository

import (
	"context"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
)

// StockRepository define el puerto de la fila de bloqueo por bodega+producto.
// Usado dentro de transacciones para serializar a quienes consumen disponibilidad.
type StockRepository interface {
	// GetForUpdate crea la fila si no existe y la bloquea (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, tenantID string, key entity.StockKey) (*entity.StockLevel, error)
}
