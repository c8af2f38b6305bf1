package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación del kardex sobre PostgreSQL (usable con pool o tx).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create persiste el movimiento. stock_levels no se toca: es solo la fila de bloqueo.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movements (id, tenant_id, warehouse_id, product_id, batch_id, kind, quantity, reference_type, reference_id, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.TenantID, m.WarehouseID, m.ProductID, nullIfEmpty(m.BatchID), m.Kind,
		m.Quantity, m.ReferenceType, m.ReferenceID, m.CreatedBy, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// SumOnHand pliega los movimientos de la clave en la base.
func (r *StockMovementRepo) SumOnHand(ctx context.Context, tenantID string, key entity.StockKey) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN kind = 'OUT' THEN -quantity ELSE quantity END), 0)
		FROM stock_movements
		WHERE tenant_id = $1 AND warehouse_id = $2 AND product_id = $3`
	var sum decimal.Decimal
	if err := r.q.QueryRow(ctx, query, tenantID, key.WarehouseID, key.ProductID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum on hand: %w", err)
	}
	return sum, nil
}

// List devuelve el kardex filtrado, más reciente primero.
func (r *StockMovementRepo) List(ctx context.Context, tenantID string, f repository.MovementFilter) ([]entity.StockMovement, error) {
	query := `
		SELECT id, tenant_id, warehouse_id, product_id, batch_id, kind, quantity, reference_type, reference_id, created_by, created_at
		FROM stock_movements WHERE tenant_id = $1`
	args := []any{tenantID}
	pos := 2
	if f.WarehouseID != "" {
		query += fmt.Sprintf(" AND warehouse_id = $%d", pos)
		args = append(args, f.WarehouseID)
		pos++
	}
	if f.ProductID != "" {
		query += fmt.Sprintf(" AND product_id = $%d", pos)
		args = append(args, f.ProductID)
		pos++
	}
	if f.From != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *f.From)
		pos++
	}
	if f.To != nil {
		query += fmt.Sprintf(" AND created_at < $%d", pos)
		args = append(args, *f.To)
		pos++
	}
	query += " ORDER BY created_at DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", pos)
		args = append(args, f.Limit)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	var list []entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		var batchID *string
		if err := rows.Scan(&m.ID, &m.TenantID, &m.WarehouseID, &m.ProductID, &batchID, &m.Kind,
			&m.Quantity, &m.ReferenceType, &m.ReferenceID, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		m.BatchID = deref(batchID)
		list = append(list, m)
	}
	return list, rows.Err()
}
