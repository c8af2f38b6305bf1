package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/repository"
)

var (
	_ repository.PickListRepository = (*PickListRepo)(nil)
	_ repository.IncidentRepository = (*IncidentRepo)(nil)
)

// PickListRepo implementación de PickListRepository (usable con pool o tx).
type PickListRepo struct {
	q Querier
}

// NewPickListRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPickListRepository(q Querier) *PickListRepo {
	return &PickListRepo{q: q}
}

// Create inserta la lista y sus ítems. La unicidad de order_id impide una segunda lista.
func (r *PickListRepo) Create(ctx context.Context, pl *entity.PickList) error {
	if pl.ID == "" {
		pl.ID = uuid.New().String()
	}
	query := `
		INSERT INTO pick_lists (id, tenant_id, order_id, status, frozen_at, packed_at, stock_committed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		pl.ID, pl.TenantID, pl.OrderID, pl.Status, pl.FrozenAt, pl.PackedAt, pl.StockCommittedAt, pl.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("order %s already has a pick list: %w", pl.OrderID, err)
		}
		return fmt.Errorf("insert pick list: %w", err)
	}
	item := `
		INSERT INTO pick_list_items (id, pick_list_id, product_id, warehouse_id, requested_qty, picked_qty, incident_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for i := range pl.Items {
		it := &pl.Items[i]
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.PickListID = pl.ID
		_, err := r.q.Exec(ctx, item,
			it.ID, it.PickListID, it.ProductID, nullIfEmpty(it.WarehouseID),
			it.RequestedQty, it.PickedQty, nullIfEmpty(it.IncidentID),
		)
		if err != nil {
			return fmt.Errorf("insert pick list item: %w", err)
		}
	}
	return nil
}

const pickListColumns = `id, tenant_id, order_id, status, frozen_at, packed_at, stock_committed_at, created_at`

func (r *PickListRepo) get(ctx context.Context, query string, args ...any) (*entity.PickList, error) {
	var pl entity.PickList
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&pl.ID, &pl.TenantID, &pl.OrderID, &pl.Status, &pl.FrozenAt, &pl.PackedAt, &pl.StockCommittedAt, &pl.CreatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get pick list: %w", err)
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, pick_list_id, product_id, warehouse_id, requested_qty, picked_qty, incident_id
		FROM pick_list_items WHERE pick_list_id = $1 ORDER BY position`, pl.ID)
	if err != nil {
		return nil, fmt.Errorf("list pick list items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.PickListItem
		var warehouseID, incidentID *string
		if err := rows.Scan(&it.ID, &it.PickListID, &it.ProductID, &warehouseID,
			&it.RequestedQty, &it.PickedQty, &incidentID); err != nil {
			return nil, fmt.Errorf("scan pick list item: %w", err)
		}
		it.WarehouseID = deref(warehouseID)
		it.IncidentID = deref(incidentID)
		pl.Items = append(pl.Items, it)
	}
	return &pl, rows.Err()
}

// GetByID devuelve la lista con ítems.
func (r *PickListRepo) GetByID(ctx context.Context, tenantID, id string) (*entity.PickList, error) {
	return r.get(ctx, `SELECT `+pickListColumns+` FROM pick_lists WHERE tenant_id = $1 AND id = $2`, tenantID, id)
}

// GetByOrderID devuelve la lista del pedido, si existe.
func (r *PickListRepo) GetByOrderID(ctx context.Context, tenantID, orderID string) (*entity.PickList, error) {
	return r.get(ctx, `SELECT `+pickListColumns+` FROM pick_lists WHERE tenant_id = $1 AND order_id = $2`, tenantID, orderID)
}

// GetForUpdate bloquea la cabecera y devuelve la lista con ítems.
func (r *PickListRepo) GetForUpdate(ctx context.Context, tenantID, id string) (*entity.PickList, error) {
	return r.get(ctx, `SELECT `+pickListColumns+` FROM pick_lists WHERE tenant_id = $1 AND id = $2 FOR UPDATE`, tenantID, id)
}

// Update persiste estado y marcas de tiempo de la cabecera.
func (r *PickListRepo) Update(ctx context.Context, pl *entity.PickList) error {
	query := `
		UPDATE pick_lists SET status = $3, frozen_at = $4, packed_at = $5, stock_committed_at = $6
		WHERE tenant_id = $1 AND id = $2`
	_, err := r.q.Exec(ctx, query, pl.TenantID, pl.ID, pl.Status, pl.FrozenAt, pl.PackedAt, pl.StockCommittedAt)
	if err != nil {
		return fmt.Errorf("update pick list: %w", err)
	}
	return nil
}

// UpdateItem persiste bodega, cantidad preparada e incidencia del ítem.
func (r *PickListRepo) UpdateItem(ctx context.Context, tenantID string, it *entity.PickListItem) error {
	query := `
		UPDATE pick_list_items i SET warehouse_id = $3, picked_qty = $4, incident_id = $5
		FROM pick_lists p
		WHERE i.pick_list_id = p.id AND p.tenant_id = $1 AND i.id = $2`
	tag, err := r.q.Exec(ctx, query, tenantID, it.ID, nullIfEmpty(it.WarehouseID), it.PickedQty, nullIfEmpty(it.IncidentID))
	if err != nil {
		return fmt.Errorf("update pick list item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update pick list item: ítem %s no encontrado", it.ID)
	}
	return nil
}

// ReservedQty suma lo preparado en listas congeladas o empacadas que aún no comprometieron stock.
func (r *PickListRepo) ReservedQty(ctx context.Context, tenantID string, key entity.StockKey, excludePickListID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(i.picked_qty), 0)
		FROM pick_list_items i
		JOIN pick_lists p ON p.id = i.pick_list_id
		WHERE p.tenant_id = $1
		  AND i.warehouse_id = $2
		  AND i.product_id = $3
		  AND p.status IN ('FROZEN', 'PACKED')
		  AND p.stock_committed_at IS NULL
		  AND p.id::text <> $4`
	var sum decimal.Decimal
	if err := r.q.QueryRow(ctx, query, tenantID, key.WarehouseID, key.ProductID, excludePickListID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("reserved qty: %w", err)
	}
	return sum, nil
}

// IncidentRepo persiste incidencias (inmutables).
type IncidentRepo struct {
	q Querier
}

// NewIncidentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewIncidentRepository(q Querier) *IncidentRepo {
	return &IncidentRepo{q: q}
}

// Create inserta la incidencia.
func (r *IncidentRepo) Create(ctx context.Context, inc *entity.Incident) error {
	if inc.ID == "" {
		inc.ID = uuid.New().String()
	}
	query := `
		INSERT INTO incidents (id, tenant_id, cause, description, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.q.Exec(ctx, query, inc.ID, inc.TenantID, inc.Cause, inc.Description, inc.CreatedBy, inc.CreatedAt); err != nil {
		return fmt.Errorf("insert incident: %w", err)
	}
	return nil
}
