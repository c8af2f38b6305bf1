package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/inventory"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/repository"
)

type movementRepo struct{ t *txState }

func (r movementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	r.t.state.movements = append(r.t.state.movements, *m)
	return nil
}

func (r movementRepo) SumOnHand(_ context.Context, tenantID string, key entity.StockKey) (decimal.Decimal, error) {
	var movs []entity.StockMovement
	for _, m := range r.t.state.movements {
		if m.TenantID == tenantID && m.WarehouseID == key.WarehouseID && m.ProductID == key.ProductID {
			movs = append(movs, m)
		}
	}
	return inventory.OnHand(movs), nil
}

func (r movementRepo) List(_ context.Context, tenantID string, f repository.MovementFilter) ([]entity.StockMovement, error) {
	var out []entity.StockMovement
	for _, m := range r.t.state.movements {
		if m.TenantID != tenantID ||
			(f.WarehouseID != "" && m.WarehouseID != f.WarehouseID) ||
			(f.ProductID != "" && m.ProductID != f.ProductID) ||
			(f.From != nil && m.CreatedAt.Before(*f.From)) ||
			(f.To != nil && !m.CreatedAt.Before(*f.To)) {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

type stockRepo struct{ t *txState }

// GetForUpdate crea la fila si falta. El bloqueo lo da el mutex del store.
func (r stockRepo) GetForUpdate(_ context.Context, tenantID string, key entity.StockKey) (*entity.StockLevel, error) {
	k := stockKey{tenant: tenantID, key: key}
	lvl, ok := r.t.state.levels[k]
	if !ok {
		lvl = entity.StockLevel{TenantID: tenantID, WarehouseID: key.WarehouseID, ProductID: key.ProductID, CreatedAt: time.Now()}
		r.t.state.levels[k] = lvl
	}
	return &lvl, nil
}
