package fulfillment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	appinventory "github.com/jhoicas/homecare-fulfillment/internal/application/inventory"
	"github.com/jhoicas/homecare-fulfillment/internal/application/dto"
	"github.com/jhoicas/homecare-fulfillment/internal/application/ports"
	"github.com/jhoicas/homecare-fulfillment/internal/domain"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/inventory"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/repository"
)

// PickListUseCase maneja la máquina de estados DRAFT → FROZEN → PACKED.
type PickListUseCase struct {
	tx    ports.TxRunner
	audit ports.AuditSink
	log   zerolog.Logger
}

// NewPickListUseCase construye el caso de uso.
func NewPickListUseCase(tx ports.TxRunner, audit ports.AuditSink, log zerolog.Logger) *PickListUseCase {
	return &PickListUseCase{tx: tx, audit: audit, log: log}
}

// Generate crea la lista de picking del pedido. Si ya existe la devuelve sin cambios (created=false).
func (uc *PickListUseCase) Generate(ctx context.Context, actor entity.Actor, orderID string) (*entity.PickList, bool, error) {
	var (
		pl      *entity.PickList
		created bool
	)
	err := uc.tx.Run(ctx, func(s repository.Stores) error {
		order, err := s.Orders.GetForUpdate(ctx, actor.TenantID, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrOrderNotFound
		}
		pl, err = s.PickLists.GetByOrderID(ctx, actor.TenantID, orderID)
		if err != nil || pl != nil {
			return err
		}
		if len(order.Items) == 0 {
			return domain.ErrValidation.With("el pedido no tiene ítems")
		}
		pl = &entity.PickList{
			ID:        uuid.New().String(),
			TenantID:  actor.TenantID,
			OrderID:   orderID,
			Status:    entity.PickListDraft,
			CreatedAt: time.Now(),
		}
		for _, it := range order.Items {
			pl.Items = append(pl.Items, entity.PickListItem{
				ID:           uuid.New().String(),
				PickListID:   pl.ID,
				ProductID:    it.ProductID,
				RequestedQty: it.Quantity,
				PickedQty:    decimal.Zero,
			})
		}
		created = true
		return s.PickLists.Create(ctx, pl)
	})
	if err != nil {
		return nil, false, err
	}
	if created {
		uc.audit.Record(ctx, entity.NewAuditEntry(actor, "picklist.created", "pick_list", pl.ID, map[string]string{"order_id": orderID}))
	}
	return pl, created, nil
}

// Get devuelve la lista con sus ítems.
func (uc *PickListUseCase) Get(ctx context.Context, tenantID, id string) (*entity.PickList, error) {
	var pl *entity.PickList
	err := uc.tx.Run(ctx, func(s repository.Stores) error {
		var err error
		pl, err = s.PickLists.GetByID(ctx, tenantID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if pl == nil {
		return nil, domain.ErrPickListNotFound
	}
	return pl, nil
}

// AssignWarehouse asigna la bodega de despacho de un ítem.
func (uc *PickListUseCase) AssignWarehouse(ctx context.Context, actor entity.Actor, pickListID, itemID, warehouseID string) (*entity.PickList, error) {
	var pl *entity.PickList
	err := uc.tx.Run(ctx, func(s repository.Stores) error {
		wh, err := s.Warehouses.GetByID(ctx, actor.TenantID, warehouseID)
		if err != nil {
			return err
		}
		if wh == nil || !wh.Active {
			return domain.ErrWarehouseNotFound
		}
		pl, err = lockPickList(ctx, s, actor.TenantID, pickListID)
		if err != nil {
			return err
		}
		it, err := pl.AssignWarehouse(itemID, warehouseID)
		if err != nil {
			return err
		}
		return s.PickLists.UpdateItem(ctx, actor.TenantID, it)
	})
	if err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, entity.NewAuditEntry(actor, "picklist.warehouse_assigned", "pick_list", pickListID,
		map[string]string{"item_id": itemID, "warehouse_id": warehouseID}))
	return pl, nil
}

// Freeze congela la lista reservando el total solicitado. Cada bodega+producto se bloquea en orden
// y se compara su disponible (excluyendo esta lista) contra la demanda agregada; si alguna no alcanza
// falla con INSUFFICIENT_STOCK y nada cambia.
func (uc *PickListUseCase) Freeze(ctx context.Context, actor entity.Actor, pickListID string) (*entity.PickList, error) {
	var pl *entity.PickList
	err := uc.tx.Run(ctx, func(s repository.Stores) error {
		var err error
		pl, err = lockPickList(ctx, s, actor.TenantID, pickListID)
		if err != nil {
			return err
		}
		if pl.Status != entity.PickListDraft {
			return domain.ErrInvalidStatus
		}
		demand, err := pl.Demand()
		if err != nil {
			return err
		}
		if err := inventory.CheckDemand(demand, appinventory.AvailableFunc(ctx, s, actor.TenantID, pl.ID)); err != nil {
			return err
		}
		if err := pl.Freeze(time.Now()); err != nil {
			return err
		}
		for i := range pl.Items {
			if err := s.PickLists.UpdateItem(ctx, actor.TenantID, &pl.Items[i]); err != nil {
				return err
			}
		}
		return s.PickLists.Update(ctx, pl)
	})
	if err != nil {
		uc.log.Debug().Err(err).Str("pick_list_id", pickListID).Msg("congelamiento rechazado")
		return nil, err
	}
	uc.log.Info().Str("tenant_id", actor.TenantID).Str("pick_list_id", pl.ID).Msg("lista de picking congelada")
	uc.audit.Record(ctx, entity.NewAuditEntry(actor, "picklist.frozen", "pick_list", pl.ID, nil))
	return pl, nil
}

// ReportIncident reduce la cantidad preparada de un ítem, dejando registrada la causa.
func (uc *PickListUseCase) ReportIncident(ctx context.Context, actor entity.Actor, pickListID, itemID string, in dto.ReportIncidentRequest) (*entity.PickList, *entity.Incident, error) {
	if !entity.IsValidIncidentCause(in.Cause) {
		return nil, nil, domain.ErrValidation.With("causa de incidencia desconocida: " + in.Cause)
	}
	inc := &entity.Incident{
		ID:          uuid.New().String(),
		TenantID:    actor.TenantID,
		Cause:       in.Cause,
		Description: in.Description,
		CreatedBy:   actor.UserID,
		CreatedAt:   time.Now(),
	}
	var pl *entity.PickList
	err := uc.tx.Run(ctx, func(s repository.Stores) error {
		var err error
		pl, err = lockPickList(ctx, s, actor.TenantID, pickListID)
		if err != nil {
			return err
		}
		it, err := pl.ReduceItem(itemID, in.NewQuantity, inc.ID)
		if err != nil {
			return err
		}
		if err := s.Incidents.Create(ctx, inc); err != nil {
			return err
		}
		return s.PickLists.UpdateItem(ctx, actor.TenantID, it)
	})
	if err != nil {
		return nil, nil, err
	}
	uc.audit.Record(ctx, entity.NewAuditEntry(actor, "picklist.item_reduced", "pick_list", pickListID,
		map[string]string{"item_id": itemID, "incident_id": inc.ID, "cause": inc.Cause, "new_quantity": in.NewQuantity.String()}))
	return pl, inc, nil
}

// Pack cierra la preparación (FROZEN → PACKED). La reserva sigue vigente hasta la entrega.
func (uc *PickListUseCase) Pack(ctx context.Context, actor entity.Actor, pickListID string) (*entity.PickList, error) {
	var pl *entity.PickList
	err := uc.tx.Run(ctx, func(s repository.Stores) error {
		var err error
		pl, err = lockPickList(ctx, s, actor.TenantID, pickListID)
		if err != nil {
			return err
		}
		if err := pl.Pack(time.Now()); err != nil {
			return err
		}
		return s.PickLists.Update(ctx, pl)
	})
	if err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, entity.NewAuditEntry(actor, "picklist.packed", "pick_list", pl.ID, nil))
	return pl, nil
}

func lockPickList(ctx context.Context, s repository.Stores, tenantID, id string) (*entity.PickList, error) {
	pl, err := s.PickLists.GetForUpdate(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if pl == nil {
		return nil, domain.ErrPickListNotFound
	}
	return pl, nil
}
