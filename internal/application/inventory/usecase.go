package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/homecare-fulfillment/internal/application/dto"
	"github.com/jhoicas/homecare-fulfillment/internal/application/ports"
	"github.com/jhoicas/homecare-fulfillment/internal/domain"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/repository"
)

// StockUseCase registra movimientos manuales y consulta disponibilidad.
type StockUseCase struct {
	tx    ports.TxRunner
	audit ports.AuditSink
	log   zerolog.Logger
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(tx ports.TxRunner, audit ports.AuditSink, log zerolog.Logger) *StockUseCase {
	return &StockUseCase{tx: tx, audit: audit, log: log}
}

// RegisterMovement registra una entrada, salida o ajuste. Las salidas (consumo en visita incluido)
// se validan contra el disponible, no contra el saldo: lo reservado por listas congeladas no se toca.
func (uc *StockUseCase) RegisterMovement(ctx context.Context, actor entity.Actor, in dto.RegisterMovementRequest) (*entity.StockMovement, error) {
	if !entity.IsValidMovementKind(in.Kind) {
		return nil, domain.ErrValidation.With("tipo de movimiento desconocido: " + in.Kind)
	}
	if !in.Quantity.IsPositive() {
		return nil, domain.ErrInvalidQuantity
	}
	refType := in.ReferenceType
	if refType == "" {
		refType = entity.ReferenceManual
	}
	if refType == entity.ReferenceVisit && in.Kind != entity.MovementKindOut {
		return nil, domain.ErrValidation.With("el consumo en visita es una salida")
	}

	key := entity.StockKey{WarehouseID: in.WarehouseID, ProductID: in.ProductID}
	mov := &entity.StockMovement{
		ID:            uuid.New().String(),
		TenantID:      actor.TenantID,
		WarehouseID:   in.WarehouseID,
		ProductID:     in.ProductID,
		BatchID:       in.BatchID,
		Kind:          in.Kind,
		Quantity:      in.Quantity,
		ReferenceType: refType,
		ReferenceID:   in.ReferenceID,
		CreatedBy:     actor.UserID,
		CreatedAt:     time.Now(),
	}

	err := uc.tx.Run(ctx, func(s repository.Stores) error {
		wh, err := s.Warehouses.GetByID(ctx, actor.TenantID, in.WarehouseID)
		if err != nil {
			return err
		}
		if wh == nil {
			return domain.ErrWarehouseNotFound
		}
		p, err := s.Products.GetByID(ctx, actor.TenantID, in.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrProductNotFound
		}
		if in.Kind == entity.MovementKindOut {
			avail, err := AvailableInTx(ctx, s, actor.TenantID, key, "")
			if err != nil {
				return err
			}
			if avail.Available.LessThan(in.Quantity) {
				return domain.ErrInsufficientStock.With("disponible " + avail.Available.String())
			}
		} else if _, err := s.Stock.GetForUpdate(ctx, actor.TenantID, key); err != nil {
			return err
		}
		return s.Movements.Create(ctx, mov)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("tenant_id", actor.TenantID).Str("movement_id", mov.ID).
		Str("kind", mov.Kind).Str("quantity", mov.Quantity.String()).Msg("movimiento de stock registrado")
	uc.audit.Record(ctx, entity.NewAuditEntry(actor, "stock.movement."+mov.Kind, "stock_movement", mov.ID,
		map[string]string{"warehouse_id": mov.WarehouseID, "product_id": mov.ProductID, "quantity": mov.Quantity.String()}))
	return mov, nil
}

// GetAvailability devuelve saldo, reservado y disponible de un producto en una bodega.
func (uc *StockUseCase) GetAvailability(ctx context.Context, tenantID string, key entity.StockKey) (entity.Availability, error) {
	var out entity.Availability
	err := uc.tx.Run(ctx, func(s repository.Stores) error {
		onHand, err := s.Movements.SumOnHand(ctx, tenantID, key)
		if err != nil {
			return err
		}
		reserved, err := s.PickLists.ReservedQty(ctx, tenantID, key, "")
		if err != nil {
			return err
		}
		out = entity.Availability{
			WarehouseID: key.WarehouseID,
			ProductID:   key.ProductID,
			OnHand:      onHand,
			Reserved:    reserved,
			Available:   onHand.Sub(reserved),
		}
		return nil
	})
	return out, err
}

// ListMovements lista el kardex del tenant.
func (uc *StockUseCase) ListMovements(ctx context.Context, tenantID string, f repository.MovementFilter) ([]entity.StockMovement, error) {
	var out []entity.StockMovement
	err := uc.tx.Run(ctx, func(s repository.Stores) error {
		var err error
		out, err = s.Movements.List(ctx, tenantID, f)
		return err
	})
	return out, err
}
