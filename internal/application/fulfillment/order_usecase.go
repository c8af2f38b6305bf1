// Package fulfillment implementa el circuito pedido → kit → picking → entrega.
package fulfillment

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/homecare-fulfillment/internal/application/dto"
	"github.com/jhoicas/homecare-fulfillment/internal/application/ports"
	"github.com/jhoicas/homecare-fulfillment/internal/domain"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/repository"
)

// OrderUseCase gestiona pedidos aprobados y plantillas de kit.
type OrderUseCase struct {
	tx    ports.TxRunner
	audit ports.AuditSink
	log   zerolog.Logger
}

// NewOrderUseCase construye el caso de uso.
func NewOrderUseCase(tx ports.TxRunner, audit ports.AuditSink, log zerolog.Logger) *OrderUseCase {
	return &OrderUseCase{tx: tx, audit: audit, log: log}
}

// CreateOrder crea un pedido aprobado con sus ítems iniciales.
func (uc *OrderUseCase) CreateOrder(ctx context.Context, actor entity.Actor, in dto.CreateOrderRequest) (*entity.ApprovedOrder, error) {
	order := &entity.ApprovedOrder{
		ID:        uuid.New().String(),
		TenantID:  actor.TenantID,
		PatientID: in.PatientID,
		EpisodeID: in.EpisodeID,
		Notes:     in.Notes,
		CreatedBy: actor.UserID,
		CreatedAt: time.Now(),
	}
	err := uc.tx.Run(ctx, func(s repository.Stores) error {
		if err := checkPatientEpisode(ctx, s, actor.TenantID, in.PatientID, in.EpisodeID); err != nil {
			return err
		}
		items, err := buildOrderItems(ctx, s, actor.TenantID, order.ID, in.Items, "", decimal.NewFromInt(1))
		if err != nil {
			return err
		}
		order.Items = items
		return s.Orders.Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("tenant_id", actor.TenantID).Str("order_id", order.ID).Int("items", len(order.Items)).Msg("pedido aprobado creado")
	uc.audit.Record(ctx, entity.NewAuditEntry(actor, "order.created", "approved_order", order.ID, map[string]string{"patient_id": order.PatientID}))
	return order, nil
}

// AddItems agrega ítems a un pedido que todavía no tiene lista de picking.
func (uc *OrderUseCase) AddItems(ctx context.Context, actor entity.Actor, orderID string, in []dto.ItemRequest) (*entity.ApprovedOrder, error) {
	return uc.appendItems(ctx, actor, orderID, in, "", decimal.NewFromInt(1))
}

// ApplyKit expande un kit en ítems del pedido (cantidad × multiplicador).
func (uc *OrderUseCase) ApplyKit(ctx context.Context, actor entity.Actor, orderID string, in dto.ApplyKitRequest) (*entity.ApprovedOrder, error) {
	mult := in.Multiplier
	if mult.IsZero() {
		mult = decimal.NewFromInt(1)
	}
	if !mult.IsPositive() {
		return nil, domain.ErrInvalidQuantity
	}
	var kitItems []dto.ItemRequest
	err := uc.tx.Run(ctx, func(s repository.Stores) error {
		kit, err := s.Kits.GetByID(ctx, actor.TenantID, in.KitID)
		if err != nil {
			return err
		}
		if kit == nil {
			return domain.ErrKitNotFound
		}
		for _, it := range kit.Items {
			kitItems = append(kitItems, dto.ItemRequest{ProductID: it.ProductID, Quantity: it.Quantity})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(kitItems) == 0 {
		return nil, domain.ErrValidation.With("el kit no tiene ítems")
	}
	return uc.appendItems(ctx, actor, orderID, kitItems, in.KitID, mult)
}

func (uc *OrderUseCase) appendItems(ctx context.Context, actor entity.Actor, orderID string, in []dto.ItemRequest, kitID string, mult decimal.Decimal) (*entity.ApprovedOrder, error) {
	if len(in) == 0 {
		return nil, domain.ErrValidation.With("sin ítems")
	}
	var order *entity.ApprovedOrder
	err := uc.tx.Run(ctx, func(s repository.Stores) error {
		var err error
		order, err = s.Orders.GetForUpdate(ctx, actor.TenantID, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrOrderNotFound
		}
		pl, err := s.PickLists.GetByOrderID(ctx, actor.TenantID, orderID)
		if err != nil {
			return err
		}
		if pl != nil {
			return domain.ErrOrderLocked
		}
		items, err := buildOrderItems(ctx, s, actor.TenantID, orderID, in, kitID, mult)
		if err != nil {
			return err
		}
		if err := s.Orders.AddItems(ctx, actor.TenantID, items); err != nil {
			return err
		}
		order.Items = append(order.Items, items...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	meta := map[string]string{"items": strconv.Itoa(len(in))}
	if kitID != "" {
		meta["kit_id"] = kitID
	}
	uc.audit.Record(ctx, entity.NewAuditEntry(actor, "order.items_added", "approved_order", orderID, meta))
	return order, nil
}

// GetOrder devuelve el pedido con sus ítems.
func (uc *OrderUseCase) GetOrder(ctx context.Context, tenantID, orderID string) (*entity.ApprovedOrder, error) {
	var order *entity.ApprovedOrder
	err := uc.tx.Run(ctx, func(s repository.Stores) error {
		var err error
		order, err = s.Orders.GetByID(ctx, tenantID, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}

// CreateKit crea una plantilla de kit.
func (uc *OrderUseCase) CreateKit(ctx context.Context, actor entity.Actor, in dto.CreateKitRequest) (*entity.KitTemplate, error) {
	kit := &entity.KitTemplate{
		ID:          uuid.New().String(),
		TenantID:    actor.TenantID,
		Name:        in.Name,
		Description: in.Description,
		CreatedAt:   time.Now(),
	}
	if kit.Name == "" {
		return nil, domain.ErrValidation.With("nombre obligatorio")
	}
	err := uc.tx.Run(ctx, func(s repository.Stores) error {
		items, err := buildKitItems(ctx, s, actor.TenantID, kit.ID, in.Items)
		if err != nil {
			return err
		}
		kit.Items = items
		return s.Kits.Create(ctx, kit)
	})
	if err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, entity.NewAuditEntry(actor, "kit.created", "kit_template", kit.ID, nil))
	return kit, nil
}

// AddKitItems agrega productos a un kit existente.
func (uc *OrderUseCase) AddKitItems(ctx context.Context, actor entity.Actor, kitID string, in []dto.ItemRequest) (*entity.KitTemplate, error) {
	if len(in) == 0 {
		return nil, domain.ErrValidation.With("sin ítems")
	}
	var kit *entity.KitTemplate
	err := uc.tx.Run(ctx, func(s repository.Stores) error {
		var err error
		kit, err = s.Kits.GetByID(ctx, actor.TenantID, kitID)
		if err != nil {
			return err
		}
		if kit == nil {
			return domain.ErrKitNotFound
		}
		items, err := buildKitItems(ctx, s, actor.TenantID, kitID, in)
		if err != nil {
			return err
		}
		if err := s.Kits.AddItems(ctx, actor.TenantID, items); err != nil {
			return err
		}
		kit.Items = append(kit.Items, items...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.audit.Record(ctx, entity.NewAuditEntry(actor, "kit.items_added", "kit_template", kitID, nil))
	return kit, nil
}

func checkPatientEpisode(ctx context.Context, s repository.Stores, tenantID, patientID, episodeID string) error {
	p, err := s.Patients.GetPatient(ctx, tenantID, patientID)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.ErrPatientNotFound
	}
	if episodeID == "" {
		return nil
	}
	ep, err := s.Patients.GetEpisode(ctx, tenantID, episodeID)
	if err != nil {
		return err
	}
	if ep == nil {
		return domain.ErrEpisodeNotFound
	}
	if ep.PatientID != patientID {
		return domain.ErrEpisodePatientMismatch
	}
	return nil
}

func checkProduct(ctx context.Context, s repository.Stores, tenantID, productID string, qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return domain.ErrInvalidQuantity
	}
	p, err := s.Products.GetByID(ctx, tenantID, productID)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.ErrProductNotFound.With(productID)
	}
	return nil
}

func buildOrderItems(ctx context.Context, s repository.Stores, tenantID, orderID string, in []dto.ItemRequest, kitID string, mult decimal.Decimal) ([]entity.ApprovedOrderItem, error) {
	items := make([]entity.ApprovedOrderItem, 0, len(in))
	for _, it := range in {
		qty := it.Quantity.Mul(mult)
		if err := checkProduct(ctx, s, tenantID, it.ProductID, qty); err != nil {
			return nil, err
		}
		items = append(items, entity.ApprovedOrderItem{
			ID:        uuid.New().String(),
			OrderID:   orderID,
			ProductID: it.ProductID,
			Quantity:  qty,
			KitID:     kitID,
		})
	}
	return items, nil
}

func buildKitItems(ctx context.Context, s repository.Stores, tenantID, kitID string, in []dto.ItemRequest) ([]entity.KitTemplateItem, error) {
	items := make([]entity.KitTemplateItem, 0, len(in))
	for _, it := range in {
		if err := checkProduct(ctx, s, tenantID, it.ProductID, it.Quantity); err != nil {
			return nil, err
		}
		items = append(items, entity.KitTemplateItem{
			ID:        uuid.New().String(),
			KitID:     kitID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}
	return items, nil
}
