package fulfillment

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/homecare-fulfillment/internal/application/dto"
	"github.com/jhoicas/homecare-fulfillment/internal/application/ports"
	"github.com/jhoicas/homecare-fulfillment/internal/domain"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/inventory"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/repository"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/sequence"
)

// DeliveryConfig parámetros operativos de entregas.
type DeliveryConfig struct {
	MinEvidence int
	Prefix      string
}

// DeliveryUseCase maneja PACKED → IN_TRANSIT → DELIVERED → CLOSED y el compromiso de stock.
type DeliveryUseCase struct {
	tx      ports.TxRunner
	seq     ports.Sequencer
	storage ports.ObjectStorage
	audit   ports.AuditSink
	log     zerolog.Logger
	cfg     DeliveryConfig
}

// NewDeliveryUseCase construye el caso de uso. MinEvidence < 1 se toma como 1.
func NewDeliveryUseCase(tx ports.TxRunner, seq ports.Sequencer, storage ports.ObjectStorage, audit ports.AuditSink, log zerolog.Logger, cfg DeliveryConfig) *DeliveryUseCase {
	if cfg.MinEvidence < 1 {
		cfg.MinEvidence = 1
	}
	if cfg.Prefix == "" {
		cfg.Prefix = entity.PrefixDelivery
	}
	return &DeliveryUseCase{tx: tx, seq: seq, storage: storage, audit: audit, log: log, cfg: cfg}
}

// Create crea la entrega de una lista empacada. Una segunda llamada devuelve la existente (created=false).
func (uc *DeliveryUseCase) Create(ctx context.Context, actor entity.Actor, pickListID string) (*entity.Delivery, bool, error) {
	var (
		d       *entity.Delivery
		created bool
	)
	err := uc.tx.Run(ctx, func(s repository.Stores) error {
		pl, err := lockPickList(ctx, s, actor.TenantID, pickListID)
		if err != nil {
			return err
		}
		d, err = s.Deliveries.GetByPickListID(ctx, actor.TenantID, pickListID)
		if err != nil || d != nil {
			return err
		}
		if pl.Status != entity.PickListPacked {
			return domain.ErrInvalidStatus
		}
		order, err := s.Orders.GetByID(ctx, actor.TenantID, pl.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrOrderNotFound
		}
		now := time.Now()
		period := sequence.Period(now)
		n, err := uc.seq.Next(ctx, actor.TenantID, uc.cfg.Prefix, period)
		if err != nil {
			return fmt.Errorf("numerar entrega: %w", err)
		}
		d = &entity.Delivery{
			ID:         uuid.New().String(),
			TenantID:   actor.TenantID,
			PickListID: pl.ID,
			OrderID:    order.ID,
			PatientID:  order.PatientID,
			Number:     sequence.Format(uc.cfg.Prefix, period, n),
			Status:     entity.DeliveryPacked,
			CreatedAt:  now,
		}
		created = true
		return s.Deliveries.Create(ctx, d)
	})
	if err != nil {
		return nil, false, err
	}
	if created {
		uc.log.Info().Str("tenant_id", actor.TenantID).Str("number", d.Number).Msg("entrega creada")
		uc.audit.Record(ctx, entity.NewAuditEntry(actor, "delivery.created", "delivery", d.ID,
			map[string]string{"number": d.Number, "pick_list_id": pickListID}))
	}
	return d, created, nil
}

// Get devuelve la entrega y su cantidad de evidencias.
func (uc *DeliveryUseCase) Get(ctx context.Context, tenantID, id string) (*entity.Delivery, int, error) {
	var (
		d     *entity.Delivery
		count int
	)
	err := uc.tx.Run(ctx, func(s repository.Stores) error {
		var err error
		d, err = s.Deliveries.GetByID(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if d == nil {
			return domain.ErrDeliveryNotFound
		}
		count, err = s.Deliveries.CountEvidence(ctx, tenantID, id)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return d, count, nil
}

// ListEvidence lista las evidencias en orden de carga.
func (uc *DeliveryUseCase) ListEvidence(ctx context.Context, tenantID, id string) ([]entity.DeliveryEvidence, error) {
	var out []entity.DeliveryEvidence
	err := uc.tx.Run(ctx, func(s repository.Stores) error {
		d, err := s.Deliveries.GetByID(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if d == nil {
			return domain.ErrDeliveryNotFound
		}
		out, err = s.Deliveries.ListEvidence(ctx, tenantID, id)
		return err
	})
	return out, err
}

// MarkInTransit registra la firma del transportista.
func (uc *DeliveryUseCase) MarkInTransit(ctx context.Context, actor entity.Actor, id string, in dto.CarrierSignatureRequest) (*entity.Delivery, error) {
	return uc.transition(ctx, actor, id, "delivery.in_transit", func(_ repository.Stores, d *entity.Delivery, now time.Time) error {
		return d.MarkInTransit(in.Name, in.DNI, now)
	})
}

// Close cierra una entrega entregada.
func (uc *DeliveryUseCase) Close(ctx context.Context, actor entity.Actor, id string) (*entity.Delivery, error) {
	return uc.transition(ctx, actor, id, "delivery.closed", func(_ repository.Stores, d *entity.Delivery, now time.Time) error {
		return d.Close(now)
	})
}

// ReportIncident marca la entrega como fallida. El stock reservado no se compromete.
func (uc *DeliveryUseCase) ReportIncident(ctx context.Context, actor entity.Actor, id string, in dto.DeliveryIncidentRequest) (*entity.Delivery, error) {
	if !entity.IsValidIncidentCause(in.Cause) {
		return nil, domain.ErrValidation.With("causa de incidencia desconocida: " + in.Cause)
	}
	return uc.transition(ctx, actor, id, "delivery.incident", func(s repository.Stores, d *entity.Delivery, now time.Time) error {
		inc := &entity.Incident{
			ID:          uuid.New().String(),
			TenantID:    actor.TenantID,
			Cause:       in.Cause,
			Description: in.Description,
			CreatedBy:   actor.UserID,
			CreatedAt:   now,
		}
		if err := d.ReportIncident(inc.ID); err != nil {
			return err
		}
		return s.Incidents.Create(ctx, inc)
	})
}

// UploadEvidence sube el archivo y registra la evidencia. El objeto se guarda antes de abrir la
// transacción: si el almacenamiento falla no queda ninguna fila.
func (uc *DeliveryUseCase) UploadEvidence(ctx context.Context, actor entity.Actor, id string, f dto.UploadedFile) (*entity.DeliveryEvidence, string, error) {
	if len(f.Data) == 0 {
		return nil, "", domain.ErrValidation.With("archivo vacío")
	}
	d, _, err := uc.Get(ctx, actor.TenantID, id)
	if err != nil {
		return nil, "", err
	}
	if err := d.AcceptsEvidence(); err != nil {
		return nil, "", err
	}

	evID := uuid.New().String()
	name := sanitizeFileName(f.Name)
	key := fmt.Sprintf("tenants/%s/deliveries/%s/evidence/%s-%s", actor.TenantID, id, evID, name)
	obj, err := uc.storage.Upload(ctx, key, f.Data, f.ContentType)
	if err != nil {
		uc.log.Error().Err(err).Str("delivery_id", id).Msg("error subiendo evidencia")
		return nil, "", fmt.Errorf("subir evidencia: %w", err)
	}

	ev := &entity.DeliveryEvidence{
		ID:         evID,
		TenantID:   actor.TenantID,
		DeliveryID: id,
		FileKey:    obj.Key,
		FileName:   name,
		MimeType:   f.ContentType,
		Size:       int64(len(f.Data)),
		UploadedBy: actor.UserID,
		CreatedAt:  time.Now(),
	}
	err = uc.tx.Run(ctx, func(s repository.Stores) error {
		locked, err := s.Deliveries.GetForUpdate(ctx, actor.TenantID, id)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.ErrDeliveryNotFound
		}
		if err := locked.AcceptsEvidence(); err != nil {
			return err
		}
		return s.Deliveries.AddEvidence(ctx, ev)
	})
	if err != nil {
		return nil, "", err
	}
	uc.audit.Record(ctx, entity.NewAuditEntry(actor, "delivery.evidence_added", "delivery", id,
		map[string]string{"evidence_id": ev.ID, "file_key": ev.FileKey}))
	return ev, obj.URL, nil
}

// MarkDelivered registra la firma de quien recibe y, si la lista aún no comprometió stock, emite un
// movimiento OUT por ítem con cantidad preparada. Todo en la misma transacción; el compromiso ocurre una sola vez.
func (uc *DeliveryUseCase) MarkDelivered(ctx context.Context, actor entity.Actor, id string, in dto.MarkDeliveredRequest) (*entity.Delivery, error) {
	receiver, err := entity.ReceiverSignature{Name: in.ReceiverName, DNI: in.ReceiverDNI, Relation: in.ReceiverRelation}.Normalized()
	if err != nil {
		return nil, err
	}
	var committed int
	d, err := uc.transition(ctx, actor, id, "delivery.delivered", func(s repository.Stores, d *entity.Delivery, now time.Time) error {
		count, err := s.Deliveries.CountEvidence(ctx, actor.TenantID, d.ID)
		if err != nil {
			return err
		}
		if err := d.MarkDelivered(receiver, count, uc.cfg.MinEvidence, now); err != nil {
			return err
		}
		pl, err := lockPickList(ctx, s, actor.TenantID, d.PickListID)
		if err != nil {
			return err
		}
		committed, err = commitStock(ctx, s, actor, pl, d, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	if committed > 0 {
		uc.log.Info().Str("delivery_id", d.ID).Int("movements", committed).Msg("stock comprometido por entrega")
	}
	return d, nil
}

// commitStock emite los OUT de la lista y marca StockCommittedAt. Devuelve cuántos movimientos creó.
func commitStock(ctx context.Context, s repository.Stores, actor entity.Actor, pl *entity.PickList, d *entity.Delivery, now time.Time) (int, error) {
	if pl.StockCommittedAt != nil {
		return 0, nil
	}
	picked := make(map[entity.StockKey]decimal.Decimal)
	for _, it := range pl.Items {
		if !it.PickedQty.IsPositive() {
			continue
		}
		if it.WarehouseID == "" {
			return 0, domain.ErrWarehouseRequired
		}
		k := entity.StockKey{WarehouseID: it.WarehouseID, ProductID: it.ProductID}
		picked[k] = picked[k].Add(it.PickedQty)
	}
	for _, k := range inventory.SortedKeys(picked) {
		if _, err := s.Stock.GetForUpdate(ctx, actor.TenantID, k); err != nil {
			return 0, fmt.Errorf("bloquear saldo: %w", err)
		}
	}
	n := 0
	for _, it := range pl.Items {
		if !it.PickedQty.IsPositive() {
			continue
		}
		m := &entity.StockMovement{
			ID:            uuid.New().String(),
			TenantID:      actor.TenantID,
			WarehouseID:   it.WarehouseID,
			ProductID:     it.ProductID,
			Kind:          entity.MovementKindOut,
			Quantity:      it.PickedQty,
			ReferenceType: entity.ReferenceDelivery,
			ReferenceID:   d.ID,
			CreatedBy:     actor.UserID,
			CreatedAt:     now,
		}
		if err := s.Movements.Create(ctx, m); err != nil {
			return 0, err
		}
		n++
	}
	pl.CommitStock(now)
	return n, s.PickLists.Update(ctx, pl)
}

// transition bloquea la entrega, aplica fn y persiste. Audita tras el commit.
func (uc *DeliveryUseCase) transition(ctx context.Context, actor entity.Actor, id, action string, fn func(s repository.Stores, d *entity.Delivery, now time.Time) error) (*entity.Delivery, error) {
	var d *entity.Delivery
	err := uc.tx.Run(ctx, func(s repository.Stores) error {
		var err error
		d, err = s.Deliveries.GetForUpdate(ctx, actor.TenantID, id)
		if err != nil {
			return err
		}
		if d == nil {
			return domain.ErrDeliveryNotFound
		}
		if err := fn(s, d, time.Now()); err != nil {
			return err
		}
		return s.Deliveries.Update(ctx, d)
	})
	if err != nil {
		uc.log.Debug().Err(err).Str("delivery_id", id).Str("action", action).Msg("transición rechazada")
		return nil, err
	}
	uc.audit.Record(ctx, entity.NewAuditEntry(actor, action, "delivery", d.ID,
		map[string]string{"status": d.Status, "number": d.Number}))
	return d, nil
}

// sanitizeFileName deja solo el nombre base, sin separadores ni espacios.
func sanitizeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	if name == "" || name == "." || name == "/" {
		return "archivo-" + strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return name
}
