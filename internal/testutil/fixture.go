// Package testutil arma un tenant completo sobre el store en memoria para los tests de casos de uso.
package testutil

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/homecare-fulfillment/internal/application/dto"
	"github.com/jhoicas/homecare-fulfillment/internal/application/fulfillment"
	"github.com/jhoicas/homecare-fulfillment/internal/application/inventory"
	"github.com/jhoicas/homecare-fulfillment/internal/application/ports"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
	"github.com/jhoicas/homecare-fulfillment/internal/infrastructure/audit"
	"github.com/jhoicas/homecare-fulfillment/internal/infrastructure/memory"
)

// Identificadores sembrados por NewFixture.
const (
	TenantID      = "tenant-1"
	OtherTenantID = "tenant-2"
	UserID        = "user-1"
	WarehouseID   = "wh-1"
	Warehouse2ID  = "wh-2"
	ProductID     = "prod-1"
	Product2ID    = "prod-2"
	PatientID     = "pat-1"
	Patient2ID    = "pat-2"
	EpisodeID     = "ep-1"
	PayerID       = "payer-1"
	Payer2ID      = "payer-2"
	PlanID        = "plan-1"
	StageIntake   = "st-intake"
	StageCare     = "st-care"
	StageClosing  = "st-closing"
)

// Storage es un ObjectStorage en memoria. Con Fail=true toda subida falla.
type Storage struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Fail    bool
}

// NewStorage construye un Storage vacío.
func NewStorage() *Storage {
	return &Storage{Objects: map[string][]byte{}}
}

func (s *Storage) Upload(_ context.Context, key string, data []byte, _ string) (ports.StoredObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail {
		return ports.StoredObject{}, errors.New("almacenamiento no disponible")
	}
	s.Objects[key] = data
	return ports.StoredObject{Key: key, URL: "https://files.test/" + key}, nil
}

// Fixture agrupa store, secuenciador y los casos de uso de logística de un tenant sembrado.
type Fixture struct {
	Store   *memory.Store
	Seq     *memory.Sequencer
	Storage *Storage
	Log     zerolog.Logger
	Actor   entity.Actor

	Stock      *inventory.StockUseCase
	Orders     *fulfillment.OrderUseCase
	PickLists  *fulfillment.PickListUseCase
	Deliveries *fulfillment.DeliveryUseCase
}

// NewFixture siembra TenantID con todos los módulos, dos bodegas, dos productos, dos pacientes,
// un episodio, dos financiadores (payer-1 con plan-1) y tres etapas de flujo.
func NewFixture() *Fixture {
	store := memory.New()
	for _, id := range []string{TenantID, OtherTenantID} {
		store.AddTenant(entity.Tenant{ID: id, Name: "Prestador " + id, Status: entity.TenantStatusActive})
		for _, m := range []string{entity.ModuleLogistics, entity.ModuleAuthorizations, entity.ModuleBilling} {
			store.AddModule(entity.TenantModule{TenantID: id, ModuleName: m, IsActive: true})
		}
	}
	store.AddWarehouse(entity.Warehouse{ID: WarehouseID, TenantID: TenantID, Name: "Central", Active: true})
	store.AddWarehouse(entity.Warehouse{ID: Warehouse2ID, TenantID: TenantID, Name: "Norte", Active: true})
	store.AddProduct(entity.Product{ID: ProductID, TenantID: TenantID, SKU: "GAS-01", Name: "Gasa estéril", UnitMeasure: "unidad"})
	store.AddProduct(entity.Product{ID: Product2ID, TenantID: TenantID, SKU: "JER-05", Name: "Jeringa 5ml", UnitMeasure: "unidad"})
	store.AddPatient(entity.Patient{ID: PatientID, TenantID: TenantID, FullName: "Ana Pérez", DocumentID: "30111222"})
	store.AddPatient(entity.Patient{ID: Patient2ID, TenantID: TenantID, FullName: "Luis Gómez", DocumentID: "28999000"})
	store.AddStage(entity.WorkflowStage{ID: StageIntake, TenantID: TenantID, Name: "Ingreso", Position: 1})
	store.AddStage(entity.WorkflowStage{ID: StageCare, TenantID: TenantID, Name: "Atención", Position: 2})
	store.AddStage(entity.WorkflowStage{ID: StageClosing, TenantID: TenantID, Name: "Alta", Position: 3, IsTerminal: true})
	store.AddEpisode(entity.Episode{ID: EpisodeID, TenantID: TenantID, PatientID: PatientID, StageID: StageIntake, Status: entity.EpisodeStatusActive})
	store.AddPayer(entity.Payer{ID: PayerID, TenantID: TenantID, Name: "OSDE", TaxID: "30-11111111-1"})
	store.AddPayer(entity.Payer{ID: Payer2ID, TenantID: TenantID, Name: "Swiss", TaxID: "30-22222222-2"})
	store.AddPlan(entity.Plan{ID: PlanID, TenantID: TenantID, PayerID: PayerID, Name: "Plan 310"})

	log := zerolog.Nop()
	seq := memory.NewSequencer()
	storage := NewStorage()
	sink := audit.Nop{}
	return &Fixture{
		Store:      store,
		Seq:        seq,
		Storage:    storage,
		Log:        log,
		Actor:      entity.Actor{UserID: UserID, TenantID: TenantID, Role: entity.RoleAdmin},
		Stock:      inventory.NewStockUseCase(store, sink, log),
		Orders:     fulfillment.NewOrderUseCase(store, sink, log),
		PickLists:  fulfillment.NewPickListUseCase(store, sink, log),
		Deliveries: fulfillment.NewDeliveryUseCase(store, seq, storage, sink, log, fulfillment.DeliveryConfig{MinEvidence: 1}),
	}
}

// Dec parsea un decimal literal.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Receive registra un ingreso de stock.
func (f *Fixture) Receive(t testing.TB, warehouseID, productID, qty string) {
	t.Helper()
	_, err := f.Stock.RegisterMovement(context.Background(), f.Actor, dto.RegisterMovementRequest{
		WarehouseID: warehouseID,
		ProductID:   productID,
		Kind:        entity.MovementKindIn,
		Quantity:    Dec(qty),
	})
	require.NoError(t, err)
}

// Availability devuelve el disponible de producto en bodega.
func (f *Fixture) Availability(t testing.TB, warehouseID, productID string) entity.Availability {
	t.Helper()
	a, err := f.Stock.GetAvailability(context.Background(), TenantID, entity.StockKey{WarehouseID: warehouseID, ProductID: productID})
	require.NoError(t, err)
	return a
}

// DraftPickList crea una orden de ProductID × qty para PatientID y genera su lista con la bodega asignada.
func (f *Fixture) DraftPickList(t testing.TB, qty string) *entity.PickList {
	t.Helper()
	ctx := context.Background()
	o, err := f.Orders.CreateOrder(ctx, f.Actor, dto.CreateOrderRequest{
		PatientID: PatientID,
		EpisodeID: EpisodeID,
		Items:     []dto.ItemRequest{{ProductID: ProductID, Quantity: Dec(qty)}},
	})
	require.NoError(t, err)
	pl, _, err := f.PickLists.Generate(ctx, f.Actor, o.ID)
	require.NoError(t, err)
	for _, it := range pl.Items {
		pl, err = f.PickLists.AssignWarehouse(ctx, f.Actor, pl.ID, it.ID, WarehouseID)
		require.NoError(t, err)
	}
	return pl
}

// PackedPickList lleva una lista nueva hasta PACKED. Requiere stock suficiente en WarehouseID.
func (f *Fixture) PackedPickList(t testing.TB, qty string) *entity.PickList {
	t.Helper()
	ctx := context.Background()
	pl := f.DraftPickList(t, qty)
	_, err := f.PickLists.Freeze(ctx, f.Actor, pl.ID)
	require.NoError(t, err)
	pl, err = f.PickLists.Pack(ctx, f.Actor, pl.ID)
	require.NoError(t, err)
	return pl
}

// InTransitDelivery crea la entrega de una lista empacada, sube una evidencia y la despacha.
func (f *Fixture) InTransitDelivery(t testing.TB, qty string) *entity.Delivery {
	t.Helper()
	ctx := context.Background()
	pl := f.PackedPickList(t, qty)
	d, _, err := f.Deliveries.Create(ctx, f.Actor, pl.ID)
	require.NoError(t, err)
	_, _, err = f.Deliveries.UploadEvidence(ctx, f.Actor, d.ID, dto.UploadedFile{
		Name: "remito.jpg", ContentType: "image/jpeg", Data: []byte("jpeg"),
	})
	require.NoError(t, err)
	d, err = f.Deliveries.MarkInTransit(ctx, f.Actor, d.ID, dto.CarrierSignatureRequest{Name: "Transportes Sur", DNI: "20123456"})
	require.NoError(t, err)
	return d
}

// DeliveredDelivery lleva una entrega nueva de qty unidades hasta DELIVERED.
func (f *Fixture) DeliveredDelivery(t testing.TB, qty string) *entity.Delivery {
	t.Helper()
	d := f.InTransitDelivery(t, qty)
	d, err := f.Deliveries.MarkDelivered(context.Background(), f.Actor, d.ID, Receiver())
	require.NoError(t, err)
	return d
}

// Receiver es una firma de recepción válida.
func Receiver() dto.MarkDeliveredRequest {
	return dto.MarkDeliveredRequest{ReceiverName: "María Pérez", ReceiverDNI: "31222333", ReceiverRelation: "hija"}
}
