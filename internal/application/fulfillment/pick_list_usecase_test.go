package fulfillment_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/homecare-fulfillment/internal/application/dto"
	"github.com/jhoicas/homecare-fulfillment/internal/domain"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
	"github.com/jhoicas/homecare-fulfillment/internal/testutil"
)

var dec = testutil.Dec

// ─── Generación ───────────────────────────────────────────────────────────────

func TestGenerate_UnaListaPorOrden(t *testing.T) {
	f := testutil.NewFixture()
	ctx := context.Background()
	o, err := f.Orders.CreateOrder(ctx, f.Actor, dto.CreateOrderRequest{
		PatientID: testutil.PatientID,
		Items:     []dto.ItemRequest{{ProductID: testutil.ProductID, Quantity: dec("3")}},
	})
	require.NoError(t, err)

	first, created, err := f.PickLists.Generate(ctx, f.Actor, o.ID)
	require.NoError(t, err)
	assert.True(t, created)
	require.Len(t, first.Items, 1)
	assert.True(t, first.Items[0].PickedQty.IsZero())

	second, created, err := f.PickLists.Generate(ctx, f.Actor, o.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
}

func TestGenerate_BloqueaLaOrden(t *testing.T) {
	f := testutil.NewFixture()
	pl := f.DraftPickList(t, "2")

	_, err := f.Orders.AddItems(context.Background(), f.Actor, pl.OrderID,
		[]dto.ItemRequest{{ProductID: testutil.Product2ID, Quantity: dec("1")}})
	assert.ErrorIs(t, err, domain.ErrOrderLocked)
}

func TestGenerate_OrdenDeOtroTenant(t *testing.T) {
	f := testutil.NewFixture()
	pl := f.DraftPickList(t, "2")

	other := entity.Actor{UserID: "u2", TenantID: testutil.OtherTenantID, Role: entity.RoleAdmin}
	_, _, err := f.PickLists.Generate(context.Background(), other, pl.OrderID)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

// ─── Congelamiento ────────────────────────────────────────────────────────────

func TestFreeze_ReservaYDescuentaDisponible(t *testing.T) {
	f := testutil.NewFixture()
	f.Receive(t, testutil.WarehouseID, testutil.ProductID, "10")
	pl := f.DraftPickList(t, "4")

	frozen, err := f.PickLists.Freeze(context.Background(), f.Actor, pl.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PickListFrozen, frozen.Status)
	assert.True(t, dec("4").Equal(frozen.Items[0].PickedQty))

	a := f.Availability(t, testutil.WarehouseID, testutil.ProductID)
	assert.True(t, dec("10").Equal(a.OnHand))
	assert.True(t, dec("4").Equal(a.Reserved))
	assert.True(t, dec("6").Equal(a.Available))
}

func TestFreeze_SinBodegaAsignada(t *testing.T) {
	f := testutil.NewFixture()
	ctx := context.Background()
	o, err := f.Orders.CreateOrder(ctx, f.Actor, dto.CreateOrderRequest{
		PatientID: testutil.PatientID,
		Items:     []dto.ItemRequest{{ProductID: testutil.ProductID, Quantity: dec("1")}},
	})
	require.NoError(t, err)
	pl, _, err := f.PickLists.Generate(ctx, f.Actor, o.ID)
	require.NoError(t, err)

	_, err = f.PickLists.Freeze(ctx, f.Actor, pl.ID)
	assert.ErrorIs(t, err, domain.ErrWarehouseRequired)
}

func TestFreeze_StockInsuficienteNoCambiaNada(t *testing.T) {
	f := testutil.NewFixture()
	f.Receive(t, testutil.WarehouseID, testutil.ProductID, "3")
	pl := f.DraftPickList(t, "5")

	_, err := f.PickLists.Freeze(context.Background(), f.Actor, pl.ID)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	got, err := f.PickLists.Get(context.Background(), testutil.TenantID, pl.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PickListDraft, got.Status)
	assert.True(t, f.Availability(t, testutil.WarehouseID, testutil.ProductID).Reserved.IsZero())
}

func TestFreeze_ConcurrenteNuncaSobrevende(t *testing.T) {
	f := testutil.NewFixture()
	f.Receive(t, testutil.WarehouseID, testutil.ProductID, "10")

	const lists = 6
	ids := make([]string, lists)
	for i := range ids {
		ids[i] = f.DraftPickList(t, "3").ID
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		rejected int
		other    []error
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := f.PickLists.Freeze(context.Background(), f.Actor, id)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrInsufficientStock):
				rejected++
			default:
				other = append(other, err)
			}
		}(id)
	}
	wg.Wait()

	assert.Empty(t, other)
	assert.Equal(t, 3, ok, "10 unidades alcanzan para 3 listas de 3")
	assert.Equal(t, lists-3, rejected)

	a := f.Availability(t, testutil.WarehouseID, testutil.ProductID)
	assert.True(t, dec("9").Equal(a.Reserved))
	assert.False(t, a.Available.IsNegative())
}

func TestFreeze_DosVecesEsInvalido(t *testing.T) {
	f := testutil.NewFixture()
	f.Receive(t, testutil.WarehouseID, testutil.ProductID, "5")
	pl := f.DraftPickList(t, "2")
	_, err := f.PickLists.Freeze(context.Background(), f.Actor, pl.ID)
	require.NoError(t, err)

	_, err = f.PickLists.Freeze(context.Background(), f.Actor, pl.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestAssignWarehouse_CongeladaConBodegaEsInvalido(t *testing.T) {
	f := testutil.NewFixture()
	f.Receive(t, testutil.WarehouseID, testutil.ProductID, "5")
	pl := f.DraftPickList(t, "2")
	_, err := f.PickLists.Freeze(context.Background(), f.Actor, pl.ID)
	require.NoError(t, err)

	_, err = f.PickLists.AssignWarehouse(context.Background(), f.Actor, pl.ID, pl.Items[0].ID, testutil.Warehouse2ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestAssignWarehouse_BodegaInexistente(t *testing.T) {
	f := testutil.NewFixture()
	pl := f.DraftPickList(t, "2")

	_, err := f.PickLists.AssignWarehouse(context.Background(), f.Actor, pl.ID, pl.Items[0].ID, "wh-x")
	assert.ErrorIs(t, err, domain.ErrWarehouseNotFound)
}

// ─── Incidencias ──────────────────────────────────────────────────────────────

func TestReportIncident_ReduceYLiberaReserva(t *testing.T) {
	f := testutil.NewFixture()
	f.Receive(t, testutil.WarehouseID, testutil.ProductID, "10")
	pl := f.DraftPickList(t, "5")
	_, err := f.PickLists.Freeze(context.Background(), f.Actor, pl.ID)
	require.NoError(t, err)

	got, inc, err := f.PickLists.ReportIncident(context.Background(), f.Actor, pl.ID, pl.Items[0].ID, dto.ReportIncidentRequest{
		NewQuantity: dec("3"),
		Cause:       entity.IncidentOutOfStock,
		Description: "faltante en góndola",
	})
	require.NoError(t, err)
	require.NotNil(t, inc)
	it := got.Items[0]
	assert.True(t, dec("3").Equal(it.PickedQty))
	assert.True(t, dec("5").Equal(it.RequestedQty), "lo solicitado no cambia")
	assert.Equal(t, inc.ID, it.IncidentID)

	a := f.Availability(t, testutil.WarehouseID, testutil.ProductID)
	assert.True(t, dec("3").Equal(a.Reserved))
}

func TestReportIncident_SoloReducciones(t *testing.T) {
	f := testutil.NewFixture()
	f.Receive(t, testutil.WarehouseID, testutil.ProductID, "10")
	pl := f.DraftPickList(t, "5")
	_, err := f.PickLists.Freeze(context.Background(), f.Actor, pl.ID)
	require.NoError(t, err)

	for _, qty := range []string{"5", "6"} {
		_, _, err := f.PickLists.ReportIncident(context.Background(), f.Actor, pl.ID, pl.Items[0].ID, dto.ReportIncidentRequest{
			NewQuantity: dec(qty), Cause: entity.IncidentOther,
		})
		assert.ErrorIs(t, err, domain.ErrIncidentRequiredOnlyForReduction, qty)
	}
}

func TestReportIncident_SegundaIncidenciaNoSubeLaReserva(t *testing.T) {
	f := testutil.NewFixture()
	ctx := context.Background()
	f.Receive(t, testutil.WarehouseID, testutil.ProductID, "5")
	a := f.DraftPickList(t, "5")
	_, err := f.PickLists.Freeze(ctx, f.Actor, a.ID)
	require.NoError(t, err)
	_, _, err = f.PickLists.ReportIncident(ctx, f.Actor, a.ID, a.Items[0].ID, dto.ReportIncidentRequest{
		NewQuantity: dec("2"), Cause: entity.IncidentDamaged,
	})
	require.NoError(t, err)

	b := f.DraftPickList(t, "3")
	_, err = f.PickLists.Freeze(ctx, f.Actor, b.ID)
	require.NoError(t, err, "la reducción de A liberó 3")

	_, _, err = f.PickLists.ReportIncident(ctx, f.Actor, a.ID, a.Items[0].ID, dto.ReportIncidentRequest{
		NewQuantity: dec("4"), Cause: entity.IncidentOther,
	})
	assert.ErrorIs(t, err, domain.ErrIncidentRequiredOnlyForReduction)

	avail := f.Availability(t, testutil.WarehouseID, testutil.ProductID)
	assert.True(t, dec("5").Equal(avail.Reserved))
	assert.True(t, avail.Reserved.LessThanOrEqual(avail.OnHand))
	assert.True(t, avail.Available.IsZero())

	got, _, err := f.PickLists.ReportIncident(ctx, f.Actor, a.ID, a.Items[0].ID, dto.ReportIncidentRequest{
		NewQuantity: dec("1"), Cause: entity.IncidentOther,
	})
	require.NoError(t, err, "seguir bajando es válido")
	assert.True(t, dec("1").Equal(got.Items[0].PickedQty))
}

func TestReportIncident_ListaSinCongelar(t *testing.T) {
	f := testutil.NewFixture()
	pl := f.DraftPickList(t, "5")

	_, _, err := f.PickLists.ReportIncident(context.Background(), f.Actor, pl.ID, pl.Items[0].ID, dto.ReportIncidentRequest{
		NewQuantity: dec("1"), Cause: entity.IncidentDamaged,
	})
	assert.ErrorIs(t, err, domain.ErrPickListNotFrozen)
}

func TestReportIncident_CausaDesconocida(t *testing.T) {
	f := testutil.NewFixture()
	pl := f.DraftPickList(t, "5")

	_, _, err := f.PickLists.ReportIncident(context.Background(), f.Actor, pl.ID, pl.Items[0].ID, dto.ReportIncidentRequest{
		NewQuantity: dec("1"), Cause: "LLUVIA",
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ─── Empaque ──────────────────────────────────────────────────────────────────

func TestPack_RequiereCongelada(t *testing.T) {
	f := testutil.NewFixture()
	pl := f.DraftPickList(t, "1")

	_, err := f.PickLists.Pack(context.Background(), f.Actor, pl.ID)
	assert.ErrorIs(t, err, domain.ErrPickListNotFrozen)
}

func TestPack_MantieneReserva(t *testing.T) {
	f := testutil.NewFixture()
	f.Receive(t, testutil.WarehouseID, testutil.ProductID, "10")
	pl := f.PackedPickList(t, "4")

	assert.Equal(t, entity.PickListPacked, pl.Status)
	a := f.Availability(t, testutil.WarehouseID, testutil.ProductID)
	assert.True(t, dec("4").Equal(a.Reserved))
	assert.True(t, dec("10").Equal(a.OnHand))
}
