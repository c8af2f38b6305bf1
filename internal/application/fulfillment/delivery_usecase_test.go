package fulfillment_test

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/homecare-fulfillment/internal/application/dto"
	"github.com/jhoicas/homecare-fulfillment/internal/application/fulfillment"
	"github.com/jhoicas/homecare-fulfillment/internal/application/ports"
	"github.com/jhoicas/homecare-fulfillment/internal/domain"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/repository"
	"github.com/jhoicas/homecare-fulfillment/internal/testutil"
)

// ─── Mocks ────────────────────────────────────────────────────────────────────

type mockStorage struct{ mock.Mock }

func (m *mockStorage) Upload(ctx context.Context, key string, data []byte, contentType string) (ports.StoredObject, error) {
	args := m.Called(ctx, key, data, contentType)
	return args.Get(0).(ports.StoredObject), args.Error(1)
}

type mockAudit struct{ mock.Mock }

func (m *mockAudit) Record(ctx context.Context, e entity.AuditEntry) {
	m.Called(ctx, e)
}

func (m *mockAudit) actions() []string {
	var out []string
	for _, c := range m.Calls {
		out = append(out, c.Arguments.Get(1).(entity.AuditEntry).Action)
	}
	return out
}

var jpeg = dto.UploadedFile{Name: "remito firmado.jpg", ContentType: "image/jpeg", Data: []byte("jpeg")}

// ─── Alta ─────────────────────────────────────────────────────────────────────

func TestCreateDelivery_NumeraYEsIdempotente(t *testing.T) {
	f := testutil.NewFixture()
	f.Receive(t, testutil.WarehouseID, testutil.ProductID, "10")
	pl := f.PackedPickList(t, "2")

	d, created, err := f.Deliveries.Create(context.Background(), f.Actor, pl.ID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, entity.DeliveryPacked, d.Status)
	assert.Equal(t, testutil.PatientID, d.PatientID)
	assert.Regexp(t, regexp.MustCompile(`^DEL-\d{6}-000001$`), d.Number)

	again, created, err := f.Deliveries.Create(context.Background(), f.Actor, pl.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, d.ID, again.ID)
	assert.Equal(t, d.Number, again.Number)
}

func TestCreateDelivery_ConcurrenteCreaUna(t *testing.T) {
	f := testutil.NewFixture()
	f.Receive(t, testutil.WarehouseID, testutil.ProductID, "10")
	pl := f.PackedPickList(t, "2")

	const callers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ids     = map[string]bool{}
		created int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, c, err := f.Deliveries.Create(context.Background(), f.Actor, pl.ID)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			ids[d.ID] = true
			if c {
				created++
			}
		}()
	}
	wg.Wait()

	assert.Len(t, ids, 1)
	assert.Equal(t, 1, created)
}

func TestCreateDelivery_ListaSinEmpacar(t *testing.T) {
	f := testutil.NewFixture()
	pl := f.DraftPickList(t, "2")

	_, _, err := f.Deliveries.Create(context.Background(), f.Actor, pl.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

// ─── Evidencias ───────────────────────────────────────────────────────────────

func TestUploadEvidence_FalloDeStorageNoDejaFila(t *testing.T) {
	f := testutil.NewFixture()
	f.Receive(t, testutil.WarehouseID, testutil.ProductID, "10")
	pl := f.PackedPickList(t, "2")

	storage := new(mockStorage)
	storage.On("Upload", mock.Anything, mock.Anything, jpeg.Data, "image/jpeg").
		Return(ports.StoredObject{}, errors.New("bucket no disponible"))
	sink := new(mockAudit)
	sink.On("Record", mock.Anything, mock.Anything).Return()

	uc := fulfillment.NewDeliveryUseCase(f.Store, f.Seq, storage, sink, zerolog.Nop(), fulfillment.DeliveryConfig{MinEvidence: 1})
	d, _, err := uc.Create(context.Background(), f.Actor, pl.ID)
	require.NoError(t, err)

	_, _, err = uc.UploadEvidence(context.Background(), f.Actor, d.ID, jpeg)
	require.Error(t, err)

	list, err := uc.ListEvidence(context.Background(), testutil.TenantID, d.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
	storage.AssertExpectations(t)
	assert.NotContains(t, sink.actions(), "delivery.evidence_added")
}

func TestUploadEvidence_ClaveConTenantYAuditoria(t *testing.T) {
	f := testutil.NewFixture()
	f.Receive(t, testutil.WarehouseID, testutil.ProductID, "10")
	pl := f.PackedPickList(t, "2")

	storage := new(mockStorage)
	storage.On("Upload", mock.Anything, mock.MatchedBy(func(key string) bool {
		return regexp.MustCompile(`^tenants/tenant-1/deliveries/[^/]+/evidence/[^/]+-remito_firmado\.jpg$`).MatchString(key)
	}), jpeg.Data, "image/jpeg").Return(ports.StoredObject{Key: "k1", URL: "https://files.test/k1"}, nil).Once()
	sink := new(mockAudit)
	sink.On("Record", mock.Anything, mock.Anything).Return()

	uc := fulfillment.NewDeliveryUseCase(f.Store, f.Seq, storage, sink, zerolog.Nop(), fulfillment.DeliveryConfig{MinEvidence: 1})
	d, _, err := uc.Create(context.Background(), f.Actor, pl.ID)
	require.NoError(t, err)

	ev, url, err := uc.UploadEvidence(context.Background(), f.Actor, d.ID, jpeg)
	require.NoError(t, err)
	assert.Equal(t, "k1", ev.FileKey)
	assert.Equal(t, "https://files.test/k1", url)
	assert.Equal(t, int64(4), ev.Size)

	storage.AssertExpectations(t)
	assert.Equal(t, []string{"delivery.created", "delivery.evidence_added"}, sink.actions())
}

func TestUploadEvidence_ArchivoVacio(t *testing.T) {
	f := testutil.NewFixture()
	f.Receive(t, testutil.WarehouseID, testutil.ProductID, "10")
	pl := f.PackedPickList(t, "2")
	d, _, err := f.Deliveries.Create(context.Background(), f.Actor, pl.ID)
	require.NoError(t, err)

	_, _, err = f.Deliveries.UploadEvidence(context.Background(), f.Actor, d.ID, dto.UploadedFile{Name: "x.jpg"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUploadEvidence_EntregaCerradaNoAcepta(t *testing.T) {
	f := testutil.NewFixture()
	f.Receive(t, testutil.WarehouseID, testutil.ProductID, "10")
	d := f.DeliveredDelivery(t, "2")
	_, err := f.Deliveries.Close(context.Background(), f.Actor, d.ID)
	require.NoError(t, err)

	_, _, err = f.Deliveries.UploadEvidence(context.Background(), f.Actor, d.ID, jpeg)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

// ─── Transiciones ─────────────────────────────────────────────────────────────

func TestMarkDelivered_SinEvidencia(t *testing.T) {
	f := testutil.NewFixture()
	f.Receive(t, testutil.WarehouseID, testutil.ProductID, "10")
	pl := f.PackedPickList(t, "2")
	ctx := context.Background()
	d, _, err := f.Deliveries.Create(ctx, f.Actor, pl.ID)
	require.NoError(t, err)
	_, err = f.Deliveries.MarkInTransit(ctx, f.Actor, d.ID, dto.CarrierSignatureRequest{Name: "Moto", DNI: "1"})
	require.NoError(t, err)

	_, err = f.Deliveries.MarkDelivered(ctx, f.Actor, d.ID, testutil.Receiver())
	assert.ErrorIs(t, err, domain.ErrEvidenceRequired)

	a := f.Availability(t, testutil.WarehouseID, testutil.ProductID)
	assert.True(t, dec("10").Equal(a.OnHand), "sin entrega no se compromete stock")
}

func TestMarkDelivered_QuienRecibeSeValidaPrimero(t *testing.T) {
	f := testutil.NewFixture()
	f.Receive(t, testutil.WarehouseID, testutil.ProductID, "10")
	pl := f.PackedPickList(t, "2")
	ctx := context.Background()
	d, _, err := f.Deliveries.Create(ctx, f.Actor, pl.ID)
	require.NoError(t, err)

	cases := map[string]dto.MarkDeliveredRequest{
		"sin nombre":    {ReceiverDNI: "20111222", ReceiverRelation: "hija"},
		"dni en blanco": {ReceiverName: "Marta Gómez", ReceiverDNI: "   ", ReceiverRelation: "hija"},
		"sin vínculo":   {ReceiverName: "Marta Gómez", ReceiverDNI: "20111222"},
		"todo vacío":    {},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			// La entrega sigue PACKED y sin evidencia: el error es de datos, no de estado.
			_, err := f.Deliveries.MarkDelivered(ctx, f.Actor, d.ID, in)
			assert.ErrorIs(t, err, domain.ErrValidation)

			_, err = f.Deliveries.MarkDelivered(ctx, f.Actor, "no-existe", in)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	got, _, err := f.Deliveries.Get(ctx, testutil.TenantID, d.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.DeliveryPacked, got.Status)
}

func TestMarkDelivered_ExigeEnTransito(t *testing.T) {
	f := testutil.NewFixture()
	f.Receive(t, testutil.WarehouseID, testutil.ProductID, "10")
	pl := f.PackedPickList(t, "2")
	ctx := context.Background()
	d, _, err := f.Deliveries.Create(ctx, f.Actor, pl.ID)
	require.NoError(t, err)
	_, _, err = f.Deliveries.UploadEvidence(ctx, f.Actor, d.ID, jpeg)
	require.NoError(t, err)

	_, err = f.Deliveries.MarkDelivered(ctx, f.Actor, d.ID, testutil.Receiver())
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestMarkDelivered_ComprometeStockUnaVez(t *testing.T) {
	f := testutil.NewFixture()
	f.Receive(t, testutil.WarehouseID, testutil.ProductID, "10")
	d := f.DeliveredDelivery(t, "4")

	assert.Equal(t, entity.DeliveryDelivered, d.Status)
	require.NotNil(t, d.Receiver)
	assert.Equal(t, "hija", d.Receiver.Relation)

	a := f.Availability(t, testutil.WarehouseID, testutil.ProductID)
	assert.True(t, dec("6").Equal(a.OnHand))
	assert.True(t, a.Reserved.IsZero(), "la reserva se libera al comprometer")

	_, err := f.Deliveries.MarkDelivered(context.Background(), f.Actor, d.ID, testutil.Receiver())
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	movs, err := f.Stock.ListMovements(context.Background(), testutil.TenantID, repository.MovementFilter{ProductID: testutil.ProductID})
	require.NoError(t, err)
	outs := 0
	for _, m := range movs {
		if m.Kind == entity.MovementKindOut {
			outs++
			assert.Equal(t, entity.ReferenceDelivery, m.ReferenceType)
			assert.Equal(t, d.ID, m.ReferenceID)
		}
	}
	assert.Equal(t, 1, outs)
	assert.True(t, dec("6").Equal(f.Availability(t, testutil.WarehouseID, testutil.ProductID).OnHand))
}

func TestMarkDelivered_ComprometeCantidadReducida(t *testing.T) {
	f := testutil.NewFixture()
	f.Receive(t, testutil.WarehouseID, testutil.ProductID, "10")
	ctx := context.Background()
	pl := f.DraftPickList(t, "5")
	_, err := f.PickLists.Freeze(ctx, f.Actor, pl.ID)
	require.NoError(t, err)
	_, _, err = f.PickLists.ReportIncident(ctx, f.Actor, pl.ID, pl.Items[0].ID, dto.ReportIncidentRequest{
		NewQuantity: dec("2"), Cause: entity.IncidentIndicationChanged,
	})
	require.NoError(t, err)
	_, err = f.PickLists.Pack(ctx, f.Actor, pl.ID)
	require.NoError(t, err)

	d, _, err := f.Deliveries.Create(ctx, f.Actor, pl.ID)
	require.NoError(t, err)
	_, _, err = f.Deliveries.UploadEvidence(ctx, f.Actor, d.ID, jpeg)
	require.NoError(t, err)
	_, err = f.Deliveries.MarkInTransit(ctx, f.Actor, d.ID, dto.CarrierSignatureRequest{Name: "Moto", DNI: "1"})
	require.NoError(t, err)
	_, err = f.Deliveries.MarkDelivered(ctx, f.Actor, d.ID, testutil.Receiver())
	require.NoError(t, err)

	a := f.Availability(t, testutil.WarehouseID, testutil.ProductID)
	assert.True(t, dec("8").Equal(a.OnHand))
	assert.True(t, a.Reserved.IsZero())
}

// setItemWarehouse reescribe la bodega del primer ítem saltándose las reglas de la lista.
func setItemWarehouse(t *testing.T, f *testutil.Fixture, pickListID, warehouseID string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.Store.Run(ctx, func(s repository.Stores) error {
		pl, err := s.PickLists.GetForUpdate(ctx, testutil.TenantID, pickListID)
		if err != nil {
			return err
		}
		it := pl.Items[0]
		it.WarehouseID = warehouseID
		return s.PickLists.UpdateItem(ctx, testutil.TenantID, &it)
	}))
}

func outMovements(t *testing.T, f *testutil.Fixture) []entity.StockMovement {
	t.Helper()
	movs, err := f.Stock.ListMovements(context.Background(), testutil.TenantID, repository.MovementFilter{ProductID: testutil.ProductID})
	require.NoError(t, err)
	var outs []entity.StockMovement
	for _, m := range movs {
		if m.Kind == entity.MovementKindOut {
			outs = append(outs, m)
		}
	}
	return outs
}

func TestMarkDelivered_ItemSinBodegaNoDejaNadaEscrito(t *testing.T) {
	f := testutil.NewFixture()
	f.Receive(t, testutil.WarehouseID, testutil.ProductID, "10")
	ctx := context.Background()
	d := f.InTransitDelivery(t, "3")
	setItemWarehouse(t, f, d.PickListID, "")

	_, err := f.Deliveries.MarkDelivered(ctx, f.Actor, d.ID, testutil.Receiver())
	assert.ErrorIs(t, err, domain.ErrWarehouseRequired)

	assert.Empty(t, outMovements(t, f))
	pl, err := f.PickLists.Get(ctx, testutil.TenantID, d.PickListID)
	require.NoError(t, err)
	assert.Nil(t, pl.StockCommittedAt)
	got, _, err := f.Deliveries.Get(ctx, testutil.TenantID, d.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.DeliveryInTransit, got.Status)
	assert.Nil(t, got.Receiver)
	assert.Nil(t, got.DeliveredAt)
	assert.True(t, dec("10").Equal(f.Availability(t, testutil.WarehouseID, testutil.ProductID).OnHand))

	// Con la bodega restituida la misma entrega compromete una sola vez.
	setItemWarehouse(t, f, d.PickListID, testutil.WarehouseID)
	_, err = f.Deliveries.MarkDelivered(ctx, f.Actor, d.ID, testutil.Receiver())
	require.NoError(t, err)
	outs := outMovements(t, f)
	require.Len(t, outs, 1)
	assert.True(t, dec("3").Equal(outs[0].Quantity))
	assert.True(t, dec("7").Equal(f.Availability(t, testutil.WarehouseID, testutil.ProductID).OnHand))
}

func TestReportIncident_EntregaFallidaNoComprometeStock(t *testing.T) {
	f := testutil.NewFixture()
	f.Receive(t, testutil.WarehouseID, testutil.ProductID, "10")
	d := f.InTransitDelivery(t, "3")

	got, err := f.Deliveries.ReportIncident(context.Background(), f.Actor, d.ID, dto.DeliveryIncidentRequest{
		Cause: entity.IncidentHomeRefusal, Description: "domicilio cerrado",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.DeliveryIncident, got.Status)
	assert.NotEmpty(t, got.IncidentID)

	a := f.Availability(t, testutil.WarehouseID, testutil.ProductID)
	assert.True(t, dec("10").Equal(a.OnHand))
	assert.True(t, dec("3").Equal(a.Reserved))

	_, err = f.Deliveries.MarkDelivered(context.Background(), f.Actor, d.ID, testutil.Receiver())
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestClose_SoloDesdeEntregada(t *testing.T) {
	f := testutil.NewFixture()
	f.Receive(t, testutil.WarehouseID, testutil.ProductID, "10")
	d := f.InTransitDelivery(t, "1")

	_, err := f.Deliveries.Close(context.Background(), f.Actor, d.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = f.Deliveries.MarkDelivered(context.Background(), f.Actor, d.ID, testutil.Receiver())
	require.NoError(t, err)
	closed, err := f.Deliveries.Close(context.Background(), f.Actor, d.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.DeliveryClosed, closed.Status)
	assert.NotNil(t, closed.ClosedAt)
}

func TestGetDelivery_OtroTenant(t *testing.T) {
	f := testutil.NewFixture()
	f.Receive(t, testutil.WarehouseID, testutil.ProductID, "10")
	d := f.InTransitDelivery(t, "1")

	_, _, err := f.Deliveries.Get(context.Background(), testutil.OtherTenantID, d.ID)
	assert.ErrorIs(t, err, domain.ErrDeliveryNotFound)

	_, count, err := f.Deliveries.Get(context.Background(), testutil.TenantID, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
