package fulfillment_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/homecare-fulfillment/internal/application/dto"
	"github.com/jhoicas/homecare-fulfillment/internal/domain"
	"github.com/jhoicas/homecare-fulfillment/internal/testutil"
)

func TestCreateOrder_EpisodioDeOtroPaciente(t *testing.T) {
	f := testutil.NewFixture()

	_, err := f.Orders.CreateOrder(context.Background(), f.Actor, dto.CreateOrderRequest{
		PatientID: testutil.Patient2ID,
		EpisodeID: testutil.EpisodeID,
	})
	assert.ErrorIs(t, err, domain.ErrEpisodePatientMismatch)
}

func TestCreateOrder_PacienteInexistente(t *testing.T) {
	f := testutil.NewFixture()

	_, err := f.Orders.CreateOrder(context.Background(), f.Actor, dto.CreateOrderRequest{PatientID: "pat-x"})
	assert.ErrorIs(t, err, domain.ErrPatientNotFound)
}

func TestCreateOrder_CantidadNoPositiva(t *testing.T) {
	f := testutil.NewFixture()

	_, err := f.Orders.CreateOrder(context.Background(), f.Actor, dto.CreateOrderRequest{
		PatientID: testutil.PatientID,
		Items:     []dto.ItemRequest{{ProductID: testutil.ProductID, Quantity: dec("0")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestApplyKit_MultiplicaCantidades(t *testing.T) {
	f := testutil.NewFixture()
	ctx := context.Background()
	kit, err := f.Orders.CreateKit(ctx, f.Actor, dto.CreateKitRequest{
		Name:  "Curación simple",
		Items: []dto.ItemRequest{{ProductID: testutil.ProductID, Quantity: dec("2")}},
	})
	require.NoError(t, err)
	kit, err = f.Orders.AddKitItems(ctx, f.Actor, kit.ID, []dto.ItemRequest{{ProductID: testutil.Product2ID, Quantity: dec("1.5")}})
	require.NoError(t, err)
	require.Len(t, kit.Items, 2)

	o, err := f.Orders.CreateOrder(ctx, f.Actor, dto.CreateOrderRequest{PatientID: testutil.PatientID})
	require.NoError(t, err)
	o, err = f.Orders.ApplyKit(ctx, f.Actor, o.ID, dto.ApplyKitRequest{KitID: kit.ID, Multiplier: dec("3")})
	require.NoError(t, err)

	require.Len(t, o.Items, 2)
	got := map[string]string{}
	for _, it := range o.Items {
		assert.Equal(t, kit.ID, it.KitID)
		got[it.ProductID] = it.Quantity.String()
	}
	assert.Equal(t, "6", got[testutil.ProductID])
	assert.Equal(t, "4.5", got[testutil.Product2ID])

	stored, err := f.Orders.GetOrder(ctx, testutil.TenantID, o.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 2)
}

func TestApplyKit_MultiplicadorPorDefecto(t *testing.T) {
	f := testutil.NewFixture()
	ctx := context.Background()
	kit, err := f.Orders.CreateKit(ctx, f.Actor, dto.CreateKitRequest{
		Name:  "Kit sonda",
		Items: []dto.ItemRequest{{ProductID: testutil.ProductID, Quantity: dec("2")}},
	})
	require.NoError(t, err)
	o, err := f.Orders.CreateOrder(ctx, f.Actor, dto.CreateOrderRequest{PatientID: testutil.PatientID})
	require.NoError(t, err)

	o, err = f.Orders.ApplyKit(ctx, f.Actor, o.ID, dto.ApplyKitRequest{KitID: kit.ID})
	require.NoError(t, err)
	require.Len(t, o.Items, 1)
	assert.Equal(t, "2", o.Items[0].Quantity.String())
}

func TestApplyKit_Errores(t *testing.T) {
	f := testutil.NewFixture()
	ctx := context.Background()
	o, err := f.Orders.CreateOrder(ctx, f.Actor, dto.CreateOrderRequest{PatientID: testutil.PatientID})
	require.NoError(t, err)
	empty, err := f.Orders.CreateKit(ctx, f.Actor, dto.CreateKitRequest{Name: "Vacío"})
	require.NoError(t, err)

	_, err = f.Orders.ApplyKit(ctx, f.Actor, o.ID, dto.ApplyKitRequest{KitID: "kit-x"})
	assert.ErrorIs(t, err, domain.ErrKitNotFound)

	_, err = f.Orders.ApplyKit(ctx, f.Actor, o.ID, dto.ApplyKitRequest{KitID: empty.ID})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.Orders.ApplyKit(ctx, f.Actor, o.ID, dto.ApplyKitRequest{KitID: empty.ID, Multiplier: dec("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}
