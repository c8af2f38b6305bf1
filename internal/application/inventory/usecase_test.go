package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/homecare-fulfillment/internal/application/dto"
	"github.com/jhoicas/homecare-fulfillment/internal/domain"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/repository"
	"github.com/jhoicas/homecare-fulfillment/internal/testutil"
)

var dec = testutil.Dec

func movement(kind, qty string) dto.RegisterMovementRequest {
	return dto.RegisterMovementRequest{
		WarehouseID: testutil.WarehouseID,
		ProductID:   testutil.ProductID,
		Kind:        kind,
		Quantity:    dec(qty),
	}
}

// ─── Movimientos ──────────────────────────────────────────────────────────────

func TestRegisterMovement_SaldoPorKardex(t *testing.T) {
	f := testutil.NewFixture()
	ctx := context.Background()

	for _, m := range []dto.RegisterMovementRequest{
		movement(entity.MovementKindIn, "10"),
		movement(entity.MovementKindAdjustment, "2"),
		movement(entity.MovementKindOut, "4.5"),
	} {
		_, err := f.Stock.RegisterMovement(ctx, f.Actor, m)
		require.NoError(t, err)
	}

	a := f.Availability(t, testutil.WarehouseID, testutil.ProductID)
	assert.True(t, dec("7.5").Equal(a.OnHand))
	assert.True(t, dec("7.5").Equal(a.Available))

	movs, err := f.Stock.ListMovements(ctx, testutil.TenantID, repository.MovementFilter{WarehouseID: testutil.WarehouseID})
	require.NoError(t, err)
	assert.Len(t, movs, 3)
	for _, m := range movs {
		assert.Equal(t, entity.ReferenceManual, m.ReferenceType)
		assert.Equal(t, testutil.UserID, m.CreatedBy)
	}
}

func TestRegisterMovement_SalidaSinStock(t *testing.T) {
	f := testutil.NewFixture()
	f.Receive(t, testutil.WarehouseID, testutil.ProductID, "3")

	_, err := f.Stock.RegisterMovement(context.Background(), f.Actor, movement(entity.MovementKindOut, "4"))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, dec("3").Equal(f.Availability(t, testutil.WarehouseID, testutil.ProductID).OnHand))
}

func TestRegisterMovement_SalidaRespetaReserva(t *testing.T) {
	f := testutil.NewFixture()
	f.Receive(t, testutil.WarehouseID, testutil.ProductID, "5")
	pl := f.DraftPickList(t, "4")
	_, err := f.PickLists.Freeze(context.Background(), f.Actor, pl.ID)
	require.NoError(t, err)

	_, err = f.Stock.RegisterMovement(context.Background(), f.Actor, movement(entity.MovementKindOut, "2"))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = f.Stock.RegisterMovement(context.Background(), f.Actor, movement(entity.MovementKindOut, "1"))
	assert.NoError(t, err)
}

func TestRegisterMovement_Validaciones(t *testing.T) {
	f := testutil.NewFixture()
	ctx := context.Background()

	_, err := f.Stock.RegisterMovement(ctx, f.Actor, movement("TRANSFER", "1"))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.Stock.RegisterMovement(ctx, f.Actor, movement(entity.MovementKindIn, "0"))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = f.Stock.RegisterMovement(ctx, f.Actor, movement(entity.MovementKindAdjustment, "-1"))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	visitIn := movement(entity.MovementKindIn, "1")
	visitIn.ReferenceType = entity.ReferenceVisit
	_, err = f.Stock.RegisterMovement(ctx, f.Actor, visitIn)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRegisterMovement_ConsumoEnVisita(t *testing.T) {
	f := testutil.NewFixture()
	f.Receive(t, testutil.WarehouseID, testutil.ProductID, "3")

	m := movement(entity.MovementKindOut, "1")
	m.ReferenceType = entity.ReferenceVisit
	m.ReferenceID = "visita-77"
	got, err := f.Stock.RegisterMovement(context.Background(), f.Actor, m)
	require.NoError(t, err)
	assert.Equal(t, entity.ReferenceVisit, got.ReferenceType)
	assert.True(t, dec("2").Equal(f.Availability(t, testutil.WarehouseID, testutil.ProductID).OnHand))
}

func TestRegisterMovement_ReferenciasDeOtroTenant(t *testing.T) {
	f := testutil.NewFixture()
	other := entity.Actor{UserID: "u2", TenantID: testutil.OtherTenantID, Role: entity.RoleAdmin}

	_, err := f.Stock.RegisterMovement(context.Background(), other, movement(entity.MovementKindIn, "1"))
	assert.ErrorIs(t, err, domain.ErrWarehouseNotFound)

	m := movement(entity.MovementKindIn, "1")
	m.ProductID = "prod-x"
	_, err = f.Stock.RegisterMovement(context.Background(), f.Actor, m)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestListMovements_PorBodegaYLimite(t *testing.T) {
	f := testutil.NewFixture()
	f.Receive(t, testutil.WarehouseID, testutil.ProductID, "1")
	f.Receive(t, testutil.WarehouseID, testutil.ProductID, "2")
	f.Receive(t, testutil.Warehouse2ID, testutil.ProductID, "5")

	movs, err := f.Stock.ListMovements(context.Background(), testutil.TenantID, repository.MovementFilter{WarehouseID: testutil.Warehouse2ID})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.True(t, dec("5").Equal(movs[0].Quantity))

	movs, err = f.Stock.ListMovements(context.Background(), testutil.TenantID, repository.MovementFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, movs, 2)

	movs, err = f.Stock.ListMovements(context.Background(), testutil.OtherTenantID, repository.MovementFilter{})
	require.NoError(t, err)
	assert.Empty(t, movs)
}
