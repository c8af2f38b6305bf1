package entity_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/homecare-fulfillment/internal/domain"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func draftList() *entity.PickList {
	return &entity.PickList{
		ID:     "pl1",
		Status: entity.PickListDraft,
		Items: []entity.PickListItem{
			{ID: "i1", ProductID: "p1", RequestedQty: d("5")},
			{ID: "i2", ProductID: "p1", RequestedQty: d("2")},
		},
	}
}

func TestPickList_FreezeRequiereBodega(t *testing.T) {
	pl := draftList()
	_, err := pl.AssignWarehouse("i1", "w1")
	require.NoError(t, err)

	err = pl.Freeze(time.Now())
	assert.ErrorIs(t, err, domain.ErrWarehouseRequired)
	assert.Equal(t, entity.PickListDraft, pl.Status)
}

func TestPickList_FreezeReservaSolicitado(t *testing.T) {
	pl := draftList()
	_, _ = pl.AssignWarehouse("i1", "w1")
	_, _ = pl.AssignWarehouse("i2", "w1")

	demand, err := pl.Demand()
	require.NoError(t, err)
	assert.True(t, d("7").Equal(demand[entity.StockKey{WarehouseID: "w1", ProductID: "p1"}]), "ítems del mismo producto se agregan")

	require.NoError(t, pl.Freeze(time.Now()))
	assert.Equal(t, entity.PickListFrozen, pl.Status)
	assert.NotNil(t, pl.FrozenAt)
	assert.True(t, pl.Reserving())
	for _, it := range pl.Items {
		assert.True(t, it.RequestedQty.Equal(it.PickedQty))
	}

	assert.ErrorIs(t, pl.Freeze(time.Now()), domain.ErrInvalidStatus)
}

func TestPickList_AssignWarehouseEnFrozen(t *testing.T) {
	pl := draftList()
	pl.Status = entity.PickListFrozen
	pl.Items[0].WarehouseID = "w1"

	_, err := pl.AssignWarehouse("i1", "w2")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus, "no se reasigna un ítem que ya tenía bodega")

	_, err = pl.AssignWarehouse("i2", "w2")
	assert.NoError(t, err)

	pl.Status = entity.PickListPacked
	_, err = pl.AssignWarehouse("i2", "w3")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestPickList_ReduceItem(t *testing.T) {
	pl := draftList()
	_, err := pl.ReduceItem("i1", d("1"), "inc")
	assert.ErrorIs(t, err, domain.ErrPickListNotFrozen)

	_, _ = pl.AssignWarehouse("i1", "w1")
	_, _ = pl.AssignWarehouse("i2", "w1")
	require.NoError(t, pl.Freeze(time.Now()))

	_, err = pl.ReduceItem("i1", d("5"), "inc")
	assert.ErrorIs(t, err, domain.ErrIncidentRequiredOnlyForReduction)
	_, err = pl.ReduceItem("i1", d("6"), "inc")
	assert.ErrorIs(t, err, domain.ErrIncidentRequiredOnlyForReduction)
	_, err = pl.ReduceItem("i1", d("-1"), "inc")
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = pl.ReduceItem("nope", d("1"), "inc")
	assert.ErrorIs(t, err, domain.ErrPickListItemNotFound)

	it, err := pl.ReduceItem("i1", d("3"), "inc")
	require.NoError(t, err)
	assert.True(t, d("3").Equal(it.PickedQty))
	assert.Equal(t, "inc", it.IncidentID)

	_, err = pl.ReduceItem("i1", d("4"), "inc-2")
	assert.ErrorIs(t, err, domain.ErrIncidentRequiredOnlyForReduction, "no vuelve a subir")
	_, err = pl.ReduceItem("i1", d("3"), "inc-2")
	assert.ErrorIs(t, err, domain.ErrIncidentRequiredOnlyForReduction)
	it, err = pl.ReduceItem("i1", d("1"), "inc-2")
	require.NoError(t, err)
	assert.Equal(t, "inc-2", it.IncidentID)

	// Toda reducción queda explicada por una incidencia.
	for _, it := range pl.Items {
		if it.PickedQty.LessThan(it.RequestedQty) {
			assert.NotEmpty(t, it.IncidentID)
		}
	}
}

func TestPickList_PackYCommit(t *testing.T) {
	pl := draftList()
	assert.ErrorIs(t, pl.Pack(time.Now()), domain.ErrPickListNotFrozen)

	_, _ = pl.AssignWarehouse("i1", "w1")
	_, _ = pl.AssignWarehouse("i2", "w1")
	require.NoError(t, pl.Freeze(time.Now()))
	require.NoError(t, pl.Pack(time.Now()))
	assert.Equal(t, entity.PickListPacked, pl.Status)
	assert.True(t, pl.Reserving())

	assert.True(t, pl.CommitStock(time.Now()))
	assert.False(t, pl.CommitStock(time.Now()), "el compromiso de stock ocurre una sola vez")
	assert.False(t, pl.Reserving())
}
