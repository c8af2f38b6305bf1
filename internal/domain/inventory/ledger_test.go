package inventory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/homecare-fulfillment/internal/domain"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/inventory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestOnHand_PliegaMovimientos(t *testing.T) {
	movs := []entity.StockMovement{
		{Kind: entity.MovementKindIn, Quantity: d("10")},
		{Kind: entity.MovementKindOut, Quantity: d("3")},
		{Kind: entity.MovementKindAdjustment, Quantity: d("2")},
		{Kind: entity.MovementKindOut, Quantity: d("4.5")},
	}
	assert.True(t, d("4.5").Equal(inventory.OnHand(movs)))
	assert.True(t, decimal.Zero.Equal(inventory.OnHand(nil)))
}

func TestReserved_SoloListasQueReservan(t *testing.T) {
	now := time.Now()
	key := entity.StockKey{WarehouseID: "w1", ProductID: "p1"}
	item := func(qty string) []entity.PickListItem {
		return []entity.PickListItem{{WarehouseID: "w1", ProductID: "p1", PickedQty: d(qty)}}
	}
	lists := []entity.PickList{
		{ID: "draft", Status: entity.PickListDraft, Items: item("100")},
		{ID: "frozen", Status: entity.PickListFrozen, Items: item("3")},
		{ID: "packed", Status: entity.PickListPacked, Items: item("2")},
		{ID: "committed", Status: entity.PickListPacked, StockCommittedAt: &now, Items: item("50")},
		{ID: "other", Status: entity.PickListFrozen, Items: []entity.PickListItem{{WarehouseID: "w2", ProductID: "p1", PickedQty: d("7")}}},
	}

	assert.True(t, d("5").Equal(inventory.Reserved(lists, key, "")))
	assert.True(t, d("2").Equal(inventory.Reserved(lists, key, "frozen")))
}

func TestCheckDemand(t *testing.T) {
	demand := map[entity.StockKey]decimal.Decimal{
		{WarehouseID: "w1", ProductID: "p1"}: d("5"),
		{WarehouseID: "w1", ProductID: "p2"}: d("1"),
	}
	avail := map[entity.StockKey]decimal.Decimal{
		{WarehouseID: "w1", ProductID: "p1"}: d("5"),
		{WarehouseID: "w1", ProductID: "p2"}: d("0"),
	}
	err := inventory.CheckDemand(demand, func(k entity.StockKey) (decimal.Decimal, error) { return avail[k], nil })
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "p2")

	avail[entity.StockKey{WarehouseID: "w1", ProductID: "p2"}] = d("1")
	assert.NoError(t, inventory.CheckDemand(demand, func(k entity.StockKey) (decimal.Decimal, error) { return avail[k], nil }))
}

func TestSortedKeys_OrdenEstable(t *testing.T) {
	demand := map[entity.StockKey]decimal.Decimal{
		{WarehouseID: "w2", ProductID: "a"}: d("1"),
		{WarehouseID: "w1", ProductID: "b"}: d("1"),
		{WarehouseID: "w1", ProductID: "a"}: d("1"),
	}
	keys := inventory.SortedKeys(demand)
	require.Len(t, keys, 3)
	assert.Equal(t, entity.StockKey{WarehouseID: "w1", ProductID: "a"}, keys[0])
	assert.Equal(t, entity.StockKey{WarehouseID: "w1", ProductID: "b"}, keys[1])
	assert.Equal(t, entity.StockKey{WarehouseID: "w2", ProductID: "a"}, keys[2])
}
