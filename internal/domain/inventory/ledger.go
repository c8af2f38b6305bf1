// Package inventory contiene el cálculo puro de saldos, reservas y disponibilidad.
package inventory

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/homecare-fulfillment/internal/domain"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
)

// OnHand pliega los movimientos: Σ(IN, ADJUSTMENT) − Σ(OUT).
func OnHand(movements []entity.StockMovement) decimal.Decimal {
	sum := decimal.Zero
	for _, m := range movements {
		sum = sum.Add(m.Signed())
	}
	return sum
}

// Reserved suma PickedQty de los ítems de listas que reservan para la clave dada,
// excluyendo opcionalmente una lista (la que se está congelando).
func Reserved(lists []entity.PickList, key entity.StockKey, excludePickListID string) decimal.Decimal {
	sum := decimal.Zero
	for i := range lists {
		pl := &lists[i]
		if pl.ID == excludePickListID || !pl.Reserving() {
			continue
		}
		for _, it := range pl.Items {
			if it.WarehouseID == key.WarehouseID && it.ProductID == key.ProductID {
				sum = sum.Add(it.PickedQty)
			}
		}
	}
	return sum
}

// Available = OnHand − Reserved.
func Available(onHand, reserved decimal.Decimal) decimal.Decimal {
	return onHand.Sub(reserved)
}

// SortedKeys devuelve las claves de una demanda en orden estable (orden de bloqueo).
func SortedKeys(demand map[entity.StockKey]decimal.Decimal) []entity.StockKey {
	keys := make([]entity.StockKey, 0, len(demand))
	for k := range demand {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

// CheckDemand verifica que cada clave tenga disponible suficiente. available devuelve
// el disponible ya calculado para la clave.
func CheckDemand(demand map[entity.StockKey]decimal.Decimal, available func(entity.StockKey) (decimal.Decimal, error)) error {
	for _, k := range SortedKeys(demand) {
		avail, err := available(k)
		if err != nil {
			return err
		}
		if avail.LessThan(demand[k]) {
			return domain.ErrInsufficientStock.With(
				"producto " + k.ProductID + " en bodega " + k.WarehouseID +
					": disponible " + avail.String() + ", solicitado " + demand[k].String())
		}
	}
	return nil
}
