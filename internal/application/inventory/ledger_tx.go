package inventory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/repository"
)

// AvailableInTx bloquea el saldo de la clave (SELECT FOR UPDATE) y devuelve el disponible:
// pliegue de movimientos menos lo reservado por otras listas. Debe llamarse dentro de TxRunner.Run;
// quien consume disponibilidad queda serializado sobre la misma fila hasta el Commit.
func AvailableInTx(ctx context.Context, s repository.Stores, tenantID string, key entity.StockKey, excludePickListID string) (entity.Availability, error) {
	if _, err := s.Stock.GetForUpdate(ctx, tenantID, key); err != nil {
		return entity.Availability{}, fmt.Errorf("bloquear saldo: %w", err)
	}
	onHand, err := s.Movements.SumOnHand(ctx, tenantID, key)
	if err != nil {
		return entity.Availability{}, err
	}
	reserved, err := s.PickLists.ReservedQty(ctx, tenantID, key, excludePickListID)
	if err != nil {
		return entity.Availability{}, err
	}
	return entity.Availability{
		WarehouseID: key.WarehouseID,
		ProductID:   key.ProductID,
		OnHand:      onHand,
		Reserved:    reserved,
		Available:   onHand.Sub(reserved),
	}, nil
}

// AvailableFunc adapta AvailableInTx a la firma que usa inventory.CheckDemand del dominio.
func AvailableFunc(ctx context.Context, s repository.Stores, tenantID, excludePickListID string) func(entity.StockKey) (decimal.Decimal, error) {
	return func(k entity.StockKey) (decimal.Decimal, error) {
		a, err := AvailableInTx(ctx, s, tenantID, k, excludePickListID)
		if err != nil {
			return decimal.Zero, err
		}
		return a.Available, nil
	}
}
