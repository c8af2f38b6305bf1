package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/homecare-fulfillment/internal/application/ports"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/repository"
)

var _ ports.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(s repository.Stores) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewStores(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// NewStores arma todos los repositorios sobre el mismo Querier (pool o tx).
func NewStores(q Querier) repository.Stores {
	return repository.Stores{
		Warehouses:     NewWarehouseRepository(q),
		Products:       NewProductRepository(q),
		Patients:       NewPatientRepository(q),
		Payers:         NewPayerRepository(q),
		Movements:      NewStockMovementRepository(q),
		Stock:          NewStockRepository(q),
		Orders:         NewOrderRepository(q),
		Kits:           NewKitRepository(q),
		PickLists:      NewPickListRepository(q),
		Incidents:      NewIncidentRepository(q),
		Deliveries:     NewDeliveryRepository(q),
		Authorizations: NewAuthorizationRepository(q),
		BillingRules:   NewBillingRuleRepository(q),
		Invoices:       NewInvoiceRepository(q),
	}
}
