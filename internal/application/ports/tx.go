package ports

import (
	"context"

	"github.com/jhoicas/homecare-fulfillment/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción, con repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback y no queda ninguna escritura.
type TxRunner interface {
	Run(ctx context.Context, fn func(s repository.Stores) error) error
}

// Sequencer entrega el siguiente valor del contador (tenant, prefijo, período).
// La asignación se confirma aparte de la transacción del llamador: un número nunca se reutiliza.
type Sequencer interface {
	Next(ctx context.Context, tenantID, prefix, period string) (int64, error)
}
