package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/jhoicas/homecare-fulfillment/internal/application/ports"
	"github.com/jhoicas/homecare-fulfillment/pkg/config"
)

var _ ports.Sequencer = (*Sequencer)(nil)

// Sequencer asigna numeración con su propia sentencia (autocommit): el valor queda
// consumido aunque la transacción del llamador haga Rollback.
//
// Next se llama mientras esa transacción retiene una conexión, por eso el pool del
// Sequencer no puede ser el mismo que usa TxRunner. Ver NewSequencerPool.
type Sequencer struct {
	pool *pgxpool.Pool
}

// NewSequencer construye el contador sobre un pool dedicado.
func NewSequencer(pool *pgxpool.Pool) *Sequencer {
	return &Sequencer{pool: pool}
}

// NewSequencerPool abre el pool dedicado del Sequencer con cfg.SequencerConns conexiones.
func NewSequencerPool(ctx context.Context, cfg config.DBConfig, log zerolog.Logger) (*pgxpool.Pool, error) {
	cfg.MaxConns = max(cfg.SequencerConns, 1)
	return NewPool(ctx, cfg, log.With().Str("pool", "sequencer").Logger())
}

// Next incrementa y devuelve el contador de (tenant, prefijo, período).
func (s *Sequencer) Next(ctx context.Context, tenantID, prefix, period string) (int64, error) {
	const q = `
		INSERT INTO sequences (tenant_id, prefix, period, last_value)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (tenant_id, prefix, period)
		DO UPDATE SET last_value = sequences.last_value + 1
		RETURNING last_value`
	var v int64
	if err := s.pool.QueryRow(ctx, q, tenantID, prefix, period).Scan(&v); err != nil {
		return 0, fmt.Errorf("next sequence %s/%s: %w", prefix, period, err)
	}
	return v, nil
}
