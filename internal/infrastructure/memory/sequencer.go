package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/homecare-fulfillment/internal/application/ports"
)

var _ ports.Sequencer = (*Sequencer)(nil)

type seqKey struct{ tenant, prefix, period string }

// Sequencer lleva los contadores fuera de las transacciones del store: un valor entregado no vuelve atrás
// aunque la operación que lo pidió falle.
type Sequencer struct {
	mu     sync.Mutex
	values map[seqKey]int64
}

// NewSequencer construye el contador.
func NewSequencer() *Sequencer {
	return &Sequencer{values: map[seqKey]int64{}}
}

// Next incrementa y devuelve el contador de (tenant, prefijo, período).
func (s *Sequencer) Next(ctx context.Context, tenantID, prefix, period string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	k := seqKey{tenantID, prefix, period}
	s.values[k]++
	return s.values[k], nil
}
