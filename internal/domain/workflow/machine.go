// Package workflow valida movimientos de episodios entre etapas configurables por tenant.
package workflow

import (
	"sort"

	"github.com/jhoicas/homecare-fulfillment/internal/domain"
	"github.com/jhoicas/homecare-fulfillment/internal/domain/entity"
)

// Machine es el flujo de etapas de un tenant, ordenado por Position.
type Machine struct {
	stages []entity.WorkflowStage
	byID   map[string]entity.WorkflowStage
}

// New construye la máquina a partir de las etapas configuradas.
func New(stages []entity.WorkflowStage) *Machine {
	sorted := append([]entity.WorkflowStage(nil), stages...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })
	byID := make(map[string]entity.WorkflowStage, len(sorted))
	for _, s := range sorted {
		byID[s.ID] = s
	}
	return &Machine{stages: sorted, byID: byID}
}

// Stage busca una etapa.
func (m *Machine) Stage(id string) (entity.WorkflowStage, error) {
	s, ok := m.byID[id]
	if !ok {
		return entity.WorkflowStage{}, domain.ErrStageNotFound
	}
	return s, nil
}

// CanMove valida avanzar de from a to. Solo hacia adelante; una etapa terminal no tiene salida.
func (m *Machine) CanMove(fromID, toID string) error {
	to, err := m.Stage(toID)
	if err != nil {
		return err
	}
	if fromID == "" {
		return nil
	}
	from, err := m.Stage(fromID)
	if err != nil {
		return err
	}
	if from.IsTerminal || to.Position <= from.Position {
		return domain.ErrInvalidStatus
	}
	return nil
}

// RequireTerminal falla si la etapa actual no es terminal.
func (m *Machine) RequireTerminal(stageID string) error {
	s, ok := m.byID[stageID]
	if !ok || !s.IsTerminal {
		return domain.ErrWorkflowNotTerminal
	}
	return nil
}
